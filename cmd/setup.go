package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"accent-detector/infrastructure/config"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
)

// Prompter interface for interactive prompts (allows mocking in tests)
type Prompter interface {
	Input(message string, defaultValue string) (string, error)
	Confirm(message string, defaultValue bool) (bool, error)
	Select(message string, options []string, defaultValue string) (string, error)
}

// SurveyPrompter implements Prompter using the survey library
type SurveyPrompter struct{}

func (p *SurveyPrompter) Input(message string, defaultValue string) (string, error) {
	result := ""
	prompt := &survey.Input{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return "", err
	}
	return result, nil
}

func (p *SurveyPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	result := defaultValue
	prompt := &survey.Confirm{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return false, err
	}
	return result, nil
}

func (p *SurveyPrompter) Select(message string, options []string, defaultValue string) (string, error) {
	result := ""
	prompt := &survey.Select{
		Message: message,
		Options: options,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return "", err
	}
	return result, nil
}

// DefaultPrompter is the prompter used in production
var DefaultPrompter Prompter = &SurveyPrompter{}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create configuration file interactively",
	Long: `Prompts for configuration values and creates config.yaml.

This command guides you through setting up the work directory, the
ffmpeg binary, the accent classifier and the web UI address. Values not
asked for keep their defaults.`,
	RunE: runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	return RunSetupWithPrompter(DefaultPrompter, cfgFile, os.Stdout)
}

// RunSetupWithPrompter runs the setup with a given prompter (for testing)
func RunSetupWithPrompter(prompter Prompter, configPath string, output OutputWriter) error {
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil {
		overwrite, err := prompter.Confirm(filepath.Base(configPath)+" already exists. Overwrite?", false)
		if err != nil {
			return fmt.Errorf("prompt cancelled")
		}
		if !overwrite {
			fmt.Fprintln(output, "Setup cancelled.")
			return nil
		}
	}

	fmt.Fprintln(output, "Welcome to accent-detector setup!")
	fmt.Fprintln(output)

	cfg := config.Default()

	if err := promptPaths(prompter, cfg); err != nil {
		return err
	}
	if err := promptClassifier(prompter, cfg); err != nil {
		return err
	}
	if err := promptServer(prompter, cfg); err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Ensure config directory exists
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := config.Save(cfg, configPath); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	fmt.Fprintln(output)
	fmt.Fprintf(output, "Configuration saved to %s\n", configPath)
	return nil
}

func promptPaths(prompter Prompter, cfg *config.Config) error {
	workDir, err := prompter.Input("Where should temporary runs be stored?", cfg.Paths.WorkDirectory)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if workDir != "" {
		cfg.Paths.WorkDirectory = workDir
	}

	ffmpegPath, err := prompter.Input("Path to the ffmpeg binary?", cfg.Media.FFmpegPath)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if ffmpegPath != "" {
		cfg.Media.FFmpegPath = ffmpegPath
	}

	return nil
}

func promptClassifier(prompter Prompter, cfg *config.Config) error {
	mode, err := prompter.Select("How should the accent model be reached?",
		[]string{config.ClassifierCommand, config.ClassifierHTTP}, cfg.Classifier.Mode)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.Classifier.Mode = mode

	switch mode {
	case config.ClassifierHTTP:
		url, err := prompter.Input("Inference endpoint URL?", "")
		if err != nil {
			return fmt.Errorf("prompt cancelled")
		}
		if url == "" {
			return fmt.Errorf("inference URL is required")
		}
		cfg.Classifier.URL = url
	default:
		command, err := prompter.Input("Classifier command?", strings.Join(append([]string{cfg.Classifier.Command}, cfg.Classifier.Args...), " "))
		if err != nil {
			return fmt.Errorf("prompt cancelled")
		}
		fields := strings.Fields(command)
		if len(fields) == 0 {
			return fmt.Errorf("classifier command is required")
		}
		cfg.Classifier.Command = fields[0]
		cfg.Classifier.Args = fields[1:]
	}

	return nil
}

func promptServer(prompter Prompter, cfg *config.Config) error {
	addr, err := prompter.Input("Web UI listen address?", cfg.Server.ListenAddress)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if addr != "" {
		cfg.Server.ListenAddress = addr
	}
	return nil
}
