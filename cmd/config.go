package cmd

import (
	"fmt"
	"os"

	"accent-detector/infrastructure/config"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// DefaultOutput is the default output writer for config commands
var DefaultOutput OutputWriter = os.Stdout

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the configuration",
	Long: `Show or validate the effective configuration, after defaults and
ACCENT_* environment overrides have been applied.

Examples:
  accent-detector config show
  accent-detector config validate`,
}

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
}

// --- SHOW command ---

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as YAML",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := GetConfig()
	if err != nil {
		return err
	}
	return RunConfigShowWithDependencies(cfg, DefaultOutput)
}

// RunConfigShowWithDependencies runs the show command with injected dependencies
func RunConfigShowWithDependencies(cfg *config.Config, out OutputWriter) error {
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}
	return enc.Close()
}

// --- VALIDATE command ---

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration for invalid values",
	Args:  cobra.NoArgs,
	RunE:  runConfigValidate,
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	if cfgErr != nil {
		return fmt.Errorf("failed to load configuration from %s: %w", cfgFile, cfgErr)
	}
	return RunConfigValidateWithDependencies(cfg, cfgFile, DefaultOutput)
}

// RunConfigValidateWithDependencies runs the validate command with injected dependencies
func RunConfigValidateWithDependencies(cfg *config.Config, configPath string, out OutputWriter) error {
	if cfg == nil {
		return fmt.Errorf("configuration not loaded")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%s: %w", configPath, err)
	}
	fmt.Fprintf(out, "%s is valid\n", configPath)
	return nil
}
