package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"accent-detector/application/analysis"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	classifySource string
	classifyJSON   bool
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Detect the speaker's accent in a video",
	Long: `Extract the audio of a video and classify the speaker's English accent.

The temporary audio is removed once the model has answered.

Example:
  accent-detector classify --source https://example.com/talk.mp4
  accent-detector classify --source ./interview.mp4 --json`,
	RunE: runClassify,
}

func init() {
	rootCmd.AddCommand(classifyCmd)
	classifyCmd.Flags().StringVar(&classifySource, "source", "", "Video URL or local path (required)")
	classifyCmd.Flags().BoolVar(&classifyJSON, "json", false, "Print the result as JSON")
	classifyCmd.MarkFlagRequired("source")
}

func runClassify(cmd *cobra.Command, args []string) error {
	cfg, err := GetConfig()
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	service, _, err := newAnalysis(cfg, logger)
	if err != nil {
		return err
	}

	return RunClassifyWithDependencies(cmd.Context(), service, classifySource, classifyJSON, os.Stdout)
}

type classifyResult struct {
	Source     string  `json:"source"`
	Accent     string  `json:"accent"`
	Confidence float64 `json:"accent_score"`
	Percent    float64 `json:"accent_percent"`
}

// RunClassifyWithDependencies runs the classify command with injected dependencies (for testing)
func RunClassifyWithDependencies(ctx context.Context, analyzer analysis.Analyzer, source string, asJSON bool, output OutputWriter) error {
	ctx = contextOrBackground(ctx)

	report, err := analyzer.Analyze(ctx, source)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(output)
		enc.SetIndent("", "  ")
		return enc.Encode(classifyResult{
			Source:     source,
			Accent:     report.Accent,
			Confidence: report.Confidence,
			Percent:    report.Percent(),
		})
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(output)
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Source", "Accent", "Confidence", "Extract", "Classify"})
	tw.AppendRow(table.Row{
		source,
		report.Accent,
		fmt.Sprintf("%.2f%%", report.Percent()),
		roundDuration(report.ExtractDuration),
		roundDuration(report.ClassifyTime),
	})
	tw.Render()
	return nil
}
