package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/veriscope/veriscope/internal/detection"
)

var analyzeJSON bool

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Run a one-shot analysis of an image or video",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		session, result, err := veriscopeApp.Orchestrator.SubmitFile(context.Background(), args[0])
		if err != nil {
			return err
		}

		if analyzeJSON {
			return printJSON(cmd, result)
		}

		printVerdict(cmd, result)
		cmd.Printf("Session:    %s\n", session.ID)
		if result.InputType == detection.MediaVideo {
			cmd.Printf("Frames:     %d analyzed\n", len(result.FramePredictions))
		}
		cmd.Printf("Heatmaps:   %d\n", len(result.Heatmaps))
		return nil
	},
}

func printVerdict(cmd *cobra.Command, result *detection.Result) {
	label := "REAL"
	if result.FinalPrediction == detection.VerdictFake {
		label = "FAKE"
	}
	cmd.Printf("Verdict:    %s\n", label)
	cmd.Printf("Confidence: %.1f%%\n", result.Confidence)
}

func printJSON(cmd *cobra.Command, v any) error {
	out, err := marshalIndent(v)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	cmd.Println(out)
	return nil
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "Print the raw result as JSON")
	rootCmd.AddCommand(analyzeCmd)
}
