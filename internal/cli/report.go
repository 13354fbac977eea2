package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"logmentor/internal/domain"
	"logmentor/internal/report"
)

var reportOutput string

var reportCmd = &cobra.Command{
	Use:   "report <path>",
	Short: "Generate a consolidated report with an overall assessment",
	Long: `Run chunk analysis (reusing cached analyses where available), merge
the per-chunk results into one report and ask the model for an overall
assessment of the combined findings.

Examples:
  logmentor report ./logs
  logmentor report app.log -o summary.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().StringVarP(&reportOutput, "output", "o", "", "write the report to a file")
}

func runReport(cmd *cobra.Command, args []string) error {
	results, err := analyzeChunks(cmd, args[0])
	if err != nil {
		return err
	}
	if results == nil {
		return nil
	}

	rep := report.Aggregate(results)
	out := report.Format(rep)

	// Overall assessment across the chunk-wise analyses, best effort:
	// the deterministic report above stands on its own if this fails.
	client, err := newAnalyzerClient()
	if err != nil {
		return err
	}
	combined := combineAnalyses(results)

	var overall string
	_, err = retryPolicy().Do(cmd.Context(), func(ctx context.Context) error {
		var callErr error
		overall, callErr = client.Summarize(ctx, combined)
		return callErr
	})
	if err != nil {
		logger.Warn("overall assessment failed", "error", err)
		out += "\n(Overall assessment unavailable.)\n"
	} else {
		out += "\n## Overall Assessment\n\n" + overall + "\n"
	}

	fmt.Println(out)

	if reportOutput != "" {
		if err := os.WriteFile(reportOutput, []byte(out), 0644); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		fmt.Printf("Report written to %s\n", reportOutput)
	}
	return nil
}

// combineAnalyses renders the per-chunk findings as one text block for
// the overall assessment prompt.
func combineAnalyses(results []domain.ChunkAnalysis) string {
	var sb strings.Builder
	for i, a := range results {
		fmt.Fprintf(&sb, "Chunk %d:\n", i+1)
		if a.Status == domain.AnalysisFailed {
			sb.WriteString("analysis failed: " + a.FailureReason + "\n\n")
			continue
		}
		sb.WriteString("Summary: " + a.Summary + "\n")
		if len(a.DetectedErrors) > 0 {
			sb.WriteString("Errors: " + strings.Join(a.DetectedErrors, "; ") + "\n")
		}
		if a.RootCause != "" {
			sb.WriteString("Root cause: " + a.RootCause + "\n")
		}
		if len(a.FixSuggestions) > 0 {
			sb.WriteString("Fixes: " + strings.Join(a.FixSuggestions, "; ") + "\n")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
