package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"logmentor/internal/analysis"
	"logmentor/internal/domain"
	"logmentor/internal/report"
)

var (
	analyzeLevels []string
	analyzeJSON   bool
	analyzeOutput string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <path>",
	Short: "Run AI chunk analysis over a log file or directory",
	Long: `Structure raw logs into severity-tagged entries, split them into
bounded chunks and run the diagnostic model over each chunk.

Examples:
  logmentor analyze app.log
  logmentor analyze ./logs --level ERROR --level WARNING
  logmentor analyze app.log --json -o report.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringArrayVar(&analyzeLevels, "level", nil, "severity filter (repeatable, default from config)")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "output the report as JSON")
	analyzeCmd.Flags().StringVarP(&analyzeOutput, "output", "o", "", "write the report to a file")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	results, err := analyzeChunks(cmd, args[0])
	if err != nil {
		return err
	}
	if results == nil {
		return nil
	}

	rep := report.Aggregate(results)

	var out string
	if analyzeJSON {
		data, err := json.MarshalIndent(rep, "", "  ")
		if err != nil {
			return err
		}
		out = string(data)
	} else {
		out = report.Format(rep)
	}

	fmt.Println(out)

	if analyzeOutput != "" {
		if err := os.WriteFile(analyzeOutput, []byte(out), 0644); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		fmt.Printf("Report written to %s\n", analyzeOutput)
	}
	return nil
}

// analyzeChunks runs the shared structure-filter-chunk-analyze pipeline.
// A nil result with nil error means there was nothing to analyze.
func analyzeChunks(cmd *cobra.Command, path string) ([]domain.ChunkAnalysis, error) {
	raw, err := loadCorpus(path)
	if err != nil {
		return nil, err
	}

	levels := analyzeLevels
	if len(levels) == 0 {
		levels = cfg.Filter.Severities
	}

	chunks, total, err := buildChunks(raw, levels)
	if err != nil {
		return nil, err
	}
	fmt.Printf("Structured %d log entries into %d chunks\n", total, len(chunks))
	if len(chunks) == 0 {
		fmt.Println("Nothing to analyze after filtering.")
		return nil, nil
	}

	client, err := newAnalyzerClient()
	if err != nil {
		return nil, err
	}

	analysisCache, closeCache, err := openCache()
	if err != nil {
		return nil, err
	}
	defer closeCache()

	orch := analysis.NewOrchestrator(analysis.Options{
		Analyzer:    client,
		Cache:       analysisCache,
		Policy:      retryPolicy(),
		Concurrency: cfg.Analysis.Concurrency,
		Logger:      logger,
	})

	bar := progressbar.NewOptions(len(chunks),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowBytes(false),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("[cyan]Analyzing[reset]"),
		progressbar.OptionOnCompletion(func() {
			fmt.Println()
		}),
	)

	results := orch.Run(cmd.Context(), chunks, func(completed int) {
		bar.Set(completed)
	})

	return results, nil
}
