package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"logmentor/internal/index"
	"logmentor/internal/qa"
)

var (
	askQuestion string
	askTopK     int
	askSources  bool
)

var askCmd = &cobra.Command{
	Use:   "ask <path>",
	Short: "Ask questions about a log corpus",
	Long: `Embed and index the log corpus, then answer questions about it with
retrieval-augmented generation. Without -q an interactive session starts.

Examples:
  logmentor ask app.log -q "what caused the crash?"
  logmentor ask ./logs --top-k 6`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringVarP(&askQuestion, "question", "q", "", "single question (otherwise interactive)")
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 0, "retrieved chunks per question (default from config)")
	askCmd.Flags().BoolVar(&askSources, "sources", false, "print the retrieved chunk ids with each answer")
}

func runAsk(cmd *cobra.Command, args []string) error {
	raw, err := loadCorpus(args[0])
	if err != nil {
		return err
	}

	chunks, total, err := buildChunks(raw, cfg.Filter.Severities)
	if err != nil {
		return err
	}
	if len(chunks) == 0 {
		return fmt.Errorf("no log entries to index in %s", args[0])
	}

	embedder, err := newEmbedder()
	if err != nil {
		return err
	}
	answerer, err := newAnalyzerClient()
	if err != nil {
		return err
	}

	ix := index.New(embedder)
	fmt.Printf("Embedding %d chunks (%d entries)...\n", len(chunks), total)
	if err := ix.Build(cmd.Context(), chunks); err != nil {
		return fmt.Errorf("failed to build index: %w", err)
	}

	topK := cfg.QA.TopK
	if askTopK > 0 {
		topK = askTopK
	}

	engine := qa.NewEngine(qa.Options{
		Index:         ix,
		Answerer:      answerer,
		Policy:        retryPolicy(),
		TopK:          topK,
		HistoryWindow: cfg.QA.HistoryWindow,
		Logger:        logger,
	})

	if askQuestion != "" {
		return askOne(cmd, engine, askQuestion)
	}

	fmt.Println("Ask about the logs (empty line or \"exit\" to quit).")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("? ")
		if !scanner.Scan() {
			break
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" || question == "exit" || question == "quit" {
			break
		}
		if err := askOne(cmd, engine, question); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func askOne(cmd *cobra.Command, engine *qa.Engine, question string) error {
	turn, err := engine.Ask(cmd.Context(), question)
	if err != nil {
		if errors.Is(err, qa.ErrNoCorpus) {
			return fmt.Errorf("no indexed corpus: %w", err)
		}
		return err
	}

	fmt.Println(turn.Answer)
	if askSources && len(turn.RetrievedSourceIDs) > 0 {
		fmt.Printf("(sources: %s)\n", strings.Join(turn.RetrievedSourceIDs, ", "))
	}
	if turn.Failed {
		fmt.Println("(the model could not be reached; this turn is recorded as failed)")
	}
	fmt.Println()
	return nil
}
