package qa

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"logmentor/internal/domain"
	"logmentor/internal/index"
	"logmentor/internal/port"
	"logmentor/internal/retry"
)

// ErrNoCorpus is returned when a question arrives before any log corpus
// has been indexed.
var ErrNoCorpus = errors.New("no log corpus indexed")

// State is the conversation session state.
type State string

const (
	StateAwaitingQuestion State = "AWAITING_QUESTION"
	StateRetrieving       State = "RETRIEVING"
	StateSynthesizing     State = "SYNTHESIZING"
	StateAnswered         State = "ANSWERED"
)

// fallbackAnswer is recorded when answer synthesis fails after retries.
const fallbackAnswer = "Sorry, I was unable to answer that question right now. Please try again."

// Engine answers questions over the indexed log corpus with
// retrieval-augmented generation, one session per Engine. History is
// append-only; turns are never mutated after recording.
type Engine struct {
	index    *index.Index
	answerer port.Answerer
	policy   retry.Policy
	topK     int
	window   int // prior turns passed to the answerer
	logger   *slog.Logger

	askMu sync.Mutex // serializes questions within the session

	mu      sync.RWMutex
	state   State
	history []domain.QATurn
}

// Options configures a QA Engine.
type Options struct {
	Index         *index.Index
	Answerer      port.Answerer
	Policy        retry.Policy
	TopK          int
	HistoryWindow int
	Logger        *slog.Logger
}

func NewEngine(opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	topK := opts.TopK
	if topK <= 0 {
		topK = 4
	}
	window := opts.HistoryWindow
	if window <= 0 {
		window = 4
	}
	return &Engine{
		index:    opts.Index,
		answerer: opts.Answerer,
		policy:   opts.Policy,
		topK:     topK,
		window:   window,
		logger:   logger,
		state:    StateAwaitingQuestion,
	}
}

// Ask retrieves context for the question and synthesizes a grounded
// answer. Synthesis failure after retries records the turn with a failure
// marker and a fallback answer rather than dropping it; only a missing
// corpus is surfaced as an error before retrieval.
func (e *Engine) Ask(ctx context.Context, question string) (domain.QATurn, error) {
	e.askMu.Lock()
	defer e.askMu.Unlock()

	if e.index.Size() == 0 {
		return domain.QATurn{}, ErrNoCorpus
	}

	e.setState(StateRetrieving)
	defer e.setState(StateAwaitingQuestion)

	records, err := e.index.Query(ctx, question, e.topK)
	if err != nil {
		if errors.Is(err, index.ErrIndexEmpty) {
			return domain.QATurn{}, ErrNoCorpus
		}
		e.logger.Warn("retrieval failed", "error", err)
		return e.record(question, nil, fallbackAnswer, true), nil
	}

	sourceIDs := make([]string, len(records))
	for i, r := range records {
		sourceIDs[i] = r.Record.SourceID
	}
	contextBlock := buildContextBlock(records)

	e.setState(StateSynthesizing)

	history := e.recentHistory()
	var answer string
	attempts, err := e.policy.Do(ctx, func(ctx context.Context) error {
		var callErr error
		answer, callErr = e.answerer.Answer(ctx, question, contextBlock, history)
		return callErr
	})
	if err != nil {
		e.logger.Warn("answer synthesis failed", "attempts", attempts, "error", err)
		return e.record(question, sourceIDs, fallbackAnswer, true), nil
	}

	e.setState(StateAnswered)
	return e.record(question, sourceIDs, answer, false), nil
}

// History returns a copy of the session's turns in order.
func (e *Engine) History() []domain.QATurn {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]domain.QATurn(nil), e.history...)
}

// State returns the current session state.
func (e *Engine) State() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

func (e *Engine) setState(s State) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
}

func (e *Engine) record(question string, sourceIDs []string, answer string, failed bool) domain.QATurn {
	turn := domain.QATurn{
		Question:           question,
		RetrievedSourceIDs: sourceIDs,
		Answer:             answer,
		Timestamp:          time.Now(),
		Failed:             failed,
	}
	e.mu.Lock()
	e.history = append(e.history, turn)
	e.mu.Unlock()
	return turn
}

// recentHistory returns the last few turns, bounded to respect model
// context limits.
func (e *Engine) recentHistory() []domain.QATurn {
	e.mu.RLock()
	defer e.mu.RUnlock()
	start := len(e.history) - e.window
	if start < 0 {
		start = 0
	}
	return append([]domain.QATurn(nil), e.history[start:]...)
}

// buildContextBlock joins retrieved chunk texts in retrieval-rank order.
func buildContextBlock(records []domain.ScoredRecord) string {
	var sb strings.Builder
	for i, r := range records {
		fmt.Fprintf(&sb, "--- Log excerpt %d (chunk %s) ---\n", i+1, r.Record.SourceID)
		sb.WriteString(r.Record.SourceText)
		sb.WriteString("\n\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}
