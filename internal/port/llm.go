package port

import (
	"context"

	"logmentor/internal/domain"
)

// Analyzer runs the diagnostic model call over one chunk of log text and
// returns the raw semi-structured response. Callers own parsing; the
// adapter only distinguishes transient from permanent transport failures.
type Analyzer interface {
	Analyze(ctx context.Context, chunkText string) (string, error)

	// ModelName returns the name of the model.
	ModelName() string
}

// Answerer synthesizes a grounded answer from a question, a retrieved
// context block and the recent conversation history.
type Answerer interface {
	Answer(ctx context.Context, question, contextBlock string, history []domain.QATurn) (string, error)

	// ModelName returns the name of the model.
	ModelName() string
}
