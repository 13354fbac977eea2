package port

import "logmentor/internal/domain"

// AnalysisCache stores completed chunk analyses keyed by content
// fingerprint. Injected into the orchestrator so tests can isolate state
// and runs can opt into persistence.
type AnalysisCache interface {
	// Get returns the cached analysis for a fingerprint, if present.
	Get(fingerprint string) (domain.ChunkAnalysis, bool)

	// Put stores an analysis under its chunk fingerprint.
	Put(analysis domain.ChunkAnalysis) error
}
