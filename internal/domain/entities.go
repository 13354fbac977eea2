package domain

import "time"

// Severity is the normalized log level of an entry.
type Severity string

const (
	SeverityInfo    Severity = "INFO"
	SeverityDebug   Severity = "DEBUG"
	SeverityWarning Severity = "WARNING"
	SeverityError   Severity = "ERROR"
	SeverityUnknown Severity = "UNKNOWN"
)

// LogEntry is one structured log record. Entries are immutable once
// produced; LineNumber is the stable identity and ordering follows the
// original file.
type LogEntry struct {
	LineNumber int
	Timestamp  time.Time // zero when the source line carried none
	Severity   Severity
	Message    string
}

// Chunk is a contiguous, size-bounded group of entries treated as one
// analysis unit. ID is a content hash of the rendered text.
type Chunk struct {
	ID         string
	Entries    []LogEntry
	ApproxSize int
	Text       string
}

// AnalysisStatus is the lifecycle state of a chunk analysis.
type AnalysisStatus string

const (
	AnalysisPending AnalysisStatus = "PENDING"
	AnalysisOK      AnalysisStatus = "OK"
	AnalysisFailed  AnalysisStatus = "FAILED"
)

// ChunkAnalysis is the AI-generated diagnosis for one chunk.
type ChunkAnalysis struct {
	ChunkID        string         `json:"chunk_id"`
	Status         AnalysisStatus `json:"status"`
	Summary        string         `json:"summary,omitempty"`
	DetectedErrors []string       `json:"detected_errors,omitempty"`
	RootCause      string         `json:"root_cause,omitempty"`
	FixSuggestions []string       `json:"fix_suggestions,omitempty"`
	Attempts       int            `json:"attempts"`
	FailureReason  string         `json:"failure_reason,omitempty"`
}

// EmbeddingRecord pairs an indexed chunk with its vector.
type EmbeddingRecord struct {
	SourceID   string
	Vector     []float32
	SourceText string
}

// ScoredRecord is an embedding record with its similarity to a query.
type ScoredRecord struct {
	Record EmbeddingRecord
	Score  float64
}

// QATurn is one question/answer exchange in a session. Turns are appended
// to the session history and never mutated afterwards.
type QATurn struct {
	Question           string
	RetrievedSourceIDs []string
	Answer             string
	Timestamp          time.Time
	Failed             bool
}

// Report is the consolidated view over all chunk analyses. Derived data,
// rebuilt whenever the aggregator runs.
type Report struct {
	PerChunk            []ChunkAnalysis
	ConsolidatedSummary string
	DetectedErrors      []string
	RootCauses          []string
	FixSuggestions      []string
	GeneratedAt         time.Time
}

// FilterBySeverity keeps entries whose severity is in the given set,
// preserving order. An empty set keeps everything.
func FilterBySeverity(entries []LogEntry, severities []Severity) []LogEntry {
	if len(severities) == 0 {
		return entries
	}
	keep := make(map[Severity]bool, len(severities))
	for _, s := range severities {
		keep[s] = true
	}
	filtered := make([]LogEntry, 0, len(entries))
	for _, e := range entries {
		if keep[e.Severity] {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// Render formats an entry the way it is presented to the model:
// "timestamp [LEVEL] message".
func (e LogEntry) Render() string {
	tagged := "[" + string(e.Severity) + "] " + e.Message
	if e.Timestamp.IsZero() {
		return tagged
	}
	return e.Timestamp.Format("2006-01-02 15:04:05") + " " + tagged
}
