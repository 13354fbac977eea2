package port

import "logmentor/internal/domain"

// Structurer converts raw log text into an ordered sequence of structured
// entries. It never fails: unparseable text degrades to UNKNOWN entries.
type Structurer interface {
	Structure(raw string) []domain.LogEntry
}
