package structurer

import (
	"regexp"
	"strings"
	"time"

	"logmentor/internal/domain"
)

// linePattern matches the start of a structured entry:
// "2024-01-02 15:04:05,123 [LEVEL] message". The fractional part and the
// brackets around the level are optional.
var linePattern = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2})(?:,\d+)?\s+\[?(\w+)\]?\s+(.*)`)

const timeLayout = "2006-01-02 15:04:05"

// RegexStructurer converts raw log text into structured entries. Lines
// matching the header pattern start a new entry; anything else is a
// continuation of the previous entry's message. It implements
// port.Structurer.
type RegexStructurer struct{}

func New() *RegexStructurer {
	return &RegexStructurer{}
}

func (s *RegexStructurer) Structure(raw string) []domain.LogEntry {
	var entries []domain.LogEntry
	var current *domain.LogEntry

	for i, line := range strings.Split(raw, "\n") {
		m := linePattern.FindStringSubmatch(line)
		if m != nil {
			if current != nil {
				entries = append(entries, *current)
			}
			current = &domain.LogEntry{
				LineNumber: i + 1,
				Severity:   normalizeLevel(m[2]),
				Message:    m[3],
			}
			if ts, err := time.Parse(timeLayout, m[1]); err == nil {
				current.Timestamp = ts
			}
			continue
		}

		if current == nil {
			// Leading text before any recognizable header.
			if strings.TrimSpace(line) == "" {
				continue
			}
			current = &domain.LogEntry{
				LineNumber: i + 1,
				Severity:   domain.SeverityUnknown,
				Message:    line,
			}
			continue
		}
		current.Message += "\n" + line
	}

	if current != nil {
		entries = append(entries, *current)
	}

	for i := range entries {
		entries[i].Message = strings.TrimRight(entries[i].Message, "\n ")
	}

	return entries
}

// normalizeLevel maps raw level tokens onto the severity enum.
func normalizeLevel(raw string) domain.Severity {
	switch strings.ToUpper(raw) {
	case "INFO", "NOTICE":
		return domain.SeverityInfo
	case "DEBUG", "TRACE":
		return domain.SeverityDebug
	case "WARNING", "WARN":
		return domain.SeverityWarning
	case "ERROR", "ERR", "FATAL", "CRITICAL", "PANIC":
		return domain.SeverityError
	default:
		return domain.SeverityUnknown
	}
}
