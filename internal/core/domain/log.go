package domain

// LogLevel is the severity of an ingested client log entry.
type LogLevel string

const (
	LogDebug    LogLevel = "debug"
	LogInfo     LogLevel = "info"
	LogWarn     LogLevel = "warn"
	LogError    LogLevel = "error"
	LogCritical LogLevel = "critical"
)

// ValidLogLevel reports whether l is a member of the enumeration.
func ValidLogLevel(l LogLevel) bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError, LogCritical:
		return true
	}
	return false
}

// LogEntry is one client-side log line shipped in an ingestion batch.
type LogEntry struct {
	Timestamp string         `json:"timestamp"`
	Level     LogLevel       `json:"level"`
	Message   string         `json:"message"`
	Context   map[string]any `json:"context,omitempty"`
	UserID    string         `json:"userId,omitempty"`
	SessionID string         `json:"sessionId,omitempty"`
	Component string         `json:"component,omitempty"`
}

// Valid reports whether the entry carries all required fields.
func (e LogEntry) Valid() bool {
	return e.Timestamp != "" && e.Message != "" && ValidLogLevel(e.Level)
}
