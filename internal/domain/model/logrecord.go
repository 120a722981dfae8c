package model

// LogTimeFormat is the display format for action log timestamps.
const LogTimeFormat = "2006-01-02 15:04:05"

// LogRecord is one immutable entry of the append-only action log.
// Insertion order equals chronological order.
type LogRecord struct {
	Timestamp string `json:"timestamp"`
	Action    string `json:"action"`
	Details   string `json:"details"`
}
