package model

// EmailMessage is one row of an inbox fetch: subject and sender per message.
// IsError marks a synthetic row carrying a wrapper-boundary error.
type EmailMessage struct {
	ID      string
	Subject string
	From    string
	IsError bool
}

// SortRule directs one pass of mail sorting: messages whose subject or sender
// contains Keyword (case-insensitive) gain the named label and, when Archive
// is set, leave the inbox. Label names match existing labels case-sensitively.
type SortRule struct {
	Keyword string `json:"keyword"`
	Label   string `json:"label"`
	Archive bool   `json:"archive"`
}

// SortResult records one message touched by one sort rule.
type SortResult struct {
	MessageID string `json:"message_id"`
	Action    string `json:"action"`
}

// Label is a mail label as reported by the provider.
type Label struct {
	ID   string
	Name string
}
