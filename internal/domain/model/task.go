package model

// NoDueDate is the sentinel shown for cards without a due date. Absence of a
// due date is valid data, not an error.
const NoDueDate = "No due date"

// TaskBoardItem is one row of a task-board fetch, constructed fresh per fetch
// and never mutated. Status derives purely from the provider's closed flag.
// IsError marks a synthetic row carrying a wrapper-boundary error.
type TaskBoardItem struct {
	Name      string
	Due       string
	Status    TaskStatus
	BoardName string
	IsError   bool
}

// Board is a task board reachable by the credential.
type Board struct {
	ID   string
	Name string
	URL  string
}

// Card is a raw task-board card as returned by the provider.
type Card struct {
	Name   string
	Due    string
	Closed bool
}

// TaskReport reduces a task set to total/completed/pending counts. Error is
// the report-shaped analog of a synthetic error row: set on a provider
// failure, with all counts zero.
type TaskReport struct {
	Total     int    `json:"total"`
	Completed int    `json:"completed"`
	Pending   int    `json:"pending"`
	Error     string `json:"error,omitempty"`
}
