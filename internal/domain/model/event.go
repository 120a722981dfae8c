package model

// CalendarEvent is one row of a calendar fetch. Start holds either a
// normalized "2006-01-02 15:04" local display time (when the source provided
// a precise timestamp) or the source's bare date for all-day events.
// IsError marks a synthetic row carrying a wrapper-boundary error.
type CalendarEvent struct {
	Title       string
	Start       string
	Description string
	Link        string
	IsError     bool
}
