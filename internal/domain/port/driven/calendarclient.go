package driven

import (
	"context"

	"github.com/ericfisherdev/taskdeck/internal/domain/model"
)

// EventQuery bounds one calendar fetch.
type EventQuery struct {
	DaysAhead  int
	MaxResults int64
	CalendarID string
}

// CalendarClient defines the driven port for the calendar provider's
// events-list endpoint. One query maps to a single external call.
type CalendarClient interface {
	// FetchEvents returns events starting within the query's look-ahead
	// window, ordered by start time. An empty result is valid and distinct
	// from an error.
	FetchEvents(ctx context.Context, q EventQuery) ([]model.CalendarEvent, error)
}
