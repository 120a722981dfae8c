// Package googleapi implements the CalendarClient and MailClient ports using
// the Google API client libraries.
package googleapi

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/ericfisherdev/taskdeck/internal/domain/model"
	"github.com/ericfisherdev/taskdeck/internal/domain/port/driven"
)

// startTimeFormat is the local display format for precise event timestamps.
const startTimeFormat = "2006-01-02 15:04"

// Compile-time interface satisfaction check.
var _ driven.CalendarClient = (*CalendarClient)(nil)

// CalendarClient implements the driven.CalendarClient port using the
// Google Calendar v3 API.
type CalendarClient struct {
	svc *calendar.Service
}

// NewCalendarClient creates a Calendar API client. Callers pass credentials
// via option.WithTokenSource; tests pass option.WithEndpoint and
// option.WithoutAuthentication to target an httptest server.
func NewCalendarClient(ctx context.Context, opts ...option.ClientOption) (*CalendarClient, error) {
	svc, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}
	return &CalendarClient{svc: svc}, nil
}

// FetchEvents returns events starting within the query's look-ahead window,
// ordered by start time. A single events-list call; pagination is capped by
// MaxResults by design.
func (c *CalendarClient) FetchEvents(ctx context.Context, q driven.EventQuery) ([]model.CalendarEvent, error) {
	calendarID := q.CalendarID
	if calendarID == "" {
		calendarID = "primary"
	}

	now := time.Now().UTC()
	res, err := c.svc.Events.List(calendarID).
		TimeMin(now.Format(time.RFC3339)).
		TimeMax(now.AddDate(0, 0, q.DaysAhead).Format(time.RFC3339)).
		MaxResults(q.MaxResults).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("listing events for %q: %w", calendarID, err)
	}

	events := make([]model.CalendarEvent, 0, len(res.Items))
	for _, item := range res.Items {
		events = append(events, mapEvent(item))
	}
	return events, nil
}

// mapEvent converts a Calendar API event to a domain model CalendarEvent.
// Precise timestamps are normalized to local display format; all-day events
// carry only a date and pass through unchanged.
func mapEvent(e *calendar.Event) model.CalendarEvent {
	title := e.Summary
	if title == "" {
		title = "(no title)"
	}

	var start string
	if e.Start != nil {
		start = e.Start.Date
		if e.Start.DateTime != "" {
			start = e.Start.DateTime
			if ts, err := time.Parse(time.RFC3339, e.Start.DateTime); err == nil {
				start = ts.Local().Format(startTimeFormat)
			}
		}
	}

	return model.CalendarEvent{
		Title:       title,
		Start:       start,
		Description: e.Description,
		Link:        e.HtmlLink,
	}
}
