package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/ericfisherdev/taskdeck/internal/domain/model"
	"github.com/ericfisherdev/taskdeck/internal/domain/port/driven"
)

// CalendarClientFactory builds a calendar client bound to a resolved
// credential. Each fetch constructs a fresh client so credential changes take
// effect immediately.
type CalendarClientFactory func(ctx context.Context, cred *model.Credential) (driven.CalendarClient, error)

// CalendarService is the synchronous wrapper over the calendar provider.
// Transport and provider errors surface as a single synthetic error row so
// the caller renders success and failure uniformly; only a configuration
// error (missing credentials, reported before any network call) is returned
// as an error.
type CalendarService struct {
	resolver  *Resolver
	newClient CalendarClientFactory
	log       *LogService
}

// NewCalendarService creates a CalendarService.
func NewCalendarService(resolver *Resolver, newClient CalendarClientFactory, log *LogService) *CalendarService {
	return &CalendarService{resolver: resolver, newClient: newClient, log: log}
}

// FetchEvents returns upcoming events within the query window. An empty
// window is an empty slice, distinct from an error row.
func (s *CalendarService) FetchEvents(ctx context.Context, q driven.EventQuery) ([]model.CalendarEvent, error) {
	cred, err := s.resolver.Resolve(ctx, model.ProviderGoogle)
	if err != nil {
		var confErr *ConfigurationError
		if errors.As(err, &confErr) {
			return nil, confErr
		}
		return calendarErrorRow(err), nil
	}

	client, err := s.newClient(ctx, cred)
	if err != nil {
		return calendarErrorRow(err), nil
	}

	events, err := client.FetchEvents(ctx, q)
	if err != nil {
		return calendarErrorRow(err), nil
	}
	if events == nil {
		events = []model.CalendarEvent{}
	}

	s.log.Record(ctx, "fetch_events", fmt.Sprintf("Fetched %d events", len(events)))
	return events, nil
}

// EventsPerDay counts events by the date portion of their start value,
// backing the events-per-day chart. Error rows and empty starts are skipped.
func EventsPerDay(events []model.CalendarEvent) map[string]int {
	counts := make(map[string]int)
	for _, e := range events {
		if e.IsError || len(e.Start) < 10 {
			continue
		}
		counts[e.Start[:10]]++
	}
	return counts
}

func calendarErrorRow(err error) []model.CalendarEvent {
	return []model.CalendarEvent{{
		Title:   fmt.Sprintf("Error: %v", err),
		Start:   "",
		IsError: true,
	}}
}
