package googleapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/ericfisherdev/taskdeck/internal/domain/port/driven"
)

// newTestCalendarClient creates a CalendarClient pointed at an httptest server.
func newTestCalendarClient(t *testing.T, handler http.Handler) *CalendarClient {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewCalendarClient(context.Background(),
		option.WithEndpoint(srv.URL),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return client
}

func TestCalendarClient_FetchEvents(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/calendars/primary/events", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "true", r.URL.Query().Get("singleEvents"))
		assert.Equal(t, "startTime", r.URL.Query().Get("orderBy"))
		assert.Equal(t, "20", r.URL.Query().Get("maxResults"))
		assert.NotEmpty(t, r.URL.Query().Get("timeMin"))
		assert.NotEmpty(t, r.URL.Query().Get("timeMax"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"items": [
				{"summary": "Standup", "start": {"dateTime": "2025-03-04T09:30:00Z"}, "description": "daily", "htmlLink": "https://cal/1"},
				{"summary": "Conference", "start": {"date": "2025-03-06"}},
				{"start": {"dateTime": "2025-03-05T14:00:00Z"}}
			]
		}`)
	})

	client := newTestCalendarClient(t, mux)

	events, err := client.FetchEvents(context.Background(), driven.EventQuery{
		DaysAhead:  7,
		MaxResults: 20,
	})
	require.NoError(t, err)
	require.Len(t, events, 3)

	assert.Equal(t, "Standup", events[0].Title)
	assert.Equal(t, "daily", events[0].Description)
	assert.Equal(t, "https://cal/1", events[0].Link)
	// Precise timestamps are normalized; the exact rendering depends on the
	// local zone, so assert the shape rather than the value.
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2} \d{2}:\d{2}$`, events[0].Start)

	// All-day events carry a bare date, passed through unchanged.
	assert.Equal(t, "2025-03-06", events[1].Start)

	// Missing summary defaults to a placeholder title.
	assert.Equal(t, "(no title)", events[2].Title)
}

func TestCalendarClient_FetchEventsEmptyWindow(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/calendars/primary/events", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"items": []}`)
	})

	client := newTestCalendarClient(t, mux)

	events, err := client.FetchEvents(context.Background(), driven.EventQuery{DaysAhead: 7, MaxResults: 20})
	require.NoError(t, err)
	assert.NotNil(t, events)
	assert.Empty(t, events)
}

func TestCalendarClient_FetchEventsCustomCalendar(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/calendars/work@example.com/events", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"items": [{"summary": "1:1", "start": {"date": "2025-03-07"}}]}`)
	})

	client := newTestCalendarClient(t, mux)

	events, err := client.FetchEvents(context.Background(), driven.EventQuery{
		DaysAhead:  7,
		MaxResults: 5,
		CalendarID: "work@example.com",
	})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "1:1", events[0].Title)
}

func TestCalendarClient_FetchEventsProviderError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/calendars/primary/events", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"code": 403, "message": "insufficient scope"}}`, http.StatusForbidden)
	})

	client := newTestCalendarClient(t, mux)

	_, err := client.FetchEvents(context.Background(), driven.EventQuery{DaysAhead: 7, MaxResults: 20})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listing events")
}
