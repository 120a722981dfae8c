package httphandler

import (
	"encoding/json"
	"net/http"

	"github.com/ericfisherdev/taskdeck/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// EventResponse is the JSON representation of a calendar event.
type EventResponse struct {
	Title       string `json:"title"`
	Start       string `json:"start"`
	Description string `json:"description"`
	Link        string `json:"link"`
	IsError     bool   `json:"is_error"`
}

// EmailResponse is the JSON representation of an inbox message.
type EmailResponse struct {
	ID      string `json:"id"`
	Subject string `json:"subject"`
	From    string `json:"from"`
	IsError bool   `json:"is_error"`
}

// SortRequest is the JSON body for the email sort endpoint.
type SortRequest struct {
	Rules []model.SortRule `json:"rules"`
}

// SortResultResponse is the JSON representation of one sort outcome.
type SortResultResponse struct {
	MessageID string `json:"message_id"`
	Action    string `json:"action"`
}

// TaskResponse is the JSON representation of a task-board item.
type TaskResponse struct {
	Name      string `json:"name"`
	Due       string `json:"due"`
	Status    string `json:"status"`
	BoardName string `json:"board_name"`
	IsError   bool   `json:"is_error"`
}

// LogRecordResponse is the JSON representation of one action log record.
type LogRecordResponse struct {
	Timestamp string `json:"timestamp"`
	Action    string `json:"action"`
	Details   string `json:"details"`
}

// CredentialRequest is the JSON body for the set-credentials endpoint.
type CredentialRequest struct {
	Key          string `json:"key,omitempty"`
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// AuthStatusResponse is the JSON representation of a completed sign-in.
type AuthStatusResponse struct {
	Provider string `json:"provider"`
	Status   string `json:"status"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// toEventResponse converts a domain CalendarEvent to its JSON representation.
func toEventResponse(e model.CalendarEvent) EventResponse {
	return EventResponse{
		Title:       e.Title,
		Start:       e.Start,
		Description: e.Description,
		Link:        e.Link,
		IsError:     e.IsError,
	}
}

// toEmailResponse converts a domain EmailMessage to its JSON representation.
func toEmailResponse(m model.EmailMessage) EmailResponse {
	return EmailResponse{
		ID:      m.ID,
		Subject: m.Subject,
		From:    m.From,
		IsError: m.IsError,
	}
}

// toTaskResponse converts a domain TaskBoardItem to its JSON representation.
func toTaskResponse(item model.TaskBoardItem) TaskResponse {
	return TaskResponse{
		Name:      item.Name,
		Due:       item.Due,
		Status:    string(item.Status),
		BoardName: item.BoardName,
		IsError:   item.IsError,
	}
}

// toLogRecordResponse converts a domain LogRecord to its JSON representation.
func toLogRecordResponse(rec model.LogRecord) LogRecordResponse {
	return LogRecordResponse{
		Timestamp: rec.Timestamp,
		Action:    rec.Action,
		Details:   rec.Details,
	}
}
