package httphandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ericfisherdev/taskdeck/internal/application"
	"github.com/ericfisherdev/taskdeck/internal/domain/model"
	"github.com/ericfisherdev/taskdeck/internal/domain/port/driven"
)

const (
	defaultDaysAhead  = 7
	defaultMaxResults = 20
)

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	calendarSvc  *application.CalendarService
	mailSvc      *application.MailService
	taskSvc      *application.TaskService
	logSvc       *application.LogService
	oauthSvc     *application.OAuthService
	tokenStore   *application.TokenStore
	explicit     *application.ExplicitSource
	googleScopes []string
	logger       *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	calendarSvc *application.CalendarService,
	mailSvc *application.MailService,
	taskSvc *application.TaskService,
	logSvc *application.LogService,
	oauthSvc *application.OAuthService,
	tokenStore *application.TokenStore,
	explicit *application.ExplicitSource,
	googleScopes []string,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		calendarSvc:  calendarSvc,
		mailSvc:      mailSvc,
		taskSvc:      taskSvc,
		logSvc:       logSvc,
		oauthSvc:     oauthSvc,
		tokenStore:   tokenStore,
		explicit:     explicit,
		googleScopes: googleScopes,
		logger:       logger,
	}
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with logging and recovery middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/calendar/events", h.ListEvents)
	mux.HandleFunc("GET /api/v1/emails", h.ListEmails)
	mux.HandleFunc("POST /api/v1/emails/sort", h.SortEmails)
	mux.HandleFunc("GET /api/v1/tasks", h.ListTasks)
	mux.HandleFunc("GET /api/v1/tasks/report", h.TaskReport)
	mux.HandleFunc("GET /api/v1/logs", h.ListLogs)
	mux.HandleFunc("GET /api/v1/logs/export", h.ExportLogs)
	mux.HandleFunc("PUT /api/v1/credentials/{provider}", h.SetCredentials)
	mux.HandleFunc("DELETE /api/v1/credentials/{provider}", h.DeleteCredentials)
	mux.HandleFunc("GET /auth/google/login", h.GoogleLogin)
	mux.HandleFunc("GET /auth/google/callback", h.GoogleCallback)
	mux.HandleFunc("GET /api/v1/health", h.Health)

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = loggingMiddleware(logger, wrapped)

	return wrapped
}

// ListEvents returns upcoming calendar events. Missing credentials are a 400
// with the list of checked sources; provider failures come back as error rows
// inside a 200.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	q := driven.EventQuery{
		DaysAhead:  queryInt(r, "days", defaultDaysAhead),
		MaxResults: int64(queryInt(r, "max", defaultMaxResults)),
		CalendarID: r.URL.Query().Get("calendar"),
	}
	if q.CalendarID == "" {
		q.CalendarID = "primary"
	}

	events, err := h.calendarSvc.FetchEvents(r.Context(), q)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	resp := make([]EventResponse, 0, len(events))
	for _, e := range events {
		resp = append(resp, toEventResponse(e))
	}

	writeJSON(w, http.StatusOK, resp)
}

// ListEmails returns recent inbox messages.
func (h *Handler) ListEmails(w http.ResponseWriter, r *http.Request) {
	max := int64(queryInt(r, "max", defaultMaxResults))

	messages, err := h.mailSvc.FetchMessages(r.Context(), max)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	resp := make([]EmailResponse, 0, len(messages))
	for _, m := range messages {
		resp = append(resp, toEmailResponse(m))
	}

	writeJSON(w, http.StatusOK, resp)
}

// SortEmails applies the posted sort rules to the recent inbox batch.
func (h *Handler) SortEmails(w http.ResponseWriter, r *http.Request) {
	var req SortRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Rules) == 0 {
		writeError(w, http.StatusBadRequest, "rules must not be empty")
		return
	}

	results, err := h.mailSvc.SortMessages(r.Context(), req.Rules)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	resp := make([]SortResultResponse, 0, len(results))
	for _, res := range results {
		resp = append(resp, SortResultResponse{MessageID: res.MessageID, Action: res.Action})
	}

	writeJSON(w, http.StatusOK, resp)
}

// ListTasks returns task-board items, optionally filtered to one board.
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	items, err := h.taskSvc.FetchTasks(r.Context(), r.URL.Query().Get("board"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	resp := make([]TaskResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, toTaskResponse(item))
	}

	writeJSON(w, http.StatusOK, resp)
}

// TaskReport returns the completion summary for one board, or across all
// boards when aggregate=true.
func (h *Handler) TaskReport(w http.ResponseWriter, r *http.Request) {
	aggregate := r.URL.Query().Get("aggregate") == "true"
	report, err := h.taskSvc.TaskReport(r.Context(), r.URL.Query().Get("board"), aggregate)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// ListLogs returns the full action log in chronological order.
func (h *Handler) ListLogs(w http.ResponseWriter, r *http.Request) {
	records := h.logSvc.ReadAll(r.Context())

	resp := make([]LogRecordResponse, 0, len(records))
	for _, rec := range records {
		resp = append(resp, toLogRecordResponse(rec))
	}

	writeJSON(w, http.StatusOK, resp)
}

// ExportLogs streams the action log as CSV or JSON.
func (h *Handler) ExportLogs(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}

	data, err := h.logSvc.Export(r.Context(), format)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	switch format {
	case "json":
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
	default:
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="action_log.csv"`)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(data))
}

// SetCredentials records user-entered credential material as the
// highest-priority source for the provider.
func (h *Handler) SetCredentials(w http.ResponseWriter, r *http.Request) {
	provider, ok := parseProvider(r.PathValue("provider"))
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown provider")
		return
	}

	var req CredentialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cred := &model.Credential{
		Provider:     provider,
		APIKey:       req.Key,
		AccessToken:  req.Token,
		RefreshToken: req.RefreshToken,
	}
	if !cred.Complete() {
		writeError(w, http.StatusBadRequest, "incomplete credential material")
		return
	}

	h.explicit.Set(cred)
	h.logSvc.Record(r.Context(), "set_credentials", "Updated credentials for "+string(provider))

	w.WriteHeader(http.StatusNoContent)
}

// DeleteCredentials signs the provider out: explicit input and the session
// entry are dropped, along with the locally cached copy. Remote tokens are
// not revoked.
func (h *Handler) DeleteCredentials(w http.ResponseWriter, r *http.Request) {
	provider, ok := parseProvider(r.PathValue("provider"))
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown provider")
		return
	}

	h.explicit.Clear(provider)
	h.tokenStore.Invalidate(r.Context(), provider)
	h.logSvc.Record(r.Context(), "sign_out", "Cleared credentials for "+string(provider))

	w.WriteHeader(http.StatusNoContent)
}

// GoogleLogin starts an authorization flow and redirects to the consent URL.
func (h *Handler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	flow, err := h.oauthSvc.BeginAuth(model.AuthorizationRequest{
		Provider: model.ProviderGoogle,
		Scopes:   h.googleScopes,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	http.Redirect(w, r, flow.AuthURL, http.StatusFound)
}

// GoogleCallback consumes the provider redirect, exchanges the code, and
// stores the resulting credential in the session.
func (h *Handler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if errCode := query.Get("error"); errCode != "" {
		writeError(w, http.StatusBadRequest, "authorization denied: "+errCode)
		return
	}

	cred, err := h.oauthSvc.ExchangeCode(r.Context(), query.Get("state"), query.Get("code"))
	if err != nil {
		h.logger.Warn("oauth callback rejected", "error", err)
		writeError(w, http.StatusBadRequest, "authorization failed")
		return
	}

	h.tokenStore.Put(r.Context(), cred)
	h.logSvc.Record(r.Context(), "sign_in", "Signed in to "+string(cred.Provider))

	writeJSON(w, http.StatusOK, AuthStatusResponse{
		Provider: string(cred.Provider),
		Status:   "authenticated",
	})
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// writeServiceError maps application errors onto status codes: missing
// credentials are the caller's problem (400), anything else is internal.
func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	var confErr *application.ConfigurationError
	if errors.As(err, &confErr) {
		writeError(w, http.StatusBadRequest, confErr.Error())
		return
	}

	h.logger.Error("request failed", "error", err)
	writeError(w, http.StatusInternalServerError, "internal server error")
}

// queryInt reads an integer query parameter, falling back to def when the
// parameter is absent or not a positive integer.
func queryInt(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// parseProvider validates a provider path segment.
func parseProvider(s string) (model.Provider, bool) {
	switch model.Provider(s) {
	case model.ProviderGoogle, model.ProviderTrello:
		return model.Provider(s), true
	default:
		return "", false
	}
}
