package application

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/taskdeck/internal/domain/model"
	"github.com/ericfisherdev/taskdeck/internal/domain/port/driven"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeSource is a canned CredentialSource for resolver tests.
type fakeSource struct {
	name string
	cred *model.Credential
	err  error
}

func (s *fakeSource) Name() string { return s.name }

func (s *fakeSource) Resolve(_ context.Context, _ model.Provider) (*model.Credential, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.cred, nil
}

// fakeActionLog is an in-memory ActionLog sink.
type fakeActionLog struct {
	records   []model.LogRecord
	appendErr error
	readErr   error
}

func (l *fakeActionLog) Append(_ context.Context, rec model.LogRecord) error {
	if l.appendErr != nil {
		return l.appendErr
	}
	l.records = append(l.records, rec)
	return nil
}

func (l *fakeActionLog) ReadAll(_ context.Context) ([]model.LogRecord, error) {
	if l.readErr != nil {
		return nil, l.readErr
	}
	return l.records, nil
}

// fakeRefresher returns a canned refresh result.
type fakeRefresher struct {
	cred  *model.Credential
	err   error
	calls int
}

func (r *fakeRefresher) Refresh(_ context.Context, _ *model.Credential) (*model.Credential, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return r.cred, nil
}

// fakeCredentialStore is an in-memory driven.CredentialStore.
type fakeCredentialStore struct {
	fields map[string]map[string]string
	setErr error
	getErr error
}

func newFakeCredentialStore() *fakeCredentialStore {
	return &fakeCredentialStore{fields: make(map[string]map[string]string)}
}

func (s *fakeCredentialStore) Set(_ context.Context, provider, field, plaintext string) error {
	if s.setErr != nil {
		return s.setErr
	}
	if s.fields[provider] == nil {
		s.fields[provider] = make(map[string]string)
	}
	s.fields[provider][field] = plaintext
	return nil
}

func (s *fakeCredentialStore) Get(_ context.Context, provider, field string) (string, error) {
	if s.getErr != nil {
		return "", s.getErr
	}
	return s.fields[provider][field], nil
}

func (s *fakeCredentialStore) GetAll(_ context.Context, provider string) (map[string]string, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.fields[provider], nil
}

func (s *fakeCredentialStore) Delete(_ context.Context, provider string) error {
	delete(s.fields, provider)
	return nil
}

type fakeCalendarClient struct {
	events []model.CalendarEvent
	err    error
}

func (c *fakeCalendarClient) FetchEvents(_ context.Context, _ driven.EventQuery) ([]model.CalendarEvent, error) {
	return c.events, c.err
}

// fakeMailClient records label and modify calls for sort assertions.
type fakeMailClient struct {
	messages []model.EmailMessage
	fetchErr error

	labels    []model.Label
	createErr error

	modified  []modifyCall
	modifyErr error
}

type modifyCall struct {
	id     string
	add    []string
	remove []string
}

func (c *fakeMailClient) FetchMessages(_ context.Context, _ int64) ([]model.EmailMessage, error) {
	return c.messages, c.fetchErr
}

func (c *fakeMailClient) ListLabels(_ context.Context) ([]model.Label, error) {
	return c.labels, nil
}

func (c *fakeMailClient) CreateLabel(_ context.Context, name string) (model.Label, error) {
	if c.createErr != nil {
		return model.Label{}, c.createErr
	}
	label := model.Label{ID: "created-" + name, Name: name}
	c.labels = append(c.labels, label)
	return label, nil
}

func (c *fakeMailClient) ModifyMessage(_ context.Context, id string, add, remove []string) error {
	if c.modifyErr != nil {
		return c.modifyErr
	}
	c.modified = append(c.modified, modifyCall{id: id, add: add, remove: remove})
	return nil
}

type fakeTaskClient struct {
	boards    []model.Board
	boardsErr error
	cards     map[string][]model.Card
	cardsErr  map[string]error
}

func (c *fakeTaskClient) FetchBoards(_ context.Context) ([]model.Board, error) {
	return c.boards, c.boardsErr
}

func (c *fakeTaskClient) FetchCards(_ context.Context, boardID string) ([]model.Card, error) {
	if err := c.cardsErr[boardID]; err != nil {
		return nil, err
	}
	return c.cards[boardID], nil
}

// resolverFor builds a single-source resolver that always yields cred.
func resolverFor(cred *model.Credential) *Resolver {
	return NewResolver(testLogger(), &fakeSource{name: "explicit input", cred: cred})
}

// emptyResolver builds a resolver where every source comes up empty.
func emptyResolver() *Resolver {
	return NewResolver(testLogger(),
		&fakeSource{name: "explicit input", err: ErrNoCredential},
		&fakeSource{name: "session", err: ErrNoCredential},
	)
}
