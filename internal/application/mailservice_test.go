package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/taskdeck/internal/domain/model"
	"github.com/ericfisherdev/taskdeck/internal/domain/port/driven"
)

func mailFactory(client driven.MailClient, err error) MailClientFactory {
	return func(_ context.Context, _ *model.Credential) (driven.MailClient, error) {
		return client, err
	}
}

func TestMailServiceFetchMessages(t *testing.T) {
	client := &fakeMailClient{messages: []model.EmailMessage{
		{ID: "m1", Subject: "Invoice #42", From: "billing@example.com"},
		{ID: "m2", Subject: "Lunch?", From: "alice@example.com"},
	}}
	sink := &fakeActionLog{}
	svc := NewMailService(resolverFor(googleCred()), mailFactory(client, nil), NewLogService(sink, testLogger()))

	messages, err := svc.FetchMessages(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, messages, 2)

	require.Len(t, sink.records, 1)
	assert.Equal(t, "fetch_emails", sink.records[0].Action)
	assert.Equal(t, "Fetched 2 emails", sink.records[0].Details)
}

func TestMailServiceFetchErrorBecomesErrorRow(t *testing.T) {
	client := &fakeMailClient{fetchErr: errors.New("rate limited")}
	svc := NewMailService(resolverFor(googleCred()), mailFactory(client, nil), NewLogService(&fakeActionLog{}, testLogger()))

	messages, err := svc.FetchMessages(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.True(t, messages[0].IsError)
	assert.Contains(t, messages[0].From, "rate limited")
}

func TestMailServiceMissingCredentialsIsError(t *testing.T) {
	svc := NewMailService(emptyResolver(), mailFactory(&fakeMailClient{}, nil), NewLogService(&fakeActionLog{}, testLogger()))

	_, err := svc.FetchMessages(context.Background(), 10)

	var confErr *ConfigurationError
	require.ErrorAs(t, err, &confErr)
}

func TestSortMessagesLabelsAndArchivesMatches(t *testing.T) {
	client := &fakeMailClient{
		messages: []model.EmailMessage{
			{ID: "m1", Subject: "Invoice #42 due", From: "billing@example.com"},
			{ID: "m2", Subject: "Lunch?", From: "alice@example.com"},
			{ID: "m3", Subject: "Re: your INVOICE", From: "accounts@example.com"},
		},
		labels: []model.Label{{ID: "l-existing", Name: "Receipts"}},
	}
	sink := &fakeActionLog{}
	svc := NewMailService(resolverFor(googleCred()), mailFactory(client, nil), NewLogService(sink, testLogger()))

	results, err := svc.SortMessages(context.Background(), []model.SortRule{
		{Keyword: "invoice", Label: "Finance", Archive: true},
	})
	require.NoError(t, err)

	// Keyword matching is case-insensitive: m1 and m3 match, m2 does not.
	require.Len(t, results, 2)
	assert.Equal(t, "m1", results[0].MessageID)
	assert.Equal(t, "m3", results[1].MessageID)
	assert.Equal(t, "Labeled: Finance, Archived: true", results[0].Action)

	// No "Finance" label existed, so one was created and applied alongside
	// the inbox removal.
	require.Len(t, client.modified, 2)
	assert.Equal(t, []string{"created-Finance"}, client.modified[0].add)
	assert.Equal(t, []string{"INBOX"}, client.modified[0].remove)

	require.Len(t, sink.records, 1)
	assert.Equal(t, "sort_emails", sink.records[0].Action)
}

func TestSortMessagesLabelMatchIsCaseSensitive(t *testing.T) {
	client := &fakeMailClient{
		messages: []model.EmailMessage{{ID: "m1", Subject: "invoice", From: "a@example.com"}},
		labels:   []model.Label{{ID: "l-lower", Name: "finance"}},
	}
	svc := NewMailService(resolverFor(googleCred()), mailFactory(client, nil), NewLogService(&fakeActionLog{}, testLogger()))

	_, err := svc.SortMessages(context.Background(), []model.SortRule{
		{Keyword: "invoice", Label: "Finance"},
	})
	require.NoError(t, err)

	// "finance" does not match "Finance"; a new label is created.
	require.Len(t, client.modified, 1)
	assert.Equal(t, []string{"created-Finance"}, client.modified[0].add)
}

func TestSortMessagesReusesExistingLabel(t *testing.T) {
	client := &fakeMailClient{
		messages: []model.EmailMessage{{ID: "m1", Subject: "invoice", From: "a@example.com"}},
		labels:   []model.Label{{ID: "l-fin", Name: "Finance"}},
	}
	svc := NewMailService(resolverFor(googleCred()), mailFactory(client, nil), NewLogService(&fakeActionLog{}, testLogger()))

	_, err := svc.SortMessages(context.Background(), []model.SortRule{
		{Keyword: "invoice", Label: "Finance"},
	})
	require.NoError(t, err)

	require.Len(t, client.modified, 1)
	assert.Equal(t, []string{"l-fin"}, client.modified[0].add)
	assert.Nil(t, client.modified[0].remove)
}

func TestSortMessagesNoMatchesIsEmptyResult(t *testing.T) {
	client := &fakeMailClient{
		messages: []model.EmailMessage{{ID: "m1", Subject: "Lunch?", From: "alice@example.com"}},
	}
	svc := NewMailService(resolverFor(googleCred()), mailFactory(client, nil), NewLogService(&fakeActionLog{}, testLogger()))

	results, err := svc.SortMessages(context.Background(), []model.SortRule{
		{Keyword: "invoice", Label: "Finance", Archive: true},
	})
	require.NoError(t, err)
	require.NotNil(t, results)
	assert.Empty(t, results)
	assert.Empty(t, client.modified)
}

func TestSortMessagesEmptyKeywordMatchesNothing(t *testing.T) {
	client := &fakeMailClient{
		messages: []model.EmailMessage{
			{ID: "m1", Subject: "Invoice #42", From: "billing@example.com"},
			{ID: "m2", Subject: "Lunch?", From: "alice@example.com"},
		},
	}
	svc := NewMailService(resolverFor(googleCred()), mailFactory(client, nil), NewLogService(&fakeActionLog{}, testLogger()))

	results, err := svc.SortMessages(context.Background(), []model.SortRule{
		{Keyword: "", Label: "Everything", Archive: true},
	})
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Empty(t, client.modified)
}

func TestSortMessagesModifyFailureAppendsErrorResult(t *testing.T) {
	client := &fakeMailClient{
		messages:  []model.EmailMessage{{ID: "m1", Subject: "invoice", From: "a@example.com"}},
		modifyErr: errors.New("permission denied"),
	}
	svc := NewMailService(resolverFor(googleCred()), mailFactory(client, nil), NewLogService(&fakeActionLog{}, testLogger()))

	results, err := svc.SortMessages(context.Background(), []model.SortRule{
		{Keyword: "invoice", Label: "Finance"},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Contains(t, results[0].Action, "permission denied")
}

func TestSenderCounts(t *testing.T) {
	counts := SenderCounts([]model.EmailMessage{
		{ID: "m1", From: "alice@example.com"},
		{ID: "m2", From: "alice@example.com"},
		{ID: "m3", From: "bob@example.com"},
		{ID: "m4", From: "broken", IsError: true},
	})

	assert.Equal(t, map[string]int{"alice@example.com": 2, "bob@example.com": 1}, counts)
}
