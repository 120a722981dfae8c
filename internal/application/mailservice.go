package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ericfisherdev/taskdeck/internal/domain/model"
	"github.com/ericfisherdev/taskdeck/internal/domain/port/driven"
)

// sortBatchSize bounds how many recent messages one sort rule scans.
// Sorting works on a recent batch, never the full mailbox.
const sortBatchSize = 50

// MailClientFactory builds a mail client bound to a resolved credential.
type MailClientFactory func(ctx context.Context, cred *model.Credential) (driven.MailClient, error)

// MailService is the synchronous wrapper over the mail provider. The same
// error policy as the other wrappers applies: transport and provider errors
// become a single synthetic row, configuration errors are returned before
// any network call.
type MailService struct {
	resolver  *Resolver
	newClient MailClientFactory
	log       *LogService
}

// NewMailService creates a MailService.
func NewMailService(resolver *Resolver, newClient MailClientFactory, log *LogService) *MailService {
	return &MailService{resolver: resolver, newClient: newClient, log: log}
}

// FetchMessages returns up to max recent inbox messages.
func (s *MailService) FetchMessages(ctx context.Context, max int64) ([]model.EmailMessage, error) {
	client, err := s.client(ctx)
	if err != nil {
		var confErr *ConfigurationError
		if errors.As(err, &confErr) {
			return nil, confErr
		}
		return mailErrorRow(err), nil
	}

	messages, err := client.FetchMessages(ctx, max)
	if err != nil {
		return mailErrorRow(err), nil
	}
	if messages == nil {
		messages = []model.EmailMessage{}
	}

	s.log.Record(ctx, "fetch_emails", fmt.Sprintf("Fetched %d emails", len(messages)))
	return messages, nil
}

// SortMessages applies each rule independently and in the given order: the
// named label is resolved or created (label names match case-sensitively),
// the most recent batch is scanned for the keyword in subject or sender
// (case-insensitive substring), and matches gain the label and optionally
// leave the inbox. One result per touched message; non-matches are silently
// skipped. A later rule may relabel messages touched by an earlier one.
func (s *MailService) SortMessages(ctx context.Context, rules []model.SortRule) ([]model.SortResult, error) {
	client, err := s.client(ctx)
	if err != nil {
		var confErr *ConfigurationError
		if errors.As(err, &confErr) {
			return nil, confErr
		}
		return sortErrorResult(nil, err), nil
	}

	results := []model.SortResult{}
	for _, rule := range rules {
		labelID, err := s.resolveLabel(ctx, client, rule.Label)
		if err != nil {
			return sortErrorResult(results, err), nil
		}

		batch, err := client.FetchMessages(ctx, sortBatchSize)
		if err != nil {
			return sortErrorResult(results, err), nil
		}

		keyword := strings.ToLower(rule.Keyword)
		for _, msg := range batch {
			// An empty keyword matches nothing rather than everything, so a
			// half-filled rule cannot archive the whole inbox.
			if keyword == "" {
				continue
			}
			if !strings.Contains(strings.ToLower(msg.Subject), keyword) &&
				!strings.Contains(strings.ToLower(msg.From), keyword) {
				continue
			}

			var add, remove []string
			if labelID != "" {
				add = []string{labelID}
			}
			if rule.Archive {
				remove = []string{"INBOX"}
			}
			if len(add) == 0 && len(remove) == 0 {
				continue
			}

			if err := client.ModifyMessage(ctx, msg.ID, add, remove); err != nil {
				return sortErrorResult(results, err), nil
			}
			results = append(results, model.SortResult{
				MessageID: msg.ID,
				Action:    fmt.Sprintf("Labeled: %s, Archived: %t", rule.Label, rule.Archive),
			})
		}
	}

	s.log.Record(ctx, "sort_emails", fmt.Sprintf("Applied %d rules, %d messages touched", len(rules), len(results)))
	return results, nil
}

// SenderCounts counts messages per sender, backing the by-sender chart.
func SenderCounts(messages []model.EmailMessage) map[string]int {
	counts := make(map[string]int)
	for _, m := range messages {
		if m.IsError {
			continue
		}
		counts[m.From]++
	}
	return counts
}

// resolveLabel returns the id of the named label, creating it when no
// existing label matches. Matching is a case-sensitive exact comparison; an
// empty name means no label is applied.
func (s *MailService) resolveLabel(ctx context.Context, client driven.MailClient, name string) (string, error) {
	if name == "" {
		return "", nil
	}

	labels, err := client.ListLabels(ctx)
	if err != nil {
		return "", err
	}
	for _, l := range labels {
		if l.Name == name {
			return l.ID, nil
		}
	}

	created, err := client.CreateLabel(ctx, name)
	if err != nil {
		return "", err
	}
	return created.ID, nil
}

func (s *MailService) client(ctx context.Context) (driven.MailClient, error) {
	cred, err := s.resolver.Resolve(ctx, model.ProviderGoogle)
	if err != nil {
		return nil, err
	}
	return s.newClient(ctx, cred)
}

func mailErrorRow(err error) []model.EmailMessage {
	return []model.EmailMessage{{
		Subject: "Error fetching emails",
		From:    err.Error(),
		IsError: true,
	}}
}

func sortErrorResult(sofar []model.SortResult, err error) []model.SortResult {
	return append(sofar, model.SortResult{Action: fmt.Sprintf("Error: %v", err)})
}
