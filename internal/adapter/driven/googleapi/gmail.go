package googleapi

import (
	"context"
	"fmt"

	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/ericfisherdev/taskdeck/internal/domain/model"
	"github.com/ericfisherdev/taskdeck/internal/domain/port/driven"
)

// inboxQuery excludes promotional and social category mail from fetches.
const inboxQuery = "in:inbox -category:promotions -category:social"

// Compile-time interface satisfaction check.
var _ driven.MailClient = (*MailClient)(nil)

// MailClient implements the driven.MailClient port using the Gmail v1 API
// under the "me" user scope.
type MailClient struct {
	svc *gmail.Service
}

// NewMailClient creates a Gmail API client. Callers pass credentials via
// option.WithTokenSource; tests pass option.WithEndpoint and
// option.WithoutAuthentication to target an httptest server.
func NewMailClient(ctx context.Context, opts ...option.ClientOption) (*MailClient, error) {
	svc, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create gmail service: %w", err)
	}
	return &MailClient{svc: svc}, nil
}

// FetchMessages returns up to max recent inbox messages. One list call plus
// one metadata get per message id.
func (c *MailClient) FetchMessages(ctx context.Context, max int64) ([]model.EmailMessage, error) {
	list, err := c.svc.Users.Messages.List("me").
		LabelIds("INBOX").
		Q(inboxQuery).
		MaxResults(max).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}

	messages := make([]model.EmailMessage, 0, len(list.Messages))
	for _, m := range list.Messages {
		full, err := c.svc.Users.Messages.Get("me", m.Id).
			Format("metadata").
			MetadataHeaders("Subject", "From").
			Context(ctx).
			Do()
		if err != nil {
			return nil, fmt.Errorf("getting message %s: %w", m.Id, err)
		}
		messages = append(messages, mapMessage(m.Id, full))
	}
	return messages, nil
}

// ListLabels returns all labels visible to the credential.
func (c *MailClient) ListLabels(ctx context.Context) ([]model.Label, error) {
	res, err := c.svc.Users.Labels.List("me").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("listing labels: %w", err)
	}

	labels := make([]model.Label, 0, len(res.Labels))
	for _, l := range res.Labels {
		labels = append(labels, model.Label{ID: l.Id, Name: l.Name})
	}
	return labels, nil
}

// CreateLabel creates a user label visible in both label and message lists.
func (c *MailClient) CreateLabel(ctx context.Context, name string) (model.Label, error) {
	created, err := c.svc.Users.Labels.Create("me", &gmail.Label{
		Name:                  name,
		LabelListVisibility:   "labelShow",
		MessageListVisibility: "show",
	}).Context(ctx).Do()
	if err != nil {
		return model.Label{}, fmt.Errorf("creating label %q: %w", name, err)
	}
	return model.Label{ID: created.Id, Name: created.Name}, nil
}

// ModifyMessage applies label additions and removals to one message.
func (c *MailClient) ModifyMessage(ctx context.Context, id string, addLabelIDs, removeLabelIDs []string) error {
	_, err := c.svc.Users.Messages.Modify("me", id, &gmail.ModifyMessageRequest{
		AddLabelIds:    addLabelIDs,
		RemoveLabelIds: removeLabelIDs,
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("modifying message %s: %w", id, err)
	}
	return nil
}

// mapMessage converts a Gmail API message to a domain model EmailMessage,
// defaulting missing headers the way the dashboard displays them.
func mapMessage(id string, m *gmail.Message) model.EmailMessage {
	subject := "No Subject"
	from := "Unknown Sender"

	if m.Payload != nil {
		for _, h := range m.Payload.Headers {
			switch h.Name {
			case "Subject":
				subject = h.Value
			case "From":
				from = h.Value
			}
		}
	}

	return model.EmailMessage{
		ID:      id,
		Subject: subject,
		From:    from,
	}
}
