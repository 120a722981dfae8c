package driven

import (
	"context"

	"github.com/ericfisherdev/taskdeck/internal/domain/model"
)

// MailClient defines the driven port for the mail provider's list/get,
// labels, and modify endpoints under the "me" user scope.
type MailClient interface {
	// FetchMessages returns up to max recent inbox messages (subject and
	// sender), one list call plus one get call per message.
	FetchMessages(ctx context.Context, max int64) ([]model.EmailMessage, error)

	// ListLabels returns all labels visible to the credential.
	ListLabels(ctx context.Context) ([]model.Label, error)

	// CreateLabel creates a user label with the given name and returns it.
	CreateLabel(ctx context.Context, name string) (model.Label, error)

	// ModifyMessage applies label additions and removals to one message.
	ModifyMessage(ctx context.Context, id string, addLabelIDs, removeLabelIDs []string) error
}
