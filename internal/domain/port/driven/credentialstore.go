package driven

import (
	"context"
	"errors"
)

// ErrEncryptionKeyNotSet is returned by CredentialStore operations when
// TASKDECK_SECRET_KEY has not been configured.
var ErrEncryptionKeyNotSet = errors.New("encryption key not configured: set TASKDECK_SECRET_KEY")

// CredentialStore defines the driven port for durable credential material.
// Entries are keyed by provider and field ("token", "refresh_token", "key").
// Implementations own encryption; this interface operates on plaintext values
// at the domain boundary.
type CredentialStore interface {
	// Set stores or replaces one credential field for the given provider.
	Set(ctx context.Context, provider, field, plaintext string) error

	// Get retrieves one credential field for the given provider.
	// Returns ("", nil) if no value exists for that provider/field.
	Get(ctx context.Context, provider, field string) (string, error)

	// GetAll returns every stored field for the given provider as a
	// field -> plaintext map. An empty map means nothing is stored.
	GetAll(ctx context.Context, provider string) (map[string]string, error)

	// Delete removes every stored field for the given provider.
	Delete(ctx context.Context, provider string) error
}
