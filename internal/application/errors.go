package application

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ericfisherdev/taskdeck/internal/domain/model"
)

// ErrNoCredential is returned by a CredentialSource that has no complete
// credential material for the requested provider. Partial material (a key
// without a token) counts as absent.
var ErrNoCredential = errors.New("no credential available")

// ErrAuth marks authentication failures: expired or invalid tokens and
// mismatched OAuth state. Callers re-authenticate; nothing retries silently.
var ErrAuth = errors.New("authentication required")

// ConfigurationError reports that no source yielded usable credentials for a
// provider. It enumerates every source that was checked and is surfaced to
// the user before any network call is made.
type ConfigurationError struct {
	Provider model.Provider
	Checked  []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("no usable credentials for %s; checked sources: %s",
		e.Provider, strings.Join(e.Checked, ", "))
}
