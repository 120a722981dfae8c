package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ericfisherdev/taskdeck/internal/domain/model"
)

// Resolver selects which configured credential source to trust for a
// provider. Source order is fixed at construction and never reordered:
// explicit input > session > secret store > local file (> service account).
type Resolver struct {
	sources []CredentialSource
	logger  *slog.Logger
}

// NewResolver creates a Resolver over the given sources in priority order.
func NewResolver(logger *slog.Logger, sources ...CredentialSource) *Resolver {
	return &Resolver{sources: sources, logger: logger}
}

// Resolve returns the first complete credential for the provider, walking
// sources in priority order. When every source comes up empty it returns a
// *ConfigurationError naming each source that was checked; nothing is ever
// silently defaulted.
func (r *Resolver) Resolve(ctx context.Context, provider model.Provider) (*model.Credential, error) {
	checked := make([]string, 0, len(r.sources))

	for _, src := range r.sources {
		cred, err := src.Resolve(ctx, provider)
		if err != nil {
			if !errors.Is(err, ErrNoCredential) {
				// A broken source is skipped, not fatal; resolution continues
				// down the chain.
				r.logger.Warn("credential source failed",
					"source", src.Name(),
					"provider", provider,
					"error", err,
				)
			}
			checked = append(checked, src.Name())
			continue
		}

		r.logger.Debug("credentials resolved", "source", src.Name(), "provider", provider)
		return cred, nil
	}

	return nil, &ConfigurationError{Provider: provider, Checked: checked}
}
