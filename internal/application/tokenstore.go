package application

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ericfisherdev/taskdeck/internal/domain/model"
	"github.com/ericfisherdev/taskdeck/internal/domain/port/driven"
)

// Refresher renews an expired credential without re-entering the consent
// flow. OAuthService.Refresh satisfies this.
type Refresher interface {
	Refresh(ctx context.Context, cred *model.Credential) (*model.Credential, error)
}

// TokenStore owns resolved credentials for the lifetime of one user session.
// Get transparently refreshes expired credentials that carry a refresh token;
// Invalidate implements sign-out. The store never revokes tokens with the
// remote provider.
//
// Puts and successful refreshes are mirrored to an optional CredentialStore
// as a best-effort, non-authoritative convenience cache; mirror failures are
// logged and ignored.
type TokenStore struct {
	mu        sync.Mutex
	creds     map[model.Provider]*model.Credential
	refresher Refresher
	mirror    driven.CredentialStore
	logger    *slog.Logger
}

// NewTokenStore creates an empty per-session TokenStore. refresher may be nil
// when no OAuth provider is configured; mirror may be nil to disable the
// local cache.
func NewTokenStore(refresher Refresher, mirror driven.CredentialStore, logger *slog.Logger) *TokenStore {
	return &TokenStore{
		creds:     make(map[model.Provider]*model.Credential),
		refresher: refresher,
		mirror:    mirror,
		logger:    logger,
	}
}

// Get returns the cached credential for the provider, or nil when none is
// held. An expired credential with a refresh token is refreshed in place; on
// refresh failure the entry is cleared and nil is returned so the caller
// re-authenticates. An expired credential without a refresh token yields nil,
// never a stale token.
func (s *TokenStore) Get(ctx context.Context, provider model.Provider) *model.Credential {
	s.mu.Lock()
	defer s.mu.Unlock()

	cred, ok := s.creds[provider]
	if !ok {
		return nil
	}
	if !cred.Expired() {
		return cred
	}

	if !cred.CanRefresh() {
		delete(s.creds, provider)
		return nil
	}

	refreshed, err := s.refresh(ctx, cred)
	if err != nil {
		s.logger.Warn("token refresh failed, clearing session credential",
			"provider", provider, "error", err)
		delete(s.creds, provider)
		return nil
	}

	s.creds[provider] = refreshed
	s.persist(ctx, refreshed)
	return refreshed
}

// Put stores the credential for its provider, replacing any previous entry.
func (s *TokenStore) Put(ctx context.Context, cred *model.Credential) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.creds[cred.Provider] = cred
	s.persist(ctx, cred)
}

// Invalidate removes the provider's entry unconditionally and drops the
// mirrored copy. Remote revocation is out of scope.
func (s *TokenStore) Invalidate(ctx context.Context, provider model.Provider) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.creds, provider)

	if s.mirror != nil {
		if err := s.mirror.Delete(ctx, string(provider)); err != nil {
			s.logger.Warn("credential cache delete failed", "provider", provider, "error", err)
		}
	}
}

func (s *TokenStore) refresh(ctx context.Context, cred *model.Credential) (*model.Credential, error) {
	if s.refresher == nil {
		return nil, ErrAuth
	}
	return s.refresher.Refresh(ctx, cred)
}

// persist mirrors the credential to the local cache. Best-effort only; the
// session copy remains authoritative.
func (s *TokenStore) persist(ctx context.Context, cred *model.Credential) {
	if s.mirror == nil {
		return
	}

	provider := string(cred.Provider)
	fields := map[string]string{
		"token": cred.AccessToken,
	}
	if cred.APIKey != "" {
		fields["key"] = cred.APIKey
	}
	if cred.RefreshToken != "" {
		fields["refresh_token"] = cred.RefreshToken
	}
	if !cred.Expiry.IsZero() {
		fields["expiry"] = cred.Expiry.Format(time.RFC3339)
	}

	for field, value := range fields {
		if err := s.mirror.Set(ctx, provider, field, value); err != nil {
			s.logger.Warn("credential cache write failed",
				"provider", provider, "field", field, "error", err)
			return
		}
	}
}
