package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/oauth2/google"

	"github.com/ericfisherdev/taskdeck/internal/domain/model"
	"github.com/ericfisherdev/taskdeck/internal/domain/port/driven"
)

// CredentialSource yields credential material for a provider from one backing
// mechanism. All backing mechanisms (user input, session, secret store, local
// file, service account) share this one capability; the Resolver iterates
// them in priority order.
type CredentialSource interface {
	// Name identifies the source in resolution failure reports.
	Name() string

	// Resolve returns the provider's credential, or ErrNoCredential when the
	// source has no complete material for it.
	Resolve(ctx context.Context, provider model.Provider) (*model.Credential, error)
}

// ExplicitSource holds credentials entered directly by the user during this
// session. It has the highest resolution priority.
type ExplicitSource struct {
	mu    sync.Mutex
	creds map[model.Provider]*model.Credential
}

// NewExplicitSource creates an empty ExplicitSource.
func NewExplicitSource() *ExplicitSource {
	return &ExplicitSource{creds: make(map[model.Provider]*model.Credential)}
}

func (s *ExplicitSource) Name() string { return "explicit input" }

// Set records user-entered credential material for a provider.
func (s *ExplicitSource) Set(cred *model.Credential) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds[cred.Provider] = cred
}

// Clear discards user-entered material for a provider.
func (s *ExplicitSource) Clear(provider model.Provider) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.creds, provider)
}

func (s *ExplicitSource) Resolve(_ context.Context, provider model.Provider) (*model.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cred := s.creds[provider]
	if !cred.Complete() {
		return nil, ErrNoCredential
	}
	return cred, nil
}

// SessionSource resolves from the session token store, refreshing expired
// tokens transparently through the store.
type SessionSource struct {
	store *TokenStore
}

// NewSessionSource creates a source backed by the given token store.
func NewSessionSource(store *TokenStore) *SessionSource {
	return &SessionSource{store: store}
}

func (s *SessionSource) Name() string { return "session" }

func (s *SessionSource) Resolve(ctx context.Context, provider model.Provider) (*model.Credential, error) {
	cred := s.store.Get(ctx, provider)
	if !cred.Complete() {
		return nil, ErrNoCredential
	}
	return cred, nil
}

// SecretStoreSource resolves from an externally-configured secret store
// (system keychain or the encrypted database store).
type SecretStoreSource struct {
	store driven.CredentialStore
}

// NewSecretStoreSource creates a source backed by the given credential store.
func NewSecretStoreSource(store driven.CredentialStore) *SecretStoreSource {
	return &SecretStoreSource{store: store}
}

func (s *SecretStoreSource) Name() string { return "secret store" }

func (s *SecretStoreSource) Resolve(ctx context.Context, provider model.Provider) (*model.Credential, error) {
	fields, err := s.store.GetAll(ctx, string(provider))
	if err != nil {
		// An unconfigured or unreadable store counts as absent, not fatal.
		if errors.Is(err, driven.ErrEncryptionKeyNotSet) {
			return nil, ErrNoCredential
		}
		return nil, fmt.Errorf("secret store: %w", err)
	}

	cred := credentialFromFields(provider, fields)
	if !cred.Complete() {
		return nil, ErrNoCredential
	}
	return cred, nil
}

// credentialFromFields assembles a Credential from stored field material.
func credentialFromFields(provider model.Provider, fields map[string]string) *model.Credential {
	cred := &model.Credential{
		Provider:     provider,
		APIKey:       fields["key"],
		AccessToken:  fields["token"],
		RefreshToken: fields["refresh_token"],
	}
	if v := fields["expiry"]; v != "" {
		if ts, err := time.Parse(time.RFC3339, v); err == nil {
			cred.Expiry = ts
		}
	}
	return cred
}

// FileSource resolves from local developer-only JSON files under a
// credentials directory: trello.json for Trello and token.json for Google.
// Files are parsed as structured data only, never evaluated.
type FileSource struct {
	dir string
}

// NewFileSource creates a source reading from the given directory.
func NewFileSource(dir string) *FileSource {
	return &FileSource{dir: dir}
}

func (s *FileSource) Name() string { return "local file" }

func (s *FileSource) Resolve(_ context.Context, provider model.Provider) (*model.Credential, error) {
	if s.dir == "" {
		return nil, ErrNoCredential
	}

	switch provider {
	case model.ProviderTrello:
		return s.resolveTrello()
	case model.ProviderGoogle:
		return s.resolveGoogleToken()
	default:
		return nil, ErrNoCredential
	}
}

func (s *FileSource) resolveTrello() (*model.Credential, error) {
	var payload struct {
		APIKey string `json:"api_key"`
		Token  string `json:"token"`
	}
	if err := s.readJSON("trello.json", &payload); err != nil {
		return nil, err
	}

	cred := &model.Credential{
		Provider:    model.ProviderTrello,
		APIKey:      payload.APIKey,
		AccessToken: payload.Token,
	}
	if !cred.Complete() {
		return nil, ErrNoCredential
	}
	return cred, nil
}

func (s *FileSource) resolveGoogleToken() (*model.Credential, error) {
	var payload struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		Expiry       string `json:"expiry"`
	}
	if err := s.readJSON("token.json", &payload); err != nil {
		return nil, err
	}

	cred := &model.Credential{
		Provider:     model.ProviderGoogle,
		AccessToken:  payload.AccessToken,
		RefreshToken: payload.RefreshToken,
	}
	if payload.Expiry != "" {
		if ts, err := time.Parse(time.RFC3339, payload.Expiry); err == nil {
			cred.Expiry = ts
		}
	}
	if !cred.Complete() {
		return nil, ErrNoCredential
	}
	return cred, nil
}

func (s *FileSource) readJSON(name string, v any) error {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNoCredential
		}
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}

// ServiceAccountSource mints short-lived tokens from a service-account key
// file. It sits last in the Google chain as a developer/deployment fallback
// when no interactive sign-in has happened.
type ServiceAccountSource struct {
	path   string
	scopes []string
}

// NewServiceAccountSource creates a source reading the JSON key at path.
func NewServiceAccountSource(path string, scopes []string) *ServiceAccountSource {
	return &ServiceAccountSource{path: path, scopes: scopes}
}

func (s *ServiceAccountSource) Name() string { return "service account" }

func (s *ServiceAccountSource) Resolve(ctx context.Context, provider model.Provider) (*model.Credential, error) {
	if provider != model.ProviderGoogle && provider != model.ProviderServiceAccount {
		return nil, ErrNoCredential
	}
	if s.path == "" {
		return nil, ErrNoCredential
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoCredential
		}
		return nil, fmt.Errorf("read service account key: %w", err)
	}

	cfg, err := google.JWTConfigFromJSON(data, s.scopes...)
	if err != nil {
		return nil, fmt.Errorf("parse service account key: %w", err)
	}

	tok, err := cfg.TokenSource(ctx).Token()
	if err != nil {
		return nil, fmt.Errorf("mint service account token: %w", err)
	}

	return &model.Credential{
		Provider:    provider,
		Scopes:      s.scopes,
		AccessToken: tok.AccessToken,
		Expiry:      tok.Expiry,
	}, nil
}
