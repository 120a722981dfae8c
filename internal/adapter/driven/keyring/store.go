// Package keyring implements the CredentialStore port on the system keychain.
package keyring

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/ericfisherdev/taskdeck/internal/domain/port/driven"
)

const serviceName = "taskdeck"

// Compile-time interface satisfaction check.
var _ driven.CredentialStore = (*Store)(nil)

// Store holds credential material in the operating system keychain.
// All fields of one provider are stored as a single JSON blob under
// "taskdeck::<provider>", so a provider's material is added and removed
// as a unit.
type Store struct{}

// NewStore creates a keychain-backed credential store.
func NewStore() *Store {
	return &Store{}
}

// Available probes whether the system keychain can be used. Callers fall back
// to the encrypted database store when it cannot.
func Available() bool {
	const probe = "taskdeck::probe"
	if err := keyring.Set(serviceName, probe, "probe"); err != nil {
		return false
	}
	_ = keyring.Delete(serviceName, probe) // Best-effort cleanup
	return true
}

func entryKey(provider string) string {
	return fmt.Sprintf("taskdeck::%s", provider)
}

// Set stores or replaces one credential field for the given provider.
func (s *Store) Set(ctx context.Context, provider, field, plaintext string) error {
	fields, err := s.load(provider)
	if err != nil {
		return err
	}
	fields[field] = plaintext
	return s.save(provider, fields)
}

// Get retrieves one credential field for the given provider.
// Returns ("", nil) if no value exists for that provider/field.
func (s *Store) Get(ctx context.Context, provider, field string) (string, error) {
	fields, err := s.load(provider)
	if err != nil {
		return "", err
	}
	return fields[field], nil
}

// GetAll returns every stored field for the given provider.
func (s *Store) GetAll(ctx context.Context, provider string) (map[string]string, error) {
	return s.load(provider)
}

// Delete removes every stored field for the given provider.
func (s *Store) Delete(ctx context.Context, provider string) error {
	err := keyring.Delete(serviceName, entryKey(provider))
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("delete keychain entry for %q: %w", provider, err)
	}
	return nil
}

func (s *Store) load(provider string) (map[string]string, error) {
	data, err := keyring.Get(serviceName, entryKey(provider))
	if errors.Is(err, keyring.ErrNotFound) {
		return make(map[string]string), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read keychain entry for %q: %w", provider, err)
	}

	var fields map[string]string
	if err := json.Unmarshal([]byte(data), &fields); err != nil {
		return nil, fmt.Errorf("invalid keychain entry for %q: %w", provider, err)
	}
	return fields, nil
}

func (s *Store) save(provider string, fields map[string]string) error {
	data, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	if err := keyring.Set(serviceName, entryKey(provider), string(data)); err != nil {
		return fmt.Errorf("write keychain entry for %q: %w", provider, err)
	}
	return nil
}
