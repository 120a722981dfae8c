// Package config loads application configuration from environment variables.
package config

import (
	"encoding/hex"
	"fmt"
	"os"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	ListenAddr string
	DBPath     string

	// SecretKey encrypts credentials at rest in the database store. Nil when
	// TASKDECK_SECRET_KEY is unset; the store then refuses writes.
	SecretKey []byte

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string

	TrelloKey   string
	TrelloToken string

	// CredentialsDir optionally points at a directory of developer-only
	// credential files (trello.json, token.json).
	CredentialsDir string

	// ServiceAccountFile optionally points at a Google service-account key.
	ServiceAccountFile string
}

// HasGoogleOAuth returns true when a Google OAuth client is configured. Used
// by the composition root to decide whether interactive sign-in is offered.
func (c *Config) HasGoogleOAuth() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

// HasTrelloCredentials returns true when both the Trello key and token are
// set in the environment.
func (c *Config) HasTrelloCredentials() bool {
	return c.TrelloKey != "" && c.TrelloToken != ""
}

// Load reads configuration from environment variables and returns a validated
// Config. All provider credentials are optional; the app starts without them
// and reports missing credentials per request. Optional variables with
// defaults: TASKDECK_LISTEN_ADDR (127.0.0.1:8080), TASKDECK_DB_PATH
// (taskdeck.db). TASKDECK_SECRET_KEY, when set, must be 64 hex characters
// (32 bytes).
func Load() (*Config, error) {
	listenAddr := "127.0.0.1:8080"
	if v, ok := os.LookupEnv("TASKDECK_LISTEN_ADDR"); ok {
		listenAddr = v
	}

	dbPath := "taskdeck.db"
	if v, ok := os.LookupEnv("TASKDECK_DB_PATH"); ok {
		dbPath = v
	}

	var secretKey []byte
	if v, ok := os.LookupEnv("TASKDECK_SECRET_KEY"); ok && v != "" {
		decoded, err := hex.DecodeString(v)
		if err != nil {
			return nil, fmt.Errorf("TASKDECK_SECRET_KEY is not valid hex: %w", err)
		}
		if len(decoded) != 32 {
			return nil, fmt.Errorf("TASKDECK_SECRET_KEY must decode to 32 bytes, got %d", len(decoded))
		}
		secretKey = decoded
	}

	redirectURL := "http://" + listenAddr + "/auth/google/callback"
	if v, ok := os.LookupEnv("TASKDECK_GOOGLE_REDIRECT_URL"); ok {
		redirectURL = v
	}

	return &Config{
		ListenAddr:         listenAddr,
		DBPath:             dbPath,
		SecretKey:          secretKey,
		GoogleClientID:     os.Getenv("TASKDECK_GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("TASKDECK_GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:  redirectURL,
		TrelloKey:          os.Getenv("TASKDECK_TRELLO_KEY"),
		TrelloToken:        os.Getenv("TASKDECK_TRELLO_TOKEN"),
		CredentialsDir:     os.Getenv("TASKDECK_CREDENTIALS_DIR"),
		ServiceAccountFile: os.Getenv("TASKDECK_SERVICE_ACCOUNT_FILE"),
	}, nil
}
