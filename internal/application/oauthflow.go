package application

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/ericfisherdev/taskdeck/internal/domain/model"
)

// Flow is one attempt at the authorization-code exchange, from consent
// request to token issuance. A flow instance is single-use: it is discarded
// after the code exchange succeeds or fails and is never reused across codes.
type Flow struct {
	ID         string
	Request    model.AuthorizationRequest
	State      model.FlowState
	AuthURL    string
	FailReason string

	stateToken string
}

// OAuthService runs authorization-code flows and stateless token refreshes
// for the OAuth provider. Pending flows are keyed by their anti-replay state
// token; a callback must present the exact token that was issued.
type OAuthService struct {
	cfg    *oauth2.Config
	logger *slog.Logger

	mu    sync.Mutex
	flows map[string]*Flow
}

// NewOAuthService creates an OAuthService over the given oauth2 client
// configuration. Tests substitute a config pointed at an httptest endpoint.
func NewOAuthService(cfg *oauth2.Config, logger *slog.Logger) *OAuthService {
	return &OAuthService{
		cfg:    cfg,
		logger: logger,
		flows:  make(map[string]*Flow),
	}
}

// Configured reports whether an OAuth client is set up. BeginAuth fails with
// a ConfigurationError when it is not, before any network call.
func (s *OAuthService) Configured() bool {
	return s.cfg != nil && s.cfg.ClientID != "" && s.cfg.ClientSecret != ""
}

// BeginAuth creates a fresh flow instance and moves it from Idle to
// AwaitingUserConsent, producing the authorization URL that embeds the
// requested scopes, the redirect target, and an anti-replay state token.
// No token-endpoint call happens here.
func (s *OAuthService) BeginAuth(req model.AuthorizationRequest) (*Flow, error) {
	if !s.Configured() {
		return nil, &ConfigurationError{Provider: req.Provider, Checked: []string{"oauth client config"}}
	}

	flow := &Flow{
		ID:         uuid.NewString(),
		Request:    req,
		State:      model.FlowIdle,
		stateToken: newStateToken(),
	}

	cfg := *s.cfg
	if len(req.Scopes) > 0 {
		cfg.Scopes = req.Scopes
	}
	if req.RedirectTarget != "" {
		cfg.RedirectURL = req.RedirectTarget
	}

	// access_type=offline and prompt=consent make the provider issue a
	// refresh token on first authorization.
	flow.AuthURL = cfg.AuthCodeURL(flow.stateToken,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
	flow.State = model.FlowAwaitingUserConsent

	s.mu.Lock()
	s.flows[flow.stateToken] = flow
	s.mu.Unlock()

	s.logger.Info("authorization flow started", "flow_id", flow.ID, "provider", req.Provider)
	return flow, nil
}

// ExchangeCode consumes the provider redirect: it matches the presented state
// token against an issued flow, presents the authorization code to the token
// endpoint, and returns the resulting credential. A mismatched state token
// fails every pending consent (anti-replay) and the flow never reaches
// Authenticated. The flow instance is discarded either way.
func (s *OAuthService) ExchangeCode(ctx context.Context, stateToken, code string) (*model.Credential, error) {
	s.mu.Lock()
	flow, ok := s.flows[stateToken]
	if !ok {
		for _, pending := range s.flows {
			pending.State = model.FlowFailed
			pending.FailReason = "state token mismatch (possible replay)"
		}
		s.flows = make(map[string]*Flow)
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: state token mismatch", ErrAuth)
	}
	delete(s.flows, stateToken)
	s.mu.Unlock()

	flow.State = model.FlowAwaitingCodeExchange

	cfg := *s.cfg
	if len(flow.Request.Scopes) > 0 {
		cfg.Scopes = flow.Request.Scopes
	}
	if flow.Request.RedirectTarget != "" {
		cfg.RedirectURL = flow.Request.RedirectTarget
	}

	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		flow.State = model.FlowFailed
		flow.FailReason = err.Error()
		s.logger.Warn("code exchange failed", "flow_id", flow.ID, "error", err)
		return nil, fmt.Errorf("%w: code exchange: %v", ErrAuth, err)
	}

	flow.State = model.FlowAuthenticated
	s.logger.Info("authorization flow completed", "flow_id", flow.ID)

	return &model.Credential{
		Provider:     flow.Request.Provider,
		Scopes:       flow.Request.Scopes,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		Expiry:       tok.Expiry,
	}, nil
}

// Refresh is the stateless refresh operation: it exchanges the credential's
// refresh token for a new access token without re-entering the consent
// states. The refresh token is preserved when the provider does not rotate it.
func (s *OAuthService) Refresh(ctx context.Context, cred *model.Credential) (*model.Credential, error) {
	if !cred.CanRefresh() {
		return nil, fmt.Errorf("%w: credential has no refresh token", ErrAuth)
	}

	tok, err := s.cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: cred.RefreshToken}).Token()
	if err != nil {
		return nil, fmt.Errorf("%w: refresh: %v", ErrAuth, err)
	}

	refreshToken := tok.RefreshToken
	if refreshToken == "" {
		refreshToken = cred.RefreshToken
	}

	return &model.Credential{
		Provider:     cred.Provider,
		Scopes:       cred.Scopes,
		AccessToken:  tok.AccessToken,
		RefreshToken: refreshToken,
		Expiry:       tok.Expiry,
	}, nil
}

// newStateToken returns a fresh anti-replay state token.
func newStateToken() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		panic("crypto/rand failed: " + err.Error())
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
