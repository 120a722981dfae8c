package model

import "time"

// Credential authorizes calls to one external provider. For OAuth providers
// (Google) the material is an access token plus optional refresh token and
// expiry. For Trello it is an API key/token pair carried in APIKey and
// AccessToken. A Credential with a refresh token can self-renew when expired;
// one without must re-run the authorization flow.
type Credential struct {
	Provider     Provider
	Scopes       []string
	AccessToken  string
	RefreshToken string
	APIKey       string
	Expiry       time.Time
}

// Expired reports whether the credential's expiry has passed. A zero expiry
// means the provider issued no expiry and the credential never expires.
func (c *Credential) Expired() bool {
	if c.Expiry.IsZero() {
		return false
	}
	return time.Now().After(c.Expiry)
}

// Complete reports whether the credential carries enough material to call its
// provider. Partial material (a Trello key without a token) counts as absent.
func (c *Credential) Complete() bool {
	if c == nil {
		return false
	}
	switch c.Provider {
	case ProviderTrello:
		return c.APIKey != "" && c.AccessToken != ""
	default:
		return c.AccessToken != ""
	}
}

// CanRefresh reports whether the credential can self-renew without user consent.
func (c *Credential) CanRefresh() bool {
	return c.RefreshToken != ""
}
