package model

// AuthorizationRequest is the ephemeral input to one OAuth flow instance.
// It is created when sign-in is initiated, consumed by the code exchange,
// and discarded after success or failure.
type AuthorizationRequest struct {
	Provider       Provider
	Scopes         []string
	RedirectTarget string
}
