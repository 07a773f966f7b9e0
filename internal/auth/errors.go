package auth

import "fmt"

// ConfigurationError indicates required client configuration is absent or a
// precondition of the authorization flow cannot be met (such as the fixed
// callback port already being bound by another instance). It is fatal at
// startup and never retried.
type ConfigurationError struct {
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("configuration error: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("configuration error: %s", e.Reason)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// AuthorizationError indicates the interactive grant did not yield a usable
// authorization code or token exchange. The user must restart the flow.
type AuthorizationError struct {
	Reason string
	Err    error
}

func (e *AuthorizationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("authorization failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("authorization failed: %s", e.Reason)
}

func (e *AuthorizationError) Unwrap() error { return e.Err }

// TokenRefreshError indicates the provider rejected a refresh attempt.
// The manager recovers by running a fresh authorization flow exactly once.
type TokenRefreshError struct {
	Err error
}

func (e *TokenRefreshError) Error() string {
	return fmt.Sprintf("token refresh rejected: %v", e.Err)
}

func (e *TokenRefreshError) Unwrap() error { return e.Err }
