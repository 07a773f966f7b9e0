package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/teemow/calagent/internal/logging"
)

// calendarScope is the only Google OAuth scope calagent requests.
var calendarScope = []string{"https://www.googleapis.com/auth/calendar"}

// NewOAuthConfig builds the oauth2 configuration for the calendar provider.
func NewOAuthConfig(clientID, clientSecret, redirectURI string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  redirectURI,
		Scopes:       calendarScope,
	}
}

// GrantRunner runs an interactive authorization grant. Implemented by Flow.
type GrantRunner interface {
	Run(ctx context.Context) (*Credential, error)
}

// Refresher exchanges a refresh token for a fresh credential.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*Credential, error)
}

// oauthRefresher refreshes against the provider token endpoint via oauth2.
type oauthRefresher struct {
	conf *oauth2.Config
}

func (r *oauthRefresher) Refresh(ctx context.Context, refreshToken string) (*Credential, error) {
	if refreshToken == "" {
		return nil, &TokenRefreshError{Err: errors.New("stored credential has no refresh token")}
	}
	ts := r.conf.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	tok, err := ts.Token()
	if err != nil {
		return nil, &TokenRefreshError{Err: err}
	}
	return credentialFromToken(tok), nil
}

// Handle is an authorized view of the credential, good for the lifetime of
// the process. The manager keeps ownership of refresh and persistence.
type Handle struct {
	cred *Credential
	conf *oauth2.Config
}

// Credential returns the credential backing the handle.
func (h *Handle) Credential() *Credential { return h.cred }

// HTTPClient returns an HTTP client that authorizes requests with the
// handle's access token. The token source is static: refreshing is the
// manager's job, not the client's.
func (h *Handle) HTTPClient(ctx context.Context) *http.Client {
	return oauth2.NewClient(ctx, oauth2.StaticTokenSource(h.cred.Token()))
}

// Manager owns the in-memory credential for the process lifetime and
// orchestrates the durable store, the refresh path, and the interactive
// grant. State machine:
//
//	NoCredential -> Authorizing -> Authorized <-> Refreshing
//
// with Refreshing falling back to Authorizing on failure, exactly once per
// Obtain call.
type Manager struct {
	store     Store
	flow      GrantRunner
	refresher Refresher
	conf      *oauth2.Config
	now       func() time.Time
	logger    *slog.Logger
}

// NewManager creates a credential manager over the given store and grant flow.
func NewManager(conf *oauth2.Config, store Store, flow GrantRunner, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		store:     store,
		flow:      flow,
		refresher: &oauthRefresher{conf: conf},
		conf:      conf,
		now:       time.Now,
		logger:    logger,
	}
}

// Obtain returns a valid, non-expired handle, refreshing or re-authorizing
// as needed. When the stored credential is still valid this performs no
// network I/O at all.
func (m *Manager) Obtain(ctx context.Context) (*Handle, error) {
	if m.conf.ClientID == "" || m.conf.ClientSecret == "" {
		return nil, &ConfigurationError{Reason: "OAuth client id and secret are required"}
	}

	cred, err := m.store.Load()
	if errors.Is(err, ErrNoCredential) {
		m.logger.Info("no stored credential, starting authorization")
		return m.authorize(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load stored credential: %w", err)
	}

	if !cred.Expired(m.now()) {
		m.logger.Debug("stored credential still valid",
			"access_token", logging.SanitizeToken(cred.AccessToken))
		return m.handle(cred), nil
	}

	m.logger.Info("stored credential expired, refreshing")
	refreshed, err := m.refresher.Refresh(ctx, cred.RefreshToken)
	if err != nil {
		// Fall back to a full re-authorization, exactly once. The stale
		// record is replaced wholesale by whatever the grant produces.
		m.logger.Warn("token refresh failed, falling back to authorization", logging.Err(err))
		return m.authorize(ctx)
	}

	// The provider may omit a rotated refresh token; keep using the old one.
	if refreshed.RefreshToken == "" {
		refreshed.RefreshToken = cred.RefreshToken
	}
	if refreshed.Scope == "" {
		refreshed.Scope = cred.Scope
	}

	if err := m.store.Save(refreshed); err != nil {
		return nil, fmt.Errorf("failed to persist refreshed credential: %w", err)
	}
	m.logger.Info("credential refreshed", logging.Status(logging.StatusSuccess))
	return m.handle(refreshed), nil
}

func (m *Manager) authorize(ctx context.Context) (*Handle, error) {
	cred, err := m.flow.Run(ctx)
	if err != nil {
		return nil, err
	}
	if err := m.store.Save(cred); err != nil {
		return nil, fmt.Errorf("failed to persist credential: %w", err)
	}
	return m.handle(cred), nil
}

func (m *Manager) handle(cred *Credential) *Handle {
	return &Handle{cred: cred, conf: m.conf}
}
