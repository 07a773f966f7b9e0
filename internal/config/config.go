package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables recognized by calagent.
const (
	EnvAnthropicAPIKey    = "ANTHROPIC_API_KEY"
	EnvGoogleClientID     = "GOOGLE_CLIENT_ID"
	EnvGoogleClientSecret = "GOOGLE_CLIENT_SECRET"
	EnvGoogleRedirectURI  = "GOOGLE_REDIRECT_URI"
	EnvModel              = "CALAGENT_MODEL"
	EnvCredentialFile     = "CALAGENT_CREDENTIAL_FILE"
	EnvLogLevel           = "CALAGENT_LOG_LEVEL"
)

// Defaults applied when the corresponding variable is unset.
const (
	DefaultRedirectURI = "http://localhost:8080/oauth2callback"
	DefaultModel       = "claude-sonnet-4-5"
	CallbackPath       = "/oauth2callback"
)

// Config holds the resolved process configuration.
type Config struct {
	AnthropicAPIKey    string
	GoogleClientID     string
	GoogleClientSecret string

	// RedirectURI is the OAuth redirect URI. Its host:port is also the
	// address the authorization callback listener binds to.
	RedirectURI string

	Model          string
	CredentialFile string
	LogLevel       string
}

// MissingError reports required environment variables that are not set.
// It is fatal at startup and never retried.
type MissingError struct {
	Vars []string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("missing required configuration: %s", strings.Join(e.Vars, ", "))
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first if present; real environment variables win.
func Load() (*Config, error) {
	// Best effort: a missing .env file is not an error.
	_ = godotenv.Load()

	cfg := &Config{
		AnthropicAPIKey:    os.Getenv(EnvAnthropicAPIKey),
		GoogleClientID:     os.Getenv(EnvGoogleClientID),
		GoogleClientSecret: os.Getenv(EnvGoogleClientSecret),
		RedirectURI:        getenvDefault(EnvGoogleRedirectURI, DefaultRedirectURI),
		Model:              getenvDefault(EnvModel, DefaultModel),
		CredentialFile:     os.Getenv(EnvCredentialFile),
		LogLevel:           getenvDefault(EnvLogLevel, "info"),
	}

	var missing []string
	if cfg.AnthropicAPIKey == "" {
		missing = append(missing, EnvAnthropicAPIKey)
	}
	if cfg.GoogleClientID == "" {
		missing = append(missing, EnvGoogleClientID)
	}
	if cfg.GoogleClientSecret == "" {
		missing = append(missing, EnvGoogleClientSecret)
	}
	if len(missing) > 0 {
		return nil, &MissingError{Vars: missing}
	}

	if _, err := cfg.CallbackAddr(); err != nil {
		return nil, err
	}

	if cfg.CredentialFile == "" {
		cacheDir, err := os.UserCacheDir()
		if err != nil {
			return nil, fmt.Errorf("failed to determine cache directory: %w", err)
		}
		cfg.CredentialFile = filepath.Join(cacheDir, "calagent", "google-credential.json")
	}

	return cfg, nil
}

// CallbackAddr derives the listen address for the authorization callback
// from the redirect URI.
func (c *Config) CallbackAddr() (string, error) {
	u, err := url.Parse(c.RedirectURI)
	if err != nil {
		return "", fmt.Errorf("invalid redirect URI %q: %w", c.RedirectURI, err)
	}
	if u.Path != CallbackPath {
		return "", fmt.Errorf("redirect URI path must be %s, got %q", CallbackPath, u.Path)
	}
	port := u.Port()
	if port == "" {
		port = "80"
	}
	return u.Hostname() + ":" + port, nil
}

func getenvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
