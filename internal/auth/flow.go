package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/teemow/calagent/internal/logging"
)

// CallbackPath is the fixed path the authorization callback listener serves.
const CallbackPath = "/oauth2callback"

// DefaultFlowTimeout bounds how long Run waits for the user to complete the
// grant in their browser.
const DefaultFlowTimeout = 3 * time.Minute

// Flow performs the one-time interactive authorization-code grant. It binds
// exactly one listener on the fixed callback address, waits for a single
// request carrying the code, and exchanges the code for tokens.
//
// Only one Flow may be active per process: a second instance fails to bind
// the fixed port, which Run surfaces as a ConfigurationError.
type Flow struct {
	conf    *oauth2.Config
	addr    string
	timeout time.Duration
	out     io.Writer
	logger  *slog.Logger
}

// NewFlow creates a Flow listening on addr. The authorization URL the user
// must visit is written to out.
func NewFlow(conf *oauth2.Config, addr string, out io.Writer, logger *slog.Logger) *Flow {
	if logger == nil {
		logger = slog.Default()
	}
	return &Flow{
		conf:    conf,
		addr:    addr,
		timeout: DefaultFlowTimeout,
		out:     out,
		logger:  logger,
	}
}

// SetTimeout overrides the grant timeout. Zero or negative restores the default.
func (f *Flow) SetTimeout(d time.Duration) {
	if d <= 0 {
		d = DefaultFlowTimeout
	}
	f.timeout = d
}

type callbackResult struct {
	code string
	err  error
}

// Run executes the grant and returns the resulting credential.
func (f *Flow) Run(ctx context.Context) (*Credential, error) {
	ln, err := net.Listen("tcp", f.addr)
	if err != nil {
		return nil, &ConfigurationError{
			Reason: fmt.Sprintf("cannot bind %s for the authorization callback; is another authorization already in progress?", f.addr),
			Err:    err,
		}
	}

	state, err := randomState()
	if err != nil {
		ln.Close()
		return nil, fmt.Errorf("failed to generate state parameter: %w", err)
	}

	// The listener is single-use: the first request to the callback path
	// decides the outcome and anything after that is ignored.
	results := make(chan callbackResult, 1)
	var once sync.Once

	mux := http.NewServeMux()
	mux.HandleFunc(CallbackPath, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		res := callbackResult{code: q.Get("code")}
		switch {
		case q.Get("state") != state:
			res.err = &AuthorizationError{Reason: "callback state parameter mismatch"}
			http.Error(w, "Authorization failed: state mismatch.", http.StatusBadRequest)
		case res.code == "":
			res.err = &AuthorizationError{Reason: "callback carried no authorization code"}
			http.Error(w, "Authorization failed: no code parameter.", http.StatusBadRequest)
		default:
			fmt.Fprintln(w, "Authorization received. You can close this window and return to the terminal.")
		}
		once.Do(func() { results <- res })
	})

	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go srv.Serve(ln)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	authURL := f.conf.AuthCodeURL(state, oauth2.AccessTypeOffline)
	fmt.Fprintf(f.out, "Visit this URL to authorize calendar access:\n\n  %s\n\n", authURL)
	f.logger.Info("waiting for authorization callback", "addr", f.addr, "timeout", f.timeout)

	var code string
	select {
	case res := <-results:
		if res.err != nil {
			return nil, res.err
		}
		code = res.code
	case <-ctx.Done():
		return nil, &AuthorizationError{Reason: "authorization canceled", Err: ctx.Err()}
	case <-time.After(f.timeout):
		return nil, &AuthorizationError{Reason: fmt.Sprintf("no authorization callback within %s", f.timeout)}
	}

	tok, err := f.conf.Exchange(ctx, code)
	if err != nil {
		return nil, &AuthorizationError{Reason: "failed to exchange authorization code", Err: err}
	}

	cred := credentialFromToken(tok)
	f.logger.Info("authorization grant completed",
		logging.Status(logging.StatusSuccess),
		"access_token", logging.SanitizeToken(cred.AccessToken))
	return cred, nil
}

func randomState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
