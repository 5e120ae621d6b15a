package drive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os/exec"
	"runtime"
	"time"

	"drive-json-publisher/domain/publish"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// DefaultTokenFlowTimeout is how long the token flow waits for the browser callback
const DefaultTokenFlowTimeout = 2 * time.Minute

// TokenFlow runs the one-time browser consent flow that mints a refresh token
type TokenFlow struct {
	config  *oauth2.Config
	timeout time.Duration
	output  io.Writer
	open    func(url string) error
}

// TokenFlowOption is a functional option for configuring TokenFlow
type TokenFlowOption func(*TokenFlow)

// WithTimeout sets how long to wait for the callback
func WithTimeout(d time.Duration) TokenFlowOption {
	return func(f *TokenFlow) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithOutput sets where instructions and results are printed
func WithOutput(w io.Writer) TokenFlowOption {
	return func(f *TokenFlow) {
		f.output = w
	}
}

// WithBrowserOpener replaces the system browser launcher (for testing)
func WithBrowserOpener(open func(url string) error) TokenFlowOption {
	return func(f *TokenFlow) {
		f.open = open
	}
}

// NewTokenFlow parses an OAuth client credentials document (installed or web)
func NewTokenFlow(credentialsJSON []byte, redirectURI string, opts ...TokenFlowOption) (*TokenFlow, error) {
	config, err := google.ConfigFromJSON(credentialsJSON, Scope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse OAuth credentials: %w", err)
	}
	if redirectURI == "" {
		redirectURI = publish.DefaultRedirectURI
	}
	config.RedirectURL = redirectURI

	f := &TokenFlow{
		config:  config,
		timeout: DefaultTokenFlowTimeout,
		output:  io.Discard,
		open:    openBrowser,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

// Config returns the OAuth client configuration in use
func (f *TokenFlow) Config() *oauth2.Config {
	return f.config
}

// Run listens on the redirect URI, waits for consent and exchanges the code.
// It returns after success, an explicit error, or the timeout.
func (f *TokenFlow) Run(ctx context.Context) (*oauth2.Token, error) {
	redirect, err := url.Parse(f.config.RedirectURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redirect URI %q: %w", f.config.RedirectURL, err)
	}
	callbackPath := redirect.Path
	if callbackPath == "" {
		callbackPath = "/"
	}

	if redirect.Port() == "" {
		return nil, fmt.Errorf("redirect URI %q must include a port, e.g. %s", f.config.RedirectURL, publish.DefaultRedirectURI)
	}

	listener, err := net.Listen("tcp", redirect.Host)
	if err != nil {
		return nil, fmt.Errorf("unable to listen on %s: %w", redirect.Host, err)
	}

	// Port 0 asks the OS for a free port; the redirect must then name the real one
	if redirect.Port() == "0" {
		redirect.Host = listener.Addr().String()
		f.config.RedirectURL = redirect.String()
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	state := uuid.NewString()
	codeChan := make(chan string, 1)
	errChan := make(chan error, 1)

	mux := http.NewServeMux()
	mux.Handle(callbackPath, f.callbackHandler(state, codeChan, errChan))
	server := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	// Start server in background
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			select {
			case errChan <- err:
			default:
			}
		}
	}()
	defer server.Shutdown(context.Background())

	authURL := f.config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)

	fmt.Fprintln(f.output, "Starting OAuth2 flow...")
	fmt.Fprintf(f.output, "Listening for the callback on %s\n", f.config.RedirectURL)
	fmt.Fprintln(f.output, "If the browser doesn't open, please visit this URL:")
	fmt.Fprintln(f.output)
	fmt.Fprintln(f.output, authURL)
	fmt.Fprintln(f.output)

	if err := f.open(authURL); err != nil {
		fmt.Fprintln(f.output, "Could not open browser automatically. Please open the URL manually.")
	}

	// Wait for callback
	var authCode string
	select {
	case authCode = <-codeChan:
	case err := <-errChan:
		return nil, err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("no authorization received within %s", f.timeout)
		}
		return nil, ctx.Err()
	}

	token, err := f.config.Exchange(ctx, authCode)
	if err != nil {
		return nil, fmt.Errorf("unable to exchange auth code: %w", err)
	}
	if token.RefreshToken == "" {
		return nil, errors.New("no refresh token returned; remove the app's access at https://myaccount.google.com/permissions and run again")
	}

	return token, nil
}

// callbackHandler receives the redirect from the consent screen
func (f *TokenFlow) callbackHandler(state string, codeChan chan<- string, errChan chan<- error) http.Handler {
	fail := func(w http.ResponseWriter, status int, err error) {
		w.WriteHeader(status)
		fmt.Fprintf(w, "Error: %v", err)
		select {
		case errChan <- err:
		default:
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if e := q.Get("error"); e != "" {
			fail(w, http.StatusBadRequest, fmt.Errorf("authorization denied: %s", e))
			return
		}
		if q.Get("state") != state {
			fail(w, http.StatusBadRequest, errors.New("state mismatch in callback"))
			return
		}
		code := q.Get("code")
		if code == "" {
			fail(w, http.StatusBadRequest, errors.New("no authorization code received"))
			return
		}

		select {
		case codeChan <- code:
		default:
		}
		fmt.Fprintf(w, "<html><body><h1>Authorization successful!</h1><p>You can close this window and return to the terminal.</p></body></html>")
	})
}

// PrintEnv writes the environment variables a deployment needs for OAuth2 refresh token credentials
func PrintEnv(w io.Writer, config *oauth2.Config, token *oauth2.Token) {
	fmt.Fprintln(w, "Authorization successful!")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Add these environment variables to your deployment:")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "OAUTH_CLIENT_ID=%s\n", config.ClientID)
	fmt.Fprintf(w, "OAUTH_CLIENT_SECRET=%s\n", config.ClientSecret)
	fmt.Fprintf(w, "OAUTH_REDIRECT_URI=%s\n", config.RedirectURL)
	fmt.Fprintf(w, "OAUTH_REFRESH_TOKEN=%s\n", token.RefreshToken)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Then redeploy the service.")
}

// openBrowser opens a URL in the default browser
func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "linux":
		// Try various Linux browser openers
		if _, err := exec.LookPath("xdg-open"); err == nil {
			cmd = exec.Command("xdg-open", url)
		} else if _, err := exec.LookPath("wslview"); err == nil {
			// WSL
			cmd = exec.Command("wslview", url)
		} else {
			// Try Windows browser from WSL
			cmd = exec.Command("cmd.exe", "/c", "start", url)
		}
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	}

	if cmd == nil {
		return fmt.Errorf("unsupported platform %s", runtime.GOOS)
	}
	return cmd.Start()
}
