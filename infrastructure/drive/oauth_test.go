package drive

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

// clientCredentialsJSON builds an installed-app credentials document
func clientCredentialsJSON(tokenURL string) []byte {
	return []byte(fmt.Sprintf(`{
  "installed": {
    "client_id": "cid.apps.googleusercontent.com",
    "client_secret": "csecret",
    "auth_uri": "https://accounts.google.com/o/oauth2/auth",
    "token_uri": %q,
    "redirect_uris": ["http://localhost"]
  }
}`, tokenURL))
}

// newExchangeServer returns a token endpoint that accepts only wantCode
func newExchangeServer(t *testing.T, wantCode string, refreshToken string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		w.Header().Set("Content-Type", "application/json")
		if r.Form.Get("code") != wantCode {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		fmt.Fprintf(w, `{"access_token":"at","refresh_token":%q,"token_type":"Bearer","expires_in":3600}`, refreshToken)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// simulatedConsent plays the browser: it follows the auth URL's redirect_uri with a code
func simulatedConsent(code string, tamperState bool) func(string) error {
	return func(authURL string) error {
		u, err := url.Parse(authURL)
		if err != nil {
			return err
		}
		q := u.Query()
		state := q.Get("state")
		if tamperState {
			state = "forged"
		}
		callback := q.Get("redirect_uri") + "?code=" + url.QueryEscape(code) + "&state=" + url.QueryEscape(state)
		go func() {
			resp, err := http.Get(callback)
			if err == nil {
				resp.Body.Close()
			}
		}()
		return nil
	}
}

func TestNewTokenFlow_InvalidCredentials(t *testing.T) {
	_, err := NewTokenFlow([]byte(`{"nope": true}`), "")
	if err == nil {
		t.Fatal("expected error but got none")
	}
}

func TestNewTokenFlow_DefaultRedirect(t *testing.T) {
	flow, err := NewTokenFlow(clientCredentialsJSON("https://oauth2.googleapis.com/token"), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if flow.Config().RedirectURL != "http://localhost:3000/oauth2callback" {
		t.Errorf("unexpected redirect %q", flow.Config().RedirectURL)
	}
	if len(flow.Config().Scopes) != 1 || flow.Config().Scopes[0] != Scope {
		t.Errorf("unexpected scopes %v", flow.Config().Scopes)
	}
}

func TestTokenFlow_Run(t *testing.T) {
	tests := []struct {
		name         string
		refreshToken string
		tamperState  bool
		wantErr      string
	}{
		{
			name:         "mints refresh token",
			refreshToken: "1//refresh",
		},
		{
			name:         "missing refresh token",
			refreshToken: "",
			wantErr:      "no refresh token returned",
		},
		{
			name:         "forged state",
			refreshToken: "1//refresh",
			tamperState:  true,
			wantErr:      "state mismatch",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newExchangeServer(t, "auth-code", tt.refreshToken)
			var out bytes.Buffer

			flow, err := NewTokenFlow(
				clientCredentialsJSON(srv.URL),
				"http://127.0.0.1:0/oauth2callback",
				WithOutput(&out),
				WithTimeout(5*time.Second),
				WithBrowserOpener(simulatedConsent("auth-code", tt.tamperState)),
			)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			token, err := flow.Run(context.Background())

			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if token.RefreshToken != tt.refreshToken {
				t.Errorf("expected refresh token %q, got %q", tt.refreshToken, token.RefreshToken)
			}
			if !strings.Contains(out.String(), "accounts.google.com") {
				t.Errorf("expected consent URL in output, got %q", out.String())
			}
		})
	}
}

func TestTokenFlow_RunTimesOut(t *testing.T) {
	flow, err := NewTokenFlow(
		clientCredentialsJSON("http://127.0.0.1:1/token"),
		"http://127.0.0.1:0/oauth2callback",
		WithTimeout(50*time.Millisecond),
		WithBrowserOpener(func(string) error { return nil }),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = flow.Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "no authorization received") {
		t.Errorf("expected timeout error, got %v", err)
	}
}

func TestTokenFlow_RunRequiresPort(t *testing.T) {
	opened := false
	flow, err := NewTokenFlow(
		clientCredentialsJSON("http://127.0.0.1:1/token"),
		"http://localhost/oauth2callback",
		WithBrowserOpener(func(string) error { opened = true; return nil }),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = flow.Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "must include a port") {
		t.Errorf("expected missing port error, got %v", err)
	}
	if opened {
		t.Error("browser should not open without a listener")
	}
}

func TestTokenFlow_CallbackHandler(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantCode   string
		wantErr    string
	}{
		{"valid callback", "code=abc&state=s1", http.StatusOK, "abc", ""},
		{"denied", "error=access_denied&state=s1", http.StatusBadRequest, "", "access_denied"},
		{"state mismatch", "code=abc&state=other", http.StatusBadRequest, "", "state mismatch"},
		{"missing code", "state=s1", http.StatusBadRequest, "", "no authorization code"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flow, _ := NewTokenFlow(clientCredentialsJSON("https://oauth2.googleapis.com/token"), "")
			codeChan := make(chan string, 1)
			errChan := make(chan error, 1)

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/oauth2callback?"+tt.query, nil)
			flow.callbackHandler("s1", codeChan, errChan).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}

			select {
			case code := <-codeChan:
				if code != tt.wantCode {
					t.Errorf("expected code %q, got %q", tt.wantCode, code)
				}
			case err := <-errChan:
				if tt.wantErr == "" || !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("unexpected error %v", err)
				}
			default:
				t.Error("expected callback to report a code or an error")
			}
		})
	}
}

func TestPrintEnv(t *testing.T) {
	var out bytes.Buffer
	config := &oauth2.Config{ClientID: "cid", ClientSecret: "cs", RedirectURL: "http://localhost:3000/oauth2callback"}
	PrintEnv(&out, config, &oauth2.Token{RefreshToken: "rt"})

	for _, want := range []string{
		"OAUTH_CLIENT_ID=cid",
		"OAUTH_CLIENT_SECRET=cs",
		"OAUTH_REDIRECT_URI=http://localhost:3000/oauth2callback",
		"OAUTH_REFRESH_TOKEN=rt",
	} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out.String())
		}
	}
}
