package cmd

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// serviceAccountKeyJSON builds a parseable service account key document
func serviceAccountKeyJSON(t *testing.T) string {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	pemKey := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})

	doc, err := json.Marshal(map[string]string{
		"type":           "service_account",
		"project_id":     "proj",
		"private_key_id": "kid",
		"private_key":    string(pemKey),
		"client_email":   "uploader@proj.iam.gserviceaccount.com",
		"client_id":      "123",
		"token_uri":      "https://oauth2.googleapis.com/token",
	})
	if err != nil {
		t.Fatal(err)
	}
	return string(doc)
}

func writeClientCredentials(t *testing.T, tokenURL string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "credentials.json")
	doc := fmt.Sprintf(`{"installed":{"client_id":"cid","client_secret":"csecret","auth_uri":"https://accounts.google.com/o/oauth2/auth","token_uri":%q,"redirect_uris":["http://localhost"]}}`, tokenURL)
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunToken_PrintsEnv(t *testing.T) {
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"at","refresh_token":"rt-123","token_type":"Bearer","expires_in":3600}`))
	}))
	defer tokenSrv.Close()

	consent := func(authURL string) error {
		u, err := url.Parse(authURL)
		if err != nil {
			return err
		}
		q := u.Query()
		callback := q.Get("redirect_uri") + "?code=c&state=" + url.QueryEscape(q.Get("state"))
		go func() {
			if resp, err := http.Get(callback); err == nil {
				resp.Body.Close()
			}
		}()
		return nil
	}

	var out bytes.Buffer
	err := RunTokenWithDependencies(context.Background(), writeClientCredentials(t, tokenSrv.URL),
		"http://127.0.0.1:0/oauth2callback", 5*time.Second, consent, &out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := out.String()
	for _, want := range []string{"OAUTH_CLIENT_ID=cid", "OAUTH_CLIENT_SECRET=csecret", "OAUTH_REFRESH_TOKEN=rt-123", "OAUTH_REDIRECT_URI=http://127.0.0.1:"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output:\n%s", want, output)
		}
	}
}

func TestRunToken_Timeout(t *testing.T) {
	noop := func(string) error { return nil }

	err := RunTokenWithDependencies(context.Background(), writeClientCredentials(t, "https://oauth2.googleapis.com/token"),
		"http://127.0.0.1:0/oauth2callback", 50*time.Millisecond, noop, &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "no authorization received") {
		t.Errorf("expected timeout error, got %v", err)
	}
}

func TestRunToken_MissingCredentialsFile(t *testing.T) {
	err := RunTokenWithDependencies(context.Background(), filepath.Join(t.TempDir(), "missing.json"),
		"", time.Second, nil, &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "unable to read credentials file") {
		t.Errorf("expected read error, got %v", err)
	}
}
