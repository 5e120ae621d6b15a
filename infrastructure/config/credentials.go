package config

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"drive-json-publisher/domain/publish"

	"github.com/joho/godotenv"
)

// Environment variables that select and carry credentials
const (
	EnvServiceAccountJSON  = "SERVICE_ACCOUNT_JSON"
	EnvDestinationFolderID = "DESTINATION_FOLDER_ID"
	EnvOAuthClientID       = "OAUTH_CLIENT_ID"
	EnvOAuthClientSecret   = "OAUTH_CLIENT_SECRET"
	EnvOAuthRedirectURI    = "OAUTH_REDIRECT_URI"
	EnvOAuthRefreshToken   = "OAUTH_REFRESH_TOKEN"
)

// LookupFunc reads one configuration value, reporting whether it was set
type LookupFunc func(key string) (string, bool)

// LoadEnvFile loads KEY=VALUE pairs from path into the process environment.
// Existing variables win and a missing file is not an error.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// LoadCredentials selects the credential variant from the values lookup can see.
// A service account key wins over OAuth settings.
func LoadCredentials(lookup LookupFunc) (publish.Credentials, error) {
	get := func(key string) string {
		v, _ := lookup(key)
		return strings.TrimSpace(v)
	}

	if raw := get(EnvServiceAccountJSON); raw != "" {
		doc, err := decodeServiceAccount(raw)
		if err != nil {
			return publish.Credentials{}, publish.NewConfigurationError("Invalid credentials format",
				fmt.Errorf("%w: %s: %v", publish.ErrInvalidCredentialFormat, EnvServiceAccountJSON, err))
		}
		if folder := get(EnvDestinationFolderID); folder != "" {
			return publish.NewServiceAccountWithFolder(doc, folder), nil
		}
		return publish.NewServiceAccount(doc), nil
	}

	oauthKeys := []string{EnvOAuthClientID, EnvOAuthClientSecret, EnvOAuthRefreshToken}
	var missing []string
	anySet := get(EnvOAuthRedirectURI) != ""
	for _, key := range oauthKeys {
		if get(key) == "" {
			missing = append(missing, key)
		} else {
			anySet = true
		}
	}

	if !anySet {
		return publish.Credentials{}, publish.NewConfigurationError(
			fmt.Sprintf("Server not configured. Set %s (optionally with %s), or %s, %s and %s",
				EnvServiceAccountJSON, EnvDestinationFolderID, EnvOAuthClientID, EnvOAuthClientSecret, EnvOAuthRefreshToken),
			publish.ErrNotConfigured)
	}
	if len(missing) > 0 {
		return publish.Credentials{}, publish.NewConfigurationError(
			fmt.Sprintf("Server not configured. Missing %s", strings.Join(missing, ", ")),
			publish.ErrNotConfigured)
	}

	return publish.NewOAuth2Refresh(
		get(EnvOAuthClientID),
		get(EnvOAuthClientSecret),
		get(EnvOAuthRedirectURI),
		get(EnvOAuthRefreshToken),
	), nil
}

// OSLookup reads from the process environment
func OSLookup(key string) (string, bool) {
	return os.LookupEnv(key)
}

// decodeServiceAccount accepts the key document as raw JSON or base64-encoded JSON
func decodeServiceAccount(raw string) ([]byte, error) {
	doc := []byte(raw)
	if !bytes.HasPrefix(doc, []byte("{")) {
		if decoded, err := base64.StdEncoding.DecodeString(raw); err == nil {
			doc = bytes.TrimSpace(decoded)
		}
	}
	if !json.Valid(doc) {
		return nil, errors.New("not a JSON document")
	}
	return doc, nil
}
