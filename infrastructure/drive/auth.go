package drive

import (
	"context"
	"encoding/json"
	"fmt"

	"drive-json-publisher/domain/publish"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
)

// Scope limits access to files created by this application
const Scope = drive.DriveFileScope

// ClientFactory builds a DriveClient from an authorized token source
type ClientFactory func(ctx context.Context, ts oauth2.TokenSource) (publish.DriveClient, error)

func defaultClientFactory(ctx context.Context, ts oauth2.TokenSource) (publish.DriveClient, error) {
	return NewClient(ctx, ts)
}

// Authenticator implements publish.Authenticator for all credential schemes
type Authenticator struct {
	scheme      publish.Scheme
	tokenSource oauth2.TokenSource
	identity    string
	newClient   ClientFactory
	endpoint    *oauth2.Endpoint
}

// AuthOption is a functional option for configuring Authenticator
type AuthOption func(*Authenticator)

// WithClientFactory sets a custom client factory (for testing)
func WithClientFactory(f ClientFactory) AuthOption {
	return func(a *Authenticator) {
		a.newClient = f
	}
}

// WithEndpoint overrides the OAuth2 endpoint used for refresh token exchange
func WithEndpoint(e oauth2.Endpoint) AuthOption {
	return func(a *Authenticator) {
		a.endpoint = &e
	}
}

// serviceAccountKey holds the fields of a key document we inspect before parsing it fully
type serviceAccountKey struct {
	Type        string `json:"type"`
	ClientEmail string `json:"client_email"`
}

// NewAuthenticator builds the process-wide token source for creds.
// ctx must outlive the authenticator; it carries the HTTP client used for token requests.
// Unparsable key documents yield publish.ErrInvalidCredentialFormat.
func NewAuthenticator(ctx context.Context, creds publish.Credentials, opts ...AuthOption) (*Authenticator, error) {
	a := &Authenticator{
		scheme:    creds.Scheme,
		newClient: defaultClientFactory,
	}

	for _, opt := range opts {
		opt(a)
	}

	switch creds.Scheme {
	case publish.SchemeServiceAccount, publish.SchemeServiceAccountWithFolder:
		var key serviceAccountKey
		if err := json.Unmarshal(creds.ServiceAccountJSON, &key); err != nil {
			return nil, publish.NewConfigurationError("Invalid credentials format",
				fmt.Errorf("%w: %v", publish.ErrInvalidCredentialFormat, err))
		}

		config, err := google.JWTConfigFromJSON(creds.ServiceAccountJSON, Scope)
		if err != nil {
			return nil, publish.NewConfigurationError("Invalid credentials format",
				fmt.Errorf("%w: %v", publish.ErrInvalidCredentialFormat, err))
		}

		a.identity = key.ClientEmail
		a.tokenSource = oauth2.ReuseTokenSource(nil, config.TokenSource(ctx))

	case publish.SchemeOAuth2Refresh:
		config := &oauth2.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			RedirectURL:  creds.RedirectURI,
			Endpoint:     google.Endpoint,
			Scopes:       []string{Scope},
		}
		if a.endpoint != nil {
			config.Endpoint = *a.endpoint
		}
		a.tokenSource = oauth2.ReuseTokenSource(nil, config.TokenSource(ctx, &oauth2.Token{RefreshToken: creds.RefreshToken}))

	default:
		return nil, publish.NewConfigurationError("Server not configured", publish.ErrNotConfigured)
	}

	return a, nil
}

// Connect implements publish.Authenticator. A cached access token is reused until it expires.
func (a *Authenticator) Connect(ctx context.Context) (publish.DriveClient, error) {
	if _, err := a.tokenSource.Token(); err != nil {
		return nil, fmt.Errorf("unable to obtain access token: %w", err)
	}

	client, err := a.newClient(ctx, a.tokenSource)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// Identity implements publish.Authenticator
func (a *Authenticator) Identity() string {
	return a.identity
}

// Scheme returns the credential variant this authenticator was built from
func (a *Authenticator) Scheme() publish.Scheme {
	return a.scheme
}

// Ensure Authenticator implements publish.Authenticator
var _ publish.Authenticator = (*Authenticator)(nil)
