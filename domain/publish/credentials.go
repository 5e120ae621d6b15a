package publish

import "fmt"

// Scheme identifies which credential variant is active
type Scheme string

const (
	SchemeServiceAccount           Scheme = "service_account"
	SchemeServiceAccountWithFolder Scheme = "service_account_with_folder"
	SchemeOAuth2Refresh            Scheme = "oauth2_refresh"
)

// DefaultRedirectURI is the loopback callback used when OAUTH_REDIRECT_URI is unset
const DefaultRedirectURI = "http://localhost:3000/oauth2callback"

// Credentials is one of three credential variants, selected once per process.
// Only the fields of the active Scheme are set.
type Credentials struct {
	Scheme Scheme

	ServiceAccountJSON []byte
	FolderID           string

	ClientID     string
	ClientSecret string
	RedirectURI  string
	RefreshToken string
}

// NewServiceAccount creates service account credentials from a raw key document
func NewServiceAccount(rawJSON []byte) Credentials {
	return Credentials{Scheme: SchemeServiceAccount, ServiceAccountJSON: rawJSON}
}

// NewServiceAccountWithFolder creates service account credentials bound to a shared folder
func NewServiceAccountWithFolder(rawJSON []byte, folderID string) Credentials {
	return Credentials{Scheme: SchemeServiceAccountWithFolder, ServiceAccountJSON: rawJSON, FolderID: folderID}
}

// NewOAuth2Refresh creates user credentials from a long-lived refresh token
func NewOAuth2Refresh(clientID, clientSecret, redirectURI, refreshToken string) Credentials {
	if redirectURI == "" {
		redirectURI = DefaultRedirectURI
	}
	return Credentials{
		Scheme:       SchemeOAuth2Refresh,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURI:  redirectURI,
		RefreshToken: refreshToken,
	}
}

// ParentFolder returns the destination folder, or "" when the variant has none
func (c Credentials) ParentFolder() string {
	if c.Scheme == SchemeServiceAccountWithFolder {
		return c.FolderID
	}
	return ""
}

// String describes the credentials without exposing secrets
func (c Credentials) String() string {
	switch c.Scheme {
	case SchemeServiceAccount:
		return "service account"
	case SchemeServiceAccountWithFolder:
		return fmt.Sprintf("service account (folder %s)", c.FolderID)
	case SchemeOAuth2Refresh:
		return fmt.Sprintf("oauth2 refresh token (client %s)", c.ClientID)
	default:
		return "unconfigured"
	}
}
