package publish

import "context"

// DriveClient defines the remote storage operations needed to publish a document
// This is a port that can be implemented by different infrastructure adapters
type DriveClient interface {
	// CreateFile uploads content as a new file
	CreateFile(ctx context.Context, req CreateRequest) (*StoredFile, error)

	// GrantPublicRead makes a file readable by anyone with its link
	GrantPublicRead(ctx context.Context, fileID string) error

	// DeleteFile removes a file permanently
	DeleteFile(ctx context.Context, fileID string) error
}

// Authenticator exchanges process-wide credentials for a ready DriveClient
type Authenticator interface {
	// Connect returns an authenticated client or the reason authentication failed
	Connect(ctx context.Context) (DriveClient, error)

	// Identity returns the service account email, or "" when there is none
	Identity() string
}

// CreateRequest describes a file to create in Drive
type CreateRequest struct {
	Name     string
	MimeType string
	ParentID string // Optional parent folder
	Content  []byte
}

// StoredFile is the metadata Drive returns for a created file
type StoredFile struct {
	ID          string
	Name        string
	WebViewLink string
}
