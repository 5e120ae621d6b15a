package drive

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"drive-json-publisher/domain/publish"

	"golang.org/x/oauth2"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// createFields are the file fields requested back from a create call
const createFields = "id, webViewLink, name"

// DriveService defines the interface for Google Drive API operations
// This allows mocking the Google Drive API in tests
type DriveService interface {
	CreateFile(ctx context.Context, file *drive.File, media io.Reader, mimeType string) (*drive.File, error)
	CreatePermission(ctx context.Context, fileID string, permission *drive.Permission) error
	DeleteFile(ctx context.Context, fileID string) error
}

// GoogleDriveService is the production implementation using the Google Drive API
type GoogleDriveService struct {
	service *drive.Service
}

// CreateFile uploads media as a new file
func (s *GoogleDriveService) CreateFile(ctx context.Context, file *drive.File, media io.Reader, mimeType string) (*drive.File, error) {
	return s.service.Files.Create(file).
		Media(media, googleapi.ContentType(mimeType)).
		Fields(googleapi.Field(createFields)).
		SupportsAllDrives(true).
		Context(ctx).
		Do()
}

// CreatePermission adds a permission to a file
func (s *GoogleDriveService) CreatePermission(ctx context.Context, fileID string, permission *drive.Permission) error {
	_, err := s.service.Permissions.Create(fileID, permission).
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	return err
}

// DeleteFile permanently deletes a file, bypassing trash
func (s *GoogleDriveService) DeleteFile(ctx context.Context, fileID string) error {
	return s.service.Files.Delete(fileID).
		SupportsAllDrives(true).
		Context(ctx).
		Do()
}

// Client implements publish.DriveClient using Google Drive API
type Client struct {
	driveService DriveService
}

// ClientOption is a functional option for configuring Client
type ClientOption func(*Client)

// WithDriveService sets a custom drive service (for testing)
func WithDriveService(svc DriveService) ClientOption {
	return func(c *Client) {
		c.driveService = svc
	}
}

// NewClient creates a new Google Drive client
// If no options are provided, it initializes a real Google Drive service authorized by ts
func NewClient(ctx context.Context, ts oauth2.TokenSource, opts ...ClientOption) (*Client, error) {
	c := &Client{}

	for _, opt := range opts {
		opt(c)
	}

	// If no custom drive service was provided, create a real one
	if c.driveService == nil {
		srv, err := drive.NewService(ctx, option.WithTokenSource(ts))
		if err != nil {
			return nil, fmt.Errorf("unable to create drive service: %w", err)
		}
		c.driveService = &GoogleDriveService{service: srv}
	}

	return c, nil
}

// CreateFile implements publish.DriveClient
func (c *Client) CreateFile(ctx context.Context, req publish.CreateRequest) (*publish.StoredFile, error) {
	metadata := &drive.File{
		Name:     req.Name,
		MimeType: req.MimeType,
	}
	if req.ParentID != "" {
		metadata.Parents = []string{req.ParentID}
	}

	f, err := c.driveService.CreateFile(ctx, metadata, bytes.NewReader(req.Content), req.MimeType)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", req.Name, err)
	}

	return &publish.StoredFile{
		ID:          f.Id,
		Name:        f.Name,
		WebViewLink: f.WebViewLink,
	}, nil
}

// GrantPublicRead implements publish.DriveClient
func (c *Client) GrantPublicRead(ctx context.Context, fileID string) error {
	permission := &drive.Permission{
		Type: "anyone",
		Role: "reader",
	}
	if err := c.driveService.CreatePermission(ctx, fileID, permission); err != nil {
		return fmt.Errorf("failed to set public sharing on %s: %w", fileID, err)
	}
	return nil
}

// DeleteFile implements publish.DriveClient
func (c *Client) DeleteFile(ctx context.Context, fileID string) error {
	if err := c.driveService.DeleteFile(ctx, fileID); err != nil {
		return fmt.Errorf("failed to delete %s: %w", fileID, err)
	}
	return nil
}

// Ensure Client implements publish.DriveClient
var _ publish.DriveClient = (*Client)(nil)
