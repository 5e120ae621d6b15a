package publish

import (
	"context"
	"errors"
	"fmt"
	"time"

	"drive-json-publisher/domain/publish"

	"github.com/sirupsen/logrus"
)

// Recorder receives publish measurements
type Recorder interface {
	UploadFinished(outcome string)
	StepDuration(step string, d time.Duration)
}

type noopRecorder struct{}

func (noopRecorder) UploadFinished(string)              {}
func (noopRecorder) StepDuration(string, time.Duration) {}

// Outcome labels
const (
	OutcomeSuccess = "success"
)

// Step labels
const (
	StepAuthenticate = "authenticate"
	StepCreate       = "create"
	StepPublish      = "publish"
	StepCleanup      = "cleanup"
)

// Service uploads JSON documents to Google Drive and makes them public
type Service struct {
	auth         publish.Authenticator
	folderID     string
	downloadBase string
	log          logrus.FieldLogger
	recorder     Recorder
}

// Option configures a Service
type Option func(*Service)

// WithDownloadBase overrides the host used to build download links
func WithDownloadBase(base string) Option {
	return func(s *Service) {
		if base != "" {
			s.downloadBase = base
		}
	}
}

// WithLogger sets the logger used for per-request progress
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Service) {
		s.log = log
	}
}

// WithRecorder sets the metrics recorder
func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		s.recorder = r
	}
}

// NewService creates a publish service. folderID may be empty.
func NewService(auth publish.Authenticator, folderID string, opts ...Option) *Service {
	s := &Service{
		auth:         auth,
		folderID:     folderID,
		downloadBase: publish.DefaultDownloadBase,
		log:          logrus.StandardLogger(),
		recorder:     noopRecorder{},
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Publish validates req, uploads its content and grants public read.
// Every returned error is a *publish.Error.
func (s *Service) Publish(ctx context.Context, req publish.UploadRequest) (*publish.UploadResult, error) {
	result, err := s.publish(ctx, req)
	if err != nil {
		pe := publish.AsError(err)
		s.recorder.UploadFinished(string(pe.Kind))
		return nil, pe
	}
	s.recorder.UploadFinished(OutcomeSuccess)
	return result, nil
}

func (s *Service) publish(ctx context.Context, req publish.UploadRequest) (*publish.UploadResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	log := s.log.WithField("filename", req.Filename)

	content, err := PrepareContent(req.JSONData)
	if err != nil {
		return nil, err
	}
	if !content.IsJSON() {
		log.Debugf("Content sniffed as %s, uploading as %s", content.Detected, content.MimeType)
	}

	start := time.Now()
	client, err := s.auth.Connect(ctx)
	s.recorder.StepDuration(StepAuthenticate, time.Since(start))
	if err != nil {
		var pe *publish.Error
		if errors.As(err, &pe) {
			log.WithError(err).Error("Drive client unavailable")
			return nil, pe
		}
		log.WithError(err).Error("Authentication with Google Drive failed")
		return nil, publish.NewAuthenticationError(err)
	}

	log.Infof("Uploading %s (%d bytes)...", req.Filename, len(content.Data))

	start = time.Now()
	file, err := client.CreateFile(ctx, publish.CreateRequest{
		Name:     req.Filename,
		MimeType: content.MimeType,
		ParentID: s.folderID,
		Content:  content.Data,
	})
	s.recorder.StepDuration(StepCreate, time.Since(start))
	if err != nil {
		log.WithError(err).Error("Upload failed")
		return nil, s.upstreamError(err)
	}

	log = log.WithField("file_id", file.ID)
	log.Info("File uploaded")

	start = time.Now()
	err = client.GrantPublicRead(ctx, file.ID)
	s.recorder.StepDuration(StepPublish, time.Since(start))
	if err != nil {
		log.WithError(err).Error("Setting public permission failed")
		return nil, s.notPublished(ctx, client, file, err, log)
	}

	name := file.Name
	if name == "" {
		name = req.Filename
	}

	return &publish.UploadResult{
		FileID:       file.ID,
		DownloadLink: publish.DownloadLink(s.downloadBase, file.ID),
		WebViewLink:  file.WebViewLink,
		FileName:     name,
		Message:      "File uploaded to Google Drive and shared publicly",
	}, nil
}

func (s *Service) upstreamError(err error) *publish.Error {
	pe := publish.NewUpstreamError(err)
	pe.Hint = publish.Hint(err.Error(), s.auth.Identity())
	return pe
}

// notPublished removes the private orphan left by a failed permission grant
// and reports the whole request as failed.
func (s *Service) notPublished(ctx context.Context, client publish.DriveClient, file *publish.StoredFile, cause error, log logrus.FieldLogger) *publish.Error {
	details := map[string]any{"fileId": file.ID}

	start := time.Now()
	cleanupErr := client.DeleteFile(context.WithoutCancel(ctx), file.ID)
	s.recorder.StepDuration(StepCleanup, time.Since(start))
	if cleanupErr != nil {
		log.WithError(cleanupErr).Warn("Could not remove unpublished file")
		details["cleanedUp"] = false
		details["cleanupError"] = cleanupErr.Error()
	} else {
		log.Info("Removed unpublished file")
		details["cleanedUp"] = true
	}

	pe := &publish.Error{
		Kind:    publish.KindUpstream,
		Message: fmt.Sprintf("File %s was created but could not be made public: %v", file.ID, cause),
		Hint:    publish.Hint(cause.Error(), s.auth.Identity()),
		Details: details,
		Err:     fmt.Errorf("%w: %w", publish.ErrNotPublished, cause),
	}
	return pe
}
