package publish

import (
	"context"
	"errors"

	"drive-json-publisher/domain/publish"
)

// misconfigured stands in for a real authenticator when credential resolution failed at startup
type misconfigured struct {
	err *publish.Error
}

// Misconfigured returns an Authenticator that always fails with a configuration error
// and never touches the network. It lets the server keep answering OPTIONS and
// validation errors while reporting operator misconfiguration on uploads.
func Misconfigured(err error) publish.Authenticator {
	var pe *publish.Error
	if !errors.As(err, &pe) || pe.Kind != publish.KindConfiguration {
		pe = publish.NewConfigurationError(err.Error(), err)
	}
	return &misconfigured{err: pe}
}

func (m *misconfigured) Connect(ctx context.Context) (publish.DriveClient, error) {
	return nil, m.err
}

func (m *misconfigured) Identity() string {
	return ""
}

// IsMisconfigured reports whether auth is a placeholder created by Misconfigured
func IsMisconfigured(auth publish.Authenticator) bool {
	_, ok := auth.(*misconfigured)
	return ok
}
