package cmd

import (
	"context"

	app "drive-json-publisher/application/publish"
	"drive-json-publisher/domain/publish"
	"drive-json-publisher/infrastructure/config"
	"drive-json-publisher/infrastructure/drive"
)

// resolveAuthenticator selects credentials once for the process. On failure the
// returned authenticator is a placeholder that reports the configuration error
// on every upload, and err is the same error for startup logging.
func resolveAuthenticator(ctx context.Context, lookup config.LookupFunc, opts ...drive.AuthOption) (publish.Authenticator, publish.Credentials, error) {
	creds, err := config.LoadCredentials(lookup)
	if err != nil {
		return app.Misconfigured(err), publish.Credentials{}, err
	}

	auth, err := drive.NewAuthenticator(ctx, creds, opts...)
	if err != nil {
		return app.Misconfigured(err), publish.Credentials{}, err
	}

	return auth, creds, nil
}
