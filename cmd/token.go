package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"drive-json-publisher/domain/publish"
	"drive-json-publisher/infrastructure/drive"

	"github.com/spf13/cobra"
)

var (
	tokenCredentials string
	tokenRedirectURI string
	tokenTimeout     time.Duration
	tokenNoBrowser   bool
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint an OAuth2 refresh token for user credentials",
	Long: `One-time setup for OAuth2 refresh token credentials.

Reads an OAuth client file downloaded from the Google Cloud console, opens the
consent page and listens on the redirect URI for the callback. On success it
prints the OAUTH_* environment variables the server needs.

The redirect URI must be registered on the OAuth client. The command gives up
after --timeout without a callback.

Example:
  drive-json-publisher token --credentials credentials.json
  drive-json-publisher token --redirect-uri http://localhost:8085/oauth2callback --no-browser`,
	RunE: runToken,
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.Flags().StringVar(&tokenCredentials, "credentials", "credentials.json", "Path to the OAuth client credentials file")
	tokenCmd.Flags().StringVar(&tokenRedirectURI, "redirect-uri", publish.DefaultRedirectURI, "Loopback redirect URI registered on the OAuth client")
	tokenCmd.Flags().DurationVar(&tokenTimeout, "timeout", drive.DefaultTokenFlowTimeout, "How long to wait for the browser callback")
	tokenCmd.Flags().BoolVar(&tokenNoBrowser, "no-browser", false, "Only print the consent URL")
}

func runToken(cmd *cobra.Command, args []string) error {
	var opener func(string) error
	if tokenNoBrowser {
		opener = func(string) error { return fmt.Errorf("browser disabled") }
	}
	return RunTokenWithDependencies(cmd.Context(), tokenCredentials, tokenRedirectURI, tokenTimeout, opener, cmd.OutOrStdout())
}

// RunTokenWithDependencies runs the consent flow. opener may be nil to use the system browser.
func RunTokenWithDependencies(
	ctx context.Context,
	credentialsPath string,
	redirectURI string,
	timeout time.Duration,
	opener func(url string) error,
	output io.Writer,
) error {
	data, err := os.ReadFile(credentialsPath)
	if err != nil {
		return fmt.Errorf("unable to read credentials file: %w", err)
	}

	opts := []drive.TokenFlowOption{
		drive.WithTimeout(timeout),
		drive.WithOutput(output),
	}
	if opener != nil {
		opts = append(opts, drive.WithBrowserOpener(opener))
	}

	flow, err := drive.NewTokenFlow(data, redirectURI, opts...)
	if err != nil {
		return err
	}

	token, err := flow.Run(ctx)
	if err != nil {
		return fmt.Errorf("OAuth2 flow failed: %w", err)
	}

	drive.PrintEnv(output, flow.Config(), token)
	return nil
}
