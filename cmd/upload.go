package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	app "drive-json-publisher/application/publish"
	"drive-json-publisher/domain/publish"
	"drive-json-publisher/infrastructure/config"
	"drive-json-publisher/infrastructure/filesystem"

	"github.com/spf13/cobra"
)

var (
	uploadFile string
	uploadDir  string
	uploadName string
)

var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Publish a local JSON file to Google Drive",
	Long: `Upload a local JSON file to Google Drive, share it with "anyone with the link"
and print the download link. Uses the same credentials as the server.

Use --dir instead of --file to publish the most recent .json file in a directory.

Example:
  drive-json-publisher upload --file report.json
  drive-json-publisher upload --file out/data.json --name 2025-12-28.json
  drive-json-publisher upload --dir exports/`,
	RunE: runUpload,
}

func init() {
	rootCmd.AddCommand(uploadCmd)
	uploadCmd.Flags().StringVar(&uploadFile, "file", "", "Path to the JSON file")
	uploadCmd.Flags().StringVar(&uploadDir, "dir", "", "Directory to take the latest .json file from")
	uploadCmd.Flags().StringVar(&uploadName, "name", "", "File name on Drive (defaults to the local file name)")
	uploadCmd.MarkFlagsOneRequired("file", "dir")
	uploadCmd.MarkFlagsMutuallyExclusive("file", "dir")
}

// Uploader publishes one document
type Uploader interface {
	Publish(ctx context.Context, req publish.UploadRequest) (*publish.UploadResult, error)
}

func runUpload(cmd *cobra.Command, args []string) error {
	cfg, err := GetConfig()
	if err != nil {
		return err
	}

	path := uploadFile
	checker := filesystem.NewChecker()
	if path == "" {
		path, err = checker.Latest(uploadDir, ".json")
		if err != nil {
			return fmt.Errorf("no file specified and could not find latest: %w", err)
		}
	} else if !checker.Exists(path) {
		return fmt.Errorf("file not found: %s", path)
	}

	ctx := cmd.Context()
	auth, creds, err := resolveAuthenticator(ctx, config.OSLookup)
	if err != nil {
		return fmt.Errorf("failed to configure Google Drive credentials: %w", err)
	}

	service := app.NewService(auth, creds.ParentFolder(),
		app.WithDownloadBase(cfg.Drive.DownloadBaseURL),
		app.WithLogger(logger),
	)

	return RunUploadWithDependencies(ctx, service, path, uploadName, cmd.OutOrStdout())
}

// RunUploadWithDependencies runs the upload command with injected dependencies (for testing)
func RunUploadWithDependencies(ctx context.Context, uploader Uploader, path, name string, output io.Writer) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if name == "" {
		name = filepath.Base(path)
	}

	fmt.Fprintf(output, "Uploading %s as %s...\n", filepath.Base(path), name)

	result, err := uploader.Publish(ctx, publish.UploadRequest{
		JSONData: json.RawMessage(data),
		Filename: name,
	})
	if err != nil {
		var pe *publish.Error
		if errors.As(err, &pe) && pe.Hint != "" {
			fmt.Fprintf(output, "Hint: %s\n", pe.Hint)
		}
		return fmt.Errorf("upload failed: %w", err)
	}

	fmt.Fprintf(output, "Upload complete!\n")
	fmt.Fprintf(output, "  File ID: %s\n", result.FileID)
	fmt.Fprintf(output, "  File name: %s\n", result.FileName)
	fmt.Fprintf(output, "  Download link: %s\n", result.DownloadLink)
	fmt.Fprintf(output, "  View link: %s\n", result.WebViewLink)
	return nil
}
