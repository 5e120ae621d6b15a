package publish

import (
	"net/url"
	"strings"
)

// DefaultDownloadBase is the public Drive host used to build download links
const DefaultDownloadBase = "https://drive.google.com"

// MimeTypeJSON is the content type of every published document
const MimeTypeJSON = "application/json"

// UploadResult contains the result of a successful publish
type UploadResult struct {
	FileID       string // Drive file ID
	DownloadLink string // Direct download URL, derived from FileID
	WebViewLink  string // Drive web viewer URL
	FileName     string // Name as stored by Drive
	Message      string // Optional note for the caller
}

// DownloadLink builds <base>/uc?export=download&id=<fileID>
func DownloadLink(base, fileID string) string {
	if base == "" {
		base = DefaultDownloadBase
	}
	return strings.TrimRight(base, "/") + "/uc?export=download&id=" + url.QueryEscape(fileID)
}
