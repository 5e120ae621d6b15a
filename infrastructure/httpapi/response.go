package httpapi

import (
	"encoding/json"
	"net/http"

	"drive-json-publisher/domain/publish"
)

type successResponse struct {
	Success      bool   `json:"success"`
	FileID       string `json:"fileId"`
	DownloadLink string `json:"downloadLink"`
	WebViewLink  string `json:"webViewLink"`
	FileName     string `json:"fileName"`
	Message      string `json:"message,omitempty"`
}

type errorResponse struct {
	Success bool           `json:"success"`
	Error   string         `json:"error"`
	Hint    string         `json:"hint,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeResult(w http.ResponseWriter, result *publish.UploadResult) {
	writeJSON(w, http.StatusOK, successResponse{
		Success:      true,
		FileID:       result.FileID,
		DownloadLink: result.DownloadLink,
		WebViewLink:  result.WebViewLink,
		FileName:     result.FileName,
		Message:      result.Message,
	})
}

func writeError(w http.ResponseWriter, err error) {
	pe := publish.AsError(err)
	writeJSON(w, pe.HTTPStatus(), errorResponse{
		Success: false,
		Error:   pe.Message,
		Hint:    pe.Hint,
		Details: pe.Details,
	})
}

// writeStatus answers with a plain error body for failures outside the publish taxonomy
func writeStatus(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Success: false, Error: message})
}
