package publish

import (
	"bytes"
	"encoding/json"
	"strings"
)

// UploadRequest is the body accepted by the upload endpoint
type UploadRequest struct {
	JSONData json.RawMessage `json:"jsonData"`
	Filename string          `json:"filename"`
}

// Validate checks that both jsonData and filename are present.
// A JSON null counts as missing.
func (r *UploadRequest) Validate() error {
	var missing []string
	if isAbsent(r.JSONData) {
		missing = append(missing, "jsonData")
	}
	if strings.TrimSpace(r.Filename) == "" {
		missing = append(missing, "filename")
	}

	switch len(missing) {
	case 0:
		return nil
	case 2:
		e := NewClientError("Missing jsonData or filename", ErrMissingFields)
		e.Details = map[string]any{"missing": missing}
		return e
	default:
		e := NewClientError("Missing "+missing[0], ErrMissingFields)
		e.Details = map[string]any{"missing": missing}
		return e
	}
}

func isAbsent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
