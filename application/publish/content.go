package publish

import (
	"bytes"
	"encoding/json"
	"fmt"

	"drive-json-publisher/domain/publish"

	"github.com/gabriel-vasile/mimetype"
)

// Content is a serialized document ready for upload
type Content struct {
	Data     []byte
	MimeType string
	Detected string // MIME type sniffed from Data, for diagnostics
}

// PrepareContent serializes jsonData as indented JSON text.
// The stored MIME type is always application/json; sniffing only reports what the bytes look like.
func PrepareContent(raw json.RawMessage) (*Content, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, bytes.TrimSpace(raw), "", "  "); err != nil {
		return nil, publish.NewClientError("jsonData is not valid JSON", fmt.Errorf("%w: %v", publish.ErrInvalidJSON, err))
	}

	detected := mimetype.Detect(buf.Bytes())

	return &Content{
		Data:     buf.Bytes(),
		MimeType: publish.MimeTypeJSON,
		Detected: detected.String(),
	}, nil
}

// IsJSON reports whether the sniffed type agrees with the declared one
func (c *Content) IsJSON() bool {
	return mimetype.EqualsAny(c.Detected, publish.MimeTypeJSON)
}
