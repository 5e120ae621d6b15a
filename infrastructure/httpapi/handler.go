package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"drive-json-publisher/domain/publish"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// DefaultMaxBodyBytes caps POST bodies when no limit is configured
const DefaultMaxBodyBytes int64 = 10 << 20

// Publisher runs one upload. application/publish.Service implements it.
type Publisher interface {
	Publish(ctx context.Context, req publish.UploadRequest) (*publish.UploadResult, error)
}

// UploadHandler accepts {jsonData, filename} and answers with download links
type UploadHandler struct {
	publisher     Publisher
	allowedOrigin string
	maxBodyBytes  int64
	limiter       *rate.Limiter // nil means unlimited
	log           logrus.FieldLogger
}

// HandlerOption configures an UploadHandler
type HandlerOption func(*UploadHandler)

// WithAllowedOrigin sets Access-Control-Allow-Origin
func WithAllowedOrigin(origin string) HandlerOption {
	return func(h *UploadHandler) {
		if origin != "" {
			h.allowedOrigin = origin
		}
	}
}

// WithMaxBodyBytes limits the request body size
func WithMaxBodyBytes(n int64) HandlerOption {
	return func(h *UploadHandler) {
		if n > 0 {
			h.maxBodyBytes = n
		}
	}
}

// WithRateLimit allows qps uploads per second for the whole process, with a burst of qps.
// qps <= 0 disables the limit. Pre-flight requests are never limited.
func WithRateLimit(qps int) HandlerOption {
	return func(h *UploadHandler) {
		if qps <= 0 {
			h.limiter = nil
			return
		}
		h.limiter = rate.NewLimiter(rate.Limit(qps), qps)
	}
}

// WithHandlerLogger sets the logger for request failures
func WithHandlerLogger(log logrus.FieldLogger) HandlerOption {
	return func(h *UploadHandler) {
		h.log = log
	}
}

// NewUploadHandler creates the upload endpoint around publisher
func NewUploadHandler(publisher Publisher, opts ...HandlerOption) *UploadHandler {
	h := &UploadHandler{
		publisher:     publisher,
		allowedOrigin: "*",
		maxBodyBytes:  DefaultMaxBodyBytes,
		log:           logrus.StandardLogger(),
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

func (h *UploadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.setCORS(w)

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
		return
	case http.MethodPost:
	default:
		writeError(w, publish.NewClientError("Method not allowed", publish.ErrMethodNotAllowed))
		return
	}

	if h.limiter != nil && !h.limiter.Allow() {
		w.Header().Set("Retry-After", "1")
		writeStatus(w, http.StatusTooManyRequests, "Too many requests")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)

	var req publish.UploadRequest
	dec := json.NewDecoder(r.Body)
	err := dec.Decode(&req)
	if err == nil && dec.More() {
		err = errors.New("unexpected data after JSON body")
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, publish.NewClientError("Request body too large", err))
			return
		}
		writeError(w, publish.NewClientError("Invalid JSON body", err))
		return
	}

	result, err := h.publisher.Publish(r.Context(), req)
	if err != nil {
		pe := publish.AsError(err)
		entry := h.log.WithFields(logrus.Fields{
			"kind":       pe.Kind,
			"filename":   req.Filename,
			"request_id": RequestID(r.Context()),
		})
		if pe.Kind == publish.KindClient {
			entry.Debugf("Rejected upload: %s", pe.Message)
		} else {
			entry.Errorf("Upload failed: %v", err)
		}
		writeError(w, pe)
		return
	}

	writeResult(w, result)
}

func (h *UploadHandler) setCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", h.allowedOrigin)
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}
