package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// RouterConfig describes how the HTTP surface is mounted
type RouterConfig struct {
	Route         string // upload endpoint path
	AllowedOrigin string
	MaxBodyBytes  int64
	RateLimitQPS  int
	Credentials   string       // active scheme reported by /healthz, "unconfigured" when none
	Metrics       http.Handler // nil disables /metrics
	MetricsPath   string
}

// NewRouter builds the mux router with the upload endpoint, /healthz and /metrics.
// rec may be nil.
func NewRouter(cfg RouterConfig, publisher Publisher, log logrus.FieldLogger, rec RequestRecorder) *mux.Router {
	if cfg.Route == "" {
		cfg.Route = "/api/upload-to-drive"
	}
	if cfg.MetricsPath == "" {
		cfg.MetricsPath = "/metrics"
	}
	if cfg.Credentials == "" {
		cfg.Credentials = "unconfigured"
	}

	r := mux.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(log))
	if rec != nil {
		r.Use(metricsMiddleware(rec))
	}
	r.Use(recoveryMiddleware(log))

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":      "ok",
			"credentials": cfg.Credentials,
		})
	}).Methods(http.MethodGet)

	if cfg.Metrics != nil {
		r.Handle(cfg.MetricsPath, cfg.Metrics).Methods(http.MethodGet)
	}

	upload := NewUploadHandler(publisher,
		WithAllowedOrigin(cfg.AllowedOrigin),
		WithMaxBodyBytes(cfg.MaxBodyBytes),
		WithRateLimit(cfg.RateLimitQPS),
		WithHandlerLogger(log),
	)
	r.Handle(cfg.Route, upload)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeStatus(w, http.StatusNotFound, "Not found")
	})

	return r
}
