package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	app "drive-json-publisher/application/publish"
	"drive-json-publisher/infrastructure/config"
	"drive-json-publisher/infrastructure/drive"
	"drive-json-publisher/infrastructure/httpapi"
	"drive-json-publisher/infrastructure/metrics"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the upload HTTP server",
	Long: `Starts the HTTP server that accepts POST {"jsonData": ..., "filename": "..."}
on the configured route (default /api/upload-to-drive).

Credentials are read from the environment once at startup. When none are
set the server still starts; uploads then fail with a configuration error
until it is restarted with credentials.

Example:
  PORT=3000 drive-json-publisher serve`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := GetConfig()
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.Addr(), err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return RunServeWithDependencies(ctx, cfg, config.OSLookup, ln, logger)
}

// RunServeWithDependencies serves on ln until ctx is cancelled, then shuts down gracefully
func RunServeWithDependencies(
	ctx context.Context,
	cfg *config.Config,
	lookup config.LookupFunc,
	ln net.Listener,
	log logrus.FieldLogger,
	authOpts ...drive.AuthOption,
) error {
	// The token source outlives any single request
	auth, creds, err := resolveAuthenticator(context.WithoutCancel(ctx), lookup, authOpts...)
	credentials := string(creds.Scheme)
	if err != nil {
		log.WithError(err).Warn("Google Drive credentials unavailable; uploads will fail until configured")
		credentials = "unconfigured"
	} else {
		log.Infof("Using %s credentials", creds)
	}

	svcOpts := []app.Option{
		app.WithDownloadBase(cfg.Drive.DownloadBaseURL),
		app.WithLogger(log),
	}
	routerCfg := httpapi.RouterConfig{
		Route:         cfg.Server.Route,
		AllowedOrigin: cfg.Server.AllowedOrigin,
		MaxBodyBytes:  cfg.Server.MaxBodyBytes,
		RateLimitQPS:  cfg.Server.RateLimitQPS,
		Credentials:   credentials,
		MetricsPath:   cfg.Metrics.Path,
	}

	var rec httpapi.RequestRecorder
	if cfg.Metrics.Enabled {
		m := metrics.New()
		svcOpts = append(svcOpts, app.WithRecorder(m))
		routerCfg.Metrics = m.Handler()
		rec = m
	}

	svc := app.NewService(auth, creds.ParentFolder(), svcOpts...)
	router := httpapi.NewRouter(routerCfg, svc, log, rec)

	srv := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Listening on %s%s", ln.Addr(), cfg.Server.Route)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	log.Info("Server stopped")
	return nil
}
