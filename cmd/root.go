package cmd

import (
	"fmt"
	"os"

	"drive-json-publisher/infrastructure/config"
	"drive-json-publisher/infrastructure/logging"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	envFile string
	cfg     *config.Config
	cfgErr  error
	logger  *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:   "drive-json-publisher",
	Short: "Publish JSON documents to Google Drive with public download links",
	Long: `drive-json-publisher accepts JSON documents over HTTP, stores them on
Google Drive, shares them with "anyone with the link" and answers with a
direct download link.

Credentials come from the environment:

  - SERVICE_ACCOUNT_JSON (optionally with DESTINATION_FOLDER_ID)
  - OAUTH_CLIENT_ID, OAUTH_CLIENT_SECRET, OAUTH_REFRESH_TOKEN
    (and OAUTH_REDIRECT_URI), minted once with the token command

Example:
  drive-json-publisher token --credentials credentials.json
  drive-json-publisher serve`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./"+config.DefaultPath+")")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading credentials")
}

func initConfig() {
	if cfgFile == "" {
		cfgFile = config.DefaultPath
	}

	if err := config.LoadEnvFile(envFile); err != nil {
		fmt.Fprintln(os.Stderr, "Warning:", err)
	}

	// A missing file means defaults; only a broken file is an error,
	// reported by the commands that need the config.
	cfg, cfgErr = config.LoadOrDefault(cfgFile)
	if cfgErr != nil {
		cfg = nil
		logger = logging.New(os.Stderr, "info", "text")
		return
	}

	config.ApplyEnv(cfg, config.OSLookup)
	logger = logging.New(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)
}

// GetConfig returns the loaded configuration
func GetConfig() (*config.Config, error) {
	if cfg == nil {
		if cfgErr != nil {
			return nil, fmt.Errorf("configuration not loaded: %w", cfgErr)
		}
		return nil, fmt.Errorf("configuration not loaded")
	}
	return cfg, nil
}
