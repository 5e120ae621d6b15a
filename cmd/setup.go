package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"drive-json-publisher/infrastructure/config"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
)

// Prompter interface for interactive prompts (allows mocking in tests)
type Prompter interface {
	Input(message string, defaultValue string) (string, error)
	Confirm(message string, defaultValue bool) (bool, error)
	Select(message string, options []string, defaultValue string) (string, error)
}

// SurveyPrompter implements Prompter using the survey library
type SurveyPrompter struct{}

func (p *SurveyPrompter) Input(message string, defaultValue string) (string, error) {
	result := ""
	prompt := &survey.Input{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return "", err
	}
	return result, nil
}

func (p *SurveyPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	result := defaultValue
	prompt := &survey.Confirm{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return false, err
	}
	return result, nil
}

func (p *SurveyPrompter) Select(message string, options []string, defaultValue string) (string, error) {
	result := ""
	prompt := &survey.Select{
		Message: message,
		Options: options,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return "", err
	}
	return result, nil
}

// DefaultPrompter is the prompter used in production
var DefaultPrompter Prompter = &SurveyPrompter{}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create configuration file interactively",
	Long: `Prompts for server settings and creates config.yaml.

Credentials are not stored in the config file. Set SERVICE_ACCOUNT_JSON or
the OAUTH_* variables in the environment (or .env) instead.`,
	RunE: runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	path := cfgFile
	if path == "" {
		path = config.DefaultPath
	}
	return RunSetupWithPrompter(DefaultPrompter, path, cmd.OutOrStdout())
}

// RunSetupWithPrompter runs the setup with a given prompter (for testing)
func RunSetupWithPrompter(prompter Prompter, configPath string, out io.Writer) error {
	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil {
		overwrite, err := prompter.Confirm("config.yaml already exists. Overwrite?", false)
		if err != nil {
			return fmt.Errorf("prompt cancelled")
		}
		if !overwrite {
			fmt.Fprintln(out, "Setup cancelled.")
			return nil
		}
	}

	fmt.Fprintln(out, "Welcome to drive-json-publisher setup!")
	fmt.Fprintln(out)

	cfg := config.Default()

	if err := promptServer(prompter, cfg); err != nil {
		return err
	}

	if err := promptDrive(prompter, cfg); err != nil {
		return err
	}

	if err := promptObservability(prompter, cfg); err != nil {
		return err
	}

	// Ensure config directory exists
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := config.Save(cfg, configPath); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Configuration saved to %s\n", configPath)
	return nil
}

func promptServer(prompter Prompter, cfg *config.Config) error {
	port, err := prompter.Input("Port to listen on?", cfg.Server.Port)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if port != "" {
		if _, err := strconv.ParseUint(port, 10, 16); err != nil {
			return fmt.Errorf("invalid port %q", port)
		}
		cfg.Server.Port = port
	}

	route, err := prompter.Input("Upload route?", cfg.Server.Route)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if route != "" {
		if !strings.HasPrefix(route, "/") {
			return fmt.Errorf("route must start with /")
		}
		cfg.Server.Route = route
	}

	origin, err := prompter.Input("Allowed CORS origin?", cfg.Server.AllowedOrigin)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if origin != "" {
		cfg.Server.AllowedOrigin = origin
	}

	qps, err := prompter.Input("Max uploads per second (0 for unlimited)?", strconv.Itoa(cfg.Server.RateLimitQPS))
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if qps != "" {
		n, err := strconv.Atoi(qps)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid rate limit %q", qps)
		}
		cfg.Server.RateLimitQPS = n
	}

	return nil
}

func promptDrive(prompter Prompter, cfg *config.Config) error {
	base, err := prompter.Input("Base URL for download links?", cfg.Drive.DownloadBaseURL)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if base != "" {
		cfg.Drive.DownloadBaseURL = base
	}
	return nil
}

func promptObservability(prompter Prompter, cfg *config.Config) error {
	level, err := prompter.Select("Log level?", []string{"debug", "info", "warn", "error"}, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.Logging.Level = level

	format, err := prompter.Select("Log format?", []string{"text", "json"}, cfg.Logging.Format)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.Logging.Format = format

	enabled, err := prompter.Confirm("Expose Prometheus metrics?", cfg.Metrics.Enabled)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.Metrics.Enabled = enabled

	return nil
}
