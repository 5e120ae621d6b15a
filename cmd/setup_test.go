package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"drive-json-publisher/infrastructure/config"
)

// mockPrompter answers prompts from queues in order
type mockPrompter struct {
	inputs   []string
	confirms []bool
	selects  []string
	fail     bool
}

func (p *mockPrompter) Input(message string, defaultValue string) (string, error) {
	if p.fail {
		return "", errors.New("interrupt")
	}
	if len(p.inputs) == 0 {
		return defaultValue, nil
	}
	v := p.inputs[0]
	p.inputs = p.inputs[1:]
	return v, nil
}

func (p *mockPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	if p.fail {
		return false, errors.New("interrupt")
	}
	if len(p.confirms) == 0 {
		return defaultValue, nil
	}
	v := p.confirms[0]
	p.confirms = p.confirms[1:]
	return v, nil
}

func (p *mockPrompter) Select(message string, options []string, defaultValue string) (string, error) {
	if p.fail {
		return "", errors.New("interrupt")
	}
	if len(p.selects) == 0 {
		return defaultValue, nil
	}
	v := p.selects[0]
	p.selects = p.selects[1:]
	return v, nil
}

func TestRunSetup_WritesConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config", "config.yaml")
	prompter := &mockPrompter{
		inputs:   []string{"3000", "/upload", "https://app.example.com", "5", ""},
		selects:  []string{"debug", "json"},
		confirms: []bool{false},
	}
	var out bytes.Buffer

	if err := RunSetupWithPrompter(prompter, path, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("failed to load written config: %v", err)
	}
	if cfg.Server.Port != "3000" || cfg.Server.Route != "/upload" {
		t.Errorf("unexpected server config %+v", cfg.Server)
	}
	if cfg.Server.AllowedOrigin != "https://app.example.com" {
		t.Errorf("unexpected origin %q", cfg.Server.AllowedOrigin)
	}
	if cfg.Server.RateLimitQPS != 5 {
		t.Errorf("expected qps 5, got %d", cfg.Server.RateLimitQPS)
	}
	if cfg.Drive.DownloadBaseURL != "https://drive.google.com" {
		t.Errorf("expected default download base, got %q", cfg.Drive.DownloadBaseURL)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("unexpected logging config %+v", cfg.Logging)
	}
	if cfg.Metrics.Enabled {
		t.Error("expected metrics disabled")
	}
	if !strings.Contains(out.String(), "Configuration saved to") {
		t.Errorf("expected saved message, got: %s", out.String())
	}
}

func TestRunSetup_InvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		inputs []string
		want   string
	}{
		{name: "port", inputs: []string{"http"}, want: "invalid port"},
		{name: "route", inputs: []string{"8080", "upload"}, want: "route must start with /"},
		{name: "rate limit", inputs: []string{"8080", "/u", "*", "-3"}, want: "invalid rate limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			err := RunSetupWithPrompter(&mockPrompter{inputs: tt.inputs}, path, &bytes.Buffer{})
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
			if _, statErr := os.Stat(path); statErr == nil {
				t.Error("config should not be written on invalid input")
			}
		})
	}
}

func TestRunSetup_ExistingConfigKept(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: \"1234\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer

	err := RunSetupWithPrompter(&mockPrompter{confirms: []bool{false}}, path, &out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "Setup cancelled.") {
		t.Errorf("expected cancel message, got: %s", out.String())
	}

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "1234") {
		t.Error("existing config should be untouched")
	}
}

func TestRunSetup_PromptCancelled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	err := RunSetupWithPrompter(&mockPrompter{fail: true}, path, &bytes.Buffer{})
	if err == nil || err.Error() != "prompt cancelled" {
		t.Errorf("expected prompt cancelled, got %v", err)
	}
}
