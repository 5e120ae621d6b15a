package config

import (
	"errors"
	"path/filepath"
	"testing"
)

func newTestManager(t *testing.T) (*ConfigManager, *Config, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := Default()
	return NewConfigManager(cfg, path), cfg, path
}

func TestConfigManager_Get(t *testing.T) {
	m, _, _ := newTestManager(t)

	got, err := m.Get("server.route")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "/api/upload-to-drive" {
		t.Errorf("expected default route, got %q", got)
	}

	if _, err := m.Get("server.nope"); !errors.Is(err, ErrUnknownKey) {
		t.Errorf("expected ErrUnknownKey, got %v", err)
	}
}

func TestConfigManager_Set(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		want    string
		wantErr error
	}{
		{name: "port", key: "server.port", value: "9000", want: "9000"},
		{name: "invalid port", key: "server.port", value: "99999", wantErr: ErrInvalidValue},
		{name: "qps", key: "server.rate_limit_qps", value: "10", want: "10"},
		{name: "negative qps", key: "server.rate_limit_qps", value: "-1", wantErr: ErrInvalidValue},
		{name: "shutdown timeout", key: "server.shutdown_timeout", value: "5s", want: "5s"},
		{name: "format", key: "logging.format", value: "JSON", want: "json"},
		{name: "bad format", key: "logging.format", value: "xml", wantErr: ErrInvalidValue},
		{name: "metrics toggle", key: "metrics.enabled", value: "false", want: "false"},
		{name: "base url", key: "drive.download_base_url", value: "ftp://x", wantErr: ErrInvalidValue},
		{name: "unknown", key: "drive.folder", value: "x", wantErr: ErrUnknownKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _, path := newTestManager(t)

			err := m.Set(tt.key, tt.value)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			got, _ := m.Get(tt.key)
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}

			loaded, err := Load(path)
			if err != nil {
				t.Fatalf("saved config did not load: %v", err)
			}
			reloaded, _ := NewConfigManager(loaded, path).Get(tt.key)
			if reloaded != tt.want {
				t.Errorf("persisted %q, want %q", reloaded, tt.want)
			}
		})
	}
}

func TestConfigManager_Keys(t *testing.T) {
	m, _, _ := newTestManager(t)
	keys := m.Keys()

	if len(keys) != len(fields) {
		t.Fatalf("expected %d keys, got %d", len(fields), len(keys))
	}
	for i := 1; i < len(keys); i++ {
		if keys[i-1] > keys[i] {
			t.Fatalf("keys not sorted: %v", keys)
		}
	}
}
