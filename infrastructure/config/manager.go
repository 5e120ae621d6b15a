package config

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Errors for config management
var (
	ErrUnknownKey   = errors.New("unknown config key")
	ErrInvalidValue = errors.New("invalid config value")
)

// field binds a dotted key to a typed value inside Config
type field struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

var fields = map[string]field{
	"server.port": {
		get: func(c *Config) string { return c.Server.Port },
		set: func(c *Config, v string) error {
			if _, err := strconv.ParseUint(v, 10, 16); err != nil {
				return err
			}
			c.Server.Port = v
			return nil
		},
	},
	"server.route": {
		get: func(c *Config) string { return c.Server.Route },
		set: func(c *Config, v string) error {
			if !strings.HasPrefix(v, "/") {
				return errors.New("route must start with /")
			}
			c.Server.Route = v
			return nil
		},
	},
	"server.allowed_origin": {
		get: func(c *Config) string { return c.Server.AllowedOrigin },
		set: func(c *Config, v string) error { c.Server.AllowedOrigin = v; return nil },
	},
	"server.max_body_bytes": {
		get: func(c *Config) string { return strconv.FormatInt(c.Server.MaxBodyBytes, 10) },
		set: func(c *Config, v string) error {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return err
			}
			if n <= 0 {
				return errors.New("must be positive")
			}
			c.Server.MaxBodyBytes = n
			return nil
		},
	},
	"server.rate_limit_qps": {
		get: func(c *Config) string { return strconv.Itoa(c.Server.RateLimitQPS) },
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return err
			}
			if n < 0 {
				return errors.New("must not be negative")
			}
			c.Server.RateLimitQPS = n
			return nil
		},
	},
	"server.shutdown_timeout": {
		get: func(c *Config) string { return c.Server.ShutdownTimeout.String() },
		set: func(c *Config, v string) error {
			d, err := time.ParseDuration(v)
			if err != nil {
				return err
			}
			c.Server.ShutdownTimeout = d
			return nil
		},
	},
	"drive.download_base_url": {
		get: func(c *Config) string { return c.Drive.DownloadBaseURL },
		set: func(c *Config, v string) error {
			if !strings.HasPrefix(v, "https://") && !strings.HasPrefix(v, "http://") {
				return errors.New("must be an http(s) URL")
			}
			c.Drive.DownloadBaseURL = v
			return nil
		},
	},
	"logging.level": {
		get: func(c *Config) string { return c.Logging.Level },
		set: func(c *Config, v string) error { c.Logging.Level = strings.ToLower(v); return nil },
	},
	"logging.format": {
		get: func(c *Config) string { return c.Logging.Format },
		set: func(c *Config, v string) error {
			v = strings.ToLower(v)
			if v != "text" && v != "json" {
				return errors.New("must be text or json")
			}
			c.Logging.Format = v
			return nil
		},
	},
	"metrics.enabled": {
		get: func(c *Config) string { return strconv.FormatBool(c.Metrics.Enabled) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return err
			}
			c.Metrics.Enabled = b
			return nil
		},
	},
	"metrics.path": {
		get: func(c *Config) string { return c.Metrics.Path },
		set: func(c *Config, v string) error {
			if !strings.HasPrefix(v, "/") {
				return errors.New("path must start with /")
			}
			c.Metrics.Path = v
			return nil
		},
	},
}

// ConfigManager reads and updates config entries by dotted key
type ConfigManager struct {
	config     *Config
	configPath string
}

// NewConfigManager creates a new config manager
func NewConfigManager(cfg *Config, configPath string) *ConfigManager {
	return &ConfigManager{
		config:     cfg,
		configPath: configPath,
	}
}

// Keys returns every settable key in sorted order
func (m *ConfigManager) Keys() []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the current value of key
func (m *ConfigManager) Get(key string) (string, error) {
	f, ok := fields[strings.ToLower(strings.TrimSpace(key))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	return f.get(m.config), nil
}

// Set validates and stores value under key, then saves the config file
func (m *ConfigManager) Set(key, value string) error {
	f, ok := fields[strings.ToLower(strings.TrimSpace(key))]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	if err := f.set(m.config, strings.TrimSpace(value)); err != nil {
		return fmt.Errorf("%w for %s: %v", ErrInvalidValue, key, err)
	}
	return Save(m.config, m.configPath)
}
