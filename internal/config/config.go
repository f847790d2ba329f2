// Package config handles the davbox configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/natefinch/atomic"
)

// Config is the davbox configuration.
type Config struct {
	// URL is the server base URL, e.g. https://cloud.example.net.
	URL string `toml:"url"`

	// Username and Password authenticate every request. Use an app
	// password or token, not the account password.
	Username string `toml:"username"`
	Password string `toml:"password"`

	// Calendar and Addressbook name the default collections for
	// commands that don't pick one. Empty means the first collection
	// the server lists.
	Calendar    string `toml:"calendar"`
	Addressbook string `toml:"addressbook"`

	// Insecure skips TLS certificate verification.
	Insecure bool `toml:"insecure"`

	// TimeoutSeconds bounds every HTTP request. Zero means the client
	// default.
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// Timeout returns the configured per-request timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Validate checks the fields every network command needs.
func (c *Config) Validate() error {
	var missing []string
	if c.URL == "" {
		missing = append(missing, "url")
	}
	if c.Username == "" {
		missing = append(missing, "username")
	}
	if c.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return fmt.Errorf("config incomplete: missing %s (run 'davbox config init')", strings.Join(missing, ", "))
	}
	return nil
}

// Load reads the configuration from the default location and applies
// environment overrides. A missing file yields an empty config so
// env-only setups work.
func Load() (*Config, error) {
	path := DefaultPath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := &Config{}
		cfg.applyEnv()
		return cfg, nil
	}
	return LoadFrom(path)
}

// LoadFrom reads the configuration from a specific path and applies
// environment overrides. Unlike Load, a missing file is an error.
func LoadFrom(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	cfg.applyEnv()
	return &cfg, nil
}

// applyEnv lets DAVBOX_URL, DAVBOX_USERNAME and DAVBOX_PASSWORD take
// precedence over the file.
func (c *Config) applyEnv() {
	if v := os.Getenv("DAVBOX_URL"); v != "" {
		c.URL = v
	}
	if v := os.Getenv("DAVBOX_USERNAME"); v != "" {
		c.Username = v
	}
	if v := os.Getenv("DAVBOX_PASSWORD"); v != "" {
		c.Password = v
	}
}

// DefaultPath returns the default config file path, preferring
// ~/.config/davbox/config.toml.
func DefaultPath() string {
	if home, err := os.UserHomeDir(); err == nil {
		xdgPath := filepath.Join(home, ".config", "davbox", "config.toml")
		if _, err := os.Stat(xdgPath); err == nil {
			return xdgPath
		}
	}
	if configDir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(configDir, "davbox", "config.toml")
	}
	return filepath.Join(".", "config.toml")
}

const template = `# davbox configuration

# Server base URL.
url = ""

# Login and app password (Settings > Security > Devices & sessions).
username = ""
password = ""

# Default collections; empty picks the first the server lists.
# calendar = "Personal"
# addressbook = "Contacts"

# Skip TLS certificate verification. Only for self-signed test servers.
# insecure = true

# HTTP timeout per request.
timeout_seconds = 30
`

// Init writes a commented starter config at path (the default path when
// empty). An existing file is left untouched. Returns the path written
// or found.
func Init(path string) (string, error) {
	if path == "" {
		path = DefaultPath()
	}
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := atomic.WriteFile(path, strings.NewReader(template)); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}
	// The file holds a password; atomic.WriteFile does not set
	// permissions for new files.
	if err := os.Chmod(path, 0o600); err != nil {
		return "", fmt.Errorf("failed to set config permissions: %w", err)
	}
	return path, nil
}
