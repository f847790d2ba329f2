package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv neutralizes ambient overrides so file values are observable.
func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DAVBOX_URL", "")
	t.Setenv("DAVBOX_USERNAME", "")
	t.Setenv("DAVBOX_PASSWORD", "")
}

func TestLoadFrom(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
url = "https://cloud.example.net"
username = "jdoe"
password = "app-token"
calendar = "Personal"
insecure = true
timeout_seconds = 10
`), 0o600))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "https://cloud.example.net", cfg.URL)
	assert.Equal(t, "jdoe", cfg.Username)
	assert.Equal(t, "app-token", cfg.Password)
	assert.Equal(t, "Personal", cfg.Calendar)
	assert.Empty(t, cfg.Addressbook)
	assert.True(t, cfg.Insecure)
	assert.Equal(t, 10*time.Second, cfg.Timeout())
	require.NoError(t, cfg.Validate())
}

func TestLoadFromMissingFile(t *testing.T) {
	_, err := LoadFrom(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
url = "https://file.example.net"
username = "file-user"
password = "file-pass"
`), 0o600))

	t.Setenv("DAVBOX_URL", "https://env.example.net")
	t.Setenv("DAVBOX_PASSWORD", "env-pass")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "https://env.example.net", cfg.URL)
	assert.Equal(t, "file-user", cfg.Username, "unset variables leave the file value")
	assert.Equal(t, "env-pass", cfg.Password)
}

func TestValidate(t *testing.T) {
	cfg := &Config{URL: "https://cloud.example.net"}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "username")
	assert.Contains(t, err.Error(), "password")
	assert.NotContains(t, err.Error(), "url,")

	cfg.Username = "jdoe"
	cfg.Password = "token"
	require.NoError(t, cfg.Validate())
}

func TestInit(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	got, err := Init(path)
	require.NoError(t, err)
	assert.Equal(t, path, got)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	// The template must itself be loadable.
	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.TimeoutSeconds)

	// A second init never clobbers an edited file.
	require.NoError(t, os.WriteFile(path, []byte(`url = "https://kept.example.net"`), 0o600))
	_, err = Init(path)
	require.NoError(t, err)
	cfg, err = LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "https://kept.example.net", cfg.URL)
}
