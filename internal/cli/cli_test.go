package cli

import (
	"bytes"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmaehler/davbox/internal/davtest"
)

// runCLI drives the real command tree the way main would.
func runCLI(t *testing.T, cfgPath string, args ...string) string {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	require.NoError(t, rootCmd.Execute(), "davbox %s", strings.Join(args, " "))
	return buf.String()
}

func writeTestConfig(t *testing.T, serverURL string) string {
	t.Helper()
	for _, key := range []string{"DAVBOX_URL", "DAVBOX_USERNAME", "DAVBOX_PASSWORD"} {
		t.Setenv(key, "")
	}
	path := filepath.Join(t.TempDir(), "config.toml")
	content := fmt.Sprintf("url = %q\nusername = \"jdoe\"\npassword = \"secret\"\n", serverURL)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestCLIEndToEnd(t *testing.T) {
	fix := davtest.New()
	fix.AddCalendar("personal", "Personal", "VEVENT", "VTODO")
	fix.AddAddressbook("contacts", "People")
	srv := httptest.NewServer(fix.Handler())
	defer srv.Close()

	cfgPath := writeTestConfig(t, srv.URL)

	out := runCLI(t, cfgPath, "config", "show")
	assert.Contains(t, out, srv.URL)
	assert.Contains(t, out, "(set)")
	assert.NotContains(t, out, "secret")

	out = runCLI(t, cfgPath, "calendars")
	assert.Contains(t, out, "Personal")
	assert.Contains(t, out, "events+tasks")

	out = runCLI(t, cfgPath, "addressbooks")
	assert.Contains(t, out, "People")

	out = runCLI(t, cfgPath, "tasks", "add", "--summary", "Water plants")
	require.True(t, strings.HasPrefix(out, "created task "), "unexpected output %q", out)
	uid := strings.TrimSpace(strings.TrimPrefix(out, "created task "))
	require.NotEmpty(t, uid)

	out = runCLI(t, cfgPath, "tasks", "list")
	assert.Contains(t, out, "Water plants")
	assert.Contains(t, out, "NEEDS-ACTION")

	out = runCLI(t, cfgPath, "tasks", "complete", uid)
	assert.Contains(t, out, "completed task "+uid)

	out = runCLI(t, cfgPath, "tasks", "list")
	assert.NotContains(t, out, "Water plants")

	out = runCLI(t, cfgPath, "tasks", "list", "--all")
	assert.Contains(t, out, "COMPLETED")
}

func TestCLIFilesRoundTrip(t *testing.T) {
	fix := davtest.New()
	srv := httptest.NewServer(fix.Handler())
	defer srv.Close()

	cfgPath := writeTestConfig(t, srv.URL)

	dir := t.TempDir()
	local := filepath.Join(dir, "hello.txt")
	require.NoError(t, os.WriteFile(local, []byte("hello dav\n"), 0o644))

	out := runCLI(t, cfgPath, "files", "put", local, "hello.txt")
	assert.Contains(t, out, "uploaded hello.txt")

	stored, ok := fix.FileBody("/files/jdoe/hello.txt")
	require.True(t, ok)
	assert.Equal(t, "hello dav\n", string(stored))

	fetched := filepath.Join(dir, "fetched.txt")
	out = runCLI(t, cfgPath, "files", "get", "hello.txt", fetched)
	assert.Contains(t, out, "downloaded")

	data, err := os.ReadFile(fetched)
	require.NoError(t, err)
	assert.Equal(t, "hello dav\n", string(data))
}

func TestCLIBadConfigFails(t *testing.T) {
	for _, key := range []string{"DAVBOX_URL", "DAVBOX_USERNAME", "DAVBOX_PASSWORD"} {
		t.Setenv(key, "")
	}
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("url = \"https://cloud.example.net\"\n"), 0o600))

	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetErr(new(bytes.Buffer))
	rootCmd.SetArgs([]string{"--config", path, "calendars"})
	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config incomplete")
}
