package cli

import (
	"bytes"
	"fmt"
	"mime"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"

	"github.com/tmaehler/davbox/internal/config"
)

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "Transfer raw files",
	Long: `Transfer raw files over WebDAV.

Remote paths are relative to your personal file root on the server.
A remote path starting with / is used as a server path verbatim.`,
}

var filesGetCmd = &cobra.Command{
	Use:   "get <remote> [local]",
	Short: "Download a file",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, cfg, err := requireSetup()
		if err != nil {
			return err
		}
		remote, err := remoteFilePath(cfg, args[0])
		if err != nil {
			return err
		}
		data, _, err := c.DownloadFile(cmd.Context(), remote)
		if err != nil {
			return err
		}
		local := path.Base(args[0])
		if len(args) == 2 {
			local = args[1]
		}
		if err := atomic.WriteFile(local, bytes.NewReader(data)); err != nil {
			return fmt.Errorf("failed to write %s: %w", local, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "downloaded %s (%d bytes)\n", local, len(data))
		return nil
	},
}

var filesPutCmd = &cobra.Command{
	Use:   "put <local> <remote>",
	Short: "Upload a file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, cfg, err := requireSetup()
		if err != nil {
			return err
		}
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", args[0], err)
		}
		remote, err := remoteFilePath(cfg, args[1])
		if err != nil {
			return err
		}
		contentType := mime.TypeByExtension(filepath.Ext(args[0]))
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		if err := c.UploadFile(cmd.Context(), remote, contentType, data); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "uploaded %s (%d bytes)\n", args[1], len(data))
		return nil
	},
}

// remoteFilePath turns a user-supplied remote path into a server path under
// the personal file root, e.g. /remote.php/dav/files/<user>/. Absolute
// inputs pass through untouched.
func remoteFilePath(cfg *config.Config, remote string) (string, error) {
	if strings.HasPrefix(remote, "/") {
		return remote, nil
	}
	u, err := url.Parse(cfg.URL)
	if err != nil {
		return "", fmt.Errorf("failed to parse server URL %q: %w", cfg.URL, err)
	}
	parts := strings.Split(remote, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.TrimRight(u.Path, "/") + "/files/" + url.PathEscape(cfg.Username) + "/" + strings.Join(parts, "/"), nil
}

func init() {
	filesCmd.AddCommand(filesGetCmd)
	filesCmd.AddCommand(filesPutCmd)
	rootCmd.AddCommand(filesCmd)
}
