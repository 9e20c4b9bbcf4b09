package preflight

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/sys/unix"

	"mkvaudur/internal/config"
	"mkvaudur/internal/deps"
	"mkvaudur/internal/services"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSystemDeps evaluates the external tools needed by a display or export
// run. Both the run commands and the CLI deps command use this to avoid
// duplicating the requirements list.
func CheckSystemDeps(cfg *config.Config, exporting bool) []deps.Status {
	return deps.CheckBinaries(deps.ToolRequirements(
		cfg.Tools.MediaInfo,
		cfg.Tools.FFmpeg,
		cfg.Tools.FFprobe,
		exporting,
	))
}

// RequireSystemDeps fails when a required tool is missing. mediainfo maps to
// ErrProbeUnavailable and everything else to ErrTranscoderUnavailable.
func RequireSystemDeps(cfg *config.Config, exporting bool) ([]deps.Status, error) {
	statuses := CheckSystemDeps(cfg, exporting)
	missing := deps.MissingRequired(statuses)
	if len(missing) == 0 {
		return statuses, nil
	}
	details := make([]string, 0, len(missing))
	marker := services.ErrTranscoderUnavailable
	for _, status := range missing {
		details = append(details, fmt.Sprintf("%s: %s", status.Name, status.Detail))
		if status.Command == strings.TrimSpace(cfg.Tools.MediaInfo) {
			marker = services.ErrProbeUnavailable
		}
	}
	return statuses, services.Wrap(marker, "preflight", "dependencies", strings.Join(details, "; "), nil)
}
