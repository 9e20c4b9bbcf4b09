package preflight

import (
	"os"
	"strings"

	"mkvaudur/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the directory checks for the given config.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	// State directory (always checked)
	results = append(results, CheckDirectoryAccess("State directory", cfg.Paths.StateDir))

	// Output directory is created on first write, so only an existing one is checked.
	if dir := strings.TrimSpace(cfg.Paths.OutputDir); dir != "" {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			results = append(results, Result{Name: "Output directory", Passed: true, Detail: dir + " (created on first export)"})
		} else {
			results = append(results, CheckDirectoryAccess("Output directory", dir))
		}
	}

	return results
}
