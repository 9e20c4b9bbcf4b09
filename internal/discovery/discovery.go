// Package discovery resolves input paths into container files and pairs
// sources with reference files.
package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"mkvaudur/internal/services"
)

// Files returns the container files named by path: the file itself when it
// carries the extension, or every matching regular file directly inside a
// directory, sorted by name. ext is given without the leading dot.
func Files(path, ext string) ([]string, error) {
	ext = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".")
	info, err := os.Stat(path)
	if err != nil {
		return nil, services.Wrap(services.ErrNoMediaFound, "discovery", "stat", path, err)
	}

	if !info.IsDir() {
		if info.Mode().IsRegular() && hasExtension(path, ext) {
			return []string{path}, nil
		}
		return nil, services.Wrap(services.ErrNoMediaFound, "discovery", "files",
			fmt.Sprintf("%s is not a .%s file", path, ext), nil)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, services.Wrap(services.ErrNoMediaFound, "discovery", "read dir", path, err)
	}
	var files []string
	for _, entry := range entries {
		full := filepath.Join(path, entry.Name())
		if !hasExtension(full, ext) {
			continue
		}
		info, err := os.Stat(full)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		files = append(files, full)
	}
	if len(files) == 0 {
		return nil, services.Wrap(services.ErrNoMediaFound, "discovery", "files",
			fmt.Sprintf("%s contains no .%s files", path, ext), nil)
	}
	sort.Strings(files)
	return files, nil
}

func hasExtension(path, ext string) bool {
	return strings.TrimPrefix(filepath.Ext(path), ".") == ext
}

// Pair couples a source file with the file its reference duration comes from.
type Pair struct {
	Source    string
	Reference string
}

// Pairs zips sources with references positionally, truncating to the shorter
// list. A nil references slice makes every source its own reference.
func Pairs(sources, references []string) []Pair {
	if references == nil {
		pairs := make([]Pair, 0, len(sources))
		for _, source := range sources {
			pairs = append(pairs, Pair{Source: source, Reference: source})
		}
		return pairs
	}
	n := min(len(sources), len(references))
	pairs := make([]Pair, 0, n)
	for i := range n {
		pairs = append(pairs, Pair{Source: sources[i], Reference: references[i]})
	}
	return pairs
}
