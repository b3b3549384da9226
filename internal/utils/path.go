package utils

import (
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

// dataPatterns are the file names a dictionary directory is recognised by.
var dataPatterns = []string{"dict_*.bin", "*.txt"}

// ResolveDataDir finds the directory holding dictionary files.
// It tries, in order:
// 1. The given path as is (absolute, or relative to the working dir)
// 2. The path relative to the executable directory
// 3. data/ next to the executable and in its parent
//
// When nothing matches, the path itself is returned so callers can report it.
func ResolveDataDir(path string) string {
	candidates := []string{path}

	if execDir, err := GetExecutableDir(); err == nil {
		if !filepath.IsAbs(path) {
			candidates = append(candidates, filepath.Join(execDir, path))
		}
		candidates = append(candidates,
			filepath.Join(execDir, "data"),
			filepath.Join(filepath.Dir(execDir), "data"),
		)
	} else {
		log.Warnf("Could not determine executable dir: %v", err)
	}

	for _, candidate := range candidates {
		if IsDataDir(candidate) {
			log.Debugf("Found valid data directory: %s", candidate)
			return candidate
		}
		log.Debugf("Data directory candidate not valid: %s", candidate)
	}
	return path
}

// IsDataDir reports whether dir contains at least one dictionary file.
func IsDataDir(dir string) bool {
	if stat, err := os.Stat(dir); err != nil || !stat.IsDir() {
		return false
	}
	for _, pattern := range dataPatterns {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err == nil && len(matches) > 0 {
			return true
		}
	}
	return false
}
