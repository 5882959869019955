package source

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
)

// canonicalize makes p absolute and clean, and requires it to exist.
// On the real filesystem symlinks are resolved too, so two spellings of the
// same directory compare equal.
func canonicalize(fs afero.Fs, p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrCanonicalize, p, err)
	}
	if _, ok := fs.(*afero.OsFs); ok {
		resolved, err := filepath.EvalSymlinks(abs)
		if err != nil {
			return "", fmt.Errorf("%w: %s: %v", ErrCanonicalize, p, err)
		}
		return resolved, nil
	}
	if _, err := fs.Stat(abs); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrCanonicalize, p, err)
	}
	return abs, nil
}

// normalizePath gives relative paths one spelling for cache keys.
func normalizePath(p string) string {
	if p == "" {
		return ""
	}
	return filepath.ToSlash(filepath.Clean(filepath.FromSlash(p)))
}
