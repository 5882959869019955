package source

import (
	"path/filepath"
	"strings"
)

// MinimalRelativePath returns the path from currentDir to target built only
// from ".." steps over their common prefix followed by the rest of target.
// Symlinks are not resolved. Identical paths give "". Paths without a common
// root (one relative, one absolute, or different volumes) return target cleaned.
//
// The result is for display; do not open files with it.
func MinimalRelativePath(target, currentDir string) string {
	targetRoot, targetParts := components(target)
	currentRoot, currentParts := components(currentDir)
	if targetRoot != currentRoot {
		return filepath.Clean(target)
	}

	common := 0
	for common < len(targetParts) && common < len(currentParts) && targetParts[common] == currentParts[common] {
		common++
	}

	parts := make([]string, 0, len(currentParts)-common+len(targetParts)-common)
	for range currentParts[common:] {
		parts = append(parts, "..")
	}
	parts = append(parts, targetParts[common:]...)
	return strings.Join(parts, string(filepath.Separator))
}

// components splits a cleaned path into its root (volume plus leading
// separator, "" for relative paths) and its non-empty elements.
func components(p string) (string, []string) {
	p = filepath.Clean(p)
	vol := filepath.VolumeName(p)
	rest := p[len(vol):]

	root := vol
	if strings.HasPrefix(rest, string(filepath.Separator)) {
		root += string(filepath.Separator)
	}

	var parts []string
	for _, part := range strings.Split(rest, string(filepath.Separator)) {
		if part == "" || part == "." {
			continue
		}
		parts = append(parts, part)
	}
	return root, parts
}
