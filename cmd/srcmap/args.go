package main

import (
	"fmt"
	"strconv"
	"strings"

	"srcmap/internal/source"
)

// parseMountFlag parses a --mount value of the form name=dir.
func parseMountFlag(raw string) (source.Mount, error) {
	name, dir, ok := strings.Cut(raw, "=")
	name, dir = strings.TrimSpace(name), strings.TrimSpace(dir)
	if !ok || name == "" || dir == "" {
		return source.Mount{}, fmt.Errorf("invalid --mount %q (expected name=dir)", raw)
	}
	return source.Mount{Name: name, Path: dir}, nil
}

// parseFileArg splits "mount:relative/path" at the first colon.
func parseFileArg(arg string) (mount, rel string, err error) {
	mount, rel, ok := strings.Cut(arg, ":")
	if !ok || mount == "" || rel == "" {
		return "", "", fmt.Errorf("invalid file %q (expected mount:relative/path)", arg)
	}
	return mount, rel, nil
}

func parseUint32(name, s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, s, err)
	}
	return uint32(v), nil
}
