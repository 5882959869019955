package source

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
)

// MountRegistry maps mount names to canonical directories.
// Names keep their first insertion order.
type MountRegistry struct {
	fs    afero.Fs
	order []string
	paths map[string]string
}

// NewMountRegistry creates an empty registry that checks paths against fs.
func NewMountRegistry(fs afero.Fs) *MountRegistry {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &MountRegistry{
		fs:    fs,
		paths: make(map[string]string),
	}
}

// Add registers path under name. The path must be an existing directory.
// A name that is already registered is overwritten in place.
func (r *MountRegistry) Add(name, path string) error {
	canon, err := canonicalize(r.fs, path)
	if err != nil {
		return fmt.Errorf("mount %q: %w", name, err)
	}
	isDir, err := afero.DirExists(r.fs, canon)
	if err != nil || !isDir {
		return fmt.Errorf("mount %q: %w: %s", name, ErrNotDirectory, canon)
	}

	if _, ok := r.paths[name]; !ok {
		r.order = append(r.order, name)
	}
	r.paths[name] = canon
	return nil
}

// BasePath returns the canonical directory registered under name.
func (r *MountRegistry) BasePath(name string) (string, error) {
	p, ok := r.paths[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownMount, name)
	}
	return p, nil
}

// MustBasePath is BasePath for callers that registered the mount themselves.
// It panics on an unknown name.
func (r *MountRegistry) MustBasePath(name string) string {
	p, err := r.BasePath(name)
	if err != nil {
		panic(err)
	}
	return p
}

// Mounts returns all mounts in insertion order.
func (r *MountRegistry) Mounts() []Mount {
	out := make([]Mount, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, Mount{Name: name, Path: r.paths[name]})
	}
	return out
}

// Len returns the number of registered mounts.
func (r *MountRegistry) Len() int {
	return len(r.order)
}

// resolve joins rel onto the mount directory and canonicalizes the result.
// The target must exist.
func (r *MountRegistry) resolve(name, rel string) (string, error) {
	base, err := r.BasePath(name)
	if err != nil {
		return "", err
	}
	full, err := canonicalize(r.fs, filepath.Join(base, filepath.FromSlash(rel)))
	if err != nil {
		return "", fmt.Errorf("path is wrong mount:%s relative:%s: %w", name, rel, err)
	}
	return full, nil
}

// relative returns path relative to the mount, slash-separated.
func (r *MountRegistry) relative(name, path string) (string, error) {
	base, err := r.BasePath(name)
	if err != nil {
		return "", err
	}
	abs, err := canonicalize(r.fs, path)
	if err != nil {
		// missing files are reported by the read that follows
		if abs, err = filepath.Abs(path); err != nil {
			return "", fmt.Errorf("%w: %s: %v", ErrCanonicalize, path, err)
		}
	}
	rel, err := filepath.Rel(base, abs)
	if err != nil || !filepath.IsLocal(rel) {
		return "", fmt.Errorf("%w: %s is not under %s (%s)", ErrUnrelatedPath, path, name, base)
	}
	return normalizePath(rel), nil
}
