// Package config loads srcmap.toml.
//
// The manifest is looked up from a start directory upwards. Relative paths
// inside it (mount directories, the index directory, a trace output file) are
// resolved against the directory holding the manifest.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"fortio.org/safecast"
	"github.com/BurntSushi/toml"

	"srcmap/internal/source"
)

// FileName is the manifest looked up by Find.
const FileName = "srcmap.toml"

// Manifest is a loaded srcmap.toml.
type Manifest struct {
	Path   string // absolute path of the manifest file
	Root   string // directory containing it
	Config Config
}

// Config mirrors the TOML layout.
type Config struct {
	Mounts map[string]string `toml:"mounts"`
	Limits LimitsConfig      `toml:"limits"`
	Index  IndexConfig       `toml:"index"`
	Trace  TraceConfig       `toml:"trace"`

	// mount names in file order; filled by Load
	mountOrder []string
}

type LimitsConfig struct {
	MaxFiles    int64 `toml:"max_files"`
	MaxFileSize int64 `toml:"max_file_size"`
}

type IndexConfig struct {
	Dir     string `toml:"dir"`
	Disable bool   `toml:"disable"`
}

type TraceConfig struct {
	Level  string `toml:"level"`
	Output string `toml:"output"`
	Format string `toml:"format"`
}

// MountEntry is one [mounts] entry.
type MountEntry struct {
	Name string
	Path string
}

// Find walks up from startDir looking for srcmap.toml.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Discover finds and loads the manifest above startDir.
// ok is false when there is none.
func Discover(startDir string) (*Manifest, bool, error) {
	path, ok, err := Find(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	m, err := Load(path)
	if err != nil {
		return nil, true, err
	}
	return m, true, nil
}

// Load parses and validates the manifest at path.
func Load(path string) (*Manifest, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %q: %w", path, err)
	}

	var cfg Config
	meta, err := toml.DecodeFile(abs, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", abs, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return nil, fmt.Errorf("%s: unknown keys: %s", abs, strings.Join(keys, ", "))
	}

	// порядок монтирований как в файле
	for _, key := range meta.Keys() {
		if len(key) == 2 && key[0] == "mounts" {
			cfg.mountOrder = append(cfg.mountOrder, key[1])
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", abs, err)
	}

	m := &Manifest{Path: abs, Root: filepath.Dir(abs), Config: cfg}
	return m, nil
}

func (c *Config) validate() error {
	for name, dir := range c.Mounts {
		if strings.TrimSpace(name) == "" {
			return errors.New("[mounts]: empty mount name")
		}
		if strings.TrimSpace(dir) == "" {
			return fmt.Errorf("[mounts].%s: empty path", name)
		}
	}
	if c.Limits.MaxFiles < 0 || c.Limits.MaxFiles > math.MaxUint32 {
		return fmt.Errorf("[limits].max_files out of range: %d", c.Limits.MaxFiles)
	}
	if c.Limits.MaxFileSize < 0 || c.Limits.MaxFileSize > math.MaxUint32 {
		return fmt.Errorf("[limits].max_file_size out of range: %d", c.Limits.MaxFileSize)
	}
	return nil
}

// MountEntries returns the mounts in file order with paths resolved against
// the manifest directory.
func (m *Manifest) MountEntries() []MountEntry {
	names := m.Config.mountOrder
	if len(names) != len(m.Config.Mounts) {
		names = names[:0:0]
		for name := range m.Config.Mounts {
			names = append(names, name)
		}
		slices.Sort(names)
	}

	out := make([]MountEntry, 0, len(names))
	for _, name := range names {
		out = append(out, MountEntry{Name: name, Path: m.Resolve(m.Config.Mounts[name])})
	}
	return out
}

// Limits converts [limits] into source.Limits; zero fields keep defaults.
func (m *Manifest) Limits() source.Limits {
	var l source.Limits
	// range checked by validate
	l.MaxFiles, _ = safecast.Conv[uint32](m.Config.Limits.MaxFiles)
	l.MaxFileSize, _ = safecast.Conv[uint32](m.Config.Limits.MaxFileSize)
	return l
}

// IndexDir returns the index directory, resolved, or "" when unset or disabled.
func (m *Manifest) IndexDir() string {
	if m.Config.Index.Disable || m.Config.Index.Dir == "" {
		return ""
	}
	return m.Resolve(m.Config.Index.Dir)
}

// TraceOutput returns the trace output resolved; "-" and "" mean stderr.
func (m *Manifest) TraceOutput() string {
	out := m.Config.Trace.Output
	if out == "" || out == "-" {
		return out
	}
	return m.Resolve(out)
}

// Resolve makes p absolute relative to the manifest directory.
func (m *Manifest) Resolve(p string) string {
	p = filepath.FromSlash(p)
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(m.Root, p)
}
