// Package indexstore keeps line-offset tables on disk between sessions.
//
// Tables are keyed by the xxhash64 digest of the file content, so a file that
// did not change is never re-indexed, whatever path it was loaded from.
// Payloads are msgpack-encoded and written atomically (temp file + rename).
package indexstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"
	"github.com/vmihailenco/msgpack/v5"
)

// Current schema version - increment when payload format changes
const schemaVersion uint16 = 1

// Store is a directory of msgpack payloads. Safe for concurrent use.
type Store struct {
	mu  sync.RWMutex
	fs  afero.Fs
	dir string
}

// payload is what one file on disk holds.
type payload struct {
	Schema  uint16   `msgpack:"schema"`
	Digest  uint64   `msgpack:"digest"`
	Offsets []uint32 `msgpack:"offsets"`
}

// Open creates dir if needed and returns a Store rooted there.
func Open(fs afero.Fs, dir string) (*Store, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("index store %s: %w", dir, err)
	}
	return &Store{fs: fs, dir: dir}, nil
}

// DefaultDir returns $XDG_CACHE_HOME/<app>/index, falling back to ~/.cache.
func DefaultDir(app string) (string, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".cache")
	}
	return filepath.Join(base, app, "index"), nil
}

// Dir returns the directory the store writes to.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) pathFor(digest uint64) string {
	name := fmt.Sprintf("%016x", digest)
	// две первые hex-цифры как подкаталог, чтобы не раздувать один каталог
	return filepath.Join(s.dir, name[:2], name+".mp")
}

// Put writes the table for digest.
func (s *Store) Put(digest uint64, offsets []uint32) error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.pathFor(digest)
	if err := s.fs.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := afero.TempFile(s.fs, filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()

	enc := msgpack.NewEncoder(f)
	if err := enc.Encode(&payload{Schema: schemaVersion, Digest: digest, Offsets: offsets}); err != nil {
		_ = f.Close()
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("encode %016x: %w", digest, err)
	}
	if err := f.Close(); err != nil {
		_ = s.fs.Remove(tmp)
		return err
	}
	// Атомарная замена
	if err := s.fs.Rename(tmp, p); err != nil {
		_ = s.fs.Remove(tmp)
		return err
	}
	return nil
}

// Get reads the table for digest. A missing entry, an older schema or an
// entry written for a different digest is reported as a miss.
func (s *Store) Get(digest uint64) ([]uint32, bool, error) {
	if s == nil {
		return nil, false, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, err := s.fs.Open(s.pathFor(digest))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer f.Close()

	var p payload
	if err := msgpack.NewDecoder(f).Decode(&p); err != nil {
		return nil, false, fmt.Errorf("decode %016x: %w", digest, err)
	}
	if p.Schema != schemaVersion || p.Digest != digest {
		return nil, false, nil
	}
	return p.Offsets, true, nil
}

// DropAll removes every stored table.
func (s *Store) DropAll() error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fs.RemoveAll(s.dir); err != nil {
		return err
	}
	return s.fs.MkdirAll(s.dir, 0o755)
}
