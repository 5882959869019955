package source

import (
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"
	"github.com/spf13/afero"

	"srcmap/internal/trace"
)

// IndexStore persists line-offset tables by content digest so unchanged
// files are not re-indexed across sessions.
type IndexStore interface {
	Get(digest uint64) ([]uint32, bool, error)
	Put(digest uint64, offsets []uint32) error
}

// Config configures a SourceMap. The zero value reads from the OS
// filesystem with DefaultLimits and no tracing.
type Config struct {
	Fs     afero.Fs
	Limits Limits
	Index  IndexStore
	Tracer trace.Tracer
}

type cacheKey struct {
	mount string
	path  string
}

// SourceMap owns every file loaded during a compilation session.
//
// It is not safe for concurrent mutation. Once populated, concurrent reads
// are fine because FileInfo values are never modified.
type SourceMap struct {
	fs       afero.Fs
	limits   Limits
	index    IndexStore
	tracer   trace.Tracer
	mounts   *MountRegistry
	files    map[FileID]*FileInfo
	order    []FileID // insertion order
	byKey    map[cacheKey]FileID
	byDigest map[uint64][]FileID
	nextID   FileID
}

// New creates a SourceMap and registers mounts in order.
func New(cfg Config, mounts ...Mount) (*SourceMap, error) {
	fs := cfg.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	tracer := cfg.Tracer
	if tracer == nil {
		tracer = trace.Nop
	}

	sm := &SourceMap{
		fs:       fs,
		limits:   cfg.Limits.withDefaults(),
		index:    cfg.Index,
		tracer:   tracer,
		mounts:   NewMountRegistry(fs),
		files:    make(map[FileID]*FileInfo),
		byKey:    make(map[cacheKey]FileID),
		byDigest: make(map[uint64][]FileID),
		nextID:   1,
	}
	for _, m := range mounts {
		if err := sm.AddMount(m.Name, m.Path); err != nil {
			return nil, err
		}
	}
	return sm, nil
}

// AddMount registers a mount; see MountRegistry.Add.
func (sm *SourceMap) AddMount(name, path string) error {
	if err := sm.mounts.Add(name, path); err != nil {
		trace.Errorf(sm.tracer, "mount", "%v", err)
		return err
	}
	trace.Point(sm.tracer, trace.ScopeFile, "mount", name, map[string]string{"path": sm.mounts.MustBasePath(name)})
	return nil
}

// BasePath returns the canonical directory of a mount.
func (sm *SourceMap) BasePath(name string) (string, error) {
	return sm.mounts.BasePath(name)
}

// MustBasePath panics if the mount was never added.
func (sm *SourceMap) MustBasePath(name string) string {
	return sm.mounts.MustBasePath(name)
}

// Mounts returns the registered mounts in insertion order.
func (sm *SourceMap) Mounts() []Mount {
	return sm.mounts.Mounts()
}

// ReadFile loads path, which must live under the named mount, and stores it
// under a fresh FileID. It does not consult the dedup table: reading the same
// path twice yields two ids. Use ReadFileRelative for memoized loads.
func (sm *SourceMap) ReadFile(path, mount string) (FileID, string, error) {
	rel, err := sm.mounts.relative(mount, path)
	if err != nil {
		trace.Errorf(sm.tracer, "read", "%v", err)
		return NoFile, "", err
	}

	data, err := afero.ReadFile(sm.fs, path)
	if err != nil {
		trace.Errorf(sm.tracer, "read", "%v", err)
		return NoFile, "", fmt.Errorf("read %s: %w", path, err)
	}
	if !utf8.Valid(data) {
		return NoFile, "", fmt.Errorf("read %s: %w", path, ErrInvalidUTF8)
	}
	content := string(data)

	id, err := sm.AddManualNoID(mount, rel, content)
	if err != nil {
		return NoFile, "", err
	}
	trace.Point(sm.tracer, trace.ScopeFile, "load", mount+":"+rel, map[string]string{
		"id":    strconv.FormatUint(uint64(id), 10),
		"bytes": strconv.Itoa(len(content)),
	})
	return id, content, nil
}

// ReadFileRelative returns the cached file for (mount, rel) if there is one,
// otherwise resolves rel against the mount, loads it and remembers the key.
func (sm *SourceMap) ReadFileRelative(mount, rel string) (FileID, string, error) {
	key := cacheKey{mount: mount, path: normalizePath(rel)}
	if id, ok := sm.byKey[key]; ok {
		trace.Point(sm.tracer, trace.ScopeQuery, "cache-hit", mount+":"+key.path, nil)
		return id, sm.files[id].Content, nil
	}

	full, err := sm.mounts.resolve(mount, rel)
	if err != nil {
		trace.Errorf(sm.tracer, "read", "%v", err)
		return NoFile, "", err
	}
	id, content, err := sm.ReadFile(full, mount)
	if err != nil {
		return NoFile, "", err
	}
	sm.byKey[key] = id
	return id, content, nil
}

// AddManual registers content under a caller-chosen id, e.g. for generated
// or virtual sources. The allocator moves past id so later ids never clash.
func (sm *SourceMap) AddManual(id FileID, mount, rel, content string) error {
	if id == NoFile || id == MaxFileID {
		return fmt.Errorf("%w: reserved id %d", ErrUnknownFile, id)
	}
	if _, ok := sm.files[id]; ok {
		return fmt.Errorf("%w: %d", ErrDuplicateFile, id)
	}
	if uint32(len(sm.files)) >= sm.limits.MaxFiles { //nolint:gosec // len is bounded by MaxFiles
		return fmt.Errorf("%w: more than %d files", ErrCapacityExceeded, sm.limits.MaxFiles)
	}
	if !utf8.ValidString(content) {
		return fmt.Errorf("%s:%s: %w", mount, rel, ErrInvalidUTF8)
	}

	digest := xxhash.Sum64String(content)
	offsets, err := sm.lineOffsets(digest, content)
	if err != nil {
		return fmt.Errorf("%s:%s: %w", mount, rel, err)
	}

	sm.files[id] = &FileInfo{
		ID:           id,
		Mount:        mount,
		RelativePath: normalizePath(rel),
		Content:      content,
		LineOffsets:  offsets,
		Digest:       digest,
	}
	sm.order = append(sm.order, id)
	sm.byDigest[digest] = append(sm.byDigest[digest], id)
	if id >= sm.nextID {
		sm.nextID = id + 1
	}
	return nil
}

// AddManualNoID is AddManual with the next free id.
func (sm *SourceMap) AddManualNoID(mount, rel, content string) (FileID, error) {
	id, err := sm.allocate()
	if err != nil {
		return NoFile, err
	}
	if err := sm.AddManual(id, mount, rel, content); err != nil {
		return NoFile, err
	}
	return id, nil
}

// AddToCache is AddManual that also records (mount, rel) so ReadFileRelative
// serves it without touching the filesystem.
// A key that is already cached is never re-bound.
func (sm *SourceMap) AddToCache(mount, rel, content string, id FileID) error {
	key := cacheKey{mount: mount, path: normalizePath(rel)}
	if _, ok := sm.byKey[key]; ok {
		return fmt.Errorf("%w: %s:%s", ErrDuplicateFile, mount, rel)
	}
	if err := sm.AddManual(id, mount, rel, content); err != nil {
		return err
	}
	sm.byKey[key] = id
	return nil
}

func (sm *SourceMap) allocate() (FileID, error) {
	for sm.files[sm.nextID] != nil {
		sm.nextID++
	}
	if sm.nextID == MaxFileID || uint32(len(sm.files)) >= sm.limits.MaxFiles { //nolint:gosec // bounded
		return NoFile, fmt.Errorf("%w: more than %d files", ErrCapacityExceeded, sm.limits.MaxFiles)
	}
	id := sm.nextID
	sm.nextID++
	return id, nil
}

// lineOffsets consults the index store before computing the table.
// Store failures only cost a recomputation.
func (sm *SourceMap) lineOffsets(digest uint64, content string) ([]uint32, error) {
	if sm.index != nil && uint64(len(content)) <= uint64(sm.limits.MaxFileSize) {
		offsets, ok, err := sm.index.Get(digest)
		if err != nil {
			trace.Errorf(sm.tracer, "index", "get %016x: %v", digest, err)
		} else if ok && validOffsets(offsets, len(content)) {
			trace.Point(sm.tracer, trace.ScopeQuery, "index-hit", fmt.Sprintf("%016x", digest), nil)
			return offsets, nil
		}
	}

	offsets, err := ComputeLineOffsets(content, sm.limits.MaxFileSize)
	if err != nil {
		return nil, err
	}
	if sm.index != nil {
		if err := sm.index.Put(digest, offsets); err != nil {
			trace.Errorf(sm.tracer, "index", "put %016x: %v", digest, err)
		}
	}
	return offsets, nil
}

// validOffsets guards against stale or corrupt stored tables.
func validOffsets(offsets []uint32, size int) bool {
	if len(offsets) < 1 || offsets[0] != 0 || int(offsets[len(offsets)-1]) != size {
		return false
	}
	for i := 1; i < len(offsets); i++ {
		if offsets[i] < offsets[i-1] {
			return false
		}
	}
	return true
}

// File returns the cached file for id.
func (sm *SourceMap) File(id FileID) (*FileInfo, error) {
	f, ok := sm.files[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownFile, id)
	}
	return f, nil
}

// Files returns all cached files in insertion order.
func (sm *SourceMap) Files() []*FileInfo {
	out := make([]*FileInfo, 0, len(sm.order))
	for _, id := range sm.order {
		out = append(out, sm.files[id])
	}
	return out
}

// Len returns the number of cached files.
func (sm *SourceMap) Len() int {
	return len(sm.files)
}

// FindByDigest returns the ids of all files whose content hashes to digest.
func (sm *SourceMap) FindByDigest(digest uint64) []FileID {
	return append([]FileID(nil), sm.byDigest[digest]...)
}

// Cached returns the id cached for (mount, rel), if any.
func (sm *SourceMap) Cached(mount, rel string) (FileID, bool) {
	id, ok := sm.byKey[cacheKey{mount: mount, path: normalizePath(rel)}]
	return id, ok
}
