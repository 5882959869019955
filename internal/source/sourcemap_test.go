package source

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/spf13/afero"
)

// memFS раскладывает файлы по путям в памяти.
func memFS(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for path, content := range files {
		if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", path, err)
		}
		if err := afero.WriteFile(fs, path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	return fs
}

func newMountedMap(t *testing.T, files map[string]string, mounts ...Mount) *SourceMap {
	t.Helper()
	sm, err := New(Config{Fs: memFS(t, files)}, mounts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return sm
}

func TestNewRejectsMissingMount(t *testing.T) {
	fs := memFS(t, map[string]string{"/work/file.txt": "x"})

	_, err := New(Config{Fs: fs}, Mount{Name: "crate", Path: "/nope"})
	if !errors.Is(err, ErrCanonicalize) {
		t.Fatalf("missing dir: expected ErrCanonicalize, got %v", err)
	}

	_, err = New(Config{Fs: fs}, Mount{Name: "crate", Path: "/work/file.txt"})
	if !errors.Is(err, ErrNotDirectory) {
		t.Fatalf("file as mount: expected ErrNotDirectory, got %v", err)
	}
}

func TestMountRegistryOrderAndOverwrite(t *testing.T) {
	fs := memFS(t, map[string]string{
		"/a/x.txt": "",
		"/b/x.txt": "",
		"/c/x.txt": "",
	})
	reg := NewMountRegistry(fs)

	for _, m := range []Mount{{"first", "/a"}, {"second", "/b"}, {"first", "/c/"}} {
		if err := reg.Add(m.Name, m.Path); err != nil {
			t.Fatalf("Add(%s): %v", m.Name, err)
		}
	}

	want := []Mount{{Name: "first", Path: "/c"}, {Name: "second", Path: "/b"}}
	if got := reg.Mounts(); !slices.Equal(got, want) {
		t.Errorf("Mounts() = %v, want %v", got, want)
	}
	if reg.Len() != 2 {
		t.Errorf("Len() = %d, want 2", reg.Len())
	}

	if _, err := reg.BasePath("third"); !errors.Is(err, ErrUnknownMount) {
		t.Errorf("expected ErrUnknownMount, got %v", err)
	}
}

func TestMustBasePathPanicsOnUnknownMount(t *testing.T) {
	sm := newTestMap(t)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	sm.MustBasePath("missing")
}

func TestReadFileRelativeDeduplicates(t *testing.T) {
	sm := newMountedMap(t, map[string]string{
		"/work/src/main.sw":     "fn main() {}\n",
		"/work/src/lib/util.sw": "fn util() {}\n",
	}, Mount{Name: "crate", Path: "/work/src"})

	id1, content, err := sm.ReadFileRelative("crate", "main.sw")
	if err != nil {
		t.Fatalf("ReadFileRelative: %v", err)
	}
	if id1 != 1 {
		t.Errorf("first id = %d, want 1", id1)
	}
	if content != "fn main() {}\n" {
		t.Errorf("content = %q", content)
	}

	id2, _, err := sm.ReadFileRelative("crate", "./main.sw")
	if err != nil {
		t.Fatalf("second ReadFileRelative: %v", err)
	}
	if id2 != id1 {
		t.Errorf("cached id = %d, want %d", id2, id1)
	}

	id3, _, err := sm.ReadFileRelative("crate", "lib/util.sw")
	if err != nil {
		t.Fatalf("ReadFileRelative(lib/util.sw): %v", err)
	}
	if id3 != 2 {
		t.Errorf("next id = %d, want 2", id3)
	}
	if name, _ := sm.RelativeFileName(id3); name != "lib/util.sw" {
		t.Errorf("RelativeFileName = %q", name)
	}
	if sm.Len() != 2 {
		t.Errorf("Len() = %d, want 2", sm.Len())
	}
}

func TestReadFileRelativeServedFromCacheWithoutDisk(t *testing.T) {
	sm := newMountedMap(t, map[string]string{"/work/src/.keep": ""}, Mount{Name: "crate", Path: "/work/src"})

	if err := sm.AddToCache("crate", "gen/virtual.sw", "generated\n", 7); err != nil {
		t.Fatalf("AddToCache: %v", err)
	}
	id, content, err := sm.ReadFileRelative("crate", "gen/virtual.sw")
	if err != nil {
		t.Fatalf("ReadFileRelative: %v", err)
	}
	if id != 7 || content != "generated\n" {
		t.Errorf("got (%d, %q), want (7, %q)", id, content, "generated\n")
	}
	if got, ok := sm.Cached("crate", "gen/virtual.sw"); !ok || got != 7 {
		t.Errorf("Cached = %d, %v", got, ok)
	}

	// allocator skips past manually chosen ids
	next, err := sm.AddManualNoID("crate", "other.sw", "")
	if err != nil {
		t.Fatalf("AddManualNoID: %v", err)
	}
	if next != 8 {
		t.Errorf("next id = %d, want 8", next)
	}
}

func TestAddToCacheKeepsExistingKey(t *testing.T) {
	sm := newMountedMap(t, map[string]string{"/work/src/a.txt": "original\n"}, Mount{Name: "crate", Path: "/work/src"})

	id, _, err := sm.ReadFileRelative("crate", "a.txt")
	if err != nil {
		t.Fatalf("ReadFileRelative: %v", err)
	}

	err = sm.AddToCache("crate", "./a.txt", "other", 50)
	if !errors.Is(err, ErrDuplicateFile) {
		t.Fatalf("AddToCache on cached key: expected ErrDuplicateFile, got %v", err)
	}
	if _, err := sm.File(50); !errors.Is(err, ErrUnknownFile) {
		t.Errorf("rejected AddToCache left file 50 behind: %v", err)
	}

	again, content, err := sm.ReadFileRelative("crate", "a.txt")
	if err != nil {
		t.Fatalf("ReadFileRelative: %v", err)
	}
	if again != id || content != "original\n" {
		t.Errorf("got (%d, %q), want (%d, %q)", again, content, id, "original\n")
	}
	if sm.Len() != 1 {
		t.Errorf("Len() = %d, want 1", sm.Len())
	}
}

func TestReadFileDoesNotDeduplicate(t *testing.T) {
	sm := newMountedMap(t, map[string]string{"/work/src/main.sw": "x\n"}, Mount{Name: "crate", Path: "/work/src"})

	id1, _, err := sm.ReadFile("/work/src/main.sw", "crate")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	id2, _, err := sm.ReadFile("/work/src/main.sw", "crate")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if id1 == id2 {
		t.Fatalf("expected distinct ids, got %d twice", id1)
	}

	f1, _ := sm.File(id1)
	f2, _ := sm.File(id2)
	if f1.Content != f2.Content || f1.Digest != f2.Digest {
		t.Error("expected duplicated content")
	}
	if got := sm.FindByDigest(xxhash.Sum64String("x\n")); !slices.Equal(got, []FileID{id1, id2}) {
		t.Errorf("FindByDigest = %v, want [%d %d]", got, id1, id2)
	}
}

func TestReadFileErrors(t *testing.T) {
	sm := newMountedMap(t, map[string]string{
		"/work/src/main.sw": "x",
		"/work/other/a.sw":  "y",
		"/work/src/bad.sw":  "\xff\xfe",
	}, Mount{Name: "crate", Path: "/work/src"})

	tests := []struct {
		name string
		call func() error
		want error
	}{
		{
			name: "unrelated path",
			call: func() error { _, _, err := sm.ReadFile("/work/other/a.sw", "crate"); return err },
			want: ErrUnrelatedPath,
		},
		{
			name: "unknown mount",
			call: func() error { _, _, err := sm.ReadFile("/work/src/main.sw", "nope"); return err },
			want: ErrUnknownMount,
		},
		{
			name: "missing relative file",
			call: func() error { _, _, err := sm.ReadFileRelative("crate", "missing.sw"); return err },
			want: ErrCanonicalize,
		},
		{
			name: "escaping relative path",
			call: func() error { _, _, err := sm.ReadFileRelative("crate", "../other/a.sw"); return err },
			want: ErrUnrelatedPath,
		},
		{
			name: "invalid utf8",
			call: func() error { _, _, err := sm.ReadFileRelative("crate", "bad.sw"); return err },
			want: ErrInvalidUTF8,
		},
		{
			name: "missing file",
			call: func() error { _, _, err := sm.ReadFile("/work/src/gone.sw", "crate"); return err },
			want: os.ErrNotExist,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
	if sm.Len() != 0 {
		t.Errorf("failed reads must not allocate ids, Len() = %d", sm.Len())
	}
}

func TestAddManualErrors(t *testing.T) {
	sm := newTestMap(t)
	addFile(t, sm, 3, "a.sw", "a")

	if err := sm.AddManual(3, "test", "b.sw", "b"); !errors.Is(err, ErrDuplicateFile) {
		t.Errorf("expected ErrDuplicateFile, got %v", err)
	}
	if err := sm.AddManual(NoFile, "test", "b.sw", "b"); err == nil {
		t.Error("NoFile must be rejected")
	}
	if err := sm.AddManual(MaxFileID, "test", "b.sw", "b"); err == nil {
		t.Error("MaxFileID must be rejected")
	}
	if err := sm.AddManual(4, "test", "b.sw", "\xc3"); !errors.Is(err, ErrInvalidUTF8) {
		t.Errorf("expected ErrInvalidUTF8, got %v", err)
	}
	if f, _ := sm.File(3); f.Content != "a" {
		t.Errorf("original file changed: %q", f.Content)
	}
}

func TestCapacityLimits(t *testing.T) {
	sm, err := New(Config{Fs: afero.NewMemMapFs(), Limits: Limits{MaxFiles: 2, MaxFileSize: 8}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := sm.AddManualNoID("m", "big.sw", strings.Repeat("x", 9)); !errors.Is(err, ErrCapacityExceeded) {
		t.Errorf("oversized file: expected ErrCapacityExceeded, got %v", err)
	}
	for i := range 2 {
		if _, err := sm.AddManualNoID("m", "f.sw", "ok"); err != nil {
			t.Fatalf("file %d: %v", i, err)
		}
	}
	if _, err := sm.AddManualNoID("m", "f.sw", "ok"); !errors.Is(err, ErrCapacityExceeded) {
		t.Errorf("third file: expected ErrCapacityExceeded, got %v", err)
	}
	if err := sm.AddManual(100, "m", "f.sw", "ok"); !errors.Is(err, ErrCapacityExceeded) {
		t.Errorf("manual third file: expected ErrCapacityExceeded, got %v", err)
	}
}

type fakeIndex struct {
	tables map[uint64][]uint32
	gets   int
	puts   int
}

func (f *fakeIndex) Get(digest uint64) ([]uint32, bool, error) {
	f.gets++
	t, ok := f.tables[digest]
	return t, ok, nil
}

func (f *fakeIndex) Put(digest uint64, offsets []uint32) error {
	f.puts++
	f.tables[digest] = offsets
	return nil
}

func TestIndexStoreReuse(t *testing.T) {
	idx := &fakeIndex{tables: map[uint64][]uint32{}}
	sm, err := New(Config{Fs: afero.NewMemMapFs(), Index: idx})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := sm.AddManualNoID("m", "a.sw", "a\nb\n"); err != nil {
		t.Fatal(err)
	}
	if idx.puts != 1 {
		t.Fatalf("puts = %d, want 1", idx.puts)
	}
	id, err := sm.AddManualNoID("m", "copy.sw", "a\nb\n")
	if err != nil {
		t.Fatal(err)
	}
	if idx.puts != 1 || idx.gets != 2 {
		t.Errorf("second add should hit the store: gets=%d puts=%d", idx.gets, idx.puts)
	}
	if line, _ := sm.SourceLine(id, 2); line != "b" {
		t.Errorf("line 2 = %q", line)
	}

	// stale table for this digest is ignored
	idx.tables[xxhash.Sum64String("zz")] = []uint32{0, 99}
	id, err = sm.AddManualNoID("m", "z.sw", "zz")
	if err != nil {
		t.Fatal(err)
	}
	if f, _ := sm.File(id); !slices.Equal(f.LineOffsets, []uint32{0, 2}) {
		t.Errorf("offsets = %v, want [0 2]", f.LineOffsets)
	}
}

func TestFilesInInsertionOrder(t *testing.T) {
	sm := newTestMap(t)
	addFile(t, sm, 5, "five.sw", "")
	addFile(t, sm, 2, "two.sw", "")

	var ids []FileID
	for _, f := range sm.Files() {
		ids = append(ids, f.ID)
	}
	if !slices.Equal(ids, []FileID{5, 2}) {
		t.Errorf("Files() order = %v, want [5 2]", ids)
	}
}

func TestOsFsMountAndRead(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	if err := os.MkdirAll(filepath.Join(src, "nested"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(src, "nested", "a.sw"), []byte("let x = 1\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	sm, err := New(Config{}, Mount{Name: "crate", Path: src})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	id, _, err := sm.ReadFileRelative("crate", "nested/a.sw")
	if err != nil {
		t.Fatalf("ReadFileRelative: %v", err)
	}

	base := sm.MustBasePath("crate")
	if !filepath.IsAbs(base) {
		t.Errorf("base path %q is not absolute", base)
	}
	rel, err := sm.RelativePathTo(id, base)
	if err != nil {
		t.Fatalf("RelativePathTo: %v", err)
	}
	if filepath.ToSlash(rel) != "nested/a.sw" {
		t.Errorf("RelativePathTo = %q, want nested/a.sw", rel)
	}
}
