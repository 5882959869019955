package indexstore

import (
	"path/filepath"
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"srcmap/internal/source"
)

func TestPutGet(t *testing.T) {
	s, err := Open(afero.NewMemMapFs(), "/cache/index")
	require.NoError(t, err)

	_, ok, err := s.Get(42)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Put(42, []uint32{0, 5, 9}))

	got, ok, err := s.Get(42)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []uint32{0, 5, 9}, got)

	// overwrite
	require.NoError(t, s.Put(42, []uint32{0, 1}))
	got, _, err = s.Get(42)
	require.NoError(t, err)
	require.Equal(t, []uint32{0, 1}, got)
}

func TestGetIgnoresOtherSchema(t *testing.T) {
	fs := afero.NewMemMapFs()
	s, err := Open(fs, "/idx")
	require.NoError(t, err)

	p := s.pathFor(7)
	require.NoError(t, fs.MkdirAll(filepath.Dir(p), 0o755))
	data, err := msgpack.Marshal(&payload{Schema: schemaVersion + 1, Digest: 7, Offsets: []uint32{0}})
	require.NoError(t, err)
	require.NoError(t, afero.WriteFile(fs, p, data, 0o644))

	_, ok, err := s.Get(7)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestGetCorruptPayload(t *testing.T) {
	fs := afero.NewMemMapFs()
	s, err := Open(fs, "/idx")
	require.NoError(t, err)

	p := s.pathFor(9)
	require.NoError(t, fs.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, afero.WriteFile(fs, p, []byte{0xc1}, 0o644))

	_, ok, err := s.Get(9)
	require.Error(t, err)
	require.False(t, ok)
}

func TestDropAll(t *testing.T) {
	s, err := Open(afero.NewMemMapFs(), "/idx")
	require.NoError(t, err)
	require.NoError(t, s.Put(1, []uint32{0}))
	require.NoError(t, s.DropAll())

	_, ok, err := s.Get(1)
	require.NoError(t, err)
	require.False(t, ok)
	require.NoError(t, s.Put(1, []uint32{0}))
}

func TestNilStoreIsEmpty(t *testing.T) {
	var s *Store
	require.NoError(t, s.Put(1, []uint32{0}))
	_, ok, err := s.Get(1)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestStoreBacksSourceMap(t *testing.T) {
	fs := afero.NewMemMapFs()
	store, err := Open(fs, "/idx")
	require.NoError(t, err)

	content := "a\nbb\nccc"
	first, err := source.New(source.Config{Fs: fs, Index: store})
	require.NoError(t, err)
	_, err = first.AddManualNoID("m", "a.sw", content)
	require.NoError(t, err)

	offsets, ok, err := store.Get(xxhash.Sum64String(content))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []uint32{0, 2, 5, 8}, offsets)

	// a later session reads the stored table
	second, err := source.New(source.Config{Fs: fs, Index: store})
	require.NoError(t, err)
	id, err := second.AddManualNoID("m", "copy.sw", content)
	require.NoError(t, err)
	line, err := second.SourceLine(id, 3)
	require.NoError(t, err)
	require.Equal(t, "ccc", line)
}
