package source

import "math"

// FileID identifies a file within one SourceMap. IDs start at 1.
type FileID uint32

const (
	// NoFile is never assigned to a file.
	NoFile FileID = 0
	// MaxFileID marks "not yet seen" in trackers; never a valid id.
	MaxFileID FileID = math.MaxUint32
)

// Mount is a named root directory. Path is canonical once registered.
type Mount struct {
	Name string
	Path string
}

// FileInfo captures content and line index for a single cached file.
// It is never mutated after the SourceMap stores it.
type FileInfo struct {
	ID           FileID
	Mount        string
	RelativePath string   // slash-separated, relative to the mount
	Content      string
	LineOffsets  []uint32 // line starts plus an end-of-file sentinel
	Digest       uint64   // xxhash64 of Content
}

// LineCount returns the number of lines in the file.
func (f *FileInfo) LineCount() int {
	return len(f.LineOffsets) - 1
}

// LineCol represents a human-readable position in a source file.
type LineCol struct {
	Line uint32 // 1-based
	Col  uint32 // 1-based, in codepoints
}

// FileLineInfo is everything a diagnostic needs to print one location.
type FileLineInfo struct {
	Row              uint32
	Col              uint32
	Line             string
	RelativeFileName string
}

// Limits caps the size of a SourceMap.
type Limits struct {
	MaxFiles    uint32 // number of distinct FileIDs
	MaxFileSize uint32 // bytes per file
}

// DefaultLimits allows 65,535 files of up to 4 GiB each.
func DefaultLimits() Limits {
	return Limits{
		MaxFiles:    math.MaxUint16,
		MaxFileSize: math.MaxUint32,
	}
}

func (l Limits) withDefaults() Limits {
	def := DefaultLimits()
	if l.MaxFiles == 0 {
		l.MaxFiles = def.MaxFiles
	}
	if l.MaxFileSize == 0 {
		l.MaxFileSize = def.MaxFileSize
	}
	return l
}
