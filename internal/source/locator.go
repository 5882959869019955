package source

import (
	"fmt"
	"path/filepath"
)

// SourceLine returns line n (1-based) of a file without its trailing newline.
// Line 0 and lines past the end fail with ErrInvalidLine.
func (sm *SourceMap) SourceLine(id FileID, n int) (string, error) {
	f, err := sm.File(id)
	if err != nil {
		return "", err
	}
	return sourceLine(f.Content, f.LineOffsets, n)
}

// Location converts a byte offset into a 1-based line and column. Columns
// count codepoints, so a three-byte character advances the column by one.
func (sm *SourceMap) Location(id FileID, offset uint32) (LineCol, error) {
	f, err := sm.File(id)
	if err != nil {
		return LineCol{}, err
	}
	return locate(f.Content, f.LineOffsets, offset)
}

// MustLocation panics where Location would fail. Use it only with ids and
// offsets that came from this SourceMap.
func (sm *SourceMap) MustLocation(id FileID, offset uint32) LineCol {
	lc, err := sm.Location(id, offset)
	if err != nil {
		panic(err)
	}
	return lc
}

// SpanSource returns the text covered by [offset, offset+length).
func (sm *SourceMap) SpanSource(id FileID, offset, length uint32) (string, error) {
	f, err := sm.File(id)
	if err != nil {
		return "", err
	}
	return spanText(f.Content, offset, length)
}

// Text returns the text covered by span.
func (sm *SourceMap) Text(span Span) (string, error) {
	return sm.SpanSource(span.File, span.Offset, span.Length)
}

// RelativeFileName returns the path of a file relative to its mount.
func (sm *SourceMap) RelativeFileName(id FileID) (string, error) {
	f, err := sm.File(id)
	if err != nil {
		return "", err
	}
	return f.RelativePath, nil
}

// AbsolutePath returns mount base joined with the file's relative path.
func (sm *SourceMap) AbsolutePath(id FileID) (string, error) {
	f, err := sm.File(id)
	if err != nil {
		return "", err
	}
	base, err := sm.mounts.BasePath(f.Mount)
	if err != nil {
		return "", fmt.Errorf("file %d: %w", id, err)
	}
	return filepath.Join(base, filepath.FromSlash(f.RelativePath)), nil
}

// RelativePathTo returns the file's location as seen from currentDir.
func (sm *SourceMap) RelativePathTo(id FileID, currentDir string) (string, error) {
	abs, err := sm.AbsolutePath(id)
	if err != nil {
		return "", err
	}
	return MinimalRelativePath(abs, currentDir), nil
}

// FileLine resolves span's start into row, column, line text and the file
// name relative to currentDir. A span at the very end of a file that ends in
// a newline sits on a line with no text; Line is empty there.
func (sm *SourceMap) FileLine(span Span, currentDir string) (FileLineInfo, error) {
	rel, err := sm.RelativePathTo(span.File, currentDir)
	if err != nil {
		return FileLineInfo{}, err
	}
	lc, err := sm.Location(span.File, span.Offset)
	if err != nil {
		return FileLineInfo{}, err
	}
	f, err := sm.File(span.File)
	if err != nil {
		return FileLineInfo{}, err
	}
	line, err := sourceLine(f.Content, f.LineOffsets, int(lc.Line))
	if err != nil {
		line = ""
	}
	return FileLineInfo{
		Row:              lc.Line,
		Col:              lc.Col,
		Line:             line,
		RelativeFileName: filepath.ToSlash(rel),
	}, nil
}
