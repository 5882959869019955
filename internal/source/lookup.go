package source

import (
	"path/filepath"
)

// SourceLookup is what diagnostic renderers need from the source cache.
type SourceLookup interface {
	Text(span Span) (string, error)
	Line(span Span) (FileLineInfo, error)
	RelativePath(id FileID) (string, error)
	SourceLine(id FileID, row int) (string, bool)
}

// Lookup binds a SourceMap to a working directory. It holds no state of its
// own and must not outlive the SourceMap.
type Lookup struct {
	sm         *SourceMap
	currentDir string
}

var _ SourceLookup = (*Lookup)(nil)

// NewLookup creates a facade that reports paths relative to currentDir.
func NewLookup(sm *SourceMap, currentDir string) *Lookup {
	if abs, err := filepath.Abs(currentDir); err == nil {
		currentDir = abs
	}
	return &Lookup{sm: sm, currentDir: currentDir}
}

// SourceMap returns the underlying cache.
func (l *Lookup) SourceMap() *SourceMap { return l.sm }

// CurrentDir returns the directory paths are made relative to.
func (l *Lookup) CurrentDir() string { return l.currentDir }

func (l *Lookup) Text(span Span) (string, error) {
	return l.sm.Text(span)
}

// TextOf returns the text of anything carrying a span.
func (l *Lookup) TextOf(n Spanned) (string, error) {
	return l.sm.Text(n.SourceSpan())
}

func (l *Lookup) Line(span Span) (FileLineInfo, error) {
	return l.sm.FileLine(span, l.currentDir)
}

// RelativePath returns the slash-separated path of id from the working directory.
func (l *Lookup) RelativePath(id FileID) (string, error) {
	rel, err := l.sm.RelativePathTo(id, l.currentDir)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

// SourceLine returns a line, or false if the file or line does not exist.
func (l *Lookup) SourceLine(id FileID, row int) (string, bool) {
	line, err := l.sm.SourceLine(id, row)
	if err != nil {
		return "", false
	}
	return line, true
}
