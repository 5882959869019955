package source

import (
	"fmt"
	"math"
)

// Span is a contiguous byte range within one file.
type Span struct {
	File   FileID
	Offset uint32 // в байтах, включительно
	Length uint32
}

// Spanned is anything that carries a Span, e.g. an AST node.
type Spanned interface {
	SourceSpan() Span
}

// End returns Offset+Length, clamped to MaxUint32 instead of wrapping.
func (s Span) End() uint32 {
	end := uint64(s.Offset) + uint64(s.Length)
	if end > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(end)
}

func (s Span) Empty() bool {
	return s.Length == 0
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d+%d", s.File, s.Offset, s.Length)
}

// Cover returns the smallest span containing both s and other.
// Spans in different files are not merged.
func (s Span) Cover(other Span) Span {
	if s.File != other.File {
		return s
	}
	start := min(s.Offset, other.Offset)
	end := max(s.End(), other.End())
	return Span{File: s.File, Offset: start, Length: end - start}
}

func (s Span) SourceSpan() Span {
	return s
}
