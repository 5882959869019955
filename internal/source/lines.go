package source

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"fortio.org/safecast"
)

// ComputeLineOffsets builds the line-start table for content.
// The first entry is 0 and the last is len(content), so a final line without
// a trailing newline still has an end. Content larger than maxSize bytes fails
// with ErrCapacityExceeded.
func ComputeLineOffsets(content string, maxSize uint32) ([]uint32, error) {
	size, err := safecast.Conv[uint32](len(content))
	if err != nil || size > maxSize {
		return nil, fmt.Errorf("%w: file of %d bytes exceeds limit of %d", ErrCapacityExceeded, len(content), maxSize)
	}

	offsets := make([]uint32, 1, strings.Count(content, "\n")+2)
	// \n всегда один байт в UTF-8, поэтому сканируем байты, а не руны.
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			offsets = append(offsets, uint32(i)+1) //nolint:gosec // bounded by size above
		}
	}

	if offsets[len(offsets)-1] != size {
		offsets = append(offsets, size)
	}
	return offsets, nil
}

// sourceLine returns line n (1-based) without its trailing newline.
func sourceLine(content string, offsets []uint32, n int) (string, error) {
	if n <= 0 || n >= len(offsets) {
		return "", fmt.Errorf("%w: %d (file has %d lines)", ErrInvalidLine, n, len(offsets)-1)
	}
	line := content[offsets[n-1]:offsets[n]]
	return strings.TrimSuffix(line, "\n"), nil
}

// locate converts a byte offset into a 1-based line and codepoint column.
func locate(content string, offsets []uint32, offset uint32) (LineCol, error) {
	if int(offset) > len(content) {
		return LineCol{}, fmt.Errorf("%w: %d > %d", ErrOffsetOutOfRange, offset, len(content))
	}
	if int(offset) < len(content) && !utf8.RuneStart(content[offset]) {
		return LineCol{}, fmt.Errorf("%w: %d is inside a multi-byte character", ErrOffsetOutOfRange, offset)
	}

	// бинпоиск: точное попадание — начало строки, иначе точка вставки минус один
	idx := sort.Search(len(offsets), func(i int) bool { return offsets[i] >= offset })
	if idx == len(offsets) || offsets[idx] != offset {
		idx--
	}
	lineStart := offsets[idx]

	// Editors show codepoints, not bytes.
	cols := utf8.RuneCountInString(content[lineStart:offset])

	line, err := safecast.Conv[uint32](idx + 1)
	if err != nil {
		return LineCol{}, fmt.Errorf("line number overflow: %w", err)
	}
	col, err := safecast.Conv[uint32](cols + 1)
	if err != nil {
		return LineCol{}, fmt.Errorf("column overflow: %w", err)
	}
	return LineCol{Line: line, Col: col}, nil
}

// spanText slices content[offset:offset+length].
func spanText(content string, offset, length uint32) (string, error) {
	end := uint64(offset) + uint64(length)
	if end > uint64(len(content)) {
		return "", fmt.Errorf("%w: span %d+%d exceeds %d bytes", ErrOffsetOutOfRange, offset, length, len(content))
	}
	return content[offset:end], nil
}
