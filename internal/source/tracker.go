package source

import "math"

// LineTracker remembers the last (file, row) it was shown, so callers that
// walk positions in order can print each source line once.
type LineTracker struct {
	file FileID
	row  uint32
}

// NewLineTracker returns a tracker in the "nothing seen yet" state.
func NewLineTracker() *LineTracker {
	return &LineTracker{file: MaxFileID, row: math.MaxUint32}
}

// Check records (file, row) and reports the row range to print when it differs
// from the previous call. ok is false when nothing new needs printing.
func (t *LineTracker) Check(file FileID, row uint32) (first, last uint32, ok bool) {
	if t.file == file && t.row == row {
		return 0, 0, false
	}
	t.file = file
	t.row = row
	return row, row, true
}

// Reset forgets the last position.
func (t *LineTracker) Reset() {
	t.file = MaxFileID
	t.row = math.MaxUint32
}
