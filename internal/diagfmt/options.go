package diagfmt

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	Color     bool
	ShowNotes bool
	TabWidth  int // columns per tab in caret lines; 0 keeps the tab itself
}

// JSONOpts configures JSON output of diagnostics.
type JSONOpts struct {
	IncludePositions bool // добавить line/col
	IncludeNotes     bool
	Max              int // обрезка вывода, не Bag
}

// unknownSource is printed for spans the cache cannot resolve.
const unknownSource = "<unknown source>"
