package source

import "errors"

var (
	// ErrNotDirectory is returned when a mount path is missing or not a directory.
	ErrNotDirectory = errors.New("not a directory")
	// ErrCanonicalize is returned when a path cannot be made absolute or resolved.
	ErrCanonicalize = errors.New("could not canonicalize path")
	ErrUnknownMount = errors.New("unknown mount")
	ErrUnknownFile  = errors.New("unknown file id")
	// ErrUnrelatedPath is returned when a file is not under its mount.
	ErrUnrelatedPath    = errors.New("path is not under mount")
	ErrInvalidLine      = errors.New("no such line")
	ErrOffsetOutOfRange = errors.New("offset out of range")
	ErrDuplicateFile    = errors.New("file id already registered")
	// ErrCapacityExceeded is returned instead of truncating ids or offsets.
	ErrCapacityExceeded = errors.New("capacity exceeded")
	ErrInvalidUTF8      = errors.New("content is not valid UTF-8")
)
