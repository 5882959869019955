package trace

import "time"

// Kind represents the type of trace event.
type Kind uint8

const (
	// KindSpanBegin marks the start of a logical operation.
	KindSpanBegin Kind = iota + 1
	// KindSpanEnd marks the end of a logical operation.
	KindSpanEnd
	// KindPoint represents an instant event.
	KindPoint
)

// String returns the string representation of Kind.
func (k Kind) String() string {
	switch k {
	case KindSpanBegin:
		return "begin"
	case KindSpanEnd:
		return "end"
	case KindPoint:
		return "point"
	default:
		return "unknown"
	}
}

// Scope indicates the granularity of the event.
// Lower values are coarser.
type Scope uint8

const (
	// ScopeError marks failures; emitted at every level above off.
	ScopeError Scope = iota + 1
	// ScopeSession covers session setup and CLI commands.
	ScopeSession
	// ScopeFile covers per-file work: mounts and loads.
	ScopeFile
	// ScopeQuery covers cache and index hits (most detailed).
	ScopeQuery
)

// String returns the string representation of Scope.
func (s Scope) String() string {
	switch s {
	case ScopeError:
		return "error"
	case ScopeSession:
		return "session"
	case ScopeFile:
		return "file"
	case ScopeQuery:
		return "query"
	default:
		return "unknown"
	}
}

// Event is a single trace record.
type Event struct {
	Time     time.Time
	Seq      uint64 // monotonic, assigned by the tracer
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64 // 0 for roots
	Name     string // e.g. "load", "cache-hit", "mount"
	Detail   string
	Extra    map[string]string
}
