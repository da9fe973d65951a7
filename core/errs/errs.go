// Package errs defines the error taxonomy shared by the core packages:
// buffer, memory, core/http, core/acceptor and core itself return
// *errs.Error for their own failures so callers can switch on Kind
// without string matching. The Linux and BSD pollers, and
// acceptor.Accept's own accept call, pass OS errors through unwrapped.
package errs

import "fmt"

// Kind classifies a core error: per-connection close, fatal-to-worker,
// or propagate depends on which kind it is.
type Kind uint8

const (
	// Io is an OS-level socket or file-descriptor failure.
	Io Kind = iota
	// HttpParse is a malformed request head.
	HttpParse
	// Buffer is an invalid cursor advance or read/write past capacity.
	Buffer
	// Memory is a pool allocate/free failure.
	Memory
	// Connection is an invariant violation in the connection layer.
	Connection
	// EventLoop is a poller registration/creation failure.
	EventLoop
	// Protocol is reserved for future protocol layers.
	Protocol
)

func (k Kind) String() string {
	switch k {
	case Io:
		return "io"
	case HttpParse:
		return "http_parse"
	case Buffer:
		return "buffer"
	case Memory:
		return "memory"
	case Connection:
		return "connection"
	case EventLoop:
		return "event_loop"
	case Protocol:
		return "protocol"
	default:
		return "unknown"
	}
}

// Error is the concrete error type returned across the core. It carries a
// Kind so callers can switch on the failure's category without parsing
// message text.
type Error struct {
	Kind Kind
	Msg  string
	Err  error // wrapped cause, if any
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error with the same Kind, so callers can
// write `errors.Is(err, errs.Memory)`-style checks via a sentinel-wrapping
// helper, or simply inspect err.(*errs.Error).Kind directly.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == other.Kind
}

// New builds a new *Error of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap builds a new *Error of the given kind, wrapping cause.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: cause}
}

// Sentinel returns a zero-message *Error of the given kind, useful for
// errors.Is comparisons against a kind alone (e.g. `errs.Sentinel(errs.Memory)`).
func Sentinel(kind Kind) *Error { return &Error{Kind: kind} }
