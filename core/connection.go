package core

import (
	"time"

	"github.com/google/uuid"

	"github.com/octet-server/octet/buffer"
	"github.com/octet-server/octet/core/http"
)

// ConnectionState is a stage in a connection's lifecycle.
type ConnectionState uint8

const (
	StateNew ConnectionState = iota
	StateReading
	StateProcessing
	StateWriting
	StateClosing
	StateClosed
)

func (s ConnectionState) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateReading:
		return "reading"
	case StateProcessing:
		return "processing"
	case StateWriting:
		return "writing"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

const defaultConnectionBufferSize = 16 * 1024

// Connection tracks one accepted socket's state machine, read/write
// buffer, and the HTTP parser working through its current request. The
// id is a correlation id surfaced in logs, not the fd itself, so log
// lines stay stable across fd reuse.
type Connection struct {
	id         string
	fd         int
	state      ConnectionState
	buf        *buffer.Buffer
	parser     *http.Parser
	lastActive time.Time
	timeout    time.Duration
}

// newConnection allocates a Connection with its own buffer and parser.
// Used as the pools.ConnectionPool's newFunc; SetFD assigns the actual
// fd when one is pulled off the pool for a freshly accepted socket.
func newConnection(timeout time.Duration) *Connection {
	return &Connection{
		fd:      -1,
		state:   StateNew,
		buf:     buffer.New(defaultConnectionBufferSize),
		parser:  http.NewParser(),
		timeout: timeout,
	}
}

// Reset implements pools.ConnectionPoolable so a closed Connection's
// buffer and parser can be recycled for the next accepted socket.
func (c *Connection) Reset() {
	c.id = ""
	c.fd = -1
	c.state = StateNew
	c.buf.Reset()
	c.parser.Reset()
	c.lastActive = time.Time{}
}

// SetFD implements pools.ConnectionPoolable, assigning a freshly
// accepted fd and a new correlation id to a pooled Connection.
func (c *Connection) SetFD(fd int) {
	c.id = uuid.NewString()
	c.fd = fd
	c.state = StateNew
	c.lastActive = time.Now()
}

// ID returns the connection's correlation id.
func (c *Connection) ID() string { return c.id }

// Fd returns the underlying file descriptor.
func (c *Connection) Fd() int { return c.fd }

// State reports the connection's current lifecycle stage.
func (c *Connection) State() ConnectionState { return c.state }

// SetState transitions the connection to a new lifecycle stage.
func (c *Connection) SetState(s ConnectionState) { c.state = s }

// Touch records activity for timeout bookkeeping.
func (c *Connection) Touch() { c.lastActive = time.Now() }

// TimedOut reports whether the connection has been idle past its
// timeout. A connection mid-Processing is never considered timed out:
// the handler is synchronous and owns the state until it returns.
func (c *Connection) TimedOut() bool {
	if c.state == StateProcessing {
		return false
	}
	return time.Since(c.lastActive) > c.timeout
}
