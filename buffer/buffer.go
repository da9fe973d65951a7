// Package buffer implements the growable byte ring used by every
// connection to stage inbound and outbound bytes between the socket and
// the HTTP parser/serializer.
package buffer

import (
	"io"

	"github.com/octet-server/octet/core/errs"
)

// Buffer is an owned byte array with independent read and write cursors.
// read_pos <= write_pos <= capacity always holds. It is not safe for
// concurrent use; each Buffer is owned by exactly one connection.
type Buffer struct {
	data     []byte
	readPos  int
	writePos int
}

// New allocates a zero-filled buffer with the given initial capacity.
func New(capacity int) *Buffer {
	return &Buffer{data: make([]byte, capacity)}
}

// AvailableData returns the number of unread bytes currently staged.
func (b *Buffer) AvailableData() int {
	return b.writePos - b.readPos
}

// RemainingCapacity returns the space left before the write cursor hits
// the end of the underlying array.
func (b *Buffer) RemainingCapacity() int {
	return len(b.data) - b.writePos
}

// Capacity returns the total size of the underlying array.
func (b *Buffer) Capacity() int {
	return len(b.data)
}

// Slice borrows the live bytes [read_pos, write_pos). The slice is only
// valid until the next mutating call on b.
func (b *Buffer) Slice() []byte {
	return b.data[b.readPos:b.writePos]
}

// reset collapses both cursors to zero. Called whenever the buffer drains
// completely, so idle connections don't hold dead space at the front of
// the array.
func (b *Buffer) reset() {
	b.readPos = 0
	b.writePos = 0
}

// Reset collapses both cursors to zero without shrinking the
// underlying array, so a pooled Buffer can be handed to a new owner.
func (b *Buffer) Reset() {
	b.reset()
}

// EnsureCapacity guarantees at least n bytes of remaining capacity,
// compacting live bytes to offset 0 first and only then growing. Growth is
// geometric: max(len+n, len*2).
func (b *Buffer) EnsureCapacity(n int) {
	if b.RemainingCapacity() >= n {
		return
	}

	if b.readPos > 0 {
		live := b.writePos - b.readPos
		copy(b.data, b.data[b.readPos:b.writePos])
		b.writePos = live
		b.readPos = 0
	}

	if b.RemainingCapacity() < n {
		newCap := len(b.data) + n
		if doubled := len(b.data) * 2; doubled > newCap {
			newCap = doubled
		}
		grown := make([]byte, newCap)
		copy(grown, b.data[:b.writePos])
		b.data = grown
	}
}

// Write appends the entire slice, growing/compacting as needed first.
// It always writes all of p and returns len(p).
func (b *Buffer) Write(p []byte) (int, error) {
	b.EnsureCapacity(len(p))
	n := copy(b.data[b.writePos:], p)
	b.writePos += n
	return n, nil
}

// Read copies up to min(AvailableData(), len(p)) bytes starting at the
// read cursor, advances the cursor, and resets both cursors if the
// buffer is fully drained.
func (b *Buffer) Read(p []byte) (int, error) {
	available := b.AvailableData()
	if available == 0 {
		return 0, nil
	}

	n := len(p)
	if available < n {
		n = available
	}
	copy(p, b.data[b.readPos:b.readPos+n])
	b.readPos += n
	if b.readPos == b.writePos {
		b.reset()
	}
	return n, nil
}

// ReadFrom reads directly from r into the buffer's write cursor,
// ensuring at least 1024 bytes of headroom first.
func (b *Buffer) ReadFrom(r io.Reader) (int, error) {
	b.EnsureCapacity(1024)
	n, err := r.Read(b.data[b.writePos:])
	b.writePos += n
	return n, err
}

// WriteTo writes the buffer's live bytes to w, advancing the read cursor
// by the number of bytes actually written.
func (b *Buffer) WriteTo(w io.Writer) (int, error) {
	available := b.AvailableData()
	if available == 0 {
		return 0, nil
	}

	n, err := w.Write(b.data[b.readPos:b.writePos])
	b.readPos += n
	if b.readPos == b.writePos {
		b.reset()
	}
	return n, err
}

// AdvanceRead moves the read cursor forward by n, as if n bytes had been
// consumed by some external writer (e.g. a partial socket write). It
// fails if n exceeds the available data.
func (b *Buffer) AdvanceRead(n int) error {
	available := b.AvailableData()
	if n > available {
		return errs.New(errs.Buffer, "cannot advance read position beyond write position (%d > %d)", n, available)
	}

	b.readPos += n
	if b.readPos == b.writePos {
		b.reset()
	}
	return nil
}
