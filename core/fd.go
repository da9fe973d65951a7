package core

import "golang.org/x/sys/unix"

// fdReader/fdWriter adapt a raw non-blocking socket fd to io.Reader and
// io.Writer so Buffer's ReadFrom/WriteTo can drive them directly
// without going through net.Conn's extra allocations.

type fdReader struct{ fd int }

func (r fdReader) Read(p []byte) (int, error) {
	return unix.Read(r.fd, p)
}

type fdWriter struct{ fd int }

func (w fdWriter) Write(p []byte) (int, error) {
	return unix.Write(w.fd, p)
}
