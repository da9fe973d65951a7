//go:build windows

package acceptor

import "github.com/octet-server/octet/core/errs"

// Acceptor is unimplemented on Windows, matching the engine's poller
// which has no IOCP backend yet.
type Acceptor struct{}

func New(addr string) (*Acceptor, error) {
	return nil, errs.New(errs.Connection, "SO_REUSEPORT acceptor not implemented on windows")
}

func (a *Acceptor) Fd() int             { return -1 }
func (a *Acceptor) Accept() (int, error) { return -1, errs.New(errs.Connection, "not implemented") }
func (a *Acceptor) Close() error        { return nil }
func (a *Acceptor) Addr() string        { return "" }
