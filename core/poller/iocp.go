//go:build windows

package poller

import "github.com/octet-server/octet/core/errs"

// NewPoller is unimplemented on Windows: the readiness model here is
// built around epoll/kqueue semantics, and IOCP's completion-based
// model needs its own event loop shape, not a drop-in Poller. The
// original project carried the same stub.
func NewPoller() (Poller, error) {
	return nil, errs.New(errs.EventLoop, "IOCP poller not implemented")
}
