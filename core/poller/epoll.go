//go:build linux

package poller

import (
	"golang.org/x/sys/unix"
)

// EpollPoller is an epoll-based I/O multiplexer registering both read
// and write interest per descriptor, edge-triggered.
type EpollPoller struct {
	epfd   int
	events []unix.EpollEvent
}

// NewPoller creates a new Poller (Linux).
func NewPoller() (Poller, error) {
	epfd, err := unix.EpollCreate1(0)
	if err != nil {
		return nil, err
	}

	return &EpollPoller{
		epfd:   epfd,
		events: make([]unix.EpollEvent, 1024),
	}, nil
}

// Add registers fd for read, write, and peer-shutdown readiness,
// edge-triggered: callers must drain fd until EAGAIN on every readiness
// notification, since a second one won't arrive just because unread
// data remains.
func (p *EpollPoller) Add(fd int) error {
	ev := unix.EpollEvent{
		Events: unix.EPOLLIN | unix.EPOLLOUT | unix.EPOLLET | unix.EPOLLRDHUP,
		Fd:     int32(fd),
	}
	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_ADD, fd, &ev)
}

// Remove deregisters fd.
func (p *EpollPoller) Remove(fd int) error {
	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_DEL, fd, nil)
}

// Wait blocks for ready descriptors and translates epoll's native
// event bits into the platform-agnostic Events bitset.
func (p *EpollPoller) Wait(timeoutMillis int) ([]Event, error) {
	n, err := unix.EpollWait(p.epfd, p.events, timeoutMillis)
	if err != nil && err != unix.EINTR {
		return nil, err
	}
	if n <= 0 {
		return nil, nil
	}

	out := make([]Event, 0, n)
	for i := 0; i < n; i++ {
		raw := p.events[i].Events
		var bits Events
		if raw&unix.EPOLLIN != 0 {
			bits |= Read
		}
		if raw&unix.EPOLLOUT != 0 {
			bits |= Write
		}
		if raw&(unix.EPOLLHUP|unix.EPOLLRDHUP) != 0 {
			bits |= Hup
		}
		if raw&unix.EPOLLERR != 0 {
			bits |= Err
		}
		out = append(out, Event{Fd: int(p.events[i].Fd), Events: bits})
	}

	return out, nil
}

// Close releases the epoll instance.
func (p *EpollPoller) Close() error {
	return unix.Close(p.epfd)
}

// SetNonblock puts fd into non-blocking mode.
func SetNonblock(fd int) error {
	return unix.SetNonblock(fd, true)
}
