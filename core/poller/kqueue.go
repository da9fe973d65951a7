//go:build darwin || freebsd || netbsd || openbsd || dragonfly

package poller

import (
	"golang.org/x/sys/unix"
)

// KqueuePoller is a kqueue-based I/O multiplexer. Read and write
// interest are registered as two separate kevent filters per
// descriptor; Wait coalesces whatever filters fired for the same fd
// into a single Event.
type KqueuePoller struct {
	kqfd   int
	events []unix.Kevent_t
}

// NewPoller creates a new Poller (BSD/Darwin).
func NewPoller() (Poller, error) {
	kqfd, err := unix.Kqueue()
	if err != nil {
		return nil, err
	}

	return &KqueuePoller{
		kqfd:   kqfd,
		events: make([]unix.Kevent_t, 1024),
	}, nil
}

// Add registers fd for both EVFILT_READ and EVFILT_WRITE readiness.
func (p *KqueuePoller) Add(fd int) error {
	changes := []unix.Kevent_t{
		{Ident: uint64(fd), Filter: unix.EVFILT_READ, Flags: unix.EV_ADD | unix.EV_ENABLE},
		{Ident: uint64(fd), Filter: unix.EVFILT_WRITE, Flags: unix.EV_ADD | unix.EV_ENABLE},
	}
	_, err := unix.Kevent(p.kqfd, changes, nil, nil)
	return err
}

// Remove deregisters both filters for fd.
func (p *KqueuePoller) Remove(fd int) error {
	changes := []unix.Kevent_t{
		{Ident: uint64(fd), Filter: unix.EVFILT_READ, Flags: unix.EV_DELETE},
		{Ident: uint64(fd), Filter: unix.EVFILT_WRITE, Flags: unix.EV_DELETE},
	}
	_, err := unix.Kevent(p.kqfd, changes, nil, nil)
	return err
}

// Wait blocks for ready descriptors and merges per-filter kevents for
// the same fd into one Event carrying the combined bitset.
func (p *KqueuePoller) Wait(timeoutMillis int) ([]Event, error) {
	var ts *unix.Timespec
	if timeoutMillis >= 0 {
		ts = &unix.Timespec{
			Sec:  int64(timeoutMillis / 1000),
			Nsec: int64((timeoutMillis % 1000) * 1000000),
		}
	}

	n, err := unix.Kevent(p.kqfd, nil, p.events, ts)
	if err != nil && err != unix.EINTR {
		return nil, err
	}
	if n <= 0 {
		return nil, nil
	}

	byFd := make(map[int]Events, n)
	order := make([]int, 0, n)
	for i := 0; i < n; i++ {
		kev := p.events[i]
		fd := int(kev.Ident)
		bits, seen := byFd[fd]
		if !seen {
			order = append(order, fd)
		}

		switch kev.Filter {
		case unix.EVFILT_READ:
			bits |= Read
		case unix.EVFILT_WRITE:
			bits |= Write
		}
		if kev.Flags&unix.EV_EOF != 0 {
			bits |= Hup
		}
		if kev.Flags&unix.EV_ERROR != 0 {
			bits |= Err
		}
		byFd[fd] = bits
	}

	out := make([]Event, 0, len(order))
	for _, fd := range order {
		out = append(out, Event{Fd: fd, Events: byFd[fd]})
	}
	return out, nil
}

// Close releases the kqueue instance.
func (p *KqueuePoller) Close() error {
	return unix.Close(p.kqfd)
}

// SetNonblock puts fd into non-blocking mode.
func SetNonblock(fd int) error {
	return unix.SetNonblock(fd, true)
}
