package core

import (
	"context"
	"errors"
	"log"
	"time"

	"golang.org/x/sys/unix"

	"github.com/octet-server/octet/core/acceptor"
	"github.com/octet-server/octet/core/errs"
	"github.com/octet-server/octet/core/http"
	"github.com/octet-server/octet/core/poller"
	"github.com/octet-server/octet/core/pools"
)

// connectionPoolCapacity is how many Connection values Warmup
// pre-allocates for a worker's pool before it accepts its first
// connection; sync.Pool grows past it under load, so this only
// front-loads the allocation cost that would otherwise land on the
// first wave of accepted connections.
const connectionPoolCapacity = 256

// maxAcceptBatch bounds how many connections a worker pulls off its
// accept queue in one pass before returning to polling, so one burst
// of new connections can't starve existing ones of read/write service.
const maxAcceptBatch = 10

// maxReadDrainIterations bounds how many non-blocking reads handleRead
// issues for one connection before yielding back to the poll loop.
// Edge-triggered epoll requires draining a readable fd to EAGAIN, but
// an unbounded drain would let one fast sender starve every other
// connection on the same worker.
const maxReadDrainIterations = 32

// worker is one readiness-event-loop thread: its own acceptor socket
// (sharing SO_REUSEPORT with its siblings), its own poller, and its
// own connection table. A connection accepted by this worker is
// serviced only by this worker for its entire lifetime.
type worker struct {
	id           int
	acceptor     *acceptor.Acceptor
	poller       poller.Poller
	connections  map[int]*Connection
	connPool     *pools.ConnectionPool
	respPool     *pools.ObjectPool
	handler      HandlerFunc
	idleTimeout  time.Duration
	lastSweep    time.Time
	stopOptimize chan struct{}
}

// respPoolOptimizeInterval controls how often a worker's response pool
// checks its hit rate and tops itself up if it's drifted low.
const respPoolOptimizeInterval = 30 * time.Second

const responsePoolWarmup = 256

func newWorker(id int, addr string, handler HandlerFunc, idleTimeout time.Duration) (*worker, error) {
	acc, err := acceptor.New(addr)
	if err != nil {
		return nil, err
	}

	p, err := poller.NewPoller()
	if err != nil {
		acc.Close()
		return nil, errs.Wrap(errs.EventLoop, err, "create poller for worker %d", id)
	}

	if err := p.Add(acc.Fd()); err != nil {
		p.Close()
		acc.Close()
		return nil, errs.Wrap(errs.EventLoop, err, "register listener with poller")
	}

	connPool := pools.NewConnectionPool(connectionPoolCapacity, func() any {
		return newConnection(idleTimeout)
	})
	connPool.Warmup()

	respPool := pools.NewObjectPool(pools.ObjectPoolConfig{
		New: func() any { return http.NewResponse(http.StatusOK) },
		Reset: func(obj any) {
			obj.(*http.Response).Reset(http.StatusOK)
		},
		WarmupSize: responsePoolWarmup,
	})

	w := &worker{
		id:           id,
		acceptor:     acc,
		poller:       p,
		connections:  make(map[int]*Connection, 1024),
		connPool:     connPool,
		respPool:     respPool,
		handler:      handler,
		idleTimeout:  idleTimeout,
		lastSweep:    time.Now(),
		stopOptimize: make(chan struct{}),
	}
	w.respPool.StartAutoOptimize(respPoolOptimizeInterval, w.stopOptimize)
	return w, nil
}

// run drives the worker's event loop until ctx is cancelled.
func (w *worker) run(ctx context.Context) error {
	defer w.shutdown()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		w.acceptBatch()

		events, err := w.poller.Wait(100)
		if err != nil {
			return errs.Wrap(errs.EventLoop, err, "worker %d: poll", w.id)
		}

		for _, ev := range events {
			w.dispatch(ev)
		}

		w.sweepIdle()
	}
}

func (w *worker) shutdown() {
	close(w.stopOptimize)
	for fd := range w.connections {
		w.closeConnection(fd)
	}
	w.poller.Close()
	w.acceptor.Close()
}

func (w *worker) acceptBatch() {
	for i := 0; i < maxAcceptBatch; i++ {
		fd, err := w.acceptor.Accept()
		if err != nil {
			if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK) {
				return
			}
			log.Printf("worker %d: accept error: %v", w.id, err)
			return
		}

		conn := w.connPool.Get().(*Connection)
		conn.SetFD(fd)
		if err := w.poller.Add(fd); err != nil {
			log.Printf("worker %d: register fd %d: %v", w.id, fd, err)
			w.connPool.Put(conn)
			unix.Close(fd)
			continue
		}
		conn.SetState(StateReading)
		w.connections[fd] = conn
	}
}

func (w *worker) dispatch(ev poller.Event) {
	if ev.Fd == w.acceptor.Fd() {
		return
	}

	conn, ok := w.connections[ev.Fd]
	if !ok {
		return
	}
	conn.Touch()

	if ev.Events&(poller.Hup|poller.Err) != 0 {
		w.closeConnection(ev.Fd)
		return
	}

	if ev.Events&poller.Read != 0 {
		w.handleRead(conn)
	}
	if conn.State() == StateWriting && ev.Events&poller.Write != 0 {
		w.handleWrite(conn)
	}
}

func (w *worker) handleRead(conn *Connection) {
	// Edge-triggered epoll only reports readability once per arrival of
	// new data, so a readable fd must be drained to EAGAIN here — a
	// single partial read would strand unread bytes until the next
	// unrelated event on this fd, or forever. Bounded by
	// maxReadDrainIterations so one fast sender can't starve the rest
	// of this worker's connections; whatever's read so far still gets
	// parsed and a request completed across later events once the
	// parser sees the rest.
	for i := 0; i < maxReadDrainIterations; i++ {
		n, err := conn.buf.ReadFrom(fdReader{fd: conn.fd})
		if err != nil {
			if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK) {
				break
			}
			w.closeConnection(conn.fd)
			return
		}
		if n == 0 {
			w.closeConnection(conn.fd)
			return
		}
	}

	if err := conn.parser.Parse(conn.buf.Slice()); err != nil {
		// A malformed request closes the connection without a response,
		// matching the original event loop's parse-error path.
		w.closeConnection(conn.fd)
		return
	}
	// Without the "\r\n\r\n" marker the parser consumes nothing, so a
	// partial head stays buffered until the rest of it arrives.
	if conn.parser.State() != http.StateRequestLine {
		conn.buf.AdvanceRead(len(conn.buf.Slice()))
	}

	if !conn.parser.IsComplete() {
		return
	}

	conn.SetState(StateProcessing)
	req, err := conn.parser.Request()
	if err != nil {
		w.closeConnection(conn.fd)
		return
	}

	handler := w.handler
	if handler == nil {
		handler = notFoundHandler
	}
	resp, err := handler(req)
	if err != nil {
		w.writeErrorResponse(conn, http.StatusInternalServerError)
		return
	}

	w.queueResponse(conn, resp)
}

func (w *worker) writeErrorResponse(conn *Connection, status http.Status) {
	resp := w.respPool.Get().(*http.Response)
	resp.Reset(status)
	resp.SetBody([]byte(status.Reason() + "\n"))
	w.queueResponse(conn, resp)
	w.respPool.Put(resp)
}

func (w *worker) queueResponse(conn *Connection, resp *http.Response) {
	encoded := resp.Serialize(nil)
	if _, err := conn.buf.Write(encoded); err != nil {
		w.closeConnection(conn.fd)
		return
	}
	conn.SetState(StateWriting)
	w.handleWrite(conn)
}

func (w *worker) handleWrite(conn *Connection) {
	if conn.State() != StateWriting || conn.buf.AvailableData() == 0 {
		return
	}

	// A partial write under edge-triggered epoll doesn't guarantee
	// another EPOLLOUT: if the socket is still writable right after,
	// the kernel won't re-signal a readiness transition that never
	// happened. Keep writing until the buffer drains or the socket
	// actually blocks.
	for conn.buf.AvailableData() > 0 {
		_, err := conn.buf.WriteTo(fdWriter{fd: conn.fd})
		if err != nil {
			if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK) {
				return
			}
			w.closeConnection(conn.fd)
			return
		}
	}

	if conn.buf.AvailableData() == 0 {
		// Close-after-response: one request per connection lifetime.
		w.closeConnection(conn.fd)
	}
}

func (w *worker) closeConnection(fd int) {
	conn, ok := w.connections[fd]
	if !ok {
		return
	}
	conn.SetState(StateClosing)
	delete(w.connections, fd)

	w.poller.Remove(fd)
	unix.Close(fd)
	conn.SetState(StateClosed)
	w.connPool.Put(conn)
}

func (w *worker) sweepIdle() {
	if time.Since(w.lastSweep) < timeoutSweepInterval {
		return
	}
	w.lastSweep = time.Now()

	var timedOut []int
	for fd, conn := range w.connections {
		if conn.TimedOut() {
			timedOut = append(timedOut, fd)
		}
	}
	for _, fd := range timedOut {
		w.closeConnection(fd)
	}
}
