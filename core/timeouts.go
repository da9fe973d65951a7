package core

import "time"

// defaultIdleTimeout is how long a connection may sit without
// activity (outside Processing) before the worker's sweep closes it.
const defaultIdleTimeout = 30 * time.Second

// timeoutSweepInterval is how often each worker scans its connection
// table for idle connections. Throttled to a little over the 100ms poll
// timeout in worker.run rather than swept every loop iteration: a busy
// worker calls that loop far more often than once per 100ms, and a
// full map scan on every single one of those calls buys no meaningful
// precision against a 30s default idle timeout.
const timeoutSweepInterval = 250 * time.Millisecond
