package pools

import (
	"runtime"
	"sync/atomic"
)

// taskQueueDepth bounds how many pending tasks one worker's queue
// holds before Submit spills to the next worker, and then to running
// the task inline on the submitting goroutine as a last resort.
const taskQueueDepth = 256

// Task represents a unit of work submitted via Engine.Offload.
type Task func()

// TaskPool is the work-stealing goroutine pool backing
// Engine.Offload: one queue per worker, with idle workers stealing
// from busy ones instead of blocking.
type TaskPool struct {
	numWorkers int
	queues     []*workerQueue
	workers    []*taskWorker
	closed     atomic.Bool

	// Statistics
	stats struct {
		tasksSubmitted atomic.Uint64
		tasksCompleted atomic.Uint64
		stealsSuccess  atomic.Uint64
		stealsFailed   atomic.Uint64
	}
}

// workerQueue is a lock-free queue for a single taskWorker
type workerQueue struct {
	tasks chan Task
	id    int
}

// taskWorker represents a goroutine that processes tasks
type taskWorker struct {
	id       int
	pool     *TaskPool
	queue    *workerQueue
	stopping atomic.Bool
}

// NewTaskPool creates a new work-stealing taskWorker pool
func NewTaskPool(numWorkers int) *TaskPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}

	pool := &TaskPool{
		numWorkers: numWorkers,
		queues:     make([]*workerQueue, numWorkers),
		workers:    make([]*taskWorker, numWorkers),
	}

	// Create taskWorker queues
	for i := 0; i < numWorkers; i++ {
		pool.queues[i] = &workerQueue{
			tasks: make(chan Task, taskQueueDepth),
			id:    i,
		}
	}

	// Create and start workers
	for i := 0; i < numWorkers; i++ {
		w := &taskWorker{
			id:    i,
			pool:  pool,
			queue: pool.queues[i],
		}
		pool.workers[i] = w
		go w.run()
	}

	return pool
}

// Submit submits a task to the pool using round-robin
func (p *TaskPool) Submit(task Task) bool {
	if p.closed.Load() {
		return false
	}

	p.stats.tasksSubmitted.Add(1)

	// Round-robin distribution based on task count
	idx := int(p.stats.tasksSubmitted.Load()) % p.numWorkers

	select {
	case p.queues[idx].tasks <- task:
		return true
	default:
		// Queue full, try next taskWorker
		idx = (idx + 1) % p.numWorkers
		select {
		case p.queues[idx].tasks <- task:
			return true
		default:
			// All queues full, execute inline
			task()
			p.stats.tasksCompleted.Add(1)
			return true
		}
	}
}

// taskWorker.run is the main loop for a taskWorker goroutine
func (w *taskWorker) run() {
	// Lock this goroutine to its own OS thread
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	for {
		// Try to get task from own queue first
		select {
		case task := <-w.queue.tasks:
			if task == nil {
				return // Shutdown signal
			}
			task()
			w.pool.stats.tasksCompleted.Add(1)
			continue
		default:
		}

		// Own queue is empty, try to steal from other workers
		if w.trySteal() {
			continue
		}

		// No work available, block on own queue
		task, ok := <-w.queue.tasks
		if !ok || task == nil {
			return // Channel closed or shutdown
		}

		task()
		w.pool.stats.tasksCompleted.Add(1)
	}
}

// trySteal attempts to steal work from another taskWorker
func (w *taskWorker) trySteal() bool {
	numWorkers := w.pool.numWorkers

	// Try to steal from (numWorkers - 1) other workers
	// Start from the next worker's queue so workers don't all probe
	// the same victim first
	start := (w.id + 1) % numWorkers

	for i := 0; i < numWorkers-1; i++ {
		victimIdx := (start + i) % numWorkers
		victim := w.pool.queues[victimIdx]

		select {
		case task := <-victim.tasks:
			if task != nil {
				// Successfully stole a task
				w.pool.stats.stealsSuccess.Add(1)
				task()
				w.pool.stats.tasksCompleted.Add(1)
				return true
			}
		default:
			// Victim queue is empty, try next
		}
	}

	w.pool.stats.stealsFailed.Add(1)
	return false
}

// Close gracefully shuts down the taskWorker pool
func (p *TaskPool) Close() {
	if !p.closed.CompareAndSwap(false, true) {
		return // Already closed
	}

	// Send shutdown signal to all workers
	for _, q := range p.queues {
		close(q.tasks)
	}
}

// Stats returns pool statistics
func (p *TaskPool) Stats() TaskPoolStats {
	return TaskPoolStats{
		NumWorkers:     p.numWorkers,
		TasksSubmitted: p.stats.tasksSubmitted.Load(),
		TasksCompleted: p.stats.tasksCompleted.Load(),
		TasksPending:   p.stats.tasksSubmitted.Load() - p.stats.tasksCompleted.Load(),
		StealsSuccess:  p.stats.stealsSuccess.Load(),
		StealsFailed:   p.stats.stealsFailed.Load(),
	}
}

// TaskPoolStats contains pool statistics
type TaskPoolStats struct {
	NumWorkers     int
	TasksSubmitted uint64
	TasksCompleted uint64
	TasksPending   uint64
	StealsSuccess  uint64
	StealsFailed   uint64
}
