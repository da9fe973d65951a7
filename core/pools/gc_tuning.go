package pools

import (
	"runtime"
	"runtime/debug"
	"time"
)

// GCConfig holds garbage collector tuning applied once at Engine
// startup. The defaults favor throughput over pause latency: a
// readiness-driven server creates and frees a Connection, a Response,
// and a parse buffer per request, and letting GOGC run at its 100%
// default means the collector runs roughly once per doubling of that
// churn.
type GCConfig struct {
	// GOGC sets the garbage collection target percentage. 0 leaves the
	// runtime's current setting alone.
	GOGC int

	// MemoryLimit sets a soft memory limit in bytes via
	// debug.SetMemoryLimit. 0 means no limit.
	MemoryLimit int64
}

// DefaultGCConfig is the runtime's stock GOGC=100. NewEngine applies
// ForWorkerCount unless this (or another profile) is passed via
// core.WithGCProfile.
func DefaultGCConfig() GCConfig {
	return GCConfig{GOGC: 100}
}

// ForWorkerCount scales GOGC with the number of event-loop workers: more
// workers mean more connections in flight and more per-request garbage
// accumulating between collections, so each additional worker buys a
// little more headroom before the next GC cycle.
func ForWorkerCount(workers int) GCConfig {
	if workers < 1 {
		workers = 1
	}
	gogc := 150 + workers*10
	if gogc > 400 {
		gogc = 400
	}
	return GCConfig{GOGC: gogc}
}

// ApplyGCConfig applies cfg to the runtime. Safe to call more than
// once; the last call wins.
func ApplyGCConfig(cfg GCConfig) {
	if cfg.GOGC > 0 {
		debug.SetGCPercent(cfg.GOGC)
	}
	if cfg.MemoryLimit > 0 {
		debug.SetMemoryLimit(cfg.MemoryLimit)
	}
}

// GCStats holds garbage collection statistics. Nothing in this
// repository reads it; octetd's metrics sidecar reports GC behavior
// through Prometheus's Go collector instead.
type GCStats struct {
	NumGC        uint32
	PauseTotal   time.Duration
	LastPause    time.Duration
	AvgPause     time.Duration
	AllocBytes   uint64
	TotalAlloc   uint64
	Sys          uint64
	NumGoroutine int
}

// GetGCStats returns current GC statistics.
func GetGCStats() GCStats {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	stats := GCStats{
		NumGC:        ms.NumGC,
		AllocBytes:   ms.Alloc,
		TotalAlloc:   ms.TotalAlloc,
		Sys:          ms.Sys,
		NumGoroutine: runtime.NumGoroutine(),
	}

	if ms.NumGC > 0 {
		stats.LastPause = time.Duration(ms.PauseNs[(ms.NumGC+255)%256])

		var totalPause uint64
		numPauses := ms.NumGC
		if numPauses > 256 {
			numPauses = 256
		}
		for i := uint32(0); i < numPauses; i++ {
			totalPause += ms.PauseNs[i]
		}

		stats.PauseTotal = time.Duration(totalPause)
		stats.AvgPause = time.Duration(totalPause / uint64(numPauses))
	}

	return stats
}
