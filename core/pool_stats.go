package core

import (
	"encoding/json"
	"fmt"

	"github.com/octet-server/octet/core/pools"
)

// PoolStats summarizes pool behavior across every worker, aggregated
// at read time since each worker owns its connection and response
// pools independently.
type PoolStats struct {
	Connection ConnectionPoolStats  `json:"connection"`
	Response   ResponsePoolStats    `json:"response"`
	Offload    pools.TaskPoolStats  `json:"offload"`
}

type ConnectionPoolStats struct {
	Gets    uint64  `json:"gets"`
	Puts    uint64  `json:"puts"`
	HitRate float64 `json:"hit_rate"`
}

type ResponsePoolStats struct {
	Gets    uint64  `json:"gets"`
	Puts    uint64  `json:"puts"`
	HitRate float64 `json:"hit_rate"`
}

// GetPoolStats aggregates connection and response pool counters across
// every worker, plus the engine-wide offload task pool.
func (e *Engine) GetPoolStats() PoolStats {
	var stats PoolStats

	for _, w := range e.workers {
		gets, puts, _ := w.connPool.Stats()
		stats.Connection.Gets += gets
		stats.Connection.Puts += puts

		respStats := w.respPool.Stats()
		stats.Response.Gets += respStats.Gets
		stats.Response.Puts += respStats.Puts
	}

	if stats.Connection.Gets > 0 {
		stats.Connection.HitRate = float64(stats.Connection.Puts) / float64(stats.Connection.Gets)
	}
	if stats.Response.Gets > 0 {
		stats.Response.HitRate = float64(stats.Response.Puts) / float64(stats.Response.Gets)
	}

	if e.offload != nil {
		stats.Offload = e.offload.Stats()
	}

	return stats
}

// GetPoolStatsJSON returns pool statistics as a JSON string.
func (e *Engine) GetPoolStatsJSON() string {
	stats := e.GetPoolStats()
	data, _ := json.MarshalIndent(stats, "", "  ")
	return string(data)
}

// GetPoolStatsText returns pool statistics as human-readable text.
func (e *Engine) GetPoolStatsText() string {
	stats := e.GetPoolStats()
	return fmt.Sprintf(`Pool Statistics
===============

Connection Pool (all workers):
  Gets:     %d
  Puts:     %d
  Hit Rate: %.2f%%

Response Pool (all workers):
  Gets:     %d
  Puts:     %d
  Hit Rate: %.2f%%

Offload Task Pool:
  Workers:   %d
  Submitted: %d
  Completed: %d
  Steals OK: %d
`,
		stats.Connection.Gets, stats.Connection.Puts, stats.Connection.HitRate*100,
		stats.Response.Gets, stats.Response.Puts, stats.Response.HitRate*100,
		stats.Offload.NumWorkers, stats.Offload.TasksSubmitted, stats.Offload.TasksCompleted, stats.Offload.StealsSuccess,
	)
}
