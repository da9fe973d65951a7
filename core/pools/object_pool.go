package pools

import (
	"sync"
	"sync/atomic"
	"time"
)

// ObjectPool is a sync.Pool wrapper with warmup, hit-rate statistics,
// and a periodic auto-optimize pass. core/worker.go uses one per
// worker to recycle the http.Response values it builds for 500 replies
// when a handler fails; responses returned by handlers are not pooled.
type ObjectPool struct {
	pool      sync.Pool
	newFunc   func() any
	resetFunc func(any)

	// Statistics
	gets      atomic.Uint64
	puts      atomic.Uint64
	news      atomic.Uint64
	startTime time.Time

	// Configuration
	warmupSize    int
	maxIdleSize   int
	targetHitRate float64
}

// ObjectPoolConfig configures a object pool
type ObjectPoolConfig struct {
	New           func() any
	Reset         func(any)
	WarmupSize    int     // Number of objects to pre-allocate
	MaxIdleSize   int     // Maximum idle objects to keep
	TargetHitRate float64 // Target cache hit rate (0.0-1.0)
}

// NewObjectPool creates a new object pool with configuration
func NewObjectPool(config ObjectPoolConfig) *ObjectPool {
	if config.WarmupSize == 0 {
		config.WarmupSize = 100
	}
	if config.MaxIdleSize == 0 {
		config.MaxIdleSize = 1000
	}
	if config.TargetHitRate == 0 {
		config.TargetHitRate = 0.90
	}

	sp := &ObjectPool{
		newFunc:       config.New,
		resetFunc:     config.Reset,
		warmupSize:    config.WarmupSize,
		maxIdleSize:   config.MaxIdleSize,
		targetHitRate: config.TargetHitRate,
		startTime:     time.Now(),
	}

	sp.pool.New = func() any {
		sp.news.Add(1)
		return config.New()
	}

	// Warmup: pre-allocate objects
	sp.Warmup()

	return sp
}

// Get acquires an object from the pool
func (sp *ObjectPool) Get() any {
	sp.gets.Add(1)
	return sp.pool.Get()
}

// Put returns an object to the pool
func (sp *ObjectPool) Put(obj any) {
	if obj == nil {
		return
	}

	sp.puts.Add(1)

	// Reset object state
	if sp.resetFunc != nil {
		sp.resetFunc(obj)
	}

	sp.pool.Put(obj)
}

// Warmup pre-allocates objects in the pool
func (sp *ObjectPool) Warmup() {
	for i := 0; i < sp.warmupSize; i++ {
		obj := sp.newFunc()
		sp.pool.Put(obj)
	}
}

// Stats returns pool statistics
func (sp *ObjectPool) Stats() ObjectPoolStats {
	gets := sp.gets.Load()
	puts := sp.puts.Load()
	news := sp.news.Load()

	hitRate := 0.0
	if gets > 0 {
		// Hit rate = (gets - news) / gets
		// Objects served from pool vs newly created
		hits := gets - news
		if hits > 0 {
			hitRate = float64(hits) / float64(gets)
		}
	}

	return ObjectPoolStats{
		Gets:      gets,
		Puts:      puts,
		News:      news,
		HitRate:   hitRate,
		Uptime:    time.Since(sp.startTime),
		ReuseRate: float64(puts) / float64(gets+1), // Avoid division by zero
	}
}

// ObjectPoolStats contains object pool statistics
type ObjectPoolStats struct {
	Gets      uint64
	Puts      uint64
	News      uint64
	HitRate   float64
	Uptime    time.Duration
	ReuseRate float64
}

// Optimize tops up the pool when its hit rate has drifted below
// targetHitRate, and stops topping up once the pool has had to create
// maxIdleSize objects on Get misses since construction.
func (sp *ObjectPool) Optimize() {
	stats := sp.Stats()

	if stats.HitRate >= sp.targetHitRate || stats.Gets <= 1000 {
		return
	}
	if int(stats.News) >= sp.maxIdleSize {
		return
	}

	additionalWarmup := sp.warmupSize / 10
	if additionalWarmup == 0 {
		additionalWarmup = 1
	}
	for i := 0; i < additionalWarmup; i++ {
		sp.pool.Put(sp.newFunc())
	}
}

// StartAutoOptimize runs Optimize on a ticker until stop is closed.
// The caller owns stop; closing it is the only way to end the
// goroutine this starts.
func (sp *ObjectPool) StartAutoOptimize(interval time.Duration, stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				sp.Optimize()
			case <-stop:
				return
			}
		}
	}()
}
