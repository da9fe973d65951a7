package pools

import "testing"

func TestForWorkerCountScalesGOGC(t *testing.T) {
	low := ForWorkerCount(1)
	high := ForWorkerCount(16)

	if low.GOGC >= high.GOGC {
		t.Fatalf("expected GOGC to grow with worker count, got low=%d high=%d", low.GOGC, high.GOGC)
	}
	if high.GOGC > 400 {
		t.Fatalf("expected GOGC capped at 400, got %d", high.GOGC)
	}
}

func TestForWorkerCountClampsBelowOne(t *testing.T) {
	cfg := ForWorkerCount(0)
	if cfg.GOGC != ForWorkerCount(1).GOGC {
		t.Fatalf("expected 0 workers to behave like 1, got GOGC=%d", cfg.GOGC)
	}
}
