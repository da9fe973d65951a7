package pools

import "testing"

type fakeConn struct {
	resetCalls int
	fd         int
}

func (f *fakeConn) Reset()       { f.resetCalls++ }
func (f *fakeConn) SetFD(fd int) { f.fd = fd }

func TestConnectionPoolWarmupAndStats(t *testing.T) {
	news := 0
	cp := NewConnectionPool(4, func() any {
		news++
		return &fakeConn{}
	})
	cp.Warmup()
	if news != 4 {
		t.Fatalf("expected Warmup to create 4 objects, got %d", news)
	}

	obj := cp.Get().(*fakeConn)
	cp.Put(obj)
	if obj.resetCalls != 1 {
		t.Fatalf("expected Put to call Reset once, got %d", obj.resetCalls)
	}

	gets, puts, _ := cp.Stats()
	if gets != 1 || puts != 1 {
		t.Fatalf("expected gets=1 puts=1, got gets=%d puts=%d", gets, puts)
	}
}
