package resilience

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestGroup_DoCollapsesConcurrentLoads(t *testing.T) {
	var g Group[[]string]
	var counter int32

	const workers = 20
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			got, err, _ := g.Do("fixtures:2026-03-14", func() ([]string, error) {
				atomic.AddInt32(&counter, 1)
				time.Sleep(20 * time.Millisecond)
				return []string{"Arsenal v Spurs"}, nil
			})
			if err != nil {
				t.Errorf("singleflight call failed: %v", err)
				return
			}
			if len(got) != 1 {
				t.Errorf("unexpected result: %v", got)
			}
		}()
	}

	close(start)
	wg.Wait()

	if got := atomic.LoadInt32(&counter); got != 1 {
		t.Fatalf("expected loader to run once, got %d", got)
	}
}

func TestGroup_DoZeroValueOnError(t *testing.T) {
	var g Group[int]
	got, err, _ := g.Do("k", func() (int, error) {
		return 0, ErrCircuitOpen
	})
	if err != ErrCircuitOpen {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}
	if got != 0 {
		t.Fatalf("expected zero value, got %d", got)
	}
}
