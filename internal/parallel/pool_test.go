package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// =============================================================================
// Creation
// =============================================================================

func TestWorkerPool_Create(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	if pool.Workers() != 4 {
		t.Errorf("Workers() = %d, want 4", pool.Workers())
	}
	if !pool.IsRunning() {
		t.Error("pool should be running after creation")
	}
}

func TestWorkerPool_CreateDefaultWorkers(t *testing.T) {
	for _, n := range []int{0, -3} {
		pool := NewWorkerPool(n)
		if want := runtime.GOMAXPROCS(0); pool.Workers() != want {
			t.Errorf("NewWorkerPool(%d).Workers() = %d, want %d", n, pool.Workers(), want)
		}
		pool.Close()
	}
}

// =============================================================================
// ExecuteAll
// =============================================================================

func TestWorkerPool_ExecuteAll(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	var counter atomic.Int64
	jobs := make([]func(), 100)
	for i := range jobs {
		jobs[i] = func() { counter.Add(1) }
	}

	pool.ExecuteAll(jobs)

	if counter.Load() != 100 {
		t.Errorf("counter = %d, want 100", counter.Load())
	}
}

func TestWorkerPool_ExecuteAll_AllIndices(t *testing.T) {
	pool := NewWorkerPool(3)
	defer pool.Close()

	var mu sync.Mutex
	seen := make(map[int]bool)
	jobs := make([]func(), 25)
	for i := range jobs {
		jobs[i] = func() {
			mu.Lock()
			seen[i] = true
			mu.Unlock()
		}
	}

	pool.ExecuteAll(jobs)

	for i := range jobs {
		if !seen[i] {
			t.Errorf("job %d did not run", i)
		}
	}
}

func TestWorkerPool_ExecuteAll_Empty(t *testing.T) {
	pool := NewWorkerPool(2)
	defer pool.Close()

	pool.ExecuteAll(nil)
	pool.ExecuteAll([]func(){})
}

// A closed pool runs jobs on the caller instead of dropping them.
func TestWorkerPool_ExecuteAll_AfterClose(t *testing.T) {
	pool := NewWorkerPool(2)
	pool.Close()

	var counter atomic.Int64
	pool.ExecuteAll([]func(){
		func() { counter.Add(1) },
		func() { counter.Add(1) },
	})
	if counter.Load() != 2 {
		t.Errorf("closed pool ran %d of 2 jobs", counter.Load())
	}
}

// =============================================================================
// ForEach
// =============================================================================

func TestWorkerPool_ForEach(t *testing.T) {
	tests := []struct {
		name    string
		workers int
		n       int
	}{
		{"empty", 4, 0},
		{"inline small", 4, 5},
		{"single worker", 1, 100},
		{"chunked", 4, 100},
		{"uneven", 3, 37},
		{"more workers than chunks", 16, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := NewWorkerPool(tt.workers)
			defer pool.Close()

			hits := make([]atomic.Int32, tt.n)
			pool.ForEach(tt.n, func(i int) { hits[i].Add(1) })

			for i := range hits {
				if got := hits[i].Load(); got != 1 {
					t.Errorf("index %d visited %d times, want 1", i, got)
				}
			}
		})
	}
}

// ForEach cuts the range into one contiguous chunk per worker.
func TestWorkerPool_ForEachUsesWorkers(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	var mu sync.Mutex
	chunks := make(map[int]bool)
	var active, peak atomic.Int32

	pool.ForEach(64, func(i int) {
		n := active.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(time.Millisecond)
		active.Add(-1)

		mu.Lock()
		chunks[i/16] = true
		mu.Unlock()
	})

	if len(chunks) != 4 {
		t.Errorf("expected 4 chunks, got %d", len(chunks))
	}
	if peak.Load() < 2 {
		t.Logf("peak concurrency %d (scheduler dependent)", peak.Load())
	}
}

// =============================================================================
// Close
// =============================================================================

// TestWorkerPool_CloseIdempotent checks that Close stops the workers once
// and that later batches still complete on the caller.
func TestWorkerPool_CloseIdempotent(t *testing.T) {
	pool := NewWorkerPool(2)
	pool.Close()
	pool.Close()

	if pool.IsRunning() {
		t.Error("pool still running after Close")
	}
	var counter atomic.Int64
	pool.ForEach(64, func(int) { counter.Add(1) })
	if counter.Load() != 64 {
		t.Errorf("ForEach after Close ran %d of 64 items", counter.Load())
	}
}

func BenchmarkWorkerPool_ForEach(b *testing.B) {
	pool := NewWorkerPool(0)
	defer pool.Close()

	data := make([]int, 256)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		pool.ForEach(len(data), func(j int) { data[j]++ })
	}
}
