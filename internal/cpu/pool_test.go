package cpu

import (
	"runtime"
	"sync/atomic"
	"testing"
)

func TestWorkerPool_Create(t *testing.T) {
	pool := newWorkerPool(4)
	defer pool.close()

	if pool.numWorkers() != 4 {
		t.Errorf("numWorkers() = %d, want 4", pool.numWorkers())
	}
}

func TestWorkerPool_DefaultWorkers(t *testing.T) {
	for _, n := range []int{0, -5} {
		pool := newWorkerPool(n)
		expected := runtime.GOMAXPROCS(0)
		if pool.numWorkers() != expected {
			t.Errorf("newWorkerPool(%d).numWorkers() = %d, want %d (GOMAXPROCS)",
				n, pool.numWorkers(), expected)
		}
		pool.close()
	}
}

func TestWorkerPool_ExecuteAll(t *testing.T) {
	pool := newWorkerPool(4)
	defer pool.close()

	var counter atomic.Int64
	const numTasks = 100

	work := make([]func(), numTasks)
	for i := range work {
		work[i] = func() { counter.Add(1) }
	}
	pool.executeAll(work)

	if counter.Load() != numTasks {
		t.Errorf("executed %d tasks, want %d", counter.Load(), numTasks)
	}
}

func TestWorkerPool_ExecuteAllEmpty(t *testing.T) {
	pool := newWorkerPool(2)
	defer pool.close()
	pool.executeAll(nil) // must not hang or panic
}

func TestWorkerPool_UnevenWork(t *testing.T) {
	// Mix quick and slow tasks so stealing actually happens.
	pool := newWorkerPool(4)
	defer pool.close()

	var sum atomic.Int64
	work := make([]func(), 64)
	for i := range work {
		n := i
		work[i] = func() {
			total := 0
			for j := 0; j < (n%7+1)*1000; j++ {
				total += j
			}
			_ = total
			sum.Add(int64(n))
		}
	}
	pool.executeAll(work)

	want := int64(64 * 63 / 2)
	if sum.Load() != want {
		t.Errorf("sum = %d, want %d", sum.Load(), want)
	}
}

func TestWorkerPool_CloseTwice(t *testing.T) {
	pool := newWorkerPool(2)
	pool.close()
	pool.close() // must be a no-op
}

func TestWorkerPool_ExecuteAfterClose(t *testing.T) {
	pool := newWorkerPool(2)
	pool.close()

	var counter atomic.Int64
	pool.executeAll([]func(){func() { counter.Add(1) }})
	if counter.Load() != 0 {
		t.Error("closed pool executed work")
	}
}
