package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

type countingJob struct {
	id      int
	counter *atomic.Int64
}

type countingResult struct {
	id  int
	err error
}

func (r *countingResult) GetError() error { return r.err }

func (j *countingJob) Execute(ctx context.Context) Result {
	j.counter.Add(1)
	return &countingResult{id: j.id}
}

func TestPool_RunsAllJobs(t *testing.T) {
	var counter atomic.Int64
	pool := NewPool(3)
	pool.Start()

	const jobs = 20
	for i := 0; i < jobs; i++ {
		pool.Submit(&countingJob{id: i, counter: &counter})
	}
	results := pool.Wait()

	if counter.Load() != jobs {
		t.Errorf("Executed %d jobs, want %d", counter.Load(), jobs)
	}
	if len(results) != jobs {
		t.Errorf("Got %d results, want %d", len(results), jobs)
	}
	seen := make(map[int]bool)
	for _, r := range results {
		seen[r.(*countingResult).id] = true
	}
	if len(seen) != jobs {
		t.Errorf("Results cover %d distinct jobs, want %d", len(seen), jobs)
	}
}

func TestPool_ZeroWorkersDefaultsToOne(t *testing.T) {
	var counter atomic.Int64
	pool := NewPool(0)
	pool.Start()
	pool.Submit(&countingJob{counter: &counter})
	pool.Wait()

	if counter.Load() != 1 {
		t.Errorf("Executed %d jobs, want 1", counter.Load())
	}
}

func TestPool_LargeBatchDoesNotWedge(t *testing.T) {
	// More jobs than the pool's channel buffers hold; submission must run
	// concurrently with draining
	var counter atomic.Int64
	pool := NewPool(2)
	pool.Start()

	const jobs = 200
	go func() {
		for i := 0; i < jobs; i++ {
			pool.Submit(&countingJob{id: i, counter: &counter})
		}
		pool.Close()
	}()

	done := make(chan int)
	go func() {
		var n int
		for range pool.Results() {
			n++
		}
		done <- n
	}()

	select {
	case n := <-done:
		if n != jobs {
			t.Errorf("Drained %d results, want %d", n, jobs)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Pool wedged draining a large batch")
	}
}

type slowJob struct{ started *atomic.Int64 }

func (j *slowJob) Execute(ctx context.Context) Result {
	j.started.Add(1)
	select {
	case <-ctx.Done():
		return &countingResult{err: ctx.Err()}
	case <-time.After(5 * time.Second):
		return &countingResult{}
	}
}

func TestPool_ShutdownCancelsRunningJobs(t *testing.T) {
	var started atomic.Int64
	pool := NewPool(2)
	pool.Start()
	pool.Submit(&slowJob{started: &started})
	pool.Submit(&slowJob{started: &started})

	for started.Load() < 2 {
		time.Sleep(time.Millisecond)
	}

	finished := make(chan struct{})
	go func() {
		pool.Shutdown()
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("Shutdown did not cancel running jobs")
	}
}

func TestLimiter_NilNeverBlocks(t *testing.T) {
	var l *Limiter
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	for i := 0; i < 1000; i++ {
		if err := l.Wait(ctx); err != nil {
			t.Fatalf("Nil limiter blocked: %v", err)
		}
	}
	if !l.Allow() {
		t.Error("Nil limiter should always allow")
	}
}

func TestLimiter_ZeroRateMeansUnthrottled(t *testing.T) {
	if NewLimiter(0, 1) != nil {
		t.Error("Zero rate should yield a nil limiter")
	}
	if NewLimiter(-1, 1) != nil {
		t.Error("Negative rate should yield a nil limiter")
	}
	if NewLimiter(5, 0) == nil {
		t.Error("Positive rate should yield a limiter")
	}
}

func TestLimiter_EnforcesRate(t *testing.T) {
	l := NewLimiter(1000, 1)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 5; i++ {
		if err := l.Wait(ctx); err != nil {
			t.Fatalf("Wait failed: %v", err)
		}
	}
	// 5 tokens at 1000/s with burst 1 needs roughly 4ms
	if elapsed := time.Since(start); elapsed < 3*time.Millisecond {
		t.Errorf("5 waits finished in %v, expected throttling", elapsed)
	}
}
