package workqueue

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestAllSubmittedTasksRun(t *testing.T) {
	q := New(4)
	var count int32
	const n = 200
	for i := 0; i < n; i++ {
		q.Submit(func() {
			atomic.AddInt32(&count, 1)
		})
	}
	q.Finish()
	if got := atomic.LoadInt32(&count); got != n {
		t.Fatalf("expected %d completed tasks, got %d", n, got)
	}
	q.Shutdown()
}

func TestFinishWaitsForInFlightTask(t *testing.T) {
	q := New(1)
	started := make(chan struct{})
	release := make(chan struct{})
	q.Submit(func() {
		close(started)
		<-release
	})
	<-started

	finishReturned := make(chan struct{})
	go func() {
		q.Finish()
		close(finishReturned)
	}()

	select {
	case <-finishReturned:
		t.Fatal("Finish returned while a task was still in flight")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	select {
	case <-finishReturned:
	case <-time.After(time.Second):
		t.Fatal("Finish never returned after in-flight task completed")
	}
	q.Shutdown()
}

func TestShutdownDiscardsQueuedTasks(t *testing.T) {
	q := New(1)
	started := make(chan struct{})
	release := make(chan struct{})
	q.Submit(func() {
		close(started)
		<-release
	})
	<-started

	var laterRan int32
	q.Submit(func() {
		atomic.AddInt32(&laterRan, 1)
	})

	// Shutdown blocks until the worker exits, so the in-flight task is
	// released only once Shutdown has marked the queue closed.
	go func() {
		for {
			q.mu.Lock()
			closed := q.shutdown
			q.mu.Unlock()
			if closed {
				close(release)
				return
			}
			time.Sleep(time.Millisecond)
		}
	}()
	q.Shutdown()

	if got := atomic.LoadInt32(&laterRan); got != 0 {
		t.Fatalf("expected queued task discarded by Shutdown, but it ran %d times", got)
	}
}

func TestShutdownWaitsForWorkersToExit(t *testing.T) {
	q := New(3)
	var finished int32
	var started sync.WaitGroup
	started.Add(3)
	for i := 0; i < 3; i++ {
		q.Submit(func() {
			started.Done()
			time.Sleep(10 * time.Millisecond)
			atomic.AddInt32(&finished, 1)
		})
	}
	started.Wait()
	q.Shutdown()
	if got := atomic.LoadInt32(&finished); got != 3 {
		t.Fatalf("Shutdown returned before in-flight tasks completed: %d of 3 finished", got)
	}
}

func TestPanickingTaskDoesNotCorruptPending(t *testing.T) {
	q := New(2)
	q.Submit(func() {
		panic("boom")
	})
	var ran int32
	q.Submit(func() {
		atomic.AddInt32(&ran, 1)
	})
	q.Finish()
	if atomic.LoadInt32(&ran) != 1 {
		t.Fatal("task submitted after a panicking task never completed")
	}
	q.Shutdown()
}

func TestSubmitAfterShutdownIsDiscarded(t *testing.T) {
	q := New(1)
	q.Shutdown()

	var ran int32
	q.Submit(func() {
		atomic.AddInt32(&ran, 1)
	})
	time.Sleep(10 * time.Millisecond)
	if atomic.LoadInt32(&ran) != 0 {
		t.Fatal("task submitted after Shutdown should not run")
	}
}
