package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
)

func TestPool_RunsSubmittedJobs(t *testing.T) {
	p := NewPool(3)
	p.Start()
	defer p.Stop()

	var done sync.WaitGroup
	var ran atomic.Int32
	for i := 0; i < 10; i++ {
		done.Add(1)
		p.Submit(func(ctx context.Context) {
			defer done.Done()
			ran.Add(1)
		})
	}
	done.Wait()

	if got := ran.Load(); got != 10 {
		t.Fatalf("ran %d jobs, want 10", got)
	}
}

func TestPool_SubmitAfterStopIsDropped(t *testing.T) {
	p := NewPool(2)
	p.Start()
	p.Stop()

	var ran atomic.Int32
	p.Submit(func(ctx context.Context) {
		ran.Add(1)
	})
	if got := ran.Load(); got != 0 {
		t.Fatalf("ran %d jobs after Stop, want 0", got)
	}
}

func TestNewPool_SizeFloor(t *testing.T) {
	if p := NewPool(0); p.size != 1 {
		t.Fatalf("NewPool(0) size = %d, want 1", p.size)
	}
	if p := NewPool(-4); p.size != 1 {
		t.Fatalf("NewPool(-4) size = %d, want 1", p.size)
	}
}

func TestConsumer_DropsMalformedIntent(t *testing.T) {
	// db、dispatcher 都不该被碰到，置空即可验证提前返回
	c := &Consumer{queueName: "notifications"}

	c.handle(context.Background(), "{not json")
	c.handle(context.Background(), `{"event":"task.deleted","task_id":"11111111-1111-1111-1111-111111111111","owner_id":"22222222-2222-2222-2222-222222222222"}`)
}
