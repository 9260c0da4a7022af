package sweep

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"smarttask/internal/domain"

	"github.com/google/uuid"
)

func TestNewScheduler_RejectsBadDailySpec(t *testing.T) {
	s := newTestSweeper(
		&fakeTasks{list: func(ctx context.Context, threshold float64, todayStart time.Time) ([]domain.Task, error) {
			return nil, nil
		}},
		&fakeUsers{get: func(ctx context.Context, id uuid.UUID) (*domain.User, error) { return goodUser(), nil }},
		&fakeNotifier{},
	)
	if _, err := NewScheduler(context.Background(), s, time.Minute, "definitely not cron"); err == nil {
		t.Fatalf("NewScheduler() error = nil, want error for bad cron spec")
	}
}

func TestScheduler_RunsOnceAtStartup(t *testing.T) {
	var runs atomic.Int32
	s := newTestSweeper(
		&fakeTasks{list: func(ctx context.Context, threshold float64, todayStart time.Time) ([]domain.Task, error) {
			runs.Add(1)
			return nil, nil
		}},
		&fakeUsers{get: func(ctx context.Context, id uuid.UUID) (*domain.User, error) { return goodUser(), nil }},
		&fakeNotifier{},
	)

	sched, err := NewScheduler(context.Background(), s, time.Hour, "0 8 * * *")
	if err != nil {
		t.Fatalf("NewScheduler() error = %v", err)
	}
	go sched.Start()
	defer sched.Stop()

	// 启动轮在 Start 内同步执行，不用等周期
	deadline := time.Now().Add(2 * time.Second)
	for runs.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if runs.Load() == 0 {
		t.Fatalf("no sweep run after startup")
	}
}
