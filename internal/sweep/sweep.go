// Package sweep 实现紧急任务扫描：从任务库取候选集，逐条判定紧急性，
// 给满足条件的任务属主派发通知，并把每轮结果写入 Redis 指标。
package sweep

import (
	"context"
	"errors"
	"log"
	"time"

	"smarttask/internal/domain"
	"smarttask/internal/priority"
	"smarttask/internal/queue"
	"smarttask/internal/service"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// CandidateSource 紧急扫描候选集来源。预筛条件比进程内判定宽，
// 最终是否紧急以 priority.IsUrgent 为准
type CandidateSource interface {
	ListUrgencyCandidates(ctx context.Context, threshold float64, todayStart time.Time) ([]domain.Task, error)
}

// UserSource 任务属主查询，找不到时返回 service.ErrUserNotFound
type UserSource interface {
	GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// Notifier 紧急通知出口
type Notifier interface {
	DispatchUrgent(ctx context.Context, user *domain.User, task *domain.Task)
}

// Summary 单轮扫描统计
type Summary struct {
	Candidates     int
	Dispatched     int
	NotUrgent      int
	UserMissing    int
	UserDisabled   int
	UserIncomplete int
	CoolingDown    int
	Errors         int
}

type markFunc func(ctx context.Context, taskID string, ttl time.Duration) (bool, error)

// Sweeper 单轮紧急扫描的执行体。并发安全，多个触发源可以同时调用 RunOnce
type Sweeper struct {
	tasks    CandidateSource
	users    UserSource
	notifier Notifier
	rdb      *redis.Client

	threshold float64
	cooldown  time.Duration
	mark      markFunc
	now       func() time.Time
}

// New 创建 Sweeper。rdb 为 nil 时跳过指标与冷却；cooldown 为 0 时不做重复通知抑制
func New(tasks CandidateSource, users UserSource, notifier Notifier, rdb *redis.Client, threshold float64, cooldown time.Duration) *Sweeper {
	s := &Sweeper{
		tasks:     tasks,
		users:     users,
		notifier:  notifier,
		rdb:       rdb,
		threshold: threshold,
		cooldown:  cooldown,
		now:       time.Now,
	}
	if rdb != nil {
		s.mark = func(ctx context.Context, taskID string, ttl time.Duration) (bool, error) {
			return queue.MarkNotified(ctx, rdb, taskID, ttl)
		}
	}
	return s
}

// RunOnce 执行一轮扫描。取候选集失败会中止本轮并返回错误；
// 单个任务的处理失败只计数并继续，不影响其余任务
func (s *Sweeper) RunOnce(ctx context.Context) (Summary, error) {
	now := s.now().UTC()
	todayStart := domain.DateOnly(now)

	candidates, err := s.tasks.ListUrgencyCandidates(ctx, s.threshold, todayStart)
	if err != nil {
		return Summary{}, err
	}

	sum := Summary{Candidates: len(candidates)}
	for i := range candidates {
		t := &candidates[i]

		// 进程内判定是权威：候选集预筛可能偏宽。已终结任务一律不通知
		if t.Status.Terminal() || !priority.IsUrgent(t.PriorityScore, t.DueDate, s.threshold, now) {
			sum.NotUrgent++
			continue
		}

		user, err := s.users.GetUser(ctx, t.OwnerID)
		if err != nil {
			if errors.Is(err, service.ErrUserNotFound) {
				log.Printf("sweep: owner %s of urgent task %s not found", t.OwnerID, t.ID)
				sum.UserMissing++
			} else {
				log.Printf("sweep: lookup owner %s of task %s failed: %v", t.OwnerID, t.ID, err)
				sum.Errors++
			}
			continue
		}
		if user.Disabled {
			log.Printf("sweep: owner %s of urgent task %s is disabled, not notifying", user.Username, t.ID)
			sum.UserDisabled++
			continue
		}
		if !user.Notifiable() {
			log.Printf("sweep: owner %s of urgent task %s has no email or full name, not notifying", user.Username, t.ID)
			sum.UserIncomplete++
			continue
		}

		if s.cooldown > 0 && s.mark != nil {
			fresh, err := s.mark(ctx, t.ID.String(), s.cooldown)
			if err != nil {
				// 冷却只是抑制重复，Redis 出问题时照常发送
				log.Printf("sweep: cooldown check for task %s failed: %v", t.ID, err)
			} else if !fresh {
				sum.CoolingDown++
				continue
			}
		}

		log.Printf("sweep: urgent task %s (%q) found, notifying %s <%s>", t.ID, t.Title, user.Username, user.Email)
		s.notifier.DispatchUrgent(ctx, user, t)
		sum.Dispatched++
	}

	s.recordMetrics(ctx, now, sum)
	log.Printf("sweep done: candidates=%d dispatched=%d not_urgent=%d user_missing=%d user_disabled=%d user_incomplete=%d cooling_down=%d errors=%d",
		sum.Candidates, sum.Dispatched, sum.NotUrgent, sum.UserMissing, sum.UserDisabled, sum.UserIncomplete, sum.CoolingDown, sum.Errors)
	return sum, nil
}

func (s *Sweeper) recordMetrics(ctx context.Context, now time.Time, sum Summary) {
	if s.rdb == nil {
		return
	}
	_ = s.rdb.Incr(ctx, "metrics:sweep:runs").Err()
	_ = s.rdb.HSet(ctx, "metrics:sweep:last", map[string]any{
		"time":            now.Format(time.RFC3339),
		"candidates":      sum.Candidates,
		"dispatched":      sum.Dispatched,
		"not_urgent":      sum.NotUrgent,
		"user_missing":    sum.UserMissing,
		"user_disabled":   sum.UserDisabled,
		"user_incomplete": sum.UserIncomplete,
		"cooling_down":    sum.CoolingDown,
		"errors":          sum.Errors,
	}).Err()
}
