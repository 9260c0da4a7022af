package sweep

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler 负责按三个触发源驱动紧急扫描：
// 进程启动先跑一轮，之后每 interval 跑一轮，另按 dailySpec（cron 表达式）
// 在固定时刻补一轮。触发源之间允许重叠，RunOnce 并发安全
type Scheduler struct {
	sweeper   *Sweeper
	interval  time.Duration
	dailySpec string
	cron      *cron.Cron
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewScheduler 创建 Scheduler。dailySpec 非法时直接报错，拒绝启动
func NewScheduler(ctx context.Context, sweeper *Sweeper, interval time.Duration, dailySpec string) (*Scheduler, error) {
	cctx, cancel := context.WithCancel(ctx)
	s := &Scheduler{
		sweeper:   sweeper,
		interval:  interval,
		dailySpec: dailySpec,
		cron:      cron.New(),
		ctx:       cctx,
		cancel:    cancel,
	}
	if _, err := s.cron.AddFunc(dailySpec, func() { s.runLogged("daily") }); err != nil {
		cancel()
		return nil, err
	}
	return s, nil
}

// Start 启动扫描循环，阻塞直到 Stop 或上游 context 取消
func (s *Scheduler) Start() {
	log.Printf("urgency sweep started: interval=%s daily=%q", s.interval, s.dailySpec)

	s.cron.Start()
	defer s.cron.Stop()

	// 启动立即跑一轮，不等第一个周期
	s.runLogged("startup")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.ctx.Done():
			log.Println("urgency sweep stopped")
			return
		case <-ticker.C:
			s.runLogged("interval")
		}
	}
}

// Stop 停止扫描循环
func (s *Scheduler) Stop() {
	s.cancel()
}

func (s *Scheduler) runLogged(trigger string) {
	log.Printf("sweep run starting (trigger=%s)", trigger)
	if _, err := s.sweeper.RunOnce(s.ctx); err != nil {
		log.Printf("sweep run (trigger=%s) failed: %v", trigger, err)
	}
}
