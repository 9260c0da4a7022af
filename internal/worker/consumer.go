package worker

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"smarttask/internal/notify"
	"smarttask/internal/queue"
	"smarttask/internal/repo"
	"smarttask/internal/service"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// dequeueTimeout BLPOP 单次阻塞上限，到期后重新检查 context
const dequeueTimeout = 5 * time.Second

// Consumer 通知意图消费者：BLPOP 取意图，交给协程池重查任务并发 webhook。
// 意图里只有定位信息，发送内容以消费时刻的库内状态为准
type Consumer struct {
	db         *pgxpool.Pool
	rdb        *redis.Client
	dispatcher *notify.Dispatcher
	queueName  string
	pool       *Pool
}

func NewConsumer(db *pgxpool.Pool, rdb *redis.Client, dispatcher *notify.Dispatcher, queueName string, concurrency int) *Consumer {
	return &Consumer{
		db:         db,
		rdb:        rdb,
		dispatcher: dispatcher,
		queueName:  queueName,
		pool:       NewPool(concurrency),
	}
}

// Run 阻塞消费队列，直到 context 取消
func (c *Consumer) Run(ctx context.Context) {
	c.pool.Start()
	defer c.pool.Stop()
	log.Printf("notify worker started: queue=%s concurrency=%d", c.queueName, c.pool.size)

	for {
		select {
		case <-ctx.Done():
			log.Println("notify worker stopped")
			return
		default:
		}

		payload, ok, err := queue.Dequeue(ctx, c.rdb, c.queueName, dequeueTimeout)
		if err != nil {
			if ctx.Err() != nil {
				log.Println("notify worker stopped")
				return
			}
			log.Printf("dequeue from %s failed: %v", c.queueName, err)
			time.Sleep(time.Second)
			continue
		}
		if !ok {
			continue
		}

		p := payload
		c.pool.Submit(func(jobCtx context.Context) {
			c.handle(jobCtx, p)
		})
	}
}

func (c *Consumer) handle(ctx context.Context, raw string) {
	var intent service.NotifyIntent
	if err := json.Unmarshal([]byte(raw), &intent); err != nil {
		log.Printf("drop malformed notify intent: %v", err)
		c.count(ctx, "malformed")
		return
	}
	switch intent.Event {
	case notify.EventTaskCreated, notify.EventTaskUpdated:
	default:
		log.Printf("drop notify intent with unknown event %q", intent.Event)
		c.count(ctx, "malformed")
		return
	}

	t, err := repo.GetTaskByID(ctx, c.db, intent.OwnerID, intent.TaskID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// 意图入队后任务已被删除，不算错误
			log.Printf("task %s gone before %s dispatch, skipping", intent.TaskID, intent.Event)
			c.count(ctx, "skipped")
			return
		}
		log.Printf("load task %s for %s dispatch failed: %v", intent.TaskID, intent.Event, err)
		c.count(ctx, "failed")
		return
	}

	c.dispatcher.DispatchWebhook(ctx, intent.Event, t)
	c.count(ctx, "delivered")
}

func (c *Consumer) count(ctx context.Context, metric string) {
	if c.rdb == nil {
		return
	}
	_ = c.rdb.Incr(ctx, "metrics:worker:notify:"+c.queueName+":"+metric).Err()
}
