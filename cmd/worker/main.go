package main

import (
	"context"
	"log"
	"time"

	"smarttask/internal/config"
	"smarttask/internal/db"
	"smarttask/internal/notify"
	"smarttask/internal/queue"
	"smarttask/internal/worker"

	"github.com/google/uuid"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	//初始化依赖
	pool, err := db.Init(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("postgres init failed: %v", err)
	}
	defer pool.Close()

	rdb, err := queue.Connect(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("redis init failed: %v", err)
	}
	defer rdb.Close()

	// 派发 worker 只负责任务事件 webhook，邮件通道归紧急扫描进程
	dispatcher := notify.NewDispatcher(notify.NewWebhookSender(cfg.WebhookURL, cfg.WebhookSecret), nil)

	workerID := uuid.NewString()
	go worker.StartHeartbeat(context.Background(), rdb, workerID, 30*time.Second, 10*time.Second)
	log.Printf("worker %s starting, queue=%s", workerID, cfg.NotifyQueue)

	consumer := worker.NewConsumer(pool, rdb, dispatcher, cfg.NotifyQueue, cfg.WorkerConcurrency)
	consumer.Run(context.Background())
}
