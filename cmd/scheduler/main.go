package main

import (
	"context"
	"log"
	"time"

	"smarttask/internal/config"
	"smarttask/internal/db"
	"smarttask/internal/notify"
	"smarttask/internal/queue"
	"smarttask/internal/service"
	"smarttask/internal/sweep"
)

func main() {
	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// 初始化 Postgres
	pool, err := db.Init(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("postgres init failed: %v", err)
	}
	defer pool.Close()

	// 初始化 Redis
	rdb, err := queue.Connect(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("redis init failed: %v", err)
	}
	defer rdb.Close()

	// 紧急通知走 webhook 与邮件两个通道
	dispatcher := notify.NewDispatcher(
		notify.NewWebhookSender(cfg.WebhookURL, cfg.WebhookSecret),
		notify.NewEmailSender(cfg),
	)

	taskSvc := service.NewTaskService(pool, rdb, cfg.NotifyQueue, cfg.Weights)
	userSvc := service.NewUserService(pool)

	sweeper := sweep.New(taskSvc, userSvc, dispatcher, rdb, cfg.Weights.UrgencyThreshold, cfg.NotifyCooldown)
	sched, err := sweep.NewScheduler(context.Background(), sweeper, cfg.SweepInterval, cfg.SweepDailyCron)
	if err != nil {
		log.Fatalf("new sweep scheduler failed: %v", err)
	}

	sched.Start()
}
