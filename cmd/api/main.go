package main

import (
	"context"
	"log"
	"time"

	"smarttask/internal/auth"
	"smarttask/internal/config"
	"smarttask/internal/db"
	"smarttask/internal/http/handler"
	"smarttask/internal/queue"
	"smarttask/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}
	if cfg.JWTSecretKey == "" {
		log.Fatalf("JWT_SECRET_KEY is required for the api server")
	}

	// 初始化数据库连接
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.Init(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("postgres init failed: %v", err)
	}
	defer pool.Close()

	// 确保最小表结构存在
	if err := db.EnsureSchema(ctx, pool); err != nil {
		log.Fatalf("ensure schema failed: %v", err)
	}

	// 初始化 Redis
	rdb, err := queue.Connect(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("redis init failed: %v", err)
	}
	defer rdb.Close()

	// 组装服务与路由
	issuer := auth.NewTokenIssuer(cfg.JWTSecretKey, cfg.AccessTokenExpire)
	userSvc := service.NewUserService(pool)
	taskSvc := service.NewTaskService(pool, rdb, cfg.NotifyQueue, cfg.Weights)

	engine := gin.Default()
	if len(cfg.CORSAllowedOrigins) > 0 {
		corsCfg := cors.DefaultConfig()
		corsCfg.AllowOrigins = cfg.CORSAllowedOrigins
		corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
		engine.Use(cors.New(corsCfg))
	}

	hh := handler.NewHealthHandler(pool, rdb)
	ah := handler.NewAuthHandler(userSvc, issuer)
	th := handler.NewTaskHandler(taskSvc)
	mh := handler.NewMetricsHandler(rdb, cfg.NotifyQueue)

	// 健康与就绪
	engine.GET("/healthz", hh.Healthz)
	engine.GET("/readyz", hh.Readyz)

	api := engine.Group("/api/v1")
	{
		api.POST("/auth/register", ah.Register)
		api.POST("/auth/login/access-token", ah.Login)
	}

	authed := api.Group("", handler.AuthRequired(issuer))
	{
		authed.GET("/auth/users/me", ah.Me)
		authed.PUT("/auth/users/me", ah.UpdateMe)
		authed.DELETE("/auth/users/me", ah.DeleteMe)

		authed.POST("/tasks", th.CreateTask)
		authed.GET("/tasks", th.ListTasks)
		authed.GET("/tasks/:id", th.GetTask)
		authed.PUT("/tasks/:id", th.UpdateTask)
		authed.DELETE("/tasks/:id", th.DeleteTask)

		authed.GET("/metrics/sweep", mh.GetSweepMetrics)
		authed.GET("/metrics/workers", mh.GetWorkerMetrics)
	}

	log.Printf("starting api server on :%s", cfg.HTTPPort)
	if err := engine.Run(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
