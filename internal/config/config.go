// Package config 从环境变量（可选 .env 文件）加载进程配置。
// 配置在启动时构造一次，之后只读，通过参数显式传给各组件。
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"smarttask/internal/priority"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	// 服务
	HTTPPort    string
	PostgresDSN string
	RedisURL    string
	ProjectName string
	FrontendURL string

	// CORS 允许的来源，逗号分隔
	CORSAllowedOrigins []string

	// 认证
	JWTSecretKey      string
	AccessTokenExpire time.Duration

	// 优先级权重，见 priority.Weights
	Weights priority.Weights

	// Webhook
	WebhookURL    string
	WebhookSecret string

	// 邮件
	MailEnabled  bool
	MailUsername string
	MailPassword string
	MailFrom     string
	MailFromName string
	MailPort     int
	MailServer   string
	MailStartTLS bool
	MailSSLTLS   bool

	// 通知队列与派发 worker
	NotifyQueue       string
	WorkerConcurrency int

	// 紧急扫描
	SweepInterval  time.Duration
	SweepDailyCron string
	NotifyCooldown time.Duration // 0 表示不做重复通知冷却
}

// Load 读取配置并做启动期校验。先尝试加载工作目录下的 .env（不存在则忽略）。
func Load() (*AppConfig, error) {
	_ = godotenv.Load()

	cfg := &AppConfig{
		HTTPPort:    envStr("HTTP_PORT", "8080"),
		PostgresDSN: envStr("DATABASE_URL", "host=localhost port=5432 user=smarttask dbname=smarttask sslmode=disable"),
		RedisURL:    envStr("REDIS_URL", "redis://localhost:6379"),
		ProjectName: envStr("PROJECT_NAME", "SmartTask"),
		FrontendURL: strings.TrimRight(envStr("FRONTEND_URL", ""), "/"),

		JWTSecretKey:      os.Getenv("JWT_SECRET_KEY"),
		AccessTokenExpire: time.Duration(envInt("ACCESS_TOKEN_EXPIRE_MINUTES", 60*24*7)) * time.Minute,

		Weights: priority.Weights{
			DueDateWeight:    envFloat("PRIORITY_WEIGHT_DUE_DATE", 100.0),
			ImportanceWeight: envFloat("PRIORITY_WEIGHT_IMPORTANCE", 10.0),
			DefaultNoDueDate: envOptFloat("PRIORITY_DEFAULT_SCORE_NO_DUE_DATE", 0.0),
			OverdueScore:     envFloat("PRIORITY_SCORE_IF_OVERDUE", 1000.0),
			UrgencyThreshold: envFloat("EMAIL_URGENCY_THRESHOLD", 100.0),
		},

		WebhookURL:    envStr("WEBHOOK_URL", ""),
		WebhookSecret: envStr("WEBHOOK_SECRET", ""),

		MailEnabled:  envBool("MAIL_ENABLED", false),
		MailUsername: envStr("MAIL_USERNAME", ""),
		MailPassword: envStr("MAIL_PASSWORD", ""),
		MailFrom:     envStr("MAIL_FROM", ""),
		MailFromName: envStr("MAIL_FROM_NAME", "SmartTask Notifications"),
		MailPort:     envInt("MAIL_PORT", 587),
		MailServer:   envStr("MAIL_SERVER", ""),
		MailStartTLS: envBool("MAIL_STARTTLS", true),
		MailSSLTLS:   envBool("MAIL_SSL_TLS", false),

		CORSAllowedOrigins: splitCSV(os.Getenv("CORS_ALLOWED_ORIGINS")),

		NotifyQueue:       envStr("NOTIFY_QUEUE", "notifications"),
		WorkerConcurrency: envInt("WORKER_CONCURRENCY", 4),

		SweepInterval:  envDuration("SWEEP_INTERVAL", time.Minute),
		SweepDailyCron: envStr("SWEEP_DAILY_CRON", "0 8 * * *"),
		NotifyCooldown: envDuration("NOTIFY_COOLDOWN", 0),
	}

	if cfg.WorkerConcurrency <= 0 {
		cfg.WorkerConcurrency = 1
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate 启动期配置校验。邮件开启但缺少 SMTP 凭据属于配置错误，直接拒绝启动。
func (c *AppConfig) validate() error {
	if c.MailEnabled {
		if c.MailUsername == "" || c.MailPassword == "" || c.MailFrom == "" || c.MailServer == "" {
			return errors.New("config: MAIL_ENABLED=true requires MAIL_USERNAME, MAIL_PASSWORD, MAIL_FROM and MAIL_SERVER")
		}
	}
	if c.SweepInterval <= 0 {
		return errors.New("config: SWEEP_INTERVAL must be positive")
	}
	return nil
}

// MailConfigured 邮件通道所需的运输配置是否齐全
func (c *AppConfig) MailConfigured() bool {
	return c.MailUsername != "" && c.MailPassword != "" && c.MailFrom != "" && c.MailServer != ""
}

// TaskLink 拼接任务在前端的深链，未配置 FRONTEND_URL 时返回空串
func (c *AppConfig) TaskLink(taskID string) string {
	if c.FrontendURL == "" {
		return ""
	}
	return c.FrontendURL + "/tasks/" + taskID
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed
		}
	}
	return def
}

// envOptFloat 可空浮点：值为 "none"/"null" 时返回 nil，否则同 envFloat
func envOptFloat(key string, def float64) *float64 {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if v == "none" || v == "null" {
		return nil
	}
	f := envFloat(key, def)
	return &f
}

func envBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return def
}

func splitCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
