package handler

import (
	"log"
	"net/http"
	"strings"

	"smarttask/internal/queue"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type MetricsHandler struct {
	rdb       *redis.Client
	queueName string
}

func NewMetricsHandler(rdb *redis.Client, queueName string) *MetricsHandler {
	return &MetricsHandler{rdb: rdb, queueName: queueName}
}

// GET /api/v1/metrics/sweep
func (h *MetricsHandler) GetSweepMetrics(c *gin.Context) {
	ctx := c.Request.Context()
	last, err := h.rdb.HGetAll(ctx, "metrics:sweep:last").Result()
	if err != nil {
		log.Printf("failed to get sweep metrics: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	runs, err := h.rdb.Get(ctx, "metrics:sweep:runs").Int64()
	if err != nil && err != redis.Nil {
		log.Printf("failed to get sweep run count: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"runs": runs,
		"last": last, // 包含 time 与各 outcome 的计数
	})
}

// GET /api/v1/metrics/workers
func (h *MetricsHandler) GetWorkerMetrics(c *gin.Context) {
	ctx := c.Request.Context()
	keys, _, err := h.rdb.Scan(ctx, 0, "metrics:worker:notify:*", 1000).Result()
	if err != nil {
		log.Printf("failed to scan worker metrics keys: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	type item struct {
		Queue  string `json:"queue"`
		Metric string `json:"metric"`
		Value  int64  `json:"value"`
	}
	var list []item
	for _, k := range keys {
		val, _ := h.rdb.Get(ctx, k).Int64()
		parts := strings.Split(k, ":")
		if len(parts) < 5 {
			continue
		}
		list = append(list, item{
			Queue:  parts[3],
			Metric: parts[4],
			Value:  val,
		})
	}

	// 存活 worker 数按心跳键统计
	alive, _, err := h.rdb.Scan(ctx, 0, "worker:*:heartbeat", 1000).Result()
	if err != nil {
		log.Printf("failed to scan worker heartbeats: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	backlog, err := queue.QueueLen(ctx, h.rdb, h.queueName)
	if err != nil {
		log.Printf("failed to get queue length: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"metrics":       list,
		"count":         len(list),
		"alive_workers": len(alive),
		"backlog":       backlog,
	})
}
