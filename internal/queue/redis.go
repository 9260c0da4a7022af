// Package queue 提供基于 Redis 的通知意图队列实现
// 使用 Redis List 数据结构实现 FIFO 队列：API 侧把通知意图入队后立即返回，
// 派发 worker 通过 BLPOP 消费，保证任务写路径不被下游通知渠道拖慢
package queue

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// ReadyKey 生成通知意图就绪队列的 Redis key
// 参数:
//
//	queueName: 队列名称，例如 "notifications"
//
// 返回:
//
//	Redis key 格式为 "notify:{queueName}:ready"，例如 "notify:notifications:ready"
//
// 说明:
//
//	该 key 对应的 Redis List 存储所有待派发的通知意图
func ReadyKey(queueName string) string {
	return "notify:" + queueName + ":ready"
}

// CooldownKey 生成单个任务的通知冷却 key
// 参数:
//
//	taskID: 任务 ID 字符串
//
// 返回:
//
//	Redis key 格式为 "notify:cooldown:{taskID}"
//
// 说明:
//
//	冷却键存在期间，同一任务不再重复发送紧急通知。
//	冷却功能默认关闭（NOTIFY_COOLDOWN=0），开启后由扫描器在发送前检查
func CooldownKey(taskID string) string {
	return "notify:cooldown:" + taskID
}

// Enqueue 将通知意图加入就绪队列
// 参数:
//
//	ctx: 上下文对象，用于控制超时和取消
//	rdb: Redis 客户端实例
//	queueName: 目标队列名称
//	payload: 意图负载数据，JSON 序列化后的字符串
//
// 返回:
//
//	error: 操作失败时返回错误，成功返回 nil
//
// 实现:
//
//	使用 RPUSH 命令将意图添加到队列尾部，确保 FIFO 顺序
//	Worker 通过 BLPOP 从队列头部取出意图进行派发
func Enqueue(ctx context.Context, rdb *redis.Client, queueName string, payload string) error {
	return rdb.RPush(ctx, ReadyKey(queueName), payload).Err()
}

// Dequeue 从就绪队列阻塞取出一条通知意图
// 参数:
//
//	ctx: 上下文对象
//	rdb: Redis 客户端实例
//	queueName: 队列名称
//	timeout: BLPOP 阻塞等待上限；到期未取到意图返回 ok=false
//
// 返回:
//
//	payload: 意图负载数据
//	ok: 是否取到意图
//	error: 操作失败时返回错误（超时不算错误）
func Dequeue(ctx context.Context, rdb *redis.Client, queueName string, timeout time.Duration) (string, bool, error) {
	res, err := rdb.BLPop(ctx, timeout, ReadyKey(queueName)).Result()
	if err != nil {
		if err == redis.Nil {
			return "", false, nil
		}
		return "", false, err
	}
	// BLPOP 返回 [key, value]
	if len(res) < 2 {
		return "", false, nil
	}
	return res[1], true, nil
}

// QueueLen 查询就绪队列当前长度，用于指标上报
func QueueLen(ctx context.Context, rdb *redis.Client, queueName string) (int64, error) {
	return rdb.LLen(ctx, ReadyKey(queueName)).Result()
}

// MarkNotified 尝试为任务设置通知冷却（仅当不存在时成功），返回是否成功。
// 返回 false 表示冷却期内已经发过通知，调用方应跳过本次发送
func MarkNotified(ctx context.Context, rdb *redis.Client, taskID string, ttl time.Duration) (bool, error) {
	return rdb.SetNX(ctx, CooldownKey(taskID), "1", ttl).Result()
}

// Connect 建立 Redis 连接
// 参数:
//
//	ctx: 上下文对象，用于控制连接超时
//	url: Redis 连接 URL，格式为 "redis://[:password@]host:port[/database]"
//	     例如: "redis://localhost:6379/0" 或 "redis://:password@localhost:6379/1"
//
// 返回:
//
//	*redis.Client: 成功时返回 Redis 客户端实例
//	error: 连接失败时返回错误信息
//
// 流程:
//  1. 解析 Redis URL 获取连接配置
//  2. 创建 Redis 客户端实例
//  3. 通过 PING 命令验证连接是否正常
//  4. 连接失败时自动关闭客户端并返回错误
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	// 解析 Redis 连接 URL
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	// 创建 Redis 客户端
	rdb := redis.NewClient(opt)
	// 验证连接是否可用
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, err
	}
	return rdb, nil
}
