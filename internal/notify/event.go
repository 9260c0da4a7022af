// Package notify 实现紧急任务与任务变更的出站通知：
// 带 HMAC 签名的 webhook 与 SMTP 邮件两个独立通道。
// 通道之间互不影响，任何发送失败只记日志，不向调用方抛出。
package notify

import (
	"bytes"
	"encoding/json"
	"time"

	"smarttask/internal/domain"
)

// 事件类型
const (
	EventTaskCreated = "task.created"
	EventTaskUpdated = "task.updated"
	EventTaskUrgent  = "task.urgent"
)

// dateLayout 任务截止日期在出站负载中的格式（只含日期）
const dateLayout = "2006-01-02"

// TaskSnapshot 任务在出站负载中的快照。用 map 而不是结构体，
// 配合 CanonicalJSON 保证键按字典序输出
func TaskSnapshot(t *domain.Task) map[string]interface{} {
	snap := map[string]interface{}{
		"id":             t.ID.String(),
		"owner_id":       t.OwnerID.String(),
		"title":          t.Title,
		"description":    nil,
		"importance":     t.Importance,
		"due_date":       nil,
		"status":         string(t.Status),
		"tags":           t.Tags,
		"project":        nil,
		"priority_score": nil,
		"created_at":     t.CreatedAt.UTC().Format(time.RFC3339),
		"updated_at":     nil,
	}
	if t.Description != nil {
		snap["description"] = *t.Description
	}
	if t.DueDate != nil {
		snap["due_date"] = t.DueDate.UTC().Format(dateLayout)
	}
	if t.Project != nil {
		snap["project"] = *t.Project
	}
	if t.PriorityScore != nil {
		snap["priority_score"] = *t.PriorityScore
	}
	if t.UpdatedAt != nil {
		snap["updated_at"] = t.UpdatedAt.UTC().Format(time.RFC3339)
	}
	if t.Tags == nil {
		snap["tags"] = []string{}
	}
	return snap
}

// EventPayload 构造 webhook 负载：事件类型、任务快照与 UTC 时间戳
func EventPayload(event string, task *domain.Task, now time.Time) map[string]interface{} {
	return map[string]interface{}{
		"event":     event,
		"task":      TaskSnapshot(task),
		"timestamp": now.UTC().Format(time.RFC3339),
	}
}

// CanonicalJSON 把负载序列化为规范形式：键按字典序、无多余空白、
// UTF-8 原样输出（不做 HTML 转义）。签名与发送使用同一份字节
func CanonicalJSON(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	// Encoder 会追加换行符，规范形式不带
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
