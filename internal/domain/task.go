package domain

import (
	"time"

	"github.com/google/uuid"
)

type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
	StatusCancelled  TaskStatus = "cancelled"
)

// Valid 检查状态是否为已知取值
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal 任务是否已终结（完成/取消）；终结任务不参与紧急扫描
func (s TaskStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

type Task struct {
	ID            uuid.UUID  `json:"id"`             // 唯一标识符ID
	OwnerID       uuid.UUID  `json:"owner_id"`       // 所属用户ID
	Title         string     `json:"title"`          // 任务标题
	Description   *string    `json:"description"`    // 任务描述
	Importance    int        `json:"importance"`     // 重要度 1-5
	DueDate       *time.Time `json:"due_date"`       // 截止日期（UTC 当天零点）
	Status        TaskStatus `json:"status"`         // 任务状态
	Tags          []string   `json:"tags"`           // 标签
	Project       *string    `json:"project"`        // 所属项目
	PriorityScore *float64   `json:"priority_score"` // 计算出的优先级分数，不接受用户直接写入
	CreatedAt     time.Time  `json:"created_at"`     // 创建时间
	UpdatedAt     *time.Time `json:"updated_at"`     // 更新时间
}

// DateOnly 将时间规整为 UTC 当天零点。due_date 统一按这个形式存储，
// 保证范围查询与天数差计算一致。
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
