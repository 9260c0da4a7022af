package repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"smarttask/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const taskColumns = `id, owner_id, title, description, importance, due_date, status, tags, project, priority_score, created_at, updated_at`

func scanTask(row pgx.Row) (*domain.Task, error) {
	var t domain.Task
	if err := row.Scan(
		&t.ID, &t.OwnerID, &t.Title, &t.Description, &t.Importance, &t.DueDate, &t.Status,
		&t.Tags, &t.Project, &t.PriorityScore, &t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &t, nil
}

// InsertTask 向 tasks 表插入一条新任务记录
func InsertTask(ctx context.Context, db *pgxpool.Pool, t *domain.Task) error {
	_, err := db.Exec(ctx, `
		INSERT INTO tasks (id, owner_id, title, description, importance, due_date, status, tags, project, priority_score, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, t.ID, t.OwnerID, t.Title, t.Description, t.Importance, t.DueDate, t.Status, t.Tags, t.Project, t.PriorityScore, t.CreatedAt)
	return err
}

// GetTaskByID 按 ID 查询任务，限定属主
func GetTaskByID(ctx context.Context, db *pgxpool.Pool, ownerID, taskID uuid.UUID) (*domain.Task, error) {
	row := db.QueryRow(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE id=$1 AND owner_id=$2
	`, taskID, ownerID)
	return scanTask(row)
}

// TaskFilter 列表查询条件。Tags 为「全部包含」匹配；
// SortBy 仅接受白名单列，其他值回落到 created_at。
type TaskFilter struct {
	Status    *domain.TaskStatus
	Project   *string
	Tags      []string
	DueBefore *time.Time
	SortBy    string
	SortDesc  bool
	Limit     int
	Skip      int
}

// 可排序列白名单，防 SQL 注入
var sortableColumns = map[string]bool{
	"created_at":     true,
	"updated_at":     true,
	"due_date":       true,
	"priority_score": true,
	"importance":     true,
	"title":          true,
	"status":         true,
}

// ListTasks 按条件分页查询某用户的任务
func ListTasks(ctx context.Context, db *pgxpool.Pool, ownerID uuid.UUID, f TaskFilter) ([]domain.Task, error) {
	where := []string{"owner_id=$1"}
	args := []interface{}{ownerID}

	addCond := func(cond string, val interface{}) {
		args = append(args, val)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.Status != nil {
		addCond("status=$%d", *f.Status)
	}
	if f.Project != nil {
		addCond("project=$%d", *f.Project)
	}
	if len(f.Tags) > 0 {
		addCond("tags @> $%d::text[]", f.Tags)
	}
	if f.DueBefore != nil {
		addCond("due_date <= $%d", *f.DueBefore)
	}

	sortBy := f.SortBy
	if !sortableColumns[sortBy] {
		sortBy = "created_at"
	}
	direction := "ASC"
	if f.SortDesc {
		direction = "DESC"
	}
	limit := f.Limit
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	skip := f.Skip
	if skip < 0 {
		skip = 0
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM tasks
		WHERE %s
		ORDER BY %s %s NULLS LAST, id
		LIMIT %d OFFSET %d
	`, taskColumns, strings.Join(where, " AND "), sortBy, direction, limit, skip)

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

// TaskUpdateParams 任务部分更新。nil 字段保持原值；
// DueDateSet=true 且 DueDate=nil 表示清除截止日期。
type TaskUpdateParams struct {
	Title         *string
	Description   *string
	Importance    *int
	DueDate       *time.Time
	DueDateSet    bool
	Status        *domain.TaskStatus
	Tags          *[]string
	Project       *string
	PriorityScore *float64
	ScoreSet      bool
}

// UpdateTask 按字段更新任务并返回最新记录，限定属主
func UpdateTask(ctx context.Context, db *pgxpool.Pool, ownerID, taskID uuid.UUID, p TaskUpdateParams) (*domain.Task, error) {
	set := []string{"updated_at=NOW()"}
	args := []interface{}{taskID, ownerID}

	addSet := func(col string, val interface{}) {
		args = append(args, val)
		set = append(set, fmt.Sprintf("%s=$%d", col, len(args)))
	}
	if p.Title != nil {
		addSet("title", *p.Title)
	}
	if p.Description != nil {
		addSet("description", *p.Description)
	}
	if p.Importance != nil {
		addSet("importance", *p.Importance)
	}
	if p.DueDateSet {
		addSet("due_date", p.DueDate)
	}
	if p.Status != nil {
		addSet("status", *p.Status)
	}
	if p.Tags != nil {
		addSet("tags", *p.Tags)
	}
	if p.Project != nil {
		addSet("project", *p.Project)
	}
	if p.ScoreSet {
		addSet("priority_score", p.PriorityScore)
	}

	query := fmt.Sprintf(`
		UPDATE tasks
		SET %s
		WHERE id=$1 AND owner_id=$2
		RETURNING %s
	`, strings.Join(set, ", "), taskColumns)
	return scanTask(db.QueryRow(ctx, query, args...))
}

// DeleteTask 删除任务，限定属主；返回是否确有删除
func DeleteTask(ctx context.Context, db *pgxpool.Pool, ownerID, taskID uuid.UUID) (bool, error) {
	tag, err := db.Exec(ctx, `DELETE FROM tasks WHERE id=$1 AND owner_id=$2`, taskID, ownerID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ListUrgencyCandidates 紧急扫描的候选集预筛：未终结，且分数超阈值或截止日期
// 不晚于今天零点。最终是否紧急仍由 priority.IsUrgent 在进程内判定。
func ListUrgencyCandidates(ctx context.Context, db *pgxpool.Pool, threshold float64, todayStart time.Time) ([]domain.Task, error) {
	rows, err := db.Query(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE status NOT IN ('completed', 'cancelled')
		  AND (priority_score > $1 OR (due_date IS NOT NULL AND due_date <= $2))
	`, threshold, todayStart)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}
