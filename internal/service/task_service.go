package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"smarttask/internal/domain"
	"smarttask/internal/notify"
	"smarttask/internal/priority"
	"smarttask/internal/queue"
	"smarttask/internal/repo"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type TaskService struct {
	db        *pgxpool.Pool
	rdb       *redis.Client
	queueName string
	weights   priority.Weights
}

func NewTaskService(db *pgxpool.Pool, rdb *redis.Client, queueName string, weights priority.Weights) *TaskService {
	return &TaskService{db: db, rdb: rdb, queueName: queueName, weights: weights}
}

// NotifyIntent 入队给派发 worker 的通知意图。只携带定位信息，
// worker 消费时重新从库里取任务最新状态
type NotifyIntent struct {
	Event   string    `json:"event"`
	TaskID  uuid.UUID `json:"task_id"`
	OwnerID uuid.UUID `json:"owner_id"`
}

type CreateTaskParams struct {
	Title       string
	Description *string
	Importance  int
	DueDate     *time.Time
	Status      domain.TaskStatus
	Tags        []string
	Project     *string
}

func (s *TaskService) CreateTask(ctx context.Context, ownerID uuid.UUID, p CreateTaskParams) (*domain.Task, error) {
	if p.Importance < 1 || p.Importance > 5 {
		return nil, ErrInvalidImportance
	}
	status := p.Status
	if status == "" {
		status = domain.StatusPending
	}
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	// due_date 统一规整到 UTC 当天零点
	var due *time.Time
	if p.DueDate != nil {
		d := domain.DateOnly(*p.DueDate)
		due = &d
	}

	now := time.Now().UTC()
	t := domain.Task{
		ID:            uuid.New(),
		OwnerID:       ownerID,
		Title:         p.Title,
		Description:   p.Description,
		Importance:    p.Importance,
		DueDate:       due,
		Status:        status,
		Tags:          p.Tags,
		Project:       p.Project,
		PriorityScore: priority.Score(p.Importance, due, s.weights, now),
		CreatedAt:     now,
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}

	if err := repo.InsertTask(ctx, s.db, &t); err != nil {
		return nil, err
	}

	s.enqueueIntent(ctx, notify.EventTaskCreated, &t)
	return &t, nil
}

type UpdateTaskParams struct {
	Title       *string
	Description *string
	Importance  *int
	DueDate     *time.Time
	DueDateSet  bool
	Status      *domain.TaskStatus
	Tags        *[]string
	Project     *string
}

func (s *TaskService) UpdateTask(ctx context.Context, ownerID, taskID uuid.UUID, p UpdateTaskParams) (*domain.Task, error) {
	if p.Importance != nil && (*p.Importance < 1 || *p.Importance > 5) {
		return nil, ErrInvalidImportance
	}
	if p.Status != nil && !p.Status.Valid() {
		return nil, ErrInvalidStatus
	}

	current, err := repo.GetTaskByID(ctx, s.db, ownerID, taskID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	update := repo.TaskUpdateParams{
		Title:       p.Title,
		Description: p.Description,
		Importance:  p.Importance,
		Status:      p.Status,
		Tags:        p.Tags,
		Project:     p.Project,
	}
	if p.DueDateSet {
		update.DueDateSet = true
		if p.DueDate != nil {
			d := domain.DateOnly(*p.DueDate)
			update.DueDate = &d
		}
	}

	// 重要度或截止日期实际变动时重算优先级分数；传了相同值不触发重算
	importanceChanged := p.Importance != nil && *p.Importance != current.Importance
	dueChanged := p.DueDateSet && !sameDate(update.DueDate, current.DueDate)
	if importanceChanged || dueChanged {
		importance := current.Importance
		if p.Importance != nil {
			importance = *p.Importance
		}
		due := current.DueDate
		if p.DueDateSet {
			due = update.DueDate
		}
		update.PriorityScore = priority.Score(importance, due, s.weights, time.Now().UTC())
		update.ScoreSet = true
	}

	updated, err := repo.UpdateTask(ctx, s.db, ownerID, taskID, update)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	s.enqueueIntent(ctx, notify.EventTaskUpdated, updated)
	return updated, nil
}

func (s *TaskService) GetTask(ctx context.Context, ownerID, taskID uuid.UUID) (*domain.Task, error) {
	t, err := repo.GetTaskByID(ctx, s.db, ownerID, taskID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return t, nil
}

func (s *TaskService) ListTasks(ctx context.Context, ownerID uuid.UUID, f repo.TaskFilter) ([]domain.Task, error) {
	return repo.ListTasks(ctx, s.db, ownerID, f)
}

// ListUrgencyCandidates 紧急扫描候选集预筛，跨所有用户取任务
func (s *TaskService) ListUrgencyCandidates(ctx context.Context, threshold float64, todayStart time.Time) ([]domain.Task, error) {
	return repo.ListUrgencyCandidates(ctx, s.db, threshold, todayStart)
}

func (s *TaskService) DeleteTask(ctx context.Context, ownerID, taskID uuid.UUID) error {
	deleted, err := repo.DeleteTask(ctx, s.db, ownerID, taskID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrTaskNotFound
	}
	return nil
}

// enqueueIntent 把通知意图写入 Redis 队列。通知是尽力而为，
// 入队失败只记日志，不影响任务写路径
func (s *TaskService) enqueueIntent(ctx context.Context, event string, t *domain.Task) {
	if s.rdb == nil {
		return
	}
	b, err := json.Marshal(NotifyIntent{Event: event, TaskID: t.ID, OwnerID: t.OwnerID})
	if err != nil {
		log.Printf("marshal notify intent for task %s failed: %v", t.ID, err)
		return
	}
	if err := queue.Enqueue(ctx, s.rdb, s.queueName, string(b)); err != nil {
		log.Printf("enqueue %s intent for task %s failed: %v", event, t.ID, err)
	}
}

func sameDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
