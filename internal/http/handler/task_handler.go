package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"smarttask/internal/domain"
	"smarttask/internal/repo"
	"smarttask/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// dateLayout API 内截止日期的表示形式，只含日期，存储按 UTC 当天零点
const dateLayout = "2006-01-02"

type TaskHandler struct {
	svc *service.TaskService
}

func NewTaskHandler(svc *service.TaskService) *TaskHandler {
	return &TaskHandler{svc: svc}
}

// TaskDTO 任务的 API 表示，due_date 序列化为 "YYYY-MM-DD"
type TaskDTO struct {
	ID            uuid.UUID         `json:"id"`
	OwnerID       uuid.UUID         `json:"owner_id"`
	Title         string            `json:"title"`
	Description   *string           `json:"description"`
	Importance    int               `json:"importance"`
	DueDate       *string           `json:"due_date"`
	Status        domain.TaskStatus `json:"status"`
	Tags          []string          `json:"tags"`
	Project       *string           `json:"project"`
	PriorityScore *float64          `json:"priority_score"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     *time.Time        `json:"updated_at"`
}

func toDTO(t *domain.Task) TaskDTO {
	dto := TaskDTO{
		ID:            t.ID,
		OwnerID:       t.OwnerID,
		Title:         t.Title,
		Description:   t.Description,
		Importance:    t.Importance,
		Status:        t.Status,
		Tags:          t.Tags,
		Project:       t.Project,
		PriorityScore: t.PriorityScore,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
	if t.DueDate != nil {
		s := t.DueDate.UTC().Format(dateLayout)
		dto.DueDate = &s
	}
	if dto.Tags == nil {
		dto.Tags = []string{}
	}
	return dto
}

// 请求体：创建任务
type CreateTaskRequest struct {
	Title       string   `json:"title" binding:"required,min=3,max=100"`
	Description *string  `json:"description" binding:"omitempty,max=500"`
	Importance  int      `json:"importance" binding:"required,min=1,max=5"`
	DueDate     *string  `json:"due_date"`
	Status      string   `json:"status" binding:"omitempty,oneof=pending in_progress completed cancelled"`
	Tags        []string `json:"tags"`
	Project     *string  `json:"project"`
}

// POST /api/v1/tasks
func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "detail": err.Error()})
		return
	}

	var due *time.Time
	if req.DueDate != nil {
		d, err := time.ParseInLocation(dateLayout, *req.DueDate, time.UTC)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "due_date must be formatted as YYYY-MM-DD"})
			return
		}
		due = &d
	}

	t, err := h.svc.CreateTask(c.Request.Context(), CurrentUserID(c), service.CreateTaskParams{
		Title:       req.Title,
		Description: req.Description,
		Importance:  req.Importance,
		DueDate:     due,
		Status:      domain.TaskStatus(req.Status),
		Tags:        req.Tags,
		Project:     req.Project,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidImportance) || errors.Is(err, service.ErrInvalidStatus) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create task failed", "detail": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, toDTO(t))
}

// 查询参数：任务列表
type ListTasksQuery struct {
	Status    *string  `form:"status" binding:"omitempty,oneof=pending in_progress completed cancelled"`
	Project   *string  `form:"project"`
	Tags      []string `form:"tag"`
	DueBefore *string  `form:"due_before"`
	SortBy    string   `form:"sort_by" binding:"omitempty,oneof=priority_score due_date created_at importance"`
	SortOrder string   `form:"sort_order" binding:"omitempty,oneof=asc desc"`
	Limit     int      `form:"limit" binding:"omitempty,min=1,max=1000"`
	Skip      int      `form:"skip" binding:"omitempty,min=0"`
}

// GET /api/v1/tasks
func (h *TaskHandler) ListTasks(c *gin.Context) {
	var q ListTasksQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query", "detail": err.Error()})
		return
	}

	f := repo.TaskFilter{
		Project: q.Project,
		Tags:    q.Tags,
		SortBy:  q.SortBy,
		Limit:   q.Limit,
		Skip:    q.Skip,
		// 不指定排序方向时按新建在前
		SortDesc: q.SortOrder != "asc",
	}
	if q.Status != nil {
		st := domain.TaskStatus(*q.Status)
		f.Status = &st
	}
	if q.DueBefore != nil {
		d, err := time.ParseInLocation(dateLayout, *q.DueBefore, time.UTC)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "due_before must be formatted as YYYY-MM-DD"})
			return
		}
		f.DueBefore = &d
	}

	tasks, err := h.svc.ListTasks(c.Request.Context(), CurrentUserID(c), f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list tasks failed", "detail": err.Error()})
		return
	}
	out := make([]TaskDTO, 0, len(tasks))
	for i := range tasks {
		out = append(out, toDTO(&tasks[i]))
	}
	c.JSON(http.StatusOK, gin.H{"tasks": out, "count": len(out)})
}

// GET /api/v1/tasks/:id
func (h *TaskHandler) GetTask(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return
	}

	t, err := h.svc.GetTask(c.Request.Context(), CurrentUserID(c), id)
	if err != nil {
		if errors.Is(err, service.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get task failed", "detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, toDTO(t))
}

// 请求体：部分更新任务。due_date 用原始 JSON 区分「没传」与「传 null 清除」
type UpdateTaskRequest struct {
	Title       *string         `json:"title" binding:"omitempty,min=3,max=100"`
	Description *string         `json:"description" binding:"omitempty,max=500"`
	Importance  *int            `json:"importance" binding:"omitempty,min=1,max=5"`
	DueDate     json.RawMessage `json:"due_date"`
	Status      *string         `json:"status" binding:"omitempty,oneof=pending in_progress completed cancelled"`
	Tags        *[]string       `json:"tags"`
	Project     *string         `json:"project"`
}

func (r *UpdateTaskRequest) empty() bool {
	return r.Title == nil && r.Description == nil && r.Importance == nil &&
		len(r.DueDate) == 0 && r.Status == nil && r.Tags == nil && r.Project == nil
}

// PUT /api/v1/tasks/:id
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return
	}
	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "detail": err.Error()})
		return
	}
	if req.empty() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no fields provided for update"})
		return
	}

	p := service.UpdateTaskParams{
		Title:       req.Title,
		Description: req.Description,
		Importance:  req.Importance,
		Tags:        req.Tags,
		Project:     req.Project,
	}
	if req.Status != nil {
		st := domain.TaskStatus(*req.Status)
		p.Status = &st
	}
	if len(req.DueDate) > 0 {
		p.DueDateSet = true
		if string(req.DueDate) != "null" {
			var s string
			if err := json.Unmarshal(req.DueDate, &s); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "due_date must be formatted as YYYY-MM-DD or null"})
				return
			}
			d, err := time.ParseInLocation(dateLayout, s, time.UTC)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "due_date must be formatted as YYYY-MM-DD or null"})
				return
			}
			p.DueDate = &d
		}
	}

	t, err := h.svc.UpdateTask(c.Request.Context(), CurrentUserID(c), id, p)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTaskNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrInvalidImportance), errors.Is(err, service.ErrInvalidStatus):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "update task failed", "detail": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, toDTO(t))
}

// DELETE /api/v1/tasks/:id
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return
	}

	if err := h.svc.DeleteTask(c.Request.Context(), CurrentUserID(c), id); err != nil {
		if errors.Is(err, service.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete task failed", "detail": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}
