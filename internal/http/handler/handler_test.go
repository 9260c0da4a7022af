package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"smarttask/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func protectedRouter(issuer *auth.TokenIssuer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", AuthRequired(issuer), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": CurrentUserID(c).String()})
	})
	return r
}

func TestAuthRequired_RejectsMissingHeader(t *testing.T) {
	r := protectedRouter(auth.NewTokenIssuer("secret", time.Hour))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestAuthRequired_RejectsGarbageToken(t *testing.T) {
	r := protectedRouter(auth.NewTokenIssuer("secret", time.Hour))

	for _, header := range []string{"Bearer nonsense", "Basic abc", "Bearer "} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", header)
		r.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Fatalf("status for %q = %d, want 401", header, w.Code)
		}
	}
}

func TestAuthRequired_AcceptsValidToken(t *testing.T) {
	issuer := auth.NewTokenIssuer("secret", time.Hour)
	r := protectedRouter(issuer)
	userID := uuid.New()

	token, err := issuer.Issue(userID, "alice", time.Now())
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body = %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), userID.String()) {
		t.Fatalf("body = %s, want user id %s", w.Body.String(), userID)
	}
}

func taskRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewTaskHandler(nil)
	r.POST("/tasks", h.CreateTask)
	r.GET("/tasks", h.ListTasks)
	r.GET("/tasks/:id", h.GetTask)
	r.PUT("/tasks/:id", h.UpdateTask)
	r.DELETE("/tasks/:id", h.DeleteTask)
	return r
}

func TestCreateTask_RejectsBadBody(t *testing.T) {
	r := taskRouter()
	cases := []struct {
		name string
		body string
	}{
		{"not json", `{broken`},
		{"missing title", `{"importance":3}`},
		{"title too short", `{"title":"ab","importance":3}`},
		{"missing importance", `{"title":"Write report"}`},
		{"importance out of range", `{"title":"Write report","importance":9}`},
		{"bad status", `{"title":"Write report","importance":3,"status":"later"}`},
		{"bad due date", `{"title":"Write report","importance":3,"due_date":"10-05-2025"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/tasks", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")
			r.ServeHTTP(w, req)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400, body = %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestUpdateTask_RejectsBadDueDate(t *testing.T) {
	r := taskRouter()
	id := uuid.New()

	for _, body := range []string{
		`{"due_date":"next tuesday"}`,
		`{"due_date":12345}`,
	} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/tasks/"+id.String(), strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("status for %s = %d, want 400", body, w.Code)
		}
	}
}

func TestUpdateTask_RejectsEmptyBody(t *testing.T) {
	r := taskRouter()
	id := uuid.New()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/tasks/"+id.String(), strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400, body = %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "no fields") {
		t.Fatalf("body = %s, want empty-update rejection", w.Body.String())
	}
}

func TestTaskRoutes_RejectInvalidID(t *testing.T) {
	r := taskRouter()

	for _, tc := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/tasks/not-a-uuid"},
		{http.MethodPut, "/tasks/42"},
		{http.MethodDelete, "/tasks/xyz"},
	} {
		w := httptest.NewRecorder()
		var req *http.Request
		if tc.method == http.MethodPut {
			req = httptest.NewRequest(tc.method, tc.path, strings.NewReader(`{}`))
			req.Header.Set("Content-Type", "application/json")
		} else {
			req = httptest.NewRequest(tc.method, tc.path, nil)
		}
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s %s status = %d, want 400", tc.method, tc.path, w.Code)
		}
	}
}

func TestListTasks_RejectsBadQuery(t *testing.T) {
	r := taskRouter()

	for _, query := range []string{
		"?sort_order=sideways",
		"?sort_by=hashed_password",
		"?status=someday",
		"?limit=5000",
		"?due_before=05/10/2025",
	} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/tasks"+query, nil)
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("status for %q = %d, want 400", query, w.Code)
		}
	}
}
