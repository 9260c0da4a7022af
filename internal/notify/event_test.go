package notify

import (
	"strings"
	"testing"
	"time"

	"smarttask/internal/domain"

	"github.com/google/uuid"
)

var (
	testTaskID  = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	testOwnerID = uuid.MustParse("22222222-2222-2222-2222-222222222222")
	testNow     = time.Date(2025, 5, 4, 15, 30, 0, 0, time.UTC)
)

func fptr(f float64) *float64 { return &f }

func tptr(t time.Time) *time.Time { return &t }

func sampleTask() *domain.Task {
	return &domain.Task{
		ID:            testTaskID,
		OwnerID:       testOwnerID,
		Title:         "Write report",
		Importance:    3,
		DueDate:       tptr(time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC)),
		Status:        domain.StatusPending,
		Tags:          []string{"work", "q2"},
		PriorityScore: fptr(43.33),
		CreatedAt:     time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestCanonicalJSON_SortedKeysNoWhitespace(t *testing.T) {
	body, err := CanonicalJSON(EventPayload(EventTaskCreated, sampleTask(), testNow))
	if err != nil {
		t.Fatalf("CanonicalJSON() error = %v", err)
	}

	want := `{"event":"task.created","task":{` +
		`"created_at":"2025-05-01T09:00:00Z",` +
		`"description":null,` +
		`"due_date":"2025-05-10",` +
		`"id":"11111111-1111-1111-1111-111111111111",` +
		`"importance":3,` +
		`"owner_id":"22222222-2222-2222-2222-222222222222",` +
		`"priority_score":43.33,` +
		`"project":null,` +
		`"status":"pending",` +
		`"tags":["work","q2"],` +
		`"title":"Write report",` +
		`"updated_at":null` +
		`},"timestamp":"2025-05-04T15:30:00Z"}`
	if string(body) != want {
		t.Fatalf("CanonicalJSON() =\n%s\nwant\n%s", body, want)
	}
}

func TestCanonicalJSON_Deterministic(t *testing.T) {
	payload := EventPayload(EventTaskUpdated, sampleTask(), testNow)
	first, err := CanonicalJSON(payload)
	if err != nil {
		t.Fatalf("CanonicalJSON() error = %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := CanonicalJSON(EventPayload(EventTaskUpdated, sampleTask(), testNow))
		if err != nil {
			t.Fatalf("CanonicalJSON() error = %v", err)
		}
		if string(again) != string(first) {
			t.Fatalf("CanonicalJSON() not deterministic:\n%s\nvs\n%s", first, again)
		}
	}
}

func TestCanonicalJSON_NoHTMLEscaping(t *testing.T) {
	task := sampleTask()
	task.Title = `Review <b>PR #7</b> & merge`

	body, err := CanonicalJSON(EventPayload(EventTaskCreated, task, testNow))
	if err != nil {
		t.Fatalf("CanonicalJSON() error = %v", err)
	}
	if !strings.Contains(string(body), `Review <b>PR #7</b> & merge`) {
		t.Fatalf("CanonicalJSON() escaped HTML characters: %s", body)
	}
	if strings.Contains(string(body), `<`) || strings.Contains(string(body), `&`) {
		t.Fatalf("CanonicalJSON() contains unicode escapes: %s", body)
	}
}

func TestCanonicalJSON_NoTrailingNewline(t *testing.T) {
	body, err := CanonicalJSON(EventPayload(EventTaskCreated, sampleTask(), testNow))
	if err != nil {
		t.Fatalf("CanonicalJSON() error = %v", err)
	}
	if strings.HasSuffix(string(body), "\n") {
		t.Fatalf("CanonicalJSON() ends with newline")
	}
}

func TestTaskSnapshot_NilFieldsAndEmptyTags(t *testing.T) {
	task := &domain.Task{
		ID:         testTaskID,
		OwnerID:    testOwnerID,
		Title:      "Bare task",
		Importance: 2,
		Status:     domain.StatusInProgress,
		CreatedAt:  time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC),
	}
	body, err := CanonicalJSON(TaskSnapshot(task))
	if err != nil {
		t.Fatalf("CanonicalJSON() error = %v", err)
	}
	got := string(body)
	for _, fragment := range []string{
		`"description":null`,
		`"due_date":null`,
		`"priority_score":null`,
		`"project":null`,
		`"updated_at":null`,
		`"tags":[]`,
	} {
		if !strings.Contains(got, fragment) {
			t.Fatalf("TaskSnapshot() missing %s in %s", fragment, got)
		}
	}
}
