package notify

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"smarttask/internal/config"
	"smarttask/internal/domain"

	"gopkg.in/gomail.v2"
)

type fakeDialer struct {
	sent []*gomail.Message
	err  error
}

func (f *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, m...)
	return nil
}

func mailConfig() *config.AppConfig {
	return &config.AppConfig{
		ProjectName:  "SmartTask",
		FrontendURL:  "https://app.example.com",
		MailEnabled:  true,
		MailUsername: "mailer",
		MailPassword: "hunter2",
		MailFrom:     "noreply@example.com",
		MailFromName: "SmartTask Notifications",
		MailServer:   "smtp.example.com",
		MailPort:     587,
	}
}

func sampleUser() *domain.User {
	name := "Alice Smith"
	return &domain.User{
		Username: "alice",
		Email:    "alice@example.com",
		FullName: &name,
	}
}

func TestEmailSender_SkipsWhenDisabled(t *testing.T) {
	cfg := mailConfig()
	cfg.MailEnabled = false
	dialer := &fakeDialer{}
	sender := &EmailSender{cfg: cfg, dialer: dialer}

	if err := sender.SendUrgentTask(sampleUser(), sampleTask()); err != nil {
		t.Fatalf("SendUrgentTask() error = %v, want nil when disabled", err)
	}
	if len(dialer.sent) != 0 {
		t.Fatalf("sent %d mails, want 0 when disabled", len(dialer.sent))
	}
}

func TestEmailSender_SkipsWhenTransportIncomplete(t *testing.T) {
	for _, clear := range []func(*config.AppConfig){
		func(c *config.AppConfig) { c.MailUsername = "" },
		func(c *config.AppConfig) { c.MailPassword = "" },
		func(c *config.AppConfig) { c.MailFrom = "" },
		func(c *config.AppConfig) { c.MailServer = "" },
	} {
		cfg := mailConfig()
		clear(cfg)
		dialer := &fakeDialer{}
		sender := &EmailSender{cfg: cfg, dialer: dialer}

		if err := sender.SendUrgentTask(sampleUser(), sampleTask()); err != nil {
			t.Fatalf("SendUrgentTask() error = %v, want nil when transport incomplete", err)
		}
		if len(dialer.sent) != 0 {
			t.Fatalf("sent %d mails, want 0 when transport incomplete", len(dialer.sent))
		}
	}
}

func TestEmailSender_SendsUrgentMail(t *testing.T) {
	dialer := &fakeDialer{}
	sender := &EmailSender{cfg: mailConfig(), dialer: dialer}

	if err := sender.SendUrgentTask(sampleUser(), sampleTask()); err != nil {
		t.Fatalf("SendUrgentTask() error = %v", err)
	}
	if len(dialer.sent) != 1 {
		t.Fatalf("sent %d mails, want 1", len(dialer.sent))
	}

	m := dialer.sent[0]
	if to := m.GetHeader("To"); len(to) != 1 || to[0] != "alice@example.com" {
		t.Fatalf("To = %v, want [alice@example.com]", to)
	}
	subject := m.GetHeader("Subject")
	if len(subject) != 1 || !strings.Contains(subject[0], "Write report") {
		t.Fatalf("Subject = %v, want task title included", subject)
	}
	if !strings.Contains(subject[0], "SmartTask") {
		t.Fatalf("Subject = %v, want project name included", subject)
	}
}

func TestEmailSender_NilScoreRendersZero(t *testing.T) {
	dialer := &fakeDialer{}
	sender := &EmailSender{cfg: mailConfig(), dialer: dialer}

	task := sampleTask()
	task.Title = "Ship it"
	task.PriorityScore = nil
	task.DueDate = nil
	if err := sender.SendUrgentTask(sampleUser(), task); err != nil {
		t.Fatalf("SendUrgentTask() error = %v", err)
	}
	if len(dialer.sent) != 1 {
		t.Fatalf("sent %d mails, want 1", len(dialer.sent))
	}

	var raw bytes.Buffer
	if _, err := dialer.sent[0].WriteTo(&raw); err != nil {
		t.Fatalf("WriteTo() error = %v", err)
	}
	if !strings.Contains(raw.String(), "Priority: 0.00, due: N/A.") {
		t.Fatalf("mail body missing zero score fallback:\n%s", raw.String())
	}
}

func TestUrgentMailTemplate_RendersFields(t *testing.T) {
	var out bytes.Buffer
	err := urgentTaskTmpl.Execute(&out, urgentMailData{
		ProjectName:   "SmartTask",
		UserName:      "Alice Smith",
		TaskTitle:     "Write report",
		DueDate:       "2025-05-10",
		PriorityScore: "43.33",
		TaskLink:      "https://app.example.com/tasks/11111111-1111-1111-1111-111111111111",
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	html := out.String()
	for _, fragment := range []string{
		"Alice Smith", "Write report", "2025-05-10", "43.33",
		`href="https://app.example.com/tasks/11111111-1111-1111-1111-111111111111"`,
	} {
		if !strings.Contains(html, fragment) {
			t.Fatalf("template output missing %q:\n%s", fragment, html)
		}
	}
}

func TestUrgentMailTemplate_OmitsLinkWhenEmpty(t *testing.T) {
	var out bytes.Buffer
	err := urgentTaskTmpl.Execute(&out, urgentMailData{
		ProjectName:   "SmartTask",
		UserName:      "Bob",
		TaskTitle:     "Ship it",
		DueDate:       "N/A",
		PriorityScore: "0.00",
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if strings.Contains(out.String(), "href=") {
		t.Fatalf("template output has link without TaskLink:\n%s", out.String())
	}
}

func TestDispatcher_UrgentSendsBothChannels(t *testing.T) {
	var webhookBody atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		webhookBody.Store(string(b))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	dialer := &fakeDialer{}
	email := &EmailSender{cfg: mailConfig(), dialer: dialer}
	d := NewDispatcher(NewWebhookSender(srv.URL, "secret"), email)
	d.now = func() time.Time { return testNow }

	d.DispatchUrgent(context.Background(), sampleUser(), sampleTask())

	body, _ := webhookBody.Load().(string)
	if !strings.Contains(body, `"event":"task.urgent"`) {
		t.Fatalf("webhook body = %s, want task.urgent event", body)
	}
	if len(dialer.sent) != 1 {
		t.Fatalf("sent %d mails, want 1", len(dialer.sent))
	}
}

func TestDispatcher_EmailFailureDoesNotBlockWebhook(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	dialer := &fakeDialer{err: errors.New("smtp down")}
	email := &EmailSender{cfg: mailConfig(), dialer: dialer}
	d := NewDispatcher(NewWebhookSender(srv.URL, "secret"), email)
	d.now = func() time.Time { return testNow }

	// 邮件通道失败不影响 webhook 通道，调用正常返回
	d.DispatchUrgent(context.Background(), sampleUser(), sampleTask())
	if calls.Load() != 1 {
		t.Fatalf("webhook calls = %d, want 1", calls.Load())
	}
}
