package notify

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"log"

	"smarttask/internal/config"
	"smarttask/internal/domain"

	"gopkg.in/gomail.v2"
)

//go:embed templates/urgent_task.html
var urgentTaskHTML string

var urgentTaskTmpl = template.Must(template.New("urgent_task").Parse(urgentTaskHTML))

// SMTPDialer 发信接口，生产实现为 *gomail.Dialer
type SMTPDialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// EmailSender 紧急任务邮件通道
type EmailSender struct {
	cfg    *config.AppConfig
	dialer SMTPDialer
}

func NewEmailSender(cfg *config.AppConfig) *EmailSender {
	d := gomail.NewDialer(cfg.MailServer, cfg.MailPort, cfg.MailUsername, cfg.MailPassword)
	d.SSL = cfg.MailSSLTLS
	return &EmailSender{cfg: cfg, dialer: d}
}

type urgentMailData struct {
	ProjectName   string
	UserName      string
	TaskTitle     string
	DueDate       string
	PriorityScore string
	TaskLink      string
}

// SendUrgentTask 给任务属主发送紧急提醒邮件。
// 邮件关闭或运输配置不全时跳过并记日志，不算错误
func (e *EmailSender) SendUrgentTask(user *domain.User, task *domain.Task) error {
	if !e.cfg.MailEnabled {
		log.Printf("email disabled (MAIL_ENABLED=false), skipping urgent mail for task %s", task.ID)
		return nil
	}
	if !e.cfg.MailConfigured() {
		log.Printf("email transport not fully configured (need MAIL_USERNAME, MAIL_PASSWORD, MAIL_FROM, MAIL_SERVER), skipping urgent mail for task %s", task.ID)
		return nil
	}

	userName := user.Username
	if user.FullName != nil && *user.FullName != "" {
		userName = *user.FullName
	}
	dueDate := "N/A"
	if task.DueDate != nil {
		dueDate = task.DueDate.UTC().Format(dateLayout)
	}
	score := 0.0
	if task.PriorityScore != nil {
		score = *task.PriorityScore
	}

	data := urgentMailData{
		ProjectName:   e.cfg.ProjectName,
		UserName:      userName,
		TaskTitle:     task.Title,
		DueDate:       dueDate,
		PriorityScore: fmt.Sprintf("%.2f", score),
		TaskLink:      e.cfg.TaskLink(task.ID.String()),
	}

	var htmlBody bytes.Buffer
	if err := urgentTaskTmpl.Execute(&htmlBody, data); err != nil {
		return fmt.Errorf("render urgent mail template: %w", err)
	}

	plain := fmt.Sprintf("Hello %s,\nThe task '%s' in %s needs your attention.\nPriority: %s, due: %s.\n",
		data.UserName, data.TaskTitle, data.ProjectName, data.PriorityScore, data.DueDate)
	if data.TaskLink != "" {
		plain += "Open it here: " + data.TaskLink
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", e.cfg.MailFrom, e.cfg.MailFromName)
	m.SetHeader("To", user.Email)
	m.SetHeader("Subject", fmt.Sprintf("🚨 Urgent task in %s: %s", e.cfg.ProjectName, task.Title))
	m.SetBody("text/plain", plain)
	m.AddAlternative("text/html", htmlBody.String())

	if err := e.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send urgent mail: %w", err)
	}
	return nil
}
