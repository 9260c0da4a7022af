package notify

import (
	"context"
	"log"
	"time"

	"smarttask/internal/domain"
)

// Dispatcher 把一次通知意图派发到各通道。
// 通知属于尽力而为：任何通道失败都只记日志，绝不影响调用方的主流程
type Dispatcher struct {
	webhook *WebhookSender
	email   *EmailSender
	now     func() time.Time
}

func NewDispatcher(webhook *WebhookSender, email *EmailSender) *Dispatcher {
	return &Dispatcher{webhook: webhook, email: email, now: time.Now}
}

// DispatchWebhook 为任务事件发送 webhook。未配置 URL 时静默跳过
func (d *Dispatcher) DispatchWebhook(ctx context.Context, event string, task *domain.Task) {
	if d.webhook == nil || !d.webhook.Configured() {
		return
	}
	body, err := CanonicalJSON(EventPayload(event, task, d.now()))
	if err != nil {
		log.Printf("encode webhook payload for task %s failed: %v", task.ID, err)
		return
	}
	if err := d.webhook.Send(ctx, body); err != nil {
		log.Printf("webhook %s for task %s failed: %v", event, task.ID, err)
		return
	}
	log.Printf("webhook %s for task %s delivered", event, task.ID)
}

// DispatchUrgent 紧急任务通知：webhook 与邮件两个通道各自独立发送
func (d *Dispatcher) DispatchUrgent(ctx context.Context, user *domain.User, task *domain.Task) {
	d.DispatchWebhook(ctx, EventTaskUrgent, task)

	if d.email == nil {
		return
	}
	if err := d.email.SendUrgentTask(user, task); err != nil {
		log.Printf("urgent mail for task %s to %s failed: %v", task.ID, user.Email, err)
	}
}
