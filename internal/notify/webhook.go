package notify

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"time"
)

// SignatureHeader webhook 签名头，值形如 "sha256=<hex>"
const SignatureHeader = "X-SmartTask-Signature"

const webhookUserAgent = "SmartTask-Webhook-Client/1.0"

// Sign 对请求体做 HMAC-SHA256，返回 "sha256=<hex>" 形式的签名值。
// 签名对象必须是实际发送的字节，接收方按同样方式验证
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// WebhookSender 向配置的 URL 发送事件通知。
// 单次尝试，不做重试；超时固定 10 秒
type WebhookSender struct {
	url    string
	secret string
	client *http.Client
}

func NewWebhookSender(url, secret string) *WebhookSender {
	return &WebhookSender{
		url:    url,
		secret: secret,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Configured 是否配置了 webhook 地址；未配置时 Send 直接跳过
func (w *WebhookSender) Configured() bool {
	return w.url != ""
}

// Send 发送一条事件通知。负载按规范 JSON 序列化后整体签名，
// 签名与请求体是同一份字节。返回的错误由调用方决定是否只记日志
func (w *WebhookSender) Send(ctx context.Context, body []byte) error {
	if w.url == "" {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", webhookUserAgent)
	if w.secret != "" {
		req.Header.Set(SignatureHeader, Sign(w.secret, body))
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		// 读一小段响应体方便排查
		peek, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return fmt.Errorf("webhook endpoint returned %d: %s", resp.StatusCode, string(peek))
	}
	return nil
}
