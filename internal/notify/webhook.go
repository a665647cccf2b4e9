package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/hamed0406/netumo/internal/domain"
)

// Webhook POSTs alert notifications in a Slack/Discord-compatible shape.
// URL resolution order: per-target configured URL, then the global fallback,
// else the send is silently skipped.
type Webhook struct {
	FallbackURL string
	Client      *http.Client
}

func NewWebhook(fallbackURL string) *Webhook {
	return &Webhook{
		FallbackURL: fallbackURL,
		Client:      &http.Client{Timeout: 10 * time.Second},
	}
}

type webhookField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

type webhookAttachment struct {
	Title  string         `json:"title"`
	Fields []webhookField `json:"fields"`
	Color  string         `json:"color"`
}

type webhookPayload struct {
	Text        string              `json:"text"`
	Attachments []webhookAttachment `json:"attachments"`
}

func (w *Webhook) Send(ctx context.Context, alert *domain.Alert, target *domain.Target) error {
	url := target.NotificationWebhookURL
	if url == "" {
		url = w.FallbackURL
	}
	if url == "" {
		return nil // nothing configured, skip silently
	}

	name := target.Name
	if name == "" {
		name = target.URL
	}
	color := "danger"
	if alert.Status == domain.AlertResolved || alert.Type == domain.AlertRecovery {
		color = "good"
	}
	att := webhookAttachment{
		Title: fmt.Sprintf("Target: %s (%s)", name, target.URL),
		Color: color,
		Fields: []webhookField{
			{Title: "Alert Type", Value: string(alert.Type), Short: true},
			{Title: "Status", Value: string(alert.Status), Short: true},
			{Title: "Message", Value: alert.Message},
			{Title: "Triggered At", Value: alert.TriggeredAt.Format(time.RFC3339), Short: true},
		},
	}
	if alert.ResolvedAt != nil {
		att.Fields = append(att.Fields, webhookField{
			Title: "Resolved At", Value: alert.ResolvedAt.Format(time.RFC3339), Short: true,
		})
	}

	body, _ := json.Marshal(webhookPayload{
		Text:        fmt.Sprintf("🚨 Netumo Alert: %s for %s", alert.Type, name),
		Attachments: []webhookAttachment{att},
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("webhook returned %s", resp.Status)
	}
	return nil
}
