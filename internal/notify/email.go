package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/hamed0406/netumo/internal/config"
	"github.com/hamed0406/netumo/internal/domain"
)

// Email sends alert notifications over SMTP.
type Email struct {
	client *mail.Client
	from   string
	to     string
}

// NewEmail returns nil when no MAIL_HOST is configured; a nil channel is
// skipped by the dispatcher.
func NewEmail(cfg config.MailConfig) (*Email, error) {
	if strings.TrimSpace(cfg.Host) == "" {
		return nil, nil
	}
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if cfg.User != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.User),
			mail.WithPassword(cfg.Pass),
		)
	}
	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("mail client: %w", err)
	}
	return &Email{client: client, from: cfg.From, to: cfg.To}, nil
}

func (e *Email) Send(ctx context.Context, alert *domain.Alert, target *domain.Target) error {
	name := target.Name
	if name == "" {
		name = target.URL
	}
	// per-target recipient wins over the global one
	to := e.to
	if target.NotificationEmail != "" {
		to = target.NotificationEmail
	}

	msg := mail.NewMsg()
	if err := msg.From(e.from); err != nil {
		return err
	}
	if err := msg.To(to); err != nil {
		return err
	}
	msg.Subject(fmt.Sprintf("[Netumo Alert] %s - %s", alert.Type, name))
	msg.SetBodyString(mail.TypeTextPlain, emailBody(alert, target))

	return e.client.DialAndSendWithContext(ctx, msg)
}

func emailBody(alert *domain.Alert, target *domain.Target) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Target: %s (%s)\n", target.Name, target.URL)
	fmt.Fprintf(&b, "Alert Type: %s\n", alert.Type)
	fmt.Fprintf(&b, "Status: %s\n", alert.Status)
	fmt.Fprintf(&b, "Message: %s\n", alert.Message)
	fmt.Fprintf(&b, "Triggered At: %s\n", alert.TriggeredAt.Format(time.RFC3339))
	if alert.ResolvedAt != nil {
		fmt.Fprintf(&b, "Resolved At: %s\n", alert.ResolvedAt.Format(time.RFC3339))
	}
	if len(alert.Details) > 0 {
		if raw, err := json.MarshalIndent(alert.Details, "", "  "); err == nil {
			fmt.Fprintf(&b, "Details:\n%s\n", raw)
		}
	}
	return b.String()
}
