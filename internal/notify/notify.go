package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/hamed0406/netumo/internal/domain"
)

// Channel sends one alert notification over one medium.
type Channel interface {
	Send(ctx context.Context, alert *domain.Alert, target *domain.Target) error
}

// Dispatcher fans an alert out to every configured channel. Channels are
// independent and best-effort: one failing must not block the others.
type Dispatcher struct {
	log      *zap.Logger
	channels []Channel
}

func NewDispatcher(log *zap.Logger, channels ...Channel) *Dispatcher {
	var active []Channel
	for _, c := range channels {
		if c != nil {
			active = append(active, c)
		}
	}
	return &Dispatcher{log: log, channels: active}
}

// Dispatch attempts every channel and returns the first error only if all
// attempted channels failed. A fully unconfigured dispatcher succeeds
// trivially.
func (d *Dispatcher) Dispatch(ctx context.Context, alert *domain.Alert, target *domain.Target) error {
	var firstErr error
	failures := 0
	for _, c := range d.channels {
		if err := c.Send(ctx, alert, target); err != nil {
			failures++
			if firstErr == nil {
				firstErr = err
			}
			d.log.Warn("notify_channel_failed",
				zap.String("alert_id", string(alert.ID)),
				zap.String("alert_type", string(alert.Type)),
				zap.Error(err),
			)
		}
	}
	if failures > 0 && failures == len(d.channels) {
		return firstErr
	}
	return nil
}
