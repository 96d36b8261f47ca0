package push

import (
	"context"
	"log/slog"

	"github.com/woutervis/wotohe/internal/model"
	"github.com/woutervis/wotohe/internal/task"
)

// DeviceStore is the slice of device persistence the dispatcher needs.
type DeviceStore interface {
	List() ([]model.Device, error)
	DeleteBatch(ids []string) error
}

// Dispatcher fans completed-task notifications out to every registered
// device and deletes registrations whose tokens the gateway reports
// permanently dead.
type Dispatcher struct {
	gateway Gateway
	devices DeviceStore
	logger  *slog.Logger
}

func NewDispatcher(gateway Gateway, devices DeviceStore, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{gateway: gateway, devices: devices, logger: logger}
}

// Run consumes completion events until the context is cancelled or the
// channel closes. Each event is handled to completion before the next.
func (d *Dispatcher) Run(ctx context.Context, events <-chan task.CompletedEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			d.NotifyCompletion(ctx, ev.Type, ev.Assignee)
		}
	}
}

// NotifyCompletion sends the per-type completion notification for a
// closed task. Delivery is best effort: every failure is logged, none
// propagates.
func (d *Dispatcher) NotifyCompletion(ctx context.Context, choreType model.ChoreType, assignee string) {
	title, body, ok := CompletionMessage(choreType, assignee)
	if !ok {
		d.logger.Warn("no notification template for chore type", "type", choreType)
		return
	}
	d.Broadcast(ctx, title, body)
}

// Broadcast sends one multicast to every registered device, then prunes
// devices whose tokens failed with a permanent error code.
func (d *Dispatcher) Broadcast(ctx context.Context, title, body string) {
	devices, err := d.devices.List()
	if err != nil {
		d.logger.Error("list devices", "error", err)
		return
	}
	if len(devices) == 0 {
		d.logger.Warn("no registered devices, skipping notification", "title", title)
		return
	}

	tokens := make([]string, len(devices))
	deviceByToken := make(map[string]string, len(devices))
	for i, dev := range devices {
		tokens[i] = dev.Token
		deviceByToken[dev.Token] = dev.ID
	}

	result, err := d.gateway.SendMulticast(ctx, Message{Title: title, Body: body, Tokens: tokens})
	if err != nil {
		d.logger.Error("send multicast", "error", err)
		return
	}

	if result.FailureCount > 0 {
		var failedTokens []string
		var deadDeviceIDs []string
		for _, resp := range result.Responses {
			if resp.Success {
				continue
			}
			failedTokens = append(failedTokens, resp.Token)
			if resp.Code.Permanent() {
				if id, found := deviceByToken[resp.Token]; found {
					deadDeviceIDs = append(deadDeviceIDs, id)
				}
			}
		}

		if len(deadDeviceIDs) > 0 {
			if err := d.devices.DeleteBatch(deadDeviceIDs); err != nil {
				d.logger.Error("prune dead devices", "error", err)
			} else {
				d.logger.Info("cleaned up dead device registrations", "count", len(deadDeviceIDs))
			}
		}

		d.logger.Error("failed to deliver to some tokens", "failed", len(failedTokens))
	}

	d.logger.Info("notification sent",
		"title", title,
		"success", result.SuccessCount,
		"failed", result.FailureCount,
	)
}
