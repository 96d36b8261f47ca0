package task

import (
	"log/slog"
	"sync"
	"time"

	"github.com/woutervis/wotohe/internal/model"
)

// CompletedEvent is published whenever an open task is closed. The
// assignee is the person who just completed the chore, taken from the
// record's state before it was closed.
type CompletedEvent struct {
	Type        model.ChoreType
	Assignee    string
	CompletedAt time.Time
}

const subscriberBufferSize = 16

// Bus fans CompletedEvents out to subscribers. Publishing never blocks:
// a subscriber that falls behind loses events rather than stalling the
// completion path.
type Bus struct {
	mu     sync.RWMutex
	subs   []chan CompletedEvent
	logger *slog.Logger
}

func NewBus(logger *slog.Logger) *Bus {
	return &Bus{logger: logger}
}

// Subscribe returns a channel receiving all future events.
func (b *Bus) Subscribe() <-chan CompletedEvent {
	ch := make(chan CompletedEvent, subscriberBufferSize)
	b.mu.Lock()
	b.subs = append(b.subs, ch)
	b.mu.Unlock()
	return ch
}

// Publish delivers an event to every subscriber.
func (b *Bus) Publish(ev CompletedEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
			b.logger.Warn("dropping task event, subscriber buffer full", "type", ev.Type)
		}
	}
}
