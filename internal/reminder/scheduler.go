// Package reminder nags the household about chores that have been
// sitting open too long.
package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/woutervis/wotohe/internal/model"
	"github.com/woutervis/wotohe/internal/push"
)

const (
	// thresholdDays is how long a task may stay open before a reminder
	// goes out.
	thresholdDays = 5
	// missingCreatedAtDays stands in for the age of records without a
	// created_at, so they always trip the threshold.
	missingCreatedAtDays = 9999

	defaultInterval = 24 * time.Hour
)

// TaskSource supplies the newest record per chore type.
type TaskSource interface {
	LatestByCreated(model.ChoreType) (*model.Task, error)
}

// Broadcaster sends one notification to every registered device.
type Broadcaster interface {
	Broadcast(ctx context.Context, title, body string)
}

// Scheduler periodically checks each chore type for an overdue open
// task and sends a reminder to all devices.
type Scheduler struct {
	mu       sync.RWMutex
	tasks    TaskSource
	notifier Broadcaster
	interval time.Duration
	logger   *slog.Logger
	now      func() time.Time
	cancel   context.CancelFunc
	done     chan struct{}
}

func NewScheduler(tasks TaskSource, notifier Broadcaster, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		tasks:    tasks,
		notifier: notifier,
		interval: defaultInterval,
		logger:   logger,
		now:      time.Now,
	}
}

// Start begins the daily reminder loop.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.RunOnce(ctx)
			}
		}
	}()
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	s.mu.RLock()
	cancel := s.cancel
	done := s.done
	s.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// RunOnce performs a single reminder sweep over all chore types. A
// failure on one type is logged and does not stop the others.
func (s *Scheduler) RunOnce(ctx context.Context) {
	for _, choreType := range model.AllChoreTypes {
		if err := s.checkType(ctx, choreType); err != nil {
			s.logger.Error("reminder check failed", "type", choreType, "error", err)
		}
	}
}

func (s *Scheduler) checkType(ctx context.Context, choreType model.ChoreType) error {
	latest, err := s.tasks.LatestByCreated(choreType)
	if err != nil {
		return fmt.Errorf("latest task: %w", err)
	}
	if latest == nil {
		return nil
	}

	days := s.ageInDays(latest)
	if days < thresholdDays {
		return nil
	}

	title, body, ok := push.ReminderMessage(choreType, latest.Assignee, days)
	if !ok {
		s.logger.Warn("no reminder template for chore type", "type", choreType)
		return nil
	}

	s.logger.Info("sending overdue reminder", "type", choreType, "assignee", latest.Assignee, "days", days)
	s.notifier.Broadcast(ctx, title, body)
	return nil
}

// ageInDays is the whole number of days since the task was created,
// never negative. A record without created_at counts as very old so it
// always triggers a reminder.
func (s *Scheduler) ageInDays(t *model.Task) int {
	if t.CreatedAt == nil {
		return missingCreatedAtDays
	}
	days := int(s.now().Sub(*t.CreatedAt).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}
