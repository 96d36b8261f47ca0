// Package task owns the chore task lifecycle: the merged board view of
// open tasks per type, and the close-then-reassign transition when a
// chore is completed.
package task

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/woutervis/wotohe/internal/model"
	"github.com/woutervis/wotohe/internal/rotation"
)

// Store is the slice of task persistence the service needs.
type Store interface {
	Open(model.ChoreType) (*model.Task, error)
	LastCompleted(model.ChoreType) (*time.Time, error)
	Create(model.ChoreType, string) (*model.Task, error)
	Close(id string, completedAt time.Time) error
	CountForType(model.ChoreType) (int, error)
}

type Service struct {
	store  Store
	cycle  *rotation.Cycle
	bus    *Bus
	logger *slog.Logger
	now    func() time.Time
}

func NewService(store Store, cycle *rotation.Cycle, bus *Bus, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		cycle:  cycle,
		bus:    bus,
		logger: logger,
		now:    time.Now,
	}
}

// Complete closes the open task for a chore type and creates the next
// one, assigned to the next participant in the rotation. With no open
// task it logs and returns nil.
//
// The close and the create are two separate store writes with no
// transaction around them: two callers racing the same type can both
// observe the same open record and leave the type with two open tasks.
// A conditional write would fix this; the sequential protocol is kept
// deliberately, matching how the store is actually used.
func (s *Service) Complete(choreType model.ChoreType) error {
	open, err := s.store.Open(choreType)
	if err != nil {
		return fmt.Errorf("find open task: %w", err)
	}
	if open == nil {
		s.logger.Warn("no open task to complete", "type", choreType)
		return nil
	}

	completedBy := open.Assignee
	completedAt := s.now().UTC()

	if err := s.store.Close(open.ID, completedAt); err != nil {
		return fmt.Errorf("close task: %w", err)
	}

	next := s.cycle.Next(completedBy)
	if _, err := s.store.Create(choreType, next); err != nil {
		// The old task is already closed; the type now has no open
		// record until someone completes the write. Surface the error.
		return fmt.Errorf("create next task: %w", err)
	}

	s.logger.Info("task completed",
		"type", choreType,
		"completed_by", completedBy,
		"next_assignee", next,
	)

	s.bus.Publish(CompletedEvent{
		Type:        choreType,
		Assignee:    completedBy,
		CompletedAt: completedAt,
	})
	return nil
}

// OpenTask returns the open task for a type, or nil when there is none.
func (s *Service) OpenTask(choreType model.ChoreType) (*model.Task, error) {
	return s.store.Open(choreType)
}

// Board merges the open task and last completion per chore type. Types
// without an open task are omitted entirely, whatever their completion
// history.
func (s *Service) Board() ([]model.BoardEntry, error) {
	var entries []model.BoardEntry
	for _, t := range model.AllChoreTypes {
		open, err := s.store.Open(t)
		if err != nil {
			return nil, fmt.Errorf("open task for %s: %w", t, err)
		}
		if open == nil {
			continue
		}
		last, err := s.store.LastCompleted(t)
		if err != nil {
			return nil, fmt.Errorf("last completion for %s: %w", t, err)
		}
		entries = append(entries, model.BoardEntry{
			Type:          t,
			Assignee:      open.Assignee,
			LastCompleted: last,
		})
	}
	return entries, nil
}

// Seed creates an initial open task for every chore type whose
// collection is empty, assigned to the first participant in the cycle.
func (s *Service) Seed() error {
	first := s.cycle.Names()[0]
	for _, t := range model.AllChoreTypes {
		n, err := s.store.CountForType(t)
		if err != nil {
			return fmt.Errorf("count %s: %w", t, err)
		}
		if n > 0 {
			continue
		}
		if _, err := s.store.Create(t, first); err != nil {
			return fmt.Errorf("seed %s: %w", t, err)
		}
		s.logger.Info("seeded initial task", "type", t, "assignee", first)
	}
	return nil
}
