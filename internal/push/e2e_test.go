package push

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/woutervis/wotohe/internal/database"
	"github.com/woutervis/wotohe/internal/model"
	"github.com/woutervis/wotohe/internal/rotation"
	"github.com/woutervis/wotohe/internal/store"
	"github.com/woutervis/wotohe/internal/task"
)

// Completing a chore should close the record, rotate the assignee, and
// push a notification naming whoever just finished — the whole path
// from lifecycle to dispatch.
func TestCompletionNotifiesDevices(t *testing.T) {
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	taskStore := store.NewTaskStore(db)
	deviceStore := store.NewDeviceStore(db)
	cycle, _ := rotation.NewCycle([]string{"Wouter", "Tomas", "Henrik"})
	bus := task.NewBus(testLogger())
	svc := task.NewService(taskStore, cycle, bus, testLogger())

	gw := &fakeGateway{}
	dispatcher := NewDispatcher(gw, deviceStore, testLogger())

	events := bus.Subscribe()
	done := make(chan struct{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		dispatcher.Run(ctx, events)
		close(done)
	}()

	deviceStore.Register("token-a", "Tomas", "")
	deviceStore.Register("token-b", "Henrik", "")

	original, err := taskStore.Create(model.ChoreKitchen, "Wouter")
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	if err := svc.Complete(model.ChoreKitchen); err != nil {
		t.Fatalf("complete: %v", err)
	}

	// Wait for the dispatcher to pick the event up before stopping it.
	deadline := time.Now().Add(2 * time.Second)
	for len(gw.messages()) == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("dispatcher did not stop")
	}

	closed, _ := taskStore.GetByID(original.ID)
	if closed.CompletedAt == nil {
		t.Error("original record was not closed")
	}
	open, _ := taskStore.Open(model.ChoreKitchen)
	if open == nil || open.Assignee != "Tomas" {
		t.Fatalf("open task = %+v, want assignee Tomas", open)
	}

	sent := gw.messages()
	if len(sent) != 1 {
		t.Fatalf("multicasts = %d, want 1", len(sent))
	}
	msg := sent[0]
	if len(msg.Tokens) != 2 {
		t.Errorf("tokens = %d, want 2", len(msg.Tokens))
	}
	if !strings.Contains(msg.Body, "Wouter") {
		t.Errorf("notification body %q should mention who completed the chore", msg.Body)
	}
}
