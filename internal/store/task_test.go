package store

import (
	"testing"
	"time"

	"github.com/woutervis/wotohe/internal/database"
	"github.com/woutervis/wotohe/internal/model"
)

func setupTestDB(t *testing.T) (*TaskStore, *DeviceStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewTaskStore(db), NewDeviceStore(db)
}

func TestCreateAssignsIDAndCreatedAt(t *testing.T) {
	ts, _ := setupTestDB(t)

	task, err := ts.Create(model.ChoreKitchen, "Wouter")
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if task.ID == "" {
		t.Error("expected store-assigned id")
	}
	if task.Type != model.ChoreKitchen {
		t.Errorf("type = %q, want %q", task.Type, model.ChoreKitchen)
	}
	if task.Assignee != "Wouter" {
		t.Errorf("assignee = %q, want %q", task.Assignee, "Wouter")
	}
	if task.CreatedAt == nil {
		t.Error("expected created_at to be set")
	}
	if !task.Open() {
		t.Error("new task should be open")
	}
}

func TestOpenFiltersClosedRecords(t *testing.T) {
	ts, _ := setupTestDB(t)

	closed, err := ts.Create(model.ChoreBathroom, "Tomas")
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if err := ts.Close(closed.ID, time.Now()); err != nil {
		t.Fatalf("close task: %v", err)
	}

	open, err := ts.Open(model.ChoreBathroom)
	if err != nil {
		t.Fatalf("open query: %v", err)
	}
	if open != nil {
		t.Fatalf("expected no open task, got %+v", open)
	}

	created, err := ts.Create(model.ChoreBathroom, "Henrik")
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	open, err = ts.Open(model.ChoreBathroom)
	if err != nil {
		t.Fatalf("open query: %v", err)
	}
	if open == nil {
		t.Fatal("expected an open task")
	}
	if open.ID != created.ID {
		t.Errorf("open id = %s, want %s", open.ID, created.ID)
	}
}

func TestOpenIsScopedToCollection(t *testing.T) {
	ts, _ := setupTestDB(t)

	if _, err := ts.Create(model.ChoreKitchen, "Wouter"); err != nil {
		t.Fatalf("create task: %v", err)
	}

	open, err := ts.Open(model.ChorePlants)
	if err != nil {
		t.Fatalf("open query: %v", err)
	}
	if open != nil {
		t.Errorf("plants should have no open task, got %+v", open)
	}
}

func TestLastCompleted(t *testing.T) {
	ts, _ := setupTestDB(t)

	if got, err := ts.LastCompleted(model.ChoreKitchen); err != nil || got != nil {
		t.Fatalf("expected nil last completion for empty collection, got %v, %v", got, err)
	}

	older := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	newer := time.Date(2026, 8, 20, 9, 30, 0, 0, time.UTC)

	t1, _ := ts.Create(model.ChoreKitchen, "Wouter")
	if err := ts.Close(t1.ID, older); err != nil {
		t.Fatalf("close task: %v", err)
	}
	t2, _ := ts.Create(model.ChoreKitchen, "Tomas")
	if err := ts.Close(t2.ID, newer); err != nil {
		t.Fatalf("close task: %v", err)
	}

	got, err := ts.LastCompleted(model.ChoreKitchen)
	if err != nil {
		t.Fatalf("last completed: %v", err)
	}
	if got == nil || !got.Equal(newer) {
		t.Errorf("last completed = %v, want %v", got, newer)
	}
}

func TestCloseUnknownID(t *testing.T) {
	ts, _ := setupTestDB(t)
	if err := ts.Close("no-such-id", time.Now()); err == nil {
		t.Fatal("expected error closing unknown task")
	}
}

func TestLatestByCreated(t *testing.T) {
	ts, _ := setupTestDB(t)

	got, err := ts.LatestByCreated(model.ChoreFloor)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for empty collection, got %+v", got)
	}

	first, _ := ts.Create(model.ChoreFloor, "Wouter")
	time.Sleep(5 * time.Millisecond)
	second, _ := ts.Create(model.ChoreFloor, "Tomas")

	got, err = ts.LatestByCreated(model.ChoreFloor)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if got == nil || got.ID != second.ID {
		t.Errorf("latest = %+v, want id %s (not %s)", got, second.ID, first.ID)
	}
}

func TestCountForType(t *testing.T) {
	ts, _ := setupTestDB(t)

	n, err := ts.CountForType(model.ChorePlants)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Fatalf("count = %d, want 0", n)
	}

	task, _ := ts.Create(model.ChorePlants, "Henrik")
	ts.Close(task.ID, time.Now())
	ts.Create(model.ChorePlants, "Wouter")

	n, err = ts.CountForType(model.ChorePlants)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 2 {
		t.Errorf("count = %d, want 2", n)
	}
}
