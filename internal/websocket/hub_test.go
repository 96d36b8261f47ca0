package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/woutervis/wotohe/internal/model"
)

// mockClient creates a Client with a send channel but no real connection.
func mockClient(hub *Hub) *Client {
	return &Client{
		hub:  hub,
		conn: nil,
		send: make(chan []byte, sendBufferSize),
	}
}

func TestRegisterUnregister(t *testing.T) {
	hub := NewHub(slog.Default())

	c1 := mockClient(hub)
	c2 := mockClient(hub)

	hub.Register(c1)
	hub.Register(c2)

	if got := hub.ClientCount(); got != 2 {
		t.Fatalf("expected 2 clients, got %d", got)
	}

	hub.Unregister(c1)

	if got := hub.ClientCount(); got != 1 {
		t.Fatalf("expected 1 client after unregister, got %d", got)
	}

	hub.Unregister(c2)

	if got := hub.ClientCount(); got != 0 {
		t.Fatalf("expected 0 clients, got %d", got)
	}
}

func TestDoubleUnregister(t *testing.T) {
	hub := NewHub(slog.Default())
	c := mockClient(hub)
	hub.Register(c)
	hub.Unregister(c)
	// Should not panic
	hub.Unregister(c)

	if got := hub.ClientCount(); got != 0 {
		t.Fatalf("expected 0 clients, got %d", got)
	}
}

func TestBroadcastBoard(t *testing.T) {
	hub := NewHub(slog.Default())

	c1 := mockClient(hub)
	c2 := mockClient(hub)
	hub.Register(c1)
	hub.Register(c2)

	last := time.Date(2026, 8, 20, 19, 0, 0, 0, time.UTC)
	msg := BoardMessage([]model.BoardEntry{
		{Type: model.ChoreKitchen, Assignee: "Wouter", LastCompleted: &last},
		{Type: model.ChorePlants, Assignee: "Henrik"},
	})
	hub.Broadcast(msg)

	for _, c := range []*Client{c1, c2} {
		select {
		case data := <-c.send:
			var got Message
			if err := json.Unmarshal(data, &got); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got.Type != "board" {
				t.Errorf("expected type board, got %s", got.Type)
			}
			if len(got.Board) != 2 {
				t.Fatalf("expected 2 board entries, got %d", len(got.Board))
			}
			if got.Board[0].Assignee != "Wouter" {
				t.Errorf("expected assignee Wouter, got %s", got.Board[0].Assignee)
			}
			if got.Board[0].LastCompleted == nil || !got.Board[0].LastCompleted.Equal(last) {
				t.Errorf("expected last completed %v, got %v", last, got.Board[0].LastCompleted)
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatal("timeout waiting for message")
		}
	}

	hub.Unregister(c1)
	hub.Unregister(c2)
}

func TestBroadcastEmptyHub(t *testing.T) {
	hub := NewHub(slog.Default())
	// Should not panic
	hub.Broadcast(CompletionMessage(model.ChoreKitchen, "Wouter"))
}

func TestBroadcastFullBuffer(t *testing.T) {
	hub := NewHub(slog.Default())

	c := mockClient(hub)
	hub.Register(c)

	// Fill the send buffer
	for i := 0; i < sendBufferSize; i++ {
		hub.Broadcast(CompletionMessage(model.ChoreFloor, "Tomas"))
	}

	// This should drop the message, not panic or block
	hub.Broadcast(CompletionMessage(model.ChoreFloor, "dropped"))

	// Drain to verify buffer was full
	count := 0
	for {
		select {
		case <-c.send:
			count++
		default:
			goto done
		}
	}
done:
	if count != sendBufferSize {
		t.Errorf("expected %d messages, got %d", sendBufferSize, count)
	}

	hub.Unregister(c)
}

func TestCompletionMessage(t *testing.T) {
	msg := CompletionMessage(model.ChoreBathroom, "Tomas")
	if msg.Type != "task_completed" {
		t.Errorf("expected type task_completed, got %s", msg.Type)
	}
	if msg.ChoreType != model.ChoreBathroom {
		t.Errorf("expected chore type bathroom, got %s", msg.ChoreType)
	}
	if msg.CompletedBy != "Tomas" {
		t.Errorf("expected completed by Tomas, got %s", msg.CompletedBy)
	}
}

func TestConcurrentAccess(t *testing.T) {
	hub := NewHub(slog.Default())
	var wg sync.WaitGroup

	// Spawn goroutines that register, broadcast, and unregister concurrently
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := mockClient(hub)
			hub.Register(c)
			hub.Broadcast(CompletionMessage(model.ChoreKitchen, "x"))
			// Drain any messages
			for {
				select {
				case <-c.send:
				default:
					hub.Unregister(c)
					return
				}
			}
		}()
	}

	wg.Wait()

	if got := hub.ClientCount(); got != 0 {
		t.Errorf("expected 0 clients after concurrent test, got %d", got)
	}
}
