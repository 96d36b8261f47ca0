package websocket

import (
	"encoding/json"
	"log"
	"net/http"

	ws "github.com/coder/websocket"
)

// SnapshotFunc produces the current board message so a client joining
// mid-stream starts from the live state instead of waiting for the next
// change.
type SnapshotFunc func() (Message, error)

// HandleWebSocket returns an HTTP handler that upgrades connections to
// WebSocket, sends an initial board snapshot, and runs them as Hub
// clients.
func HandleWebSocket(hub *Hub, snapshot SnapshotFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := ws.Accept(w, r, &ws.AcceptOptions{
			InsecureSkipVerify: true, // Allow connections from any origin (household LAN)
		})
		if err != nil {
			log.Printf("websocket: accept: %v", err)
			return
		}

		client := NewClient(hub, conn)

		if snapshot != nil {
			if msg, err := snapshot(); err == nil {
				if data, err := json.Marshal(msg); err == nil {
					client.send <- data
				}
			} else {
				log.Printf("websocket: board snapshot: %v", err)
			}
		}

		client.Run(r.Context())
	}
}
