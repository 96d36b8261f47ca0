package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/woutervis/wotohe/internal/backup"
	"github.com/woutervis/wotohe/internal/handler"
	"github.com/woutervis/wotohe/internal/middleware"
	"github.com/woutervis/wotohe/internal/push"
	"github.com/woutervis/wotohe/internal/reminder"
	"github.com/woutervis/wotohe/internal/rotation"
	"github.com/woutervis/wotohe/internal/store"
	"github.com/woutervis/wotohe/internal/task"
	ws "github.com/woutervis/wotohe/internal/websocket"
)

type Server struct {
	db         *sql.DB
	hub        *ws.Hub
	bus        *task.Bus
	taskSvc    *task.Service
	taskH      *handler.TaskHandler
	deviceH    *handler.DeviceHandler
	gateway    *push.WebPushGateway
	dispatcher *push.Dispatcher
	reminder   *reminder.Scheduler
	backupMgr  *backup.Manager
	logger     *slog.Logger
}

func New(db *sql.DB, cycle *rotation.Cycle, pushCfg push.Config, backupCfg backup.Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))
	bus := task.NewBus(logger.With("component", "events"))

	taskStore := store.NewTaskStore(db)
	deviceStore := store.NewDeviceStore(db)

	taskSvc := task.NewService(taskStore, cycle, bus, logger.With("component", "task"))

	s := &Server{
		db:        db,
		hub:       hub,
		bus:       bus,
		taskSvc:   taskSvc,
		taskH:     handler.NewTaskHandler(taskSvc, logger.With("component", "task_handler")),
		deviceH:   handler.NewDeviceHandler(deviceStore, logger.With("component", "device_handler")),
		backupMgr: backup.NewManager(backupCfg, db, logger.With("component", "backup")),
		logger:    logger,
	}

	// Push delivery needs VAPID keys; without them the app still runs,
	// it just never notifies anyone.
	if pushCfg.VAPIDPublicKey != "" && pushCfg.VAPIDPrivateKey != "" {
		s.gateway = push.NewWebPushGateway(pushCfg)
		s.dispatcher = push.NewDispatcher(s.gateway, deviceStore, logger.With("component", "push"))
		s.reminder = reminder.NewScheduler(taskStore, s.dispatcher, logger.With("component", "reminder"))
	} else {
		logger.Warn("VAPID keys not configured, push notifications disabled")
	}

	return s
}

// Start seeds the board and launches the background loops: completion
// dispatch, live board broadcasting, reminders, and backups.
func (s *Server) Start(ctx context.Context) error {
	if err := s.taskSvc.Seed(); err != nil {
		return err
	}

	go s.broadcastLoop(ctx, s.bus.Subscribe())

	if s.dispatcher != nil {
		go s.dispatcher.Run(ctx, s.bus.Subscribe())
	}
	if s.reminder != nil {
		s.reminder.Start(ctx)
	}
	s.backupMgr.Start(ctx)
	return nil
}

// Stop shuts the background loops down.
func (s *Server) Stop() {
	if s.reminder != nil {
		s.reminder.Stop()
	}
	s.backupMgr.Stop()
}

// broadcastLoop pushes a completion notice and a fresh board snapshot
// to websocket clients after every task transition.
func (s *Server) broadcastLoop(ctx context.Context, events <-chan task.CompletedEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			s.hub.Broadcast(ws.CompletionMessage(ev.Type, ev.Assignee))

			board, err := s.taskSvc.Board()
			if err != nil {
				s.logger.Error("refresh board", "error", err)
				continue
			}
			s.hub.Broadcast(ws.BoardMessage(board))
		}
	}
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)

	mux.HandleFunc("GET /api/board", s.taskH.Board)
	mux.HandleFunc("GET /api/tasks/{type}", s.taskH.GetOpen)
	mux.HandleFunc("POST /api/tasks/{type}/complete", s.taskH.Complete)

	mux.HandleFunc("POST /api/devices", s.deviceH.Register)
	mux.HandleFunc("GET /api/devices", s.deviceH.List)
	mux.HandleFunc("DELETE /api/devices/{id}", s.deviceH.Unregister)

	if s.gateway != nil {
		mux.HandleFunc("GET /api/push/vapid-key", s.vapidKeyHandler)
	}

	mux.Handle("GET /ws", ws.HandleWebSocket(s.hub, func() (ws.Message, error) {
		board, err := s.taskSvc.Board()
		if err != nil {
			return ws.Message{}, err
		}
		return ws.BoardMessage(board), nil
	}))

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) vapidKeyHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"public_key": s.gateway.VAPIDPublicKey()})
}
