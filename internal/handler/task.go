package handler

import (
	"log/slog"
	"net/http"

	"github.com/woutervis/wotohe/internal/model"
	"github.com/woutervis/wotohe/internal/task"
)

type TaskHandler struct {
	service *task.Service
	logger  *slog.Logger
}

func NewTaskHandler(service *task.Service, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{service: service, logger: logger}
}

// Board handles GET /api/board
func (h *TaskHandler) Board(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.Board()
	if err != nil {
		h.logger.Error("build board", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load board")
		return
	}
	if entries == nil {
		entries = []model.BoardEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// GetOpen handles GET /api/tasks/{type}
func (h *TaskHandler) GetOpen(w http.ResponseWriter, r *http.Request) {
	choreType := model.ChoreType(r.PathValue("type"))
	if !choreType.Valid() {
		writeError(w, http.StatusBadRequest, "unknown chore type")
		return
	}

	open, err := h.service.OpenTask(choreType)
	if err != nil {
		h.logger.Error("get open task", "type", choreType, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load task")
		return
	}
	if open == nil {
		writeError(w, http.StatusNotFound, "no open task")
		return
	}
	writeJSON(w, http.StatusOK, open)
}

// Complete handles POST /api/tasks/{type}/complete
func (h *TaskHandler) Complete(w http.ResponseWriter, r *http.Request) {
	choreType := model.ChoreType(r.PathValue("type"))
	if !choreType.Valid() {
		writeError(w, http.StatusBadRequest, "unknown chore type")
		return
	}

	if err := h.service.Complete(choreType); err != nil {
		h.logger.Error("complete task", "type", choreType, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to complete task, please try again")
		return
	}

	open, err := h.service.OpenTask(choreType)
	if err != nil {
		h.logger.Error("load next task", "type", choreType, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load next task")
		return
	}
	if open == nil {
		// Completing with no open task is a no-op; nothing to return.
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, open)
}
