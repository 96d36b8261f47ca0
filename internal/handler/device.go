package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/woutervis/wotohe/internal/store"
)

type DeviceHandler struct {
	devices *store.DeviceStore
	logger  *slog.Logger
}

func NewDeviceHandler(devices *store.DeviceStore, logger *slog.Logger) *DeviceHandler {
	return &DeviceHandler{devices: devices, logger: logger}
}

type registerDeviceRequest struct {
	Token    string `json:"token"`
	UserName string `json:"user_name"`
}

// Register handles POST /api/devices
func (h *DeviceHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Token == "" {
		writeError(w, http.StatusBadRequest, "token is required")
		return
	}

	device, err := h.devices.Register(req.Token, req.UserName, r.UserAgent())
	if err != nil {
		h.logger.Error("register device", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to register device")
		return
	}
	writeJSON(w, http.StatusCreated, device)
}

// List handles GET /api/devices
func (h *DeviceHandler) List(w http.ResponseWriter, r *http.Request) {
	devices, err := h.devices.List()
	if err != nil {
		h.logger.Error("list devices", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list devices")
		return
	}
	if devices == nil {
		writeJSON(w, http.StatusOK, []any{})
		return
	}
	writeJSON(w, http.StatusOK, devices)
}

// Unregister handles DELETE /api/devices/{id}
func (h *DeviceHandler) Unregister(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.devices.Delete(id); err != nil {
		h.logger.Error("delete device", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete device")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
