// internal/api/handlers/status_handler.go
package handlers

import (
	"net/http"
	"time"

	"github.com/fawad-mazhar/shopfloor/internal/session"
)

type StatusHandler struct {
	svc *session.Service
}

func NewStatusHandler(svc *session.Service) *StatusHandler {
	return &StatusHandler{
		svc: svc,
	}
}

type SystemStatus struct {
	Sessions  int       `json:"sessions"`
	Timestamp time.Time `json:"timestamp"`
}

func (h *StatusHandler) GetSystemStatus(w http.ResponseWriter, r *http.Request) {
	count, err := h.svc.Count(r.Context())
	if err != nil {
		http.Error(w, "failed to get system status", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, SystemStatus{
		Sessions:  count,
		Timestamp: time.Now(),
	})
}
