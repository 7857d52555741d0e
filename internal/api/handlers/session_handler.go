// internal/api/handlers/session_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/fawad-mazhar/shopfloor/internal/config"
	"github.com/fawad-mazhar/shopfloor/internal/jobspec"
	"github.com/fawad-mazhar/shopfloor/internal/models"
	"github.com/fawad-mazhar/shopfloor/internal/scheduler"
	"github.com/fawad-mazhar/shopfloor/internal/session"
	"github.com/go-chi/chi/v5"
)

type SessionHandler struct {
	svc  *session.Service
	demo config.SchedulerConfig
}

func NewSessionHandler(svc *session.Service, demo config.SchedulerConfig) *SessionHandler {
	return &SessionHandler{
		svc:  svc,
		demo: demo,
	}
}

// CreateSessionRequest carries either structured jobs or the text form,
// one job per line of "machine,duration" pairs.
type CreateSessionRequest struct {
	MachineCount int                    `json:"machineCount"`
	Jobs         []models.JobDefinition `json:"jobs"`
	Text         string                 `json:"text"`
}

type MoveTaskRequest struct {
	TaskIndex *int     `json:"taskIndex"`
	Start     *float64 `json:"start"`
}

type BatchRequest struct {
	Sets []session.BatchInput `json:"sets"`
}

// SessionResponse is a session with the metrics of its current schedule
type SessionResponse struct {
	*models.Session
	Metrics models.Metrics `json:"metrics"`
}

type BatchResultResponse struct {
	Schedule *models.Schedule `json:"schedule,omitempty"`
	Metrics  *models.Metrics  `json:"metrics,omitempty"`
	Error    string           `json:"error,omitempty"`
}

func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	jobs := req.Jobs
	if req.Text != "" {
		if len(jobs) > 0 {
			http.Error(w, "send either jobs or text, not both", http.StatusBadRequest)
			return
		}
		parsed, err := jobspec.ParseLines(req.Text)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		jobs = parsed
	}

	s, err := h.svc.Create(r.Context(), jobs, req.MachineCount)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, newSessionResponse(s))
}

// CreateDemoSession builds the configured demo job set, falling back to the
// built-in three job demo.
func (h *SessionHandler) CreateDemoSession(w http.ResponseWriter, r *http.Request) {
	jobs, machineCount := h.demo.Jobs, h.demo.MachineCount
	if len(jobs) == 0 {
		jobs, machineCount = jobspec.Demo()
	}

	s, err := h.svc.Create(r.Context(), jobs, machineCount)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, newSessionResponse(s))
}

func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newSessionResponse(s))
}

func (h *SessionHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	m, err := h.svc.Metrics(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, m)
}

func (h *SessionHandler) MoveTask(w http.ResponseWriter, r *http.Request) {
	var req MoveTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.TaskIndex == nil || req.Start == nil {
		http.Error(w, "taskIndex and start are required", http.StatusBadRequest)
		return
	}

	s, err := h.svc.Move(r.Context(), chi.URLParam(r, "id"), *req.TaskIndex, *req.Start)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newSessionResponse(s))
}

func (h *SessionHandler) RebuildSession(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.Rebuild(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newSessionResponse(s))
}

func (h *SessionHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.svc.Get(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="schedule.txt"`)
	if err := h.svc.Report(r.Context(), id, w); err != nil {
		log.Printf("Failed to write report for session %s: %v", id, err)
	}
}

func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) BuildBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	results := h.svc.BuildBatch(r.Context(), req.Sets)

	response := make([]BatchResultResponse, len(results))
	for i := range results {
		if results[i].Err != nil {
			response[i].Error = results[i].Err.Error()
			continue
		}
		response[i].Schedule = &results[i].Schedule
		response[i].Metrics = &results[i].Metrics
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"results": response,
	})
}

func newSessionResponse(s *models.Session) SessionResponse {
	return SessionResponse{
		Session: s,
		Metrics: scheduler.Analyze(s.Schedule),
	}
}

// writeJSON encodes v before touching the response so an encoding failure
// can still be reported as a 500
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("Failed to encode response: %v", err)
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(status)
	if _, err := w.Write(append(data, '\n')); err != nil {
		log.Printf("Failed to write response: %v", err)
	}
}

// writeError maps service errors to status codes
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		http.Error(w, "session not found", http.StatusNotFound)
	case errors.Is(err, scheduler.ErrTaskNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case scheduler.IsConfigError(err), errors.Is(err, scheduler.ErrInvalidStart):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		log.Printf("Request failed: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
