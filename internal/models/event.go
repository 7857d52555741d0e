// internal/models/event.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// EventType identifies what happened to a session's schedule
type EventType string

const (
	EventScheduleBuilt   EventType = "SCHEDULE_BUILT"
	EventScheduleRebuilt EventType = "SCHEDULE_REBUILT"
	EventTaskMoved       EventType = "TASK_MOVED"
	EventSessionDeleted  EventType = "SESSION_DELETED"
)

// ScheduleEvent is published whenever a session's schedule changes
type ScheduleEvent struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	SessionID  string    `json:"sessionId"`
	Version    int       `json:"version"`
	TaskIndex  *int      `json:"taskIndex,omitempty"`
	Start      *float64  `json:"start,omitempty"`
	Makespan   float64   `json:"makespan"`
	Violations int       `json:"violations"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewScheduleEvent creates an event for the given session state
func NewScheduleEvent(eventType EventType, session *Session, metrics Metrics) *ScheduleEvent {
	return &ScheduleEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		SessionID:  session.ID,
		Version:    session.Version,
		Makespan:   metrics.Makespan,
		Violations: len(metrics.Violations),
		Timestamp:  time.Now(),
	}
}

// MoveRequest is the edit event sent by a UI adapter after a drag ends
type MoveRequest struct {
	SessionID string  `json:"sessionId"`
	TaskIndex int     `json:"taskIndex"`
	Start     float64 `json:"start"`
}
