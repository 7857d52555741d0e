// internal/models/session.go
package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Session owns exactly one live schedule and the job definitions it was built from
type Session struct {
	ID        string          `json:"id"`
	Jobs      []JobDefinition `json:"jobs"`
	Schedule  Schedule        `json:"schedule"`
	Version   int             `json:"version"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// NewSession creates a new session for a freshly built schedule
func NewSession(jobs []JobDefinition, schedule Schedule) *Session {
	now := time.Now()
	return &Session{
		ID:        uuid.New().String(),
		Jobs:      jobs,
		Schedule:  schedule,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Touch bumps the version after the schedule was replaced or edited
func (s *Session) Touch() {
	s.Version++
	s.UpdatedAt = time.Now()
}

// ToJSON converts the session to JSON
func (s *Session) ToJSON() ([]byte, error) {
	return json.Marshal(s)
}

// FromJSON populates the session from JSON
func (s *Session) FromJSON(data []byte) error {
	return json.Unmarshal(data, s)
}
