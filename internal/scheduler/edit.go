// internal/scheduler/edit.go
package scheduler

import (
	"fmt"
	"math"

	"github.com/fawad-mazhar/shopfloor/internal/models"
)

// MoveTask returns a copy of the schedule with one task's start replaced.
//
// Negative starts are clamped to 0; a start whose end overflows is rejected. Nothing else moves and no feasibility check
// runs; call Analyze on the result to see what the edit broke.
func MoveTask(s models.Schedule, index int, start float64) (models.Schedule, error) {
	if index < 0 || index >= len(s.Tasks) {
		return models.Schedule{}, fmt.Errorf("%w: index %d, schedule has %d tasks", ErrTaskNotFound, index, len(s.Tasks))
	}
	if math.IsNaN(start) || math.IsInf(start, 0) {
		return models.Schedule{}, fmt.Errorf("%w: %v", ErrInvalidStart, start)
	}

	start = math.Max(0, start)
	if math.IsInf(start+s.Tasks[index].Duration, 0) {
		return models.Schedule{}, fmt.Errorf("%w: %v puts the task end out of range", ErrInvalidStart, start)
	}

	moved := s.Clone()
	moved.Tasks[index].Start = start
	return moved, nil
}
