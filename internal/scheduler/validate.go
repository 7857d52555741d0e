// internal/scheduler/validate.go
package scheduler

import (
	"fmt"
	"math"

	"github.com/fawad-mazhar/shopfloor/internal/models"
)

// MaxMachines bounds the machine count of a schedule. Per-machine state is
// allocated up front, so the count has to be small enough to allocate.
const MaxMachines = 1024

// MachineCount derives the machine count from the highest machine id referenced.
// Ids at or above MaxMachines yield MaxMachines+1, which Validate rejects.
func MachineCount(jobs []models.JobDefinition) int {
	count := 0
	for _, job := range jobs {
		for _, op := range job.Operations {
			if id := min(op.MachineID, MaxMachines); id+1 > count {
				count = id + 1
			}
		}
	}
	return count
}

// Validate checks every job definition against the machine count.
// It returns the first problem found, in input order.
func Validate(jobs []models.JobDefinition, machineCount int) error {
	seen := make(map[int]bool, len(jobs))
	// every end time is bounded by the sum of all durations
	total := 0.0
	for _, job := range jobs {
		if job.ID <= 0 {
			return jobError(ErrInvalidJob, job.ID, "id must be positive")
		}
		if seen[job.ID] {
			return jobError(ErrDuplicateJob, job.ID, "id used more than once")
		}
		seen[job.ID] = true

		if len(job.Operations) == 0 {
			return jobError(ErrNoOperations, job.ID, "at least one operation is required")
		}

		for i, op := range job.Operations {
			if math.IsNaN(op.Duration) || math.IsInf(op.Duration, 0) || op.Duration <= 0 {
				return opError(ErrInvalidDuration, job.ID, i, "duration %v must be positive", op.Duration)
			}
			total += op.Duration
			if math.IsInf(total, 0) {
				return opError(ErrInvalidDuration, job.ID, i, "total duration exceeds the representable range")
			}
			if op.MachineID >= MaxMachines {
				return opError(ErrTooManyMachines, job.ID, i, "machine %d exceeds the limit of %d machines", op.MachineID, MaxMachines)
			}
			if op.MachineID < 0 || op.MachineID >= machineCount {
				return opError(ErrMachineOutOfRange, job.ID, i, "machine %d not in [0, %d)", op.MachineID, machineCount)
			}
		}
	}

	if machineCount > MaxMachines {
		return &ConfigError{
			Kind:      ErrTooManyMachines,
			Operation: -1,
			Msg:       fmt.Sprintf("machine count %d exceeds the limit of %d", machineCount, MaxMachines),
		}
	}
	return nil
}
