// internal/session/batch.go
package session

import (
	"context"
	"sync"

	"github.com/fawad-mazhar/shopfloor/internal/models"
	"github.com/fawad-mazhar/shopfloor/internal/scheduler"
)

// BatchInput is one independent job set
type BatchInput struct {
	MachineCount int                    `json:"machineCount"`
	Jobs         []models.JobDefinition `json:"jobs"`
}

// BatchResult is the outcome for the input at the same position
type BatchResult struct {
	Schedule models.Schedule `json:"schedule"`
	Metrics  models.Metrics  `json:"metrics"`
	Err      error           `json:"-"`
}

// BuildBatch builds and analyzes independent job sets across the worker pool.
// Nothing is stored; results keep the order of the inputs.
func (s *Service) BuildBatch(ctx context.Context, inputs []BatchInput) []BatchResult {
	results := make([]BatchResult, len(inputs))

	var wg sync.WaitGroup
	for i, input := range inputs {
		wg.Add(1)
		err := s.pool.Submit(ctx, func(ctx context.Context) {
			defer wg.Done()

			schedule, err := scheduler.Build(input.Jobs, input.MachineCount)
			if err != nil {
				results[i].Err = err
				return
			}
			results[i] = BatchResult{
				Schedule: schedule,
				Metrics:  scheduler.Analyze(schedule),
			}
		})
		if err != nil {
			wg.Done()
			results[i].Err = err
		}
	}
	wg.Wait()

	return results
}
