// internal/scheduler/builder.go
package scheduler

import (
	"github.com/fawad-mazhar/shopfloor/internal/models"
)

// Build produces a feasible schedule with greedy list scheduling.
//
// Jobs are taken in input order and operations in sequence order; that double
// ordering is the only tie-break. Each operation starts at the later of the time
// its machine frees up and the time its job's previous operation ends.
//
// A machineCount <= 0 derives the count from the highest machine id referenced.
// Invalid definitions, including counts above MaxMachines, are rejected before
// anything is allocated or scheduled. Zero jobs yield an empty schedule.
func Build(jobs []models.JobDefinition, machineCount int) (models.Schedule, error) {
	if machineCount <= 0 {
		machineCount = MachineCount(jobs)
	}

	if err := Validate(jobs, machineCount); err != nil {
		return models.Schedule{}, err
	}

	total := 0
	for _, job := range jobs {
		total += len(job.Operations)
	}

	schedule := models.Schedule{
		MachineCount: machineCount,
		Tasks:        make([]models.ScheduledTask, 0, total),
	}

	machineFree := make([]float64, machineCount)
	jobFree := make(map[int]float64, len(jobs))

	for _, job := range jobs {
		for seq, op := range job.Operations {
			start := max(machineFree[op.MachineID], jobFree[job.ID])
			end := start + op.Duration

			schedule.Tasks = append(schedule.Tasks, models.ScheduledTask{
				JobID:     job.ID,
				MachineID: op.MachineID,
				Start:     start,
				Duration:  op.Duration,
				Sequence:  seq,
				Color:     job.Color,
			})

			machineFree[op.MachineID] = end
			jobFree[job.ID] = end
		}
	}

	return schedule, nil
}
