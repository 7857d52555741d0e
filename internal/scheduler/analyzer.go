// internal/scheduler/analyzer.go
package scheduler

import (
	"math"
	"sort"

	"github.com/fawad-mazhar/shopfloor/internal/models"
)

type taskKey struct {
	jobID    int
	sequence int
}

// Analyze derives metrics from a schedule without modifying it.
//
// Critical tasks are all tasks that finish exactly at the makespan; this is not a
// longest-path computation. Violations only cover job precedence: a task that
// starts before its predecessor in the same job ends. Machine overlaps are listed
// separately in MachineConflicts and are never counted as violations.
func Analyze(s models.Schedule) models.Metrics {
	makespan := Makespan(s)

	busy := make([]float64, machineSet(s))
	for _, t := range s.Tasks {
		if t.MachineID >= 0 && t.MachineID < len(busy) {
			busy[t.MachineID] += t.Duration
		}
	}
	machines := len(busy)

	metrics := models.Metrics{
		Makespan:         makespan,
		Utilization:      make([]int, machines),
		CriticalTasks:    []int{},
		Violations:       []int{},
		MachineConflicts: []int{},
	}

	total := 0
	for m := range busy {
		if makespan > 0 {
			pct := 100 * busy[m] / makespan
			if math.IsInf(pct, 0) {
				pct = 100 * (busy[m] / makespan)
			}
			// Overlapping edits can stack more busy time than the makespan
			metrics.Utilization[m] = min(100, roundHalfUp(pct))
		}
		total += metrics.Utilization[m]
	}
	if machines > 0 {
		metrics.AverageUtilization = roundHalfUp(float64(total) / float64(machines))
	}

	if makespan > 0 {
		for i, t := range s.Tasks {
			if t.End() == makespan {
				metrics.CriticalTasks = append(metrics.CriticalTasks, i)
			}
		}
	}

	metrics.Violations = Violations(s)
	metrics.MachineConflicts = MachineConflicts(s)

	return metrics
}

// machineSet is max(MachineCount, highest machine id + 1), limited to
// [0, MaxMachines]. Tasks on machines past the limit are left out of utilization.
func machineSet(s models.Schedule) int {
	machines := max(s.MachineCount, 0)
	for _, t := range s.Tasks {
		if t.MachineID >= machines && t.MachineID < MaxMachines {
			machines = t.MachineID + 1
		}
	}
	return min(machines, MaxMachines)
}

// Makespan returns the latest end time in the schedule, or 0 when it is empty.
func Makespan(s models.Schedule) float64 {
	makespan := 0.0
	for _, t := range s.Tasks {
		if end := t.End(); end > makespan {
			makespan = end
		}
	}
	return makespan
}

// Violations returns the indices of tasks that start before their job
// predecessor ends. The first operation of a job never violates.
func Violations(s models.Schedule) []int {
	byKey := make(map[taskKey]int, len(s.Tasks))
	for i, t := range s.Tasks {
		k := taskKey{jobID: t.JobID, sequence: t.Sequence}
		if _, exists := byKey[k]; !exists {
			byKey[k] = i
		}
	}

	violations := []int{}
	for i, t := range s.Tasks {
		if t.Sequence == 0 {
			continue
		}
		p, ok := byKey[taskKey{jobID: t.JobID, sequence: t.Sequence - 1}]
		if !ok {
			continue
		}
		if t.Start < s.Tasks[p].End() {
			violations = append(violations, i)
		}
	}
	return violations
}

// MachineConflicts returns the indices of tasks whose [start, end) interval
// intersects another task on the same machine.
func MachineConflicts(s models.Schedule) []int {
	byMachine := make(map[int][]int)
	for i, t := range s.Tasks {
		byMachine[t.MachineID] = append(byMachine[t.MachineID], i)
	}

	conflicting := make(map[int]bool)
	for _, idx := range byMachine {
		sort.SliceStable(idx, func(a, b int) bool {
			return s.Tasks[idx[a]].Start < s.Tasks[idx[b]].Start
		})

		// Sweep keeping the task that reaches furthest right so far
		reach := -1
		for _, i := range idx {
			if reach >= 0 && s.Tasks[i].Start < s.Tasks[reach].End() {
				conflicting[i] = true
				conflicting[reach] = true
			}
			if reach < 0 || s.Tasks[i].End() > s.Tasks[reach].End() {
				reach = i
			}
		}
	}

	conflicts := make([]int, 0, len(conflicting))
	for i := range conflicting {
		conflicts = append(conflicts, i)
	}
	sort.Ints(conflicts)
	return conflicts
}

func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}
