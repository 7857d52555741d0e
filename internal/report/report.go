// internal/report/report.go

// Package report serializes a schedule as the plain-text job shop report.
package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/fawad-mazhar/shopfloor/internal/models"
)

// Write renders the report: a makespan header followed by one block per job,
// tasks ordered by sequence. Jobs appear in the order they first occur in the
// schedule.
func Write(w io.Writer, s models.Schedule, m models.Metrics) error {
	if _, err := fmt.Fprintf(w, "JOB SHOP REPORT\nMakespan: %sh\n\n", FormatTime(m.Makespan)); err != nil {
		return err
	}

	for _, jobID := range JobOrder(s) {
		if _, err := fmt.Fprintf(w, "JOB %d:\n", jobID); err != nil {
			return err
		}
		for _, t := range JobTasks(s, jobID) {
			if _, err := fmt.Fprintf(w, " - M%d: %sh to %sh\n", t.MachineID, FormatTime(t.Start), FormatTime(t.End())); err != nil {
				return err
			}
		}
	}
	return nil
}

// JobOrder returns job ids in first-appearance order
func JobOrder(s models.Schedule) []int {
	seen := make(map[int]bool)
	var order []int
	for _, t := range s.Tasks {
		if !seen[t.JobID] {
			seen[t.JobID] = true
			order = append(order, t.JobID)
		}
	}
	return order
}

// JobTasks returns the tasks of one job ordered by sequence
func JobTasks(s models.Schedule, jobID int) []models.ScheduledTask {
	var tasks []models.ScheduledTask
	for _, t := range s.Tasks {
		if t.JobID == jobID {
			tasks = append(tasks, t)
		}
	}
	sort.SliceStable(tasks, func(a, b int) bool {
		return tasks[a].Sequence < tasks[b].Sequence
	})
	return tasks
}

// FormatTime prints a time value with the fewest digits needed
func FormatTime(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
