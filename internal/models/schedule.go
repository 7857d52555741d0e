// internal/models/schedule.go
package models

// ScheduledTask is a single operation placed on the timeline
type ScheduledTask struct {
	JobID     int     `json:"jobId"`
	MachineID int     `json:"machine"`
	Start     float64 `json:"start"`
	Duration  float64 `json:"duration"`
	Sequence  int     `json:"sequence"` // position of the operation within its job
	Color     string  `json:"color"`
}

// End returns the time the task releases its machine
func (t ScheduledTask) End() float64 {
	return t.Start + t.Duration
}

// Schedule is the full set of scheduled tasks for one build.
// Task order carries no meaning; tasks are referenced by index.
type Schedule struct {
	MachineCount int             `json:"machineCount"`
	Tasks        []ScheduledTask `json:"tasks"`
}

// Clone returns a deep copy of the schedule
func (s Schedule) Clone() Schedule {
	tasks := make([]ScheduledTask, len(s.Tasks))
	copy(tasks, s.Tasks)
	return Schedule{
		MachineCount: s.MachineCount,
		Tasks:        tasks,
	}
}

// Metrics holds the analytics derived from a schedule.
// Task references are indices into Schedule.Tasks in ascending order.
type Metrics struct {
	Makespan           float64 `json:"makespan"`
	Utilization        []int   `json:"utilization"` // index: machine id, value: percent
	AverageUtilization int     `json:"averageUtilization"`
	CriticalTasks      []int   `json:"criticalTasks"`
	Violations         []int   `json:"violations"`
	MachineConflicts   []int   `json:"machineConflicts"`
}
