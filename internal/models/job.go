// internal/models/job.go
package models

// OperationSpec is one step of a job: the machine it needs and for how long.
type OperationSpec struct {
	MachineID int     `json:"machine" yaml:"machine"`
	Duration  float64 `json:"duration" yaml:"duration"`
}

// JobDefinition represents a job as an ordered chain of operations.
// The order of Operations is the precedence constraint.
type JobDefinition struct {
	ID         int             `json:"id" yaml:"id"`
	Color      string          `json:"color" yaml:"color"`
	Operations []OperationSpec `json:"operations" yaml:"operations"`
}

// TotalDuration returns the sum of all operation durations of the job
func (j JobDefinition) TotalDuration() float64 {
	total := 0.0
	for _, op := range j.Operations {
		total += op.Duration
	}
	return total
}
