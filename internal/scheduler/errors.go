// internal/scheduler/errors.go
package scheduler

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidJob        = errors.New("invalid job definition")
	ErrDuplicateJob      = errors.New("duplicate job id")
	ErrNoOperations      = errors.New("job has no operations")
	ErrInvalidDuration   = errors.New("invalid operation duration")
	ErrMachineOutOfRange = errors.New("machine id out of range")
	ErrTooManyMachines   = errors.New("too many machines")

	// ErrEmptyInput is a warning, not a failure: building zero jobs yields an empty schedule.
	ErrEmptyInput = errors.New("no jobs supplied")

	ErrTaskNotFound = errors.New("task not found")
	ErrInvalidStart = errors.New("invalid start time")
)

// ConfigError describes a malformed job definition.
// Operation is -1 when the problem concerns the job as a whole.
type ConfigError struct {
	Kind      error
	JobID     int
	Operation int
	Msg       string
}

func (e *ConfigError) Error() string {
	if e == nil {
		return ""
	}
	if e.JobID == 0 && e.Operation < 0 && e.Kind == ErrTooManyMachines {
		return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Msg)
	}
	where := fmt.Sprintf("job %d", e.JobID)
	if e.Operation >= 0 {
		where = fmt.Sprintf("job %d operation %d", e.JobID, e.Operation)
	}
	if e.Msg == "" {
		return fmt.Sprintf("%s: %s", where, e.Kind.Error())
	}
	return fmt.Sprintf("%s: %s: %s", where, e.Kind.Error(), e.Msg)
}

func (e *ConfigError) Unwrap() error { return e.Kind }

func jobError(kind error, jobID int, format string, args ...any) error {
	return &ConfigError{Kind: kind, JobID: jobID, Operation: -1, Msg: fmt.Sprintf(format, args...)}
}

func opError(kind error, jobID, op int, format string, args ...any) error {
	return &ConfigError{Kind: kind, JobID: jobID, Operation: op, Msg: fmt.Sprintf(format, args...)}
}

// IsConfigError reports whether err is a job definition problem
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
