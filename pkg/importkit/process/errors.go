package process

import (
	"fmt"
)

// TooManyFailuresError is returned when a process exceeds its failure budget.
type TooManyFailuresError struct {
	ProcessID string
	Failed    int
	Max       int
	LastErr   error
}

func (e *TooManyFailuresError) Error() string {
	return fmt.Sprintf("process %s: %d items failed (max %d): last error: %v",
		e.ProcessID, e.Failed, e.Max, e.LastErr)
}

func (e *TooManyFailuresError) Unwrap() error {
	return e.LastErr
}

// DependencyError represents a stage that depends on a stage not in the pipeline.
type DependencyError struct {
	StageID      string
	Dependencies []string
	Missing      []string
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("dependency error for stage %s: missing dependencies %v (required: %v)",
		e.StageID, e.Missing, e.Dependencies)
}

// StageError wraps the failure of a pipeline stage.
type StageError struct {
	StageID string
	Cause   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s failed: %v", e.StageID, e.Cause)
}

func (e *StageError) Unwrap() error {
	return e.Cause
}
