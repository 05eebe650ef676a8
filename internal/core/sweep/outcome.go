package sweep

import "fmt"

// Status is the result class of one entry.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
)

// Phase names where a failed entry stopped.
type Phase string

const (
	PhasePrepare Phase = "prepare" // knowledge-base assembly
	PhaseLogs    Phase = "logs"    // creating the log files
	PhaseLaunch  Phase = "launch"  // starting the process
	PhaseExit    Phase = "exit"    // process exited non-zero
)

// Outcome is the result of running one entry: Succeeded, Failed(reason) or Skipped(reason).
type Outcome struct {
	Status   Status
	Phase    Phase
	Reason   string
	ExitCode int
}

// Succeeded returns the outcome of a run that exited 0.
func Succeeded() Outcome {
	return Outcome{Status: StatusSucceeded}
}

// Failed returns the outcome of an entry that stopped in phase.
func Failed(phase Phase, err error) Outcome {
	return Outcome{Status: StatusFailed, Phase: phase, Reason: err.Error(), ExitCode: -1}
}

// ExitedNonZero returns the outcome of a run whose process exited with code.
func ExitedNonZero(code int) Outcome {
	return Outcome{
		Status:   StatusFailed,
		Phase:    PhaseExit,
		Reason:   fmt.Sprintf("optimizer exited with status %d", code),
		ExitCode: code,
	}
}

// Skipped returns the outcome of an entry that never ran.
func Skipped(reason string) Outcome {
	return Outcome{Status: StatusSkipped, Reason: reason, ExitCode: -1}
}

// SkipPolicy decides what a failure means for the rest of a dataset.
type SkipPolicy struct {
	// KeepGoing runs later iterations after the optimizer exits non-zero.
	KeepGoing bool
}

// SkipsRemaining reports whether the dataset's later iterations must be skipped.
// Rules:
// - preparation, log and launch failures always skip the rest of the dataset
// - a non-zero exit skips the rest unless KeepGoing is set, since iteration
//   k+1 reads fragments the failed run was supposed to write
// - other datasets are never affected
func (p SkipPolicy) SkipsRemaining(o Outcome) bool {
	if o.Status != StatusFailed {
		return false
	}
	if o.Phase == PhaseExit {
		return !p.KeepGoing
	}
	return true
}

// Tally counts outcomes by status.
type Tally struct {
	Succeeded int
	Failed    int
	Skipped   int
}

// Add records one outcome.
func (t *Tally) Add(o Outcome) {
	switch o.Status {
	case StatusSucceeded:
		t.Succeeded++
	case StatusFailed:
		t.Failed++
	case StatusSkipped:
		t.Skipped++
	}
}

// Total returns the number of outcomes recorded.
func (t Tally) Total() int {
	return t.Succeeded + t.Failed + t.Skipped
}
