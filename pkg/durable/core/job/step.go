package job

import "fmt"

// StepKind tags the outcome of an orchestration step.
type StepKind int

const (
	// StepPending means the orchestration is blocked on an unresolved child.
	StepPending StepKind = iota
	StepCompleted
	StepFailed
)

// String returns the kind name.
func (k StepKind) String() string {
	switch k {
	case StepPending:
		return "Pending"
	case StepCompleted:
		return "Completed"
	case StepFailed:
		return "Failed"
	default:
		return fmt.Sprintf("StepKind(%d)", int(k))
	}
}

// Step is the result of a Call or of a whole orchestration body:
// Completed(value), Failed(err) or Pending.
// The zero Step is Pending.
type Step struct {
	kind  StepKind
	value any
	err   error
}

// Completed returns a successful step carrying value.
func Completed(value any) Step {
	return Step{kind: StepCompleted, value: value}
}

// Failed returns a failed step. A nil err is replaced by a generic one.
func Failed(err error) Step {
	if err == nil {
		err = fmt.Errorf("step failed without an error")
	}
	return Step{kind: StepFailed, err: err}
}

// Pending returns the step that means "cannot make progress yet".
func Pending() Step {
	return Step{kind: StepPending}
}

// Kind returns the step's tag.
func (s Step) Kind() StepKind { return s.kind }

// Done reports whether the step completed successfully.
func (s Step) Done() bool { return s.kind == StepCompleted }

// IsPending reports whether the step is blocked.
func (s Step) IsPending() bool { return s.kind == StepPending }

// IsFailed reports whether the step failed.
func (s Step) IsFailed() bool { return s.kind == StepFailed }

// Value returns the completed value, or nil.
func (s Step) Value() any { return s.value }

// Err returns the failure, or nil.
func (s Step) Err() error { return s.err }

// String is used in log messages.
func (s Step) String() string {
	switch s.kind {
	case StepCompleted:
		return fmt.Sprintf("Completed(%v)", s.value)
	case StepFailed:
		return fmt.Sprintf("Failed(%v)", s.err)
	default:
		return "Pending"
	}
}

// ValueAs returns the completed value as T. ok is false if the step did not complete
// or the value has another type.
func ValueAs[T any](s Step) (T, bool) {
	var zero T
	if !s.Done() {
		return zero, false
	}
	v, ok := s.value.(T)
	return v, ok
}

// Then propagates a non-completed step unchanged and otherwise calls next with the value.
//
//	return oc.Call("fetch", url).Then(func(body any) job.Step {
//		return oc.Call("store", body)
//	})
func (s Step) Then(next func(value any) Step) Step {
	if !s.Done() {
		return s
	}
	return next(s.value)
}
