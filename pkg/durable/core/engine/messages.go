package engine

import (
	model "github.com/tigerroll/durable/pkg/durable/core/domain/model"
)

// message is anything a job actor accepts.
type message interface {
	kind() string
}

// runMsg asks the job to make progress: replay an orchestration or start a unit of work.
type runMsg struct{}

// childResolvedMsg carries a child's outcome to the history slot it was called from.
// Result is the child's value when Status is Completed and its failure message when Failed.
type childResolvedMsg struct {
	Index   int
	ChildID model.JobID
	Status  model.HistoryStatus
	Result  any
}

// selfFinishedMsg is posted by a unit-of-work body when it returns.
type selfFinishedMsg struct {
	Result any
	Err    error
}

// cancelMsg cancels the job and, for orchestrations, its unfinished children.
type cancelMsg struct{}

func (runMsg) kind() string           { return "run" }
func (childResolvedMsg) kind() string { return "childResolved" }
func (selfFinishedMsg) kind() string  { return "selfFinished" }
func (cancelMsg) kind() string        { return "cancel" }

func messageKind(msg any) string {
	if m, ok := msg.(message); ok {
		return m.kind()
	}
	return "unknown"
}
