// Package model defines the persistent record of a durable job instance.
package model

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// JobID identifies one job instance. It is allocated once and never reused.
type JobID uuid.UUID

// NilJobID is the zero JobID.
var NilJobID = JobID(uuid.Nil)

// NewJobID allocates a fresh random JobID.
func NewJobID() JobID {
	return JobID(uuid.New())
}

// ParseJobID parses the canonical string form of a JobID.
func ParseJobID(s string) (JobID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return NilJobID, fmt.Errorf("invalid job id %q: %w", s, err)
	}
	return JobID(id), nil
}

// String returns the canonical UUID string.
func (id JobID) String() string {
	return uuid.UUID(id).String()
}

// IsNil reports whether id is the zero value.
func (id JobID) IsNil() bool {
	return id == NilJobID
}

// MarshalText implements encoding.TextMarshaler so ids encode as strings in every codec.
func (id JobID) MarshalText() ([]byte, error) {
	return uuid.UUID(id).MarshalText()
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *JobID) UnmarshalText(data []byte) error {
	var u uuid.UUID
	if err := u.UnmarshalText(data); err != nil {
		return err
	}
	*id = JobID(u)
	return nil
}

// JobKind distinguishes the two job capabilities.
type JobKind string

const (
	KindOrchestration JobKind = "ORCHESTRATION"
	KindUnitOfWork    JobKind = "UNIT_OF_WORK"
)

// JobStatus is the lifecycle status of a job instance.
type JobStatus string

const (
	JobStatusPending   JobStatus = "PENDING"
	JobStatusRunning   JobStatus = "RUNNING"
	JobStatusWaiting   JobStatus = "WAITING"
	JobStatusCompleted JobStatus = "COMPLETED"
	JobStatusFailed    JobStatus = "FAILED"
	JobStatusCancelled JobStatus = "CANCELLED"
)

// String returns the string representation of the JobStatus.
func (s JobStatus) String() string {
	return string(s)
}

// IsFinished reports whether s is terminal.
func (s JobStatus) IsFinished() bool {
	switch s {
	case JobStatusCompleted, JobStatusFailed, JobStatusCancelled:
		return true
	default:
		return false
	}
}

// isValidJobTransition guards TransitionTo. Terminal statuses have no exits.
func isValidJobTransition(current, next JobStatus) bool {
	switch current {
	case JobStatusPending:
		return next == JobStatusRunning || next == JobStatusFailed || next == JobStatusCancelled
	case JobStatusRunning:
		return next == JobStatusRunning || next == JobStatusWaiting || next.IsFinished()
	case JobStatusWaiting:
		return next == JobStatusRunning || next == JobStatusWaiting || next.IsFinished()
	default:
		return false
	}
}

// HistoryStatus is the status of one sub-job call site.
type HistoryStatus string

const (
	HistoryRunning   HistoryStatus = "RUNNING"
	HistoryWaiting   HistoryStatus = "WAITING"
	HistoryCompleted HistoryStatus = "COMPLETED"
	HistoryFailed    HistoryStatus = "FAILED"
)

// IsResolved reports whether the child behind the entry has an outcome.
func (s HistoryStatus) IsResolved() bool {
	return s == HistoryCompleted || s == HistoryFailed
}

// HistoryEntry records one sub-job call site of an orchestration, in call order.
type HistoryEntry struct {
	ChildJobID JobID
	// ChildType is the child's type tag, used to decode Result.
	ChildType string
	Status    HistoryStatus
	// Result holds the child's value when Completed and its failure message when Failed.
	Result any
}

// JobState is one execution instance of a job.
type JobState struct {
	ID   JobID
	Type string
	Kind JobKind
	// Arguments are positional and immutable after creation.
	Arguments []any

	ParentJobID        *JobID
	ParentHistoryIndex *int

	Status JobStatus
	// History is append-only; entries are only updated in place when their child resolves.
	// Always empty for units of work.
	History []HistoryEntry
	Result  any
	Error   string

	CreateTime  time.Time
	LastUpdated time.Time

	// Continuation is invoked once when a root job finishes (not persisted).
	Continuation func(result any, err error)
	// CancelFunc cancels an in-flight unit of work (not persisted).
	CancelFunc context.CancelFunc
	// Started is set while a unit-of-work body is executing (not persisted).
	Started bool
}

// NewJobState creates a pending job state.
func NewJobState(id JobID, jobType string, kind JobKind, args []any) *JobState {
	now := time.Now()
	copied := make([]any, len(args))
	copy(copied, args)
	return &JobState{
		ID:          id,
		Type:        jobType,
		Kind:        kind,
		Arguments:   copied,
		Status:      JobStatusPending,
		CreateTime:  now,
		LastUpdated: now,
	}
}

// IsRoot reports whether the job has no parent.
func (s *JobState) IsRoot() bool {
	return s.ParentJobID == nil
}

// IsOrchestration reports whether the job replays a history.
func (s *JobState) IsOrchestration() bool {
	return s.Kind == KindOrchestration
}

// SetParent links the job to a history slot of its parent.
func (s *JobState) SetParent(parent JobID, index int) {
	p := parent
	i := index
	s.ParentJobID = &p
	s.ParentHistoryIndex = &i
}

// TransitionTo moves the job to next, refusing exits from terminal statuses.
func (s *JobState) TransitionTo(next JobStatus) error {
	if !isValidJobTransition(s.Status, next) {
		return fmt.Errorf("job %s: invalid status transition %s -> %s", s.ID, s.Status, next)
	}
	s.Status = next
	s.LastUpdated = time.Now()
	return nil
}

// AppendHistory records a new call site for childID and returns its index.
func (s *JobState) AppendHistory(childID JobID, childType string) int {
	s.History = append(s.History, HistoryEntry{
		ChildJobID: childID,
		ChildType:  childType,
		Status:     HistoryRunning,
	})
	return len(s.History) - 1
}

// AppendFailedHistory records a call site whose child could not be created. The entry
// is resolved from the start and references no child.
func (s *JobState) AppendFailedHistory(childType, message string) int {
	s.History = append(s.History, HistoryEntry{
		ChildJobID: NilJobID,
		ChildType:  childType,
		Status:     HistoryFailed,
		Result:     message,
	})
	return len(s.History) - 1
}

// ResolveHistory writes a child's outcome into its slot. It returns false when the slot
// does not exist, belongs to another child, or was already resolved.
func (s *JobState) ResolveHistory(index int, childID JobID, status HistoryStatus, result any) bool {
	if index < 0 || index >= len(s.History) {
		return false
	}
	entry := &s.History[index]
	if entry.ChildJobID != childID || entry.Status.IsResolved() {
		return false
	}
	entry.Status = status
	entry.Result = result
	s.LastUpdated = time.Now()
	return true
}

// MarkHistory changes the status of an unresolved slot, e.g. Running to Waiting.
func (s *JobState) MarkHistory(index int, childID JobID, status HistoryStatus) bool {
	if index < 0 || index >= len(s.History) {
		return false
	}
	entry := &s.History[index]
	if entry.ChildJobID != childID || entry.Status.IsResolved() {
		return false
	}
	entry.Status = status
	return true
}

// PendingChildren returns the ids of children whose slots are not resolved yet.
func (s *JobState) PendingChildren() []JobID {
	var ids []JobID
	for _, e := range s.History {
		if !e.Status.IsResolved() {
			ids = append(ids, e.ChildJobID)
		}
	}
	return ids
}

// Clone returns a copy that can be mutated without affecting s.
// Arguments are shared since they never change.
func (s *JobState) Clone() *JobState {
	if s == nil {
		return nil
	}
	c := *s
	if s.ParentJobID != nil {
		p := *s.ParentJobID
		c.ParentJobID = &p
	}
	if s.ParentHistoryIndex != nil {
		i := *s.ParentHistoryIndex
		c.ParentHistoryIndex = &i
	}
	if s.History != nil {
		c.History = make([]HistoryEntry, len(s.History))
		copy(c.History, s.History)
	}
	return &c
}

// ValidateLinkage checks that child points at a slot of parent that points back at child.
func ValidateLinkage(parent, child *JobState) error {
	if child.ParentJobID == nil || child.ParentHistoryIndex == nil {
		return fmt.Errorf("job %s has no parent linkage", child.ID)
	}
	if *child.ParentJobID != parent.ID {
		return fmt.Errorf("job %s points at parent %s, not %s", child.ID, *child.ParentJobID, parent.ID)
	}
	idx := *child.ParentHistoryIndex
	if idx < 0 || idx >= len(parent.History) {
		return fmt.Errorf("job %s points at history index %d outside parent %s (len %d)", child.ID, idx, parent.ID, len(parent.History))
	}
	if got := parent.History[idx].ChildJobID; got != child.ID {
		return fmt.Errorf("parent %s history[%d] references %s, not %s", parent.ID, idx, got, child.ID)
	}
	return nil
}
