// Package job defines job descriptors, the tagged Step result returned by orchestrations,
// and the registry that maps stable type tags to descriptor factories.
package job

import (
	"context"
	"fmt"
	"reflect"

	model "github.com/tigerroll/durable/pkg/durable/core/domain/model"
	"github.com/tigerroll/durable/pkg/durable/support/util/exception"
)

// Descriptor is the user-supplied logic of a job type.
// Every Descriptor is exactly one of Orchestration or UnitOfWork.
type Descriptor interface {
	// Name is the stable type tag persisted with every instance.
	Name() string
	// ArgumentTypes are the positional argument types, used to decode persisted arguments.
	ArgumentTypes() []reflect.Type
	// ResultType is the type of the job's result, used to decode persisted results.
	ResultType() reflect.Type
}

// Orchestration coordinates other jobs. Run is replayed from the top every time the job is
// scheduled, so it must be deterministic and perform its side effects only through Call.
type Orchestration interface {
	Descriptor
	Run(oc Context, args []any) Step
}

// UnitOfWork performs a side effect. Execute runs at most once per job instance and should
// return promptly once ctx is cancelled.
type UnitOfWork interface {
	Descriptor
	Execute(ctx context.Context, args []any) (any, error)
}

// Context is handed to an orchestration body on each replay.
type Context interface {
	// JobID is the id of the orchestration being replayed.
	JobID() model.JobID
	// Arguments are the arguments the orchestration was started with.
	Arguments() []any
	// Call invokes the sub-job registered under name. Call sites are numbered in call order;
	// a resolved site returns its recorded outcome, a new site spawns the child and returns Pending.
	Call(name string, args ...any) Step
	// Replaying reports whether the next call site is already recorded in history,
	// i.e. whether the body is still re-executing steps it has taken before.
	Replaying() bool
}

// KindOf resolves which capability d implements.
func KindOf(d Descriptor) (model.JobKind, error) {
	switch d.(type) {
	case Orchestration:
		if _, ok := d.(UnitOfWork); ok {
			return "", fmt.Errorf("job type %q implements both Orchestration and UnitOfWork", d.Name())
		}
		return model.KindOrchestration, nil
	case UnitOfWork:
		return model.KindUnitOfWork, nil
	default:
		return "", fmt.Errorf("job type %q implements neither Orchestration nor UnitOfWork", d.Name())
	}
}

// CheckArguments verifies that args fit d's declared argument types.
func CheckArguments(d Descriptor, args []any) error {
	types := d.ArgumentTypes()
	if len(args) != len(types) {
		return fmt.Errorf("%w: job type %q takes %d arguments, got %d", exception.ErrArgumentMismatch, d.Name(), len(types), len(args))
	}
	for i, arg := range args {
		want := types[i]
		if arg == nil {
			switch want.Kind() {
			case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice:
				continue
			}
			return fmt.Errorf("%w: job type %q argument %d must be %s, got nil", exception.ErrArgumentMismatch, d.Name(), i, want)
		}
		if got := reflect.TypeOf(arg); !got.AssignableTo(want) {
			return fmt.Errorf("%w: job type %q argument %d must be %s, got %s", exception.ErrArgumentMismatch, d.Name(), i, want, got)
		}
	}
	return nil
}

// CheckResult verifies that v fits d's declared result type.
func CheckResult(d Descriptor, v any) error {
	want := d.ResultType()
	if v == nil || want == nil {
		return nil
	}
	if got := reflect.TypeOf(v); !got.AssignableTo(want) {
		return fmt.Errorf("%w: job type %q must return %s, got %s", exception.ErrArgumentMismatch, d.Name(), want, got)
	}
	return nil
}

// TypeOf returns the reflect.Type of T, including interface types.
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Types is shorthand for building an ArgumentTypes slice.
func Types(ts ...reflect.Type) []reflect.Type {
	return ts
}
