package job

import (
	"context"
	"reflect"
)

// OrchestrationFunc is an orchestration body.
type OrchestrationFunc func(oc Context, args []any) Step

// UnitOfWorkFunc is a unit-of-work body.
type UnitOfWorkFunc func(ctx context.Context, args []any) (any, error)

type descriptor struct {
	name       string
	argTypes   []reflect.Type
	resultType reflect.Type
}

func (d descriptor) Name() string                  { return d.name }
func (d descriptor) ArgumentTypes() []reflect.Type { return d.argTypes }
func (d descriptor) ResultType() reflect.Type      { return d.resultType }

type funcOrchestration struct {
	descriptor
	fn OrchestrationFunc
}

func (o *funcOrchestration) Run(oc Context, args []any) Step { return o.fn(oc, args) }

type funcUnitOfWork struct {
	descriptor
	fn UnitOfWorkFunc
}

func (u *funcUnitOfWork) Execute(ctx context.Context, args []any) (any, error) {
	return u.fn(ctx, args)
}

// NewOrchestration builds an Orchestration from a function.
// A nil resultType means the result is decoded as a generic value.
func NewOrchestration(name string, argTypes []reflect.Type, resultType reflect.Type, fn OrchestrationFunc) Orchestration {
	return &funcOrchestration{descriptor: newDescriptor(name, argTypes, resultType), fn: fn}
}

// NewUnitOfWork builds a UnitOfWork from a function.
func NewUnitOfWork(name string, argTypes []reflect.Type, resultType reflect.Type, fn UnitOfWorkFunc) UnitOfWork {
	return &funcUnitOfWork{descriptor: newDescriptor(name, argTypes, resultType), fn: fn}
}

func newDescriptor(name string, argTypes []reflect.Type, resultType reflect.Type) descriptor {
	if resultType == nil {
		resultType = TypeOf[any]()
	}
	return descriptor{name: name, argTypes: argTypes, resultType: resultType}
}
