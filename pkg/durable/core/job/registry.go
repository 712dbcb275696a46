package job

import (
	"fmt"
	"sort"
	"sync"

	model "github.com/tigerroll/durable/pkg/durable/core/domain/model"
	"github.com/tigerroll/durable/pkg/durable/support/util/exception"
	"github.com/tigerroll/durable/pkg/durable/support/util/logger"
)

// Factory produces a descriptor instance. It is called for every new job and every
// rehydrated job, so it should be cheap.
type Factory func() Descriptor

type registration struct {
	factory Factory
	kind    model.JobKind
}

// Registry maps type tags to descriptor factories. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]registration
}

// NewRegistry creates a registry pre-populated with factories.
func NewRegistry(factories ...Factory) (*Registry, error) {
	r := &Registry{entries: make(map[string]registration)}
	for _, f := range factories {
		if err := r.Register(f); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a factory under the name of the descriptor it produces.
// Registering the same name twice is an error.
func (r *Registry) Register(f Factory) error {
	if f == nil {
		return exception.NewDurableError("job.registry", "nil factory", nil)
	}
	d := f()
	if d == nil {
		return exception.NewDurableError("job.registry", "factory returned nil descriptor", nil)
	}
	name := d.Name()
	if name == "" {
		return exception.NewDurableError("job.registry", "descriptor has an empty name", nil)
	}
	kind, err := KindOf(d)
	if err != nil {
		return exception.NewDurableError("job.registry", "invalid descriptor", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[name]; exists {
		return exception.NewDurableErrorf("job.registry", "job type %q is already registered", name)
	}
	r.entries[name] = registration{factory: f, kind: kind}
	logger.Debugf("Registered job type '%s' (%s).", name, kind)
	return nil
}

// MustRegister is Register that panics on error.
func (r *Registry) MustRegister(f Factory) {
	if err := r.Register(f); err != nil {
		panic(err)
	}
}

// Resolve returns a fresh descriptor for name and its kind.
func (r *Registry) Resolve(name string) (Descriptor, model.JobKind, error) {
	r.mu.RLock()
	reg, ok := r.entries[name]
	r.mu.RUnlock()
	if !ok {
		return nil, "", fmt.Errorf("%w: %q", exception.ErrUnknownJobType, name)
	}
	return reg.factory(), reg.kind, nil
}

// Names returns the registered type tags, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
