package job

import "go.uber.org/fx"

// DescriptorGroup is the fx value group collecting job factories.
const DescriptorGroup = "job_descriptors"

// RegistryParams receives every Factory contributed to DescriptorGroup.
type RegistryParams struct {
	fx.In
	Factories []Factory `group:"job_descriptors"`
}

// NewRegistryFromParams builds the registry from the fx value group.
func NewRegistryFromParams(p RegistryParams) (*Registry, error) {
	return NewRegistry(p.Factories...)
}

// Provide contributes factories to DescriptorGroup.
func Provide(factories ...Factory) fx.Option {
	opts := make([]fx.Option, 0, len(factories))
	for _, f := range factories {
		f := f
		opts = append(opts, fx.Provide(fx.Annotated{
			Group:  DescriptorGroup,
			Target: func() Factory { return f },
		}))
	}
	return fx.Options(opts...)
}

// Module provides the *Registry.
var Module = fx.Options(
	fx.Provide(NewRegistryFromParams),
)
