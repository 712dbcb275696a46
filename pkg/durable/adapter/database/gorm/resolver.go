package gorm

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/fx"

	"github.com/tigerroll/durable/pkg/durable/adapter/database"
	config "github.com/tigerroll/durable/pkg/durable/core/config"
)

// ConnectionResolver dispatches a connection name to the provider of its configured type.
type ConnectionResolver struct {
	providers map[string]database.DBProvider
	cfg       *config.Config
}

var _ database.DBConnectionResolver = (*ConnectionResolver)(nil)

// ResolverParams collects every DBProvider registered in the db_providers group.
type ResolverParams struct {
	fx.In
	Providers []database.DBProvider `group:"db_providers"`
	Cfg       *config.Config
}

// NewConnectionResolver creates a ConnectionResolver.
func NewConnectionResolver(p ResolverParams) *ConnectionResolver {
	providers := make(map[string]database.DBProvider, len(p.Providers))
	for _, provider := range p.Providers {
		providers[provider.Type()] = provider
	}
	return &ConnectionResolver{providers: providers, cfg: p.Cfg}
}

// ResolveDBConnection implements database.DBConnectionResolver.
func (r *ConnectionResolver) ResolveDBConnection(ctx context.Context, name string) (database.DBConnection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dbConfig, err := LookupConfig(r.cfg, name)
	if err != nil {
		return nil, err
	}
	provider, ok := r.providers[dbConfig.Type]
	if !ok {
		return nil, fmt.Errorf("no database provider for type '%s' (connection '%s')", dbConfig.Type, name)
	}
	return provider.GetConnection(name)
}

// CloseAll closes the connections of every provider.
func (r *ConnectionResolver) CloseAll() error {
	var result *multierror.Error
	for _, provider := range r.providers {
		if err := provider.CloseAll(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}
