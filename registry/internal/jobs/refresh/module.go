package refresh

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/williamhogman/cluster-registry/registry/internal/config"
	"github.com/williamhogman/cluster-registry/registry/internal/service"
)

// ManagerParams contains the dependencies for the refresh manager
type ManagerParams struct {
	fx.In

	Lifecycle       fx.Lifecycle
	Config          *config.Config
	RegistryService *service.RegistryService
	Logger          *zap.Logger
}

// RegisterManager starts the refresh job with the app when discovery is enabled
func RegisterManager(p ManagerParams) {
	if !p.Config.Discovery.Enabled {
		return
	}

	manager := NewManager(p.RegistryService, p.Config.Discovery.Interval, p.Logger)
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			manager.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			manager.Stop()
			return nil
		},
	})
}

// Module provides the refresh job to the fx container
var Module = fx.Options(
	fx.Invoke(RegisterManager),
)
