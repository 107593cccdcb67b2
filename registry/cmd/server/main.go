package main

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/williamhogman/cluster-registry/registry/internal/config"
	"github.com/williamhogman/cluster-registry/registry/internal/discovery"
	"github.com/williamhogman/cluster-registry/registry/internal/jobs"
	"github.com/williamhogman/cluster-registry/registry/internal/logging"
	"github.com/williamhogman/cluster-registry/registry/internal/persistence"
	"github.com/williamhogman/cluster-registry/registry/internal/service"
	"github.com/williamhogman/cluster-registry/registry/internal/transport"
)

// Everything wires all registry modules together
var Everything = fx.Options(
	config.Module,
	logging.Module,
	persistence.Module,
	discovery.Module,
	service.Module,
	transport.Module,
	jobs.Module,
	fx.Invoke(logConfig),
)

// logConfig prints the effective configuration at startup
func logConfig(cfg *config.Config, log *zap.SugaredLogger) {
	log.Infow("Registry configuration",
		"serverPort", cfg.Server.Port,
		"storageType", cfg.Storage.Type,
		"discoveryEnabled", cfg.Discovery.Enabled,
		"discoveryNamespace", cfg.Discovery.Namespace,
		"discoveryInterval", cfg.Discovery.Interval,
		"developmentLogging", cfg.Logging.Development,
	)
}

func main() {
	app := fx.New(Everything)
	app.Run()
}
