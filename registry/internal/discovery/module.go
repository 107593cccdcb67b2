package discovery

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/williamhogman/cluster-registry/registry/internal/config"
	"github.com/williamhogman/cluster-registry/registry/internal/service"
)

// disabledResolver never discovers anything, so stored seeds are kept
type disabledResolver struct{}

func (disabledResolver) ResolveSeedHosts(ctx context.Context, clusterName string) ([]string, error) {
	return nil, nil
}

// ProvideResolver creates the seed resolver based on the configuration
func ProvideResolver(cfg *config.Config, logger *zap.Logger) (service.SeedResolver, error) {
	if !cfg.Discovery.Enabled {
		logger.Info("Seed host discovery is disabled")
		return disabledResolver{}, nil
	}

	clientset, err := newClientset(cfg.Discovery.Kubeconfig)
	if err != nil {
		return nil, err
	}

	logger.Info("Using Kubernetes seed host discovery",
		zap.String("namespace", cfg.Discovery.Namespace))
	return NewEndpointsResolver(clientset, cfg.Discovery.Namespace, logger), nil
}

// Module provides the seed resolver to the fx container
var Module = fx.Options(
	fx.Provide(ProvideResolver),
)
