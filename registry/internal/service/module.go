package service

import (
	"go.uber.org/fx"
)

// Module provides the registry service dependency to the fx container
var Module = fx.Options(
	fx.Provide(NewRegistryService),
)
