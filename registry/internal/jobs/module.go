package jobs

import (
	"go.uber.org/fx"

	"github.com/williamhogman/cluster-registry/registry/internal/jobs/refresh"
)

// Module exports all job modules
var Module = fx.Options(
	refresh.Module,
)
