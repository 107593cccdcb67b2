package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/williamhogman/cluster-registry/registry/internal/config"
)

type serverParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    *config.Config
	Handler   *ClusterHandler
	Logger    *zap.Logger
}

// NewHandler builds the root HTTP handler, serving HTTP/2 without TLS via h2c
func NewHandler(handler *ClusterHandler) http.Handler {
	mux := http.NewServeMux()
	handler.Routes(mux)
	return h2c.NewHandler(mux, &http2.Server{})
}

// StartServer registers the HTTP server with the fx lifecycle
func StartServer(p serverParams) {
	logger := p.Logger.Named("server")
	addr := fmt.Sprintf(":%d", p.Config.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: NewHandler(p.Handler),
	}

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("failed to listen on %s: %w", addr, err)
			}

			logger.Info("Starting registry server",
				zap.String("address", addr),
				zap.Int("port", p.Config.Server.Port))

			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("Server stopped unexpectedly", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Stopping server")
			shutdownCtx, cancel := context.WithTimeout(ctx, p.Config.Server.ShutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

// Module provides the HTTP transport to the fx container
var Module = fx.Options(
	fx.Provide(NewClusterHandler),
	fx.Invoke(StartServer),
)
