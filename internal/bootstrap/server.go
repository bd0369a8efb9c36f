package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/Domenick1991/seatbooking/config"
	seatsapi "github.com/Domenick1991/seatbooking/internal/api/seats_service_api"
	"github.com/Domenick1991/seatbooking/internal/logger"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

const shutdownTimeout = 5 * time.Second

type Servers struct {
	grpcServer *grpc.Server
	httpServer *http.Server
	log        *slog.Logger
}

// NewServers wires the HTTP handler and the gRPC seats service.
func NewServers(cfg *config.Config, log *slog.Logger, handler http.Handler, seats seatsapi.SeatsServiceServer) *Servers {
	grpcSrv := grpc.NewServer(grpc.UnaryInterceptor(logger.UnaryServerInterceptor(log)))
	seatsapi.RegisterSeatsServiceServer(grpcSrv, seats)

	healthSrv := health.NewServer()
	healthSrv.SetServingStatus(seatsapi.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcSrv, healthSrv)
	reflection.Register(grpcSrv)

	return &Servers{
		grpcServer: grpcSrv,
		httpServer: &http.Server{
			Addr:              cfg.HTTP.Address,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		log: log,
	}
}

// Run serves gRPC and HTTP until ctx is canceled or a server fails, then
// shuts both down.
func (s *Servers) Run(ctx context.Context, grpcAddress string) error {
	lis, err := net.Listen("tcp", grpcAddress)
	if err != nil {
		return fmt.Errorf("listen gRPC %s: %w", grpcAddress, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info("grpc server started", slog.String("address", lis.Addr().String()))
		if err := s.grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("serve gRPC: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		s.log.Info("http server started", slog.String("address", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve http: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.log.Info("shutting down servers")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		s.grpcServer.GracefulStop()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	})
	return g.Wait()
}

// Run starts both servers with the configured addresses and blocks.
func Run(ctx context.Context, cfg *config.Config, log *slog.Logger, handler http.Handler, seats seatsapi.SeatsServiceServer) error {
	return NewServers(cfg, log, handler, seats).Run(ctx, cfg.GRPC.Address)
}
