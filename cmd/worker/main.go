package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/seatbooking/config"
	"github.com/Domenick1991/seatbooking/internal/bootstrap"
	"github.com/Domenick1991/seatbooking/internal/cache"
	"github.com/Domenick1991/seatbooking/internal/kafka"
	"github.com/Domenick1991/seatbooking/internal/logger"
	"github.com/Domenick1991/seatbooking/internal/worker"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("load .env: %v", err)
	}

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.ValidateWorker(); err != nil {
		log.Fatalf("load config: %v", err)
	}
	logg := logger.New(os.Stdout, cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var pool *pgxpool.Pool
	if cfg.Inventory.Driver == config.DriverPostgres {
		pool, err = pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			log.Fatalf("connect postgres: %v", err)
		}
		defer pool.Close()
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	seatStore, err := bootstrap.NewSeatStore(ctx, cfg, pool, redisClient)
	if err != nil {
		log.Fatalf("seat store: %v", err)
	}
	redisCache := cache.NewRedisCache(redisClient, cfg.Booking.FlightsCacheTTL(), cfg.Booking.SeatListCacheTTL())
	reconciler := worker.NewReconciler(seatStore, redisCache, logg)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.BookingEventsTopic, logg)
	defer consumer.Close()

	logg.Info("worker started",
		slog.String("topic", cfg.Kafka.BookingEventsTopic),
		slog.Duration("reconcile_interval", cfg.Worker.ReconcileInterval()),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return consumer.ConsumeEvents(gctx, reconciler.HandleEvent)
	})
	g.Go(func() error {
		return reconciler.Run(gctx, cfg.Worker.ReconcileInterval())
	})
	if err := g.Wait(); err != nil {
		log.Fatalf("worker error: %v", err)
	}
	logg.Info("worker stopped", slog.Int("pending_leaks", reconciler.Pending()))
}
