package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/seatbooking/api"
	"github.com/Domenick1991/seatbooking/config"
	seatsapi "github.com/Domenick1991/seatbooking/internal/api/seats_service_api"
	"github.com/Domenick1991/seatbooking/internal/bootstrap"
	"github.com/Domenick1991/seatbooking/internal/cache"
	"github.com/Domenick1991/seatbooking/internal/kafka"
	"github.com/Domenick1991/seatbooking/internal/logger"
	"github.com/Domenick1991/seatbooking/internal/repository"
	"github.com/Domenick1991/seatbooking/internal/service/booking"
	"github.com/Domenick1991/seatbooking/internal/service/flights"
	"github.com/Domenick1991/seatbooking/internal/service/seatmaps"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
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
	logg := logger.New(os.Stdout, cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

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
	producer := kafka.NewProducer(cfg.Kafka.Brokers, logg)
	defer producer.Close()
	publisher := kafka.NewEventPublisher(producer, cfg.Kafka.BookingEventsTopic)

	flightRepo := repository.NewFlightRepository(pool)
	sectionRepo := repository.NewSectionRepository(pool)

	flightService := flights.NewFlightService(flightRepo, sectionRepo, seatStore, redisCache, logg)
	seatMapService := seatmaps.NewSeatMapService(flightRepo, sectionRepo, seatStore, redisCache, logg)
	coordinator := booking.NewBookingCoordinator(
		flightRepo,
		seatStore,
		booking.WithCache(redisCache),
		booking.WithProducer(publisher),
		booking.WithLogger(logg),
		booking.WithSeatTimeout(cfg.Booking.SeatTimeout()),
		booking.WithReleasePolicy(cfg.Booking.ReleaseAttempts, cfg.Booking.ReleaseBackoff()),
		booking.WithIdempotencyTTL(cfg.Booking.IdempotencyTTL()),
		booking.WithPublishTimeout(cfg.Booking.PublishTimeout()),
	)

	router := api.NewRouter(cfg.HTTP, logg, flightService, seatMapService, coordinator)
	seatsServer := seatsapi.NewServer(seatMapService, coordinator)

	logg.Info("starting seatbooking",
		slog.String("inventory", cfg.Inventory.Driver),
		slog.String("http", cfg.HTTP.Address),
		slog.String("grpc", cfg.GRPC.Address),
	)
	if err := bootstrap.Run(ctx, cfg, logg, router, seatsServer); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
