package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/Domenick1991/seatbooking/config"
	"github.com/Domenick1991/seatbooking/internal/logger"
	"github.com/Domenick1991/seatbooking/internal/service/booking"
	"github.com/Domenick1991/seatbooking/internal/service/flights"
	"github.com/Domenick1991/seatbooking/internal/service/seatmaps"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger"
)

const openAPIPath = "/openapi.json"

func NewRouter(cfg config.HTTPConfig, log *slog.Logger, flightSvc flights.FlightUseCase, seatMaps seatmaps.SeatMapUseCase, bookings booking.BookingUseCase) *gin.Engine {
	engine := gin.New()
	engine.Use(logger.Gin(log), gin.Recovery())
	engine.Use(cors.New(corsConfig(cfg.AllowedOrigins)))

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if cfg.SwaggerFile != "" {
		engine.StaticFile(openAPIPath, cfg.SwaggerFile)
		engine.GET("/swagger/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL(openAPIPath))))
	}

	v1 := engine.Group("/api/v1")
	flightGroup := v1.Group("/flights")
	NewFlightHandler(flightSvc).Register(flightGroup)
	NewSeatHandler(seatMaps, bookings).Register(flightGroup)
	NewSectionHandler(flightSvc).Register(v1.Group("/sections"))

	return engine
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Length", "Content-Type", IdempotencyKeyHeader},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
