package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	GRPC      GRPCConfig      `yaml:"grpc"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Inventory InventoryConfig `yaml:"inventory"`
	Booking   BookingConfig   `yaml:"booking"`
	Worker    WorkerConfig    `yaml:"worker"`
	Log       LogConfig       `yaml:"log"`
}

type HTTPConfig struct {
	Address        string   `yaml:"address" validate:"required"`
	SwaggerFile    string   `yaml:"swagger_file"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type GRPCConfig struct {
	Address string `yaml:"address" validate:"required"`
}

type DatabaseConfig struct {
	// URL, when set, wins over the individual fields.
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port" validate:"omitempty,min=1,max=65535"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode" validate:"omitempty,oneof=disable allow prefer require verify-ca verify-full"`
}

func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr" validate:"required"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db" validate:"min=0"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers" validate:"required,min=1,dive,required"`
	BookingEventsTopic string   `yaml:"booking_events_topic" validate:"required"`
	GroupID            string   `yaml:"group_id" validate:"required"`
}

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

type InventoryConfig struct {
	// Driver selects the seat store: memory, postgres or redis.
	Driver string `yaml:"driver" validate:"oneof=memory postgres redis"`
}

type BookingConfig struct {
	SeatTimeoutMillis       int `yaml:"seat_timeout_ms" validate:"min=1"`
	ReleaseAttempts         int `yaml:"release_attempts" validate:"min=1"`
	ReleaseBackoffMillis    int `yaml:"release_backoff_ms" validate:"min=0"`
	IdempotencyTTLSeconds   int `yaml:"idempotency_ttl_seconds" validate:"min=1"`
	FlightsCacheTTLSeconds  int `yaml:"flights_cache_ttl_seconds" validate:"min=1"`
	SeatListCacheTTLSeconds int `yaml:"seat_list_cache_ttl_seconds" validate:"min=1"`
	PublishTimeoutMillis    int `yaml:"publish_timeout_ms" validate:"min=1"`
}

func (b BookingConfig) SeatTimeout() time.Duration {
	return time.Duration(b.SeatTimeoutMillis) * time.Millisecond
}

func (b BookingConfig) ReleaseBackoff() time.Duration {
	return time.Duration(b.ReleaseBackoffMillis) * time.Millisecond
}

func (b BookingConfig) IdempotencyTTL() time.Duration {
	return time.Duration(b.IdempotencyTTLSeconds) * time.Second
}

func (b BookingConfig) FlightsCacheTTL() time.Duration {
	return time.Duration(b.FlightsCacheTTLSeconds) * time.Second
}

func (b BookingConfig) SeatListCacheTTL() time.Duration {
	return time.Duration(b.SeatListCacheTTLSeconds) * time.Second
}

func (b BookingConfig) PublishTimeout() time.Duration {
	return time.Duration(b.PublishTimeoutMillis) * time.Millisecond
}

type WorkerConfig struct {
	ReconcileIntervalSeconds int `yaml:"reconcile_interval_seconds" validate:"min=1"`
}

func (w WorkerConfig) ReconcileInterval() time.Duration {
	return time.Duration(w.ReconcileIntervalSeconds) * time.Second
}

type LogConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
	// Format is text or json. Empty picks text for the debug level.
	Format string `yaml:"format" validate:"omitempty,oneof=text json"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML, applies SEATS_* environment overrides and defaults, and
// validates the result.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if cfg.Inventory.Driver == DriverPostgres && cfg.Database.URL == "" && cfg.Database.Host == "" {
		return nil, fmt.Errorf("invalid config: postgres inventory needs database.url or database.host")
	}
	return &cfg, nil
}

// ValidateWorker checks what the reconcile worker needs on top of Parse. The
// worker releases seats in the store the API books into, which an in-process
// memory store cannot be.
func (c *Config) ValidateWorker() error {
	if c.Inventory.Driver == DriverMemory {
		return fmt.Errorf("invalid config: the worker needs a shared inventory driver, not %q", DriverMemory)
	}
	return nil
}

func (c *Config) applyEnv() {
	overrides := map[string]*string{
		"SEATS_HTTP_ADDRESS":     &c.HTTP.Address,
		"SEATS_GRPC_ADDRESS":     &c.GRPC.Address,
		"SEATS_DATABASE_DSN":     &c.Database.URL,
		"SEATS_REDIS_ADDR":       &c.Redis.Addr,
		"SEATS_INVENTORY_DRIVER": &c.Inventory.Driver,
		"SEATS_LOG_LEVEL":        &c.Log.Level,
	}
	for env, field := range overrides {
		if v, ok := os.LookupEnv(env); ok && v != "" {
			*field = v
		}
	}
	if v := os.Getenv("SEATS_KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
}

func (c *Config) applyDefaults() {
	setDefault(&c.HTTP.Address, ":8080")
	setDefault(&c.GRPC.Address, ":9090")
	setDefault(&c.Database.SSLMode, "disable")
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	setDefault(&c.Redis.Addr, "localhost:6379")
	if len(c.Kafka.Brokers) == 0 {
		c.Kafka.Brokers = []string{"localhost:9092"}
	}
	setDefault(&c.Kafka.BookingEventsTopic, "seat-booking-events")
	setDefault(&c.Kafka.GroupID, "seatbooking-worker")
	setDefault(&c.Inventory.Driver, DriverPostgres)
	setDefaultInt(&c.Booking.SeatTimeoutMillis, 2000)
	setDefaultInt(&c.Booking.ReleaseAttempts, 3)
	setDefaultInt(&c.Booking.ReleaseBackoffMillis, 100)
	setDefaultInt(&c.Booking.IdempotencyTTLSeconds, 600)
	setDefaultInt(&c.Booking.FlightsCacheTTLSeconds, 60)
	setDefaultInt(&c.Booking.SeatListCacheTTLSeconds, 5)
	setDefaultInt(&c.Booking.PublishTimeoutMillis, 1000)
	setDefaultInt(&c.Worker.ReconcileIntervalSeconds, 30)
	setDefault(&c.Log.Level, "info")
}

func setDefault(field *string, value string) {
	if *field == "" {
		*field = value
	}
}

func setDefaultInt(field *int, value int) {
	if *field == 0 {
		*field = value
	}
}
