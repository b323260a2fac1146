package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config keys are flat and match the environment variable names in lower
// case, so DB_HOST and a YAML key db_host set the same field.
type Config struct {
	HTTPPort int    `koanf:"http_port" validate:"min=1,max=65535"`
	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn error"`

	DBHost     string `koanf:"db_host"     validate:"required"`
	DBPort     int    `koanf:"db_port"     validate:"min=1,max=65535"`
	DBUser     string `koanf:"db_user"     validate:"required"`
	DBPassword string `koanf:"db_password"`
	DBName     string `koanf:"db_name"     validate:"required"`
	DBSslMode  string `koanf:"db_sslmode"  validate:"oneof=disable allow prefer require verify-ca verify-full"`

	// GeoServiceGrpcHost is optional; without it orders get random locations.
	GeoServiceGrpcHost string        `koanf:"geo_service_grpc_host"`
	GeoTimeout         time.Duration `koanf:"geo_timeout"`

	// KafkaBrokers is optional; without it no events are consumed or published.
	KafkaBrokers              []string `koanf:"kafka_brokers"                validate:"dive,hostname_port"`
	KafkaConsumerGroup        string   `koanf:"kafka_consumer_group"         validate:"required_with=KafkaBrokers"`
	KafkaBasketConfirmedTopic string   `koanf:"kafka_basket_confirmed_topic" validate:"required_with=KafkaBrokers"`
	KafkaOrderChangedTopic    string   `koanf:"kafka_order_changed_topic"    validate:"required_with=KafkaBrokers"`

	// RedisAddr is optional; without it jobs are not coordinated across replicas.
	RedisAddr     string `koanf:"redis_addr" validate:"omitempty,hostname_port"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db" validate:"min=0"`

	AssignSchedule  string        `koanf:"assign_schedule"  validate:"required"`
	AdvanceSchedule string        `koanf:"advance_schedule" validate:"required"`
	AssignBatchSize int           `koanf:"assign_batch_size" validate:"min=0"`
	JobTimeout      time.Duration `koanf:"job_timeout" validate:"min=1ms"`

	OutboxBatchSize    int           `koanf:"outbox_batch_size"    validate:"min=1"`
	OutboxPollInterval time.Duration `koanf:"outbox_poll_interval" validate:"min=1ms"`

	// RandomSeed makes random locations reproducible. Zero uses the global generator.
	RandomSeed uint64 `koanf:"random_seed"`
}

func DefaultConfig() Config {
	return Config{
		HTTPPort:           8082,
		LogLevel:           "info",
		DBHost:             "localhost",
		DBPort:             5432,
		DBUser:             "postgres",
		DBName:             "delivery",
		DBSslMode:          "disable",
		GeoTimeout:         10 * time.Second,
		AssignSchedule:     "@every 1s",
		AdvanceSchedule:    "@every 2s",
		AssignBatchSize:    100,
		JobTimeout:         30 * time.Second,
		OutboxBatchSize:    100,
		OutboxPollInterval: 5 * time.Second,
	}
}

// LoadConfig layers, from lowest to highest precedence: defaults, a .env
// file, the YAML file at path, and the process environment. An empty path
// skips the YAML layer. A missing .env is not an error.
func LoadConfig(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	k := koanf.New(".")
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider("", ".", strings.ToLower), nil); err != nil {
		return Config{}, fmt.Errorf("load environment: %w", err)
	}

	cfg := DefaultConfig()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// DSN is accepted by both the gorm postgres driver and lib/pq.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}

func (c Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
