package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type Config struct {
	RedisHost string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort uint16 `env:"REDIS_PORT" envDefault:"6379"   validate:"min=1000,max=65535"`
	RedisPass string `env:"REDIS_PASSWORD"`
	RedisDb   int    `env:"REDIS_DB"   envDefault:"0"      validate:"min=0,max=15"`

	PostgresHost     string `env:"POSTGRES_HOST"     envDefault:"localhost"`
	PostgresPort     string `env:"POSTGRES_PORT"     envDefault:"5432"`
	PostgresUser     string `env:"POSTGRES_USER"     envDefault:"auction_user"`
	PostgresPassword string `env:"POSTGRES_PASSWORD" envDefault:"auction_password"`
	PostgresDb       string `env:"POSTGRES_DB"       envDefault:"auction_db"`

	// HS256 key used to verify bearer tokens on write endpoints.
	AuthSecret string `env:"AUTH_SECRET" validate:"required,min=16"`

	SearchDefaultPageSize int    `env:"SEARCH_DEFAULT_PAGE_SIZE" envDefault:"4"   validate:"min=1"`
	SearchMaxPageSize     int    `env:"SEARCH_MAX_PAGE_SIZE"     envDefault:"100" validate:"min=1,gtefield=SearchDefaultPageSize"`
	SearchResyncSchedule  string `env:"SEARCH_RESYNC_SCHEDULE"   envDefault:"@every 10m" validate:"required"`

	EventsStreamMaxLen int64 `env:"EVENTS_STREAM_MAX_LEN" envDefault:"10000" validate:"min=1"`

	HttpServerPort uint16 `env:"HTTP_SERVER_PORT" envDefault:"8085" validate:"min=1000,max=65535"`
}

func LoadConfig() (*Config, error) {
	// Load environment variables from .env file
	err := godotenv.Load(".env")
	if err != nil {
		zap.L().Debug(".env file not found", zap.Error(err))
	}

	cfg := &Config{}
	if err = env.Parse(cfg); err != nil {
		zap.L().Error("config_load_failed", zap.Error(err))
		return nil, err
	}

	validate := validator.New()
	err = validate.Struct(cfg)
	if err != nil {
		zap.L().Error("config_validation_failed", zap.Error(err))
		return nil, err
	}
	return cfg, nil
}
