package config

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

const envFile = ".env"

// PostgresEndpoint is one side of the read/write split.
type PostgresEndpoint struct {
	Host     string `envconfig:"HOST"`
	Port     string `envconfig:"PORT"     default:"5432"`
	Username string `envconfig:"USER"`
	Password string `envconfig:"PASSWORD"`
	Name     string `envconfig:"NAME"`
	Timezone string `envconfig:"TIMEZONE" default:"Asia/Jakarta"`
	SSLMode  string `envconfig:"SSL_MODE" default:"disable"`
}

type Config struct {
	Server struct {
		Env      string `envconfig:"ENV"       default:"development"`
		LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
		Port     string `envconfig:"PORT"      default:"8080"`
		Host     string `envconfig:"HOST"`
		Shutdown struct {
			CleanupPeriodSeconds int64 `envconfig:"CLEANUP_PERIOD_SECONDS" default:"10"`
			GracePeriodSeconds   int64 `envconfig:"GRACE_PERIOD_SECONDS"   default:"5"`
		} `envconfig:"SHUTDOWN"`
	} `envconfig:"SERVER"`

	App struct {
		Name string `envconfig:"APP_NAME" default:"roombook"`
		CORS struct {
			AllowCredentials bool     `envconfig:"ALLOW_CREDENTIALS"`
			AllowedHeaders   []string `envconfig:"ALLOWED_HEADERS"`
			AllowedMethods   []string `envconfig:"ALLOWED_METHODS"`
			AllowedOrigins   []string `envconfig:"ALLOWED_ORIGINS"`
			Enable           bool     `envconfig:"ENABLE"`
			MaxAgeSeconds    int      `envconfig:"MAX_AGE_SECONDS" default:"300"`
		} `envconfig:"CORS"`
		RateLimiter struct {
			Enable        bool `envconfig:"ENABLE"`
			MaxRequests   int  `envconfig:"MAX_REQUESTS"   default:"100"`
			WindowSeconds int  `envconfig:"WINDOW_SECONDS" default:"60"`
		} `envconfig:"RATE_LIMITER"`
		APIKey  string `envconfig:"API_KEY"`
		BaseURL string `envconfig:"BASE_URL"`
	} `envconfig:"APP"`

	Booking struct {
		FeedWindowDays    int `envconfig:"FEED_WINDOW_DAYS"    default:"60"`
		MaxRangeDays      int `envconfig:"MAX_RANGE_DAYS"      default:"366"`
		MaxRecurrenceDays int `envconfig:"MAX_RECURRENCE_DAYS" default:"366"`
	} `envconfig:"BOOKING"`

	Cache struct {
		Redis struct {
			Primary struct {
				Host     string `envconfig:"HOST"`
				Port     string `envconfig:"PORT" default:"6379"`
				Password string `envconfig:"PASSWORD"`
				DB       int    `envconfig:"DB"`
			} `envconfig:"PRIMARY"`
		} `envconfig:"REDIS"`
		TTL int `envconfig:"TTL" default:"300"`
	} `envconfig:"CACHE"`

	JWT struct {
		AccessSecret string `envconfig:"ACCESS_SECRET"`
		Issuer       string `envconfig:"ISSUER"`
	} `envconfig:"JWT"`

	DB struct {
		Postgres struct {
			MaxRetry       int              `envconfig:"MAX_RETRY"       default:"3"`
			RetryWaitTime  int              `envconfig:"RETRY_WAIT_TIME" default:"2"`
			MigrationTable string           `envconfig:"MIGRATION_TABLE"`
			AutoMigrate    bool             `envconfig:"AUTO_MIGRATE"`
			Prefix         string           `envconfig:"PREFIX"`
			Read           PostgresEndpoint `envconfig:"READ"`
			Write          PostgresEndpoint `envconfig:"WRITE"`
		} `envconfig:"POSTGRES"`
	} `envconfig:"DB"`

	Kafka struct {
		Brokers       []string `envconfig:"BROKERS"`
		ConsumerGroup string   `envconfig:"CONSUMER_GROUP" default:"roombook-notifier"`
		SASL          struct {
			Username string `envconfig:"USERNAME"`
			Password string `envconfig:"PASSWORD"`
		} `envconfig:"SASL"`
		Topics struct {
			Booking string `envconfig:"BOOKING" default:"room-bookings"`
		} `envconfig:"TOPICS"`
	} `envconfig:"KAFKA"`

	Notification struct {
		ServiceEndpoint       string   `envconfig:"SERVICE_ENDPOINT"`
		SenderIdentity        string   `envconfig:"SENDER_IDENTITY"`
		AdminDistributionList []string `envconfig:"ADMIN_DISTRIBUTION_LIST"`
		TimeoutSeconds        int      `envconfig:"TIMEOUT_SECONDS"         default:"10"`
		RatePerSecond         float64  `envconfig:"RATE_PER_SECOND"         default:"1"`
	} `envconfig:"NOTIFICATION"`

	Relay struct {
		AllowedHosts   []string `envconfig:"ALLOWED_HOSTS"`
		TimeoutSeconds int      `envconfig:"TIMEOUT_SECONDS" default:"15"`
		MaxBodyBytes   int64    `envconfig:"MAX_BODY_BYTES"  default:"1048576"`
	} `envconfig:"RELAY"`

	External struct {
		Otel struct {
			Endpoint string `envconfig:"ENDPOINT"`
		} `envconfig:"OTEL"`
		S3 struct {
			APIEndpoint     string `envconfig:"API_ENDPOINT"`
			AccessKeyID     string `envconfig:"ACCESS_KEY_ID"`
			SecretAccessKey string `envconfig:"SECRET_ACCESS_KEY"`
			BucketName      string `envconfig:"BUCKET_NAME"`
			PublicDomain    string `envconfig:"PUBLIC_DOMAIN"`
			Region          string `envconfig:"REGION"            default:"auto"`
		} `envconfig:"S3"`
	} `envconfig:"EXTERNAL"`
}

// Validate reports every setting the service cannot start without.
func (c *Config) Validate() error {
	var errs []error

	if c.DB.Postgres.Write.Host == "" {
		errs = append(errs, errors.New("DB_POSTGRES_WRITE_HOST is required"))
	}

	if c.App.RateLimiter.Enable && (c.App.RateLimiter.MaxRequests <= 0 || c.App.RateLimiter.WindowSeconds <= 0) {
		errs = append(errs, errors.New("APP_RATE_LIMITER needs positive MAX_REQUESTS and WINDOW_SECONDS when enabled"))
	}

	if c.Booking.FeedWindowDays <= 0 || c.Booking.MaxRangeDays < c.Booking.FeedWindowDays {
		errs = append(errs, errors.New("BOOKING_MAX_RANGE_DAYS must be at least BOOKING_FEED_WINDOW_DAYS, which must be positive"))
	}

	if c.Booking.MaxRecurrenceDays <= 0 {
		errs = append(errs, errors.New("BOOKING_MAX_RECURRENCE_DAYS must be positive"))
	}

	return errors.Join(errs...)
}

// Load reads envFile when present, then the process environment, which wins over it.
func Load(envFile string) (*Config, error) {
	if err := godotenv.Load(envFile); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read %s: %w", envFile, err)
		}

		log.Warn().Str("file", envFile).Msg("env file not found, using process environment only")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

var (
	conf    *Config
	loadErr error
	once    sync.Once
)

func Init() error {
	once.Do(func() {
		conf, loadErr = Load(envFile)
		if loadErr == nil {
			log.Info().Str("env", conf.Server.Env).Msg("Service configuration initialized successfully")
		}
	})

	return loadErr
}

func Get() *Config {
	if err := Init(); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize configuration")
	}

	return conf
}
