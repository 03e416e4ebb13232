package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "DRIVESHARE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	Booking      BookingConfig
	Payments     PaymentsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"DRIVESHARE_APP_ENV" required:"true"`
	Port         string `envconfig:"DRIVESHARE_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"DRIVESHARE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"DRIVESHARE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"DRIVESHARE_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"DRIVESHARE_DB_DSN"`
	Driver string `envconfig:"DRIVESHARE_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"DRIVESHARE_DB_HOST"`
	Port     int    `envconfig:"DRIVESHARE_DB_PORT" default:"5432"`
	User     string `envconfig:"DRIVESHARE_DB_USER"`
	Password string `envconfig:"DRIVESHARE_DB_PASSWORD"`
	Name     string `envconfig:"DRIVESHARE_DB_NAME"`
	SSLMode  string `envconfig:"DRIVESHARE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"DRIVESHARE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"DRIVESHARE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"DRIVESHARE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"DRIVESHARE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"DRIVESHARE_REDIS_URL"`
	Address      string        `envconfig:"DRIVESHARE_REDIS_ADDR"`
	Password     string        `envconfig:"DRIVESHARE_REDIS_PASSWORD"`
	DB           int           `envconfig:"DRIVESHARE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"DRIVESHARE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"DRIVESHARE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"DRIVESHARE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"DRIVESHARE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"DRIVESHARE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"DRIVESHARE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"DRIVESHARE_AUTO_MIGRATE" default:"false"`
}

type BookingConfig struct {
	NumberPrefix       string        `envconfig:"DRIVESHARE_BOOKING_NUMBER_PREFIX" default:"DS"`
	MinRentalDuration  time.Duration `envconfig:"DRIVESHARE_BOOKING_MIN_RENTAL_DURATION" default:"24h"`
	CallbackReplayTTL  time.Duration `envconfig:"DRIVESHARE_TOPUP_CALLBACK_REPLAY_TTL" default:"168h"`
	DailyRateFallback  int64         `envconfig:"DRIVESHARE_BOOKING_DAILY_RATE_FALLBACK_CENTS" default:"0"`
	DepositRatePercent int           `envconfig:"DRIVESHARE_BOOKING_DEPOSIT_RATE_PERCENT" default:"20"`
}

type PaymentsConfig struct {
	GatewayBaseURL string        `envconfig:"DRIVESHARE_PAYMENTS_GATEWAY_URL"`
	GatewayAPIKey  string        `envconfig:"DRIVESHARE_PAYMENTS_GATEWAY_API_KEY"`
	RequestTimeout time.Duration `envconfig:"DRIVESHARE_PAYMENTS_REQUEST_TIMEOUT" default:"10s"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"DRIVESHARE_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	NotificationTopic        string `envconfig:"DRIVESHARE_PUBSUB_NOTIFICATION_TOPIC" default:"ds-notification-events"`
	NotificationSubscription string `envconfig:"DRIVESHARE_PUBSUB_NOTIFICATION_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"DRIVESHARE_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"DRIVESHARE_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"DRIVESHARE_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	for _, pair := range []struct {
		env   string
		value string
	}{
		{"DRIVESHARE_DB_HOST", db.Host},
		{"DRIVESHARE_DB_USER", db.User},
		{"DRIVESHARE_DB_NAME", db.Name},
	} {
		if pair.value == "" {
			missing = append(missing, pair.env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either DRIVESHARE_DB_DSN or %s are required", strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
