package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Stripe        StripeConfig
	Checkout      CheckoutConfig
	Realtime      RealtimeConfig
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
	Env          string `envconfig:"GIGWORKS_APP_ENV" required:"true"`
	Port         string `envconfig:"GIGWORKS_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"GIGWORKS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"GIGWORKS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"GIGWORKS_DB_DSN"`
	Driver string `envconfig:"GIGWORKS_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"GIGWORKS_DB_HOST"`
	LegacyPort     int    `envconfig:"GIGWORKS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"GIGWORKS_DB_USER"`
	LegacyPassword string `envconfig:"GIGWORKS_DB_PASSWORD"`
	LegacyName     string `envconfig:"GIGWORKS_DB_NAME"`
	LegacySSLMode  string `envconfig:"GIGWORKS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"GIGWORKS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"GIGWORKS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"GIGWORKS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"GIGWORKS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"GIGWORKS_REDIS_URL" required:"true"`
	Address      string        `envconfig:"GIGWORKS_REDIS_ADDR"`
	Password     string        `envconfig:"GIGWORKS_REDIS_PASSWORD"`
	DB           int           `envconfig:"GIGWORKS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"GIGWORKS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"GIGWORKS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"GIGWORKS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"GIGWORKS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"GIGWORKS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"GIGWORKS_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"GIGWORKS_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"GIGWORKS_JWT_EXPIRATION_MINUTES" default:"60"`
}

type AuthRateLimitConfig struct {
	Window   time.Duration `envconfig:"GIGWORKS_AUTH_RATE_LIMIT_WINDOW" default:"15m"`
	IPLimit  int           `envconfig:"GIGWORKS_AUTH_RATE_LIMIT_IP_LIMIT" default:"100"`
	KeyLimit int           `envconfig:"GIGWORKS_AUTH_RATE_LIMIT_KEY_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"GIGWORKS_AUTO_MIGRATE" default:"false"`
}

type StripeConfig struct {
	APIKey string `envconfig:"GIGWORKS_STRIPE_API_KEY"`
	Secret string `envconfig:"GIGWORKS_STRIPE_SECRET"`
	Env    string `envconfig:"GIGWORKS_STRIPE_ENV" default:"test"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

type CheckoutConfig struct {
	SuccessURL        string        `envconfig:"GIGWORKS_CHECKOUT_SUCCESS_URL" required:"true"`
	CancelURL         string        `envconfig:"GIGWORKS_CHECKOUT_CANCEL_URL" required:"true"`
	Currency          string        `envconfig:"GIGWORKS_CHECKOUT_CURRENCY" default:"usd"`
	WebhookEventTTL   time.Duration `envconfig:"GIGWORKS_CHECKOUT_WEBHOOK_EVENT_TTL" default:"720h"`
	WebhookEventScope string        `envconfig:"GIGWORKS_CHECKOUT_WEBHOOK_EVENT_SCOPE" default:"stripe_checkout"`
}

type RealtimeConfig struct {
	SendBufferSize  int           `envconfig:"GIGWORKS_REALTIME_SEND_BUFFER" default:"32"`
	WriteTimeout    time.Duration `envconfig:"GIGWORKS_REALTIME_WRITE_TIMEOUT" default:"10s"`
	MaxMessageBytes int64         `envconfig:"GIGWORKS_REALTIME_MAX_MESSAGE_BYTES" default:"65536"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
