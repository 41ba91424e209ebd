package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	OTP          OTPConfig
	Fees         FeesConfig
	Cron         CronConfig
	FeatureFlags FeatureFlagsConfig
	Stripe       StripeConfig
	Sendgrid     SendgridConfig
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
	Env          string `envconfig:"GLAMSPOT_APP_ENV" required:"true"`
	Port         string `envconfig:"GLAMSPOT_APP_PORT" required:"true"`
	BaseURL      string `envconfig:"GLAMSPOT_APP_BASE_URL" default:"http://localhost:3000"`
	LogLevel     string `envconfig:"GLAMSPOT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"GLAMSPOT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"GLAMSPOT_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"GLAMSPOT_DB_DSN"`
	Driver string `envconfig:"GLAMSPOT_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"GLAMSPOT_DB_HOST"`
	LegacyPort     int    `envconfig:"GLAMSPOT_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"GLAMSPOT_DB_USER"`
	LegacyPassword string `envconfig:"GLAMSPOT_DB_PASSWORD"`
	LegacyName     string `envconfig:"GLAMSPOT_DB_NAME"`
	LegacySSLMode  string `envconfig:"GLAMSPOT_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"GLAMSPOT_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"GLAMSPOT_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"GLAMSPOT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"GLAMSPOT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"GLAMSPOT_REDIS_URL" required:"true"`
	Address      string        `envconfig:"GLAMSPOT_REDIS_ADDR"`
	Password     string        `envconfig:"GLAMSPOT_REDIS_PASSWORD"`
	DB           int           `envconfig:"GLAMSPOT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"GLAMSPOT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"GLAMSPOT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"GLAMSPOT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"GLAMSPOT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"GLAMSPOT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"GLAMSPOT_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"GLAMSPOT_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"GLAMSPOT_JWT_EXPIRATION_MINUTES" required:"true"`
}

type OTPConfig struct {
	TTL                    time.Duration `envconfig:"GLAMSPOT_OTP_TTL" default:"5m"`
	ConfirmationTTLMinutes int           `envconfig:"GLAMSPOT_OTP_CONFIRMATION_TTL_MINUTES" default:"10"`
}

// ConfirmationTTL is the lifetime of the token minted after a successful verify.
func (o OTPConfig) ConfirmationTTL() time.Duration {
	if o.ConfirmationTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(o.ConfirmationTTLMinutes) * time.Minute
}

type FeesConfig struct {
	PlatformFeePercent int64 `envconfig:"GLAMSPOT_PLATFORM_FEE_PERCENT" default:"10"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"GLAMSPOT_CRON_INTERVAL" default:"24h"`
	LockTTL  time.Duration `envconfig:"GLAMSPOT_CRON_LOCK_TTL" default:"10m"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"GLAMSPOT_AUTO_MIGRATE" default:"false"`
}

type StripeConfig struct {
	APIKey string `envconfig:"GLAMSPOT_STRIPE_API_KEY"`
	Secret string `envconfig:"GLAMSPOT_STRIPE_SECRET"`
	Env    string `envconfig:"GLAMSPOT_STRIPE_ENV" default:"test"`

	OnboardingRefreshURL string `envconfig:"GLAMSPOT_STRIPE_ONBOARDING_REFRESH_URL"`
	OnboardingReturnURL  string `envconfig:"GLAMSPOT_STRIPE_ONBOARDING_RETURN_URL"`
}

type SendgridConfig struct {
	APIKey      string `envconfig:"GLAMSPOT_SENDGRID_API_KEY"`
	DefaultFrom string `envconfig:"GLAMSPOT_SENDGRID_FROM_EMAIL"`
	FromName    string `envconfig:"GLAMSPOT_SENDGRID_FROM_NAME" default:"GlamSpot"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
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
