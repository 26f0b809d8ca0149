package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix is applied to every environment variable envconfig reads.
	EnvPrefix = "rj"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "RJ_DB_DSN"
	EnvDBHost = "RJ_DB_HOST"
	EnvDBUser = "RJ_DB_USER"
	EnvDBName = "RJ_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Razorpay     RazorpayConfig
	FeatureFlags FeatureFlagsConfig
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
	Env          string `envconfig:"RJ_APP_ENV" required:"true"`
	Port         string `envconfig:"RJ_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"RJ_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"RJ_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"RJ_DB_DSN"`
	Driver string `envconfig:"RJ_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"RJ_DB_HOST"`
	LegacyPort     int    `envconfig:"RJ_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"RJ_DB_USER"`
	LegacyPassword string `envconfig:"RJ_DB_PASSWORD"`
	LegacyName     string `envconfig:"RJ_DB_NAME"`
	LegacySSLMode  string `envconfig:"RJ_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"RJ_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"RJ_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"RJ_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"RJ_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"RJ_REDIS_URL" required:"true"`
	Address      string        `envconfig:"RJ_REDIS_ADDR"`
	Password     string        `envconfig:"RJ_REDIS_PASSWORD"`
	DB           int           `envconfig:"RJ_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"RJ_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"RJ_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"RJ_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"RJ_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"RJ_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"RJ_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"RJ_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"RJ_JWT_EXPIRATION_MINUTES" required:"true"`
}

// RazorpayConfig carries the payment gateway credentials. The key id is
// returned to clients so the hosted checkout widget can be initialized.
type RazorpayConfig struct {
	KeyID     string `envconfig:"RJ_RAZORPAY_KEY_ID" required:"true"`
	KeySecret string `envconfig:"RJ_RAZORPAY_KEY_SECRET" required:"true"`
	Currency  string `envconfig:"RJ_RAZORPAY_CURRENCY" default:"INR"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"RJ_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"RJ_AUTO_MIGRATE" default:"false"`
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
