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
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	Stripe       StripeConfig
	Checkout     CheckoutConfig
	Cart         CartConfig
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
	Env          string   `envconfig:"GREENBASKET_APP_ENV" required:"true"`
	Port         string   `envconfig:"GREENBASKET_APP_PORT" required:"true"`
	LogLevel     string   `envconfig:"GREENBASKET_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"GREENBASKET_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"GREENBASKET_CORS_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"GREENBASKET_DB_DSN"`
	Driver string `envconfig:"GREENBASKET_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"GREENBASKET_DB_HOST"`
	LegacyPort     int    `envconfig:"GREENBASKET_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"GREENBASKET_DB_USER"`
	LegacyPassword string `envconfig:"GREENBASKET_DB_PASSWORD"`
	LegacyName     string `envconfig:"GREENBASKET_DB_NAME"`
	LegacySSLMode  string `envconfig:"GREENBASKET_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"GREENBASKET_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"GREENBASKET_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"GREENBASKET_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"GREENBASKET_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"GREENBASKET_REDIS_URL" required:"true"`
	Address      string        `envconfig:"GREENBASKET_REDIS_ADDR"`
	Password     string        `envconfig:"GREENBASKET_REDIS_PASSWORD"`
	DB           int           `envconfig:"GREENBASKET_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"GREENBASKET_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"GREENBASKET_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"GREENBASKET_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"GREENBASKET_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"GREENBASKET_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"GREENBASKET_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"GREENBASKET_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"GREENBASKET_JWT_EXPIRATION_MINUTES" default:"1440"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"GREENBASKET_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"GREENBASKET_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"GREENBASKET_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"GREENBASKET_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"GREENBASKET_ARGON_KEY_LEN" default:"32"`
}

type StripeConfig struct {
	APIKey string `envconfig:"GREENBASKET_STRIPE_API_KEY"`
	Env    string `envconfig:"GREENBASKET_STRIPE_ENV" default:"test"`
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
	SuccessURL string `envconfig:"GREENBASKET_CHECKOUT_SUCCESS_URL" required:"true"`
	CancelURL  string `envconfig:"GREENBASKET_CHECKOUT_CANCEL_URL" required:"true"`
	Currency   string `envconfig:"GREENBASKET_CHECKOUT_CURRENCY" default:"usd"`
}

type CartConfig struct {
	// TTL bounds how long an idle browsing-session cart survives in Redis.
	TTL time.Duration `envconfig:"GREENBASKET_CART_TTL" default:"720h"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"GREENBASKET_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"GREENBASKET_AUTO_MIGRATE" default:"false"`
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
