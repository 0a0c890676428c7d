package config

// EnvPrefix is passed to envconfig; individual fields carry explicit
// GREENBASKET_ tags so the prefix stays empty.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

// Environment variable names referenced outside struct tags.
const (
	EnvAppEnv     = "GREENBASKET_APP_ENV"
	EnvPort       = "GREENBASKET_APP_PORT"
	EnvDBDSN      = "GREENBASKET_DB_DSN"
	EnvDBHost     = "GREENBASKET_DB_HOST"
	EnvDBUser     = "GREENBASKET_DB_USER"
	EnvDBName     = "GREENBASKET_DB_NAME"
	EnvRedisURL   = "GREENBASKET_REDIS_URL"
	EnvJWTSecret  = "GREENBASKET_JWT_SECRET"
	EnvJWTIssuer  = "GREENBASKET_JWT_ISSUER"
	EnvJWTExpMins = "GREENBASKET_JWT_EXPIRATION_MINUTES"

	EnvCheckoutSuccessURL = "GREENBASKET_CHECKOUT_SUCCESS_URL"
	EnvCheckoutCancelURL  = "GREENBASKET_CHECKOUT_CANCEL_URL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
