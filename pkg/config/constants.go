package config

// EnvPrefix is applied by envconfig when resolving variables.
const EnvPrefix = "acervo"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Environment variable names referenced outside struct tags.
const (
	EnvAppEnv     = "ACERVO_APP_ENV"
	EnvPort       = "ACERVO_APP_PORT"
	EnvDBDSN      = "ACERVO_DB_DSN"
	EnvDBHost     = "ACERVO_DB_HOST"
	EnvDBUser     = "ACERVO_DB_USER"
	EnvDBName     = "ACERVO_DB_NAME"
	EnvRedisURL   = "ACERVO_REDIS_URL"
	EnvJWTSecret  = "ACERVO_JWT_SECRET"
	EnvJWTIssuer  = "ACERVO_JWT_ISSUER"
	EnvJWTExpMins = "ACERVO_JWT_EXPIRATION_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
