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
	Session      SessionConfig
	Password     PasswordConfig
	Upload       UploadConfig
	Cron         CronConfig
	Notify       NotifyConfig
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
	Env          string `envconfig:"ACERVO_APP_ENV" required:"true"`
	Port         string `envconfig:"ACERVO_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"ACERVO_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ACERVO_LOG_WARN_STACK" default:"false"`

	CORSOrigins []string `envconfig:"ACERVO_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"ACERVO_DB_DSN"`
	Driver string `envconfig:"ACERVO_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"ACERVO_DB_HOST"`
	LegacyPort     int    `envconfig:"ACERVO_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"ACERVO_DB_USER"`
	LegacyPassword string `envconfig:"ACERVO_DB_PASSWORD"`
	LegacyName     string `envconfig:"ACERVO_DB_NAME"`
	LegacySSLMode  string `envconfig:"ACERVO_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ACERVO_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ACERVO_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ACERVO_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ACERVO_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ACERVO_REDIS_URL" required:"true"`
	Address      string        `envconfig:"ACERVO_REDIS_ADDR"`
	Password     string        `envconfig:"ACERVO_REDIS_PASSWORD"`
	DB           int           `envconfig:"ACERVO_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ACERVO_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ACERVO_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ACERVO_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ACERVO_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ACERVO_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// SessionConfig controls the signed session cookie and its Redis backing.
type SessionConfig struct {
	Secret            string `envconfig:"ACERVO_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"ACERVO_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"ACERVO_JWT_EXPIRATION_MINUTES" required:"true"`
	CookieName        string `envconfig:"ACERVO_SESSION_COOKIE_NAME" default:"session"`
	CookieSecure      bool   `envconfig:"ACERVO_SESSION_COOKIE_SECURE" default:"false"`
}

// TTL returns the session lifetime derived from the token expiration.
func (s SessionConfig) TTL() time.Duration {
	if s.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(s.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"ACERVO_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"ACERVO_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"ACERVO_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"ACERVO_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"ACERVO_ARGON_KEY_LEN" default:"32"`
}

type UploadConfig struct {
	Dir         string `envconfig:"ACERVO_UPLOAD_DIR" default:"uploads"`
	BaseURL     string `envconfig:"ACERVO_UPLOAD_BASE_URL" default:"/uploads"`
	MaxUploadMB int    `envconfig:"ACERVO_MAX_UPLOAD_MB" default:"5"`
}

// MaxUploadBytes returns the upload ceiling in bytes.
func (u UploadConfig) MaxUploadBytes() int64 {
	return int64(u.MaxUploadMB) << 20
}

type CronConfig struct {
	Interval time.Duration `envconfig:"ACERVO_CRON_INTERVAL" default:"1h"`
	LockKey  string        `envconfig:"ACERVO_CRON_LOCK_KEY" default:"cron:leader"`
	LockTTL  time.Duration `envconfig:"ACERVO_CRON_LOCK_TTL" default:"2h"`
	Port     string        `envconfig:"ACERVO_CRON_METRICS_PORT" default:"9100"`
}

type NotifyConfig struct {
	ReminderDaysAhead int `envconfig:"ACERVO_NOTIFY_REMINDER_DAYS_AHEAD" default:"1"`
	MaxAttempts       int `envconfig:"ACERVO_NOTIFY_MAX_ATTEMPTS" default:"3"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"ACERVO_AUTO_MIGRATE" default:"false"`
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
