package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix namespaces every environment variable read by Load.
	EnvPrefix = "cantina"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvDBDSN  = "CANTINA_DB_DSN"
	EnvDBHost = "CANTINA_DB_HOST"
	EnvDBUser = "CANTINA_DB_USER"
	EnvDBName = "CANTINA_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	Orders        OrdersConfig
	Uploads       UploadsConfig
	FeatureFlags  FeatureFlagsConfig
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
	Env          string `envconfig:"CANTINA_APP_ENV" required:"true"`
	Port         string `envconfig:"CANTINA_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"CANTINA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CANTINA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"CANTINA_DB_DSN"`
	Driver string `envconfig:"CANTINA_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"CANTINA_DB_HOST"`
	LegacyPort     int    `envconfig:"CANTINA_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CANTINA_DB_USER"`
	LegacyPassword string `envconfig:"CANTINA_DB_PASSWORD"`
	LegacyName     string `envconfig:"CANTINA_DB_NAME"`
	LegacySSLMode  string `envconfig:"CANTINA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CANTINA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CANTINA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CANTINA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CANTINA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CANTINA_REDIS_URL"`
	Address      string        `envconfig:"CANTINA_REDIS_ADDR"`
	Password     string        `envconfig:"CANTINA_REDIS_PASSWORD"`
	DB           int           `envconfig:"CANTINA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CANTINA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CANTINA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CANTINA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CANTINA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CANTINA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"CANTINA_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"CANTINA_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"CANTINA_JWT_EXPIRATION_MINUTES" default:"1440"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"CANTINA_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"CANTINA_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"CANTINA_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"CANTINA_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"CANTINA_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"CANTINA_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"CANTINA_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"CANTINA_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"CANTINA_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"CANTINA_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"CANTINA_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type OrdersConfig struct {
	// AllowCancelInPreparo lets admins cancel orders already in EM_PREPARO.
	AllowCancelInPreparo bool `envconfig:"CANTINA_ORDERS_ALLOW_CANCEL_IN_PREPARO" default:"true"`
	RecentOrdersLimit    int  `envconfig:"CANTINA_ORDERS_RECENT_LIMIT" default:"10"`
}

type UploadsConfig struct {
	Dir           string `envconfig:"CANTINA_UPLOADS_DIR" default:"uploads"`
	PublicBaseURL string `envconfig:"CANTINA_UPLOADS_PUBLIC_BASE_URL" default:"/uploads"`
	MaxUploadMB   int    `envconfig:"CANTINA_MAX_UPLOAD_MB" default:"5"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"CANTINA_AUTO_MIGRATE" default:"false"`
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
