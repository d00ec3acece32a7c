package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type App struct {
	Port   string `envconfig:"PORT" default:"2294"`
	GoEnv  string `envconfig:"GO_ENV" default:"development"`
	LogLvl string `envconfig:"LOG_LEVEL" default:"error"`

	// DB
	DBUser     string `envconfig:"DB_USER"`
	DBPassword string `envconfig:"DB_PASSWORD"`
	DBHost     string `envconfig:"DB_HOST" default:"127.0.0.1"`
	DBPort     string `envconfig:"DB_PORT" default:"3306"`
	DBName     string `envconfig:"DB_NAME" default:"zone_expense"`

	DBMaxOpenConns          int  `envconfig:"DB_MAX_OPEN_CONNS" default:"50"`
	DBMaxIdleConns          int  `envconfig:"DB_MAX_IDLE_CONNS" default:"25"`
	DBConnMaxLifetimeSecond int  `envconfig:"DB_CONN_MAX_LIFETIME_SECONDS" default:"300"`
	DBConnMaxIdleTimeSecond int  `envconfig:"DB_CONN_MAX_IDLE_TIME_SECONDS" default:"60"`
	SkipMigrations          bool `envconfig:"SKIP_MIGRATIONS" default:"false"`

	// Redis is optional; an empty address disables cache, locks and rate limiting.
	RedisAddress string `envconfig:"REDIS_ADDRESS"`

	// JWT
	APISecret         string `envconfig:"API_SECRET" required:"true"`
	TokenHourLifespan int    `envconfig:"TOKEN_HOUR_LIFESPAN" default:"24"`

	// Storage
	GCSBucket          string `envconfig:"GCS_BUCKET"`
	GCSURL             string `envconfig:"GCS_URL" default:"storage.googleapis.com"`
	GCSCredentialsJSON string `envconfig:"GCS_CREDENTIALS_JSON"`
	StoragePrefix      string `envconfig:"STORAGE_PREFIX" default:"zone-expense"`

	CORSAllowedOrigins string `envconfig:"CORS_ALLOWED_ORIGINS"`

	RateLimitEnabled       bool  `envconfig:"RATE_LIMIT_ENABLED" default:"false"`
	RateLimitMaxRequests   int64 `envconfig:"RATE_LIMIT_MAX_REQUESTS" default:"600"`
	RateLimitWindowSeconds int64 `envconfig:"RATE_LIMIT_WINDOW_SECONDS" default:"60"`

	EnableReportCache     bool  `envconfig:"ENABLE_REPORT_CACHE" default:"false"`
	ReportCacheTTLSeconds int   `envconfig:"REPORT_CACHE_TTL_SECONDS" default:"120"`
	ReportSlowMs          int64 `envconfig:"REPORT_SLOW_MS" default:"500"`

	PhoneRegion string `envconfig:"PHONE_REGION" default:"IN"`
}

// Load reads .env (if present) and then the process environment.
func Load() (App, error) {
	_ = godotenv.Load()
	var c App
	if err := envconfig.Process("", &c); err != nil {
		return c, err
	}
	if strings.TrimSpace(c.APISecret) == "" {
		return c, errors.New("API_SECRET must not be empty")
	}
	return c, nil
}

func (a App) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(a.GoEnv), "production")
}

func (a App) TokenLifespan() time.Duration {
	if a.TokenHourLifespan <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(a.TokenHourLifespan) * time.Hour
}

func (a App) ReportCacheTTL() time.Duration {
	if a.ReportCacheTTLSeconds <= 0 {
		return 120 * time.Second
	}
	return time.Duration(a.ReportCacheTTLSeconds) * time.Second
}

func (a App) AllowedOrigins() []string {
	return SplitAndTrim(a.CORSAllowedOrigins)
}

func SplitAndTrim(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
