package config

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	JWT      JWTConfig
	Cookie   CookieConfig
	Mongo    MongoConfig
	Redis    RedisConfig
	Backrefs BackrefConfig
	S3       S3Config
}

type JWTConfig struct {
	AccessSecret  string        `env:"JWT_ACCESS_SECRET"`
	RefreshSecret string        `env:"JWT_REFRESH_SECRET"`
	AccessTTL     time.Duration `env:"JWT_ACCESS_TTL,  default=15m"`
	RefreshTTL    time.Duration `env:"JWT_REFRESH_TTL, default=240h"`
	Issuer        string        `env:"JWT_ISSUER,      default=marketplace-api"`
}

// CookieConfig holds the flags shared by the accessToken/refreshToken cookies.
type CookieConfig struct {
	HTTPOnly bool   `env:"COOKIE_HTTP_ONLY, default=true"`
	Secure   bool   `env:"COOKIE_SECURE,    default=true"`
	SameSite string `env:"COOKIE_SAME_SITE, default=none"`
	Domain   string `env:"COOKIE_DOMAIN"`
	Path     string `env:"COOKIE_PATH,      default=/"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=marketplace"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,   default=0"`
}

type BackrefConfig struct {
	Workers     int           `env:"BACKREF_WORKERS,      default=4"`
	MaxAttempts int           `env:"BACKREF_MAX_ATTEMPTS, default=5"`
	Backoff     time.Duration `env:"BACKREF_BACKOFF,      default=200ms"`
}

// S3Config configures attachment uploads; an empty bucket disables them.
type S3Config struct {
	Bucket     string        `env:"S3_BUCKET"`
	Region     string        `env:"S3_REGION,      default=us-east-1"`
	Endpoint   string        `env:"S3_ENDPOINT"`
	PresignTTL time.Duration `env:"S3_PRESIGN_TTL, default=15m"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the service cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.JWT.AccessSecret == "" {
		errs = append(errs, errors.New("JWT_ACCESS_SECRET is required"))
	}
	if c.JWT.RefreshSecret == "" {
		errs = append(errs, errors.New("JWT_REFRESH_SECRET is required"))
	}
	if c.JWT.AccessSecret != "" && c.JWT.AccessSecret == c.JWT.RefreshSecret {
		errs = append(errs, errors.New("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must differ"))
	}
	if _, err := parseSameSite(c.Cookie.SameSite); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// IsDevelopment reports whether the service runs in a local environment.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

// SameSiteMode converts the configured policy to its net/http value.
func (c CookieConfig) SameSiteMode() http.SameSite {
	mode, _ := parseSameSite(c.SameSite)
	return mode
}

func parseSameSite(s string) (http.SameSite, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "default":
		return http.SameSiteDefaultMode, nil
	case "lax":
		return http.SameSiteLaxMode, nil
	case "strict":
		return http.SameSiteStrictMode, nil
	case "none":
		return http.SameSiteNoneMode, nil
	default:
		return http.SameSiteDefaultMode, fmt.Errorf("COOKIE_SAME_SITE %q is not one of lax, strict, none", s)
	}
}
