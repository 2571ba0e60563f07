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

// minSecretLength mirrors token.MinSecretLength; config fails before the codec would.
const minSecretLength = 32

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// JWTSecret signs session tokens. There is no default: startup fails without it.
	JWTSecret string `env:"JWT_SECRET, required"`

	Session SessionConfig
	Cookie  CookieConfig
	CORS    CORSConfig
	Audit   AuditConfig
	Admin   AdminConfig

	Mongo MongoConfig
	Redis RedisConfig
}

type SessionConfig struct {
	ShortTTL   time.Duration `env:"SESSION_SHORT_TTL,  default=1h"`
	LongTTL    time.Duration `env:"SESSION_LONG_TTL,   default=168h"`
	Revocation bool          `env:"SESSION_REVOCATION, default=true"`
}

type CookieConfig struct {
	Secure   bool   `env:"COOKIE_SECURE,   default=false"`
	SameSite string `env:"COOKIE_SAMESITE, default=lax"`
	Domain   string `env:"COOKIE_DOMAIN"`
}

type CORSConfig struct {
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS, default=http://localhost:5173"`
}

type AuditConfig struct {
	Workers int `env:"AUDIT_WORKERS, default=4"`
}

// AdminConfig seeds the first administrator on an empty store. The password
// is generated at startup, never configured.
type AdminConfig struct {
	Email     string `env:"ADMIN_EMAIL"`
	FirstName string `env:"ADMIN_FIRST_NAME, default=Admin"`
	LastName  string `env:"ADMIN_LAST_NAME,  default=SIP-KPBJ"`
}

type MongoConfig struct {
	URI         string `env:"MONGO_URI,           default=mongodb://localhost:27017"`
	Database    string `env:"MONGO_DB,            default=sip_kpbj"`
	MaxPoolSize uint64 `env:"MONGO_MAX_POOL_SIZE, default=50"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,   default=0"`
}

// IsProduction reports whether the service runs with ENV=production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// SameSiteMode converts Cookie.SameSite to its net/http value.
func (c CookieConfig) SameSiteMode() http.SameSite {
	switch strings.ToLower(c.SameSite) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

// Validate rejects settings that would make sessions insecure or unusable.
func (c *Config) Validate() error {
	var errs []error

	if len(c.JWTSecret) < minSecretLength {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d bytes", minSecretLength))
	}
	if c.Session.ShortTTL <= 0 || c.Session.LongTTL <= 0 {
		errs = append(errs, errors.New("SESSION_SHORT_TTL and SESSION_LONG_TTL must be positive"))
	} else if c.Session.ShortTTL > c.Session.LongTTL {
		errs = append(errs, errors.New("SESSION_SHORT_TTL must not exceed SESSION_LONG_TTL"))
	}

	switch strings.ToLower(c.Cookie.SameSite) {
	case "lax", "strict":
	case "none":
		if !c.Cookie.Secure {
			errs = append(errs, errors.New("COOKIE_SAMESITE=none requires COOKIE_SECURE=true"))
		}
	default:
		errs = append(errs, fmt.Errorf("COOKIE_SAMESITE must be lax, strict or none, got %q", c.Cookie.SameSite))
	}
	if c.IsProduction() && !c.Cookie.Secure {
		errs = append(errs, errors.New("COOKIE_SECURE must be true when ENV=production"))
	}

	for _, o := range c.CORS.AllowedOrigins {
		if o == "*" {
			errs = append(errs, errors.New("CORS_ALLOWED_ORIGINS cannot contain * with credentialed requests"))
		}
	}

	return errors.Join(errs...)
}

// Load reads configuration from environment variables using go-envconfig and
// validates it.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}
