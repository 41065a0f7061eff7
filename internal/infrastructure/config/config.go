package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Session   SessionConfig
	Directory DirectoryConfig

	Mongo MongoConfig
	Redis RedisConfig
}

// SessionConfig drives the console side: where credentials are checked and
// how sessions are kept.
type SessionConfig struct {
	AuthEndpoint string        `env:"AUTH_ENDPOINT,       default=http://localhost:8080/idp"`
	LoginTimeout time.Duration `env:"LOGIN_TIMEOUT,       default=5s"`
	Retention    time.Duration `env:"SESSION_RETENTION,   default=168h"`
	IdleEviction time.Duration `env:"SESSION_IDLE_EVICTION, default=30m"`
	CookieSecure bool          `env:"COOKIE_SECURE,       default=false"`
	Backend      string        `env:"PERSISTENCE_BACKEND, default=memory"`
}

// DirectoryConfig drives the bundled identity directory mounted at /idp.
type DirectoryConfig struct {
	Enabled         bool          `env:"DIRECTORY_ENABLED, default=true"`
	Backend         string        `env:"DIRECTORY_BACKEND, default=memory"`
	JWTSecret       string        `env:"JWT_SECRET"`
	FederatedSecret string        `env:"FEDERATED_SECRET"`
	TokenTTL        time.Duration `env:"TOKEN_TTL,         default=1h"`
	VerificationTTL time.Duration `env:"VERIFICATION_TTL,  default=24h"`
	RoleCatalogPath string        `env:"ROLE_CATALOG_PATH"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=oms_console"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
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
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IsDevelopment reports whether human-friendly output should be used.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// UsesRedis reports whether any component needs a Redis connection.
func (c *Config) UsesRedis() bool {
	return c.Session.Backend == BackendRedis || (c.Directory.Enabled && c.Directory.Backend == BackendRedis)
}

// UsesMongo reports whether the directory keeps its accounts in MongoDB.
func (c *Config) UsesMongo() bool {
	return c.Directory.Enabled && c.Directory.Backend == BackendMongo
}

// Validate rejects combinations the server cannot start with.
func (c *Config) Validate() error {
	var errs []error

	switch c.Session.Backend {
	case BackendMemory, BackendRedis:
	default:
		errs = append(errs, fmt.Errorf("PERSISTENCE_BACKEND must be %q or %q, got %q", BackendMemory, BackendRedis, c.Session.Backend))
	}
	if c.Session.AuthEndpoint == "" {
		errs = append(errs, errors.New("AUTH_ENDPOINT is required"))
	}
	if c.Session.LoginTimeout <= 0 {
		errs = append(errs, errors.New("LOGIN_TIMEOUT must be positive"))
	}

	if c.Directory.Enabled {
		switch c.Directory.Backend {
		case BackendMemory, BackendMongo:
		default:
			errs = append(errs, fmt.Errorf("DIRECTORY_BACKEND must be %q or %q, got %q", BackendMemory, BackendMongo, c.Directory.Backend))
		}
		if c.Directory.JWTSecret == "" {
			errs = append(errs, errors.New("JWT_SECRET is required when the directory is enabled"))
		}
	}

	return errors.Join(errs...)
}
