package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// Backend choices for BACKEND.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendMongo    = "mongo"
)

type Config struct {
	Port      string        `env:"PORT,       default=8080"`
	Env       string        `env:"ENV,        default=development"`
	LogLevel  string        `env:"LOG_LEVEL,  default=info"`
	JWTSecret string        `env:"JWT_SECRET, default=change-me-in-production"`
	TokenTTL  time.Duration `env:"TOKEN_TTL,  default=24h"`
	Hasher    string        `env:"HASHER,     default=sha256"`
	Backend   string        `env:"BACKEND,    default=memory"`
	SessionDB string        `env:"SESSION_DB, default=stockyng-session.db"`

	// AdminEmail and AdminPassword seed the first admin on an empty users
	// collection. Both must be set.
	AdminEmail    string `env:"ADMIN_EMAIL"`
	AdminPassword string `env:"ADMIN_PASSWORD"`

	Postgres PostgresConfig
	Mongo    MongoConfig
	Redis    RedisConfig
	S3       S3Config
}

type PostgresConfig struct {
	URL      string `env:"DATABASE_URL"`
	Host     string `env:"DB_HOST,     default=localhost"`
	Port     string `env:"DB_PORT,     default=5432"`
	User     string `env:"DB_USER,     default=postgres"`
	Password string `env:"DB_PASSWORD"`
	Name     string `env:"DB_NAME,     default=stockyng"`
	TimeZone string `env:"DB_TIMEZONE, default=UTC"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=stockyng"`
}

// RedisConfig enables the shared change feed when Addr is set.
type RedisConfig struct {
	Addr string `env:"REDIS_ADDR"`
	DB   int    `env:"REDIS_DB, default=0"`
}

// S3Config enables image uploads when Bucket is set.
type S3Config struct {
	Endpoint  string `env:"S3_ENDPOINT"`
	Region    string `env:"S3_REGION, default=us-east-1"`
	Bucket    string `env:"S3_BUCKET"`
	AccessKey string `env:"S3_ACCESS_KEY"`
	SecretKey string `env:"S3_SECRET_KEY"`
	PublicURL string `env:"S3_PUBLIC_URL"`
}

// Load reads .env when present, then the process environment.
func Load(ctx context.Context) (*Config, error) {
	_ = godotenv.Load()
	return process(ctx, envconfig.OsLookuper())
}

func process(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))
	switch cfg.Backend {
	case BackendMemory, BackendPostgres, BackendMongo:
	default:
		return nil, fmt.Errorf("load config: unknown BACKEND %q", cfg.Backend)
	}
	return &cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}
