package config

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const devJWTSecret = "default_super_secret_key"

type Config struct {
	Port     string `env:"PORT" env-default:"8080"`
	GinMode  string `env:"GIN_MODE" env-default:"debug"`
	LogLevel string `env:"LOG_LEVEL" env-default:"info"`

	DB    DatabaseConfig
	Redis RedisConfig
	Auth  AuthConfig

	TextArtifactDir string `env:"TEXT_ARTIFACT_DIR" env-default:"static/receipts"`
	QRArtifactDir   string `env:"QR_ARTIFACT_DIR" env-default:"static/qr"`
	StaticDir       string `env:"STATIC_DIR" env-default:"static"`
	PublicBaseURL   string `env:"PUBLIC_BASE_URL" env-default:"http://localhost:8080"`
	SellerName      string `env:"SELLER_NAME" env-default:"ФОП Джонсонюк Борис"`

	CORSOrigins []string `env:"CORS_ORIGINS" env-default:"http://localhost:5173,http://127.0.0.1:5173" env-separator:","`

	KafkaBrokers []string `env:"KAFKA_BROKERS" env-separator:","`
	KafkaTopic   string   `env:"KAFKA_TOPIC" env-default:"receipt_events"`

	JanitorInterval time.Duration `env:"JANITOR_INTERVAL" env-default:"10m"`
	JanitorGrace    time.Duration `env:"JANITOR_GRACE" env-default:"5m"`
}

type DatabaseConfig struct {
	Host     string `env:"DB_HOST" env-default:"localhost"`
	Port     string `env:"DB_PORT" env-default:"5432"`
	User     string `env:"DB_USER" env-default:"postgres"`
	Password string `env:"DB_PASSWORD" env-default:"postgres"`
	Name     string `env:"DB_NAME" env-default:"postgres"`
	SSLMode  string `env:"DB_SSLMODE" env-default:"disable"`
}

// DSN builds the postgres connection string
func (d DatabaseConfig) DSN() string {
	return "postgres://" + d.User + ":" + d.Password + "@" + d.Host + ":" + d.Port + "/" + d.Name + "?sslmode=" + d.SSLMode
}

type RedisConfig struct {
	Addr         string        `env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password     string        `env:"REDIS_PASSWORD"`
	DB           int           `env:"REDIS_DB" env-default:"0"`
	UserCacheTTL time.Duration `env:"USER_CACHE_TTL" env-default:"900s"`
}

type AuthConfig struct {
	JWTSecret       string        `env:"JWT_SECRET"`
	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL" env-default:"60m"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL" env-default:"168h"`
}

// Load reads configs/.env (if present) and then the process environment
func Load() (*Config, error) {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	cfg := &Config{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("couldn't read environment variables: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Auth.JWTSecret == "" {
		if c.GinMode == "release" {
			return errors.New("JWT_SECRET environment variable is required in release mode")
		}
		// development fallback only
		c.Auth.JWTSecret = devJWTSecret
	}
	if c.Auth.AccessTokenTTL <= 0 || c.Auth.RefreshTokenTTL <= 0 {
		return errors.New("token TTLs must be positive")
	}
	if c.Redis.UserCacheTTL <= 0 {
		return errors.New("USER_CACHE_TTL must be positive")
	}
	return nil
}
