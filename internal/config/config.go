package config

import (
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	DBHost        string   `env:"DB_HOST" envDefault:"localhost"`
	DBPort        string   `env:"DB_PORT" envDefault:"5432"`
	DBUser        string   `env:"DB_USER" envDefault:"postgres"`
	DBPassword    string   `env:"DB_PASSWORD"`
	DBName        string   `env:"DB_NAME" envDefault:"lawconnect"`
	DBSSLMode     string   `env:"DB_SSLMODE" envDefault:"disable"`
	DBReplicaDSNs []string `env:"DB_REPLICA_DSNS" envSeparator:","`

	// "postgres" or "memory"
	StoreDriver string `env:"STORE_DRIVER" envDefault:"postgres"`

	// Identity adapter
	AuthRequired      bool   `env:"AUTH_REQUIRED" envDefault:"false"`
	FirebaseProjectID string `env:"FIREBASE_PROJECT_ID"`
	IdentityJWKSURL   string `env:"IDENTITY_JWKS_URL" envDefault:"https://www.googleapis.com/service_accounts/v1/jwk/securetoken@system.gserviceaccount.com"`
	IdentityDevSecret string `env:"IDENTITY_DEV_SECRET"`

	// Admin
	AdminUIDs  string `env:"ADMIN_UIDS"`
	AdminToken string `env:"ADMIN_TOKEN"`

	// Server
	Port             string `env:"PORT" envDefault:"5000"`
	CORSOrigins      string `env:"CORS_ORIGINS" envDefault:"*"`
	CORSMethods      string `env:"CORS_METHODS" envDefault:"GET,POST,PUT,DELETE,OPTIONS"`
	CORSHeaders      string `env:"CORS_HEADERS" envDefault:"Origin,Content-Type,Accept,Authorization,X-Admin-Token"`
	AppEnv           string `env:"APP_ENV" envDefault:"development"`
	RateLimit        int    `env:"RATE_LIMIT" envDefault:"120"`
	AuthRateLimit    int    `env:"AUTH_RATE_LIMIT" envDefault:"10"`
	SentryDSN        string `env:"SENTRY_DSN"`
	LogRetentionDays int    `env:"LOG_RETENTION_DAYS" envDefault:"30"`

	// Directory cache
	RedisURL          string        `env:"REDIS_URL"`
	DirectoryCacheTTL time.Duration `env:"DIRECTORY_CACHE_TTL" envDefault:"60s"`

	// Events
	KafkaBrokers        []string      `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaMessagesTopic  string        `env:"KAFKA_MESSAGES_TOPIC" envDefault:"chat.message.created"`
	KafkaLawyersTopic   string        `env:"KAFKA_LAWYERS_TOPIC" envDefault:"lawyer.registered"`
	KafkaPublishTimeout time.Duration `env:"KAFKA_PUBLISH_TIMEOUT" envDefault:"2s"`

	// Verification documents
	MinioEndpoint  string `env:"MINIO_ENDPOINT"`
	MinioAccessKey string `env:"MINIO_ACCESS_KEY"`
	MinioSecretKey string `env:"MINIO_SECRET_KEY"`
	MinioBucket    string `env:"MINIO_BUCKET" envDefault:"verification-documents"`
	MinioUseSSL    bool   `env:"MINIO_USE_SSL" envDefault:"false"`

	// Tracing
	OTelEndpoint    string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTelServiceName string  `env:"OTEL_SERVICE_NAME" envDefault:"lawconnect-backend"`
	OTelSampleRatio float64 `env:"OTEL_TRACES_SAMPLER_ARG" envDefault:"1.0"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	cfg.StoreDriver = strings.ToLower(cfg.StoreDriver)
	return cfg, nil
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func (c *Config) UsesMemoryStore() bool {
	return c.StoreDriver == "memory"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}
