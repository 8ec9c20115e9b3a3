package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Storage   StorageConfig   `mapstructure:"storage"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Notify    NotifyConfig    `mapstructure:"notify"`
}

type ServerConfig struct {
	Port string
	Mode string
}

// StorageConfig wählt das Backend für das persistierte Dokument.
// Type: local | github | minio | database
type StorageConfig struct {
	Type      string `mapstructure:"type"`
	WriteMode string `mapstructure:"write_mode"` // mutation | manual
	LocalPath string `mapstructure:"local_path"`

	GitHubToken string `mapstructure:"github_token"`
	GitHubRepo  string `mapstructure:"github_repo"` // "owner/repo"
	GitHubPath  string `mapstructure:"github_path"`

	MinioEndpoint string `mapstructure:"minio_endpoint"`
	MinioAccessID string `mapstructure:"minio_access_key"`
	MinioSecret   string `mapstructure:"minio_secret_key"`
	MinioBucket   string `mapstructure:"minio_bucket"`
	MinioObject   string `mapstructure:"minio_object"`
}

type DatabaseConfig struct {
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	Charset   string
	ParseTime bool
}

type RedisConfig struct {
	Enabled  bool `mapstructure:"enabled"`
	Host     string
	Port     int
	Password string
	DB       int
	TTL      time.Duration `mapstructure:"ttl_minutes"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

// NotifyConfig konfiguriert die optionalen Erinnerungen; das Kernsystem
// funktioniert ohne sie.
type NotifyConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Interval        time.Duration `mapstructure:"interval_minutes"`
	PushoverToken   string        `mapstructure:"pushover_token"`
	PushoverUserKey string        `mapstructure:"pushover_user_key"`
	MailRecipient   string        `mapstructure:"mail_recipient"`
}

func LoadConfig(path string) (*Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix("LERNPLAN")
	viper.AutomaticEnv()

	// Server
	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("server.mode", "SERVER_MODE")

	// Storage
	viper.BindEnv("storage.type", "STORAGE_TYPE")
	viper.BindEnv("storage.write_mode", "STORAGE_WRITE_MODE")
	viper.BindEnv("storage.github_token", "GITHUB_TOKEN")
	viper.BindEnv("storage.github_repo", "GITHUB_REPO")
	viper.BindEnv("storage.github_path", "GITHUB_PATH")
	viper.BindEnv("storage.minio_endpoint", "MINIO_ENDPOINT")
	viper.BindEnv("storage.minio_access_key", "MINIO_ACCESS_KEY")
	viper.BindEnv("storage.minio_secret_key", "MINIO_SECRET_KEY")
	viper.BindEnv("storage.minio_bucket", "MINIO_BUCKET")

	// Database
	viper.BindEnv("database.host", "DATABASE_HOST")
	viper.BindEnv("database.port", "DATABASE_PORT")
	viper.BindEnv("database.user", "DATABASE_USER")
	viper.BindEnv("database.password", "DATABASE_PASSWORD")
	viper.BindEnv("database.dbname", "DATABASE_NAME")

	// Redis
	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")

	// Tracing
	viper.BindEnv("tracing.enabled", "TRACING_ENABLED")
	viper.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	// Notify
	viper.BindEnv("notify.pushover_token", "PUSHOVER_TOKEN")
	viper.BindEnv("notify.pushover_user_key", "PUSHOVER_USER_KEY")

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.Redis.TTL = cfg.Redis.TTL * time.Minute
	cfg.Notify.Interval = cfg.Notify.Interval * time.Minute

	if cfg.Storage.Type == "github" && (cfg.Storage.GitHubRepo == "" || cfg.Storage.GitHubPath == "") {
		return nil, fmt.Errorf("storage type github requires github_repo and github_path")
	}

	if cfg.Storage.Type == "local" {
		if err := os.MkdirAll(cfg.Storage.LocalPath, 0755); err != nil {
			return nil, fmt.Errorf("lokales speicherverzeichnis %q konnte nicht angelegt werden: %w", cfg.Storage.LocalPath, err)
		}
	}

	return &cfg, nil
}
