package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar overrides the location of the optional YAML config file.
const ConfigPathEnvVar = "CONFIG_PATH"

// Config holds all configuration for the application
type Config struct {
	Environment Environment `koanf:"-"`

	// Server configuration
	ServerHost string `koanf:"server_host"`
	ServerPort string `koanf:"server_port"`

	// Database configuration. DBDriver is "postgres" or "sqlite".
	DBDriver   string `koanf:"db_driver"`
	DBHost     string `koanf:"db_host"`
	DBPort     string `koanf:"db_port"`
	DBUser     string `koanf:"db_user"`
	DBPassword string `koanf:"db_password"`
	DBName     string `koanf:"db_name"`
	DBSSLMode  string `koanf:"db_ssl_mode"`
	SQLitePath string `koanf:"sqlite_path"`

	// MigrationsDir holds the SQL files applied at startup on postgres.
	MigrationsDir string `koanf:"migrations_dir"`

	// Redis configuration. Redis is optional; without it the ingredient
	// cache and rate limiting are disabled.
	RedisHost     string `koanf:"redis_host"`
	RedisPort     string `koanf:"redis_port"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`
	RedisURL      string `koanf:"redis_url"`

	// JWT configuration
	JWTSecret string        `koanf:"jwt_secret"`
	TokenTTL  time.Duration `koanf:"token_ttl"`

	// Recipe image storage. ImageStore is "s3" or "memory"; the memory store
	// serves images itself under MediaBaseURL.
	ImageStore   string `koanf:"image_store"`
	MediaBaseURL string `koanf:"media_base_url"`
	S3BucketName string `koanf:"s3_bucket_name"`
	AWSRegion    string `koanf:"aws_region"`
	S3Endpoint   string `koanf:"s3_endpoint"`

	LogLevel  string `koanf:"log_level"`
	LogFormat string `koanf:"log_format"`

	CORSOrigins []string `koanf:"cors_origins"`

	// Per user, per hour.
	RecipeCreateLimit int `koanf:"recipe_create_limit"`
	RecipeModifyLimit int `koanf:"recipe_modify_limit"`
}

// secretKeys are read from the secrets directory when a file with that name exists.
var secretKeys = []string{
	"db_user",
	"db_password",
	"jwt_secret",
	"redis_password",
	"redis_url",
}

func defaultConfig() *Config {
	return &Config{
		ServerHost:        "0.0.0.0",
		ServerPort:        "8080",
		DBDriver:          "postgres",
		DBHost:            "localhost",
		DBPort:            "5432",
		DBName:            "foodgram",
		DBSSLMode:         "disable",
		SQLitePath:        "foodgram.db",
		MigrationsDir:     "migrations",
		RedisPort:         "6379",
		TokenTTL:          24 * time.Hour,
		ImageStore:        "s3",
		MediaBaseURL:      "http://localhost:8080/media",
		S3BucketName:      "foodgram-recipe-images",
		LogLevel:          "info",
		LogFormat:         "json",
		CORSOrigins:       []string{"http://localhost:3000"},
		RecipeCreateLimit: 30,
		RecipeModifyLimit: 60,
	}
}

// LoadConfig builds the configuration from defaults, an optional YAML file,
// environment variables and finally the secrets directory.
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	// DB_HOST -> db_host
	if err := k.Load(env.Provider("", ".", strings.ToLower), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	for _, name := range secretKeys {
		if value := readSecret(name); value != "" {
			if err := k.Set(name, value); err != nil {
				return nil, fmt.Errorf("failed to apply secret %s: %w", name, err)
			}
		}
	}

	if err := splitListKeys(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	cfg.Environment = GetEnvironment()

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// PostgresDSN returns the connection string for the postgres driver.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// ServerAddr returns host:port for the HTTP listener.
func (c *Config) ServerAddr() string {
	return c.ServerHost + ":" + c.ServerPort
}

// listKeys hold slices. Environment variables carry them comma separated.
var listKeys = []string{"cors_origins"}

func splitListKeys(k *koanf.Koanf) error {
	for _, key := range listKeys {
		raw, ok := k.Get(key).(string)
		if !ok {
			continue
		}
		items := make([]string, 0, strings.Count(raw, ",")+1)
		for _, item := range strings.Split(raw, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		if err := k.Set(key, items); err != nil {
			return fmt.Errorf("failed to set %s: %w", key, err)
		}
	}
	return nil
}

func findConfigFile() string {
	if path := os.Getenv(ConfigPathEnvVar); path != "" {
		if _, err := os.Stat(path); err == nil {
			return path
		}
		return ""
	}
	for _, path := range []string{"config.yaml", "config.yml"} {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	if data, err := os.ReadFile(filepath.Join(secretsDir, name)); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}
