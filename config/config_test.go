package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("SECRETS_DIR", dir)
	t.Setenv(ConfigPathEnvVar, filepath.Join(dir, "missing.yaml"))
	t.Setenv("CI", "")
	t.Setenv("ENV", "test")
	return dir
}

func TestLoadConfig(t *testing.T) {
	isolate(t)
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_USER", "postgres")
	t.Setenv("DB_PASSWORD", "postgres")
	t.Setenv("DB_NAME", "foodgram_test")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("REDIS_URL", "redis://localhost:6379")
	t.Setenv("TOKEN_TTL", "2h")
	t.Setenv("CORS_ORIGINS", "http://a.test,http://b.test")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, Test, cfg.Environment)
	assert.Equal(t, "db.internal", cfg.DBHost)
	assert.Equal(t, "6543", cfg.DBPort)
	assert.Equal(t, "foodgram_test", cfg.DBName)
	assert.Equal(t, "disable", cfg.DBSSLMode)
	assert.Equal(t, "test-secret", cfg.JWTSecret)
	assert.Equal(t, "redis://localhost:6379", cfg.RedisURL)
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.Equal(t, "0.0.0.0:8080", cfg.ServerAddr())
}

func TestLoadConfigSecretsOverrideEnvironment(t *testing.T) {
	dir := isolate(t)
	t.Setenv("DB_USER", "postgres")
	t.Setenv("DB_PASSWORD", "from-env")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "db_password"), []byte("from-secret\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "jwt_secret"), []byte("jwt-from-secret"), 0o600))

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "from-secret", cfg.DBPassword)
	assert.Equal(t, "jwt-from-secret", cfg.JWTSecret)
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("db_driver: sqlite\nsqlite_path: /tmp/foodgram.db\nlog_format: console\n"), 0o600))
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "/tmp/foodgram.db", cfg.SQLitePath)
	assert.Equal(t, "console", cfg.LogFormat)
}

func TestLoadConfigListKeys(t *testing.T) {
	t.Run("environment list is split and trimmed", func(t *testing.T) {
		isolate(t)
		t.Setenv("DB_DRIVER", "sqlite")
		t.Setenv("CORS_ORIGINS", " http://a.test , ,http://b.test")

		cfg, err := LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	})

	t.Run("yaml list is kept", func(t *testing.T) {
		dir := isolate(t)
		path := filepath.Join(dir, "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("db_driver: sqlite\ncors_origins:\n  - http://a.test\n  - http://b.test\n"), 0o600))
		t.Setenv(ConfigPathEnvVar, path)

		cfg, err := LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	})
}

func TestValidateConfig(t *testing.T) {
	t.Run("production requires secrets", func(t *testing.T) {
		cfg := defaultConfig()
		cfg.Environment = Production
		cfg.DBUser = "postgres"

		err := ValidateConfig(cfg)
		require.Error(t, err)

		var verr ValidationError
		assert.True(t, errors.As(err, &verr))
		assert.Contains(t, err.Error(), "db_password")
		assert.Contains(t, err.Error(), "jwt_secret")
	})

	t.Run("development sqlite needs nothing else", func(t *testing.T) {
		cfg := defaultConfig()
		cfg.Environment = Development
		cfg.DBDriver = "sqlite"

		assert.NoError(t, ValidateConfig(cfg))
	})

	t.Run("unknown driver", func(t *testing.T) {
		cfg := defaultConfig()
		cfg.Environment = Development
		cfg.DBDriver = "mysql"

		assert.ErrorContains(t, ValidateConfig(cfg), "unknown driver")
	})

	t.Run("sqlite refused in production", func(t *testing.T) {
		cfg := defaultConfig()
		cfg.Environment = Production
		cfg.DBDriver = "sqlite"
		cfg.JWTSecret = "secret"

		assert.ErrorContains(t, ValidateConfig(cfg), "sqlite is not supported in production")
	})

	t.Run("memory image store refused in production", func(t *testing.T) {
		cfg := defaultConfig()
		cfg.Environment = Production
		cfg.DBPassword = "secret"
		cfg.DBUser = "postgres"
		cfg.JWTSecret = "secret"
		cfg.ImageStore = "memory"

		assert.ErrorContains(t, ValidateConfig(cfg), "memory is not supported in production")
	})
}

func TestGetEnvironment(t *testing.T) {
	t.Setenv("CI", "true")
	t.Setenv("ENV", "production")
	assert.Equal(t, CI, GetEnvironment())

	t.Setenv("CI", "")
	assert.Equal(t, Production, GetEnvironment())

	t.Setenv("ENV", "")
	assert.Equal(t, Development, GetEnvironment())
}
