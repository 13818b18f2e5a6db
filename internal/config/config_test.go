package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", "file:test.db")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, http://b.test")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Len(t, cfg.HTTP.AllowedOrigins, 2)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("JWT_SECRET", "")

	_, err := Load("")
	assert.Error(t, err)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("JWT_SECRET", "")
	require.NoError(t, os.Unsetenv("JWT_SECRET"))
	t.Setenv("PORT", "")
	require.NoError(t, os.Unsetenv("PORT"))

	path := filepath.Join(dir, "config.yaml")
	content := []byte("env: production\nport: \"8080\"\nauth:\n  jwt_secret: from-file\n  token_ttl: 1h\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "from-file", cfg.Auth.JWTSecret)
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
}

func TestValidateRejectsUnknownDriver(t *testing.T) {
	cfg := Config{
		Env:      EnvDevelopment,
		Database: DatabaseConfig{Driver: "mongodb"},
		Auth:     AuthConfig{JWTSecret: "s", TokenTTL: time.Hour},
	}

	assert.Error(t, cfg.Validate())
}

func TestValidateHTTPLimits(t *testing.T) {
	cfg := Config{
		Env:      EnvTest,
		Database: DatabaseConfig{Driver: DriverSQLite},
		Auth:     AuthConfig{JWTSecret: "s", TokenTTL: time.Hour},
		HTTP:     HTTPConfig{ClientURL: "http://app.test", RateLimitRPS: 1, RateLimitBurst: 10},
	}
	require.NoError(t, cfg.Validate())

	noOrigins := cfg
	noOrigins.HTTP.ClientURL = ""
	assert.Error(t, noOrigins.Validate())

	noLimit := cfg
	noLimit.HTTP.RateLimitBurst = 0
	assert.Error(t, noLimit.Validate())
}
