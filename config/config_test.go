package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Session.Store)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, 10*time.Second, cfg.OAuth.RequestTimeout)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "3000")
	t.Setenv("GITLAB_BASE_URL", "https://gitlab.example.com")
	t.Setenv("SESSION_STORE", "redis")
	t.Setenv("SESSION_TTL", "1h")
	t.Setenv("SECURE_COOKIES", "false")

	cfg := Load()

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "https://gitlab.example.com", cfg.OAuth.BaseURL)
	assert.Equal(t, "redis", cfg.Session.Store)
	assert.Equal(t, time.Hour, cfg.Session.TTL)
	assert.False(t, cfg.Session.SecureCookies)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("SERVER_PORT", "not-a-number")
	t.Setenv("SESSION_TTL", "soon")

	cfg := Load()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
}

func TestOAuthConfig_Endpoints(t *testing.T) {
	cfg := OAuthConfig{BaseURL: "https://gitlab.example.com"}

	assert.Equal(t, "https://gitlab.example.com/oauth/authorize", cfg.AuthorizeURL())
	assert.Equal(t, "https://gitlab.example.com/oauth/token", cfg.TokenURL())
	assert.Equal(t, "https://gitlab.example.com/oauth/revoke", cfg.RevokeURL())
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db",
		Port:     5432,
		User:     "dashboard",
		Password: "secret",
		Database: "dashboard",
		SSLMode:  "disable",
	}

	assert.Equal(t,
		"host=db port=5432 user=dashboard password=secret dbname=dashboard sslmode=disable",
		cfg.DSN())
}
