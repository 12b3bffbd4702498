package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the service.
type Config struct {
	Server   ServerConfig
	OAuth    OAuthConfig
	Session  SessionConfig
	Redis    RedisConfig
	Database DatabaseConfig
	Logging  LoggingConfig
	Security SecurityConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// OAuthConfig holds the GitLab OAuth client configuration.
type OAuthConfig struct {
	// BaseURL is the GitLab instance, e.g. "https://gitlab.example.com"
	BaseURL        string
	ClientID       string
	ClientSecret   string
	RedirectURI    string
	RequestedScope string
	// RequestTimeout bounds every outbound call to the platform.
	RequestTimeout time.Duration
}

// SessionConfig holds session store and cookie configuration.
type SessionConfig struct {
	// Store selects the backend: memory, redis, or postgres.
	Store string
	// TTL is how long an idle session survives.
	TTL time.Duration
	// CookieName is the name of the session cookie.
	CookieName string
	// CookieSecret signs the session cookie (HS256).
	CookieSecret string
	// SecureCookies enables the Secure flag on cookies.
	SecureCookies bool
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Host         string
	Port         int
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level           string
	Environment     string
	SQLiteEnabled   bool
	SQLiteDBPath    string
	AsyncBufferSize int
	RetentionDays   int
}

// SecurityConfig holds security-related configuration.
type SecurityConfig struct {
	RateLimitEnabled bool
	RateLimitRPS     int
	RateLimitBurst   int
}

// Load loads configuration from environment variables.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Port:         getEnvInt("SERVER_PORT", 8080),
			ReadTimeout:  getEnvDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getEnvDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:  getEnvDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
		},
		OAuth: OAuthConfig{
			BaseURL:        getEnv("GITLAB_BASE_URL", "https://gitlab.lnu.se"),
			ClientID:       getEnv("OAUTH_CLIENT_ID", ""),
			ClientSecret:   getEnv("OAUTH_CLIENT_SECRET", ""),
			RedirectURI:    getEnv("OAUTH_REDIRECT_URI", "http://localhost:8080/user/callback"),
			RequestedScope: getEnv("OAUTH_REQUESTED_SCOPE", "read_user read_api"),
			RequestTimeout: getEnvDuration("OAUTH_REQUEST_TIMEOUT", 10*time.Second),
		},
		Session: SessionConfig{
			Store:         getEnv("SESSION_STORE", "memory"),
			TTL:           getEnvDuration("SESSION_TTL", 24*time.Hour),
			CookieName:    getEnv("SESSION_COOKIE_NAME", "dashboard_session"),
			CookieSecret:  getEnv("SESSION_COOKIE_SECRET", ""),
			SecureCookies: getEnvBool("SECURE_COOKIES", true),
		},
		Redis: RedisConfig{
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnvInt("REDIS_PORT", 6379),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getEnvInt("REDIS_DB", 0),
			PoolSize:     getEnvInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvInt("REDIS_MIN_IDLE_CONNS", 5),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "dashboard"),
			Password:        getEnv("DB_PASSWORD", ""),
			Database:        getEnv("DB_NAME", "dashboard"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Logging: LoggingConfig{
			Level:           getEnv("LOG_LEVEL", "info"),
			Environment:     getEnv("LOG_ENVIRONMENT", "development"),
			SQLiteEnabled:   getEnvBool("LOG_SQLITE_ENABLED", false),
			SQLiteDBPath:    getEnv("LOG_SQLITE_DB_PATH", "./data/logs.db"),
			AsyncBufferSize: getEnvInt("LOG_ASYNC_BUFFER_SIZE", 1000),
			RetentionDays:   getEnvInt("LOG_RETENTION_DAYS", 7),
		},
		Security: SecurityConfig{
			RateLimitEnabled: getEnvBool("RATE_LIMIT_ENABLED", true),
			RateLimitRPS:     getEnvInt("RATE_LIMIT_RPS", 100),
			RateLimitBurst:   getEnvInt("RATE_LIMIT_BURST", 200),
		},
	}
}

// DSN returns the PostgreSQL connection string.
func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" port=" + strconv.Itoa(c.Port) +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Database +
		" sslmode=" + c.SSLMode
}

// AuthorizeURL returns the platform authorization endpoint.
func (c *OAuthConfig) AuthorizeURL() string {
	return c.BaseURL + "/oauth/authorize"
}

// TokenURL returns the platform token endpoint.
func (c *OAuthConfig) TokenURL() string {
	return c.BaseURL + "/oauth/token"
}

// RevokeURL returns the platform revocation endpoint.
func (c *OAuthConfig) RevokeURL() string {
	return c.BaseURL + "/oauth/revoke"
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
