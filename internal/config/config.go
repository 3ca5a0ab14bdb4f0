// Package config loads service configuration from the environment,
// with optional .env support for local development.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type DBConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	SSLRootCert string
}

func (d DBConfig) DSN() string {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
	if d.SSLRootCert != "" {
		dsn += fmt.Sprintf(" sslrootcert=%s", d.SSLRootCert)
	}
	return dsn
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// UserServiceConfig configures the user service (accounts + friendship graph).
type UserServiceConfig struct {
	DB        DBConfig
	Port      string
	JWTSecret string
	// TokenTTLMinutes bounds the lifetime of issued access tokens.
	TokenTTLMinutes int
}

func LoadUserService() (*UserServiceConfig, error) {
	_ = godotenv.Load()

	ttl, _ := strconv.Atoi(getEnv("TOKEN_TTL_MINUTES", "60"))

	return &UserServiceConfig{
		DB:              loadDB("user_service"),
		Port:            getEnv("SERVER_PORT", "8081"),
		JWTSecret:       getEnv("JWT_SECRET", "dev-secret-change-me"),
		TokenTTLMinutes: ttl,
	}, nil
}

// ActivityServiceConfig configures the watch-history and newsfeed service.
type ActivityServiceConfig struct {
	DB             DBConfig
	Port           string
	JWTSecret      string
	UserServiceURL string
}

func LoadActivityService() (*ActivityServiceConfig, error) {
	_ = godotenv.Load()

	return &ActivityServiceConfig{
		DB:             loadDB("activity_service"),
		Port:           getEnv("SERVER_PORT", "8082"),
		JWTSecret:      getEnv("JWT_SECRET", "dev-secret-change-me"),
		UserServiceURL: getEnv("USER_SERVICE_URL", "http://localhost:8081"),
	}, nil
}

// CatalogServiceConfig configures the movie catalog service.
type CatalogServiceConfig struct {
	DB        DBConfig
	Redis     RedisConfig
	Port      string
	JWTSecret string
}

func LoadCatalogService() (*CatalogServiceConfig, error) {
	_ = godotenv.Load()

	return &CatalogServiceConfig{
		DB:        loadDB("catalog_service"),
		Redis:     loadRedis("1"),
		Port:      getEnv("SERVER_PORT", "8083"),
		JWTSecret: getEnv("JWT_SECRET", "dev-secret-change-me"),
	}, nil
}

// PreferenceServiceConfig configures the ratings, favorites and
// recommendation service.
type PreferenceServiceConfig struct {
	DB                 DBConfig
	Redis              RedisConfig
	Port               string
	JWTSecret          string
	UserServiceURL     string
	ActivityServiceURL string
	CatalogServiceURL  string
}

func LoadPreferenceService() (*PreferenceServiceConfig, error) {
	_ = godotenv.Load()

	return &PreferenceServiceConfig{
		DB:                 loadDB("preference_service"),
		Redis:              loadRedis("2"),
		Port:               getEnv("SERVER_PORT", "8084"),
		JWTSecret:          getEnv("JWT_SECRET", "dev-secret-change-me"),
		UserServiceURL:     getEnv("USER_SERVICE_URL", "http://localhost:8081"),
		ActivityServiceURL: getEnv("ACTIVITY_SERVICE_URL", "http://localhost:8082"),
		CatalogServiceURL:  getEnv("CATALOG_SERVICE_URL", "http://localhost:8083"),
	}, nil
}

// GatewayConfig configures the public API gateway.
type GatewayConfig struct {
	Redis                  RedisConfig
	Port                   string
	JWTSecret              string
	UserServiceURL         string
	ActivityServiceURL     string
	CatalogServiceURL      string
	PreferenceServiceURL   string
	RateLimitMax           int
	RateLimitWindowSeconds int
}

func LoadGateway() (*GatewayConfig, error) {
	_ = godotenv.Load()

	maxReqs, _ := strconv.Atoi(getEnv("RATE_LIMIT_MAX", "100"))
	window, _ := strconv.Atoi(getEnv("RATE_LIMIT_WINDOW_SECONDS", "60"))

	return &GatewayConfig{
		Redis:                  loadRedis("0"),
		Port:                   getEnv("SERVER_PORT", "8080"),
		JWTSecret:              getEnv("JWT_SECRET", "dev-secret-change-me"),
		UserServiceURL:         getEnv("USER_SERVICE_URL", "http://localhost:8081"),
		ActivityServiceURL:     getEnv("ACTIVITY_SERVICE_URL", "http://localhost:8082"),
		CatalogServiceURL:      getEnv("CATALOG_SERVICE_URL", "http://localhost:8083"),
		PreferenceServiceURL:   getEnv("PREFERENCE_SERVICE_URL", "http://localhost:8084"),
		RateLimitMax:           maxReqs,
		RateLimitWindowSeconds: window,
	}, nil
}

func loadDB(defaultName string) DBConfig {
	port, _ := strconv.Atoi(getEnv("DB_PORT", "5432"))

	return DBConfig{
		Host:        getEnv("DB_HOST", "localhost"),
		Port:        port,
		User:        getEnv("DB_USER", "postgres"),
		Password:    getEnv("DB_PASSWORD", "postgres"),
		DBName:      getEnv("DB_NAME", defaultName),
		SSLMode:     getEnv("DB_SSLMODE", "disable"),
		SSLRootCert: getEnv("DB_SSLROOTCERT", ""),
	}
}

func loadRedis(defaultDB string) RedisConfig {
	db, _ := strconv.Atoi(getEnv("REDIS_DB", defaultDB))

	return RedisConfig{
		Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       db,
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
