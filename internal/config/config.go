package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	ServiceName string
	ServicePort int
	Database    DatabaseConfig
	TLS         TLSConfig
	Session     SessionConfig
	RabbitMQ    RabbitMQConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL string
}

// TLSConfig holds the externally supplied certificate material.
type TLSConfig struct {
	CertFile string
	KeyFile  string
}

// SessionConfig holds credential and session lifetime settings.
type SessionConfig struct {
	PasswordSalt         string
	DefaultDurationHours int
	MaxDurationHours     int
}

// RabbitMQConfig holds the optional session event bus settings. An empty
// URL disables event publishing entirely.
type RabbitMQConfig struct {
	URL              string
	EventsExchange   string
	EventsRoutingKey string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		ServiceName: getEnv("SERVICE_NAME", "energy-metering-api"),
		ServicePort: getEnvAsInt("SERVICE_PORT", 8080),
		Database: DatabaseConfig{
			URL: getEnv("DATABASE_URL", ""),
		},
		TLS: TLSConfig{
			CertFile: getEnv("TLS_CERT_FILE", ""),
			KeyFile:  getEnv("TLS_KEY_FILE", ""),
		},
		Session: SessionConfig{
			PasswordSalt:         getEnv("AUTH_PASSWORD_SALT", "__salt__"),
			DefaultDurationHours: getEnvAsInt("SESSION_DEFAULT_DURATION_HOURS", 1),
			MaxDurationHours:     getEnvAsInt("SESSION_MAX_DURATION_HOURS", 24),
		},
		RabbitMQ: RabbitMQConfig{
			URL:              getEnv("RABBITMQ_URL", ""),
			EventsExchange:   getEnv("RABBITMQ_EVENTS_EXCHANGE", "energy-metering.api.events.exchange"),
			EventsRoutingKey: getEnv("RABBITMQ_EVENTS_ROUTING_KEY", "api.session"),
		},
	}

	// Validate required fields
	if cfg.Database.URL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required but not set in environment variables")
	}
	if cfg.TLS.CertFile == "" || cfg.TLS.KeyFile == "" {
		return nil, fmt.Errorf("TLS_CERT_FILE and TLS_KEY_FILE are required but not set in environment variables")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
