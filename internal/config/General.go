package config

import (
	"errors"
	"math"
	"os"
	"strconv"

	"github.com/rs/zerolog/log"
)

// AppConfig holds all application configuration loaded from environment variables.
// These are populated at startup by the LoadConfig function.
var (
	// WebPort is the port the HTTP API listens on.
	WebPort string
	// LogLevel is one of debug, info, warn, error.
	LogLevel string
	// LogFile optionally mirrors log output to a file.
	LogFile string

	// DBEnabled turns on persistence of analysis runs.
	DBEnabled bool
	// DBHost, DBPort, DBUser, DBPassword, DBName and DBSSLMode describe the Postgres connection.
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
)

// LoadConfig loads configuration from environment variables and sets the global config vars.
// Database settings are only required when DB_ENABLED is true.
func LoadConfig() error {
	log.Info().Msg("Loading application configuration from environment variables...")

	var err error

	WebPort = getEnvOrDefault("WEB_PORT", "8080")
	LogLevel = getEnvOrDefault("LOG_LEVEL", "info")
	LogFile = getEnvOrDefault("LOG_FILE", "")

	DBEnabled, err = getEnvAsBool("DB_ENABLED", false)
	if err != nil {
		return err
	}

	if DBEnabled {
		if DBHost, err = getEnv("DB_HOST"); err != nil {
			return err
		}
		if DBPort, err = getEnvAsInt("DB_PORT"); err != nil {
			return err
		}
		if DBUser, err = getEnv("DB_USER"); err != nil {
			return err
		}
		if DBPassword, err = getEnv("DB_PASSWORD"); err != nil {
			return err
		}
		if DBName, err = getEnv("DB_NAME"); err != nil {
			return err
		}
		DBSSLMode = getEnvOrDefault("DB_SSLMODE", "disable")
	}

	// Load endpoint configuration
	if err := loadEndpointConfig(); err != nil {
		return err
	}

	log.Debug().
		Str("WebPort", WebPort).
		Str("LogLevel", LogLevel).
		Bool("DBEnabled", DBEnabled).
		Msg("Configuration loaded successfully.")

	return nil
}

// getEnv retrieves a string environment variable. Returns error if not set.
func getEnv(key string) (string, error) {
	if value, exists := os.LookupEnv(key); exists {
		return value, nil
	}
	return "", errors.New("environment variable " + key + " is required but not set")
}

// getEnvOrDefault retrieves a string environment variable, falling back when unset or empty.
func getEnvOrDefault(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

// getEnvAsInt retrieves an environment variable as an int. Returns error if not set or invalid.
func getEnvAsInt(key string) (int, error) {
	valueStr, err := getEnv(key)
	if err != nil {
		return 0, err
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, errors.New("environment variable " + key + " must be a valid int, got: " + valueStr)
	}
	return value, nil
}

// getEnvAsFloat64OrDefault retrieves an optional float64 environment variable. Returns error if set but invalid.
func getEnvAsFloat64OrDefault(key string, fallback float64) (float64, error) {
	valueStr, exists := os.LookupEnv(key)
	if !exists || valueStr == "" {
		return fallback, nil
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, errors.New("environment variable " + key + " must be a valid finite float64, got: " + valueStr)
	}
	return value, nil
}

// getEnvAsBool retrieves an optional boolean environment variable. Returns error if set but invalid.
func getEnvAsBool(key string, fallback bool) (bool, error) {
	valueStr, exists := os.LookupEnv(key)
	if !exists || valueStr == "" {
		return fallback, nil
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return false, errors.New("environment variable " + key + " must be a valid bool, got: " + valueStr)
	}
	return value, nil
}
