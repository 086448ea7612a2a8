// ./internal/state/db.go
package state

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/rs/zerolog/log"
)

// DB is a global database connection pool.
var DB *sql.DB

// DBConfig holds database connection parameters.
type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string // "disable", "require", "verify-full", etc.
}

// InitDB initializes the database connection pool.
func InitDB(cfg DBConfig) error {
	psqlInfo := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	var err error
	DB, err = sql.Open("postgres", psqlInfo)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	DB.SetMaxOpenConns(25)
	DB.SetMaxIdleConns(25)
	DB.SetConnMaxLifetime(5 * time.Minute)

	if err := DB.Ping(); err != nil {
		DB.Close()
		DB = nil
		return fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().Msg("Successfully connected to the PostgreSQL database!")
	return nil
}

// CloseDB closes the database connection pool.
func CloseDB() {
	if DB != nil {
		log.Info().Msg("Closing database connection...")
		if err := DB.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing database connection")
		}
	}
}

const schemaSQL = `
	CREATE TABLE IF NOT EXISTS analysis_runs (
		run_id TEXT PRIMARY KEY,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		wallet_address TEXT NOT NULL,
		risk_preference VARCHAR(32) NOT NULL,

		-- Inputs
		positions JSONB NOT NULL,

		-- Outcome
		recommendations JSONB NOT NULL,
		recommended_destinations TEXT[], -- PostgreSQL array of destination protocol names
		total_current_yield_usd DECIMAL(20, 8) NOT NULL,
		total_optimized_yield_usd DECIMAL(20, 8) NOT NULL,
		risk_assessment TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_analysis_runs_created_at ON analysis_runs(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_analysis_runs_wallet ON analysis_runs(wallet_address);

	CREATE TABLE IF NOT EXISTS engine_parameters (
		params_id SERIAL PRIMARY KEY,
		config_name VARCHAR(255) NOT NULL DEFAULT 'default',
		version INTEGER NOT NULL DEFAULT 1,
		is_active BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		risk_profiles JSONB NOT NULL,
		min_position_balance_usd DECIMAL(20, 8) NOT NULL,
		base_gas_fee_usd DECIMAL(20, 8) NOT NULL,
		cross_chain_gas_multiplier DECIMAL(10, 4) NOT NULL,
		max_break_even_days DECIMAL(10, 4) NOT NULL,
		CONSTRAINT uq_engine_parameters_config_version UNIQUE (config_name, version)
	);
	CREATE INDEX IF NOT EXISTS idx_engine_parameters_config_active ON engine_parameters(config_name, is_active, created_at DESC);
`

// EnsureSchema applies the necessary DDL to create tables if they don't exist.
func EnsureSchema() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	if _, err := DB.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema DDL: %w", err)
	}
	log.Info().Msg("Database schema ensured.")
	return nil
}

// DropSchema removes every table EnsureSchema creates.
func DropSchema() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	if _, err := DB.Exec(`DROP TABLE IF EXISTS analysis_runs CASCADE; DROP TABLE IF EXISTS engine_parameters CASCADE;`); err != nil {
		return fmt.Errorf("failed to drop tables: %w", err)
	}
	log.Warn().Msg("Database tables dropped.")
	return nil
}

// TestDBConnection tests if the database connection is healthy
func TestDBConnection() error {
	if DB == nil {
		return fmt.Errorf("database connection is nil")
	}

	// Use a short timeout context for health checks
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := DB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	return nil
}
