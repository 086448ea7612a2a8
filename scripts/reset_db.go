package main

import (
	"os"

	"github.com/elys-network/yield-optimizer/internal/config"
	"github.com/elys-network/yield-optimizer/internal/logger"
	"github.com/elys-network/yield-optimizer/internal/state"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Drops the optimizer tables and recreates them empty. Analysis history and stored engine
// parameters are lost; the service seeds default parameters again on its next start.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("Warning: .env file not found. Relying on OS environment variables.")
	}

	// The reset always needs a database, whatever the service setting is.
	if err := os.Setenv("DB_ENABLED", "true"); err != nil {
		log.Fatal().Err(err).Msg("Failed to enable database settings")
	}
	if err := config.LoadConfig(); err != nil {
		log.Fatal().Err(err).Msg("Failed to load database configuration")
	}
	logger.Initialize(config.LogLevel)

	dbCfg := state.DBConfig{
		Host:     config.DBHost,
		Port:     config.DBPort,
		User:     config.DBUser,
		Password: config.DBPassword,
		DBName:   config.DBName,
		SSLMode:  config.DBSSLMode,
	}

	log.Info().
		Str("host", dbCfg.Host).
		Int("port", dbCfg.Port).
		Str("dbname", dbCfg.DBName).
		Msg("Resetting optimizer database")

	if err := state.InitDB(dbCfg); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database connection")
	}
	defer state.CloseDB()

	if err := state.DropSchema(); err != nil {
		log.Fatal().Err(err).Msg("Failed to drop optimizer tables")
	}
	if err := state.EnsureSchema(); err != nil {
		log.Fatal().Err(err).Msg("Failed to recreate optimizer tables")
	}

	log.Info().Msg("Database reset complete. analysis_runs and engine_parameters are empty.")
}
