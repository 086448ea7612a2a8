// ./internal/state/parameters_store.go
package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/elys-network/yield-optimizer/internal/types"
	"github.com/rs/zerolog/log"
)

var ErrNoActiveParameters = errors.New("no active engine parameters")

// SaveEngineParameters stores a new version of the engine parameters. When makeActive is set
// every other version of the same config is deactivated in the same transaction.
func (s *PostgresStore) SaveEngineParameters(ctx context.Context, params types.EngineParameters, configName string, version int, makeActive bool) (id int64, err error) {
	if err := s.ready(); err != nil {
		return 0, err
	}

	profilesJSON, err := json.Marshal(params.RiskProfiles)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal risk_profiles: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if makeActive {
		stmtDeactivate := `UPDATE engine_parameters SET is_active = FALSE WHERE config_name = $1 AND is_active = TRUE;`
		if _, err = tx.ExecContext(ctx, stmtDeactivate, configName); err != nil {
			return 0, fmt.Errorf("failed to deactivate existing active parameters for %s: %w", configName, err)
		}
	}

	stmt := `
		INSERT INTO engine_parameters (
			config_name, version, is_active, risk_profiles,
			min_position_balance_usd, base_gas_fee_usd, cross_chain_gas_multiplier, max_break_even_days
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING params_id;
	`
	err = tx.QueryRowContext(ctx, stmt,
		configName, version, makeActive, profilesJSON,
		params.MinPositionBalanceUSD, params.BaseGasFeeUSD, params.CrossChainGasMultiplier, params.MaxBreakEvenDays,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert engine parameters: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Info().
		Int64("params_id", id).
		Str("config_name", configName).
		Int("version", version).
		Bool("is_active", makeActive).
		Msg("Saved engine parameters")

	return id, nil
}

// GetActiveEngineParameters loads the active version of configName, or ErrNoActiveParameters.
func (s *PostgresStore) GetActiveEngineParameters(ctx context.Context, configName string) (types.EngineParameters, int, error) {
	if err := s.ready(); err != nil {
		return types.EngineParameters{}, 0, err
	}

	query := `
		SELECT version, risk_profiles,
			min_position_balance_usd, base_gas_fee_usd, cross_chain_gas_multiplier, max_break_even_days
		FROM engine_parameters
		WHERE config_name = $1 AND is_active = TRUE
		ORDER BY created_at DESC
		LIMIT 1;
	`

	var params types.EngineParameters
	var version int
	var profilesJSON []byte
	err := s.db.QueryRowContext(ctx, query, configName).Scan(
		&version, &profilesJSON,
		&params.MinPositionBalanceUSD, &params.BaseGasFeeUSD, &params.CrossChainGasMultiplier, &params.MaxBreakEvenDays,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.EngineParameters{}, 0, fmt.Errorf("%w: %s", ErrNoActiveParameters, configName)
		}
		return types.EngineParameters{}, 0, fmt.Errorf("failed to query active engine parameters: %w", err)
	}

	if err := json.Unmarshal(profilesJSON, &params.RiskProfiles); err != nil {
		return types.EngineParameters{}, 0, fmt.Errorf("failed to unmarshal risk_profiles: %w", err)
	}

	return params, version, nil
}
