package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	apperrors "github.com/wallet-analytics/internal/errors"
	"github.com/wallet-analytics/internal/models"
	"github.com/wallet-analytics/internal/types"
)

// BalanceSnapshotRepository persists one balance row per wallet per calendar day
type BalanceSnapshotRepository struct {
	db *PostgresDB
}

// NewBalanceSnapshotRepository creates a new balance snapshot repository
func NewBalanceSnapshotRepository(db *PostgresDB) *BalanceSnapshotRepository {
	return &BalanceSnapshotRepository{db: db}
}

const snapshotColumns = `id, wallet_id, snapshot_date, native_balance::text, usd_balance::text,
	token_balances, token_usd_values, last_updated`

func scanSnapshot(row pgx.Row) (*models.BalanceSnapshot, error) {
	var s models.BalanceSnapshot
	var native, usd string
	var balancesJSON, valuesJSON []byte

	if err := row.Scan(&s.ID, &s.WalletID, &s.Date, &native, &usd, &balancesJSON, &valuesJSON, &s.LastUpdated); err != nil {
		return nil, err
	}
	s.Date = types.CalendarDate(s.Date)

	if err := numericFields(
		numericPair{"native_balance", native, &s.NativeBalance},
		numericPair{"usd_balance", usd, &s.USDBalance},
	); err != nil {
		return nil, err
	}
	if err := decodeTokenAmounts(balancesJSON, &s.TokenBalances); err != nil {
		return nil, fmt.Errorf("token_balances: %w", err)
	}
	if err := decodeTokenAmounts(valuesJSON, &s.TokenUSDValues); err != nil {
		return nil, fmt.Errorf("token_usd_values: %w", err)
	}
	return &s, nil
}

func decodeTokenAmounts(raw []byte, dest *models.TokenAmounts) error {
	if len(raw) == 0 {
		*dest = models.TokenAmounts{}
		return nil
	}
	return json.Unmarshal(raw, dest)
}

// Upsert writes the snapshot for (wallet, date), overwriting any existing row
// for that day (last write wins).
func (r *BalanceSnapshotRepository) Upsert(ctx context.Context, snapshot *models.BalanceSnapshot) (*models.BalanceSnapshot, error) {
	balancesJSON, err := json.Marshal(snapshot.TokenBalances)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal token balances: %w", err)
	}
	valuesJSON, err := json.Marshal(snapshot.TokenUSDValues)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal token usd values: %w", err)
	}

	query := `
		INSERT INTO wallet_balance_history (
			wallet_id,
			snapshot_date,
			native_balance,
			usd_balance,
			token_balances,
			token_usd_values,
			last_updated
		) VALUES ($1, $2, $3::numeric, $4::numeric, $5, $6, $7)
		ON CONFLICT (wallet_id, snapshot_date)
		DO UPDATE SET
			native_balance = EXCLUDED.native_balance,
			usd_balance = EXCLUDED.usd_balance,
			token_balances = EXCLUDED.token_balances,
			token_usd_values = EXCLUDED.token_usd_values,
			last_updated = EXCLUDED.last_updated
		RETURNING ` + snapshotColumns

	stored, err := scanSnapshot(r.db.Pool().QueryRow(ctx, query,
		snapshot.WalletID,
		types.CalendarDate(snapshot.Date),
		formatNumeric(snapshot.NativeBalance),
		formatNumeric(snapshot.USDBalance),
		balancesJSON,
		valuesJSON,
		snapshot.LastUpdated.UTC(),
	))
	if err != nil {
		return nil, apperrors.NewDatabaseError("upsert balance snapshot", err)
	}
	return stored, nil
}

// GetByWalletAndDateRange returns stored snapshots with from <= date <= to in
// chronological order.
func (r *BalanceSnapshotRepository) GetByWalletAndDateRange(ctx context.Context, walletID int64, from, to time.Time) ([]*models.BalanceSnapshot, error) {
	query := `
		SELECT ` + snapshotColumns + `
		FROM wallet_balance_history
		WHERE wallet_id = $1
			AND snapshot_date >= $2
			AND snapshot_date <= $3
		ORDER BY snapshot_date ASC
	`

	rows, err := r.db.Pool().Query(ctx, query, walletID, types.CalendarDate(from), types.CalendarDate(to))
	if err != nil {
		return nil, apperrors.NewDatabaseError("query balance history", err)
	}
	defer rows.Close()

	var snapshots []*models.BalanceSnapshot
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		snapshots = append(snapshots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewDatabaseError("query balance history", err)
	}

	return snapshots, nil
}

// GetEarliest returns the earliest stored snapshot on or after onOrAfter, or
// the earliest overall when onOrAfter is nil. It returns (nil, nil) when the
// wallet has no matching snapshot.
func (r *BalanceSnapshotRepository) GetEarliest(ctx context.Context, walletID int64, onOrAfter *time.Time) (*models.BalanceSnapshot, error) {
	query := `SELECT ` + snapshotColumns + ` FROM wallet_balance_history WHERE wallet_id = $1`
	args := []interface{}{walletID}
	if onOrAfter != nil {
		query += ` AND snapshot_date >= $2`
		args = append(args, types.CalendarDate(*onOrAfter))
	}
	query += ` ORDER BY snapshot_date ASC LIMIT 1`

	s, err := scanSnapshot(r.db.Pool().QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, apperrors.NewDatabaseError("get baseline snapshot", err)
	}
	return s, nil
}
