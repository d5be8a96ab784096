package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	apperrors "github.com/wallet-analytics/internal/errors"
	"github.com/wallet-analytics/internal/models"
	"github.com/wallet-analytics/internal/types"
)

// TokenRepository reads token holdings and records all-time highs
type TokenRepository struct {
	db *PostgresDB
}

// NewTokenRepository creates a new token repository
func NewTokenRepository(db *PostgresDB) *TokenRepository {
	return &TokenRepository{db: db}
}

const tokenColumns = `id, wallet_id, chain, address, symbol, name, decimals,
	balance::text, usd_value::text, current_price::text, price_24h_change::text,
	all_time_high::text, all_time_high_date, last_updated`

func scanToken(row pgx.Row) (*models.Token, error) {
	var t models.Token
	var chain, balance, usd, price, change string
	var ath *string
	if err := row.Scan(
		&t.ID, &t.WalletID, &chain, &t.Address, &t.Symbol, &t.Name, &t.Decimals,
		&balance, &usd, &price, &change,
		&ath, &t.AllTimeHighDate, &t.LastUpdated,
	); err != nil {
		return nil, err
	}
	t.Chain = types.NormalizeChainID(chain)

	if err := numericFields(
		numericPair{"balance", balance, &t.Balance},
		numericPair{"usd_value", usd, &t.USDValue},
		numericPair{"current_price", price, &t.CurrentPrice},
		numericPair{"price_24h_change", change, &t.Price24hChange},
	); err != nil {
		return nil, err
	}

	var err error
	if t.AllTimeHigh, err = parseNullableNumeric(ath); err != nil {
		return nil, fmt.Errorf("all_time_high: %w", err)
	}
	return &t, nil
}

// GetByID retrieves a token by id
func (r *TokenRepository) GetByID(ctx context.Context, id int64) (*models.Token, error) {
	query := `SELECT ` + tokenColumns + ` FROM tokens WHERE id = $1`

	t, err := scanToken(r.db.Pool().QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("token", id)
		}
		return nil, apperrors.NewDatabaseError("get token", err)
	}
	return t, nil
}

// ListByWallet returns every token held by a wallet, ordered by id
func (r *TokenRepository) ListByWallet(ctx context.Context, walletID int64) ([]*models.Token, error) {
	query := `SELECT ` + tokenColumns + ` FROM tokens WHERE wallet_id = $1 ORDER BY id`

	rows, err := r.db.Pool().Query(ctx, query, walletID)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list tokens", err)
	}
	defer rows.Close()

	var tokens []*models.Token
	for rows.Next() {
		t, err := scanToken(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan token row: %w", err)
		}
		tokens = append(tokens, t)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewDatabaseError("list tokens", err)
	}

	return tokens, nil
}

// UpdateAllTimeHigh records a new all-time high. The write is conditional so a
// concurrent higher value is never overwritten by a lower one.
func (r *TokenRepository) UpdateAllTimeHigh(ctx context.Context, id int64, price float64, at time.Time) error {
	query := `
		UPDATE tokens
		SET all_time_high = $2::numeric, all_time_high_date = $3
		WHERE id = $1 AND (all_time_high IS NULL OR all_time_high < $2::numeric)
	`

	if _, err := r.db.Pool().Exec(ctx, query, id, formatNumeric(price), at.UTC()); err != nil {
		return apperrors.NewDatabaseError("update all-time high", err)
	}
	return nil
}
