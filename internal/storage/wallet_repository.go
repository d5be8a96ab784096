package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	apperrors "github.com/wallet-analytics/internal/errors"
	"github.com/wallet-analytics/internal/models"
	"github.com/wallet-analytics/internal/types"
)

// WalletRepository reads wallet records from Postgres
type WalletRepository struct {
	db *PostgresDB
}

// NewWalletRepository creates a new wallet repository
func NewWalletRepository(db *PostgresDB) *WalletRepository {
	return &WalletRepository{db: db}
}

const walletColumns = `id, user_id, address, chain, native_balance::text, usd_balance::text, is_active, last_updated`

func scanWallet(row pgx.Row) (*models.Wallet, error) {
	var w models.Wallet
	var chain, native, usd string
	if err := row.Scan(&w.ID, &w.UserID, &w.Address, &chain, &native, &usd, &w.IsActive, &w.LastUpdated); err != nil {
		return nil, err
	}
	w.Chain = types.NormalizeChainID(chain)
	if err := numericFields(
		numericPair{"native_balance", native, &w.NativeBalance},
		numericPair{"usd_balance", usd, &w.USDBalance},
	); err != nil {
		return nil, err
	}
	return &w, nil
}

// GetByID retrieves a wallet by id
func (r *WalletRepository) GetByID(ctx context.Context, id int64) (*models.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE id = $1`

	w, err := scanWallet(r.db.Pool().QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("wallet", id)
		}
		return nil, apperrors.NewDatabaseError("get wallet", err)
	}
	return w, nil
}

// ListActive returns active wallets ordered by id, optionally restricted to one user
func (r *WalletRepository) ListActive(ctx context.Context, userID *int64) ([]*models.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE is_active = TRUE`
	args := []interface{}{}
	if userID != nil {
		query += ` AND user_id = $1`
		args = append(args, *userID)
	}
	query += ` ORDER BY id`

	rows, err := r.db.Pool().Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list active wallets", err)
	}
	defer rows.Close()

	var wallets []*models.Wallet
	for rows.Next() {
		w, err := scanWallet(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan wallet row: %w", err)
		}
		wallets = append(wallets, w)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewDatabaseError("list active wallets", err)
	}

	return wallets, nil
}
