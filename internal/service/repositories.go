// Package service implements the wallet analytics engine: balance history,
// portfolio composition, profit/loss, wallet comparison, risk scoring and
// token analytics.
package service

import (
	"context"
	"time"

	"github.com/wallet-analytics/internal/models"
	"github.com/wallet-analytics/internal/types"
)

// WalletRepository interface for wallet reads
type WalletRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Wallet, error)
	ListActive(ctx context.Context, userID *int64) ([]*models.Wallet, error)
}

// TokenRepository interface for token holdings
type TokenRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Token, error)
	ListByWallet(ctx context.Context, walletID int64) ([]*models.Token, error)
	UpdateAllTimeHigh(ctx context.Context, id int64, price float64, at time.Time) error
}

// BalanceSnapshotRepository interface for the daily balance store
type BalanceSnapshotRepository interface {
	Upsert(ctx context.Context, snapshot *models.BalanceSnapshot) (*models.BalanceSnapshot, error)
	GetByWalletAndDateRange(ctx context.Context, walletID int64, from, to time.Time) ([]*models.BalanceSnapshot, error)
	GetEarliest(ctx context.Context, walletID int64, onOrAfter *time.Time) (*models.BalanceSnapshot, error)
}

// PriceHistoryRepository interface for token price points
type PriceHistoryRepository interface {
	GetRange(ctx context.Context, tokenID int64, from, to time.Time) ([]models.PricePoint, error)
}

// TransactionRepository interface for wallet transactions
type TransactionRepository interface {
	ListByWallet(ctx context.Context, walletID int64, since time.Time) ([]models.Transaction, error)
}

// PriceOracle prices one unit of a chain's native currency in USD
type PriceOracle interface {
	NativeUSDPrice(ctx context.Context, chain types.ChainID) (float64, error)
}

// ChainMetadata resolves static chain facts
type ChainMetadata interface {
	CurrencySymbol(chain types.ChainID) string
}

// ResultCache stores computed results keyed per wallet or per user.
// A nil ResultCache disables caching.
type ResultCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}) error
	RiskKey(walletID int64) string
	CrossChainKey(userID *int64) string
	InvalidateWallet(ctx context.Context, walletID int64) error
}
