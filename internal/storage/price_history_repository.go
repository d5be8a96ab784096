package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/wallet-analytics/internal/models"
)

// PriceHistoryRepository reads and appends token price points in ClickHouse
type PriceHistoryRepository struct {
	db *ClickHouseDB
}

// NewPriceHistoryRepository creates a new price history repository
func NewPriceHistoryRepository(db *ClickHouseDB) *PriceHistoryRepository {
	return &PriceHistoryRepository{db: db}
}

// GetRange returns a token's price points with from <= timestamp <= to, oldest first
func (r *PriceHistoryRepository) GetRange(ctx context.Context, tokenID int64, from, to time.Time) ([]models.PricePoint, error) {
	query := `
		SELECT token_id, timestamp, price, volume_24h, market_cap
		FROM token_price_history
		WHERE token_id = ? AND timestamp >= ? AND timestamp <= ?
		ORDER BY timestamp ASC
	`

	rows, err := r.db.Conn().Query(ctx, query, uint64(tokenID), from.UTC(), to.UTC()) // #nosec G115 - ids are positive
	if err != nil {
		return nil, fmt.Errorf("failed to query price history: %w", err)
	}
	defer rows.Close()

	var points []models.PricePoint
	for rows.Next() {
		var p models.PricePoint
		var id uint64
		if err := rows.Scan(&id, &p.Timestamp, &p.Price, &p.Volume24h, &p.MarketCap); err != nil {
			return nil, fmt.Errorf("failed to scan price point: %w", err)
		}
		p.TokenID = int64(id) // #nosec G115
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate price history: %w", err)
	}

	return points, nil
}

// InsertBatch appends price points
func (r *PriceHistoryRepository) InsertBatch(ctx context.Context, points []models.PricePoint) error {
	if len(points) == 0 {
		return nil
	}

	batch, err := r.db.Conn().PrepareBatch(ctx, `
		INSERT INTO token_price_history (token_id, timestamp, price, volume_24h, market_cap)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare batch: %w", err)
	}

	for _, p := range points {
		if err := batch.Append(uint64(p.TokenID), p.Timestamp.UTC(), p.Price, p.Volume24h, p.MarketCap); err != nil { // #nosec G115
			return fmt.Errorf("failed to append to batch: %w", err)
		}
	}

	return batch.Send()
}
