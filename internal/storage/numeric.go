package storage

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Balances live in NUMERIC columns. Queries select them as ::text and decode
// through decimal so large values never pass through a lossy driver path.

func parseNumeric(raw string) (float64, error) {
	if raw == "" {
		return 0, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid numeric %q: %w", raw, err)
	}
	return d.InexactFloat64(), nil
}

func parseNullableNumeric(raw *string) (*float64, error) {
	if raw == nil {
		return nil, nil
	}
	v, err := parseNumeric(*raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// formatNumeric renders v for a NUMERIC parameter without float noise
func formatNumeric(v float64) string {
	return decimal.NewFromFloat(v).String()
}

// numericFields decodes several text-rendered NUMERIC columns in one go
func numericFields(pairs ...numericPair) error {
	for _, p := range pairs {
		v, err := parseNumeric(p.raw)
		if err != nil {
			return fmt.Errorf("%s: %w", p.name, err)
		}
		*p.dest = v
	}
	return nil
}

type numericPair struct {
	name string
	raw  string
	dest *float64
}
