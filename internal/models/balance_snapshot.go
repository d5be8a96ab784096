package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wallet-analytics/internal/types"
)

// BalanceSnapshot is the (wallet, calendar date) balance record. Stored rows
// always have Estimated=false; Estimated=true marks a forward-filled copy
// synthesized at read time.
type BalanceSnapshot struct {
	ID             int64        `json:"-" db:"id"`
	WalletID       int64        `json:"wallet_id" db:"wallet_id"`
	Date           time.Time    `json:"date" db:"snapshot_date"`
	NativeBalance  float64      `json:"native_balance" db:"native_balance"`
	USDBalance     float64      `json:"usd_balance" db:"usd_balance"`
	TokenBalances  TokenAmounts `json:"token_balances" db:"token_balances"`
	TokenUSDValues TokenAmounts `json:"token_usd_values" db:"token_usd_values"`
	LastUpdated    time.Time    `json:"last_updated" db:"last_updated"`
	Estimated      bool         `json:"estimated" db:"-"`
}

// MarshalJSON renders Date as YYYY-MM-DD
func (s BalanceSnapshot) MarshalJSON() ([]byte, error) {
	type alias BalanceSnapshot
	return json.Marshal(struct {
		alias
		Date string `json:"date"`
	}{alias: alias(s), Date: s.Date.Format(types.DateLayout)})
}

// EstimatedCopy returns a forward-filled copy of s dated at date.
func (s *BalanceSnapshot) EstimatedCopy(date time.Time) *BalanceSnapshot {
	c := *s
	c.ID = 0
	c.Date = date
	c.Estimated = true
	c.TokenBalances = s.TokenBalances.Clone()
	c.TokenUSDValues = s.TokenUSDValues.Clone()
	return &c
}

// TokenAmounts maps token id to an amount. The persisted JSON form is keyed
// loosely ("12", "12.0", " 12 ") and may carry numeric or string values;
// decoding normalizes everything to int64 keys and float64 values.
type TokenAmounts map[int64]float64

// Get returns the amount for id, or 0 when absent.
func (m TokenAmounts) Get(id int64) float64 {
	if m == nil {
		return 0
	}
	return m[id]
}

// Clone returns a shallow copy that never aliases m.
func (m TokenAmounts) Clone() TokenAmounts {
	out := make(TokenAmounts, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// UnmarshalJSON decodes a loosely keyed token map. When two raw keys normalize
// to the same id, the lexicographically greater raw key wins.
func (m *TokenAmounts) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*m = TokenAmounts{}
		return nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("token amounts: %w", err)
	}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(TokenAmounts, len(raw))
	for _, k := range keys {
		id, err := ParseTokenID(k)
		if err != nil {
			return err
		}
		amount, err := parseAmount(raw[k])
		if err != nil {
			return fmt.Errorf("token amounts: value for %q: %w", k, err)
		}
		out[id] = amount
	}

	*m = out
	return nil
}

// ParseTokenID normalizes a raw token-map key to its canonical int64 id.
func ParseTokenID(raw string) (int64, error) {
	s := strings.TrimSpace(raw)
	if id, err := strconv.ParseInt(s, 10, 64); err == nil {
		if id < 0 {
			return 0, fmt.Errorf("invalid token id %q", raw)
		}
		return id, nil
	}

	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsInteger() || d.IsNegative() {
		return 0, fmt.Errorf("invalid token id %q", raw)
	}
	return d.IntPart(), nil
}

func parseAmount(v json.RawMessage) (float64, error) {
	s := strings.TrimSpace(string(v))
	if s == "null" || s == "" {
		return 0, nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(v, &str); err != nil {
			return 0, err
		}
		s = strings.TrimSpace(str)
		if s == "" {
			return 0, nil
		}
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, err
	}
	return d.InexactFloat64(), nil
}
