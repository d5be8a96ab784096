package service

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/wallet-analytics/internal/chain"
	apperrors "github.com/wallet-analytics/internal/errors"
	"github.com/wallet-analytics/internal/models"
	"github.com/wallet-analytics/internal/types"
)

// In-memory repositories for service tests

var testNow = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func testRegistry() *chain.Registry {
	return chain.NewRegistry("ETH",
		models.ChainInfo{Name: types.ChainEthereum, ChainID: 1, CurrencySymbol: "ETH", NativeUSDPrice: 1500},
		models.ChainInfo{Name: types.ChainPolygon, ChainID: 137, CurrencySymbol: "MATIC", NativeUSDPrice: 0.7},
	)
}

type fakeWalletRepo struct {
	wallets map[int64]*models.Wallet
	listErr error
}

func newFakeWalletRepo(wallets ...*models.Wallet) *fakeWalletRepo {
	r := &fakeWalletRepo{wallets: make(map[int64]*models.Wallet)}
	for _, w := range wallets {
		r.wallets[w.ID] = w
	}
	return r
}

func (r *fakeWalletRepo) GetByID(ctx context.Context, id int64) (*models.Wallet, error) {
	w, ok := r.wallets[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("wallet", id)
	}
	c := *w
	return &c, nil
}

func (r *fakeWalletRepo) ListActive(ctx context.Context, userID *int64) ([]*models.Wallet, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []*models.Wallet
	for _, w := range r.wallets {
		if !w.IsActive {
			continue
		}
		if userID != nil && (w.UserID == nil || *w.UserID != *userID) {
			continue
		}
		c := *w
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type athUpdate struct {
	id    int64
	price float64
	at    time.Time
}

type fakeTokenRepo struct {
	tokens     map[int64]*models.Token
	listErr    map[int64]error
	athUpdates []athUpdate
}

func newFakeTokenRepo(tokens ...*models.Token) *fakeTokenRepo {
	r := &fakeTokenRepo{tokens: make(map[int64]*models.Token), listErr: make(map[int64]error)}
	for _, t := range tokens {
		r.tokens[t.ID] = t
	}
	return r
}

func (r *fakeTokenRepo) GetByID(ctx context.Context, id int64) (*models.Token, error) {
	t, ok := r.tokens[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("token", id)
	}
	c := *t
	return &c, nil
}

func (r *fakeTokenRepo) ListByWallet(ctx context.Context, walletID int64) ([]*models.Token, error) {
	if err := r.listErr[walletID]; err != nil {
		return nil, err
	}
	var out []*models.Token
	for _, t := range r.tokens {
		if t.WalletID == walletID {
			c := *t
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeTokenRepo) UpdateAllTimeHigh(ctx context.Context, id int64, price float64, at time.Time) error {
	r.athUpdates = append(r.athUpdates, athUpdate{id: id, price: price, at: at})
	if t, ok := r.tokens[id]; ok {
		p, d := price, at
		t.AllTimeHigh, t.AllTimeHighDate = &p, &d
	}
	return nil
}

type fakeSnapshotRepo struct {
	mu     sync.Mutex
	rows   map[int64]map[string]*models.BalanceSnapshot
	nextID int64
}

func newFakeSnapshotRepo() *fakeSnapshotRepo {
	return &fakeSnapshotRepo{rows: make(map[int64]map[string]*models.BalanceSnapshot)}
}

// put stores a snapshot directly, bypassing the service
func (r *fakeSnapshotRepo) put(s *models.BalanceSnapshot) {
	s.Date = types.CalendarDate(s.Date)
	if _, err := r.Upsert(context.Background(), s); err != nil {
		panic(err)
	}
}

func (r *fakeSnapshotRepo) count(walletID int64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows[walletID])
}

func cloneSnapshot(s *models.BalanceSnapshot) *models.BalanceSnapshot {
	c := *s
	c.TokenBalances = s.TokenBalances.Clone()
	c.TokenUSDValues = s.TokenUSDValues.Clone()
	return &c
}

func (r *fakeSnapshotRepo) Upsert(ctx context.Context, s *models.BalanceSnapshot) (*models.BalanceSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	byDate, ok := r.rows[s.WalletID]
	if !ok {
		byDate = make(map[string]*models.BalanceSnapshot)
		r.rows[s.WalletID] = byDate
	}
	key := s.Date.Format(types.DateLayout)
	stored := cloneSnapshot(s)
	stored.Date = types.CalendarDate(s.Date)
	stored.Estimated = false
	if existing, ok := byDate[key]; ok {
		stored.ID = existing.ID
	} else {
		r.nextID++
		stored.ID = r.nextID
	}
	byDate[key] = stored
	return cloneSnapshot(stored), nil
}

func (r *fakeSnapshotRepo) sorted(walletID int64) []*models.BalanceSnapshot {
	var out []*models.BalanceSnapshot
	for _, s := range r.rows[walletID] {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

func (r *fakeSnapshotRepo) GetByWalletAndDateRange(ctx context.Context, walletID int64, from, to time.Time) ([]*models.BalanceSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	from, to = types.CalendarDate(from), types.CalendarDate(to)
	var out []*models.BalanceSnapshot
	for _, s := range r.sorted(walletID) {
		if !s.Date.Before(from) && !s.Date.After(to) {
			out = append(out, cloneSnapshot(s))
		}
	}
	return out, nil
}

func (r *fakeSnapshotRepo) GetEarliest(ctx context.Context, walletID int64, onOrAfter *time.Time) (*models.BalanceSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sorted(walletID) {
		if onOrAfter == nil || !s.Date.Before(types.CalendarDate(*onOrAfter)) {
			return cloneSnapshot(s), nil
		}
	}
	return nil, nil
}

type fakePriceRepo struct {
	points map[int64][]models.PricePoint
	errs   map[int64]error
}

func newFakePriceRepo() *fakePriceRepo {
	return &fakePriceRepo{points: make(map[int64][]models.PricePoint), errs: make(map[int64]error)}
}

// daily appends one point per day ending at end, oldest first
func (r *fakePriceRepo) daily(tokenID int64, end time.Time, prices ...float64) {
	start := end.AddDate(0, 0, -(len(prices) - 1))
	for i, p := range prices {
		r.points[tokenID] = append(r.points[tokenID], models.PricePoint{
			TokenID:   tokenID,
			Timestamp: start.AddDate(0, 0, i),
			Price:     p,
		})
	}
}

func (r *fakePriceRepo) GetRange(ctx context.Context, tokenID int64, from, to time.Time) ([]models.PricePoint, error) {
	if err := r.errs[tokenID]; err != nil {
		return nil, err
	}
	var out []models.PricePoint
	for _, p := range r.points[tokenID] {
		if !p.Timestamp.Before(from) && !p.Timestamp.After(to) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

type fakeTxRepo struct {
	txs map[int64][]models.Transaction
	err error
}

func (r *fakeTxRepo) ListByWallet(ctx context.Context, walletID int64, since time.Time) ([]models.Transaction, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []models.Transaction
	for _, tx := range r.txs[walletID] {
		if !tx.Timestamp.Before(since) {
			out = append(out, tx)
		}
	}
	return out, nil
}

type fakeOracle struct {
	err error
}

func (o *fakeOracle) NativeUSDPrice(ctx context.Context, c types.ChainID) (float64, error) {
	if o.err != nil {
		return 0, o.err
	}
	return testRegistry().NativeUSDPrice(ctx, c)
}

type fakeCache struct {
	data        map[string][]byte
	getErr      error
	invalidated []int64
	sets        int
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string][]byte)}
}

func (c *fakeCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if c.getErr != nil {
		return false, c.getErr
	}
	raw, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *fakeCache) Set(ctx context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.sets++
	c.data[key] = raw
	return nil
}

func (c *fakeCache) RiskKey(walletID int64) string {
	return "risk:" + jsonInt(walletID)
}

func (c *fakeCache) CrossChainKey(userID *int64) string {
	if userID == nil {
		return "crosschain:all"
	}
	return "crosschain:user:" + jsonInt(*userID)
}

func (c *fakeCache) InvalidateWallet(ctx context.Context, walletID int64) error {
	c.invalidated = append(c.invalidated, walletID)
	delete(c.data, c.RiskKey(walletID))
	for k := range c.data {
		if strings.HasPrefix(k, "crosschain:") {
			delete(c.data, k)
		}
	}
	return nil
}

func jsonInt(v int64) string {
	b, _ := json.Marshal(v)
	return string(b)
}

func newWallet(id int64, c types.ChainID, native, usd float64) *models.Wallet {
	return &models.Wallet{
		ID:            id,
		Address:       "0xwallet" + jsonInt(id),
		Chain:         c,
		NativeBalance: native,
		USDBalance:    usd,
		IsActive:      true,
	}
}

func newToken(id, walletID int64, symbol string, balance, usd float64) *models.Token {
	return &models.Token{
		ID:       id,
		WalletID: walletID,
		Chain:    types.ChainEthereum,
		Address:  "0x000000000000000000000000000000000000" + jsonInt(1000+id),
		Symbol:   symbol,
		Name:     symbol + " Token",
		Decimals: 18,
		Balance:  balance,
		USDValue: usd,
	}
}

func ptr[T any](v T) *T { return &v }
