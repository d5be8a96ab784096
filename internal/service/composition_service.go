package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/wallet-analytics/internal/chain"
	apperrors "github.com/wallet-analytics/internal/errors"
	"github.com/wallet-analytics/internal/logging"
	"github.com/wallet-analytics/internal/models"
	"github.com/wallet-analytics/internal/types"
)

// CompositionService aggregates holdings across wallets and chains
type CompositionService struct {
	wallets WalletRepository
	tokens  TokenRepository
	chains  ChainMetadata
	cache   ResultCache
}

// NewCompositionService creates a new composition service
func NewCompositionService(wallets WalletRepository, tokens TokenRepository, chains ChainMetadata, cache ResultCache) *CompositionService {
	return &CompositionService{
		wallets: wallets,
		tokens:  tokens,
		chains:  chains,
		cache:   cache,
	}
}

func nativeKey(c types.ChainID) string {
	return "native_" + string(c)
}

// Composition merges the native balances and token holdings of walletIDs.
// Zero and negative balances are left out unless includeZero is set. Unknown
// wallets are recorded in Failures; the call fails only when none resolve.
func (s *CompositionService) Composition(ctx context.Context, walletIDs []int64, includeZero bool) (*models.Portfolio, error) {
	if len(walletIDs) == 0 {
		return nil, apperrors.NewInvalidInputError("wallet_ids", "At least one wallet ID is required")
	}

	logger := logging.FromContext(ctx)
	portfolio := &models.Portfolio{
		ByChain:  make(map[types.ChainID]*models.ChainValue),
		ByWallet: make(map[int64]*models.WalletHoldings),
	}
	entries := make(map[string]*models.CompositionEntry)

	include := func(balance float64) bool {
		return balance > 0 || includeZero
	}
	add := func(key, symbol, name string, c types.ChainID, balance, usd float64) {
		portfolio.TotalValueUSD += usd

		cv, ok := portfolio.ByChain[c]
		if !ok {
			cv = &models.ChainValue{}
			portfolio.ByChain[c] = cv
		}
		cv.USDValue += usd

		entry, ok := entries[key]
		if !ok {
			entry = &models.CompositionEntry{Key: key, Symbol: symbol, Name: name, Chain: c}
			entries[key] = entry
		}
		entry.Balance += balance
		entry.USDValue += usd
	}

	// lastErr keeps the most recent failure that is not a missing wallet
	var lastErr error
	fail := func(id int64, err error) {
		logger.WithField("wallet_id", id).WithError(err).Warn("Skipping wallet in composition")
		portfolio.Failures = append(portfolio.Failures, models.ItemFailure{WalletID: id, Error: err.Error()})
		if !apperrors.IsNotFound(err) {
			lastErr = err
		}
	}

	seen := make(map[int64]struct{}, len(walletIDs))
	for _, id := range walletIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		wallet, err := s.wallets.GetByID(ctx, id)
		if err != nil {
			fail(id, err)
			continue
		}

		tokens, err := s.tokens.ListByWallet(ctx, id)
		if err != nil {
			fail(id, err)
			continue
		}

		holdings := &models.WalletHoldings{
			Address:       wallet.Address,
			Chain:         wallet.Chain,
			NativeBalance: wallet.NativeBalance,
			USDBalance:    wallet.USDBalance,
			Assets:        []models.PortfolioAsset{},
		}
		portfolio.ByWallet[id] = holdings

		if include(wallet.NativeBalance) {
			symbol := s.chains.CurrencySymbol(wallet.Chain)
			name := fmt.Sprintf("%s (%s)", symbol, wallet.Chain)
			holdings.Assets = append(holdings.Assets, models.PortfolioAsset{
				Type:     models.AssetNative,
				Symbol:   symbol,
				Name:     name,
				Chain:    wallet.Chain,
				Balance:  wallet.NativeBalance,
				USDValue: wallet.USDBalance,
			})
			add(nativeKey(wallet.Chain), symbol, name, wallet.Chain, wallet.NativeBalance, wallet.USDBalance)
		}

		for _, t := range tokens {
			if !include(t.Balance) {
				continue
			}
			tokenID := t.ID
			holdings.Assets = append(holdings.Assets, models.PortfolioAsset{
				Type:     models.AssetERC20,
				TokenID:  &tokenID,
				Symbol:   t.Symbol,
				Name:     t.Name,
				Chain:    t.Chain,
				Address:  t.Address,
				Balance:  t.Balance,
				USDValue: t.USDValue,
			})
			add(fmt.Sprintf("%s_%s", t.Symbol, t.Chain), t.Symbol, fmt.Sprintf("%s (%s)", t.Name, t.Chain), t.Chain, t.Balance, t.USDValue)
		}
	}

	if len(portfolio.ByWallet) == 0 {
		if lastErr != nil {
			return nil, lastErr
		}
		notFound := apperrors.NewNotFoundError("wallets", walletIDs)
		notFound.Message = "No valid wallets found"
		return nil, notFound
	}

	for _, cv := range portfolio.ByChain {
		cv.Percentage = percentOf(cv.USDValue, portfolio.TotalValueUSD)
	}

	portfolio.Composition = make([]*models.CompositionEntry, 0, len(entries))
	for _, entry := range entries {
		entry.Percentage = percentOf(entry.USDValue, portfolio.TotalValueUSD)
		portfolio.Composition = append(portfolio.Composition, entry)
	}
	sort.Slice(portfolio.Composition, func(i, j int) bool {
		a, b := portfolio.Composition[i], portfolio.Composition[j]
		if a.USDValue != b.USDValue {
			return a.USDValue > b.USDValue
		}
		return a.Key < b.Key
	})

	return portfolio, nil
}

// CrossChainValue totals every active wallet, or one user's active wallets,
// grouped by chain and by asset. Results are cached until the next Track of
// any wallet.
func (s *CompositionService) CrossChainValue(ctx context.Context, userID *int64) (*models.CrossChainAggregate, error) {
	logger := logging.FromContext(ctx)

	if s.cache != nil {
		var cached models.CrossChainAggregate
		found, err := s.cache.Get(ctx, s.cache.CrossChainKey(userID), &cached)
		if err != nil {
			logger.WithError(apperrors.NewCacheError("get cross-chain value", err)).Warn("Cache read failed")
		} else if found {
			return &cached, nil
		}
	}

	wallets, err := s.wallets.ListActive(ctx, userID)
	if err != nil {
		return nil, err
	}

	agg := &models.CrossChainAggregate{
		UserID:  userID,
		Chains:  []*models.ChainSummary{},
		Assets:  []*models.CrossChainAsset{},
		Wallets: make([]models.WalletSummary, 0, len(wallets)),
	}
	chains := make(map[types.ChainID]*models.ChainSummary)
	assets := make(map[string]*models.CrossChainAsset)

	for _, w := range wallets {
		agg.Wallets = append(agg.Wallets, models.WalletSummary{
			ID:            w.ID,
			Address:       w.Address,
			Chain:         w.Chain,
			NativeBalance: w.NativeBalance,
			USDBalance:    w.USDBalance,
		})
		agg.TotalValueUSD += w.USDBalance

		cs, ok := chains[w.Chain]
		if !ok {
			cs = &models.ChainSummary{Name: w.Chain}
			chains[w.Chain] = cs
			agg.Chains = append(agg.Chains, cs)
		}
		cs.NativeBalance += w.NativeBalance
		cs.USDValue += w.USDBalance

		key := nativeKey(w.Chain)
		native, ok := assets[key]
		if !ok {
			symbol := s.chains.CurrencySymbol(w.Chain)
			native = &models.CrossChainAsset{
				Key:    key,
				Symbol: symbol,
				Name:   fmt.Sprintf("%s (%s)", symbol, w.Chain),
				Type:   models.AssetNative,
				Chain:  w.Chain,
			}
			assets[key] = native
			agg.Assets = append(agg.Assets, native)
		}
		native.Balance += w.NativeBalance
		native.USDValue += w.USDBalance

		tokens, err := s.tokens.ListByWallet(ctx, w.ID)
		if err != nil {
			return nil, err
		}
		for _, t := range tokens {
			address := chain.NormalizeAddress(t.Address)
			key := strings.Join([]string{t.Symbol, string(t.Chain), address}, "_")
			asset, ok := assets[key]
			if !ok {
				asset = &models.CrossChainAsset{
					Key:     key,
					Symbol:  t.Symbol,
					Name:    t.Name,
					Type:    models.AssetERC20,
					Chain:   t.Chain,
					Address: address,
				}
				assets[key] = asset
				agg.Assets = append(agg.Assets, asset)
			}
			asset.Balance += t.Balance
			asset.USDValue += t.USDValue
			agg.TotalValueUSD += t.USDValue
		}
	}

	if agg.TotalValueUSD > 0 {
		for _, cs := range agg.Chains {
			cs.Percentage = percentOf(cs.USDValue, agg.TotalValueUSD)
		}
		for _, a := range agg.Assets {
			a.Percentage = percentOf(a.USDValue, agg.TotalValueUSD)
		}
	}

	sort.SliceStable(agg.Chains, func(i, j int) bool { return agg.Chains[i].USDValue > agg.Chains[j].USDValue })
	sort.SliceStable(agg.Assets, func(i, j int) bool { return agg.Assets[i].USDValue > agg.Assets[j].USDValue })

	if s.cache != nil {
		if err := s.cache.Set(ctx, s.cache.CrossChainKey(userID), agg); err != nil {
			logger.WithError(apperrors.NewCacheError("set cross-chain value", err)).Warn("Cache write failed")
		}
	}

	return agg, nil
}
