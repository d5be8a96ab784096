package models

import "github.com/wallet-analytics/internal/types"

// AssetType distinguishes a wallet's native balance from token holdings
type AssetType string

const (
	AssetNative AssetType = "native"
	AssetERC20  AssetType = "erc20"
)

// Portfolio is the composition rollup over a set of wallets
type Portfolio struct {
	TotalValueUSD float64                       `json:"total_value_usd"`
	ByChain       map[types.ChainID]*ChainValue `json:"by_chain"`
	ByWallet      map[int64]*WalletHoldings     `json:"by_wallet"`
	Composition   []*CompositionEntry           `json:"composition"`
	Failures      []ItemFailure                 `json:"failures,omitempty"`
}

// ChainValue is one chain's share of a portfolio
type ChainValue struct {
	USDValue   float64 `json:"usd_value"`
	Percentage float64 `json:"percentage"`
}

// WalletHoldings lists the included assets of one wallet
type WalletHoldings struct {
	Address       string           `json:"address"`
	Chain         types.ChainID    `json:"chain"`
	NativeBalance float64          `json:"native_balance"`
	USDBalance    float64          `json:"usd_balance"`
	Assets        []PortfolioAsset `json:"assets"`
}

// PortfolioAsset is a native balance or token holding inside one wallet
type PortfolioAsset struct {
	Type     AssetType     `json:"type"`
	TokenID  *int64        `json:"token_id,omitempty"`
	Symbol   string        `json:"symbol"`
	Name     string        `json:"name"`
	Chain    types.ChainID `json:"chain"`
	Address  string        `json:"address,omitempty"`
	Balance  float64       `json:"balance"`
	USDValue float64       `json:"usd_value"`
}

// CompositionEntry sums one (symbol, chain) asset across wallets
type CompositionEntry struct {
	Key        string        `json:"key"`
	Symbol     string        `json:"symbol"`
	Name       string        `json:"name"`
	Chain      types.ChainID `json:"chain"`
	Balance    float64       `json:"balance"`
	USDValue   float64       `json:"usd_value"`
	Percentage float64       `json:"percentage"`
}

// ItemFailure records a wallet skipped by a batch operation
type ItemFailure struct {
	WalletID int64  `json:"wallet_id"`
	Error    string `json:"error"`
}

// CrossChainAggregate is the value of all active wallets grouped by chain and asset
type CrossChainAggregate struct {
	UserID        *int64             `json:"user_id,omitempty"`
	TotalValueUSD float64            `json:"total_value_usd"`
	Chains        []*ChainSummary    `json:"chains"`
	Assets        []*CrossChainAsset `json:"assets"`
	Wallets       []WalletSummary    `json:"wallets"`
}

// ChainSummary aggregates native balances on one chain
type ChainSummary struct {
	Name          types.ChainID `json:"name"`
	NativeBalance float64       `json:"native_balance"`
	USDValue      float64       `json:"usd_value"`
	Percentage    float64       `json:"percentage"`
}

// CrossChainAsset aggregates one asset key across wallets
type CrossChainAsset struct {
	Key        string        `json:"key"`
	Symbol     string        `json:"symbol"`
	Name       string        `json:"name"`
	Type       AssetType     `json:"type"`
	Chain      types.ChainID `json:"chain"`
	Address    string        `json:"address,omitempty"`
	Balance    float64       `json:"balance"`
	USDValue   float64       `json:"usd_value"`
	Percentage float64       `json:"percentage"`
}

// WalletSummary is the balance line of one wallet in a cross-chain aggregate
type WalletSummary struct {
	ID            int64         `json:"id"`
	Address       string        `json:"address"`
	Chain         types.ChainID `json:"chain"`
	NativeBalance float64       `json:"native_balance"`
	USDBalance    float64       `json:"usd_balance"`
}
