// Package chain holds static chain metadata and EVM helpers used by the analytics engine.
package chain

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/params"
	"github.com/wallet-analytics/internal/models"
	"github.com/wallet-analytics/internal/types"
	"gopkg.in/yaml.v3"
)

// DefaultCurrencySymbol is used for chains missing from the registry
const DefaultCurrencySymbol = "ETH"

// Registry resolves chain metadata loaded from a YAML file. It doubles as the
// reference native-currency price oracle.
type Registry struct {
	defaultSymbol string
	chains        map[types.ChainID]models.ChainInfo
}

type registryFile struct {
	DefaultSymbol string             `yaml:"default_symbol"`
	Chains        []models.ChainInfo `yaml:"chains"`
}

// LoadRegistry reads chain metadata from path
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path) // #nosec G304 - path comes from trusted configuration
	if err != nil {
		return nil, fmt.Errorf("failed to read chain registry %s: %w", path, err)
	}
	return ParseRegistry(data)
}

// ParseRegistry decodes YAML chain metadata
func ParseRegistry(data []byte) (*Registry, error) {
	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse chain registry: %w", err)
	}

	chains := make([]models.ChainInfo, 0, len(file.Chains))
	for _, c := range file.Chains {
		if strings.TrimSpace(string(c.Name)) == "" {
			return nil, fmt.Errorf("chain registry entry without a name")
		}
		if c.NativeUSDPrice < 0 {
			return nil, fmt.Errorf("chain %s: negative native_usd_price", c.Name)
		}
		chains = append(chains, c)
	}

	return NewRegistry(file.DefaultSymbol, chains...), nil
}

// NewRegistry builds a registry from in-memory metadata
func NewRegistry(defaultSymbol string, chains ...models.ChainInfo) *Registry {
	if defaultSymbol == "" {
		defaultSymbol = DefaultCurrencySymbol
	}
	r := &Registry{defaultSymbol: defaultSymbol, chains: make(map[types.ChainID]models.ChainInfo, len(chains))}
	for _, c := range chains {
		c.Name = types.NormalizeChainID(string(c.Name))
		r.chains[c.Name] = c
	}
	return r
}

// Lookup returns metadata for chain
func (r *Registry) Lookup(chain types.ChainID) (models.ChainInfo, bool) {
	info, ok := r.chains[types.NormalizeChainID(string(chain))]
	return info, ok
}

// CurrencySymbol returns the native currency symbol of chain, or the registry
// default when the chain is unknown or has no symbol configured.
func (r *Registry) CurrencySymbol(chain types.ChainID) string {
	if info, ok := r.Lookup(chain); ok && info.CurrencySymbol != "" {
		return info.CurrencySymbol
	}
	return r.defaultSymbol
}

// NativeUSDPrice returns the configured reference USD price of one native unit
func (r *Registry) NativeUSDPrice(_ context.Context, chain types.ChainID) (float64, error) {
	info, ok := r.Lookup(chain)
	if !ok || info.NativeUSDPrice <= 0 {
		return 0, fmt.Errorf("no native price configured for chain %q", chain)
	}
	return info.NativeUSDPrice, nil
}

// WeiToGwei converts a gas price in wei to gwei
func WeiToGwei(wei uint64) float64 {
	return float64(wei) / params.GWei
}

// NormalizeAddress returns the EIP-55 checksummed form of a hex address.
// Non-hex identifiers are lowercased and returned unchanged otherwise.
func NormalizeAddress(address string) string {
	trimmed := strings.TrimSpace(address)
	if common.IsHexAddress(trimmed) {
		return common.HexToAddress(trimmed).Hex()
	}
	return strings.ToLower(trimmed)
}
