package chain

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wallet-analytics/internal/types"
)

const testRegistry = `
default_symbol: ETH
chains:
  - name: Ethereum
    chain_id: 1
    currency_symbol: ETH
    native_usd_price: 1500
  - name: polygon
    chain_id: 137
    currency_symbol: MATIC
`

func TestParseRegistry(t *testing.T) {
	r, err := ParseRegistry([]byte(testRegistry))
	require.NoError(t, err)

	t.Run("names are normalized", func(t *testing.T) {
		info, ok := r.Lookup(types.ChainEthereum)
		require.True(t, ok)
		assert.Equal(t, int64(1), info.ChainID)
	})

	t.Run("symbol falls back to default", func(t *testing.T) {
		assert.Equal(t, "MATIC", r.CurrencySymbol(types.ChainPolygon))
		assert.Equal(t, "ETH", r.CurrencySymbol("fantom"))
	})

	t.Run("native price", func(t *testing.T) {
		price, err := r.NativeUSDPrice(context.Background(), "ETH")
		require.NoError(t, err)
		assert.Equal(t, 1500.0, price)

		_, err = r.NativeUSDPrice(context.Background(), types.ChainPolygon)
		assert.Error(t, err)
	})
}

func TestParseRegistry_Invalid(t *testing.T) {
	_, err := ParseRegistry([]byte("chains:\n  - chain_id: 1\n"))
	assert.Error(t, err)

	_, err = ParseRegistry([]byte("chains: [oops"))
	assert.Error(t, err)
}

func TestLoadRegistry_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chains.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testRegistry), 0o600))

	r, err := LoadRegistry(path)
	require.NoError(t, err)
	assert.Equal(t, "ETH", r.CurrencySymbol(types.ChainEthereum))

	_, err = LoadRegistry(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestWeiToGwei(t *testing.T) {
	assert.Equal(t, 30.0, WeiToGwei(30_000_000_000))
	assert.Equal(t, 0.5, WeiToGwei(500_000_000))
}

func TestNormalizeAddress(t *testing.T) {
	assert.Equal(t, "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
		NormalizeAddress("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed"))
	assert.Equal(t, "native", NormalizeAddress(" NATIVE "))
}
