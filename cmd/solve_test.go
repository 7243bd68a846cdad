package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const solveFixture = `{
	"id": "a-1",
	"orders": [
		{
			"uid": "order-1",
			"sellToken": "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2",
			"buyToken": "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48",
			"sellAmount": "1000000",
			"buyAmount": "900000",
			"kind": "sell",
			"class": "market"
		}
	],
	"tokens": {
		"0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2": {"decimals": 18, "trusted": true},
		"0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48": {"decimals": 6, "trusted": true}
	},
	"liquidity": [
		{
			"kind": "constantProduct",
			"id": "cp-1",
			"address": "0x00000000000000000000000000000000000000f1",
			"tokens": {
				"0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2": "1000000000000",
				"0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48": "1000000000000"
			},
			"fee": "0.003",
			"gasEstimate": 90000
		}
	],
	"effectiveGasPrice": "1000000000",
	"block": 19000000
}`

func writeAuctionFile(t *testing.T, contents string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "auction.json")
	err := os.WriteFile(path, []byte(contents), 0o600)
	require.NoError(t, err)
	return path
}

func TestRunSolve(t *testing.T) {
	path := writeAuctionFile(t, solveFixture)

	err := runSolve(solveCmd, []string{path})
	assert.NoError(t, err)
}

func TestRunSolve_MissingFile(t *testing.T) {
	err := runSolve(solveCmd, []string{filepath.Join(t.TempDir(), "missing.json")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read auction file")
}

func TestRunSolve_MalformedAuction(t *testing.T) {
	path := writeAuctionFile(t, "{not json")

	err := runSolve(solveCmd, []string{path})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode auction")
}

func TestRunSolve_InvalidAuction(t *testing.T) {
	// Well-formed JSON, but no auction id.
	path := writeAuctionFile(t, `{"orders": []}`)

	err := runSolve(solveCmd, []string{path})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "solve auction")
}
