package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)

	require.Equal(t, DefaultClobHost, cfg.ClobHost)
	require.Equal(t, DefaultDataAPI, cfg.DataAPI)
	require.Equal(t, DefaultChainID, cfg.ChainID)
	require.Equal(t, DefaultMultiplier, cfg.Copy.SizeMultiplier)
	require.Equal(t, DefaultPollIntervalSec, cfg.Copy.PollIntervalSec)
	require.True(t, cfg.RevertTrade())
	require.Equal(t, "info", cfg.Log.Level)
}

func TestTargetAddressScalarOrList(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
copy:
  target_address: "0xabc"
`))
	require.NoError(t, err)
	require.Equal(t, StringList{"0xabc"}, cfg.Copy.TargetAddresses)

	cfg, err = Load(writeConfig(t, `
copy:
  target_address:
    - "0xabc"
    - "0xdef"
`))
	require.NoError(t, err)
	require.Equal(t, StringList{"0xabc", "0xdef"}, cfg.Copy.TargetAddresses)
}

func TestPollIntervalFloor(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
copy:
  target_address: "0xabc"
  poll_interval_sec: 1
`))
	require.NoError(t, err)
	require.Equal(t, MinPollInterval, cfg.PollInterval())

	cfg.Copy.PollIntervalSec = 45
	require.Equal(t, 45*time.Second, cfg.PollInterval())
}

func TestRevertTradeExplicitFalse(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
copy:
  target_address: "0xabc"
  revert_trade: false
`))
	require.NoError(t, err)
	require.False(t, cfg.RevertTrade())
}

func TestValidate(t *testing.T) {
	t.Setenv("WALLET_PRIVATE_KEY", "")
	t.Setenv("PRIVATE_KEY", "")
	t.Setenv("PROXY_WALLET_ADDRESS", "")
	t.Setenv("FUNDER_ADDRESS", "")
	t.Setenv("SIGNATURE_TYPE", "")

	cfg, err := Load(writeConfig(t, `{}`))
	require.NoError(t, err)
	require.Error(t, cfg.Validate(), "targets are always required")

	cfg.Copy.TargetAddresses = StringList{"0xabc"}
	require.Error(t, cfg.Validate(), "live mode needs a private key")

	cfg.Simulation = true
	require.NoError(t, cfg.Validate(), "simulation runs without credentials")
}

func TestResolveCredentials(t *testing.T) {
	// Well-known Hardhat test key; the derived address is fixed.
	t.Setenv("WALLET_PRIVATE_KEY", "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80")
	t.Setenv("PROXY_WALLET_ADDRESS", "")
	t.Setenv("FUNDER_ADDRESS", "")
	t.Setenv("SIGNATURE_TYPE", "0")

	cfg, err := Load(writeConfig(t, `
copy:
  target_address: "0xabc"
`))
	require.NoError(t, err)
	require.Equal(t, 0, cfg.SignatureType)
	require.Equal(t, "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266", cfg.WalletAddress)
	require.NoError(t, cfg.Validate())

	// Proxy wallet takes precedence for position lookups.
	t.Setenv("PROXY_WALLET_ADDRESS", "0x9999000000000000000000000000000000000009")
	t.Setenv("SIGNATURE_TYPE", "2")
	cfg, err = Load(writeConfig(t, `
copy:
  target_address: "0xabc"
`))
	require.NoError(t, err)
	require.Equal(t, "0x9999000000000000000000000000000000000009", cfg.WalletAddress)
}

func TestHasExitThresholds(t *testing.T) {
	cfg := &Config{}
	require.False(t, cfg.HasExitThresholds())
	cfg.Exit.TrailingStop = 5
	require.True(t, cfg.HasExitThresholds())
}
