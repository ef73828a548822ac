// Package config loads the follower configuration from a YAML file plus
// wallet credentials from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"gopkg.in/yaml.v3"
)

const (
	DefaultClobHost   = "https://clob.polymarket.com"
	DefaultDataAPI    = "https://data-api.polymarket.com"
	DefaultChainID    = 137
	DefaultMultiplier = 1.0

	DefaultPollIntervalSec = 30
	// MinPollInterval bounds the data-api query rate regardless of config.
	MinPollInterval = 5 * time.Second

	// ExitCheckInterval is the cadence of the exit risk manager.
	ExitCheckInterval = 15 * time.Second

	// PositionsPageSize and PositionsMaxOffset bound position pagination.
	PositionsPageSize  = 500
	PositionsMaxOffset = 10000
)

// CopyConfig controls which leader trades are mirrored and how they are sized.
type CopyConfig struct {
	TargetAddresses StringList `yaml:"target_address"`
	SizeMultiplier  float64    `yaml:"size_multiplier"`
	PollIntervalSec int        `yaml:"poll_interval_sec"`
	// RevertTrade mirrors leader SELLs as well; when false only BUYs are copied.
	RevertTrade *bool `yaml:"revert_trade"`
}

// FilterConfig rejects trades before they reach the executor. Zero disables
// each check.
type FilterConfig struct {
	// BuyAmountLimitInUsd caps the notional of a single copied BUY.
	BuyAmountLimitInUsd float64 `yaml:"buy_amount_limit_in_usd"`
	// EntryTradeSec skips leader trades older than this many seconds.
	EntryTradeSec int `yaml:"entry_trade_sec"`
	// TradeSecFromResolve skips markets resolving within this many seconds.
	TradeSecFromResolve int `yaml:"trade_sec_from_resolve"`
}

// ExitConfig holds exit thresholds in percent. Zero disables each threshold.
type ExitConfig struct {
	TakeProfit   float64 `yaml:"take_profit"`
	StopLoss     float64 `yaml:"stop_loss"`
	TrailingStop float64 `yaml:"trailing_stop"`
}

// LogConfig is passed through to pkg/logger.
type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// Config is the full, resolved process configuration. Immutable after Load.
type Config struct {
	ClobHost   string       `yaml:"clob_host"`
	DataAPI    string       `yaml:"data_api"`
	ChainID    int          `yaml:"chain_id"`
	Simulation bool         `yaml:"simulation"`
	Copy       CopyConfig   `yaml:"copy"`
	Filter     FilterConfig `yaml:"filter"`
	Exit       ExitConfig   `yaml:"exit"`
	Log        LogConfig    `yaml:"log"`

	// Credentials, resolved from the environment.
	WalletPrivateKey   string `yaml:"-"`
	ProxyWalletAddress string `yaml:"-"`
	SignatureType      int    `yaml:"-"`
	// WalletAddress is the proxy wallet when set, otherwise the address
	// derived from the private key. Used for own-position lookups.
	WalletAddress string `yaml:"-"`
}

// StringList accepts either a single YAML scalar or a sequence of strings.
type StringList []string

func (s *StringList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var one string
		if err := node.Decode(&one); err != nil {
			return err
		}
		if one != "" {
			*s = StringList{one}
		}
		return nil
	case yaml.SequenceNode:
		var many []string
		if err := node.Decode(&many); err != nil {
			return err
		}
		out := many[:0]
		for _, v := range many {
			if v != "" {
				out = append(out, v)
			}
		}
		*s = StringList(out)
		return nil
	default:
		return fmt.Errorf("target_address must be a string or a list of strings")
	}
}

// Load reads the YAML file at path (missing file yields defaults) and
// resolves credentials from the environment.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.resolveCredentials(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.ClobHost == "" {
		c.ClobHost = DefaultClobHost
	}
	if c.DataAPI == "" {
		c.DataAPI = DefaultDataAPI
	}
	if c.ChainID == 0 {
		c.ChainID = DefaultChainID
	}
	if c.Copy.SizeMultiplier <= 0 {
		c.Copy.SizeMultiplier = DefaultMultiplier
	}
	if c.Copy.PollIntervalSec <= 0 {
		c.Copy.PollIntervalSec = DefaultPollIntervalSec
	}
	if c.Copy.RevertTrade == nil {
		t := true
		c.Copy.RevertTrade = &t
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

func (c *Config) resolveCredentials() error {
	c.WalletPrivateKey = strings.TrimSpace(firstEnv("WALLET_PRIVATE_KEY", "PRIVATE_KEY"))
	c.ProxyWalletAddress = strings.TrimSpace(firstEnv("PROXY_WALLET_ADDRESS", "FUNDER_ADDRESS"))

	c.SignatureType = 1
	if v := os.Getenv("SIGNATURE_TYPE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SIGNATURE_TYPE must be an integer: %w", err)
		}
		c.SignatureType = n
	}

	c.WalletAddress = c.ProxyWalletAddress
	if c.WalletAddress == "" && c.WalletPrivateKey != "" {
		key, err := crypto.HexToECDSA(strings.TrimPrefix(c.WalletPrivateKey, "0x"))
		if err == nil {
			c.WalletAddress = crypto.PubkeyToAddress(key.PublicKey).Hex()
		}
	}
	return nil
}

// Validate enforces the startup requirements. Credential checks only apply
// in live mode.
func (c *Config) Validate() error {
	if len(c.Copy.TargetAddresses) == 0 {
		return fmt.Errorf("no targets configured: set copy.target_address")
	}
	if c.Simulation {
		return nil
	}
	if c.WalletPrivateKey == "" {
		return fmt.Errorf("no wallet configured: set WALLET_PRIVATE_KEY")
	}
	if c.ProxyWalletAddress == "" && c.SignatureType != 0 {
		return fmt.Errorf("set PROXY_WALLET_ADDRESS for proxy or Magic wallets (signature type %d)", c.SignatureType)
	}
	return nil
}

// RevertTrade reports whether leader SELLs are mirrored.
func (c *Config) RevertTrade() bool {
	return c.Copy.RevertTrade == nil || *c.Copy.RevertTrade
}

// PollInterval returns the polling cadence with the hard floor applied.
func (c *Config) PollInterval() time.Duration {
	d := time.Duration(c.Copy.PollIntervalSec) * time.Second
	if d < MinPollInterval {
		return MinPollInterval
	}
	return d
}

// HasExitThresholds reports whether any exit threshold is enabled.
func (c *Config) HasExitThresholds() bool {
	return c.Exit.TakeProfit > 0 || c.Exit.StopLoss > 0 || c.Exit.TrailingStop > 0
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}
