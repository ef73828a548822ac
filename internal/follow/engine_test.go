package follow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/followbot/gofollow/clob/types"
	"github.com/followbot/gofollow/pkg/config"
	"github.com/followbot/gofollow/pkg/sdk/api"
	"github.com/shopspring/decimal"
)

func testConfig(simulation bool, targets ...string) *config.Config {
	cfg := &config.Config{Simulation: simulation}
	cfg.Copy.TargetAddresses = targets
	cfg.Copy.SizeMultiplier = 1
	return cfg
}

func TestProcessFeedsExitManagerOnBuyFill(t *testing.T) {
	client := newMockOrderClient()
	lister := newMockLister()
	exit := NewExitManager(client, lister, ownWallet, config.ExitConfig{TakeProfit: 20})
	exec := NewExecutor(client, dec("1"), decimal.Zero)

	e := NewEngine(testConfig(false, wallet), lister, exec, exit)
	e.process(context.Background(), buyTrade("100", "0.5"))

	require.Equal(t, 1, client.placedCount())
	require.True(t, exit.TrackedSize("asset-1").Equal(dec("100")))
}

func TestProcessSimulationNeverExecutes(t *testing.T) {
	client := newMockOrderClient()
	lister := newMockLister()
	exit := NewExitManager(client, lister, ownWallet, config.ExitConfig{TakeProfit: 20})
	exec := NewExecutor(client, dec("1"), decimal.Zero)

	e := NewEngine(testConfig(true, wallet), lister, exec, exit)
	e.process(context.Background(), buyTrade("100", "0.5"))

	require.Zero(t, client.placedCount())
	require.True(t, exit.TrackedSize("asset-1").IsZero(), "simulation must not feed the exit manager")
}

func TestProcessRejectedTradeDoesNothing(t *testing.T) {
	client := newMockOrderClient()
	lister := newMockLister()
	exec := NewExecutor(client, dec("1"), decimal.Zero)

	cfg := testConfig(false, wallet)
	f := false
	cfg.Copy.RevertTrade = &f

	e := NewEngine(cfg, lister, exec, nil)
	sell := buyTrade("100", "0.5")
	sell.Side = types.SideSell
	e.process(context.Background(), sell)

	require.Zero(t, client.placedCount())
}

func TestStreamPathDeduplicates(t *testing.T) {
	client := newMockOrderClient()
	lister := newMockLister()
	exec := NewExecutor(client, dec("1"), decimal.Zero)
	e := NewEngine(testConfig(false, wallet), lister, exec, nil)

	activity := api.ActivityTrade{
		Asset:           "asset-1",
		ProxyWallet:     wallet,
		Side:            "BUY",
		Size:            num("10"),
		Price:           num("0.5"),
		Timestamp:       1_700_000_000,
		TransactionHash: "0xfeed",
	}

	for i := 0; i < 2; i++ {
		trade, err := FromActivity(&activity)
		require.NoError(t, err)
		if e.dedup.Seen(trade.ID) {
			continue
		}
		e.process(context.Background(), trade)
	}

	require.Equal(t, 1, client.placedCount(), "the same trade delivered twice replicates once")
}
