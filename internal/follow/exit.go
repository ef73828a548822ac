package follow

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/followbot/gofollow/clob/types"
	"github.com/followbot/gofollow/pkg/config"
	"github.com/followbot/gofollow/pkg/logger"
)

// Entry is the tracked cost basis for one asset opened by replication.
type Entry struct {
	// EntryPrice is the volume-weighted average price across all fills.
	EntryPrice decimal.Decimal
	Size       decimal.Decimal
	// MaxPrice is the highest mark seen since entry, for the trailing stop.
	MaxPrice decimal.Decimal
}

// ExitManager owns the entry map and liquidates positions when a
// take-profit, stop-loss or trailing-stop threshold fires. RecordEntry is
// called from the detection path while the periodic check runs on its own
// timer, so the map is mutex-guarded.
type ExitManager struct {
	client OrderClient
	lister PositionLister
	wallet string
	cfg    config.ExitConfig

	mu      sync.Mutex
	entries map[string]*Entry
}

// NewExitManager tracks entries for the given wallet. The caller decides
// whether to run the periodic check at all; a manager without thresholds or
// a wallet is still usable as a passive entry tracker.
func NewExitManager(client OrderClient, lister PositionLister, wallet string, cfg config.ExitConfig) *ExitManager {
	return &ExitManager{
		client:  client,
		lister:  lister,
		wallet:  wallet,
		cfg:     cfg,
		entries: make(map[string]*Entry),
	}
}

// RecordEntry folds a BUY fill into the tracked cost basis using the
// weighted-average formula. First fill for an asset creates the entry.
func (m *ExitManager) RecordEntry(asset string, size, price decimal.Decimal) {
	if !size.IsPositive() || !price.IsPositive() {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[asset]
	if !ok {
		m.entries[asset] = &Entry{EntryPrice: price, Size: size, MaxPrice: price}
		logger.Infof("exit: tracking %s size=%s entry=%s", asset, size, price)
		return
	}

	total := e.Size.Add(size)
	e.EntryPrice = e.EntryPrice.Mul(e.Size).Add(price.Mul(size)).Div(total)
	e.Size = total
	if price.GreaterThan(e.MaxPrice) {
		e.MaxPrice = price
	}
	logger.Infof("exit: %s size=%s entry=%s after fill", asset, e.Size, e.EntryPrice)
}

// TrackedSize returns the open tracked size for an asset, zero when
// untracked.
func (m *ExitManager) TrackedSize(asset string) decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[asset]; ok {
		return e.Size
	}
	return decimal.Zero
}

// Run drives the periodic check until the context ends. The first check
// runs immediately.
func (m *ExitManager) Run(ctx context.Context) {
	ticker := time.NewTicker(config.ExitCheckInterval)
	defer ticker.Stop()

	for {
		if err := m.CheckOnce(ctx); err != nil {
			logger.Errorf("exit: check failed: %v", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// liquidation is one decided exit, computed under the lock and submitted
// outside it.
type liquidation struct {
	asset  string
	size   decimal.Decimal
	price  decimal.Decimal
	reason string
}

// livePosition is the exchange-reported state of one asset.
type livePosition struct {
	size  decimal.Decimal
	price decimal.Decimal
}

// CheckOnce fetches the wallet's live positions, updates trailing state and
// liquidates every tracked entry whose threshold fired. Tracked size only
// changes on confirmed order success.
func (m *ExitManager) CheckOnce(ctx context.Context) error {
	m.mu.Lock()
	tracked := len(m.entries)
	m.mu.Unlock()
	if tracked == 0 {
		return nil
	}

	listing, err := m.lister.GetAllOpenPositions(ctx, m.wallet, config.PositionsPageSize, config.PositionsMaxOffset)
	if err != nil {
		return errors.Wrap(err, "fetch own positions")
	}

	live := make(map[string]livePosition, len(listing))
	for _, p := range listing {
		if p.Asset != "" && p.CurPrice.IsPositive() {
			live[p.Asset] = livePosition{size: p.Size.Decimal, price: p.CurPrice.Decimal}
		}
	}

	for _, liq := range m.decide(live) {
		if err := m.liquidate(ctx, liq); err != nil {
			logger.Errorf("exit: liquidation of %s failed: %v", liq.asset, err)
		}
	}
	return nil
}

func (m *ExitManager) decide(live map[string]livePosition) []liquidation {
	m.mu.Lock()
	defer m.mu.Unlock()

	hundred := decimal.NewFromInt(100)
	var out []liquidation

	for asset, e := range m.entries {
		mark, ok := live[asset]
		if !ok {
			// No live mark for this asset this cycle; judged next time.
			continue
		}
		if mark.price.GreaterThan(e.MaxPrice) {
			e.MaxPrice = mark.price
		}

		pnlPct := mark.price.Sub(e.EntryPrice).Div(e.EntryPrice).Mul(hundred)
		trailPct := decimal.Zero
		if e.MaxPrice.IsPositive() {
			trailPct = e.MaxPrice.Sub(mark.price).Div(e.MaxPrice).Mul(hundred)
		}

		reason := ""
		switch {
		case m.cfg.TakeProfit > 0 && pnlPct.GreaterThanOrEqual(decimal.NewFromFloat(m.cfg.TakeProfit)):
			reason = "take-profit"
		case m.cfg.StopLoss > 0 && pnlPct.LessThanOrEqual(decimal.NewFromFloat(-m.cfg.StopLoss)):
			reason = "stop-loss"
		case m.cfg.TrailingStop > 0 && trailPct.GreaterThanOrEqual(decimal.NewFromFloat(m.cfg.TrailingStop)):
			reason = "trailing-stop"
		default:
			continue
		}

		// Never sell more than the live position; manual trades or
		// mirrored leader SELLs may have shrunk it.
		size := decimal.Min(e.Size, mark.size)
		if !size.IsPositive() {
			continue
		}

		logger.Infof("exit: %s fires for %s pnl=%s%% trail=%s%% size=%s",
			reason, asset, pnlPct.Round(2), trailPct.Round(2), size)
		out = append(out, liquidation{asset: asset, size: size, price: mark.price, reason: reason})
	}
	return out
}

func (m *ExitManager) liquidate(ctx context.Context, liq liquidation) error {
	tickSize, err := m.client.GetTickSize(ctx, liq.asset)
	if err != nil {
		return errors.Wrap(err, "tick size")
	}
	negRisk, err := m.client.GetNegRisk(ctx, liq.asset)
	if err != nil {
		return errors.Wrap(err, "neg risk")
	}

	resp, err := m.client.PlaceMarketOrder(ctx, &types.UserMarketOrder{
		TokenID: liq.asset,
		Amount:  liq.size,
		Side:    types.SideSell,
		Price:   liq.price,
	}, &types.CreateOrderOptions{TickSize: tickSize, NegRisk: negRisk})
	if err != nil {
		return err
	}
	if !resp.Success {
		return errors.Errorf("order rejected: %s", resp.ErrorMsg)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[liq.asset]; ok {
		e.Size = e.Size.Sub(liq.size)
		if !e.Size.IsPositive() {
			delete(m.entries, liq.asset)
			logger.Infof("exit: %s closed (%s)", liq.asset, liq.reason)
		} else {
			logger.Infof("exit: %s reduced to %s (%s)", liq.asset, e.Size, liq.reason)
		}
	}
	return nil
}
