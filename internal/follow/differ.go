package follow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/followbot/gofollow/clob/types"
	"github.com/followbot/gofollow/pkg/config"
	"github.com/followbot/gofollow/pkg/logger"
	"github.com/followbot/gofollow/pkg/sdk/api"
)

// PositionLister fetches the full open-position listing for a wallet.
type PositionLister interface {
	GetAllOpenPositions(ctx context.Context, user string, pageSize, maxOffset int) ([]api.OpenPosition, error)
}

// position is the per-asset slice of a snapshot.
type position struct {
	Size     decimal.Decimal
	CurPrice decimal.Decimal
	Market   string
	Slug     string
	Outcome  string
	EndDate  string
}

// Differ infers leader trades from successive position snapshots, one
// baseline per watched wallet. It sees only size deltas: trades that net
// out within one poll cycle are invisible.
type Differ struct {
	lister    PositionLister
	baselines map[string]map[string]position
	now       func() time.Time
}

// NewDiffer creates a differ with empty baselines.
func NewDiffer(lister PositionLister) *Differ {
	return &Differ{
		lister:    lister,
		baselines: make(map[string]map[string]position),
		now:       time.Now,
	}
}

// Poll fetches the wallet's current positions and returns the trades
// implied by the change since the previous poll. The first poll for a
// wallet establishes the baseline and returns nothing. On fetch failure the
// prior baseline is left untouched.
func (d *Differ) Poll(ctx context.Context, wallet string) ([]*LeaderTrade, error) {
	key := strings.ToLower(wallet)

	listing, err := d.lister.GetAllOpenPositions(ctx, wallet, config.PositionsPageSize, config.PositionsMaxOffset)
	if err != nil {
		return nil, errors.Wrapf(err, "poll positions for %s", wallet)
	}

	snapshot := d.buildSnapshot(listing)

	prev, seen := d.baselines[key]
	d.baselines[key] = snapshot
	if !seen {
		logger.Infof("differ: baseline for %s holds %d positions", wallet, len(snapshot))
		return nil, nil
	}

	return d.diff(wallet, prev, snapshot), nil
}

// buildSnapshot keeps only actionable positions: positive size, positive
// price and a market that has not already resolved.
func (d *Differ) buildSnapshot(listing []api.OpenPosition) map[string]position {
	snapshot := make(map[string]position, len(listing))
	for _, p := range listing {
		if p.Asset == "" || !p.Size.IsPositive() || !p.CurPrice.IsPositive() {
			continue
		}
		if p.EndDate != "" {
			if end, err := time.Parse(time.RFC3339, p.EndDate); err == nil && end.Before(d.now()) {
				continue
			}
		}
		snapshot[p.Asset] = position{
			Size:     p.Size.Decimal,
			CurPrice: p.CurPrice.Decimal,
			Market:   p.ConditionID,
			Slug:     p.Slug,
			Outcome:  p.Outcome,
			EndDate:  p.EndDate,
		}
	}
	return snapshot
}

func (d *Differ) diff(wallet string, prev, cur map[string]position) []*LeaderTrade {
	var trades []*LeaderTrade

	for asset, pos := range cur {
		old, held := prev[asset]
		switch {
		case !held:
			trades = append(trades, d.newTrade(wallet, asset, types.SideBuy, pos.Size, pos))
		case pos.Size.GreaterThan(old.Size):
			trades = append(trades, d.newTrade(wallet, asset, types.SideBuy, pos.Size.Sub(old.Size), pos))
		case pos.Size.LessThan(old.Size):
			trades = append(trades, d.newTrade(wallet, asset, types.SideSell, old.Size.Sub(pos.Size), pos))
		}
	}

	// Positions that vanished are full exits.
	for asset, old := range prev {
		if _, held := cur[asset]; !held {
			trades = append(trades, d.newTrade(wallet, asset, types.SideSell, old.Size, old))
		}
	}

	for _, t := range trades {
		logger.Infof("differ: %s %s %s size=%s price=%s", wallet, t.Side, t.Asset, t.Size, t.Price)
	}
	return trades
}

func (d *Differ) newTrade(wallet, asset string, side types.Side, size decimal.Decimal, pos position) *LeaderTrade {
	return &LeaderTrade{
		ID:        fmt.Sprintf("%s-%s-%d", wallet, asset, d.now().UnixMilli()),
		Asset:     asset,
		Market:    pos.Market,
		Side:      side,
		Size:      size,
		Price:     pos.CurPrice,
		MatchTime: d.now().Unix(),
		Slug:      pos.Slug,
		Outcome:   pos.Outcome,
		EndDate:   pos.EndDate,
	}
}
