// Package follow implements the copy-trading core: trade detection from the
// activity stream or position polling, filtering, replication sizing and
// exit risk management.
package follow

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/followbot/gofollow/clob/types"
	"github.com/followbot/gofollow/pkg/sdk/api"
)

// LeaderTrade is one detected trade by a watched wallet, from either
// detection path.
type LeaderTrade struct {
	// ID is unique per logical trade event within a detection path. The
	// push path derives it from the transaction; the polling path
	// synthesizes it per cycle.
	ID     string
	Asset  string
	Market string
	Side   types.Side
	Size   decimal.Decimal
	Price  decimal.Decimal
	// MatchTime is the leader's execution time, epoch seconds or
	// milliseconds depending on the source.
	MatchTime int64

	Slug    string
	Outcome string
	// EndDate is the market resolution time in RFC 3339, empty when unknown.
	EndDate string
}

// Notional returns size times price.
func (t *LeaderTrade) Notional() decimal.Decimal {
	return t.Size.Mul(t.Price)
}

// FromActivity converts a stream notification into a LeaderTrade. Trades
// with a missing asset, unknown side or non-positive size or price are
// rejected as malformed.
func FromActivity(a *api.ActivityTrade) (*LeaderTrade, error) {
	side := types.Side(strings.ToUpper(a.Side))
	if side != types.SideBuy && side != types.SideSell {
		return nil, fmt.Errorf("unknown trade side %q", a.Side)
	}
	if a.Asset == "" {
		return nil, fmt.Errorf("trade has no asset id")
	}
	if !a.Size.IsPositive() || !a.Price.IsPositive() {
		return nil, fmt.Errorf("non-positive size or price for asset %s", a.Asset)
	}

	return &LeaderTrade{
		ID:        fmt.Sprintf("%s-%d", a.TransactionHash, a.Timestamp),
		Asset:     a.Asset,
		Market:    a.ConditionID,
		Side:      side,
		Size:      a.Size.Decimal,
		Price:     a.Price.Decimal,
		MatchTime: a.Timestamp,
		Slug:      a.Slug,
		Outcome:   a.Outcome,
	}, nil
}
