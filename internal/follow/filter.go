package follow

import (
	"time"

	"github.com/followbot/gofollow/clob/types"
	"github.com/followbot/gofollow/pkg/config"
	"github.com/followbot/gofollow/pkg/logger"
)

// Filter decides whether a detected leader trade should be copied. It is a
// pure predicate over the trade and configuration; rejected trades are
// logged with the failing rule.
type Filter struct {
	revertTrade bool
	cfg         config.FilterConfig
	now         func() time.Time
}

// NewFilter builds a filter from the loaded configuration.
func NewFilter(cfg *config.Config) *Filter {
	return &Filter{
		revertTrade: cfg.RevertTrade(),
		cfg:         cfg.Filter,
		now:         time.Now,
	}
}

// Accept applies the filter rules in order. All time-based rules are judged
// against the clock at evaluation, not at detection.
func (f *Filter) Accept(trade *LeaderTrade) bool {
	if trade.Side == types.SideSell && !f.revertTrade {
		logger.Debugf("filter: skip %s, leader SELLs not mirrored", trade.Asset)
		return false
	}

	if f.cfg.EntryTradeSec > 0 && trade.MatchTime > 0 {
		age := f.tradeAge(trade.MatchTime)
		if age > time.Duration(f.cfg.EntryTradeSec)*time.Second {
			logger.Debugf("filter: skip %s, trade is %s old (limit %ds)",
				trade.Asset, age.Truncate(time.Second), f.cfg.EntryTradeSec)
			return false
		}
	}

	if f.cfg.TradeSecFromResolve > 0 && trade.EndDate != "" {
		if end, err := time.Parse(time.RFC3339, trade.EndDate); err == nil {
			untilResolve := end.Sub(f.now())
			if untilResolve < time.Duration(f.cfg.TradeSecFromResolve)*time.Second {
				logger.Debugf("filter: skip %s, market resolves in %s (limit %ds)",
					trade.Asset, untilResolve.Truncate(time.Second), f.cfg.TradeSecFromResolve)
				return false
			}
		}
	}

	return true
}

// tradeAge converts a match time in epoch seconds or milliseconds into an
// age. Values at or above 1e12 are milliseconds: that magnitude as seconds
// would be tens of thousands of years away.
func (f *Filter) tradeAge(matchTime int64) time.Duration {
	var matched time.Time
	if matchTime >= 1_000_000_000_000 {
		matched = time.UnixMilli(matchTime)
	} else {
		matched = time.Unix(matchTime, 0)
	}
	return f.now().Sub(matched)
}
