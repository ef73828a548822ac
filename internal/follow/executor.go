package follow

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/followbot/gofollow/clob/types"
	"github.com/followbot/gofollow/pkg/logger"
)

// OrderClient is the slice of the CLOB client the executor needs.
type OrderClient interface {
	GetTickSize(ctx context.Context, tokenID string) (types.TickSize, error)
	GetNegRisk(ctx context.Context, tokenID string) (bool, error)
	PlaceMarketOrder(ctx context.Context, order *types.UserMarketOrder, options *types.CreateOrderOptions) (*types.OrderResponse, error)
}

// Fill is the realized result of a replicated BUY.
type Fill struct {
	Size  decimal.Decimal
	Price decimal.Decimal
}

// Executor sizes and submits replica orders for accepted leader trades.
type Executor struct {
	client     OrderClient
	multiplier decimal.Decimal
	// buyUsdCap caps the notional of a single replicated BUY; zero disables.
	buyUsdCap decimal.Decimal
}

// NewExecutor builds an executor. multiplier scales the leader's size;
// buyUsdCap of zero means uncapped.
func NewExecutor(client OrderClient, multiplier, buyUsdCap decimal.Decimal) *Executor {
	return &Executor{client: client, multiplier: multiplier, buyUsdCap: buyUsdCap}
}

// Execute submits a fill-or-kill market order mirroring the trade. A BUY is
// sized in USDC (size x price x multiplier, clamped to the cap); a SELL is
// sized in shares, mirroring the leader's share count. A non-positive
// computed amount is a no-op. On a BUY fill the realized size and price are
// returned so the caller can record the entry; SELLs return nil.
func (e *Executor) Execute(ctx context.Context, trade *LeaderTrade) (*Fill, error) {
	size := trade.Size.Mul(e.multiplier)
	price := trade.Price

	var amount decimal.Decimal
	if trade.Side == types.SideBuy {
		amount = size.Mul(price)
		if e.buyUsdCap.IsPositive() && amount.GreaterThan(e.buyUsdCap) {
			amount = e.buyUsdCap
			size = amount.Div(price)
			logger.Infof("executor: %s buy capped to $%s (size %s)", trade.Asset, amount, size)
		}
	} else {
		amount = size
	}

	if !amount.IsPositive() {
		logger.Debugf("executor: %s %s sized to zero, skipping", trade.Side, trade.Asset)
		return nil, nil
	}

	tickSize, err := e.client.GetTickSize(ctx, trade.Asset)
	if err != nil {
		return nil, errors.Wrapf(err, "tick size for %s", trade.Asset)
	}
	negRisk, err := e.client.GetNegRisk(ctx, trade.Asset)
	if err != nil {
		return nil, errors.Wrapf(err, "neg risk for %s", trade.Asset)
	}

	resp, err := e.client.PlaceMarketOrder(ctx, &types.UserMarketOrder{
		TokenID: trade.Asset,
		Amount:  amount,
		Side:    trade.Side,
		Price:   price,
	}, &types.CreateOrderOptions{TickSize: tickSize, NegRisk: negRisk})
	if err != nil {
		return nil, errors.Wrapf(err, "place %s order for %s", trade.Side, trade.Asset)
	}
	if !resp.Success {
		return nil, errors.Errorf("order rejected for %s: %s", trade.Asset, resp.ErrorMsg)
	}

	logger.Infof("executor: %s %s amount=%s order=%s status=%s",
		trade.Side, trade.Asset, amount, resp.OrderID, resp.Status)

	if trade.Side != types.SideBuy {
		return nil, nil
	}
	return &Fill{Size: size, Price: price}, nil
}
