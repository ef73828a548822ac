package client

import (
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/followbot/gofollow/clob/types"
)

// CalculateMarketPrice walks the book and returns the worst price a
// marketable order of the given amount would reach. For a BUY the amount is
// USDC and the asks are walked; for a SELL the amount is shares and the bids
// are walked.
func CalculateMarketPrice(book *types.OrderBookSummary, side types.Side, amount decimal.Decimal) (decimal.Decimal, error) {
	var levels []types.OrderSummary
	if side == types.SideBuy {
		levels = book.Asks
	} else {
		levels = book.Bids
	}
	if len(levels) == 0 {
		return decimal.Zero, errors.Errorf("no %s liquidity for token %s", side, book.AssetID)
	}

	// Levels come sorted away from the touch; walk from the best price.
	remaining := amount
	for i := len(levels) - 1; i >= 0; i-- {
		price, err := decimal.NewFromString(levels[i].Price)
		if err != nil {
			return decimal.Zero, errors.Wrapf(err, "bad price at level %d", i)
		}
		size, err := decimal.NewFromString(levels[i].Size)
		if err != nil {
			return decimal.Zero, errors.Wrapf(err, "bad size at level %d", i)
		}

		levelAmount := size
		if side == types.SideBuy {
			levelAmount = size.Mul(price)
		}
		remaining = remaining.Sub(levelAmount)
		if remaining.LessThanOrEqual(decimal.Zero) {
			return price, nil
		}
	}

	return decimal.Zero, errors.Errorf("insufficient %s depth for token %s", side, book.AssetID)
}

// CalculateOptimalFill estimates the size and average price a marketable
// order would fill at. Amount follows the market-order convention: USDC for
// BUY, shares for SELL.
func CalculateOptimalFill(book *types.OrderBookSummary, side types.Side, amount decimal.Decimal) (totalSize, avgPrice decimal.Decimal) {
	var levels []types.OrderSummary
	if side == types.SideBuy {
		levels = book.Asks
	} else {
		levels = book.Bids
	}
	if len(levels) == 0 {
		return decimal.Zero, decimal.Zero
	}

	remaining := amount
	totalCost := decimal.Zero
	for i := len(levels) - 1; i >= 0 && remaining.IsPositive(); i-- {
		price, err1 := decimal.NewFromString(levels[i].Price)
		size, err2 := decimal.NewFromString(levels[i].Size)
		if err1 != nil || err2 != nil || !price.IsPositive() {
			continue
		}

		if side == types.SideBuy {
			levelValue := size.Mul(price)
			if levelValue.LessThanOrEqual(remaining) {
				totalSize = totalSize.Add(size)
				totalCost = totalCost.Add(levelValue)
				remaining = remaining.Sub(levelValue)
			} else {
				fillSize := remaining.Div(price)
				totalSize = totalSize.Add(fillSize)
				totalCost = totalCost.Add(remaining)
				remaining = decimal.Zero
			}
		} else {
			if size.LessThanOrEqual(remaining) {
				totalSize = totalSize.Add(size)
				totalCost = totalCost.Add(size.Mul(price))
				remaining = remaining.Sub(size)
			} else {
				totalSize = totalSize.Add(remaining)
				totalCost = totalCost.Add(remaining.Mul(price))
				remaining = decimal.Zero
			}
		}
	}

	if totalSize.IsPositive() {
		avgPrice = totalCost.Div(totalSize)
	}
	return totalSize, avgPrice
}
