package client

import (
	"math/big"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/followbot/gofollow/clob/signing"
	"github.com/followbot/gofollow/clob/types"
)

// RoundConfig gives the decimal places allowed for price, size and amount
// at a given tick size.
type RoundConfig struct {
	Price  int32
	Size   int32
	Amount int32
}

// RoundingConfig maps tick size to its rounding rules.
var RoundingConfig = map[types.TickSize]RoundConfig{
	types.TickSize01:    {Price: 1, Size: 2, Amount: 3},
	types.TickSize001:   {Price: 2, Size: 2, Amount: 4},
	types.TickSize0001:  {Price: 3, Size: 2, Amount: 5},
	types.TickSize00001: {Price: 4, Size: 2, Amount: 6},
}

// zeroAddress is the public taker for marketable orders.
const zeroAddress = "0x0000000000000000000000000000000000000000"

// buildMarketOrder rounds the amounts per the market's tick size, computes
// the maker/taker legs and signs the order against the right exchange
// contract.
func (c *Client) buildMarketOrder(order *types.UserMarketOrder, options *types.CreateOrderOptions) (*types.SignedOrder, error) {
	if err := c.CanL1Auth(); err != nil {
		return nil, err
	}

	contractConfig, err := GetContractConfig(c.chainID)
	if err != nil {
		return nil, err
	}
	roundConfig, ok := RoundingConfig[options.TickSize]
	if !ok {
		return nil, errors.Errorf("unsupported tick size: %s", options.TickSize)
	}

	signerAddress := signing.GetAddressFromPrivateKey(c.authConfig.PrivateKey)
	maker := signerAddress.Hex()
	if c.funderAddress != "" {
		maker = c.funderAddress
	}

	rawMakerAmt, rawTakerAmt := marketOrderRawAmounts(order.Side, order.Amount, order.Price, roundConfig)

	makerAmount := parseUnits(rawMakerAmt, CollateralTokenDecimals)
	takerAmount := parseUnits(rawTakerAmt, CollateralTokenDecimals)

	taker := zeroAddress
	if order.Taker != "" {
		taker = order.Taker
	}

	tokenID, ok := new(big.Int).SetString(order.TokenID, 10)
	if !ok {
		return nil, errors.Errorf("invalid token id: %s", order.TokenID)
	}

	exchangeAddress := contractConfig.Exchange
	if options.NegRisk {
		exchangeAddress = contractConfig.NegRiskExchange
	}

	salt := time.Now().UnixNano()
	feeRateBps := big.NewInt(int64(order.FeeRateBps))
	nonce := big.NewInt(order.Nonce)
	expiration := big.NewInt(0)

	orderData := &signing.OrderData{
		Salt:          salt,
		Maker:         maker,
		Signer:        signerAddress.Hex(),
		Taker:         taker,
		TokenID:       tokenID,
		MakerAmount:   makerAmount,
		TakerAmount:   takerAmount,
		Expiration:    expiration,
		Nonce:         nonce,
		FeeRateBps:    feeRateBps,
		Side:          order.Side,
		SignatureType: c.signatureType,
	}

	signature, err := signing.BuildOrderSignature(c.authConfig.PrivateKey, c.chainID, exchangeAddress, orderData)
	if err != nil {
		return nil, errors.Wrap(err, "sign order")
	}

	return &types.SignedOrder{
		Salt:          salt,
		Maker:         maker,
		Signer:        signerAddress.Hex(),
		Taker:         taker,
		TokenID:       order.TokenID,
		MakerAmount:   makerAmount.String(),
		TakerAmount:   takerAmount.String(),
		Expiration:    expiration.String(),
		Nonce:         nonce.String(),
		FeeRateBps:    feeRateBps.String(),
		Side:          order.Side,
		SignatureType: int(c.signatureType),
		Signature:     signature,
	}, nil
}

// marketOrderRawAmounts computes the maker and taker legs of a marketable
// order. For a BUY the amount is USDC spent and the taker leg is the shares
// received; for a SELL the amount is shares sold and the taker leg is the
// USDC received.
func marketOrderRawAmounts(side types.Side, amount, price decimal.Decimal, round RoundConfig) (decimal.Decimal, decimal.Decimal) {
	rawPrice := price.Round(round.Price)

	if side == types.SideBuy {
		rawMakerAmt := amount.RoundFloor(round.Size)
		rawTakerAmt := rawMakerAmt.Div(rawPrice)
		rawTakerAmt = capDecimals(rawTakerAmt, round.Amount)
		return rawMakerAmt, rawTakerAmt
	}

	rawMakerAmt := amount.RoundFloor(round.Size)
	rawTakerAmt := rawMakerAmt.Mul(rawPrice)
	rawTakerAmt = capDecimals(rawTakerAmt, round.Amount)
	return rawMakerAmt, rawTakerAmt
}

// capDecimals trims d to at most places decimals: rounded up with four
// digits of slack first, then floored if it still does not fit.
func capDecimals(d decimal.Decimal, places int32) decimal.Decimal {
	if fitsDecimals(d, places) {
		return d
	}
	up := d.RoundCeil(places + 4)
	if fitsDecimals(up, places) {
		return up
	}
	return up.RoundFloor(places)
}

func fitsDecimals(d decimal.Decimal, places int32) bool {
	return d.Truncate(places).Equal(d)
}

// parseUnits scales a decimal amount into integer token units.
func parseUnits(value decimal.Decimal, decimals int32) *big.Int {
	return value.Shift(decimals).Truncate(0).BigInt()
}
