package client

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"

	"github.com/followbot/gofollow/clob/signing"
	"github.com/followbot/gofollow/clob/types"
	"github.com/followbot/gofollow/pkg/logger"
	sdkhttp "github.com/followbot/gofollow/pkg/sdk/http"
)

// PostOrder submits a signed order with the given execution type.
func (c *Client) PostOrder(ctx context.Context, order *types.SignedOrder, orderType types.OrderType) (*types.OrderResponse, error) {
	if err := c.CanL2Auth(); err != nil {
		return nil, err
	}

	payload := types.NewOrder{
		Order:     *order,
		Owner:     c.authConfig.Creds.Key,
		OrderType: orderType,
	}

	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "marshal order payload")
	}
	bodyStr := string(bodyBytes)

	headers, err := signing.CreateL2Headers(c.authConfig.PrivateKey, c.authConfig.Creds, &types.L2HeaderArgs{
		Method:      http.MethodPost,
		RequestPath: EndpointPostOrder,
		Body:        &bodyStr,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create L2 headers")
	}

	var orderResp types.OrderResponse
	resp, err := c.http.DoRequest(ctx, http.MethodPost, EndpointPostOrder,
		&sdkhttp.RequestOptions{Headers: signing.L2HeaderMap(headers), Data: json.RawMessage(bodyBytes)}, &orderResp)
	if err := sdkhttp.CheckResponse(resp, err); err != nil {
		return nil, errors.Wrap(err, "post order")
	}

	return &orderResp, nil
}

// PlaceMarketOrder builds, signs and submits a fill-or-kill marketable
// order. When the order carries no price the book is consulted for the
// worst price the amount would sweep to.
func (c *Client) PlaceMarketOrder(ctx context.Context, order *types.UserMarketOrder, options *types.CreateOrderOptions) (*types.OrderResponse, error) {
	if order.Price.IsZero() {
		book, err := c.GetOrderBook(ctx, order.TokenID)
		if err != nil {
			return nil, err
		}
		price, err := CalculateMarketPrice(book, order.Side, order.Amount)
		if err != nil {
			return nil, err
		}
		order.Price = price

		fillSize, avgPrice := CalculateOptimalFill(book, order.Side, order.Amount)
		logger.Debugf("market %s %s: projected fill %s @ avg %s, worst price %s",
			order.Side, order.TokenID, fillSize, avgPrice, price)
	}

	signed, err := c.buildMarketOrder(order, options)
	if err != nil {
		return nil, err
	}

	return c.PostOrder(ctx, signed, types.OrderTypeFOK)
}
