package client

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/followbot/gofollow/clob/types"
	sdkhttp "github.com/followbot/gofollow/pkg/sdk/http"
)

// GetServerTime returns the exchange clock in unix seconds. Cheap enough to
// double as a startup connectivity check that warms the connection pool
// before the first order.
func (c *Client) GetServerTime(ctx context.Context) (int64, error) {
	resp, err := c.http.DoRequest(ctx, http.MethodGet, EndpointTime, nil, nil)
	if err := sdkhttp.CheckResponse(resp, err); err != nil {
		return 0, errors.Wrap(err, "get server time")
	}

	body := strings.Trim(strings.TrimSpace(string(resp.Body())), `"`)
	ts, err := strconv.ParseInt(body, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "unexpected server time %q", body)
	}
	return ts, nil
}

// GetTickSize returns the market's minimum price increment. Tick sizes are
// immutable per market, so lookups are cached for the client's lifetime.
func (c *Client) GetTickSize(ctx context.Context, tokenID string) (types.TickSize, error) {
	c.mu.Lock()
	cached, ok := c.tickSizes[tokenID]
	c.mu.Unlock()
	if ok {
		return cached, nil
	}

	var out types.TickSizeResponse
	resp, err := c.http.DoRequest(ctx, http.MethodGet, EndpointGetTickSize,
		&sdkhttp.RequestOptions{Params: map[string]any{"token_id": tokenID}}, &out)
	if err := sdkhttp.CheckResponse(resp, err); err != nil {
		return "", errors.Wrap(err, "get tick size")
	}

	tick := types.TickSize(out.MinimumTickSize.String())
	if _, ok := RoundingConfig[tick]; !ok {
		return "", errors.Errorf("unrecognized tick size %q for token %s", tick, tokenID)
	}

	c.mu.Lock()
	c.tickSizes[tokenID] = tick
	c.mu.Unlock()
	return tick, nil
}

// GetNegRisk reports whether the market trades on the neg-risk exchange.
// Cached like tick sizes.
func (c *Client) GetNegRisk(ctx context.Context, tokenID string) (bool, error) {
	c.mu.Lock()
	cached, ok := c.negRisk[tokenID]
	c.mu.Unlock()
	if ok {
		return cached, nil
	}

	var out types.NegRiskResponse
	resp, err := c.http.DoRequest(ctx, http.MethodGet, EndpointGetNegRisk,
		&sdkhttp.RequestOptions{Params: map[string]any{"token_id": tokenID}}, &out)
	if err := sdkhttp.CheckResponse(resp, err); err != nil {
		return false, errors.Wrap(err, "get neg risk")
	}

	c.mu.Lock()
	c.negRisk[tokenID] = out.NegRisk
	c.mu.Unlock()
	return out.NegRisk, nil
}

// GetOrderBook fetches the current book for a token.
func (c *Client) GetOrderBook(ctx context.Context, tokenID string) (*types.OrderBookSummary, error) {
	var book types.OrderBookSummary
	resp, err := c.http.DoRequest(ctx, http.MethodGet, EndpointGetOrderBook,
		&sdkhttp.RequestOptions{Params: map[string]any{"token_id": tokenID}}, &book)
	if err := sdkhttp.CheckResponse(resp, err); err != nil {
		return nil, errors.Wrap(err, "get order book")
	}
	return &book, nil
}
