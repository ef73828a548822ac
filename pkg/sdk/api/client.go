// Package api provides the Polymarket data-api client and the live activity
// WebSocket stream.
package api

import (
	"context"
	"fmt"

	sdkhttp "github.com/followbot/gofollow/pkg/sdk/http"
)

// Client fetches public data-api resources.
type Client struct {
	http *sdkhttp.Client
}

// NewClient creates a data-api client. An empty host selects the production
// endpoint.
func NewClient(dataAPIHost string) *Client {
	if dataAPIHost == "" {
		dataAPIHost = "https://data-api.polymarket.com"
	}
	return &Client{http: sdkhttp.NewClient(dataAPIHost)}
}

// GetOpenPositions fetches one page of open positions for a user.
func (c *Client) GetOpenPositions(ctx context.Context, user string, limit, offset int) ([]OpenPosition, error) {
	if user == "" {
		return nil, fmt.Errorf("user address is required for open positions")
	}

	var positions []OpenPosition
	resp, err := c.http.DoRequest(ctx, "GET", "/positions", &sdkhttp.RequestOptions{
		Params: map[string]any{
			"user":   user,
			"limit":  limit,
			"offset": offset,
		},
	}, &positions)
	if err := sdkhttp.CheckResponse(resp, err); err != nil {
		return nil, fmt.Errorf("fetch positions for %s: %w", user, err)
	}
	return positions, nil
}

// GetAllOpenPositions pages through /positions until a short page or the
// offset ceiling. The ceiling protects against unbounded pagination on a
// huge or misbehaving account.
func (c *Client) GetAllOpenPositions(ctx context.Context, user string, pageSize, maxOffset int) ([]OpenPosition, error) {
	var all []OpenPosition
	for offset := 0; offset <= maxOffset; offset += pageSize {
		page, err := c.GetOpenPositions(ctx, user, pageSize, offset)
		if err != nil {
			return nil, fmt.Errorf("fetch positions at offset %d: %w", offset, err)
		}
		all = append(all, page...)
		if len(page) < pageSize {
			break
		}
	}
	return all, nil
}
