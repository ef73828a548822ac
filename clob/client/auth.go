package client

import (
	"context"
	"crypto/ecdsa"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/followbot/gofollow/clob/signing"
	"github.com/followbot/gofollow/clob/types"
	sdkhttp "github.com/followbot/gofollow/pkg/sdk/http"
)

// AuthConfig holds the signing key and API credentials.
type AuthConfig struct {
	PrivateKey *ecdsa.PrivateKey
	ChainID    types.Chain
	Creds      *types.ApiKeyCreds
}

// CanL1Auth reports whether wallet-signature auth is available.
func (c *Client) CanL1Auth() error {
	if c.authConfig == nil || c.authConfig.PrivateKey == nil {
		return errors.New("L1 auth unavailable: private key not configured")
	}
	return nil
}

// CanL2Auth reports whether API-key auth is available.
func (c *Client) CanL2Auth() error {
	if c.authConfig == nil || c.authConfig.Creds == nil {
		return errors.New("L2 auth unavailable: API credentials not configured")
	}
	return nil
}

// GetAddress returns the signer address derived from the private key.
func (c *Client) GetAddress() (common.Address, error) {
	if err := c.CanL1Auth(); err != nil {
		return common.Address{}, err
	}
	return signing.GetAddressFromPrivateKey(c.authConfig.PrivateKey), nil
}

// CreateOrDeriveAPIKey derives the account's existing API key, or creates a
// new one when the account has none yet. The credentials are installed on
// the client for subsequent L2 requests.
func (c *Client) CreateOrDeriveAPIKey(ctx context.Context, nonce int64) (*types.ApiKeyCreds, error) {
	if err := c.CanL1Auth(); err != nil {
		return nil, err
	}

	headers, err := signing.CreateL1Headers(c.authConfig.PrivateKey, c.authConfig.ChainID, nonce)
	if err != nil {
		return nil, errors.Wrap(err, "create L1 headers")
	}
	headerMap := signing.L1HeaderMap(headers)

	var raw types.ApiKeyRaw
	resp, err := c.http.DoRequest(ctx, http.MethodGet, EndpointDeriveAPIKey,
		&sdkhttp.RequestOptions{Headers: headerMap}, &raw)
	if err == nil && resp.IsSuccess() {
		creds := &types.ApiKeyCreds{
			Key:        raw.ApiKey,
			Secret:     raw.Secret,
			Passphrase: raw.Passphrase,
		}
		c.SetApiCreds(creds)
		return creds, nil
	}
	// 400 means no key exists yet; anything else is a hard failure.
	if err == nil && resp.StatusCode() != http.StatusBadRequest {
		return nil, sdkhttp.CheckResponse(resp, nil)
	}

	raw = types.ApiKeyRaw{}
	resp, err = c.http.DoRequest(ctx, http.MethodPost, EndpointCreateAPIKey,
		&sdkhttp.RequestOptions{Headers: headerMap, Data: map[string]any{}}, &raw)
	if err := sdkhttp.CheckResponse(resp, err); err != nil {
		return nil, errors.Wrap(err, "create API key")
	}

	creds := &types.ApiKeyCreds{
		Key:        raw.ApiKey,
		Secret:     raw.Secret,
		Passphrase: raw.Passphrase,
	}
	c.SetApiCreds(creds)
	return creds, nil
}
