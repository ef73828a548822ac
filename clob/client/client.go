// Package client implements the Polymarket CLOB trading client: auth,
// market metadata lookups and order building, signing and submission.
package client

import (
	"crypto/ecdsa"
	"strings"
	"sync"

	"github.com/followbot/gofollow/clob/types"
	sdkhttp "github.com/followbot/gofollow/pkg/sdk/http"
)

// Client talks to the CLOB REST API.
type Client struct {
	host       string
	chainID    types.Chain
	authConfig *AuthConfig
	http       *sdkhttp.Client

	signatureType types.SignatureType
	funderAddress string

	mu        sync.Mutex
	tickSizes map[string]types.TickSize
	negRisk   map[string]bool
}

// Option configures a Client.
type Option func(*Client)

// WithSignatureType sets the wallet scheme used when signing orders.
func WithSignatureType(st types.SignatureType) Option {
	return func(c *Client) { c.signatureType = st }
}

// WithFunder sets the funding (maker) address for proxy wallet setups.
func WithFunder(address string) Option {
	return func(c *Client) { c.funderAddress = address }
}

// NewClient builds a CLOB client. creds may be nil until an API key is
// created or derived.
func NewClient(
	host string,
	chainID types.Chain,
	privateKey *ecdsa.PrivateKey,
	creds *types.ApiKeyCreds,
	opts ...Option,
) *Client {
	c := &Client{
		host:    strings.TrimSuffix(host, "/"),
		chainID: chainID,
		authConfig: &AuthConfig{
			PrivateKey: privateKey,
			ChainID:    chainID,
			Creds:      creds,
		},
		// The CLOB client must not retry: re-sending a signed order after
		// a transport failure risks executing it twice.
		http:      sdkhttp.NewSubmitClient(host),
		tickSizes: make(map[string]types.TickSize),
		negRisk:   make(map[string]bool),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetHost returns the API host.
func (c *Client) GetHost() string {
	return c.host
}

// GetChainID returns the chain id the client signs for.
func (c *Client) GetChainID() types.Chain {
	return c.chainID
}

// SetApiCreds installs L2 credentials after key derivation.
func (c *Client) SetApiCreds(creds *types.ApiKeyCreds) {
	c.authConfig.Creds = creds
}
