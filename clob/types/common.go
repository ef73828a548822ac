// Package types holds the wire and domain types shared by the CLOB client.
package types

// Side is the order direction.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// OrderType is the order execution type.
type OrderType string

const (
	OrderTypeGTC OrderType = "GTC" // rests in the book until cancelled
	OrderTypeFOK OrderType = "FOK" // fills entirely and immediately or not at all
	OrderTypeFAK OrderType = "FAK" // fills what it can, cancels the rest
)

// Chain is the blockchain network id.
type Chain int

const (
	ChainPolygon Chain = 137
	ChainAmoy    Chain = 80002
)

// SignatureType selects the wallet scheme used to sign orders.
type SignatureType int

const (
	SignatureTypeEOA        SignatureType = 0 // standard Ethereum wallet
	SignatureTypeMagic      SignatureType = 1 // Magic Link email login proxy
	SignatureTypeGnosisSafe SignatureType = 2 // Gnosis Safe proxy wallet
)

// TickSize is the market price precision.
type TickSize string

const (
	TickSize01    TickSize = "0.1"
	TickSize001   TickSize = "0.01"
	TickSize0001  TickSize = "0.001"
	TickSize00001 TickSize = "0.0001"
)

// ApiKeyCreds are the L2 API credentials.
type ApiKeyCreds struct {
	Key        string
	Secret     string
	Passphrase string
}

// ApiKeyRaw is the API key response shape.
type ApiKeyRaw struct {
	ApiKey     string `json:"apiKey"`
	Secret     string `json:"secret"`
	Passphrase string `json:"passphrase"`
}

// L2HeaderArgs describes the request being signed with L2 credentials.
type L2HeaderArgs struct {
	Method      string
	RequestPath string
	Body        *string
}

// L1PolyHeader carries the EIP-712 wallet attestation headers.
type L1PolyHeader struct {
	PolyAddress   string `json:"POLY_ADDRESS"`
	PolySignature string `json:"POLY_SIGNATURE"`
	PolyTimestamp string `json:"POLY_TIMESTAMP"`
	PolyNonce     string `json:"POLY_NONCE"`
}

// L2PolyHeader carries the HMAC API-key headers.
type L2PolyHeader struct {
	PolyAddress    string `json:"POLY_ADDRESS"`
	PolySignature  string `json:"POLY_SIGNATURE"`
	PolyTimestamp  string `json:"POLY_TIMESTAMP"`
	PolyAPIKey     string `json:"POLY_API_KEY"`
	PolyPassphrase string `json:"POLY_PASSPHRASE"`
}
