package types

import "github.com/shopspring/decimal"

// UserMarketOrder describes a marketable order before building and signing.
// Amount is denominated in USDC for BUY orders and in shares for SELL
// orders, matching the CLOB market-order convention.
type UserMarketOrder struct {
	TokenID string
	Amount  decimal.Decimal
	Side    Side

	// Price pins the worst acceptable price; when zero the order book is
	// consulted for a marketable price.
	Price decimal.Decimal

	FeeRateBps int
	Nonce      int64
	Taker      string
}

// SignedOrder is the EIP-712 signed order submitted to the exchange.
type SignedOrder struct {
	Salt          int64  `json:"salt"`
	Maker         string `json:"maker"`
	Signer        string `json:"signer"`
	Taker         string `json:"taker"`
	TokenID       string `json:"tokenId"`
	MakerAmount   string `json:"makerAmount"`
	TakerAmount   string `json:"takerAmount"`
	Expiration    string `json:"expiration"`
	Nonce         string `json:"nonce"`
	FeeRateBps    string `json:"feeRateBps"`
	Side          Side   `json:"side"`
	SignatureType int    `json:"signatureType"`
	Signature     string `json:"signature"`
}

// NewOrder is the POST /order payload.
type NewOrder struct {
	Order     SignedOrder `json:"order"`
	Owner     string      `json:"owner"`
	OrderType OrderType   `json:"orderType"`
}

// OrderResponse is the exchange's reply to an order submission.
type OrderResponse struct {
	Success           bool     `json:"success"`
	ErrorMsg          string   `json:"errorMsg"`
	OrderID           string   `json:"orderID"`
	TransactionHashes []string `json:"transactionsHashes"`
	Status            string   `json:"status"`
	TakingAmount      string   `json:"takingAmount"`
	MakingAmount      string   `json:"makingAmount"`
}

// CreateOrderOptions carries the market metadata needed to build an order.
type CreateOrderOptions struct {
	TickSize TickSize
	NegRisk  bool
}

// OrderBookSummary is the GET /book response.
type OrderBookSummary struct {
	Market    string         `json:"market"`
	AssetID   string         `json:"asset_id"`
	Timestamp string         `json:"timestamp"`
	Bids      []OrderSummary `json:"bids"`
	Asks      []OrderSummary `json:"asks"`
}

// OrderSummary is a single price level.
type OrderSummary struct {
	Price string `json:"price"`
	Size  string `json:"size"`
}

// TickSizeResponse is the GET /tick-size response.
type TickSizeResponse struct {
	MinimumTickSize decimal.Decimal `json:"minimum_tick_size"`
}

// NegRiskResponse is the GET /neg-risk response.
type NegRiskResponse struct {
	NegRisk bool `json:"neg_risk"`
}
