package api

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Numeric handles Polymarket numbers that may arrive as strings or numbers.
// Values are kept as exact decimals; sizes and prices feed cost-basis math
// where binary floating point would drift.
type Numeric struct {
	decimal.Decimal
}

func (n *Numeric) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || strings.EqualFold(string(data), "null") {
		n.Decimal = decimal.Zero
		return nil
	}

	// Handle quoted numbers.
	if data[0] == '"' && data[len(data)-1] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			n.Decimal = decimal.Zero
			return nil
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return err
		}
		n.Decimal = d
		return nil
	}

	d, err := decimal.NewFromString(string(data))
	if err != nil {
		return err
	}
	n.Decimal = d
	return nil
}

func (n Numeric) MarshalJSON() ([]byte, error) {
	return []byte(n.Decimal.String()), nil
}

// OpenPosition represents an open position (current holdings) for a user,
// as returned by the data-api /positions endpoint.
type OpenPosition struct {
	Asset        string  `json:"asset"` // token ID
	ConditionID  string  `json:"conditionId"`
	Size         Numeric `json:"size"`     // tokens held
	AvgPrice     Numeric `json:"avgPrice"` // average purchase price
	CurPrice     Numeric `json:"curPrice"` // current market price
	RealizedPNL  Numeric `json:"realizedPnl"`
	Title        string  `json:"title"`
	Slug         string  `json:"slug"`
	Outcome      string  `json:"outcome"`
	OutcomeIndex int     `json:"outcomeIndex"`
	EventSlug    string  `json:"eventSlug"`
	EndDate      string  `json:"endDate"` // market end time, ISO 8601
	ProxyWallet  string  `json:"proxyWallet"`
}

// ActivityTrade is the payload of an activity-stream trade notification.
type ActivityTrade struct {
	Asset           string  `json:"asset"`
	ConditionID     string  `json:"conditionId"`
	ProxyWallet     string  `json:"proxyWallet"`
	Side            string  `json:"side"`
	Size            Numeric `json:"size"`
	Price           Numeric `json:"price"`
	Timestamp       int64   `json:"timestamp"`
	TransactionHash string  `json:"transactionHash"`
	Slug            string  `json:"slug"`
	EventSlug       string  `json:"eventSlug"`
	Outcome         string  `json:"outcome"`
	Title           string  `json:"title"`
}
