package api

import "encoding/json"

// Token metadata as served by /api/v1/market/tokens.
type Token struct {
	TokenID   string `json:"tokenId"`
	L1Symbol  string `json:"l1Symbol"`
	L1Address string `json:"l1Address"`
	Decimals  int    `json:"decimals"`
}

// Market is one tradable pair.
type Market struct {
	MarketID     string `json:"marketId"`
	BaseTokenID  string `json:"baseTokenId"`
	QuoteTokenID string `json:"quoteTokenId"`
}

// Ticker summarizes 24h market stats.
type Ticker struct {
	MarketID       string `json:"marketId"`
	BaseTokenID    string `json:"baseTokenId"`
	QuoteTokenID   string `json:"quoteTokenId"`
	Price          string `json:"price"`
	Open24h        string `json:"open24h"`
	High24h        string `json:"high24h"`
	Low24h         string `json:"low24h"`
	Volume24h      string `json:"volume24h"`
	QuoteVolume24h string `json:"quoteVolume24h"`
}

// Trade is one public fill.
type Trade struct {
	Hash     string   `json:"hash"`
	MarketID string   `json:"marketId"`
	Side     int      `json:"side"`
	Price    string   `json:"px"`
	Size     string   `json:"sz"`
	TradeID  string   `json:"tid"`
	Time     int64    `json:"time"`
	Users    []string `json:"users"`
}

// Balance is one token balance for an account.
type Balance struct {
	TokenID   string `json:"tokenId"`
	Available string `json:"available"`
	Locked    string `json:"locked"`
}

// Session describes a registered session key.
type Session struct {
	SessionID string `json:"sessionId"`
	PublicKey string `json:"publickey"`
	ExpiresAt int64  `json:"expiresAt"`
}

// OrderInfo is an order history or open-order record. Fields beyond the
// common set vary with order state, so the full record rides along raw.
type OrderInfo struct {
	OrderID   string          `json:"orderId"`
	MarketID  string          `json:"marketId"`
	Side      string          `json:"side"`
	OrderType string          `json:"orderType"`
	Status    string          `json:"status"`
	Price     string          `json:"origPrice"`
	Quantity  string          `json:"origQty"`
	CreatedAt int64           `json:"createdAt"`
	Raw       json.RawMessage `json:"-"`
}
