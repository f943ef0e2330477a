package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// RefreshTokens fetches token metadata and rebuilds the symbol/id/address
// lookup tables used for market resolution.
func (c *Client) RefreshTokens(ctx context.Context) error {
	tokens, err := c.Tokens(ctx)
	if err != nil {
		return err
	}
	idSymbol := make(map[string]string, len(tokens))
	symbolID := make(map[string]string, len(tokens))
	idAddr := make(map[string]string, len(tokens))
	for _, t := range tokens {
		idSymbol[t.TokenID] = t.L1Symbol
		symbolID[t.L1Symbol] = t.TokenID
		idAddr[t.TokenID] = t.L1Address
	}
	c.mu.Lock()
	c.tokenIDSymbol = idSymbol
	c.symbolTokenID = symbolID
	c.tokenIDAddr = idAddr
	c.mu.Unlock()
	return nil
}

func (c *Client) ensureTokens(ctx context.Context) error {
	c.mu.RLock()
	loaded := c.symbolTokenID != nil
	c.mu.RUnlock()
	if loaded {
		return nil
	}
	return c.RefreshTokens(ctx)
}

// TokenID resolves a token symbol to its exchange token id.
func (c *Client) TokenID(ctx context.Context, symbol string) (string, error) {
	if err := c.ensureTokens(ctx); err != nil {
		return "", err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.symbolTokenID[symbol]
	if !ok {
		return "", fmt.Errorf("unknown token symbol: %q", symbol)
	}
	return id, nil
}

// TokenL1Address resolves a token id to its L1 contract address.
func (c *Client) TokenL1Address(ctx context.Context, tokenID string) (string, error) {
	if err := c.ensureTokens(ctx); err != nil {
		return "", err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	addr, ok := c.tokenIDAddr[tokenID]
	if !ok {
		return "", fmt.Errorf("unknown token id: %q", tokenID)
	}
	return addr, nil
}

// splitMarket resolves "BASE/QUOTE" to the base and quote token ids.
func (c *Client) splitMarket(ctx context.Context, market string) (string, string, error) {
	base, quote, ok := strings.Cut(market, "/")
	if !ok {
		return "", "", fmt.Errorf("market should be BASE/QUOTE, got %q", market)
	}
	baseID, err := c.TokenID(ctx, base)
	if err != nil {
		return "", "", err
	}
	quoteID, err := c.TokenID(ctx, quote)
	if err != nil {
		return "", "", err
	}
	return baseID, quoteID, nil
}

// MarketID resolves "BASE/QUOTE" to the server's market identifier. It
// implements ws.MarketResolver with a background context: the lookup only
// hits the network when the metadata cache is cold.
func (c *Client) MarketID(market string) (string, error) {
	return c.MarketIDContext(context.Background(), market)
}

// MarketIDContext is MarketID with an explicit context.
func (c *Client) MarketIDContext(ctx context.Context, market string) (string, error) {
	baseID, quoteID, err := c.splitMarket(ctx, market)
	if err != nil {
		return "", err
	}
	return baseID + "_" + quoteID, nil
}

// Markets lists all tradable pairs.
func (c *Client) Markets(ctx context.Context) ([]Market, error) {
	var out []Market
	if err := c.get(ctx, "/api/v1/market", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Tokens lists token metadata.
func (c *Client) Tokens(ctx context.Context) ([]Token, error) {
	var out []Token
	if err := c.get(ctx, "/api/v1/market/tokens", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Ticker returns the 24h stats for one market given as "BASE/QUOTE".
func (c *Client) Ticker(ctx context.Context, market string) (*Ticker, error) {
	id, err := c.MarketIDContext(ctx, market)
	if err != nil {
		return nil, err
	}
	q := url.Values{"marketId": {id}}
	var out []Ticker
	if err := c.get(ctx, "/api/v1/market/ticker", q, &out); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no ticker for market %s", market)
	}
	return &out[0], nil
}

// Tickers returns 24h stats for all markets.
func (c *Client) Tickers(ctx context.Context) ([]Ticker, error) {
	var out []Ticker
	if err := c.get(ctx, "/api/v1/market/ticker", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Trades returns recent public fills for a market given as "BASE/QUOTE".
func (c *Client) Trades(ctx context.Context, market string, limit int) ([]Trade, error) {
	id, err := c.MarketIDContext(ctx, market)
	if err != nil {
		return nil, err
	}
	q := url.Values{"marketId": {id}, "limit": {strconv.Itoa(limit)}}
	var out []Trade
	if err := c.get(ctx, "/api/v1/market/trades", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}
