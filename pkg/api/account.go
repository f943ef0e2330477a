package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/alphasec-dex/alphasec-go/pkg/wire"
)

// Balance returns the token balances of addr.
func (c *Client) Balance(ctx context.Context, addr string) ([]Balance, error) {
	a, err := wire.NormalizeAddress(addr)
	if err != nil {
		return nil, err
	}
	var out []Balance
	if err := c.get(ctx, "/api/v1/wallet/balance", url.Values{"address": {a}}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Sessions returns the session keys registered for addr.
func (c *Client) Sessions(ctx context.Context, addr string) ([]Session, error) {
	a, err := wire.NormalizeAddress(addr)
	if err != nil {
		return nil, err
	}
	var out []Session
	if err := c.get(ctx, "/api/v1/wallet/session", url.Values{"address": {a}}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// HistoryQuery bounds an order history request. Zero values are omitted.
type HistoryQuery struct {
	Limit    int
	FromMsec int64
	ToMsec   int64
}

func (h HistoryQuery) values(addr, marketID string) url.Values {
	q := url.Values{"address": {addr}, "marketId": {marketID}}
	limit := h.Limit
	if limit == 0 {
		limit = 100
	}
	q.Set("limit", strconv.Itoa(limit))
	if h.FromMsec != 0 {
		q.Set("from", strconv.FormatInt(h.FromMsec, 10))
	}
	if h.ToMsec != 0 {
		q.Set("to", strconv.FormatInt(h.ToMsec, 10))
	}
	return q
}

// OpenOrders lists the open orders of addr on a market ("BASE/QUOTE").
func (c *Client) OpenOrders(ctx context.Context, addr, market string, query HistoryQuery) ([]OrderInfo, error) {
	return c.orders(ctx, "/api/v1/order/open", addr, market, query)
}

// OrderHistory lists the filled and canceled orders of addr on a market.
func (c *Client) OrderHistory(ctx context.Context, addr, market string, query HistoryQuery) ([]OrderInfo, error) {
	return c.orders(ctx, "/api/v1/order/", addr, market, query)
}

func (c *Client) orders(ctx context.Context, path, addr, market string, query HistoryQuery) ([]OrderInfo, error) {
	a, err := wire.NormalizeAddress(addr)
	if err != nil {
		return nil, err
	}
	id, err := c.MarketIDContext(ctx, market)
	if err != nil {
		return nil, err
	}
	var raw []json.RawMessage
	if err := c.get(ctx, path, query.values(a, id), &raw); err != nil {
		return nil, err
	}
	out := make([]OrderInfo, 0, len(raw))
	for _, r := range raw {
		var o OrderInfo
		if err := json.Unmarshal(r, &o); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
		}
		o.Raw = r
		out = append(out, o)
	}
	return out, nil
}

// OrderByID fetches one order. A 404 answer returns (nil, nil).
func (c *Client) OrderByID(ctx context.Context, orderID string) (*OrderInfo, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/v1/order/"+url.PathEscape(orderID), nil, nil)
	if err != nil {
		return nil, err
	}
	if resp.Code == http.StatusNotFound {
		return nil, nil
	}
	var o OrderInfo
	if err := json.Unmarshal(resp.Result, &o); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	o.Raw = resp.Result
	return &o, nil
}
