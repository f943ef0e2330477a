package api

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/alphasec-dex/alphasec-go/pkg/sign"
	"github.com/alphasec-dex/alphasec-go/pkg/wire"
)

type txRequest struct {
	SessionID string `json:"sessionId,omitempty"`
	Tx        string `json:"tx"`
}

// submit signs payload into a transaction envelope with a fresh
// millisecond-timestamp nonce and posts it.
func (c *Client) submit(ctx context.Context, path string, payload []byte) error {
	tx, err := c.signer.Transaction(nowMilli(), payload, nil)
	if err != nil {
		return err
	}
	return c.postChecked(ctx, path, txRequest{Tx: tx})
}

// Order places an order on a market given as "BASE/QUOTE". tpsl may be nil.
func (c *Client) Order(ctx context.Context, market string, side int, price, quantity decimal.Decimal, orderType, orderMode int, tpsl *wire.TPSL) error {
	if c.signer == nil {
		return ErrReadOnly
	}
	baseID, quoteID, err := c.splitMarket(ctx, market)
	if err != nil {
		return err
	}
	data, err := c.signer.OrderData(baseID, quoteID, side, price, quantity, orderType, orderMode, tpsl)
	if err != nil {
		return err
	}
	return c.submit(ctx, "/api/v1/order", data)
}

// StopOrder places a stop order on a market given as "BASE/QUOTE".
func (c *Client) StopOrder(ctx context.Context, market string, stopPrice, price, quantity decimal.Decimal, side, orderType, orderMode int) error {
	if c.signer == nil {
		return ErrReadOnly
	}
	baseID, quoteID, err := c.splitMarket(ctx, market)
	if err != nil {
		return err
	}
	data, err := c.signer.StopOrderData(baseID, quoteID, stopPrice, price, quantity, side, orderType, orderMode)
	if err != nil {
		return err
	}
	return c.submit(ctx, "/api/v1/wallet/order/stop", data)
}

// Cancel cancels one open order.
func (c *Client) Cancel(ctx context.Context, orderID string) error {
	if c.signer == nil {
		return ErrReadOnly
	}
	data, err := c.signer.CancelData(orderID)
	if err != nil {
		return err
	}
	return c.submit(ctx, "/api/v1/wallet/order/cancel", data)
}

// CancelAll cancels every open order of the signing account.
func (c *Client) CancelAll(ctx context.Context) error {
	if c.signer == nil {
		return ErrReadOnly
	}
	data, err := c.signer.CancelAllData()
	if err != nil {
		return err
	}
	return c.submit(ctx, "/api/v1/wallet/order/cancel/all", data)
}

// Modify amends an open order; at least one of newPrice, newQty must be
// non-nil.
func (c *Client) Modify(ctx context.Context, orderID string, newPrice, newQty *decimal.Decimal, orderMode int) error {
	if c.signer == nil {
		return ErrReadOnly
	}
	data, err := c.signer.ModifyData(orderID, newPrice, newQty, orderMode)
	if err != nil {
		return err
	}
	return c.submit(ctx, "/api/v1/wallet/order/modify", data)
}

// ValueTransfer moves native balance to another exchange account.
func (c *Client) ValueTransfer(ctx context.Context, to string, value decimal.Decimal) error {
	if c.signer == nil {
		return ErrReadOnly
	}
	data, err := c.signer.ValueTransferData(to, value)
	if err != nil {
		return err
	}
	return c.submit(ctx, "/api/v1/wallet/transfer", data)
}

// TokenTransfer moves a token balance to another exchange account. token is
// the symbol; it is resolved to the token id before encoding.
func (c *Client) TokenTransfer(ctx context.Context, to string, value decimal.Decimal, token string) error {
	if c.signer == nil {
		return ErrReadOnly
	}
	tokenID, err := c.TokenID(ctx, token)
	if err != nil {
		return err
	}
	data, err := c.signer.TokenTransferData(to, value, tokenID)
	if err != nil {
		return err
	}
	return c.submit(ctx, "/api/v1/wallet/transfer", data)
}

// CreateSession registers sessionWallet as a delegated key until expiry.
// The registration payload is signed by the owner key (session mode must
// not be enabled), while the transaction envelope is signed by the new
// session key itself. A fresh sessionID is generated when empty. The nonce
// is the current millisecond timestamp; the server requires it to be
// monotonic per owner.
func (c *Client) CreateSession(ctx context.Context, sessionID string, sessionWallet *sign.Wallet, expiry int64) (string, error) {
	if c.signer == nil {
		return "", ErrReadOnly
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	nonce := nowMilli()
	data, err := c.signer.SessionData(wire.TagSessionRegister, sessionWallet.Address(), nonce, expiry, "")
	if err != nil {
		return "", err
	}
	tx, err := c.signer.Transaction(nonce, data, sessionWallet)
	if err != nil {
		return "", err
	}
	c.log.Info("registering session key",
		zap.String("sessionId", sessionID),
		zap.String("sessionWallet", sessionWallet.Address().Hex()))
	if err := c.postChecked(ctx, "/api/v1/wallet/session", txRequest{SessionID: sessionID, Tx: tx}); err != nil {
		return "", err
	}
	return sessionID, nil
}

// UpdateSession extends or amends an existing session registration.
func (c *Client) UpdateSession(ctx context.Context, sessionID string, sessionWallet *sign.Wallet, expiry int64) error {
	if c.signer == nil {
		return ErrReadOnly
	}
	nonce := nowMilli()
	data, err := c.signer.SessionData(wire.TagSessionUpdate, sessionWallet.Address(), nonce, expiry, "")
	if err != nil {
		return err
	}
	tx, err := c.signer.Transaction(nonce, data, sessionWallet)
	if err != nil {
		return err
	}
	return c.postChecked(ctx, "/api/v1/wallet/session/update", txRequest{SessionID: sessionID, Tx: tx})
}

// DeleteSession revokes a session key. The chain ignores nonce and expiry
// on deletion, so fresh timestamps are supplied purely as placeholders; the
// revocation is authenticated by the signature over the delete command.
func (c *Client) DeleteSession(ctx context.Context, sessionWallet *sign.Wallet) error {
	if c.signer == nil {
		return ErrReadOnly
	}
	nonce := nowMilli()
	expiry := nonce + time.Hour.Milliseconds()
	data, err := c.signer.SessionData(wire.TagSessionDelete, sessionWallet.Address(), nonce, expiry, "")
	if err != nil {
		return err
	}
	tx, err := c.signer.Transaction(nonce, data, sessionWallet)
	if err != nil {
		return err
	}
	return c.postChecked(ctx, "/api/v1/wallet/session/delete", txRequest{Tx: tx})
}
