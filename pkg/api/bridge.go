package api

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"

	"github.com/alphasec-dex/alphasec-go/params"
	"github.com/alphasec-dex/alphasec-go/pkg/bridge"
)

// Deposit moves value (in wei) of the token with the given symbol from the
// owner's L1 account into the exchange and blocks until the L1 transaction
// mines. Bridging always uses the owner key, never the session key.
func (c *Client) Deposit(ctx context.Context, symbol string, value *big.Int) (*types.Receipt, error) {
	if c.signer == nil {
		return nil, ErrReadOnly
	}
	b, err := bridge.New(c.signer, c.log)
	if err != nil {
		return nil, err
	}
	l1, err := ethclient.DialContext(ctx, c.signer.Network().L1RPC())
	if err != nil {
		return nil, fmt.Errorf("dial l1: %w", err)
	}
	defer l1.Close()

	native, tokenL1, err := c.resolveBridgeToken(ctx, symbol)
	if err != nil {
		return nil, err
	}
	var tx *types.Transaction
	if native {
		tx, err = b.DepositNative(ctx, l1, value)
	} else {
		tx, err = b.DepositERC20(ctx, l1, tokenL1, value)
	}
	if err != nil {
		return nil, err
	}
	c.log.Info("submitting deposit",
		zap.String("symbol", symbol), zap.String("value", value.String()),
		zap.String("hash", tx.Hash().Hex()))
	return b.Submit(ctx, l1, tx)
}

// Withdraw moves value (in wei) of the token with the given symbol from the
// exchange back to the owner's L1 account and blocks until the L2
// transaction mines. L1 finalization happens asynchronously via the outbox.
func (c *Client) Withdraw(ctx context.Context, symbol string, value *big.Int) (*types.Receipt, error) {
	if c.signer == nil {
		return nil, ErrReadOnly
	}
	b, err := bridge.New(c.signer, c.log)
	if err != nil {
		return nil, err
	}
	l2, err := ethclient.DialContext(ctx, c.signer.Network().L2RPC())
	if err != nil {
		return nil, fmt.Errorf("dial l2: %w", err)
	}
	defer l2.Close()

	native, tokenL1, err := c.resolveBridgeToken(ctx, symbol)
	if err != nil {
		return nil, err
	}
	var tx *types.Transaction
	if native {
		tx, err = b.WithdrawNative(ctx, l2, value)
	} else {
		tx, err = b.WithdrawERC20(ctx, l2, tokenL1, value)
	}
	if err != nil {
		return nil, err
	}
	c.log.Info("submitting withdrawal",
		zap.String("symbol", symbol), zap.String("value", value.String()),
		zap.String("hash", tx.Hash().Hex()))
	return b.Submit(ctx, l2, tx)
}

// resolveBridgeToken maps a token symbol to its bridging identity: the
// native token, or the L1 contract address of an ERC20.
func (c *Client) resolveBridgeToken(ctx context.Context, symbol string) (native bool, tokenL1 common.Address, err error) {
	tokenID, err := c.TokenID(ctx, symbol)
	if err != nil {
		return false, common.Address{}, err
	}
	if tokenID == params.NativeTokenID {
		return true, common.Address{}, nil
	}
	addr, err := c.TokenL1Address(ctx, tokenID)
	if err != nil {
		return false, common.Address{}, err
	}
	if !common.IsHexAddress(addr) {
		return false, common.Address{}, fmt.Errorf("token %s has no valid l1 address: %q", symbol, addr)
	}
	return false, common.HexToAddress(addr), nil
}
