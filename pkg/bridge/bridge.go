// Package bridge builds and signs the L1 deposit and L2 withdraw
// transactions that move funds between the base chain and the exchange
// rollup. It is thin contract-call glue around the owner key; outbox proof
// construction and finalization are out of scope.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"

	"github.com/alphasec-dex/alphasec-go/params"
	"github.com/alphasec-dex/alphasec-go/pkg/sign"
)

// ErrNoOwnerKey is returned when bridging is attempted without the owner
// wallet; deposits and withdrawals are only available to the L1 key.
var ErrNoOwnerKey = errors.New("l1_wallet is not set: bridging requires the owner key")

const bridgeGasLimit = 1_000_000

// Retryable-ticket funding used for ERC20 deposits, mirroring the server's
// expected submission parameters.
var (
	l2GasLimit        = big.NewInt(1_000_000)
	l2GasPrice        = big.NewInt(1_000_000)
	maxSubmissionCost = new(big.Int).Mul(big.NewInt(1e16), big.NewInt(1)) // 0.01 ether
	ticketValue       = new(big.Int).Mul(big.NewInt(2e16), big.NewInt(1)) // 0.02 ether
)

// Bridge signs deposit and withdraw transactions for one owner identity.
type Bridge struct {
	network params.Network
	owner   *sign.Wallet
	ownerAt common.Address
	log     *zap.Logger
}

// New builds a Bridge from the signer's owner key. logger may be nil.
func New(signer *sign.Signer, logger *zap.Logger) (*Bridge, error) {
	owner := signer.OwnerWallet()
	if owner == nil {
		return nil, ErrNoOwnerKey
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bridge{
		network: signer.Network(),
		owner:   owner,
		ownerAt: owner.Address(),
		log:     logger,
	}, nil
}

// buildAndSign assembles a legacy envelope for a contract call and signs it
// with the owner key.
func (b *Bridge) buildAndSign(ctx context.Context, client *ethclient.Client, to common.Address, value *big.Int, data []byte, nonce uint64) (*types.Transaction, error) {
	chainID, err := client.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("chain id: %w", err)
	}
	gasPrice, err := client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("gas price: %w", err)
	}
	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      bridgeGasLimit,
		To:       &to,
		Value:    value,
		Data:     data,
	})
	return b.owner.SignTx(tx, chainID)
}

func (b *Bridge) l1Nonce(ctx context.Context, client *ethclient.Client) (uint64, error) {
	nonce, err := client.PendingNonceAt(ctx, b.ownerAt)
	if err != nil {
		return 0, fmt.Errorf("nonce: %w", err)
	}
	return nonce, nil
}

// DepositNative builds the L1 transaction depositing native value into the
// exchange via the inbox contract.
func (b *Bridge) DepositNative(ctx context.Context, l1 *ethclient.Client, value *big.Int) (*types.Transaction, error) {
	data, err := inboxABI.Pack("depositEth")
	if err != nil {
		return nil, err
	}
	nonce, err := b.l1Nonce(ctx, l1)
	if err != nil {
		return nil, err
	}
	return b.buildAndSign(ctx, l1, b.network.Inbox(), value, data, nonce)
}

// DepositERC20 bridges an ERC20 token in via the gateway router. If the
// gateway's allowance is short it submits an approve first and waits for it
// to mine before building the deposit.
func (b *Bridge) DepositERC20(ctx context.Context, l1 *ethclient.Client, tokenL1 common.Address, value *big.Int) (*types.Transaction, error) {
	if err := b.ensureAllowance(ctx, l1, tokenL1, value); err != nil {
		return nil, err
	}

	ticketData, err := retryableTicketData()
	if err != nil {
		return nil, err
	}
	data, err := erc20RouterABI.Pack("outboundTransfer",
		tokenL1, b.ownerAt, value, l2GasLimit, l2GasPrice, ticketData)
	if err != nil {
		return nil, err
	}
	nonce, err := b.l1Nonce(ctx, l1)
	if err != nil {
		return nil, err
	}
	return b.buildAndSign(ctx, l1, b.network.ERC20Router(), ticketValue, data, nonce)
}

// retryableTicketData encodes (maxSubmissionCost, "") the way the router
// expects its submission parameters.
func retryableTicketData() ([]byte, error) {
	uint256Ty, err := newABIType("uint256")
	if err != nil {
		return nil, err
	}
	bytesTy, err := newABIType("bytes")
	if err != nil {
		return nil, err
	}
	return packValues(uint256Ty, bytesTy, maxSubmissionCost, []byte{})
}

func (b *Bridge) ensureAllowance(ctx context.Context, l1 *ethclient.Client, tokenL1 common.Address, value *big.Int) error {
	gateway := b.network.ERC20Gateway()
	input, err := erc20ABI.Pack("allowance", b.ownerAt, gateway)
	if err != nil {
		return err
	}
	out, err := l1.CallContract(ctx, callMsg(tokenL1, input), nil)
	if err != nil {
		return fmt.Errorf("allowance call: %w", err)
	}
	results, err := erc20ABI.Unpack("allowance", out)
	if err != nil {
		return fmt.Errorf("allowance decode: %w", err)
	}
	allowance, _ := results[0].(*big.Int)
	if allowance != nil && allowance.Cmp(value) >= 0 {
		return nil
	}

	b.log.Info("approving ERC20 gateway",
		zap.String("token", tokenL1.Hex()), zap.String("value", value.String()))
	approveData, err := erc20ABI.Pack("approve", gateway, value)
	if err != nil {
		return err
	}
	nonce, err := b.l1Nonce(ctx, l1)
	if err != nil {
		return err
	}
	tx, err := b.buildAndSign(ctx, l1, tokenL1, new(big.Int), approveData, nonce)
	if err != nil {
		return err
	}
	if err := l1.SendTransaction(ctx, tx); err != nil {
		return fmt.Errorf("allowance approve failed: %w", err)
	}
	if _, err := waitMined(ctx, l1, tx.Hash()); err != nil {
		return fmt.Errorf("allowance approve failed: %w", err)
	}
	return nil
}

// WithdrawNative builds the L2 transaction withdrawing native value back to
// the owner on L1 via the system contract. L2 nonces are millisecond
// timestamps like every other exchange transaction.
func (b *Bridge) WithdrawNative(ctx context.Context, l2 *ethclient.Client, value *big.Int) (*types.Transaction, error) {
	data, err := l2SystemABI.Pack("withdrawEth", b.ownerAt)
	if err != nil {
		return nil, err
	}
	return b.buildAndSign(ctx, l2, params.L2SystemContract, value, data, uint64(time.Now().UnixMilli()))
}

// WithdrawERC20 builds the L2 transaction bridging a token back to L1 via
// the gateway router.
func (b *Bridge) WithdrawERC20(ctx context.Context, l2 *ethclient.Client, tokenL1 common.Address, value *big.Int) (*types.Transaction, error) {
	data, err := l2RouterABI.Pack("outboundTransfer", tokenL1, b.ownerAt, value, []byte{})
	if err != nil {
		return nil, err
	}
	return b.buildAndSign(ctx, l2, params.L2GatewayRouter, new(big.Int), data, uint64(time.Now().UnixMilli()))
}

// Submit sends a signed bridge transaction and blocks until it mines.
func (b *Bridge) Submit(ctx context.Context, client *ethclient.Client, tx *types.Transaction) (*types.Receipt, error) {
	if err := client.SendTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("send transaction: %w", err)
	}
	return waitMined(ctx, client, tx.Hash())
}
