package sign

import (
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/shopspring/decimal"

	"github.com/alphasec-dex/alphasec-go/params"
	"github.com/alphasec-dex/alphasec-go/pkg/wire"
)

// Configuration errors. Both are fatal for the call: no retry can succeed
// without reconfiguring the signer.
var (
	// ErrNoWallet is returned when a signing operation is requested but the
	// wallet it needs was never configured (read-only client).
	ErrNoWallet = errors.New("signer not configured: wallet is not set")
	// ErrSessionActive is returned when session registration is attempted
	// while session mode is already enabled. An active session cannot
	// authorize its own registration; only the owner key can.
	ErrSessionActive = errors.New("session is already enabled")
)

// Signer holds the account's two key identities and the network context.
// The owner wallet controls the permanent L1 identity; the session wallet
// is a delegated, time-boxed key. Exactly one is active at a time, chosen
// by the sessionEnabled flag fixed at construction.
type Signer struct {
	l1Address      string
	owner          *Wallet
	session        *Wallet
	sessionEnabled bool
	network        params.Network
}

// New builds a Signer from a validated config. Missing keys are tolerated
// here; the operations that need them fail with ErrNoWallet.
func New(cfg params.Config) (*Signer, error) {
	addr, err := wire.NormalizeAddress(cfg.L1Address)
	if err != nil {
		return nil, err
	}
	s := &Signer{
		l1Address:      addr,
		sessionEnabled: cfg.SessionEnabled,
		network:        cfg.Network,
	}
	if cfg.L1PrivateKey != "" {
		if s.owner, err = WalletFromHex(cfg.L1PrivateKey); err != nil {
			return nil, fmt.Errorf("l1_wallet: %w", err)
		}
	}
	if cfg.L2PrivateKey != "" {
		if s.session, err = WalletFromHex(cfg.L2PrivateKey); err != nil {
			return nil, fmt.Errorf("l2_wallet: %w", err)
		}
	}
	return s, nil
}

// L1Address returns the normalized owner address carried in every payload.
func (s *Signer) L1Address() string { return s.l1Address }

// Network returns the deployment this signer targets.
func (s *Signer) Network() params.Network { return s.network }

// SessionEnabled reports whether the delegated session key is the active
// signing identity.
func (s *Signer) SessionEnabled() bool { return s.sessionEnabled }

// OwnerWallet exposes the owner key for collaborators that must sign L1
// transactions directly (bridging). Nil for read-only or session-only
// clients.
func (s *Signer) OwnerWallet() *Wallet { return s.owner }

// ActiveWallet returns the session wallet when session mode is enabled,
// the owner wallet otherwise.
func (s *Signer) ActiveWallet() (*Wallet, error) {
	w := s.owner
	if s.sessionEnabled {
		w = s.session
	}
	if w == nil {
		return nil, ErrNoWallet
	}
	return w, nil
}

// SessionData builds a session register/update/delete payload. The typed
// data binding sessionAddr + expiresAt + nonceMS is signed by the currently
// active wallet, which must be the owner key: session mode may not be
// enabled yet, since a session cannot register itself. For deletion the
// chain ignores nonce and expiry; callers pass fresh timestamps anyway and
// the destructive effect is authenticated solely by the signature.
func (s *Signer) SessionData(op wire.Tag, sessionAddr common.Address, nonceMS, expiresAt int64, metadata string) ([]byte, error) {
	if s.sessionEnabled {
		return nil, ErrSessionActive
	}
	w, err := s.ActiveWallet()
	if err != nil {
		return nil, err
	}
	sig, err := signSessionRegistration(w, sessionAddr, nonceMS, expiresAt)
	if err != nil {
		return nil, err
	}
	return wire.Encode(wire.SessionContext{
		Op:          op,
		PublicKey:   sessionAddr.Hex(),
		ExpiresAt:   expiresAt,
		Nonce:       nonceMS,
		L1Owner:     s.l1Address,
		L1Signature: base64.StdEncoding.EncodeToString(sig),
		Metadata:    metadata,
	})
}

// OrderData builds an order payload.
func (s *Signer) OrderData(baseToken, quoteToken string, side int, price, quantity decimal.Decimal, orderType, orderMode int, tpsl *wire.TPSL) ([]byte, error) {
	if _, err := s.ActiveWallet(); err != nil {
		return nil, err
	}
	return wire.Encode(wire.Order{
		L1Owner:    s.l1Address,
		BaseToken:  baseToken,
		QuoteToken: quoteToken,
		Side:       side,
		Price:      price,
		Quantity:   quantity,
		OrderType:  orderType,
		OrderMode:  orderMode,
		Tpsl:       tpsl,
	})
}

// StopOrderData builds a stop order payload.
func (s *Signer) StopOrderData(baseToken, quoteToken string, stopPrice, price, quantity decimal.Decimal, side, orderType, orderMode int) ([]byte, error) {
	if _, err := s.ActiveWallet(); err != nil {
		return nil, err
	}
	return wire.Encode(wire.StopOrder{
		L1Owner:    s.l1Address,
		BaseToken:  baseToken,
		QuoteToken: quoteToken,
		StopPrice:  stopPrice,
		Price:      price,
		Quantity:   quantity,
		Side:       side,
		OrderType:  orderType,
		OrderMode:  orderMode,
	})
}

// CancelData builds a cancel payload for one order id.
func (s *Signer) CancelData(orderID string) ([]byte, error) {
	if _, err := s.ActiveWallet(); err != nil {
		return nil, err
	}
	return wire.Encode(wire.Cancel{L1Owner: s.l1Address, OrderID: orderID})
}

// CancelAllData builds a cancel-all payload.
func (s *Signer) CancelAllData() ([]byte, error) {
	if _, err := s.ActiveWallet(); err != nil {
		return nil, err
	}
	return wire.Encode(wire.CancelAll{L1Owner: s.l1Address})
}

// ModifyData builds a modify payload; at least one of newPrice and newQty
// must be non-nil.
func (s *Signer) ModifyData(orderID string, newPrice, newQty *decimal.Decimal, orderMode int) ([]byte, error) {
	if _, err := s.ActiveWallet(); err != nil {
		return nil, err
	}
	return wire.Encode(wire.Modify{
		L1Owner:   s.l1Address,
		OrderID:   orderID,
		NewPrice:  newPrice,
		NewQty:    newQty,
		OrderMode: orderMode,
	})
}

// ValueTransferData builds a native-token transfer payload.
func (s *Signer) ValueTransferData(to string, value decimal.Decimal) ([]byte, error) {
	if _, err := s.ActiveWallet(); err != nil {
		return nil, err
	}
	return wire.Encode(wire.ValueTransfer{L1Owner: s.l1Address, To: to, Value: value})
}

// TokenTransferData builds a token transfer payload.
func (s *Signer) TokenTransferData(to string, value decimal.Decimal, token string) ([]byte, error) {
	if _, err := s.ActiveWallet(); err != nil {
		return nil, err
	}
	return wire.Encode(wire.TokenTransfer{L1Owner: s.l1Address, To: to, Value: value, Token: token})
}

// Transaction wraps an encoded command payload into the exchange's
// EIP-1559 envelope and signs it. The envelope is fixed: destination is the
// order contract, value and fee fields are zero (fees are settled off-band),
// the nonce is the caller's millisecond timestamp. When w is nil the active
// wallet signs; session create/update pass the new session wallet explicitly
// because those transactions must be signed by the key being registered.
// Returns the 0x-prefixed hex of the raw signed transaction.
func (s *Signer) Transaction(nonceMS int64, data []byte, w *Wallet) (string, error) {
	if w == nil {
		var err error
		if w, err = s.ActiveWallet(); err != nil {
			return "", err
		}
	}
	chainID := big.NewInt(params.L2ChainID)
	to := params.OrderContract
	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     uint64(nonceMS),
		GasTipCap: new(big.Int),
		GasFeeCap: new(big.Int),
		Gas:       1_000_000,
		To:        &to,
		Value:     new(big.Int),
		Data:      data,
	})
	signed, err := w.SignTx(tx, chainID)
	if err != nil {
		return "", err
	}
	raw, err := signed.MarshalBinary()
	if err != nil {
		return "", fmt.Errorf("failed to encode transaction: %w", err)
	}
	return "0x" + hex.EncodeToString(raw), nil
}
