// Package sign holds the client's key material and produces signed exchange
// transactions: tag-prefixed command payloads wrapped in chain-compatible
// envelopes, and the typed-data signatures that authorize session keys.
package sign

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// Wallet wraps one secp256k1 key pair and its derived address.
type Wallet struct {
	privateKey *ecdsa.PrivateKey
	address    common.Address
}

// GenerateWallet creates a new random secp256k1 key pair.
func GenerateWallet() (*Wallet, error) {
	privateKey, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	return &Wallet{
		privateKey: privateKey,
		address:    crypto.PubkeyToAddress(privateKey.PublicKey),
	}, nil
}

// WalletFromHex creates a Wallet from a hex-encoded private key, with or
// without the 0x prefix.
func WalletFromHex(hexKey string) (*Wallet, error) {
	if len(hexKey) >= 2 && hexKey[0] == '0' && (hexKey[1] == 'x' || hexKey[1] == 'X') {
		hexKey = hexKey[2:]
	}
	privateKey, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}
	return &Wallet{
		privateKey: privateKey,
		address:    crypto.PubkeyToAddress(privateKey.PublicKey),
	}, nil
}

// Address returns the address derived from the wallet's public key.
func (w *Wallet) Address() common.Address {
	return w.address
}

// PrivateKeyHex returns the private key as hex WITHOUT the 0x prefix.
// Keep this secret; never log it.
func (w *Wallet) PrivateKeyHex() string {
	return fmt.Sprintf("%x", crypto.FromECDSA(w.privateKey))
}

// SignTx signs an Ethereum-style transaction for the given chain.
func (w *Wallet) SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), w.privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}
	return signed, nil
}

// SignHash signs a 32-byte digest and returns the 65-byte [R || S || V]
// signature with V already shifted to 27/28.
func (w *Wallet) SignHash(hash []byte) ([]byte, error) {
	if len(hash) != 32 {
		return nil, fmt.Errorf("hash must be 32 bytes, got %d", len(hash))
	}
	sig, err := crypto.Sign(hash, w.privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to sign: %w", err)
	}
	sig[64] += 27
	return sig, nil
}
