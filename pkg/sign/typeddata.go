package sign

import (
	"fmt"
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"

	"github.com/alphasec-dex/alphasec-go/params"
)

// sessionTypedData builds the EIP-712 structure binding a session wallet to
// its expiry and nonce. The domain is fixed by the exchange protocol: the
// chain id here is the typed-data domain id, not the rollup chain id, and
// the verifying contract is the zero address because verification happens
// off-chain in the sequencer.
func sessionTypedData(sessionAddr common.Address, nonce, expiry int64) apitypes.TypedData {
	return apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": []apitypes.Type{
				{Name: "name", Type: "string"},
				{Name: "version", Type: "string"},
				{Name: "chainId", Type: "uint256"},
				{Name: "verifyingContract", Type: "address"},
			},
			"RegisterSessionWallet": []apitypes.Type{
				{Name: "sessionWallet", Type: "address"},
				{Name: "expiry", Type: "uint64"},
				{Name: "nonce", Type: "uint64"},
			},
		},
		PrimaryType: "RegisterSessionWallet",
		Domain: apitypes.TypedDataDomain{
			Name:              "DEXSignTransaction",
			Version:           "1",
			ChainId:           (*math.HexOrDecimal256)(big.NewInt(params.TypedDataChainID)),
			VerifyingContract: common.Address{}.Hex(),
		},
		Message: apitypes.TypedDataMessage{
			"sessionWallet": sessionAddr.Hex(),
			"expiry":        strconv.FormatInt(expiry, 10),
			"nonce":         strconv.FormatInt(nonce, 10),
		},
	}
}

// hashTypedData computes the EIP-712 digest:
// keccak256("\x19\x01" || domainSeparator || messageHash).
func hashTypedData(typedData apitypes.TypedData) ([]byte, error) {
	domainSeparator, err := typedData.HashStruct("EIP712Domain", typedData.Domain.Map())
	if err != nil {
		return nil, fmt.Errorf("failed to hash domain: %w", err)
	}
	messageHash, err := typedData.HashStruct(typedData.PrimaryType, typedData.Message)
	if err != nil {
		return nil, fmt.Errorf("failed to hash message: %w", err)
	}
	raw := make([]byte, 0, 2+len(domainSeparator)+len(messageHash))
	raw = append(raw, 0x19, 0x01)
	raw = append(raw, domainSeparator...)
	raw = append(raw, messageHash...)
	return crypto.Keccak256Hash(raw).Bytes(), nil
}

// signSessionRegistration signs the session typed data with the given
// wallet and returns the raw 65-byte signature.
func signSessionRegistration(w *Wallet, sessionAddr common.Address, nonce, expiry int64) ([]byte, error) {
	digest, err := hashTypedData(sessionTypedData(sessionAddr, nonce, expiry))
	if err != nil {
		return nil, err
	}
	return w.SignHash(digest)
}
