package bridge

import (
	"encoding/hex"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/alphasec-dex/alphasec-go/params"
	"github.com/alphasec-dex/alphasec-go/pkg/sign"
)

func TestNewRequiresOwnerKey(t *testing.T) {
	w, err := sign.GenerateWallet()
	if err != nil {
		t.Fatal(err)
	}

	// Session-only signer: no L1 key, bridging impossible.
	s, err := sign.New(params.Config{
		L1Address:      w.Address().Hex(),
		L2PrivateKey:   w.PrivateKeyHex(),
		SessionEnabled: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := New(s, nil); !errors.Is(err, ErrNoOwnerKey) {
		t.Fatalf("err = %v, want ErrNoOwnerKey", err)
	}

	s, err = sign.New(params.Config{
		L1Address:    w.Address().Hex(),
		L1PrivateKey: w.PrivateKeyHex(),
	})
	if err != nil {
		t.Fatal(err)
	}
	b, err := New(s, nil)
	if err != nil {
		t.Fatal(err)
	}
	if b.ownerAt != w.Address() {
		t.Errorf("owner address = %s, want %s", b.ownerAt.Hex(), w.Address().Hex())
	}
}

func TestERC20Selectors(t *testing.T) {
	owner := common.HexToAddress("0xaa00000000000000000000000000000000000000")
	spender := common.HexToAddress("0xbb00000000000000000000000000000000000000")

	input, err := erc20ABI.Pack("allowance", owner, spender)
	if err != nil {
		t.Fatal(err)
	}
	if got := hex.EncodeToString(input[:4]); got != "dd62ed3e" {
		t.Errorf("allowance selector = %s, want dd62ed3e", got)
	}
	if len(input) != 4+2*32 {
		t.Errorf("allowance calldata length = %d, want 68", len(input))
	}

	input, err = erc20ABI.Pack("approve", spender, big.NewInt(1000))
	if err != nil {
		t.Fatal(err)
	}
	if got := hex.EncodeToString(input[:4]); got != "095ea7b3" {
		t.Errorf("approve selector = %s, want 095ea7b3", got)
	}
}

func TestRetryableTicketData(t *testing.T) {
	data, err := retryableTicketData()
	if err != nil {
		t.Fatal(err)
	}
	// (uint256, bytes) with empty bytes: value word, offset word, length word.
	if len(data) != 3*32 {
		t.Fatalf("ticket data length = %d, want 96", len(data))
	}
	got := new(big.Int).SetBytes(data[:32])
	if got.Cmp(maxSubmissionCost) != 0 {
		t.Errorf("first word = %s, want maxSubmissionCost %s", got, maxSubmissionCost)
	}
}

func TestOutboundTransferPacks(t *testing.T) {
	token := common.HexToAddress("0xcc00000000000000000000000000000000000000")
	to := common.HexToAddress("0xdd00000000000000000000000000000000000000")
	ticket, err := retryableTicketData()
	if err != nil {
		t.Fatal(err)
	}

	if _, err := erc20RouterABI.Pack("outboundTransfer",
		token, to, big.NewInt(5), l2GasLimit, l2GasPrice, ticket); err != nil {
		t.Errorf("L1 router pack: %v", err)
	}
	if _, err := l2RouterABI.Pack("outboundTransfer", token, to, big.NewInt(5), []byte{}); err != nil {
		t.Errorf("L2 router pack: %v", err)
	}
	if _, err := l2SystemABI.Pack("withdrawEth", to); err != nil {
		t.Errorf("withdrawEth pack: %v", err)
	}
	if data, err := inboxABI.Pack("depositEth"); err != nil || len(data) != 4 {
		t.Errorf("depositEth pack: data=%x err=%v", data, err)
	}
}
