package bridge

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Minimal ABI fragments for the bridge contracts; only the functions the
// client actually calls.
const (
	inboxABIJSON = `[
		{"name":"depositEth","type":"function","stateMutability":"payable","inputs":[],"outputs":[]}
	]`
	erc20ABIJSON = `[
		{"name":"allowance","type":"function","stateMutability":"view","inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
		{"name":"approve","type":"function","stateMutability":"nonpayable","inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]}
	]`
	erc20RouterABIJSON = `[
		{"name":"outboundTransfer","type":"function","stateMutability":"payable","inputs":[{"name":"_token","type":"address"},{"name":"_to","type":"address"},{"name":"_amount","type":"uint256"},{"name":"_maxGas","type":"uint256"},{"name":"_gasPriceBid","type":"uint256"},{"name":"_data","type":"bytes"}],"outputs":[{"name":"","type":"bytes"}]}
	]`
	l2SystemABIJSON = `[
		{"name":"withdrawEth","type":"function","stateMutability":"payable","inputs":[{"name":"destination","type":"address"}],"outputs":[{"name":"","type":"uint256"}]}
	]`
	l2RouterABIJSON = `[
		{"name":"outboundTransfer","type":"function","stateMutability":"payable","inputs":[{"name":"_l1Token","type":"address"},{"name":"_to","type":"address"},{"name":"_amount","type":"uint256"},{"name":"_data","type":"bytes"}],"outputs":[{"name":"","type":"bytes"}]}
	]`
)

var (
	inboxABI       = mustABI(inboxABIJSON)
	erc20ABI       = mustABI(erc20ABIJSON)
	erc20RouterABI = mustABI(erc20RouterABIJSON)
	l2SystemABI    = mustABI(l2SystemABIJSON)
	l2RouterABI    = mustABI(l2RouterABIJSON)
)

func mustABI(s string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(s))
	if err != nil {
		panic(err)
	}
	return parsed
}
