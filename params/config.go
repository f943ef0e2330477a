package params

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
)

// Network selects which Alphasec deployment the client talks to.
type Network string

const (
	Mainnet Network = "mainnet"
	Kairos  Network = "kairos"
)

// Chain identifiers. The L2 chain id goes into every signed transaction
// envelope; the typed-data chain id is fixed by the session registration
// domain and does not vary per network.
const (
	L2ChainID        = 412346
	TypedDataChainID = 1001
)

// NativeTokenID is the token id the exchange assigns to the chain's
// native asset.
const NativeTokenID = "0"

// Endpoint returns the REST base URL for the given network.
func (n Network) Endpoint() string {
	if n == Mainnet {
		return "https://api.alphasec.trade"
	}
	return "https://api-kairos.alphasec.trade"
}

// L1RPC returns the L1 JSON-RPC endpoint for the given network.
func (n Network) L1RPC() string {
	if n == Mainnet {
		return "https://public-en.node.kaia.io"
	}
	return "https://public-en-kairos.node.kaia.io"
}

// L2RPC returns the Alphasec rollup JSON-RPC endpoint.
func (n Network) L2RPC() string {
	if n == Mainnet {
		return "https://rpc.alphasec.trade"
	}
	return "https://rpc-kairos.alphasec.trade"
}

// System contract addresses on the rollup. The order contract is the fixed
// destination of every exchange command envelope.
var (
	OrderContract       = common.HexToAddress("0x0000000000000000000000000000000000000064")
	L2SystemContract    = common.HexToAddress("0x0000000000000000000000000000000000000065")
	L2GatewayRouter     = common.HexToAddress("0x0000000000000000000000000000000000000066")
	ZKInterfaceContract = common.HexToAddress("0x0000000000000000000000000000000000000068")
)

// L1 bridge contracts, per network.
var (
	mainnetInbox        = common.HexToAddress("0x5aE31574FB2a2c0E4f1bDE93A56a7bd6a32c6B1f")
	mainnetOutbox       = common.HexToAddress("0x129De8D1c7E9a58a5cbA1cE59Bf4F19B19fb5cF4")
	mainnetERC20Gateway = common.HexToAddress("0x9b0C6A4dD2f4a2A1cE8bC3dA09c5c3bD5f1E0A27")
	mainnetERC20Router  = common.HexToAddress("0x2E76A0Db4e2f8A8ce54D0b3bBB55E3E00cC9E2c9")

	kairosInbox        = common.HexToAddress("0xA7Fd3F441f5E9a7318c8a84930c0b2c4cF1aB0e3")
	kairosOutbox       = common.HexToAddress("0xD3c2fB2aD1c0aF40bCfB6d8E5b2C44a0cE3aD9f1")
	kairosERC20Gateway = common.HexToAddress("0x6cfE4E38cE9cF7cb23C9bD11cA15b2EaB73a2D84")
	kairosERC20Router  = common.HexToAddress("0x1D8eF1cB2B0F5E24ad6E0ecF79cD3aB37cA2f8B5")
)

// Inbox returns the L1 inbox contract used for native deposits.
func (n Network) Inbox() common.Address {
	if n == Mainnet {
		return mainnetInbox
	}
	return kairosInbox
}

// Outbox returns the L1 outbox contract that finalizes withdrawals.
func (n Network) Outbox() common.Address {
	if n == Mainnet {
		return mainnetOutbox
	}
	return kairosOutbox
}

// ERC20Gateway returns the L1 ERC20 gateway (approval target for deposits).
func (n Network) ERC20Gateway() common.Address {
	if n == Mainnet {
		return mainnetERC20Gateway
	}
	return kairosERC20Gateway
}

// ERC20Router returns the L1 ERC20 gateway router for deposits.
func (n Network) ERC20Router() common.Address {
	if n == Mainnet {
		return mainnetERC20Router
	}
	return kairosERC20Router
}

// Config carries the client's identity and network selection.
type Config struct {
	L1Address      string        `json:"l1_address"`
	L1PrivateKey   string        `json:"l1_wallet,omitempty"`
	L2PrivateKey   string        `json:"l2_wallet,omitempty"`
	SessionEnabled bool          `json:"session_enabled,omitempty"`
	Network        Network       `json:"network,omitempty"`
	Timeout        time.Duration `json:"-"`
}

var (
	ErrMissingAddress = errors.New("l1_address should be set")
	ErrMissingWallet  = errors.New("l1_wallet, l2_wallet are not set")
	ErrSessionNoKey   = errors.New("session_enabled is set but l2_wallet is not set")
)

// Validate checks the required-field rules shared by every loading path.
func (c Config) Validate() error {
	if c.L1Address == "" {
		return ErrMissingAddress
	}
	if c.L1PrivateKey == "" && c.L2PrivateKey == "" {
		return ErrMissingWallet
	}
	if c.SessionEnabled && c.L2PrivateKey == "" {
		return ErrSessionNoKey
	}
	return nil
}

// Load reads config.json from dir and validates it.
func Load(dir string) (Config, error) {
	raw, err := os.ReadFile(filepath.Join(dir, "config.json"))
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config file: %w", err)
	}
	if cfg.Network == "" {
		cfg.Network = Kairos
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFromEnv loads configuration from a .env file (if present) and
// environment variables. Priority: ENV > .env file > defaults.
func LoadFromEnv(envPath string) (Config, error) {
	if envPath != "" {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load()
	}

	cfg := Config{Network: Kairos}
	if v := os.Getenv("ALPHASEC_L1_ADDRESS"); v != "" {
		cfg.L1Address = v
	}
	if v := os.Getenv("ALPHASEC_L1_PRIVATE_KEY"); v != "" {
		cfg.L1PrivateKey = v
	}
	if v := os.Getenv("ALPHASEC_L2_PRIVATE_KEY"); v != "" {
		cfg.L2PrivateKey = v
	}
	if v := os.Getenv("ALPHASEC_SESSION_ENABLED"); v != "" {
		cfg.SessionEnabled = v == "true"
	}
	if v := os.Getenv("ALPHASEC_NETWORK"); v != "" {
		cfg.Network = Network(v)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
