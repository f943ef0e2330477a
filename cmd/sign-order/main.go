package main

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/alphasec-dex/alphasec-go/params"
	"github.com/alphasec-dex/alphasec-go/pkg/sign"
	"github.com/alphasec-dex/alphasec-go/pkg/wire"
)

// Demonstrates the full offline signing flow: wallet, order command,
// encoded payload, raw transaction ready for POST /api/v1/order.
func main() {
	// Step 1: Generate or load key
	cfg, err := params.LoadFromEnv("")
	if err != nil {
		fmt.Println("No usable environment config, generating a throwaway keypair...")
		wallet, genErr := sign.GenerateWallet()
		if genErr != nil {
			fmt.Printf("Error: %v\n", genErr)
			os.Exit(1)
		}
		cfg = params.Config{
			L1Address:    wallet.Address().Hex(),
			L1PrivateKey: wallet.PrivateKeyHex(),
			Network:      params.Kairos,
		}
		fmt.Printf("Address: %s\n", wallet.Address().Hex())
		fmt.Printf("Private Key: %s (KEEP SECRET!)\n\n", wallet.PrivateKeyHex())
	}

	signer, err := sign.New(cfg)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	// Step 2: Create order
	order := wire.Order{
		L1Owner:    cfg.L1Address,
		BaseToken:  "5",
		QuoteToken: "2",
		Side:       wire.SideBuy,
		Price:      decimal.NewFromFloat(2500.5),
		Quantity:   decimal.NewFromFloat(1.25),
		OrderType:  wire.OrderTypeLimit,
		OrderMode:  wire.OrderModeBase,
	}

	fmt.Println("Order Details:")
	fmt.Printf("  Market: %s_%s\n", order.BaseToken, order.QuoteToken)
	fmt.Printf("  Side: %d (0=buy, 1=sell)\n", order.Side)
	fmt.Printf("  Price: %s\n", order.Price.String())
	fmt.Printf("  Quantity: %s\n", order.Quantity.String())
	fmt.Printf("  Owner: %s\n\n", order.L1Owner)

	// Step 3: Encode into the tagged command payload
	payload, err := wire.Encode(order)
	if err != nil {
		fmt.Printf("Error encoding: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Command tag: 0x%02x\n", payload[0])
	fmt.Printf("Command body: %s\n\n", payload[1:])

	// Step 4: Sign the transaction envelope
	nonce := time.Now().UnixMilli()
	rawTx, err := signer.Transaction(nonce, payload, nil)
	if err != nil {
		fmt.Printf("Error signing: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Nonce (ms): %d\n", nonce)
	fmt.Printf("Raw transaction: %s\n", rawTx)
	fmt.Println("\nPOST this as {\"tx\": \"<raw>\"} to /api/v1/order.")
}
