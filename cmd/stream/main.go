package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/alphasec-dex/alphasec-go/params"
	"github.com/alphasec-dex/alphasec-go/pkg/agent"
	"github.com/alphasec-dex/alphasec-go/pkg/util"
)

// Streams public market data for one market until interrupted.
func main() {
	market := flag.String("market", "KAIA/USDT", "market to watch, BASE/QUOTE")
	network := flag.String("network", string(params.Kairos), "mainnet or kairos")
	flag.Parse()

	logFile := os.Getenv("LOG_FILE")
	if logFile == "" {
		logFile = "data/stream.log"
	}
	logger, err := util.NewLoggerWithFile(logFile)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	net := params.Network(*network)
	a := agent.New(net.Endpoint(), 10*time.Second, nil, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	if err := a.Start(ctx); err != nil {
		cancel()
		logger.Fatal("websocket start failed", zap.Error(err))
	}
	cancel()

	print := func(name string) func(json.RawMessage) {
		return func(msg json.RawMessage) {
			logger.Info(name, zap.String("market", *market), zap.ByteString("payload", msg))
		}
	}
	for _, kind := range []string{"trade", "ticker", "depth"} {
		if _, err := a.Subscribe(context.Background(), kind+"@"+*market, print(kind)); err != nil {
			logger.Fatal("subscribe failed", zap.String("kind", kind), zap.Error(err))
		}
	}
	logger.Info("streaming", zap.String("market", *market), zap.String("network", *network))

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	a.Stop()
	logger.Info("stopped")
}
