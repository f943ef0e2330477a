// Package agent bundles the REST client and the websocket manager behind
// one handle so callers wire a single URL and signer.
package agent

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/alphasec-dex/alphasec-go/pkg/api"
	"github.com/alphasec-dex/alphasec-go/pkg/sign"
	"github.com/alphasec-dex/alphasec-go/pkg/ws"
)

// Agent exposes the full REST surface through the embedded client and adds
// stream subscriptions on top. signer may be nil for market-data-only use.
type Agent struct {
	*api.Client
	ws *ws.Manager
}

// New builds an agent against baseURL. The websocket connection is not
// opened until Start.
func New(baseURL string, timeout time.Duration, signer *sign.Signer, logger *zap.Logger) *Agent {
	if logger == nil {
		logger = zap.NewNop()
	}
	client := api.NewClient(baseURL, timeout, signer, logger)
	return &Agent{
		Client: client,
		ws:     ws.NewManager(baseURL, client, logger),
	}
}

// Start opens the websocket connection and blocks until it is ready for
// subscriptions or ctx expires.
func (a *Agent) Start(ctx context.Context) error {
	return a.ws.Start(ctx)
}

// Stop tears down the websocket connection. The REST client stays usable.
func (a *Agent) Stop() {
	a.ws.Stop()
}

// Subscribe attaches callback to a channel given as "type@target", for
// example "trade@KAIA/USDT" or "userEvent@0xabc...". Market names are
// resolved through the REST metadata cache. The returned id identifies the
// subscription for Unsubscribe.
func (a *Agent) Subscribe(ctx context.Context, channel string, callback ws.Callback) (int64, error) {
	return a.ws.Subscribe(ctx, channel, callback)
}

// Unsubscribe detaches the subscription id from a channel. It reports
// whether the id was attached.
func (a *Agent) Unsubscribe(ctx context.Context, channel string, id int64) (bool, error) {
	return a.ws.Unsubscribe(ctx, channel, id)
}
