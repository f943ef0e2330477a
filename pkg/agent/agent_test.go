package agent

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

// exchange serves just enough REST and websocket surface to exercise the
// facade: token metadata for market resolution, plus an echoing stream
// endpoint.
func exchange(t *testing.T) (*httptest.Server, chan *websocket.Conn) {
	t.Helper()
	conns := make(chan *websocket.Conn, 1)
	upgrader := websocket.Upgrader{}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/market/tokens", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":200,"result":[
			{"tokenId":"5","l1Symbol":"ETH","l1Address":"0x22","decimals":18},
			{"tokenId":"2","l1Symbol":"USDT","l1Address":"0x11","decimals":6}]}`))
	})
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conns <- conn
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, conns
}

func TestAgentSubscribeResolvesMarket(t *testing.T) {
	srv, conns := exchange(t)
	a := New(srv.URL, time.Second, nil, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, a.Start(ctx))
	defer a.Stop()

	got := make(chan json.RawMessage, 1)
	id, err := a.Subscribe(ctx, "trade@ETH/USDT", func(result json.RawMessage) {
		got <- result
	})
	require.NoError(t, err)

	var conn *websocket.Conn
	select {
	case conn = <-conns:
	case <-time.After(2 * time.Second):
		t.Fatal("no websocket connection")
	}

	// The server pushes under the resolved market id.
	require.NoError(t, conn.WriteJSON(map[string]any{
		"method": "subscription",
		"params": map[string]any{
			"channel": "trade@5_2",
			"result":  json.RawMessage(`[{"marketId":"5_2","px":"1800"}]`),
		},
	}))
	select {
	case result := <-got:
		require.Contains(t, string(result), `"px":"1800"`)
	case <-time.After(2 * time.Second):
		t.Fatal("callback never fired")
	}

	removed, err := a.Unsubscribe(ctx, "trade@ETH/USDT", id)
	require.NoError(t, err)
	require.True(t, removed)
}

func TestAgentRESTSurface(t *testing.T) {
	srv, _ := exchange(t)
	a := New(srv.URL, time.Second, nil, nil)

	// REST works without Start; the embedded client is independent of the
	// stream connection.
	id, err := a.MarketID("ETH/USDT")
	require.NoError(t, err)
	require.Equal(t, "5_2", id)
}
