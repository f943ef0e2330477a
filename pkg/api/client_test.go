package api

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/alphasec-dex/alphasec-go/params"
	"github.com/alphasec-dex/alphasec-go/pkg/sign"
)

var testTokens = []Token{
	{TokenID: "0", L1Symbol: "KAIA", L1Address: "0x0000000000000000000000000000000000000000", Decimals: 18},
	{TokenID: "2", L1Symbol: "USDT", L1Address: "0x1100000000000000000000000000000000000011", Decimals: 6},
	{TokenID: "5", L1Symbol: "ETH", L1Address: "0x2200000000000000000000000000000000000022", Decimals: 18},
}

type gateway struct {
	srv       *httptest.Server
	tokenHits atomic.Int64
	lastPath  atomic.Value // string
	lastBody  atomic.Value // []byte
	orderCode int
}

func newGateway(t *testing.T) *gateway {
	t.Helper()
	g := &gateway{orderCode: http.StatusOK}
	mux := http.NewServeMux()

	reply := func(w http.ResponseWriter, code int, result any) {
		raw, err := json.Marshal(result)
		require.NoError(t, err)
		_ = json.NewEncoder(w).Encode(apiResponse{Code: code, Result: raw, Msg: http.StatusText(code)})
	}

	mux.HandleFunc("/api/v1/market/tokens", func(w http.ResponseWriter, r *http.Request) {
		g.tokenHits.Add(1)
		reply(w, http.StatusOK, testTokens)
	})
	mux.HandleFunc("/api/v1/market/ticker", func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("marketId")
		if id == "" {
			reply(w, http.StatusOK, []Ticker{{MarketID: "5_2"}, {MarketID: "0_2"}})
			return
		}
		reply(w, http.StatusOK, []Ticker{{MarketID: id, Price: "2500.5"}})
	})
	mux.HandleFunc("/api/v1/wallet/balance", func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, []Balance{{TokenID: "2", Available: "100", Locked: "0"}})
	})
	mux.HandleFunc("/api/v1/order/open", func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, []OrderInfo{{OrderID: "o1", MarketID: r.URL.Query().Get("marketId")}})
	})
	mux.HandleFunc("/api/v1/order/missing", func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusNotFound, nil)
	})
	record := func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		g.lastPath.Store(r.URL.Path)
		g.lastBody.Store(raw)
		reply(w, g.orderCode, "ok")
	}
	mux.HandleFunc("/api/v1/order", record)
	mux.HandleFunc("/api/v1/wallet/", record)

	g.srv = httptest.NewServer(mux)
	t.Cleanup(g.srv.Close)
	return g
}

func (g *gateway) lastTx(t *testing.T) txRequest {
	t.Helper()
	raw, _ := g.lastBody.Load().([]byte)
	require.NotEmpty(t, raw)
	var req txRequest
	require.NoError(t, json.Unmarshal(raw, &req))
	return req
}

func newTestSigner(t *testing.T) *sign.Signer {
	t.Helper()
	w, err := sign.GenerateWallet()
	require.NoError(t, err)
	s, err := sign.New(params.Config{
		L1Address:    w.Address().Hex(),
		L1PrivateKey: w.PrivateKeyHex(),
		Network:      params.Kairos,
	})
	require.NoError(t, err)
	return s
}

func TestMarketIDResolutionAndCaching(t *testing.T) {
	g := newGateway(t)
	c := NewClient(g.srv.URL, time.Second, nil, nil)

	id, err := c.MarketID("ETH/USDT")
	require.NoError(t, err)
	require.Equal(t, "5_2", id)

	id, err = c.MarketID("KAIA/USDT")
	require.NoError(t, err)
	require.Equal(t, "0_2", id)

	_, err = c.MarketID("DOGE/USDT")
	require.Error(t, err)

	_, err = c.MarketID("no-separator")
	require.Error(t, err)

	require.Equal(t, int64(1), g.tokenHits.Load(), "token metadata should be fetched once")

	require.NoError(t, c.RefreshTokens(context.Background()))
	require.Equal(t, int64(2), g.tokenHits.Load())
}

func TestTokenL1Address(t *testing.T) {
	g := newGateway(t)
	c := NewClient(g.srv.URL, time.Second, nil, nil)

	addr, err := c.TokenL1Address(context.Background(), "5")
	require.NoError(t, err)
	require.Equal(t, "0x2200000000000000000000000000000000000022", addr)

	_, err = c.TokenL1Address(context.Background(), "99")
	require.Error(t, err)
}

func TestTickerAndBalance(t *testing.T) {
	g := newGateway(t)
	c := NewClient(g.srv.URL, time.Second, nil, nil)
	ctx := context.Background()

	tick, err := c.Ticker(ctx, "ETH/USDT")
	require.NoError(t, err)
	require.Equal(t, "5_2", tick.MarketID)
	require.Equal(t, "2500.5", tick.Price)

	ticks, err := c.Tickers(ctx)
	require.NoError(t, err)
	require.Len(t, ticks, 2)

	bals, err := c.Balance(ctx, "0xaa00000000000000000000000000000000000000")
	require.NoError(t, err)
	require.Len(t, bals, 1)
	require.Equal(t, "100", bals[0].Available)

	_, err = c.Balance(ctx, "junk")
	require.Error(t, err)
}

func TestOpenOrders(t *testing.T) {
	g := newGateway(t)
	c := NewClient(g.srv.URL, time.Second, nil, nil)

	orders, err := c.OpenOrders(context.Background(), "0xaa00000000000000000000000000000000000000", "ETH/USDT", HistoryQuery{})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Equal(t, "5_2", orders[0].MarketID)
	require.NotEmpty(t, orders[0].Raw)
}

func TestReadOnlyClientRejectsWrites(t *testing.T) {
	g := newGateway(t)
	c := NewClient(g.srv.URL, time.Second, nil, nil)
	ctx := context.Background()

	one := decimal.New(1, 0)
	require.ErrorIs(t, c.Order(ctx, "ETH/USDT", 0, one, one, 0, 0, nil), ErrReadOnly)
	require.ErrorIs(t, c.Cancel(ctx, "o1"), ErrReadOnly)
	require.ErrorIs(t, c.CancelAll(ctx), ErrReadOnly)
	require.ErrorIs(t, c.ValueTransfer(ctx, "0xbb00000000000000000000000000000000000000", one), ErrReadOnly)
	require.True(t, c.ReadOnly())
}

func TestOrderSubmitsSignedTransaction(t *testing.T) {
	g := newGateway(t)
	signer := newTestSigner(t)
	c := NewClient(g.srv.URL, time.Second, signer, nil)

	err := c.Order(context.Background(), "ETH/USDT", 0,
		decimal.RequireFromString("2500.5"), decimal.RequireFromString("1.25"), 0, 0, nil)
	require.NoError(t, err)

	require.Equal(t, "/api/v1/order", g.lastPath.Load())
	req := g.lastTx(t)
	require.Empty(t, req.SessionID)
	require.True(t, strings.HasPrefix(req.Tx, "0x"))
	require.Greater(t, len(req.Tx), 10)

	raw, err := hex.DecodeString(req.Tx[2:])
	require.NoError(t, err)
	var tx types.Transaction
	require.NoError(t, tx.UnmarshalBinary(raw))
	require.Equal(t, params.OrderContract, *tx.To())

	var body map[string]any
	require.NoError(t, json.Unmarshal(tx.Data()[1:], &body))
	require.Equal(t, "5", body["baseToken"])
	require.Equal(t, "2", body["quoteToken"])
	require.Equal(t, "2500.5", body["price"])
}

func TestRejectedRequestSurfaces(t *testing.T) {
	g := newGateway(t)
	g.orderCode = http.StatusBadRequest
	signer := newTestSigner(t)
	c := NewClient(g.srv.URL, time.Second, signer, nil)

	err := c.CancelAll(context.Background())
	require.ErrorIs(t, err, ErrRequestRejected)
}

func TestResolveBridgeToken(t *testing.T) {
	g := newGateway(t)
	c := NewClient(g.srv.URL, time.Second, nil, nil)
	ctx := context.Background()

	native, _, err := c.resolveBridgeToken(ctx, "KAIA")
	require.NoError(t, err)
	require.True(t, native)

	native, addr, err := c.resolveBridgeToken(ctx, "ETH")
	require.NoError(t, err)
	require.False(t, native)
	require.Equal(t, "0x2200000000000000000000000000000000000022", strings.ToLower(addr.Hex()))

	_, _, err = c.resolveBridgeToken(ctx, "DOGE")
	require.Error(t, err)

	_, err = c.Deposit(ctx, "KAIA", nil)
	require.ErrorIs(t, err, ErrReadOnly)
	_, err = c.Withdraw(ctx, "KAIA", nil)
	require.ErrorIs(t, err, ErrReadOnly)
}

func TestOrderByIDNotFound(t *testing.T) {
	g := newGateway(t)
	c := NewClient(g.srv.URL, time.Second, nil, nil)

	info, err := c.OrderByID(context.Background(), "missing")
	require.NoError(t, err)
	require.Nil(t, info)
}

func TestCreateSessionRequest(t *testing.T) {
	g := newGateway(t)
	signer := newTestSigner(t)
	c := NewClient(g.srv.URL, time.Second, signer, nil)

	sessionWallet, err := sign.GenerateWallet()
	require.NoError(t, err)

	expiry := time.Now().Add(24 * time.Hour).UnixMilli()
	id, err := c.CreateSession(context.Background(), "", sessionWallet, expiry)
	require.NoError(t, err)
	require.NotEmpty(t, id, "empty session id should be replaced with a generated one")

	req := g.lastTx(t)
	require.Equal(t, id, req.SessionID)

	// The envelope is signed by the session wallet being registered.
	raw, err := hex.DecodeString(req.Tx[2:])
	require.NoError(t, err)
	var tx types.Transaction
	require.NoError(t, tx.UnmarshalBinary(raw))
	sender, err := types.Sender(types.LatestSignerForChainID(tx.ChainId()), &tx)
	require.NoError(t, err)
	require.Equal(t, sessionWallet.Address(), sender)
}
