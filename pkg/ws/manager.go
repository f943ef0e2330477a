package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// PingInterval is how often the keep-alive task sends a ping frame.
const PingInterval = 50 * time.Second

var (
	// ErrNotReady is returned when the connection failed to become ready
	// within the caller's deadline. Distinguishable from validation and
	// configuration errors via errors.Is.
	ErrNotReady = errors.New("websocket is not ready")
	// ErrClosed is returned for calls made after Stop. A stopped Manager
	// is terminal; construct a new one to reconnect.
	ErrClosed = errors.New("websocket manager is stopped")
	// ErrDuplicateSubscription is returned for a second concurrent user
	// event subscription on the same target. The exchange permits one live
	// user-event stream registration per target per connection.
	ErrDuplicateSubscription = errors.New("duplicate user event subscription is not supported")
)

// State tracks the connection lifecycle.
type State int32

const (
	StateConnecting State = iota
	StateReady
	StateClosing
	StateClosed
)

// Callback receives the raw "result" payload of a subscription push.
type Callback func(result json.RawMessage)

type subscription struct {
	id int64
	cb Callback
}

type controlMessage struct {
	Method string         `json:"method"`
	Params *controlParams `json:"params,omitempty"`
	ID     int64          `json:"id,omitempty"`
}

type controlParams struct {
	Channels []string `json:"channels"`
}

// envelope covers every inbound frame shape: acks carry jsonrpc/id/result,
// subscription pushes carry method/params.
type envelope struct {
	Jsonrpc string          `json:"jsonrpc"`
	ID      *int64          `json:"id"`
	Result  json.RawMessage `json:"result"`
	Method  string          `json:"method"`
	Params  struct {
		Channel string          `json:"channel"`
		Result  json.RawMessage `json:"result"`
	} `json:"params"`
}

// Manager owns one persistent websocket connection and a registry mapping
// routing keys to subscriber callbacks. It composes, rather than is, its
// background work: a receive loop and a keep-alive sender, both started by
// Start and joined by Stop.
type Manager struct {
	url     string
	markets MarketResolver
	log     *zap.Logger

	conn   *websocket.Conn
	sendMu sync.Mutex // gorilla conns allow one concurrent writer

	mu   sync.RWMutex
	subs map[string][]subscription

	nextID atomic.Int64
	state  atomic.Int32

	ready     chan struct{}
	readyOnce sync.Once
	stop      chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
}

// NewManager builds a Manager for the exchange at baseURL (http or https;
// the websocket endpoint is derived). markets may be nil if only raw market
// ids and user event channels will be used. logger may be nil.
func NewManager(baseURL string, markets MarketResolver, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		url:     wsURL(baseURL),
		markets: markets,
		log:     logger,
		subs:    make(map[string][]subscription),
		ready:   make(chan struct{}),
		stop:    make(chan struct{}),
	}
}

func wsURL(baseURL string) string {
	u := baseURL
	if strings.HasPrefix(u, "http") {
		u = "ws" + u[len("http"):]
	}
	return u + "/ws"
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	return State(m.state.Load())
}

// Start dials the connection and launches the receive and keep-alive
// loops. It may be called once; the manager is ready as soon as the
// transport-level open completes.
func (m *Manager) Start(ctx context.Context) error {
	if m.State() != StateConnecting {
		return ErrClosed
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, m.url, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", m.url, err)
	}
	m.conn = conn
	m.markReady()

	m.wg.Add(2)
	go m.readLoop()
	go m.pingLoop()
	return nil
}

func (m *Manager) markReady() {
	m.readyOnce.Do(func() {
		m.state.CompareAndSwap(int32(StateConnecting), int32(StateReady))
		close(m.ready)
	})
}

// waitReady blocks until the connection is ready, the context expires, or
// the manager stops. This is the only caller-observable blocking point.
func (m *Manager) waitReady(ctx context.Context) error {
	if s := m.State(); s == StateClosing || s == StateClosed {
		return ErrClosed
	}
	select {
	case <-m.ready:
		return nil
	case <-m.stop:
		return ErrClosed
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrNotReady, ctx.Err())
	}
}

// Subscribe registers callback under the given "type@target" channel and
// sends the subscribe control message. It blocks until the connection is
// ready or ctx expires. The subscription id is allocated from a monotonic
// counter and returned for use with Unsubscribe.
func (m *Manager) Subscribe(ctx context.Context, channel string, callback Callback) (int64, error) {
	return m.SubscribeWithID(ctx, channel, m.nextID.Add(1), callback)
}

// SubscribeWithID is Subscribe with a caller-supplied subscription id.
func (m *Manager) SubscribeWithID(ctx context.Context, channel string, id int64, callback Callback) (int64, error) {
	ch, err := ParseChannel(channel, m.markets)
	if err != nil {
		return 0, err
	}
	if err := m.waitReady(ctx); err != nil {
		return 0, err
	}

	key := ch.RoutingKey()
	m.mu.Lock()
	if ch.Kind == KindUserEvent && len(m.subs[key]) != 0 {
		m.mu.Unlock()
		return 0, fmt.Errorf("%w: %s", ErrDuplicateSubscription, key)
	}
	m.subs[key] = append(m.subs[key], subscription{id: id, cb: callback})
	m.mu.Unlock()

	m.log.Debug("subscribing", zap.String("channel", ch.Wire()), zap.Int64("id", id))
	if err := m.send(controlMessage{
		Method: "subscribe",
		Params: &controlParams{Channels: []string{ch.Wire()}},
		ID:     id,
	}); err != nil {
		m.removeSubscriber(key, id)
		return 0, err
	}
	return id, nil
}

// Unsubscribe removes the (callback, id) pair registered under channel.
// Only when the last subscriber for the routing key departs is the
// outbound unsubscribe control message sent, so other subscribers on the
// same channel keep receiving data. Reports whether an entry was removed.
func (m *Manager) Unsubscribe(ctx context.Context, channel string, id int64) (bool, error) {
	ch, err := ParseChannel(channel, m.markets)
	if err != nil {
		return false, err
	}
	if err := m.waitReady(ctx); err != nil {
		return false, err
	}

	key := ch.RoutingKey()
	removed, empty := m.removeSubscriber(key, id)
	if removed && empty {
		if err := m.send(controlMessage{
			Method: "unsubscribe",
			Params: &controlParams{Channels: []string{ch.Wire()}},
			ID:     id,
		}); err != nil {
			return true, err
		}
	}
	return removed, nil
}

func (m *Manager) removeSubscriber(key string, id int64) (removed, empty bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	current := m.subs[key]
	next := current[:0:0]
	for _, s := range current {
		if s.id != id {
			next = append(next, s)
		}
	}
	if len(next) == 0 {
		delete(m.subs, key)
	} else {
		m.subs[key] = next
	}
	return len(next) != len(current), len(next) == 0
}

func (m *Manager) send(v any) error {
	m.sendMu.Lock()
	defer m.sendMu.Unlock()
	return m.conn.WriteJSON(v)
}

func (m *Manager) readLoop() {
	defer m.wg.Done()
	for {
		_, raw, err := m.conn.ReadMessage()
		if err != nil {
			if m.State() == StateClosing || m.State() == StateClosed {
				m.log.Debug("websocket receive loop stopped")
			} else {
				m.log.Error("websocket read failed", zap.Error(err))
			}
			return
		}
		m.handleMessage(raw)
	}
}

// handleMessage classifies one inbound frame and dispatches it. Every
// failure mode here is contained: a bad or future-incompatible frame is
// logged and dropped, never allowed to take down the receive loop.
func (m *Manager) handleMessage(raw []byte) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		m.log.Error("websocket frame is not valid JSON", zap.Error(err))
		return
	}

	if isAck(&env) {
		m.log.Debug("websocket connection acknowledged")
		m.markReady()
		return
	}
	if env.Method != "subscription" {
		m.log.Debug("websocket not handling non-subscription message")
		return
	}
	if isPong(env.Params.Channel) {
		m.log.Debug("websocket received pong")
		return
	}

	key, err := routeInbound(env.Params.Channel, env.Params.Result)
	if err != nil {
		m.log.Error("unknown channel", zap.String("channel", env.Params.Channel), zap.Error(err))
		return
	}
	if key == "" {
		m.log.Debug("websocket not handling empty message")
		return
	}

	m.mu.RLock()
	subscribers := append([]subscription(nil), m.subs[key]...)
	m.mu.RUnlock()

	if len(subscribers) == 0 {
		// Likely a race with an in-flight unsubscribe; benign.
		m.log.Error("websocket message from an unexpected subscription",
			zap.String("identifier", key))
		return
	}
	for _, s := range subscribers {
		m.dispatch(s, key, env.Params.Result)
	}
}

// dispatch isolates one callback invocation so a panicking subscriber
// cannot corrupt delivery to the others or kill the receive loop.
func (m *Manager) dispatch(s subscription, key string, result json.RawMessage) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Error("subscriber callback panicked",
				zap.String("identifier", key), zap.Int64("id", s.id), zap.Any("panic", r))
		}
	}()
	s.cb(result)
}

func isAck(env *envelope) bool {
	if env.Jsonrpc != "2.0" || env.ID == nil || len(env.Result) == 0 {
		return false
	}
	var s string
	return json.Unmarshal(env.Result, &s) == nil
}

func isPong(channel string) bool {
	return channel == "pong"
}

func (m *Manager) pingLoop() {
	defer m.wg.Done()
	ticker := time.NewTicker(PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-m.stop:
			m.log.Debug("websocket ping sender stopped")
			return
		case <-ticker.C:
			m.log.Debug("websocket sending ping")
			if err := m.send(controlMessage{Method: "ping"}); err != nil {
				m.log.Debug("websocket ping failed", zap.Error(err))
				return
			}
		}
	}
}

// Stop signals the keep-alive task, closes the socket, and waits for both
// background loops to finish. No background activity survives the call.
// Stop is terminal: the manager cannot be restarted.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		m.state.Store(int32(StateClosing))
		close(m.stop)
		if m.conn != nil {
			_ = m.conn.Close()
		}
		m.wg.Wait()
		m.state.Store(int32(StateClosed))
	})
}
