// Package ws multiplexes Alphasec market and user event streams over one
// persistent websocket connection, fanning inbound messages out to
// per-subscriber callbacks keyed by channel identifier.
package ws

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Kind discriminates the channel types the exchange serves. Classification
// and dispatch switch over it exhaustively; no substring matching, so a
// target that happens to contain "trade" cannot be misrouted.
type Kind int

const (
	KindTrade Kind = iota
	KindTicker
	KindDepth
	KindUserEvent
)

func (k Kind) String() string {
	switch k {
	case KindTrade:
		return "trade"
	case KindTicker:
		return "ticker"
	case KindDepth:
		return "depth"
	case KindUserEvent:
		return "userEvent"
	default:
		return "unknown"
	}
}

var (
	ErrBadChannel     = errors.New("channel format should be 'type@target'")
	ErrUnknownChannel = errors.New("unknown channel type")
	ErrBadAddress     = errors.New("user event target is not a valid address")
)

// MarketResolver translates a market pair symbol ("BASE/QUOTE") into the
// server's numeric market identifier ("5_2"). The REST client's token
// metadata cache implements it.
type MarketResolver interface {
	MarketID(market string) (string, error)
}

// Channel is a resolved subscription target: the wire-level channel string
// sent to the server and the routing key used for local dispatch.
type Channel struct {
	Kind   Kind
	Target string // market id for market-data kinds, address for user events
}

// Wire returns the channel string the server understands.
func (c Channel) Wire() string {
	return c.Kind.String() + "@" + c.Target
}

// RoutingKey returns the lower-cased internal dispatch key.
func (c Channel) RoutingKey() string {
	return routingKey(c.Kind, c.Target)
}

func routingKey(kind Kind, target string) string {
	return strings.ToLower(kind.String()) + ":" + strings.ToLower(target)
}

func parseKind(s string) (Kind, error) {
	switch s {
	case "trade":
		return KindTrade, nil
	case "ticker":
		return KindTicker, nil
	case "depth":
		return KindDepth, nil
	case "userEvent":
		return KindUserEvent, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownChannel, s)
	}
}

// ParseChannel parses a caller-facing "type@target" string. Market-data
// targets given as "BASE/QUOTE" symbols are resolved to market ids through
// markets; targets already in market-id form pass through. User event
// targets must be well-formed addresses and are used verbatim.
func ParseChannel(s string, markets MarketResolver) (Channel, error) {
	typ, target, ok := strings.Cut(s, "@")
	if !ok {
		return Channel{}, fmt.Errorf("%w, got: %q", ErrBadChannel, s)
	}
	kind, err := parseKind(typ)
	if err != nil {
		return Channel{}, err
	}
	if kind == KindUserEvent {
		if !common.IsHexAddress(target) {
			return Channel{}, fmt.Errorf("%w: %q", ErrBadAddress, target)
		}
		return Channel{Kind: kind, Target: target}, nil
	}
	if strings.Contains(target, "/") {
		if markets == nil {
			return Channel{}, fmt.Errorf("market symbol %q needs a market resolver", target)
		}
		id, err := markets.MarketID(target)
		if err != nil {
			return Channel{}, fmt.Errorf("resolve market %q: %w", target, err)
		}
		target = id
	}
	return Channel{Kind: kind, Target: target}, nil
}

// marketResult is the minimal shape needed to route a market-data push.
type marketResult struct {
	MarketID string `json:"marketId"`
}

func emptyResult(result json.RawMessage) bool {
	s := strings.TrimSpace(string(result))
	return s == "" || s == "null" || s == "[]" || s == "{}"
}

// routeInbound derives the routing key for a subscription push. An empty
// result is a heartbeat or empty batch: no key, no error, dropped silently.
// Market-data kinds take the market id from the payload body; user events
// take the target address from the channel string.
func routeInbound(channel string, result json.RawMessage) (string, error) {
	typ, target, ok := strings.Cut(channel, "@")
	if !ok {
		return "", fmt.Errorf("%w, got: %q", ErrBadChannel, channel)
	}
	kind, err := parseKind(typ)
	if err != nil {
		return "", err
	}
	if emptyResult(result) {
		return "", nil
	}
	switch kind {
	case KindTrade, KindTicker:
		var entries []marketResult
		if err := json.Unmarshal(result, &entries); err != nil {
			return "", fmt.Errorf("%s result: %w", typ, err)
		}
		if len(entries) == 0 {
			return "", nil
		}
		return routingKey(kind, entries[0].MarketID), nil
	case KindDepth:
		var book marketResult
		if err := json.Unmarshal(result, &book); err != nil {
			return "", fmt.Errorf("depth result: %w", err)
		}
		if book.MarketID == "" {
			return "", nil
		}
		return routingKey(kind, book.MarketID), nil
	case KindUserEvent:
		if !common.IsHexAddress(target) {
			return "", fmt.Errorf("%w: %q", ErrBadAddress, target)
		}
		return routingKey(kind, target), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownChannel, typ)
}
