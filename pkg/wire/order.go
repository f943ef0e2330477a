package wire

import "github.com/shopspring/decimal"

// Side, order type and order mode enums as the server encodes them.
const (
	SideBuy  = 0
	SideSell = 1

	OrderTypeLimit  = 0
	OrderTypeMarket = 1

	OrderModeBase  = 0 // quantity denominated in base token
	OrderModeQuote = 1 // quantity denominated in quote token
)

// TPSL is the optional take-profit / stop-loss trio attached to an order.
// Each field is independently optional; if all three are absent the object
// is omitted from the wire payload entirely.
type TPSL struct {
	TpLimit   *decimal.Decimal
	SlTrigger *decimal.Decimal
	SlLimit   *decimal.Decimal
}

type tpslWire struct {
	TpLimit   *string `json:"tpLimit,omitempty"`
	SlTrigger *string `json:"slTrigger,omitempty"`
	SlLimit   *string `json:"slLimit,omitempty"`
}

func (t *TPSL) empty() bool {
	return t == nil || (t.TpLimit == nil && t.SlTrigger == nil && t.SlLimit == nil)
}

func (t *TPSL) wire() *tpslWire {
	return &tpslWire{
		TpLimit:   formatOpt(t.TpLimit, DefaultPrecision),
		SlTrigger: formatOpt(t.SlTrigger, DefaultPrecision),
		SlLimit:   formatOpt(t.SlLimit, DefaultPrecision),
	}
}

// Order places a limit or market order on a base/quote market.
type Order struct {
	L1Owner    string
	BaseToken  string
	QuoteToken string
	Side       int
	Price      decimal.Decimal
	Quantity   decimal.Decimal
	OrderType  int
	OrderMode  int
	Tpsl       *TPSL
}

type orderWire struct {
	L1Owner    string    `json:"l1owner"`
	BaseToken  string    `json:"baseToken"`
	QuoteToken string    `json:"quoteToken"`
	Side       int       `json:"side"`
	Price      string    `json:"price"`
	Quantity   string    `json:"quantity"`
	OrderType  int       `json:"orderType"`
	OrderMode  int       `json:"orderMode"`
	Tpsl       *tpslWire `json:"tpsl,omitempty"`
}

func (o Order) Tag() Tag { return TagOrder }

func (o Order) Wire() (any, error) {
	owner, err := NormalizeAddress(o.L1Owner)
	if err != nil {
		return nil, err
	}
	base, err := nonEmpty("baseToken", o.BaseToken)
	if err != nil {
		return nil, err
	}
	quote, err := nonEmpty("quoteToken", o.QuoteToken)
	if err != nil {
		return nil, err
	}
	if err := enum01("side", o.Side); err != nil {
		return nil, err
	}
	if err := enum01("orderType", o.OrderType); err != nil {
		return nil, err
	}
	if err := enum01("orderMode", o.OrderMode); err != nil {
		return nil, err
	}
	w := orderWire{
		L1Owner:    owner,
		BaseToken:  base,
		QuoteToken: quote,
		Side:       o.Side,
		Price:      FormatDecimal(o.Price, DefaultPrecision),
		Quantity:   FormatDecimal(o.Quantity, DefaultPrecision),
		OrderType:  o.OrderType,
		OrderMode:  o.OrderMode,
	}
	if !o.Tpsl.empty() {
		w.Tpsl = o.Tpsl.wire()
	}
	return w, nil
}

// StopOrder places an order armed by a stop trigger price.
type StopOrder struct {
	L1Owner    string
	BaseToken  string
	QuoteToken string
	StopPrice  decimal.Decimal
	Price      decimal.Decimal
	Quantity   decimal.Decimal
	Side       int
	OrderType  int
	OrderMode  int
}

type stopOrderWire struct {
	L1Owner    string `json:"l1owner"`
	BaseToken  string `json:"baseToken"`
	QuoteToken string `json:"quoteToken"`
	StopPrice  string `json:"stopPrice"`
	Price      string `json:"price"`
	Quantity   string `json:"quantity"`
	Side       int    `json:"side"`
	OrderType  int    `json:"orderType"`
	OrderMode  int    `json:"orderMode"`
}

func (o StopOrder) Tag() Tag { return TagStopOrder }

func (o StopOrder) Wire() (any, error) {
	owner, err := NormalizeAddress(o.L1Owner)
	if err != nil {
		return nil, err
	}
	base, err := nonEmpty("baseToken", o.BaseToken)
	if err != nil {
		return nil, err
	}
	quote, err := nonEmpty("quoteToken", o.QuoteToken)
	if err != nil {
		return nil, err
	}
	if err := enum01("side", o.Side); err != nil {
		return nil, err
	}
	if err := enum01("orderType", o.OrderType); err != nil {
		return nil, err
	}
	if err := enum01("orderMode", o.OrderMode); err != nil {
		return nil, err
	}
	return stopOrderWire{
		L1Owner:    owner,
		BaseToken:  base,
		QuoteToken: quote,
		StopPrice:  FormatDecimal(o.StopPrice, DefaultPrecision),
		Price:      FormatDecimal(o.Price, DefaultPrecision),
		Quantity:   FormatDecimal(o.Quantity, DefaultPrecision),
		Side:       o.Side,
		OrderType:  o.OrderType,
		OrderMode:  o.OrderMode,
	}, nil
}
