package wire

import "github.com/shopspring/decimal"

// Cancel removes a single open order by id.
type Cancel struct {
	L1Owner string
	OrderID string
}

type cancelWire struct {
	L1Owner string `json:"l1owner"`
	OrderID string `json:"orderId"`
}

func (c Cancel) Tag() Tag { return TagCancel }

func (c Cancel) Wire() (any, error) {
	owner, err := NormalizeAddress(c.L1Owner)
	if err != nil {
		return nil, err
	}
	id, err := nonEmpty("orderId", c.OrderID)
	if err != nil {
		return nil, err
	}
	return cancelWire{L1Owner: owner, OrderID: id}, nil
}

// CancelAll removes every open order owned by the signing account.
type CancelAll struct {
	L1Owner string
}

type cancelAllWire struct {
	L1Owner string `json:"l1owner"`
}

func (c CancelAll) Tag() Tag { return TagCancelAll }

func (c CancelAll) Wire() (any, error) {
	owner, err := NormalizeAddress(c.L1Owner)
	if err != nil {
		return nil, err
	}
	return cancelAllWire{L1Owner: owner}, nil
}

// Modify amends an open order's price and/or quantity. At least one of
// NewPrice and NewQty must be set; the order mode rides along unvalidated
// beyond the enum check.
type Modify struct {
	L1Owner   string
	OrderID   string
	NewPrice  *decimal.Decimal
	NewQty    *decimal.Decimal
	OrderMode int
}

type modifyWire struct {
	L1Owner   string  `json:"l1owner"`
	OrderID   string  `json:"orderId"`
	OrderMode int     `json:"orderMode"`
	NewPrice  *string `json:"newPrice,omitempty"`
	NewQty    *string `json:"newQty,omitempty"`
}

func (m Modify) Tag() Tag { return TagModify }

func (m Modify) Wire() (any, error) {
	owner, err := NormalizeAddress(m.L1Owner)
	if err != nil {
		return nil, err
	}
	id, err := nonEmpty("orderId", m.OrderID)
	if err != nil {
		return nil, err
	}
	if err := enum01("orderMode", m.OrderMode); err != nil {
		return nil, err
	}
	if m.NewPrice == nil && m.NewQty == nil {
		return nil, ErrNoChanges
	}
	return modifyWire{
		L1Owner:   owner,
		OrderID:   id,
		OrderMode: m.OrderMode,
		NewPrice:  formatOpt(m.NewPrice, DefaultPrecision),
		NewQty:    formatOpt(m.NewQty, DefaultPrecision),
	}, nil
}
