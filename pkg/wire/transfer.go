package wire

import "github.com/shopspring/decimal"

// ValueTransfer moves native-token balance between exchange accounts.
type ValueTransfer struct {
	L1Owner string
	To      string
	Value   decimal.Decimal
}

type valueTransferWire struct {
	L1Owner string `json:"l1owner"`
	To      string `json:"to"`
	Value   string `json:"value"`
}

func (t ValueTransfer) Tag() Tag { return TagValueTransfer }

func (t ValueTransfer) Wire() (any, error) {
	owner, err := NormalizeAddress(t.L1Owner)
	if err != nil {
		return nil, err
	}
	to, err := NormalizeAddress(t.To)
	if err != nil {
		return nil, err
	}
	return valueTransferWire{
		L1Owner: owner,
		To:      to,
		Value:   t.Value.String(),
	}, nil
}

// TokenTransfer moves a specific token balance between exchange accounts.
type TokenTransfer struct {
	L1Owner string
	To      string
	Value   decimal.Decimal
	Token   string
}

type tokenTransferWire struct {
	L1Owner string `json:"l1owner"`
	To      string `json:"to"`
	Value   string `json:"value"`
	Token   string `json:"token"`
}

func (t TokenTransfer) Tag() Tag { return TagTokenTransfer }

func (t TokenTransfer) Wire() (any, error) {
	owner, err := NormalizeAddress(t.L1Owner)
	if err != nil {
		return nil, err
	}
	to, err := NormalizeAddress(t.To)
	if err != nil {
		return nil, err
	}
	token, err := nonEmpty("token", t.Token)
	if err != nil {
		return nil, err
	}
	return tokenTransferWire{
		L1Owner: owner,
		To:      to,
		Value:   t.Value.String(),
		Token:   token,
	}, nil
}
