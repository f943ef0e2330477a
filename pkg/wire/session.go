package wire

import (
	"fmt"
)

// Session operation discriminator carried inside the payload. The server
// keeps this inner field alongside the tag byte.
const (
	SessionOpRegister = 1
	SessionOpUpdate   = 2
	SessionOpDelete   = 3
)

// SessionContext registers, updates or deletes a delegated session key.
// Op selects which of the three session tags the payload carries. The
// l1signature field holds the owner's base64-encoded typed-data signature
// binding publickey + expiry + nonce.
type SessionContext struct {
	Op          Tag
	PublicKey   string
	ExpiresAt   int64
	Nonce       int64
	L1Owner     string
	L1Signature string
	Metadata    string
}

type sessionWire struct {
	Type        int    `json:"type"`
	PublicKey   string `json:"publickey"`
	ExpiresAt   int64  `json:"expiresAt"`
	Nonce       int64  `json:"nonce"`
	L1Owner     string `json:"l1owner"`
	L1Signature string `json:"l1signature"`
	Metadata    string `json:"metadata,omitempty"`
}

func (s SessionContext) Tag() Tag { return s.Op }

func (s SessionContext) op() (int, error) {
	switch s.Op {
	case TagSessionRegister:
		return SessionOpRegister, nil
	case TagSessionUpdate:
		return SessionOpUpdate, nil
	case TagSessionDelete:
		return SessionOpDelete, nil
	default:
		return 0, fmt.Errorf("invalid session tag 0x%02x", byte(s.Op))
	}
}

func (s SessionContext) Wire() (any, error) {
	op, err := s.op()
	if err != nil {
		return nil, err
	}
	pub, err := NormalizeAddress(s.PublicKey)
	if err != nil {
		return nil, err
	}
	owner, err := NormalizeAddress(s.L1Owner)
	if err != nil {
		return nil, err
	}
	sig, err := nonEmpty("l1signature", s.L1Signature)
	if err != nil {
		return nil, err
	}
	if s.ExpiresAt < 0 || s.Nonce < 0 {
		return nil, fmt.Errorf("expiresAt and nonce must be non-negative")
	}
	return sessionWire{
		Type:        op,
		PublicKey:   pub,
		ExpiresAt:   s.ExpiresAt,
		Nonce:       s.Nonce,
		L1Owner:     owner,
		L1Signature: sig,
		Metadata:    s.Metadata,
	}, nil
}
