// Package wire builds the canonical JSON wire objects for Alphasec exchange
// commands and encodes them into the single-byte-tagged payload the order
// contract consumes. Everything here is a pure transformation: validation
// failures surface before any signing or network activity.
package wire

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Tag is the single leading byte identifying which command a payload encodes.
type Tag byte

const (
	TagSessionRegister Tag = 0x01
	TagSessionUpdate   Tag = 0x02
	TagSessionDelete   Tag = 0x03
	TagValueTransfer   Tag = 0x04
	TagTokenTransfer   Tag = 0x05
	TagOrder           Tag = 0x06
	TagCancel          Tag = 0x07
	TagCancelAll       Tag = 0x08
	TagModify          Tag = 0x09
	TagStopOrder       Tag = 0x0a
)

// Validation errors. All are raised synchronously from Wire(), are
// recoverable by correcting input, and are never retried.
var (
	ErrInvalidAddress = errors.New("expected 0x-prefixed 20-byte hex address")
	ErrEmptyField     = errors.New("must be a non-empty string")
	ErrInvalidEnum    = errors.New("value must be 0 or 1")
	ErrNoChanges      = errors.New("newPrice or newQty must be provided")
)

// Command is one exchange command variant. Wire validates the command's
// fields and returns its canonical wire object ready for serialization.
type Command interface {
	Tag() Tag
	Wire() (any, error)
}

// Encode validates cmd and produces the transaction payload: one tag byte
// followed by compact JSON of the wire object. Key order follows struct
// declaration order and encoding/json inserts no whitespace, so output is
// deterministic for identical input and safe to hash or replay.
func Encode(cmd Command) ([]byte, error) {
	obj, err := cmd.Wire()
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(obj)
	if err != nil {
		return nil, fmt.Errorf("marshal %T: %w", cmd, err)
	}
	payload := make([]byte, 0, 1+len(body))
	payload = append(payload, byte(cmd.Tag()))
	return append(payload, body...), nil
}

// enum01 validates the binary enums (side, order type, order mode).
func enum01(name string, v int) error {
	if v != 0 && v != 1 {
		return fmt.Errorf("%s: %w (got %d)", name, ErrInvalidEnum, v)
	}
	return nil
}
