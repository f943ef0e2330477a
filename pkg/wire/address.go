package wire

import (
	"fmt"
	"regexp"
	"strings"
)

var hexAddrRE = regexp.MustCompile(`^(0x)?[0-9a-fA-F]{40}$`)

// NormalizeAddress validates a 20-byte hex address and returns it with the
// 0x prefix present. Case is preserved; routing and comparison layers lower
// it where needed.
func NormalizeAddress(addr string) (string, error) {
	if !hexAddrRE.MatchString(addr) {
		return "", fmt.Errorf("%w: %q", ErrInvalidAddress, addr)
	}
	if !strings.HasPrefix(addr, "0x") {
		return "0x" + addr, nil
	}
	return addr, nil
}

// nonEmpty trims s and rejects the empty result.
func nonEmpty(name, s string) (string, error) {
	t := strings.TrimSpace(s)
	if t == "" {
		return "", fmt.Errorf("%s: %w", name, ErrEmptyField)
	}
	return t, nil
}
