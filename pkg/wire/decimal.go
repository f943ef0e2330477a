package wire

import "github.com/shopspring/decimal"

// DefaultPrecision is the number of decimal places prices and quantities are
// rounded to before hitting the wire.
const DefaultPrecision = 3

// FormatDecimal renders d as a fixed-point decimal string with at most
// places decimal places. The output never uses scientific notation and
// carries no trailing zeros, so "2500" stays "2500" and 42.0 becomes "42".
// The server parses these strings exactly; floats are never sent.
func FormatDecimal(d decimal.Decimal, places int32) string {
	return d.Round(places).String()
}

// formatOpt renders an optional decimal, nil staying absent on the wire.
func formatOpt(d *decimal.Decimal, places int32) *string {
	if d == nil {
		return nil
	}
	s := FormatDecimal(*d, places)
	return &s
}
