package pricing

import (
	"fmt"
	"math"
	"strconv"
)

// Cents is a monetary amount in hundredths of the display currency.
//
// All arithmetic on cart contents happens in Cents so that repeated
// additions never drift. Conversion to a decimal happens only when
// formatting for display or encoding the persisted document.
type Cents int64

// FromDollars converts a decimal amount to Cents, rounding half away from zero.
func FromDollars(amount float64) Cents {
	return Cents(math.Round(amount * 100))
}

// Dollars returns the amount as a float for display-only use.
func (c Cents) Dollars() float64 {
	return float64(c) / 100
}

// Times multiplies an amount by a quantity.
func (c Cents) Times(quantity int) Cents {
	return c * Cents(quantity)
}

// Decimal formats the amount with exactly two decimal places, e.g. "59.40".
func (c Cents) Decimal() string {
	sign := ""
	v := int64(c)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// String formats the amount for display, e.g. "$59.40".
func (c Cents) String() string {
	if c < 0 {
		return "-$" + (-c).Decimal()
	}
	return "$" + c.Decimal()
}

// MarshalJSON encodes the amount as a decimal number.
func (c Cents) MarshalJSON() ([]byte, error) {
	return []byte(c.Decimal()), nil
}

// UnmarshalJSON accepts a decimal number and rounds it to the nearest cent.
func (c *Cents) UnmarshalJSON(data []byte) error {
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("invalid amount %s: %w", data, err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("invalid amount %s", data)
	}
	*c = FromDollars(f)
	return nil
}
