package orders

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// TotalTolerance is how far a client-computed total may drift from ours.
var TotalTolerance = decimal.NewFromFloat(0.01)

var hundred = decimal.NewFromInt(100)

// UnitPrice applies a percentage discount and rounds to cents.
func UnitPrice(price, discountPercentage float64) decimal.Decimal {
	p := decimal.NewFromFloat(price)
	d := decimal.NewFromFloat(discountPercentage)
	return p.Mul(hundred.Sub(d)).Div(hundred).Round(2)
}

// Line is one priced order line.
type Line struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

// Total sums unit price times quantity over lines.
func Total(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return sum.Round(2)
}

// CheckClientTotal compares an optional caller total with the computed one.
func CheckClientTotal(client *float64, computed decimal.Decimal) error {
	if client == nil {
		return nil
	}
	got := decimal.NewFromFloat(*client)
	if got.Sub(computed).Abs().GreaterThan(TotalTolerance) {
		return fmt.Errorf("total %s does not match computed total %s", got.StringFixed(2), computed.StringFixed(2))
	}
	return nil
}
