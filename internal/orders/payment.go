package orders

import (
	"fmt"
	"strings"
)

type PaymentMode string

const (
	PaymentCard PaymentMode = "CARD"
	PaymentCOD  PaymentMode = "COD"
	PaymentUPI  PaymentMode = "UPI"
)

// ParsePaymentMode is case-insensitive and defaults to COD when empty.
func ParsePaymentMode(s string) (PaymentMode, error) {
	switch PaymentMode(strings.ToUpper(strings.TrimSpace(s))) {
	case "":
		return PaymentCOD, nil
	case PaymentCard:
		return PaymentCard, nil
	case PaymentCOD:
		return PaymentCOD, nil
	case PaymentUPI:
		return PaymentUPI, nil
	}
	return "", fmt.Errorf("unknown payment mode %q", s)
}
