package domain

import "fmt"

// PaymentMethod is the balance policy attached to a client.
type PaymentMethod string

const (
	UpfrontDeposit PaymentMethod = "upfront_deposit"
	PayPerSession  PaymentMethod = "pay_per_session"
)

// ParsePaymentMethod accepts the two known policies. A blank value means
// UpfrontDeposit, which is what rows written before the column existed hold.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch PaymentMethod(s) {
	case "", UpfrontDeposit:
		return UpfrontDeposit, nil
	case PayPerSession:
		return PayPerSession, nil
	default:
		return "", fmt.Errorf("unknown payment method %q", s)
	}
}

// Balance returns the remaining balance after a session. collectedSoFar
// already includes the session being recorded.
//
// Pay-per-session clients have no package to draw down, so the balance is
// reported as zero.
func (p PaymentMethod) Balance(totalPackage, collectedSoFar float64) float64 {
	if p == PayPerSession {
		return 0
	}
	return totalPackage - collectedSoFar
}

func (p PaymentMethod) String() string { return string(p) }
