package payment

import (
	"fmt"

	"github.com/kicon/kiconapi/internal/domain/registration"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusPartial   Status = "partial"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

func Statuses() []Status {
	return []Status{StatusPending, StatusPartial, StatusCompleted, StatusFailed}
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusPartial, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// RegistrationStatus maps a payment status onto the registration's payment status.
// Unknown values are an error rather than a silent unpaid.
func (s Status) RegistrationStatus() (registration.PaymentStatus, error) {
	switch s {
	case StatusPending, StatusFailed:
		return registration.PaymentUnpaid, nil
	case StatusPartial:
		return registration.PaymentAdvancePaid, nil
	case StatusCompleted:
		return registration.PaymentFullPaid, nil
	default:
		return "", fmt.Errorf("unknown payment status %q", string(s))
	}
}
