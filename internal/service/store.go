package service

import (
	"context"

	"github.com/kicon/kiconapi/internal/domain/contact"
	"github.com/kicon/kiconapi/internal/domain/payment"
	"github.com/kicon/kiconapi/internal/domain/registration"
)

// Stores return the domain ErrNotFound for missing documents and wrap every
// other failure with apperr.Persistence.

type RegistrationStore interface {
	Insert(ctx context.Context, r registration.Registration) error
	GetByID(ctx context.Context, id string) (registration.Registration, error)
	GetByEmail(ctx context.Context, email string) (registration.Registration, error)
	List(ctx context.Context, f registration.Filter) ([]registration.Registration, error)
	Count(ctx context.Context, f registration.Filter) (int64, error)
	Update(ctx context.Context, id string, ch registration.Changes) error
}

type ContactStore interface {
	Insert(ctx context.Context, c contact.Contact) error
	GetByID(ctx context.Context, id string) (contact.Contact, error)
	List(ctx context.Context, f contact.Filter) ([]contact.Contact, error)
	Count(ctx context.Context, f contact.Filter) (int64, error)
	Update(ctx context.Context, id string, ch contact.Changes) error
}

type PaymentStore interface {
	Insert(ctx context.Context, p payment.Payment) error
	GetByID(ctx context.Context, id string) (payment.Payment, error)
	GetByRegistration(ctx context.Context, registrationID string) (payment.Payment, error)
	List(ctx context.Context, f payment.Filter) ([]payment.Payment, error)
	Count(ctx context.Context, f payment.Filter) (int64, error)
	// SumTotal adds up total_inr_amount over the matching records.
	SumTotal(ctx context.Context, f payment.Filter) (float64, error)
	Update(ctx context.Context, id string, ch payment.Changes) error
}

// UpdateResult says what an administrative update did.
type UpdateResult int

const (
	Updated UpdateResult = iota
	Unchanged
	NoUpdateData
)

func (r UpdateResult) Message(updated string) string {
	switch r {
	case Unchanged:
		return "No changes were made"
	case NoUpdateData:
		return "No update data provided"
	default:
		return updated
	}
}

// Page is a listing plus the number of records matching its filter.
type Page[T any] struct {
	Items []T
	Total int64
}

func ptr[T any](v T) *T {
	return &v
}
