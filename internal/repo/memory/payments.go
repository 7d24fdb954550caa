package memory

import (
	"context"
	"time"

	"github.com/kicon/kiconapi/internal/domain/payment"
)

type PaymentsRepo struct {
	items *collection[payment.Payment]
}

func NewPaymentsRepo() *PaymentsRepo {
	return &PaymentsRepo{
		items: newCollection(
			func(p payment.Payment) string { return p.ID },
			func(p payment.Payment) time.Time { return p.CreatedDate },
		),
	}
}

func (r *PaymentsRepo) Insert(_ context.Context, p payment.Payment) error {
	return r.items.insert(p)
}

func (r *PaymentsRepo) GetByID(_ context.Context, id string) (payment.Payment, error) {
	p, ok := r.items.get(id)
	if !ok {
		return payment.Payment{}, payment.ErrNotFound
	}
	return p, nil
}

// GetByRegistration returns the newest record when more than one exists.
func (r *PaymentsRepo) GetByRegistration(_ context.Context, registrationID string) (payment.Payment, error) {
	p, ok := r.items.find(func(p payment.Payment) bool { return p.RegistrationID == registrationID })
	if !ok {
		return payment.Payment{}, payment.ErrNotFound
	}
	return p, nil
}

func (r *PaymentsRepo) List(_ context.Context, f payment.Filter) ([]payment.Payment, error) {
	return r.items.page(matchPayment(f), f.Skip, f.Limit), nil
}

func (r *PaymentsRepo) Count(_ context.Context, f payment.Filter) (int64, error) {
	return r.items.count(matchPayment(f)), nil
}

func (r *PaymentsRepo) SumTotal(_ context.Context, f payment.Filter) (float64, error) {
	var sum float64
	for _, p := range r.items.sorted(matchPayment(f)) {
		sum += p.TotalINR
	}
	return sum, nil
}

func (r *PaymentsRepo) Update(_ context.Context, id string, ch payment.Changes) error {
	found, err := r.items.update(id, ch)
	if err != nil {
		return err
	}
	if !found {
		return payment.ErrNotFound
	}
	return nil
}

func matchPayment(f payment.Filter) func(payment.Payment) bool {
	return func(p payment.Payment) bool {
		if f.Status != nil && p.Status != *f.Status {
			return false
		}
		if f.RegistrationID != nil && p.RegistrationID != *f.RegistrationID {
			return false
		}
		return true
	}
}
