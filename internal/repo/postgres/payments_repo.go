package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kicon/kiconapi/internal/domain/payment"
	"github.com/kicon/kiconapi/internal/observability"
)

type PaymentsRepo struct {
	docs *documents[payment.Payment]
}

func NewPaymentsRepo(pool *pgxpool.Pool, prom *observability.Prom) *PaymentsRepo {
	return &PaymentsRepo{docs: &documents[payment.Payment]{
		pool:     pool,
		prom:     prom,
		table:    "payments",
		notFound: payment.ErrNotFound,
	}}
}

func (repo *PaymentsRepo) Insert(ctx context.Context, p payment.Payment) error {
	return repo.docs.insert(ctx, p.ID, p.CreatedDate, p)
}

func (repo *PaymentsRepo) GetByID(ctx context.Context, id string) (payment.Payment, error) {
	return repo.docs.findOne(ctx, newWhere().id(id))
}

func (repo *PaymentsRepo) GetByRegistration(ctx context.Context, registrationID string) (payment.Payment, error) {
	return repo.docs.findOne(ctx, newWhere().eq(payment.FieldRegistrationID, registrationID))
}

func (repo *PaymentsRepo) List(ctx context.Context, f payment.Filter) ([]payment.Payment, error) {
	return repo.docs.find(ctx, paymentWhere(f), f.Skip, f.Limit)
}

func (repo *PaymentsRepo) Count(ctx context.Context, f payment.Filter) (int64, error) {
	return repo.docs.count(ctx, paymentWhere(f))
}

func (repo *PaymentsRepo) SumTotal(ctx context.Context, f payment.Filter) (float64, error) {
	return repo.docs.sum(ctx, paymentWhere(f), payment.FieldTotalINR)
}

func (repo *PaymentsRepo) Update(ctx context.Context, id string, ch payment.Changes) error {
	return repo.docs.set(ctx, id, ch)
}

func paymentWhere(f payment.Filter) *where {
	w := newWhere()

	if f.Status != nil {
		w.eq(payment.FieldStatus, string(*f.Status))
	}
	if f.RegistrationID != nil {
		w.eq(payment.FieldRegistrationID, *f.RegistrationID)
	}

	return w
}
