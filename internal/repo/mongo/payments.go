package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/kicon/kiconapi/internal/domain/payment"
	"github.com/kicon/kiconapi/internal/observability"
)

const PaymentsCollection = "payments"

type PaymentsRepo struct {
	c *collection[payment.Payment]
}

func NewPaymentsRepo(db *mongo.Database, prom *observability.Prom) *PaymentsRepo {
	return &PaymentsRepo{c: &collection[payment.Payment]{
		coll:      db.Collection(PaymentsCollection),
		prom:      prom,
		sortField: payment.FieldCreatedDate,
		notFound:  payment.ErrNotFound,
	}}
}

func (r *PaymentsRepo) Insert(ctx context.Context, p payment.Payment) error {
	return r.c.insert(ctx, p)
}

func (r *PaymentsRepo) GetByID(ctx context.Context, id string) (payment.Payment, error) {
	return r.c.findOne(ctx, bson.M{payment.FieldID: id})
}

func (r *PaymentsRepo) GetByRegistration(ctx context.Context, registrationID string) (payment.Payment, error) {
	return r.c.findOne(ctx, bson.M{payment.FieldRegistrationID: registrationID})
}

func (r *PaymentsRepo) List(ctx context.Context, f payment.Filter) ([]payment.Payment, error) {
	return r.c.find(ctx, paymentFilter(f), f.Skip, f.Limit)
}

func (r *PaymentsRepo) Count(ctx context.Context, f payment.Filter) (int64, error) {
	return r.c.count(ctx, paymentFilter(f))
}

func (r *PaymentsRepo) SumTotal(ctx context.Context, f payment.Filter) (float64, error) {
	return r.c.sum(ctx, paymentFilter(f), payment.FieldTotalINR)
}

func (r *PaymentsRepo) Update(ctx context.Context, id string, ch payment.Changes) error {
	return r.c.set(ctx, id, ch)
}

func paymentFilter(f payment.Filter) bson.M {
	q := bson.M{}

	if f.Status != nil {
		q[payment.FieldStatus] = *f.Status
	}
	if f.RegistrationID != nil {
		q[payment.FieldRegistrationID] = *f.RegistrationID
	}

	return q
}
