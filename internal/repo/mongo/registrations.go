package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/kicon/kiconapi/internal/domain/registration"
	"github.com/kicon/kiconapi/internal/observability"
)

const RegistrationsCollection = "registrations"

type RegistrationsRepo struct {
	c *collection[registration.Registration]
}

func NewRegistrationsRepo(db *mongo.Database, prom *observability.Prom) *RegistrationsRepo {
	return &RegistrationsRepo{c: &collection[registration.Registration]{
		coll:      db.Collection(RegistrationsCollection),
		prom:      prom,
		sortField: registration.FieldRegistrationDate,
		notFound:  registration.ErrNotFound,
	}}
}

func (r *RegistrationsRepo) Insert(ctx context.Context, reg registration.Registration) error {
	return r.c.insert(ctx, reg)
}

func (r *RegistrationsRepo) GetByID(ctx context.Context, id string) (registration.Registration, error) {
	return r.c.findOne(ctx, bson.M{registration.FieldID: id})
}

func (r *RegistrationsRepo) GetByEmail(ctx context.Context, email string) (registration.Registration, error) {
	return r.c.findOne(ctx, bson.M{registration.FieldEmail: email})
}

func (r *RegistrationsRepo) List(ctx context.Context, f registration.Filter) ([]registration.Registration, error) {
	return r.c.find(ctx, registrationFilter(f), f.Skip, f.Limit)
}

func (r *RegistrationsRepo) Count(ctx context.Context, f registration.Filter) (int64, error) {
	return r.c.count(ctx, registrationFilter(f))
}

func (r *RegistrationsRepo) Update(ctx context.Context, id string, ch registration.Changes) error {
	return r.c.set(ctx, id, ch)
}

func registrationFilter(f registration.Filter) bson.M {
	q := bson.M{}

	switch {
	case f.Status != nil:
		q[registration.FieldRegistrationStatus] = *f.Status
	case f.ExcludeStatus != nil:
		q[registration.FieldRegistrationStatus] = bson.M{"$ne": *f.ExcludeStatus}
	}
	if f.Specialty != nil {
		q[registration.FieldSpecialty] = *f.Specialty
	}

	return q
}
