package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/kicon/kiconapi/internal/domain/contact"
	"github.com/kicon/kiconapi/internal/observability"
)

const ContactsCollection = "contacts"

type ContactsRepo struct {
	c *collection[contact.Contact]
}

func NewContactsRepo(db *mongo.Database, prom *observability.Prom) *ContactsRepo {
	return &ContactsRepo{c: &collection[contact.Contact]{
		coll:      db.Collection(ContactsCollection),
		prom:      prom,
		sortField: contact.FieldCreatedDate,
		notFound:  contact.ErrNotFound,
	}}
}

func (r *ContactsRepo) Insert(ctx context.Context, c contact.Contact) error {
	return r.c.insert(ctx, c)
}

func (r *ContactsRepo) GetByID(ctx context.Context, id string) (contact.Contact, error) {
	return r.c.findOne(ctx, bson.M{contact.FieldID: id})
}

func (r *ContactsRepo) List(ctx context.Context, f contact.Filter) ([]contact.Contact, error) {
	return r.c.find(ctx, contactFilter(f), f.Skip, f.Limit)
}

func (r *ContactsRepo) Count(ctx context.Context, f contact.Filter) (int64, error) {
	return r.c.count(ctx, contactFilter(f))
}

func (r *ContactsRepo) Update(ctx context.Context, id string, ch contact.Changes) error {
	return r.c.set(ctx, id, ch)
}

func contactFilter(f contact.Filter) bson.M {
	q := bson.M{}

	if f.Status != nil {
		q[contact.FieldStatus] = *f.Status
	}
	if f.InquiryType != nil {
		q[contact.FieldInquiryType] = *f.InquiryType
	}
	if f.CreatedSince != nil {
		q[contact.FieldCreatedDate] = bson.M{"$gte": *f.CreatedSince}
	}

	return q
}
