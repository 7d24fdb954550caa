package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kicon/kiconapi/internal/domain/contact"
	"github.com/kicon/kiconapi/internal/observability"
)

type ContactsRepo struct {
	docs *documents[contact.Contact]
}

func NewContactsRepo(pool *pgxpool.Pool, prom *observability.Prom) *ContactsRepo {
	return &ContactsRepo{docs: &documents[contact.Contact]{
		pool:     pool,
		prom:     prom,
		table:    "contacts",
		notFound: contact.ErrNotFound,
	}}
}

func (repo *ContactsRepo) Insert(ctx context.Context, c contact.Contact) error {
	return repo.docs.insert(ctx, c.ID, c.CreatedDate, c)
}

func (repo *ContactsRepo) GetByID(ctx context.Context, id string) (contact.Contact, error) {
	return repo.docs.findOne(ctx, newWhere().id(id))
}

func (repo *ContactsRepo) List(ctx context.Context, f contact.Filter) ([]contact.Contact, error) {
	return repo.docs.find(ctx, contactWhere(f), f.Skip, f.Limit)
}

func (repo *ContactsRepo) Count(ctx context.Context, f contact.Filter) (int64, error) {
	return repo.docs.count(ctx, contactWhere(f))
}

func (repo *ContactsRepo) Update(ctx context.Context, id string, ch contact.Changes) error {
	return repo.docs.set(ctx, id, ch)
}

func contactWhere(f contact.Filter) *where {
	w := newWhere()

	if f.Status != nil {
		w.eq(contact.FieldStatus, string(*f.Status))
	}
	if f.InquiryType != nil {
		w.eq(contact.FieldInquiryType, string(*f.InquiryType))
	}
	if f.CreatedSince != nil {
		w.createdSince(*f.CreatedSince)
	}

	return w
}
