package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kicon/kiconapi/internal/domain/registration"
	"github.com/kicon/kiconapi/internal/observability"
)

type RegistrationsRepo struct {
	docs *documents[registration.Registration]
}

func NewRegistrationsRepo(pool *pgxpool.Pool, prom *observability.Prom) *RegistrationsRepo {
	return &RegistrationsRepo{docs: &documents[registration.Registration]{
		pool:     pool,
		prom:     prom,
		table:    "registrations",
		notFound: registration.ErrNotFound,
	}}
}

func (repo *RegistrationsRepo) Insert(ctx context.Context, reg registration.Registration) error {
	return repo.docs.insert(ctx, reg.ID, reg.RegistrationDate, reg)
}

func (repo *RegistrationsRepo) GetByID(ctx context.Context, id string) (registration.Registration, error) {
	return repo.docs.findOne(ctx, newWhere().id(id))
}

func (repo *RegistrationsRepo) GetByEmail(ctx context.Context, email string) (registration.Registration, error) {
	return repo.docs.findOne(ctx, newWhere().eq(registration.FieldEmail, email))
}

func (repo *RegistrationsRepo) List(ctx context.Context, f registration.Filter) ([]registration.Registration, error) {
	return repo.docs.find(ctx, registrationWhere(f), f.Skip, f.Limit)
}

func (repo *RegistrationsRepo) Count(ctx context.Context, f registration.Filter) (int64, error) {
	return repo.docs.count(ctx, registrationWhere(f))
}

func (repo *RegistrationsRepo) Update(ctx context.Context, id string, ch registration.Changes) error {
	return repo.docs.set(ctx, id, ch)
}

func registrationWhere(f registration.Filter) *where {
	w := newWhere()

	if f.Status != nil {
		w.eq(registration.FieldRegistrationStatus, string(*f.Status))
	}
	if f.ExcludeStatus != nil {
		w.ne(registration.FieldRegistrationStatus, string(*f.ExcludeStatus))
	}
	if f.Specialty != nil {
		w.eq(registration.FieldSpecialty, string(*f.Specialty))
	}

	return w
}
