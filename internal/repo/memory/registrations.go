package memory

import (
	"context"
	"time"

	"github.com/kicon/kiconapi/internal/domain/registration"
)

type RegistrationsRepo struct {
	items *collection[registration.Registration]
}

func NewRegistrationsRepo() *RegistrationsRepo {
	return &RegistrationsRepo{
		items: newCollection(
			func(r registration.Registration) string { return r.ID },
			func(r registration.Registration) time.Time { return r.RegistrationDate },
		),
	}
}

func (r *RegistrationsRepo) Insert(_ context.Context, reg registration.Registration) error {
	return r.items.insert(reg)
}

func (r *RegistrationsRepo) GetByID(_ context.Context, id string) (registration.Registration, error) {
	reg, ok := r.items.get(id)
	if !ok {
		return registration.Registration{}, registration.ErrNotFound
	}
	return reg, nil
}

func (r *RegistrationsRepo) GetByEmail(_ context.Context, email string) (registration.Registration, error) {
	reg, ok := r.items.find(func(reg registration.Registration) bool { return reg.Email == email })
	if !ok {
		return registration.Registration{}, registration.ErrNotFound
	}
	return reg, nil
}

func (r *RegistrationsRepo) List(_ context.Context, f registration.Filter) ([]registration.Registration, error) {
	return r.items.page(matchRegistration(f), f.Skip, f.Limit), nil
}

func (r *RegistrationsRepo) Count(_ context.Context, f registration.Filter) (int64, error) {
	return r.items.count(matchRegistration(f)), nil
}

func (r *RegistrationsRepo) Update(_ context.Context, id string, ch registration.Changes) error {
	found, err := r.items.update(id, ch)
	if err != nil {
		return err
	}
	if !found {
		return registration.ErrNotFound
	}
	return nil
}

func matchRegistration(f registration.Filter) func(registration.Registration) bool {
	return func(reg registration.Registration) bool {
		if f.Status != nil && reg.RegistrationStatus != *f.Status {
			return false
		}
		if f.ExcludeStatus != nil && reg.RegistrationStatus == *f.ExcludeStatus {
			return false
		}
		if f.Specialty != nil && reg.Specialty != *f.Specialty {
			return false
		}
		return true
	}
}
