package memory

import (
	"context"
	"time"

	"github.com/kicon/kiconapi/internal/domain/contact"
)

type ContactsRepo struct {
	items *collection[contact.Contact]
}

func NewContactsRepo() *ContactsRepo {
	return &ContactsRepo{
		items: newCollection(
			func(c contact.Contact) string { return c.ID },
			func(c contact.Contact) time.Time { return c.CreatedDate },
		),
	}
}

func (r *ContactsRepo) Insert(_ context.Context, c contact.Contact) error {
	return r.items.insert(c)
}

func (r *ContactsRepo) GetByID(_ context.Context, id string) (contact.Contact, error) {
	c, ok := r.items.get(id)
	if !ok {
		return contact.Contact{}, contact.ErrNotFound
	}
	return c, nil
}

func (r *ContactsRepo) List(_ context.Context, f contact.Filter) ([]contact.Contact, error) {
	return r.items.page(matchContact(f), f.Skip, f.Limit), nil
}

func (r *ContactsRepo) Count(_ context.Context, f contact.Filter) (int64, error) {
	return r.items.count(matchContact(f)), nil
}

func (r *ContactsRepo) Update(_ context.Context, id string, ch contact.Changes) error {
	found, err := r.items.update(id, ch)
	if err != nil {
		return err
	}
	if !found {
		return contact.ErrNotFound
	}
	return nil
}

func matchContact(f contact.Filter) func(contact.Contact) bool {
	return func(c contact.Contact) bool {
		if f.Status != nil && c.Status != *f.Status {
			return false
		}
		if f.InquiryType != nil && c.InquiryType != *f.InquiryType {
			return false
		}
		if f.CreatedSince != nil && c.CreatedDate.Before(*f.CreatedSince) {
			return false
		}
		return true
	}
}
