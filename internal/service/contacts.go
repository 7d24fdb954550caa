package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/kicon/kiconapi/internal/domain/contact"
	"github.com/kicon/kiconapi/internal/observability"
)

type Contacts struct {
	store ContactStore
	log   *slog.Logger
	now   func() time.Time
}

func NewContacts(store ContactStore, log *slog.Logger) *Contacts {
	if log == nil {
		log = observability.Discard()
	}
	return &Contacts{store: store, log: log, now: time.Now}
}

func (s *Contacts) Submit(ctx context.Context, req contact.CreateRequest) (contact.Contact, error) {
	if err := req.Validate(); err != nil {
		return contact.Contact{}, err
	}

	c := contact.New(req, s.now())

	if err := s.store.Insert(ctx, c); err != nil {
		return contact.Contact{}, err
	}

	s.log.InfoContext(ctx, "contact inquiry created", "contact_id", c.ID, "inquiry_type", c.InquiryType)

	return c, nil
}

func (s *Contacts) Get(ctx context.Context, id string) (contact.Contact, error) {
	return s.store.GetByID(ctx, id)
}

func (s *Contacts) List(ctx context.Context, f contact.Filter) (Page[contact.Contact], error) {
	total, err := s.store.Count(ctx, contact.Filter{Status: f.Status, InquiryType: f.InquiryType, CreatedSince: f.CreatedSince})
	if err != nil {
		return Page[contact.Contact]{}, err
	}

	items, err := s.store.List(ctx, f)
	if err != nil {
		return Page[contact.Contact]{}, err
	}

	return Page[contact.Contact]{Items: items, Total: total}, nil
}

// UpdateStatus is the only mutation an inquiry allows.
func (s *Contacts) UpdateStatus(ctx context.Context, id string, req contact.UpdateRequest) (contact.Contact, UpdateResult, error) {
	cur, err := s.store.GetByID(ctx, id)
	if err != nil {
		return contact.Contact{}, Updated, err
	}

	if err := req.Validate(); err != nil {
		return contact.Contact{}, Updated, err
	}

	if req.IsEmpty() {
		return cur, NoUpdateData, nil
	}

	ch := req.Changes(cur)
	if len(ch) == 0 {
		return cur, Unchanged, nil
	}

	ch[contact.FieldLastUpdated] = s.now().UTC()

	if err := s.store.Update(ctx, id, ch); err != nil {
		return contact.Contact{}, Updated, err
	}

	s.log.InfoContext(ctx, "contact inquiry updated", "contact_id", id, "status", *req.Status)

	updated, err := s.store.GetByID(ctx, id)
	return updated, Updated, err
}
