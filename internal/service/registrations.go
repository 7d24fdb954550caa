package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/kicon/kiconapi/internal/apperr"
	"github.com/kicon/kiconapi/internal/config"
	"github.com/kicon/kiconapi/internal/domain/registration"
	"github.com/kicon/kiconapi/internal/observability"
)

// Registrations is the admission controller plus the administrative operations on registrations.
type Registrations struct {
	store RegistrationStore
	event config.EventConfig
	log   *slog.Logger
	prom  *observability.Prom
	now   func() time.Time
}

func NewRegistrations(store RegistrationStore, ev config.EventConfig, log *slog.Logger, prom *observability.Prom) *Registrations {
	if log == nil {
		log = observability.Discard()
	}
	return &Registrations{store: store, event: ev, log: log, prom: prom, now: time.Now}
}

// Submit admits a candidate. Gates run in order and stop at the first failure:
// deadline, duplicate email, capacity, then field and derived validation.
// The duplicate and capacity checks read the store at call time and are not
// atomic with the insert.
func (s *Registrations) Submit(ctx context.Context, req registration.CreateRequest) (registration.Registration, error) {
	now := s.now()

	if s.event.DeadlinePassed(now) {
		return s.reject(registration.ErrDeadlinePassed)
	}

	_, err := s.store.GetByEmail(ctx, req.Email)
	switch {
	case err == nil:
		return s.reject(registration.ErrDuplicateEmail)
	case !errors.Is(err, apperr.ErrNotFound):
		return registration.Registration{}, err
	}

	active, err := s.store.Count(ctx, registration.Filter{ExcludeStatus: ptr(registration.StatusCancelled)})
	if err != nil {
		return registration.Registration{}, err
	}
	if active >= int64(s.event.Capacity) {
		return s.reject(registration.ErrCapacityReached)
	}

	if err := registration.Validate(req, now, s.event); err != nil {
		s.prom.Admission("invalid")
		return registration.Registration{}, err
	}

	reg := registration.New(req, now)

	if err := s.store.Insert(ctx, reg); err != nil {
		return registration.Registration{}, err
	}

	s.prom.Admission("accepted")
	s.log.InfoContext(ctx, "registration created", "registration_id", reg.ID, "active", active+1)

	return reg, nil
}

func (s *Registrations) reject(cerr *apperr.ConflictError) (registration.Registration, error) {
	s.prom.Admission(cerr.Code)
	return registration.Registration{}, cerr
}

func (s *Registrations) Get(ctx context.Context, id string) (registration.Registration, error) {
	return s.store.GetByID(ctx, id)
}

// EmailExists matches exactly, cancelled registrations included.
func (s *Registrations) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := s.store.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, apperr.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

func (s *Registrations) List(ctx context.Context, f registration.Filter) (Page[registration.Registration], error) {
	total, err := s.store.Count(ctx, registration.Filter{Status: f.Status, Specialty: f.Specialty})
	if err != nil {
		return Page[registration.Registration]{}, err
	}

	items, err := s.store.List(ctx, f)
	if err != nil {
		return Page[registration.Registration]{}, err
	}

	return Page[registration.Registration]{Items: items, Total: total}, nil
}

// Update applies an administrative patch. Fields equal to the stored value are
// not written; when nothing differs the stored entity is returned as is.
func (s *Registrations) Update(ctx context.Context, id string, req registration.UpdateRequest) (registration.Registration, UpdateResult, error) {
	cur, err := s.store.GetByID(ctx, id)
	if err != nil {
		return registration.Registration{}, Updated, err
	}

	if err := req.Validate(); err != nil {
		return registration.Registration{}, Updated, err
	}

	if req.IsEmpty() {
		return cur, NoUpdateData, nil
	}

	ch := req.Changes(cur)
	if len(ch) == 0 {
		return cur, Unchanged, nil
	}

	ch[registration.FieldLastUpdated] = s.now().UTC()

	if err := s.store.Update(ctx, id, ch); err != nil {
		return registration.Registration{}, Updated, err
	}

	s.log.InfoContext(ctx, "registration updated", "registration_id", id, "fields", len(ch)-1)

	updated, err := s.store.GetByID(ctx, id)
	return updated, Updated, err
}

// Cancel is a soft delete: the registration stays and its status becomes cancelled.
func (s *Registrations) Cancel(ctx context.Context, id string) (registration.Registration, error) {
	cur, err := s.store.GetByID(ctx, id)
	if err != nil {
		return registration.Registration{}, err
	}

	if cur.RegistrationStatus == registration.StatusCancelled {
		return cur, nil
	}

	err = s.store.Update(ctx, id, registration.Changes{
		registration.FieldRegistrationStatus: registration.StatusCancelled,
		registration.FieldLastUpdated:        s.now().UTC(),
	})
	if err != nil {
		return registration.Registration{}, err
	}

	s.log.InfoContext(ctx, "registration cancelled", "registration_id", id)

	return s.store.GetByID(ctx, id)
}
