package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/kicon/kiconapi/internal/apperr"
	"github.com/kicon/kiconapi/internal/config"
	"github.com/kicon/kiconapi/internal/domain/payment"
	"github.com/kicon/kiconapi/internal/domain/registration"
	"github.com/kicon/kiconapi/internal/observability"
)

// Payments records transfer claims and administrator verification, and keeps each
// registration's payment status in step with its payment record.
type Payments struct {
	payments      PaymentStore
	registrations RegistrationStore
	event         config.EventConfig
	log           *slog.Logger
	prom          *observability.Prom
	now           func() time.Time
}

func NewPayments(payments PaymentStore, registrations RegistrationStore, ev config.EventConfig, log *slog.Logger, prom *observability.Prom) *Payments {
	if log == nil {
		log = observability.Discard()
	}
	return &Payments{payments: payments, registrations: registrations, event: ev, log: log, prom: prom, now: time.Now}
}

func (s *Payments) BankDetails() payment.BankTransfer {
	return payment.NewBankTransfer(s.event)
}

// Info returns the registration's payment record, creating the default one on first lookup.
func (s *Payments) Info(ctx context.Context, registrationID string) (payment.Payment, payment.Info, error) {
	if _, err := s.registrations.GetByID(ctx, registrationID); err != nil {
		return payment.Payment{}, payment.Info{}, err
	}

	p, err := s.payments.GetByRegistration(ctx, registrationID)
	if errors.Is(err, apperr.ErrNotFound) {
		p = payment.New(registrationID, s.event, s.now())
		err = s.payments.Insert(ctx, p)
		if err == nil {
			s.log.InfoContext(ctx, "payment record created", "payment_id", p.ID, "registration_id", registrationID)
		}
	}
	if err != nil {
		return payment.Payment{}, payment.Info{}, err
	}

	return p, payment.NewInfo(registrationID, s.event), nil
}

// Submit records a registrant's transfer claim, creating the record if needed.
// While the record is pending, a claim with a transaction id marks the registration
// advance_paid, otherwise unpaid. After review the record's status is reapplied.
func (s *Payments) Submit(ctx context.Context, req payment.CreateRequest) (payment.Payment, error) {
	if err := req.Validate(); err != nil {
		return payment.Payment{}, err
	}

	if _, err := s.registrations.GetByID(ctx, req.RegistrationID); err != nil {
		return payment.Payment{}, err
	}

	now := s.now()

	p, err := s.payments.GetByRegistration(ctx, req.RegistrationID)
	switch {
	case err == nil:
		ch := req.Submission(now)
		ch[payment.FieldLastUpdated] = now.UTC()

		if err := s.payments.Update(ctx, p.ID, ch); err != nil {
			return payment.Payment{}, err
		}
		if p, err = s.payments.GetByID(ctx, p.ID); err != nil {
			return payment.Payment{}, err
		}
	case errors.Is(err, apperr.ErrNotFound):
		p = payment.New(req.RegistrationID, s.event, now)
		req.Apply(&p, now)

		if err := s.payments.Insert(ctx, p); err != nil {
			return payment.Payment{}, err
		}
	default:
		return payment.Payment{}, err
	}

	// Once an admin has moved the record past pending, its status alone decides the
	// registration's payment status; a resubmitted claim must not override it.
	if p.Status == payment.StatusPending {
		claimed := registration.PaymentUnpaid
		if p.TransactionID != nil && *p.TransactionID != "" {
			claimed = registration.PaymentAdvancePaid
		}
		err = s.setRegistrationStatus(ctx, req.RegistrationID, claimed)
	} else {
		err = s.ApplyPaymentUpdate(ctx, req.RegistrationID, p.Status)
	}
	if err != nil {
		return payment.Payment{}, err
	}

	s.log.InfoContext(ctx, "payment record submitted", "payment_id", p.ID, "registration_id", req.RegistrationID)

	return p, nil
}

// Update applies an administrator's patch. Setting the status propagates to the
// linked registration; completing without a verification date stamps one.
func (s *Payments) Update(ctx context.Context, id string, req payment.UpdateRequest, actor string) (payment.Payment, UpdateResult, error) {
	cur, err := s.payments.GetByID(ctx, id)
	if err != nil {
		return payment.Payment{}, Updated, err
	}

	if err := req.Validate(); err != nil {
		return payment.Payment{}, Updated, err
	}

	if req.IsEmpty() {
		return cur, NoUpdateData, nil
	}

	now := s.now()

	ch := req.Changes(cur, now, actor)
	if len(ch) == 0 {
		return cur, Unchanged, nil
	}

	ch[payment.FieldLastUpdated] = now.UTC()

	if err := s.payments.Update(ctx, id, ch); err != nil {
		return payment.Payment{}, Updated, err
	}

	if req.Status != nil {
		if err := s.ApplyPaymentUpdate(ctx, cur.RegistrationID, *req.Status); err != nil {
			return payment.Payment{}, Updated, err
		}
	}

	s.log.InfoContext(ctx, "payment updated", "payment_id", id, "registration_id", cur.RegistrationID)

	updated, err := s.payments.GetByID(ctx, id)
	return updated, Updated, err
}

// ApplyPaymentUpdate rewrites the registration's payment status from a payment status.
func (s *Payments) ApplyPaymentUpdate(ctx context.Context, registrationID string, status payment.Status) error {
	mapped, err := status.RegistrationStatus()
	if err != nil {
		return apperr.NewValidationError(apperr.FieldViolation{
			Field:   "payment_status",
			Rule:    "oneof",
			Message: err.Error(),
		})
	}

	err = s.setRegistrationStatus(ctx, registrationID, mapped)
	if errors.Is(err, apperr.ErrNotFound) {
		s.log.WarnContext(ctx, "payment references a missing registration", "registration_id", registrationID)
		return nil
	}
	return err
}

func (s *Payments) setRegistrationStatus(ctx context.Context, registrationID string, status registration.PaymentStatus) error {
	err := s.registrations.Update(ctx, registrationID, registration.Changes{registration.FieldPaymentStatus: status})
	if err != nil {
		return err
	}

	s.prom.PaymentSync(string(status))
	return nil
}

func (s *Payments) List(ctx context.Context, f payment.Filter) (Page[payment.Payment], error) {
	total, err := s.payments.Count(ctx, payment.Filter{Status: f.Status, RegistrationID: f.RegistrationID})
	if err != nil {
		return Page[payment.Payment]{}, err
	}

	items, err := s.payments.List(ctx, f)
	if err != nil {
		return Page[payment.Payment]{}, err
	}

	return Page[payment.Payment]{Items: items, Total: total}, nil
}
