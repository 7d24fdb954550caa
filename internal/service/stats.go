package service

import (
	"context"
	"time"

	"github.com/kicon/kiconapi/internal/cache"
	"github.com/kicon/kiconapi/internal/config"
	"github.com/kicon/kiconapi/internal/domain/contact"
	"github.com/kicon/kiconapi/internal/domain/payment"
	"github.com/kicon/kiconapi/internal/domain/registration"
)

type RegistrationStats struct {
	TotalRegistrations   int64                            `json:"total_registrations"`
	ActiveRegistrations  int64                            `json:"active_registrations"`
	AvailableSpots       int64                            `json:"available_spots"`
	RegistrationLimit    int                              `json:"registration_limit"`
	ByStatus             map[registration.Status]int64    `json:"by_status"`
	BySpecialty          map[registration.Specialty]int64 `json:"by_specialty"`
	RegistrationDeadline time.Time                        `json:"registration_deadline"`
	DeadlinePassed       bool                             `json:"deadline_passed"`
}

type ContactStats struct {
	TotalInquiries  int64                         `json:"total_inquiries"`
	RecentInquiries int64                         `json:"recent_inquiries"`
	ByStatus        map[contact.Status]int64      `json:"by_status"`
	ByType          map[contact.InquiryType]int64 `json:"by_type"`
}

type PaymentAmounts struct {
	PerRegistrationINR        float64 `json:"per_registration_inr"`
	PerRegistrationUSD        float64 `json:"per_registration_usd"`
	TotalCollectedINR         float64 `json:"total_collected_inr"`
	PendingAmountINR          float64 `json:"pending_amount_inr"`
	GSTPerRegistration        float64 `json:"gst_per_registration"`
	BaseAmountPerRegistration float64 `json:"base_amount_per_registration"`
}

type PaymentBankSummary struct {
	AccountNumber       string  `json:"account_number"`
	BankName            string  `json:"bank_name"`
	TotalExpectedIfFull float64 `json:"total_expected_if_full"`
}

type PaymentStats struct {
	TotalPayments int64                    `json:"total_payments"`
	ByStatus      map[payment.Status]int64 `json:"by_status"`
	Amounts       PaymentAmounts           `json:"amounts"`
	BankDetails   PaymentBankSummary       `json:"bank_details"`
}

// Stats recomputes every figure from the stores, or serves it from a short TTL cache when enabled.
type Stats struct {
	registrations RegistrationStore
	contacts      ContactStore
	payments      PaymentStore
	event         config.EventConfig
	now           func() time.Time

	regCache     *cache.Cache[RegistrationStats]
	contactCache *cache.Cache[ContactStats]
	paymentCache *cache.Cache[PaymentStats]
}

const statsLoadTimeout = 10 * time.Second

func NewStats(registrations RegistrationStore, contacts ContactStore, payments PaymentStore, ev config.EventConfig) *Stats {
	return &Stats{registrations: registrations, contacts: contacts, payments: payments, event: ev, now: time.Now}
}

// WithCache keeps each summary for ttl; a non-positive ttl leaves caching off.
func (s *Stats) WithCache(ttl time.Duration) *Stats {
	if ttl <= 0 {
		return s
	}

	s.regCache = cache.New[RegistrationStats](ttl)
	s.contactCache = cache.New[ContactStats](ttl)
	s.paymentCache = cache.New[PaymentStats](ttl)
	return s
}

func (s *Stats) Registrations(ctx context.Context) (RegistrationStats, error) {
	if s.regCache == nil {
		return s.registrationStats(ctx)
	}
	return s.regCache.GetOrLoad("registrations", func() (RegistrationStats, error) {
		lctx, cancel := detachedLoad(ctx)
		defer cancel()
		return s.registrationStats(lctx)
	})
}

func (s *Stats) Contacts(ctx context.Context) (ContactStats, error) {
	if s.contactCache == nil {
		return s.contactStats(ctx)
	}
	return s.contactCache.GetOrLoad("contacts", func() (ContactStats, error) {
		lctx, cancel := detachedLoad(ctx)
		defer cancel()
		return s.contactStats(lctx)
	})
}

func (s *Stats) Payments(ctx context.Context) (PaymentStats, error) {
	if s.paymentCache == nil {
		return s.paymentStats(ctx)
	}
	return s.paymentCache.GetOrLoad("payments", func() (PaymentStats, error) {
		lctx, cancel := detachedLoad(ctx)
		defer cancel()
		return s.paymentStats(lctx)
	})
}

// A cached load is shared by every waiting request, so it must not die with the
// request that happened to start it. It keeps the caller's values and gets its own bound.
func detachedLoad(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), statsLoadTimeout)
}

func (s *Stats) registrationStats(ctx context.Context) (RegistrationStats, error) {
	out := RegistrationStats{
		RegistrationLimit:    s.event.Capacity,
		ByStatus:             map[registration.Status]int64{},
		BySpecialty:          map[registration.Specialty]int64{},
		RegistrationDeadline: s.event.RegistrationDeadline,
		DeadlinePassed:       s.event.DeadlinePassed(s.now()),
	}

	var err error
	if out.TotalRegistrations, err = s.registrations.Count(ctx, registration.Filter{}); err != nil {
		return RegistrationStats{}, err
	}

	for _, st := range registration.Statuses() {
		n, err := s.registrations.Count(ctx, registration.Filter{Status: ptr(st)})
		if err != nil {
			return RegistrationStats{}, err
		}
		out.ByStatus[st] = n
	}

	for _, sp := range registration.Specialties() {
		n, err := s.registrations.Count(ctx, registration.Filter{Specialty: ptr(sp)})
		if err != nil {
			return RegistrationStats{}, err
		}
		out.BySpecialty[sp] = n
	}

	out.ActiveRegistrations = out.TotalRegistrations - out.ByStatus[registration.StatusCancelled]
	out.AvailableSpots = int64(s.event.Capacity) - out.ActiveRegistrations

	return out, nil
}

// contactStats counts recent inquiries from midnight UTC seven days ago.
func (s *Stats) contactStats(ctx context.Context) (ContactStats, error) {
	out := ContactStats{
		ByStatus: map[contact.Status]int64{},
		ByType:   map[contact.InquiryType]int64{},
	}

	var err error
	if out.TotalInquiries, err = s.contacts.Count(ctx, contact.Filter{}); err != nil {
		return ContactStats{}, err
	}

	since := s.now().UTC().Truncate(24*time.Hour).AddDate(0, 0, -7)
	if out.RecentInquiries, err = s.contacts.Count(ctx, contact.Filter{CreatedSince: &since}); err != nil {
		return ContactStats{}, err
	}

	for _, st := range contact.Statuses() {
		n, err := s.contacts.Count(ctx, contact.Filter{Status: ptr(st)})
		if err != nil {
			return ContactStats{}, err
		}
		out.ByStatus[st] = n
	}

	for _, kind := range contact.InquiryTypes() {
		n, err := s.contacts.Count(ctx, contact.Filter{InquiryType: ptr(kind)})
		if err != nil {
			return ContactStats{}, err
		}
		out.ByType[kind] = n
	}

	return out, nil
}

// paymentStats sums collected money exactly; the pending figure is pending records
// times the standard total, ignoring any partial amounts.
func (s *Stats) paymentStats(ctx context.Context) (PaymentStats, error) {
	calc := payment.Calculate(s.event.Fee)

	out := PaymentStats{ByStatus: map[payment.Status]int64{}}

	var err error
	if out.TotalPayments, err = s.payments.Count(ctx, payment.Filter{}); err != nil {
		return PaymentStats{}, err
	}

	for _, st := range payment.Statuses() {
		n, err := s.payments.Count(ctx, payment.Filter{Status: ptr(st)})
		if err != nil {
			return PaymentStats{}, err
		}
		out.ByStatus[st] = n
	}

	collected, err := s.payments.SumTotal(ctx, payment.Filter{Status: ptr(payment.StatusCompleted)})
	if err != nil {
		return PaymentStats{}, err
	}

	out.Amounts = PaymentAmounts{
		PerRegistrationINR:        calc.TotalINRAmount,
		PerRegistrationUSD:        calc.USDAmount,
		TotalCollectedINR:         collected,
		PendingAmountINR:          float64(out.ByStatus[payment.StatusPending]) * calc.TotalINRAmount,
		GSTPerRegistration:        calc.GSTAmount,
		BaseAmountPerRegistration: calc.BaseINRAmount,
	}
	out.BankDetails = PaymentBankSummary{
		AccountNumber:       s.event.Bank.AccountNumber,
		BankName:            s.event.Bank.BankName,
		TotalExpectedIfFull: float64(s.event.Capacity) * calc.TotalINRAmount,
	}

	return out, nil
}
