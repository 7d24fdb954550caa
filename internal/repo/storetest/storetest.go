// Package storetest holds the behaviour every persistence gateway must share.
// Each store package runs the suite against its own implementation.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/kicon/kiconapi/internal/apperr"
	"github.com/kicon/kiconapi/internal/config"
	"github.com/kicon/kiconapi/internal/domain/contact"
	"github.com/kicon/kiconapi/internal/domain/payment"
	"github.com/kicon/kiconapi/internal/domain/registration"
	"github.com/kicon/kiconapi/internal/service"
)

type Stores struct {
	Registrations service.RegistrationStore
	Contacts      service.ContactStore
	Payments      service.PaymentStore
}

// Suite must be given Open, which returns empty stores for every test.
type Suite struct {
	suite.Suite

	Open func(t *testing.T) Stores

	ctx    context.Context
	stores Stores
}

var base = time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC)

func (s *Suite) SetupTest() {
	s.ctx = context.Background()
	s.stores = s.Open(s.T())
}

func (s *Suite) seedRegistration(id, email string, at time.Time) {
	err := s.stores.Registrations.Insert(s.ctx, registration.Registration{
		ID:                 id,
		FullName:           "Delegate " + id,
		Email:              email,
		Specialty:          registration.SpecialtyDentistry,
		RegistrationStatus: registration.StatusPending,
		PaymentStatus:      registration.PaymentUnpaid,
		Interests:          []registration.Interest{},
		TermsAccepted:      true,
		RegistrationDate:   at,
		LastUpdated:        at,
	})
	s.Require().NoError(err)
}

func (s *Suite) TestRegistrationRoundTrip() {
	s.seedRegistration("a", "a@example.com", base)

	got, err := s.stores.Registrations.GetByID(s.ctx, "a")
	s.Require().NoError(err)
	s.Equal("a", got.ID)
	s.Equal("Delegate a", got.FullName)
	s.Equal(registration.SpecialtyDentistry, got.Specialty)
	s.True(got.RegistrationDate.Equal(base))

	byEmail, err := s.stores.Registrations.GetByEmail(s.ctx, "a@example.com")
	s.Require().NoError(err)
	s.Equal("a", byEmail.ID)
}

func (s *Suite) TestRegistrationEmailMatchIsExact() {
	s.seedRegistration("a", "a@example.com", base)

	_, err := s.stores.Registrations.GetByEmail(s.ctx, "A@example.com")
	s.ErrorIs(err, registration.ErrNotFound)
	s.ErrorIs(err, apperr.ErrNotFound)
}

func (s *Suite) TestRegistrationsListNewestFirstWithPaging() {
	s.seedRegistration("a", "a@example.com", base)
	s.seedRegistration("b", "b@example.com", base.Add(time.Hour))
	s.seedRegistration("c", "c@example.com", base.Add(2*time.Hour))

	all, err := s.stores.Registrations.List(s.ctx, registration.Filter{})
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	s.Equal([]string{"c", "b", "a"}, []string{all[0].ID, all[1].ID, all[2].ID})

	page, err := s.stores.Registrations.List(s.ctx, registration.Filter{Skip: 1, Limit: 1})
	s.Require().NoError(err)
	s.Require().Len(page, 1)
	s.Equal("b", page[0].ID)

	empty, err := s.stores.Registrations.List(s.ctx, registration.Filter{Skip: 5})
	s.Require().NoError(err)
	s.Empty(empty)
}

func (s *Suite) TestRegistrationsUpdateAndCountExcluding() {
	s.seedRegistration("a", "a@example.com", base)
	s.seedRegistration("b", "b@example.com", base.Add(time.Minute))

	later := base.Add(24 * time.Hour)
	err := s.stores.Registrations.Update(s.ctx, "a", registration.Changes{
		registration.FieldRegistrationStatus: registration.StatusCancelled,
		registration.FieldLastUpdated:        later,
		"interests":                          []registration.Interest{registration.InterestDentalEquipment},
	})
	s.Require().NoError(err)

	got, err := s.stores.Registrations.GetByID(s.ctx, "a")
	s.Require().NoError(err)
	s.Equal(registration.StatusCancelled, got.RegistrationStatus)
	s.True(got.LastUpdated.Equal(later))
	s.Equal([]registration.Interest{registration.InterestDentalEquipment}, got.Interests)
	s.Equal("a@example.com", got.Email)

	cancelled := registration.StatusCancelled
	active, err := s.stores.Registrations.Count(s.ctx, registration.Filter{ExcludeStatus: &cancelled})
	s.Require().NoError(err)
	s.EqualValues(1, active)

	onlyCancelled, err := s.stores.Registrations.Count(s.ctx, registration.Filter{Status: &cancelled})
	s.Require().NoError(err)
	s.EqualValues(1, onlyCancelled)

	total, err := s.stores.Registrations.Count(s.ctx, registration.Filter{})
	s.Require().NoError(err)
	s.EqualValues(2, total)
}

func (s *Suite) TestRegistrationsMissing() {
	_, err := s.stores.Registrations.GetByID(s.ctx, "missing")
	s.ErrorIs(err, registration.ErrNotFound)

	err = s.stores.Registrations.Update(s.ctx, "missing", registration.Changes{registration.FieldPaymentStatus: registration.PaymentFullPaid})
	s.ErrorIs(err, registration.ErrNotFound)
}

func (s *Suite) TestDuplicateIDIsPersistenceError() {
	s.seedRegistration("a", "a@example.com", base)

	err := s.stores.Registrations.Insert(s.ctx, registration.Registration{ID: "a", RegistrationDate: base})
	s.Require().Error(err)
	s.True(errors.Is(err, apperr.ErrPersistence))
}

func (s *Suite) TestContactsFilters() {
	old := contact.Contact{ID: "old", Name: "Old", InquiryType: contact.InquiryGeneral, Status: contact.StatusClosed, CreatedDate: base.AddDate(0, 0, -10), LastUpdated: base}
	fresh := contact.Contact{ID: "new", Name: "New", InquiryType: contact.InquiryTechnical, Status: contact.StatusOpen, CreatedDate: base, LastUpdated: base}
	s.Require().NoError(s.stores.Contacts.Insert(s.ctx, old))
	s.Require().NoError(s.stores.Contacts.Insert(s.ctx, fresh))

	since := base.AddDate(0, 0, -7)
	n, err := s.stores.Contacts.Count(s.ctx, contact.Filter{CreatedSince: &since})
	s.Require().NoError(err)
	s.EqualValues(1, n)

	technical := contact.InquiryTechnical
	list, err := s.stores.Contacts.List(s.ctx, contact.Filter{InquiryType: &technical})
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal("new", list[0].ID)

	responded := contact.StatusResponded
	s.Require().NoError(s.stores.Contacts.Update(s.ctx, "new", contact.Changes{contact.FieldStatus: responded}))

	got, err := s.stores.Contacts.GetByID(s.ctx, "new")
	s.Require().NoError(err)
	s.Equal(contact.StatusResponded, got.Status)

	_, err = s.stores.Contacts.GetByID(s.ctx, "missing")
	s.ErrorIs(err, contact.ErrNotFound)
}

func (s *Suite) TestPaymentsLookupSumAndStamp() {
	ev := config.DefaultEventConfig()

	p := payment.New("reg-1", ev, base)
	s.Require().NoError(s.stores.Payments.Insert(s.ctx, p))
	s.Require().NoError(s.stores.Payments.Insert(s.ctx, payment.New("reg-2", ev, base.Add(time.Minute))))

	verified := base.Add(time.Hour)
	s.Require().NoError(s.stores.Payments.Update(s.ctx, p.ID, payment.Changes{
		payment.FieldStatus:           payment.StatusCompleted,
		payment.FieldVerificationDate: verified,
	}))

	got, err := s.stores.Payments.GetByRegistration(s.ctx, "reg-1")
	s.Require().NoError(err)
	s.Equal(p.ID, got.ID)
	s.Equal(payment.StatusCompleted, got.Status)
	s.Require().NotNil(got.VerificationDate)
	s.True(got.VerificationDate.Equal(verified))

	completed := payment.StatusCompleted
	sum, err := s.stores.Payments.SumTotal(s.ctx, payment.Filter{Status: &completed})
	s.Require().NoError(err)
	s.InDelta(283500.0, sum, 0.001)

	all, err := s.stores.Payments.SumTotal(s.ctx, payment.Filter{})
	s.Require().NoError(err)
	s.InDelta(567000.0, all, 0.001)

	pending := payment.StatusPending
	n, err := s.stores.Payments.Count(s.ctx, payment.Filter{Status: &pending})
	s.Require().NoError(err)
	s.EqualValues(1, n)

	_, err = s.stores.Payments.GetByRegistration(s.ctx, "reg-9")
	s.ErrorIs(err, payment.ErrNotFound)
}

func (s *Suite) TestPaymentsSumOfNothingIsZero() {
	sum, err := s.stores.Payments.SumTotal(s.ctx, payment.Filter{})
	s.Require().NoError(err)
	s.Zero(sum)
}
