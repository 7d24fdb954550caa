package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"github.com/kicon/kiconapi/internal/apperr"
	"github.com/kicon/kiconapi/internal/config"
	"github.com/kicon/kiconapi/internal/dates"
	"github.com/kicon/kiconapi/internal/domain/contact"
	"github.com/kicon/kiconapi/internal/domain/payment"
	"github.com/kicon/kiconapi/internal/domain/registration"
	"github.com/kicon/kiconapi/internal/observability"
	"github.com/kicon/kiconapi/internal/repo/memory"
)

var testNow = time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC)

type ServiceSuite struct {
	suite.Suite
	ctx context.Context
	ev  config.EventConfig

	regRepo     *memory.RegistrationsRepo
	contactRepo *memory.ContactsRepo
	payRepo     *memory.PaymentsRepo
	prom        *observability.Prom

	registrations *Registrations
	contacts      *Contacts
	payments      *Payments
	stats         *Stats
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.ev = config.DefaultEventConfig()

	s.regRepo = memory.NewRegistrationsRepo()
	s.contactRepo = memory.NewContactsRepo()
	s.payRepo = memory.NewPaymentsRepo()
	s.prom = observability.NewProm(prometheus.NewRegistry())

	s.registrations = NewRegistrations(s.regRepo, s.ev, nil, s.prom)
	s.contacts = NewContacts(s.contactRepo, nil)
	s.payments = NewPayments(s.payRepo, s.regRepo, s.ev, nil, s.prom)
	s.stats = NewStats(s.regRepo, s.contactRepo, s.payRepo, s.ev)

	s.setNow(testNow)
}

func (s *ServiceSuite) setNow(now time.Time) {
	clock := func() time.Time { return now }
	s.registrations.now = clock
	s.contacts.now = clock
	s.payments.now = clock
	s.stats.now = clock
}

func candidate(email string) registration.CreateRequest {
	years := 12
	return registration.CreateRequest{
		FullName:         "Dr. Meera Iyer",
		Gender:           registration.GenderFemale,
		DateOfBirth:      dates.Flexible{Time: testNow.AddDate(-40, 0, 0)},
		Nationality:      "Indian",
		PassportNumber:   "Z7654321",
		PassportExpiry:   dates.Flexible{Time: time.Date(2031, 3, 1, 0, 0, 0, 0, time.UTC)},
		Mobile:           "+919876543210",
		Email:            email,
		Specialty:        registration.SpecialtyDentistry,
		YearsOfPractice:  &years,
		ClinicName:       "Smile Studio",
		ClinicAddress:    "44 Residency Road, Bengaluru",
		Designation:      "Founder",
		FoodPreference:   registration.FoodBoth,
		EmergencyContact: "+919812345678",
		TermsAccepted:    true,
	}
}

func (s *ServiceSuite) submit(email string) registration.Registration {
	reg, err := s.registrations.Submit(s.ctx, candidate(email))
	s.Require().NoError(err)
	return reg
}

func (s *ServiceSuite) TestSubmitDefaults() {
	reg := s.submit("meera@example.com")

	s.NotEmpty(reg.ID)
	s.Equal(registration.StatusPending, reg.RegistrationStatus)
	s.Equal(registration.PaymentUnpaid, reg.PaymentStatus)
	s.True(reg.RegistrationDate.Equal(testNow))

	stored, err := s.registrations.Get(s.ctx, reg.ID)
	s.Require().NoError(err)
	s.Equal(reg.Email, stored.Email)
	s.Equal(1.0, testutil.ToFloat64(s.prom.AdmissionsTotal.WithLabelValues("accepted")))
}

func (s *ServiceSuite) TestSubmitAgeScenario() {
	young := candidate("young@example.com")
	young.DateOfBirth = dates.Flexible{Time: testNow.AddDate(-17, 0, 0)}

	_, err := s.registrations.Submit(s.ctx, young)
	var verr *apperr.ValidationError
	s.Require().ErrorAs(err, &verr)
	s.Require().Len(verr.Violations, 1)
	s.Equal("dateOfBirth", verr.Violations[0].Field)
	s.Equal("must be at least 18 years old", verr.Violations[0].Message)

	n, err := s.regRepo.Count(s.ctx, registration.Filter{})
	s.Require().NoError(err)
	s.Zero(n)

	adult := candidate("young@example.com")
	adult.DateOfBirth = dates.Flexible{Time: testNow.AddDate(-19, 0, 0)}

	reg, err := s.registrations.Submit(s.ctx, adult)
	s.Require().NoError(err)
	s.Equal(registration.StatusPending, reg.RegistrationStatus)
	s.Equal(registration.PaymentUnpaid, reg.PaymentStatus)
}

func (s *ServiceSuite) TestSubmitDuplicateEmail() {
	s.submit("dup@example.com")

	again := candidate("dup@example.com")
	again.FullName = "Someone Else"

	_, err := s.registrations.Submit(s.ctx, again)
	s.Require().ErrorIs(err, registration.ErrDuplicateEmail)
	s.ErrorIs(err, apperr.ErrConflict)

	// exact match only
	_, err = s.registrations.Submit(s.ctx, candidate("Dup@example.com"))
	s.NoError(err)
}

func (s *ServiceSuite) TestDuplicateEmailIncludesCancelled() {
	reg := s.submit("gone@example.com")

	_, err := s.registrations.Cancel(s.ctx, reg.ID)
	s.Require().NoError(err)

	_, err = s.registrations.Submit(s.ctx, candidate("gone@example.com"))
	s.ErrorIs(err, registration.ErrDuplicateEmail)
}

func (s *ServiceSuite) TestSubmitAfterDeadline() {
	s.setNow(s.ev.RegistrationDeadline.Add(time.Second))

	bad := candidate("late@example.com")
	bad.TermsAccepted = false

	_, err := s.registrations.Submit(s.ctx, bad)
	s.ErrorIs(err, registration.ErrDeadlinePassed)
}

func (s *ServiceSuite) TestSubmitAtDeadlineIsAccepted() {
	s.setNow(s.ev.RegistrationDeadline)

	_, err := s.registrations.Submit(s.ctx, candidate("ontime@example.com"))
	s.NoError(err)
}

func (s *ServiceSuite) TestDuplicateCheckedBeforeValidation() {
	s.submit("first@example.com")

	bad := candidate("first@example.com")
	bad.Mobile = "123"

	_, err := s.registrations.Submit(s.ctx, bad)
	s.ErrorIs(err, registration.ErrDuplicateEmail)
}

func (s *ServiceSuite) TestCapacity() {
	var first registration.Registration
	for i := 0; i < s.ev.Capacity; i++ {
		reg := s.submit(fmt.Sprintf("delegate%03d@example.com", i))
		if i == 0 {
			first = reg
		}
	}

	_, err := s.registrations.Submit(s.ctx, candidate("late@example.com"))
	s.Require().ErrorIs(err, registration.ErrCapacityReached)

	_, err = s.registrations.Cancel(s.ctx, first.ID)
	s.Require().NoError(err)

	_, err = s.registrations.Submit(s.ctx, candidate("late@example.com"))
	s.Require().NoError(err)

	_, err = s.registrations.Submit(s.ctx, candidate("later@example.com"))
	s.ErrorIs(err, registration.ErrCapacityReached)
}

func (s *ServiceSuite) TestCapacityCheckedBeforeValidation() {
	s.ev.Capacity = 1
	s.registrations.event = s.ev
	s.submit("only@example.com")

	bad := candidate("next@example.com")
	bad.TermsAccepted = false

	_, err := s.registrations.Submit(s.ctx, bad)
	s.ErrorIs(err, registration.ErrCapacityReached)
}

func (s *ServiceSuite) TestUpdateRegistration() {
	reg := s.submit("upd@example.com")

	s.Run("no data", func() {
		got, res, err := s.registrations.Update(s.ctx, reg.ID, registration.UpdateRequest{})
		s.Require().NoError(err)
		s.Equal(NoUpdateData, res)
		s.Equal(reg.ID, got.ID)
	})

	s.Run("same values", func() {
		same := reg.Mobile
		got, res, err := s.registrations.Update(s.ctx, reg.ID, registration.UpdateRequest{Mobile: &same})
		s.Require().NoError(err)
		s.Equal(Unchanged, res)
		s.Equal("No changes were made", res.Message("Registration updated successfully"))
		s.True(got.LastUpdated.Equal(reg.LastUpdated))
	})

	s.Run("changed", func() {
		s.setNow(testNow.Add(time.Hour))
		confirmed := registration.StatusConfirmed

		got, res, err := s.registrations.Update(s.ctx, reg.ID, registration.UpdateRequest{RegistrationStatus: &confirmed})
		s.Require().NoError(err)
		s.Equal(Updated, res)
		s.Equal(registration.StatusConfirmed, got.RegistrationStatus)
		s.True(got.LastUpdated.Equal(testNow.Add(time.Hour)))
	})

	s.Run("invalid", func() {
		bogus := registration.Status("archived")
		_, _, err := s.registrations.Update(s.ctx, reg.ID, registration.UpdateRequest{RegistrationStatus: &bogus})
		var verr *apperr.ValidationError
		s.ErrorAs(err, &verr)
	})

	s.Run("missing", func() {
		_, _, err := s.registrations.Update(s.ctx, "nope", registration.UpdateRequest{})
		s.ErrorIs(err, registration.ErrNotFound)
	})
}

func (s *ServiceSuite) TestEmailExists() {
	s.submit("known@example.com")

	ok, err := s.registrations.EmailExists(s.ctx, "known@example.com")
	s.Require().NoError(err)
	s.True(ok)

	ok, err = s.registrations.EmailExists(s.ctx, "unknown@example.com")
	s.Require().NoError(err)
	s.False(ok)
}

func (s *ServiceSuite) TestListTotalsIgnorePaging() {
	for i := 0; i < 5; i++ {
		s.setNow(testNow.Add(time.Duration(i) * time.Minute))
		s.submit(fmt.Sprintf("p%d@example.com", i))
	}

	page, err := s.registrations.List(s.ctx, registration.Filter{Limit: 2})
	s.Require().NoError(err)
	s.EqualValues(5, page.Total)
	s.Require().Len(page.Items, 2)
	s.Equal("p4@example.com", page.Items[0].Email)
}

func (s *ServiceSuite) TestContactLifecycle() {
	c, err := s.contacts.Submit(s.ctx, contact.CreateRequest{
		Name:    "Arjun",
		Email:   "arjun@example.com",
		Subject: "Hotel booking",
		Message: "Is there a partner hotel near the venue?",
	})
	s.Require().NoError(err)
	s.Equal(contact.StatusOpen, c.Status)
	s.Equal(contact.InquiryGeneral, c.InquiryType)

	responded := contact.StatusResponded
	got, res, err := s.contacts.UpdateStatus(s.ctx, c.ID, contact.UpdateRequest{Status: &responded})
	s.Require().NoError(err)
	s.Equal(Updated, res)
	s.Equal(contact.StatusResponded, got.Status)

	_, res, err = s.contacts.UpdateStatus(s.ctx, c.ID, contact.UpdateRequest{Status: &responded})
	s.Require().NoError(err)
	s.Equal(Unchanged, res)

	_, err = s.contacts.Submit(s.ctx, contact.CreateRequest{Name: "A"})
	var verr *apperr.ValidationError
	s.ErrorAs(err, &verr)
}

func (s *ServiceSuite) TestPaymentInfoCreatesOnce() {
	reg := s.submit("pay@example.com")

	p1, info, err := s.payments.Info(s.ctx, reg.ID)
	s.Require().NoError(err)
	s.Equal(payment.StatusPending, p1.Status)
	s.Equal(283500.0, p1.TotalINR)
	s.Equal(reg.ID, info.RegistrationID)

	p2, _, err := s.payments.Info(s.ctx, reg.ID)
	s.Require().NoError(err)
	s.Equal(p1.ID, p2.ID)

	_, _, err = s.payments.Info(s.ctx, "missing")
	s.ErrorIs(err, registration.ErrNotFound)
}

func (s *ServiceSuite) TestPaymentSubmit() {
	reg := s.submit("claim@example.com")

	p, err := s.payments.Submit(s.ctx, payment.CreateRequest{RegistrationID: reg.ID})
	s.Require().NoError(err)
	s.Nil(p.PaymentDate)
	s.Equal(registration.PaymentUnpaid, s.paymentStatusOf(reg.ID))

	tx := "UTR0099"
	p2, err := s.payments.Submit(s.ctx, payment.CreateRequest{RegistrationID: reg.ID, TransactionID: &tx})
	s.Require().NoError(err)
	s.Equal(p.ID, p2.ID)
	s.Require().NotNil(p2.PaymentDate)
	s.True(p2.PaymentDate.Equal(testNow))
	s.Equal(registration.PaymentAdvancePaid, s.paymentStatusOf(reg.ID))

	_, err = s.payments.Submit(s.ctx, payment.CreateRequest{RegistrationID: "missing"})
	s.ErrorIs(err, registration.ErrNotFound)
}

func (s *ServiceSuite) TestPaymentStatusSync() {
	reg := s.submit("sync@example.com")
	p, _, err := s.payments.Info(s.ctx, reg.ID)
	s.Require().NoError(err)

	s.setNow(testNow.Add(2 * time.Hour))
	completed := payment.StatusCompleted

	got, res, err := s.payments.Update(s.ctx, p.ID, payment.UpdateRequest{Status: &completed}, "admin")
	s.Require().NoError(err)
	s.Equal(Updated, res)
	s.Equal(payment.StatusCompleted, got.Status)
	s.Require().NotNil(got.VerificationDate)
	s.True(got.VerificationDate.Equal(testNow.Add(2 * time.Hour)))
	s.Require().NotNil(got.VerifiedBy)
	s.Equal("admin", *got.VerifiedBy)
	s.Equal(registration.PaymentFullPaid, s.paymentStatusOf(reg.ID))

	failed := payment.StatusFailed
	_, _, err = s.payments.Update(s.ctx, p.ID, payment.UpdateRequest{Status: &failed}, "admin")
	s.Require().NoError(err)
	s.Equal(registration.PaymentUnpaid, s.paymentStatusOf(reg.ID))

	partial := payment.StatusPartial
	_, _, err = s.payments.Update(s.ctx, p.ID, payment.UpdateRequest{Status: &partial}, "admin")
	s.Require().NoError(err)
	s.Equal(registration.PaymentAdvancePaid, s.paymentStatusOf(reg.ID))
}

func (s *ServiceSuite) TestPaymentResubmitKeepsReviewedStatus() {
	reg := s.submit("resubmit@example.com")

	tx := "UTR7788"
	p, err := s.payments.Submit(s.ctx, payment.CreateRequest{RegistrationID: reg.ID, TransactionID: &tx})
	s.Require().NoError(err)
	s.Equal(registration.PaymentAdvancePaid, s.paymentStatusOf(reg.ID))

	completed := payment.StatusCompleted
	_, _, err = s.payments.Update(s.ctx, p.ID, payment.UpdateRequest{Status: &completed}, "admin")
	s.Require().NoError(err)
	s.Equal(registration.PaymentFullPaid, s.paymentStatusOf(reg.ID))

	proof := "https://files.example.com/receipt.pdf"
	again, err := s.payments.Submit(s.ctx, payment.CreateRequest{RegistrationID: reg.ID, ProofURL: &proof})
	s.Require().NoError(err)
	s.Equal(payment.StatusCompleted, again.Status)
	s.Equal(registration.PaymentFullPaid, s.paymentStatusOf(reg.ID))

	failed := payment.StatusFailed
	_, _, err = s.payments.Update(s.ctx, p.ID, payment.UpdateRequest{Status: &failed}, "admin")
	s.Require().NoError(err)

	_, err = s.payments.Submit(s.ctx, payment.CreateRequest{RegistrationID: reg.ID, TransactionID: &tx})
	s.Require().NoError(err)
	s.Equal(registration.PaymentUnpaid, s.paymentStatusOf(reg.ID))
}

func (s *ServiceSuite) TestRepeatedCompleteKeepsVerificationDate() {
	reg := s.submit("verified@example.com")
	p, _, err := s.payments.Info(s.ctx, reg.ID)
	s.Require().NoError(err)

	completed := payment.StatusCompleted
	first, _, err := s.payments.Update(s.ctx, p.ID, payment.UpdateRequest{Status: &completed}, "admin")
	s.Require().NoError(err)
	s.Require().NotNil(first.VerificationDate)

	s.setNow(testNow.Add(24 * time.Hour))
	again, res, err := s.payments.Update(s.ctx, p.ID, payment.UpdateRequest{Status: &completed}, "admin")
	s.Require().NoError(err)
	s.Equal(Unchanged, res)
	s.Require().NotNil(again.VerificationDate)
	s.True(again.VerificationDate.Equal(*first.VerificationDate))
}

func (s *ServiceSuite) TestApplyPaymentUpdateRejectsUnknownStatus() {
	reg := s.submit("unknown@example.com")

	err := s.payments.ApplyPaymentUpdate(s.ctx, reg.ID, payment.Status("refunded"))
	var verr *apperr.ValidationError
	s.Require().ErrorAs(err, &verr)
	s.Equal(registration.PaymentUnpaid, s.paymentStatusOf(reg.ID))
}

func (s *ServiceSuite) TestPaymentUpdateNoChanges() {
	reg := s.submit("idem@example.com")
	p, _, err := s.payments.Info(s.ctx, reg.ID)
	s.Require().NoError(err)

	pending := payment.StatusPending
	got, res, err := s.payments.Update(s.ctx, p.ID, payment.UpdateRequest{Status: &pending}, "admin")
	s.Require().NoError(err)
	s.Equal(Unchanged, res)
	s.True(got.LastUpdated.Equal(p.LastUpdated))

	_, res, err = s.payments.Update(s.ctx, p.ID, payment.UpdateRequest{}, "admin")
	s.Require().NoError(err)
	s.Equal(NoUpdateData, res)
}

func (s *ServiceSuite) TestPaymentStats() {
	completed := payment.StatusCompleted

	for i := 0; i < 5; i++ {
		reg := s.submit(fmt.Sprintf("stat%d@example.com", i))
		p, _, err := s.payments.Info(s.ctx, reg.ID)
		s.Require().NoError(err)

		if i < 3 {
			_, _, err = s.payments.Update(s.ctx, p.ID, payment.UpdateRequest{Status: &completed}, "admin")
			s.Require().NoError(err)
		}
	}

	st, err := s.stats.Payments(s.ctx)
	s.Require().NoError(err)
	s.EqualValues(5, st.TotalPayments)
	s.EqualValues(3, st.ByStatus[payment.StatusCompleted])
	s.EqualValues(2, st.ByStatus[payment.StatusPending])
	s.Equal(850500.0, st.Amounts.TotalCollectedINR)
	s.Equal(567000.0, st.Amounts.PendingAmountINR)
	s.Equal(200*283500.0, st.BankDetails.TotalExpectedIfFull)
}

func (s *ServiceSuite) TestRegistrationStats() {
	a := s.submit("s1@example.com")
	s.submit("s2@example.com")

	_, err := s.registrations.Cancel(s.ctx, a.ID)
	s.Require().NoError(err)

	st, err := s.stats.Registrations(s.ctx)
	s.Require().NoError(err)
	s.EqualValues(2, st.TotalRegistrations)
	s.EqualValues(1, st.ActiveRegistrations)
	s.EqualValues(199, st.AvailableSpots)
	s.EqualValues(1, st.ByStatus[registration.StatusCancelled])
	s.EqualValues(2, st.BySpecialty[registration.SpecialtyDentistry])
	s.False(st.DeadlinePassed)
}

func (s *ServiceSuite) TestStatsCacheServesUntilExpiry() {
	cached := NewStats(s.regRepo, s.contactRepo, s.payRepo, s.ev).WithCache(time.Minute)
	s.submit("c1@example.com")

	first, err := cached.Registrations(s.ctx)
	s.Require().NoError(err)
	s.EqualValues(1, first.TotalRegistrations)

	s.submit("c2@example.com")

	again, err := cached.Registrations(s.ctx)
	s.Require().NoError(err)
	s.EqualValues(1, again.TotalRegistrations)

	live, err := s.stats.Registrations(s.ctx)
	s.Require().NoError(err)
	s.EqualValues(2, live.TotalRegistrations)
}

// countRespectingCancel fails counts on a cancelled context like a real driver does.
type countRespectingCancel struct {
	*memory.RegistrationsRepo
}

func (r countRespectingCancel) Count(ctx context.Context, f registration.Filter) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return r.RegistrationsRepo.Count(ctx, f)
}

func (s *ServiceSuite) TestStatsCacheLoadOutlivesCancelledCaller() {
	cached := NewStats(countRespectingCancel{s.regRepo}, s.contactRepo, s.payRepo, s.ev).WithCache(time.Minute)
	s.submit("early@example.com")

	cancelled, cancel := context.WithCancel(s.ctx)
	cancel()

	st, err := cached.Registrations(cancelled)
	s.Require().NoError(err)
	s.EqualValues(1, st.TotalRegistrations)

	again, err := cached.Registrations(s.ctx)
	s.Require().NoError(err)
	s.EqualValues(1, again.TotalRegistrations)
}

func (s *ServiceSuite) TestContactStatsRecentWindow() {
	s.setNow(testNow.AddDate(0, 0, -9))
	_, err := s.contacts.Submit(s.ctx, contact.CreateRequest{Name: "Old", Email: "old@example.com", Subject: "Old question", Message: "Asked a long time ago."})
	s.Require().NoError(err)

	s.setNow(testNow)
	_, err = s.contacts.Submit(s.ctx, contact.CreateRequest{Name: "New", Email: "new@example.com", Subject: "New question", Message: "Asked just now, please help.", InquiryType: contact.InquiryTechnical})
	s.Require().NoError(err)

	st, err := s.stats.Contacts(s.ctx)
	s.Require().NoError(err)
	s.EqualValues(2, st.TotalInquiries)
	s.EqualValues(1, st.RecentInquiries)
	s.EqualValues(1, st.ByType[contact.InquiryTechnical])
	s.EqualValues(2, st.ByStatus[contact.StatusOpen])
}

func (s *ServiceSuite) paymentStatusOf(registrationID string) registration.PaymentStatus {
	reg, err := s.regRepo.GetByID(s.ctx, registrationID)
	s.Require().NoError(err)
	return reg.PaymentStatus
}
