package payment

import (
	"time"

	"github.com/kicon/kiconapi/internal/apperr"
	"github.com/kicon/kiconapi/internal/dates"
	"github.com/kicon/kiconapi/internal/validation"
)

// UpdateRequest is the administrator's verification patch.
type UpdateRequest struct {
	Status           *Status         `json:"payment_status" validate:"omitempty,oneof=pending partial completed failed"`
	TransactionID    *string         `json:"transaction_id" validate:"omitempty,max=100"`
	ProofURL         *string         `json:"payment_proof_url" validate:"omitempty,max=500"`
	PaymentDate      *dates.Flexible `json:"payment_date"`
	VerificationDate *dates.Flexible `json:"verification_date"`
	VerifiedBy       *string         `json:"verified_by" validate:"omitempty,max=100"`
	AdminNotes       *string         `json:"admin_notes" validate:"omitempty,max=1000"`
}

func (u UpdateRequest) Validate() error {
	return apperr.NewValidationError(validation.Check(u)...).OrNil()
}

func (u UpdateRequest) IsEmpty() bool {
	return u.Status == nil && u.TransactionID == nil && u.ProofURL == nil && u.PaymentDate.Ptr() == nil &&
		u.VerificationDate.Ptr() == nil && u.VerifiedBy == nil && u.AdminNotes == nil
}

// Completes reports whether the patch moves the record to completed.
func (u UpdateRequest) Completes() bool {
	return u.Status != nil && *u.Status == StatusCompleted
}

// Changes diffs the patch against cur. A completion without an explicit verification
// date is stamped with now, and attributed to verifier when no one else is named.
func (u UpdateRequest) Changes(cur Payment, now time.Time, verifier string) Changes {
	ch := Changes{}

	if u.Status != nil && *u.Status != cur.Status {
		ch[FieldStatus] = *u.Status
	}

	setOptionalString(ch, FieldTransactionID, u.TransactionID, cur.TransactionID)
	setOptionalString(ch, FieldProofURL, u.ProofURL, cur.ProofURL)
	setOptionalString(ch, FieldVerifiedBy, u.VerifiedBy, cur.VerifiedBy)
	setOptionalString(ch, FieldAdminNotes, u.AdminNotes, cur.AdminNotes)
	setOptionalTime(ch, FieldPaymentDate, u.PaymentDate.Ptr(), cur.PaymentDate)
	setOptionalTime(ch, FieldVerificationDate, u.VerificationDate.Ptr(), cur.VerificationDate)

	if u.Completes() && u.VerificationDate.Ptr() == nil && needsVerification(cur) {
		ch[FieldVerificationDate] = now.UTC()

		if u.VerifiedBy == nil && cur.VerifiedBy == nil && verifier != "" {
			ch[FieldVerifiedBy] = verifier
		}
	}

	return ch
}

func needsVerification(cur Payment) bool {
	return cur.Status != StatusCompleted || cur.VerificationDate == nil
}

func setOptionalString(ch Changes, field string, next *string, cur *string) {
	if next == nil {
		return
	}
	if cur == nil || *cur != *next {
		ch[field] = *next
	}
}

func setOptionalTime(ch Changes, field string, next *time.Time, cur *time.Time) {
	if next == nil {
		return
	}
	if cur == nil || !cur.Equal(*next) {
		ch[field] = *next
	}
}

// Submission returns the fields a registrant's claim sets on an existing record.
// Only supplied fields are written; a transaction reference stamps the payment date.
func (r CreateRequest) Submission(now time.Time) Changes {
	ch := Changes{}

	if r.TransactionID != nil {
		ch[FieldTransactionID] = *r.TransactionID
	}
	if r.ProofURL != nil {
		ch[FieldProofURL] = *r.ProofURL
	}
	if r.PaymentNotes != nil {
		ch[FieldPaymentNotes] = *r.PaymentNotes
	}
	if r.HasTransaction() {
		ch[FieldPaymentDate] = now.UTC()
	}

	return ch
}

// Apply sets a claim on a freshly built record.
func (r CreateRequest) Apply(p *Payment, now time.Time) {
	p.TransactionID = r.TransactionID
	p.ProofURL = r.ProofURL
	p.PaymentNotes = r.PaymentNotes

	if r.HasTransaction() {
		t := now.UTC()
		p.PaymentDate = &t
	}
}
