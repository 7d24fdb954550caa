package payment

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kicon/kiconapi/internal/apperr"
	"github.com/kicon/kiconapi/internal/config"
	"github.com/kicon/kiconapi/internal/validation"
)

const (
	FieldID               = "_id"
	FieldRegistrationID   = "registration_id"
	FieldStatus           = "payment_status"
	FieldTransactionID    = "transaction_id"
	FieldProofURL         = "payment_proof_url"
	FieldPaymentDate      = "payment_date"
	FieldVerificationDate = "verification_date"
	FieldVerifiedBy       = "verified_by"
	FieldPaymentNotes     = "payment_notes"
	FieldAdminNotes       = "admin_notes"
	FieldTotalINR         = "total_inr_amount"
	FieldCreatedDate      = "created_date"
	FieldLastUpdated      = "last_updated"
)

var ErrNotFound = fmt.Errorf("payment record %w", apperr.ErrNotFound)

type Method string

const (
	MethodBankTransfer Method = "bank_transfer"
	MethodOnline       Method = "online"
	MethodCash         Method = "cash"
)

type Payment struct {
	ID             string `json:"id" bson:"_id"`
	RegistrationID string `json:"registration_id" bson:"registration_id"`
	Method         Method `json:"payment_method" bson:"payment_method"`
	Status         Status `json:"payment_status" bson:"payment_status"`

	// Amounts are fixed when the record is created.
	USDAmount     float64 `json:"usd_amount" bson:"usd_amount"`
	INRBaseAmount float64 `json:"inr_base_amount" bson:"inr_base_amount"`
	GSTAmount     float64 `json:"gst_amount" bson:"gst_amount"`
	TotalINR      float64 `json:"total_inr_amount" bson:"total_inr_amount"`

	TransactionID    *string    `json:"transaction_id" bson:"transaction_id"`
	ProofURL         *string    `json:"payment_proof_url" bson:"payment_proof_url"`
	PaymentDate      *time.Time `json:"payment_date" bson:"payment_date"`
	VerificationDate *time.Time `json:"verification_date" bson:"verification_date"`
	VerifiedBy       *string    `json:"verified_by" bson:"verified_by"`

	BankAccountNumber string `json:"bank_account_number" bson:"bank_account_number"`
	BankName          string `json:"bank_name" bson:"bank_name"`

	CreatedDate time.Time `json:"created_date" bson:"created_date"`
	LastUpdated time.Time `json:"last_updated" bson:"last_updated"`

	PaymentNotes *string `json:"payment_notes" bson:"payment_notes"`
	AdminNotes   *string `json:"admin_notes" bson:"admin_notes"`
}

// CreateRequest is a registrant's claim of a transfer.
type CreateRequest struct {
	RegistrationID string  `json:"registration_id" validate:"required"`
	TransactionID  *string `json:"transaction_id" validate:"omitempty,max=100"`
	ProofURL       *string `json:"payment_proof_url" validate:"omitempty,max=500"`
	PaymentNotes   *string `json:"payment_notes" validate:"omitempty,max=1000"`
}

func (r CreateRequest) Validate() error {
	return apperr.NewValidationError(validation.Check(r)...).OrNil()
}

// HasTransaction reports whether a non-empty transaction reference was supplied.
func (r CreateRequest) HasTransaction() bool {
	return r.TransactionID != nil && *r.TransactionID != ""
}

type Filter struct {
	Status         *Status
	RegistrationID *string
	Skip           int
	Limit          int
}

type Changes map[string]any

// New builds the default record for a registration: bank transfer, pending, standard amounts.
func New(registrationID string, ev config.EventConfig, now time.Time) Payment {
	calc := Calculate(ev.Fee)
	now = now.UTC()

	return Payment{
		ID:                uuid.NewString(),
		RegistrationID:    registrationID,
		Method:            MethodBankTransfer,
		Status:            StatusPending,
		USDAmount:         calc.USDAmount,
		INRBaseAmount:     calc.BaseINRAmount,
		GSTAmount:         calc.GSTAmount,
		TotalINR:          calc.TotalINRAmount,
		BankAccountNumber: ev.Bank.AccountNumber,
		BankName:          ev.Bank.BankName,
		CreatedDate:       now,
		LastUpdated:       now,
	}
}
