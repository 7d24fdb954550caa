package registration

import (
	"slices"

	"github.com/kicon/kiconapi/internal/apperr"
	"github.com/kicon/kiconapi/internal/validation"
)

// UpdateRequest is the administrative patch; identity and passport fields are immutable.
type UpdateRequest struct {
	Mobile            *string         `json:"mobile" validate:"omitempty,phone"`
	ClinicName        *string         `json:"clinicName" validate:"omitempty,min=2,max=200"`
	ClinicAddress     *string         `json:"clinicAddress" validate:"omitempty,min=10,max=500"`
	Company           *string         `json:"company" validate:"omitempty,max=200"`
	Designation       *string         `json:"designation" validate:"omitempty,min=2,max=100"`
	Interests         *[]Interest     `json:"interests" validate:"omitempty,dive,oneof='Dental Equipment' 'Skincare Devices' 'Cosmetic Products'"`
	MoU               *bool           `json:"mou"`
	FoodPreference    *FoodPreference `json:"foodPreference" validate:"omitempty,oneof=vegetarian non-vegetarian both"`
	EmergencyContact  *string         `json:"emergencyContact" validate:"omitempty,phone"`
	Allergies         *string         `json:"allergies" validate:"omitempty,max=500"`
	SpecialAssistance *bool           `json:"specialAssistance"`

	RegistrationStatus *Status        `json:"registrationStatus" validate:"omitempty,oneof=pending confirmed cancelled"`
	PaymentStatus      *PaymentStatus `json:"paymentStatus" validate:"omitempty,oneof=unpaid advance_paid full_paid"`
}

func (u UpdateRequest) Validate() error {
	return apperr.NewValidationError(validation.Check(u)...).OrNil()
}

func (u UpdateRequest) IsEmpty() bool {
	return u.Mobile == nil && u.ClinicName == nil && u.ClinicAddress == nil && u.Company == nil &&
		u.Designation == nil && u.Interests == nil && u.MoU == nil && u.FoodPreference == nil &&
		u.EmergencyContact == nil && u.Allergies == nil && u.SpecialAssistance == nil &&
		u.RegistrationStatus == nil && u.PaymentStatus == nil
}

// Changes returns only the supplied fields whose value differs from cur.
func (u UpdateRequest) Changes(cur Registration) Changes {
	ch := Changes{}

	setString(ch, "mobile", u.Mobile, cur.Mobile)
	setString(ch, "clinicName", u.ClinicName, cur.ClinicName)
	setString(ch, "clinicAddress", u.ClinicAddress, cur.ClinicAddress)
	setOptionalString(ch, "company", u.Company, cur.Company)
	setString(ch, "designation", u.Designation, cur.Designation)
	setOptionalString(ch, "allergies", u.Allergies, cur.Allergies)
	setString(ch, "emergencyContact", u.EmergencyContact, cur.EmergencyContact)

	if u.Interests != nil && !slices.Equal(*u.Interests, cur.Interests) {
		ch["interests"] = *u.Interests
	}
	if u.MoU != nil && *u.MoU != cur.MoU {
		ch["mou"] = *u.MoU
	}
	if u.FoodPreference != nil && *u.FoodPreference != cur.FoodPreference {
		ch["foodPreference"] = *u.FoodPreference
	}
	if u.SpecialAssistance != nil && *u.SpecialAssistance != cur.SpecialAssistance {
		ch["specialAssistance"] = *u.SpecialAssistance
	}
	if u.RegistrationStatus != nil && *u.RegistrationStatus != cur.RegistrationStatus {
		ch[FieldRegistrationStatus] = *u.RegistrationStatus
	}
	if u.PaymentStatus != nil && *u.PaymentStatus != cur.PaymentStatus {
		ch[FieldPaymentStatus] = *u.PaymentStatus
	}

	return ch
}

func setString(ch Changes, field string, next *string, cur string) {
	if next != nil && *next != cur {
		ch[field] = *next
	}
}

func setOptionalString(ch Changes, field string, next *string, cur *string) {
	if next == nil {
		return
	}
	if cur == nil || *cur != *next {
		ch[field] = *next
	}
}
