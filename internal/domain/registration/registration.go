package registration

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kicon/kiconapi/internal/apperr"
	"github.com/kicon/kiconapi/internal/dates"
)

// Stored field names, shared by every store implementation.
const (
	FieldID                 = "_id"
	FieldEmail              = "email"
	FieldSpecialty          = "specialty"
	FieldRegistrationStatus = "registrationStatus"
	FieldPaymentStatus      = "paymentStatus"
	FieldRegistrationDate   = "registrationDate"
	FieldLastUpdated        = "lastUpdated"
)

var (
	ErrNotFound = fmt.Errorf("registration %w", apperr.ErrNotFound)

	ErrDeadlinePassed  = apperr.NewConflict("registration_closed", "Registration deadline has passed. Registration closed on October 17, 2025.")
	ErrDuplicateEmail  = apperr.NewConflict("email_already_registered", "Email already registered. Please use a different email address or contact support.")
	ErrCapacityReached = apperr.NewConflict("capacity_reached", "Registration limit reached. No delegate places are left.")
)

type Registration struct {
	ID string `json:"id" bson:"_id"`

	FullName       string    `json:"fullName" bson:"fullName"`
	Gender         Gender    `json:"gender" bson:"gender"`
	DateOfBirth    time.Time `json:"dateOfBirth" bson:"dateOfBirth"`
	Nationality    string    `json:"nationality" bson:"nationality"`
	PassportNumber string    `json:"passportNumber" bson:"passportNumber"`
	PassportExpiry time.Time `json:"passportExpiry" bson:"passportExpiry"`
	Mobile         string    `json:"mobile" bson:"mobile"`
	Email          string    `json:"email" bson:"email"`

	Specialty       Specialty  `json:"specialty" bson:"specialty"`
	YearsOfPractice int        `json:"yearsOfPractice" bson:"yearsOfPractice"`
	ClinicName      string     `json:"clinicName" bson:"clinicName"`
	ClinicAddress   string     `json:"clinicAddress" bson:"clinicAddress"`
	Company         *string    `json:"company" bson:"company"`
	Designation     string     `json:"designation" bson:"designation"`
	Interests       []Interest `json:"interests" bson:"interests"`
	MoU             bool       `json:"mou" bson:"mou"`

	FoodPreference    FoodPreference `json:"foodPreference" bson:"foodPreference"`
	EmergencyContact  string         `json:"emergencyContact" bson:"emergencyContact"`
	Allergies         *string        `json:"allergies" bson:"allergies"`
	SpecialAssistance bool           `json:"specialAssistance" bson:"specialAssistance"`

	RegistrationStatus Status        `json:"registrationStatus" bson:"registrationStatus"`
	PaymentStatus      PaymentStatus `json:"paymentStatus" bson:"paymentStatus"`
	TermsAccepted      bool          `json:"termsAccepted" bson:"termsAccepted"`
	RegistrationDate   time.Time     `json:"registrationDate" bson:"registrationDate"`
	LastUpdated        time.Time     `json:"lastUpdated" bson:"lastUpdated"`
}

type CreateRequest struct {
	FullName       string         `json:"fullName" validate:"required,min=2,max=100"`
	Gender         Gender         `json:"gender" validate:"required,oneof=male female other"`
	DateOfBirth    dates.Flexible `json:"dateOfBirth"`
	Nationality    string         `json:"nationality" validate:"required,min=2,max=50"`
	PassportNumber string         `json:"passportNumber" validate:"required,min=6,max=20"`
	PassportExpiry dates.Flexible `json:"passportExpiry"`
	Mobile         string         `json:"mobile" validate:"required,phone"`
	Email          string         `json:"email" validate:"required,email"`

	Specialty       Specialty  `json:"specialty" validate:"required,oneof=dermatology dentistry cosmetology other"`
	YearsOfPractice *int       `json:"yearsOfPractice" validate:"required,gte=0,lte=50"`
	ClinicName      string     `json:"clinicName" validate:"required,min=2,max=200"`
	ClinicAddress   string     `json:"clinicAddress" validate:"required,min=10,max=500"`
	Company         *string    `json:"company" validate:"omitempty,max=200"`
	Designation     string     `json:"designation" validate:"required,min=2,max=100"`
	Interests       []Interest `json:"interests" validate:"dive,oneof='Dental Equipment' 'Skincare Devices' 'Cosmetic Products'"`
	MoU             bool       `json:"mou"`

	FoodPreference    FoodPreference `json:"foodPreference" validate:"required,oneof=vegetarian non-vegetarian both"`
	EmergencyContact  string         `json:"emergencyContact" validate:"required,phone"`
	Allergies         *string        `json:"allergies" validate:"omitempty,max=500"`
	SpecialAssistance bool           `json:"specialAssistance"`

	TermsAccepted bool `json:"termsAccepted"`
}

// Filter selects registrations; nil fields do not constrain. Skip/Limit only apply to listing.
type Filter struct {
	Status        *Status
	ExcludeStatus *Status
	Specialty     *Specialty
	Skip          int
	Limit         int
}

// Changes maps stored field names to their new values.
type Changes map[string]any

// New builds the stored entity for an admitted candidate.
func New(req CreateRequest, now time.Time) Registration {
	interests := req.Interests
	if interests == nil {
		interests = []Interest{}
	}

	years := 0
	if req.YearsOfPractice != nil {
		years = *req.YearsOfPractice
	}

	return Registration{
		ID:                 uuid.NewString(),
		FullName:           req.FullName,
		Gender:             req.Gender,
		DateOfBirth:        req.DateOfBirth.UTC(),
		Nationality:        req.Nationality,
		PassportNumber:     req.PassportNumber,
		PassportExpiry:     req.PassportExpiry.UTC(),
		Mobile:             req.Mobile,
		Email:              req.Email,
		Specialty:          req.Specialty,
		YearsOfPractice:    years,
		ClinicName:         req.ClinicName,
		ClinicAddress:      req.ClinicAddress,
		Company:            req.Company,
		Designation:        req.Designation,
		Interests:          interests,
		MoU:                req.MoU,
		FoodPreference:     req.FoodPreference,
		EmergencyContact:   req.EmergencyContact,
		Allergies:          req.Allergies,
		SpecialAssistance:  req.SpecialAssistance,
		RegistrationStatus: StatusPending,
		PaymentStatus:      PaymentUnpaid,
		TermsAccepted:      req.TermsAccepted,
		RegistrationDate:   now.UTC(),
		LastUpdated:        now.UTC(),
	}
}
