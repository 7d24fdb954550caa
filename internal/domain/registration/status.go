package registration

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return true
	default:
		return false
	}
}

func Statuses() []Status {
	return []Status{StatusPending, StatusConfirmed, StatusCancelled}
}

type PaymentStatus string

const (
	PaymentUnpaid      PaymentStatus = "unpaid"
	PaymentAdvancePaid PaymentStatus = "advance_paid"
	PaymentFullPaid    PaymentStatus = "full_paid"
)

func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentUnpaid, PaymentAdvancePaid, PaymentFullPaid:
		return true
	default:
		return false
	}
}

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

type Specialty string

const (
	SpecialtyDermatology Specialty = "dermatology"
	SpecialtyDentistry   Specialty = "dentistry"
	SpecialtyCosmetology Specialty = "cosmetology"
	SpecialtyOther       Specialty = "other"
)

func Specialties() []Specialty {
	return []Specialty{SpecialtyDermatology, SpecialtyDentistry, SpecialtyCosmetology, SpecialtyOther}
}

type FoodPreference string

const (
	FoodVegetarian    FoodPreference = "vegetarian"
	FoodNonVegetarian FoodPreference = "non-vegetarian"
	FoodBoth          FoodPreference = "both"
)

type Interest string

const (
	InterestDentalEquipment  Interest = "Dental Equipment"
	InterestSkincareDevices  Interest = "Skincare Devices"
	InterestCosmeticProducts Interest = "Cosmetic Products"
)
