package registration

import (
	"fmt"
	"time"

	"github.com/kicon/kiconapi/internal/apperr"
	"github.com/kicon/kiconapi/internal/config"
	"github.com/kicon/kiconapi/internal/validation"
)

const daysPerYear = 365.25

// Validate checks field constraints first, then the derived rules (age, passport, terms).
// The result lists every violation; nothing is partially accepted.
func Validate(req CreateRequest, now time.Time, ev config.EventConfig) error {
	verr := apperr.NewValidationError(validation.Check(req)...)

	for _, v := range derivedViolations(req, now, ev) {
		verr.Add(v)
	}

	return verr.OrNil()
}

func derivedViolations(req CreateRequest, now time.Time, ev config.EventConfig) []apperr.FieldViolation {
	var out []apperr.FieldViolation

	if v, ok := checkAge(req.DateOfBirth.Time, now, ev.MinimumAge); !ok {
		out = append(out, v)
	}

	if v, ok := checkPassport(req.PassportExpiry.Time, now, ev); !ok {
		out = append(out, v)
	}

	if !req.TermsAccepted {
		out = append(out, apperr.FieldViolation{
			Field:   "termsAccepted",
			Rule:    "accepted",
			Message: "terms and conditions must be accepted",
		})
	}

	return out
}

// AgeYears measures age in 365.25-day years.
func AgeYears(dob, now time.Time) float64 {
	return now.Sub(dob).Hours() / 24 / daysPerYear
}

func checkAge(dob, now time.Time, minAge int) (apperr.FieldViolation, bool) {
	const field = "dateOfBirth"

	switch {
	case dob.IsZero():
		return apperr.FieldViolation{Field: field, Rule: "required", Message: "is required"}, false
	case dob.After(now):
		return apperr.FieldViolation{Field: field, Rule: "past", Message: "date of birth cannot be in the future"}, false
	case AgeYears(dob, now) < float64(minAge):
		return apperr.FieldViolation{
			Field:   field,
			Rule:    "min_age",
			Param:   fmt.Sprint(minAge),
			Message: fmt.Sprintf("must be at least %d years old", minAge),
		}, false
	}

	return apperr.FieldViolation{}, true
}

func checkPassport(expiry, now time.Time, ev config.EventConfig) (apperr.FieldViolation, bool) {
	const field = "passportExpiry"

	minExpiry := ev.MinPassportExpiry()

	switch {
	case expiry.IsZero():
		return apperr.FieldViolation{Field: field, Rule: "required", Message: "is required"}, false
	case !expiry.After(now):
		return apperr.FieldViolation{Field: field, Rule: "not_expired", Message: "passport must be valid (not expired)"}, false
	case expiry.Before(minExpiry):
		return apperr.FieldViolation{
			Field:   field,
			Rule:    "min_validity",
			Param:   minExpiry.Format("2006-01-02"),
			Message: fmt.Sprintf("passport must be valid for at least %d months after event end", ev.PassportValidityAfter),
		}, false
	}

	return apperr.FieldViolation{}, true
}
