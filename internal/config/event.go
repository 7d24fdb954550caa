package config

import "time"

// EventConfig holds the fixed business parameters of the convention.
// It is built once at startup and handed to the services by value.
type EventConfig struct {
	Capacity             int
	RegistrationDeadline time.Time
	// EventEnd is the day after the last convention day; passports are measured against it.
	EventEnd              time.Time
	PassportValidityAfter Months
	MinimumAge            int

	Fee  FeeConfig
	Bank BankConfig
}

type Months int

type FeeConfig struct {
	USDAmount     float64
	ExchangeRate  float64
	GSTPercentage float64
}

type BankConfig struct {
	BankName      string
	AccountName   string
	AccountNumber string
	IFSCCode      string
	Branch        string
}

func DefaultEventConfig() EventConfig {
	return EventConfig{
		Capacity:              200,
		RegistrationDeadline:  time.Date(2025, 10, 17, 23, 59, 59, 0, time.UTC),
		EventEnd:              time.Date(2025, 11, 27, 0, 0, 0, 0, time.UTC),
		PassportValidityAfter: 6,
		MinimumAge:            18,
		Fee: FeeConfig{
			USDAmount:     3000,
			ExchangeRate:  90,
			GSTPercentage: 5,
		},
		Bank: BankConfig{
			BankName:      "HDFC BANK",
			AccountName:   "ARYAN & DRAVIDIAN TRAD & CONSULT P LTD.",
			AccountNumber: "50200073668320",
			IFSCCode:      "HDFC0001360",
			Branch:        "DLHMALVIYA NAGAR BRANCH",
		},
	}
}

// MinPassportExpiry is the earliest acceptable passport expiry date.
func (c EventConfig) MinPassportExpiry() time.Time {
	return c.EventEnd.AddDate(0, int(c.PassportValidityAfter), 0)
}

func (c EventConfig) DeadlinePassed(now time.Time) bool {
	return now.After(c.RegistrationDeadline)
}
