package payment

import (
	"math"

	"github.com/kicon/kiconapi/internal/config"
)

type Calculation struct {
	USDAmount      float64 `json:"usd_amount"`
	ExchangeRate   float64 `json:"exchange_rate"`
	BaseINRAmount  float64 `json:"base_inr_amount"`
	GSTPercentage  float64 `json:"gst_percentage"`
	GSTAmount      float64 `json:"gst_amount"`
	TotalINRAmount float64 `json:"total_inr_amount"`
}

// Calculate derives the INR amounts from the USD fee. Amounts are rounded to paise.
func Calculate(fee config.FeeConfig) Calculation {
	base := round2(fee.USDAmount * fee.ExchangeRate)
	gst := round2(base * fee.GSTPercentage / 100)

	return Calculation{
		USDAmount:      fee.USDAmount,
		ExchangeRate:   fee.ExchangeRate,
		BaseINRAmount:  base,
		GSTPercentage:  fee.GSTPercentage,
		GSTAmount:      gst,
		TotalINRAmount: round2(base + gst),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

type BankDetails struct {
	BankName      string `json:"bank_name"`
	AccountName   string `json:"account_name"`
	AccountNumber string `json:"account_number"`
	IFSCCode      string `json:"ifsc_code"`
	Branch        string `json:"branch"`
}

func BankDetailsFrom(b config.BankConfig) BankDetails {
	return BankDetails(b)
}

// BankTransfer is the payload of the public bank-details lookup.
type BankTransfer struct {
	BankDetails  BankDetails `json:"bank_details"`
	Calculation  Calculation `json:"payment_calculation"`
	Instructions string      `json:"instructions"`
}

// Info accompanies a registration's payment record.
type Info struct {
	RegistrationID string      `json:"registration_id"`
	BankDetails    BankDetails `json:"bank_details"`
	Calculation    Calculation `json:"payment_calculation"`
	Instructions   string      `json:"payment_instructions"`
}

const transferInstructions = `Please transfer the total amount to the bank account provided above.

Payment Process:
1. Calculate Total: USD $3,000 × Rs. 90 = Rs. 2,70,000
2. Add GST (5%): Rs. 13,500
3. Final Amount: Rs. 2,83,500 (to be transferred)

After Payment:
• Keep transaction receipt/screenshot
• Send payment proof with your Registration ID
• Payment verification within 24 hours
• Registration confirmed after payment verification`

const registrationInstructions = `Please transfer the amount to the above bank account and send the payment proof to our team.
Payment Instructions:
1. Transfer Rs. 283,500 (including 5% GST) to the provided bank account
2. Keep the transaction receipt/screenshot
3. Send payment proof via email or WhatsApp to our team
4. Include your registration ID in the payment reference
5. Payment confirmation will be processed within 24 hours`

func NewBankTransfer(ev config.EventConfig) BankTransfer {
	return BankTransfer{
		BankDetails:  BankDetailsFrom(ev.Bank),
		Calculation:  Calculate(ev.Fee),
		Instructions: transferInstructions,
	}
}

func NewInfo(registrationID string, ev config.EventConfig) Info {
	return Info{
		RegistrationID: registrationID,
		BankDetails:    BankDetailsFrom(ev.Bank),
		Calculation:    Calculate(ev.Fee),
		Instructions:   registrationInstructions,
	}
}
