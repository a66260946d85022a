package validation

import (
	"fmt"
	"math"

	validatorv10 "github.com/go-playground/validator/v10"
)

// New returns a configured validator with custom struct-level validation
// registered.
func New() *validatorv10.Validate {
	v := validatorv10.New()

	// the tendered legs must add up to the claimed total, compared in cents
	// so float representation noise cannot fail an amount that displays equal
	v.RegisterStructValidation(tenderStructValidation, TenderRequest{})

	return v
}

func tenderStructValidation(sl validatorv10.StructLevel) {
	req := sl.Current().Interface().(TenderRequest)

	sumCents := int64(math.Round(req.CashAmount*100)) + int64(math.Round(req.CardAmount*100))
	paidCents := int64(math.Round(req.AmountPaid * 100))
	if sumCents != paidCents {
		sl.ReportError(req.AmountPaid, "amount_paid", "AmountPaid", "amount_match_tender",
			fmt.Sprintf("cash+card %.2f != amount_paid %.2f", req.CashAmount+req.CardAmount, req.AmountPaid))
	}
}
