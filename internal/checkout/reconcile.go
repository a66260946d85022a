package checkout

// Payment method names as the external sale endpoint expects them.
const (
	MethodCash   = "cash"
	MethodCard   = "card"
	MethodSplit  = "split"
	MethodCredit = "credit"
)

// SaleContext selects the reconciliation mode. The original front-end
// inferred the mode from the presence of a customer id in the navigation
// context; here it is an explicit tagged value.
type SaleContext struct {
	credit     bool
	customerID int
}

// StandardSale is a walk-in sale: full payment required before confirm.
func StandardSale() SaleContext {
	return SaleContext{}
}

// CreditSale is a premium-client sale: partial payment (including zero) is
// permitted and the unpaid remainder becomes an outstanding balance on the
// customer account, which the external system of record tracks.
func CreditSale(customerID int) SaleContext {
	return SaleContext{credit: true, customerID: customerID}
}

// IsCredit reports whether the context is a credit-eligible sale.
func (sc SaleContext) IsCredit() bool { return sc.credit }

// CustomerID returns the attached customer id and whether one is present.
func (sc SaleContext) CustomerID() (int, bool) { return sc.customerID, sc.credit }

// Tender is the money offered toward settling a sale, by method.
// Both amounts are >= 0.
type Tender struct {
	CashCents int64 `json:"cash_cents"`
	CardCents int64 `json:"card_cents"`
}

// TotalCents is the combined tendered amount.
func (t Tender) TotalCents() int64 { return t.CashCents + t.CardCents }

// Reconciliation is the outcome of matching a tender against a total due.
type Reconciliation struct {
	TotalPaidCents int64  `json:"total_paid_cents"`
	ChangeCents    int64  `json:"change_cents"`
	RemainingCents int64  `json:"remaining_cents"`
	Method         string `json:"method"`
	CanConfirm     bool   `json:"can_confirm"`
}

// Reconcile decides whether the proposed tender completes the sale and
// computes change and remaining balance.
//
// Standard sales require totalPaid >= total; change is the excess,
// attributed to the cash tender (card amounts are never refunded). Credit
// sales may always confirm, even with nothing tendered; change is 0 in that
// mode and the remainder is reported for the account ledger upstream.
//
// All comparisons are exact cent arithmetic, and change/remaining clamp at
// 0, so no negative money values can escape.
func Reconcile(totals Totals, tender Tender, sc SaleContext) Reconciliation {
	paid := tender.TotalCents()

	r := Reconciliation{
		TotalPaidCents: paid,
		Method:         methodFor(tender, sc),
	}

	if remaining := totals.TotalCents - paid; remaining > 0 {
		r.RemainingCents = remaining
	}

	if sc.IsCredit() {
		r.CanConfirm = true
		return r
	}

	if change := paid - totals.TotalCents; change > 0 {
		r.ChangeCents = change
	}
	r.CanConfirm = paid >= totals.TotalCents
	return r
}

// methodFor mirrors the original front-end's method derivation: credit
// context always reports "credit"; otherwise card-only is "card", both legs
// positive is "split", and everything else (cash-only included) is "cash".
func methodFor(t Tender, sc SaleContext) string {
	if sc.IsCredit() {
		return MethodCredit
	}
	switch {
	case t.CardCents > 0 && t.CashCents > 0:
		return MethodSplit
	case t.CardCents > 0:
		return MethodCard
	default:
		return MethodCash
	}
}
