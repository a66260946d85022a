package sales

import "time"

// Journal entry statuses. RECORDED means the sale was accepted upstream and
// journaled; the worker moves it through RENDERING to COMPLETED once the
// receipt and metrics are done, or to FAILED.
const (
	StatusRecorded  = "RECORDED"
	StatusRendering = "RENDERING"
	StatusCompleted = "COMPLETED"
	StatusFailed    = "FAILED"
)

// Line is one sold position as journaled.
type Line struct {
	ProductID      int    `dynamodbav:"product_id"`
	Name           string `dynamodbav:"name"`
	Quantity       int    `dynamodbav:"quantity"`
	UnitPriceCents int64  `dynamodbav:"unit_price_cents"`
}

// Sale is the item stored in the sales journal table. The journal is a local
// audit/receipt record; the external API remains the system of record for
// stock and balances.
type Sale struct {
	SaleID         string    `dynamodbav:"sale_id"` // PK
	SessionID      string    `dynamodbav:"session_id,omitempty"`
	CashierName    string    `dynamodbav:"cashier_name,omitempty"`
	CustomerID     int       `dynamodbav:"customer_id,omitempty"`
	Method         string    `dynamodbav:"method"` // cash | card | split | credit
	Lines          []Line    `dynamodbav:"lines,omitempty"`
	SubtotalCents  int64     `dynamodbav:"subtotal_cents"`
	DiscountCents  int64     `dynamodbav:"discount_cents"`
	TotalCents     int64     `dynamodbav:"total_cents"`
	CashCents      int64     `dynamodbav:"cash_cents"`
	CardCents      int64     `dynamodbav:"card_cents"`
	ChangeCents    int64     `dynamodbav:"change_cents"`
	RemainingCents int64     `dynamodbav:"remaining_cents"`
	Status         string    `dynamodbav:"status"`
	CreatedAt      time.Time `dynamodbav:"created_at"`
	UpdatedAt      time.Time `dynamodbav:"updated_at"`
	Attempts       int       `dynamodbav:"attempts,omitempty"`
}
