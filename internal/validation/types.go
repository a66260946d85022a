package validation

// LoginRequest is the payload for POST /login, forwarded to the external
// auth endpoint.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AddItemRequest adds one unit of a catalog product to the active cart.
// Name and price travel with the request because the catalog lives upstream;
// the cart copies them the way the original front-end copied them from the
// product card.
type AddItemRequest struct {
	ProductID int     `json:"product_id" validate:"required,gt=0"`
	Name      string  `json:"name" validate:"required"`
	Price     float64 `json:"price" validate:"gte=0"`
	ImageURL  string  `json:"image_url,omitempty"`
}

// UpdateQuantityRequest applies a quantity delta to one cart line.
// Delta may be negative; zero is rejected as meaningless.
type UpdateQuantityRequest struct {
	Delta int `json:"delta" validate:"required"`
}

// AttachCustomerRequest switches the session to a credit-eligible sale for
// the given premium client.
type AttachCustomerRequest struct {
	CustomerID int `json:"customer_id" validate:"required,gt=0"`
}

// TenderRequest is the proposed payment for checkout preview and confirm.
// AmountPaid is the total the client claims was tendered; a struct-level
// rule checks it equals cash+card to the cent.
type TenderRequest struct {
	CashAmount float64 `json:"cash_amount" validate:"gte=0"`
	CardAmount float64 `json:"card_amount" validate:"gte=0"`
	AmountPaid float64 `json:"amount_paid" validate:"gte=0"`
}
