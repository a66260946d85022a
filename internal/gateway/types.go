package gateway

// LoginResult is what the external auth endpoint returns on success.
// Permissions come back as the decimal string form of the bitmask.
type LoginResult struct {
	Token       string `json:"token"`
	Username    string `json:"username"`
	FullName    string `json:"fullName"`
	Role        string `json:"role"`
	Permissions string `json:"permissions"`
	ImageURL    string `json:"imageUrl"`
}

// Product is a catalog entry as served by the external API.
type Product struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	ImageURL string  `json:"imageUrl"`
	Price    float64 `json:"price"`
	Stock    int     `json:"stock"`
}

// ProductPage is the paginated product listing envelope.
type ProductPage struct {
	Data         []Product `json:"data"`
	TotalRecords int       `json:"totalRecords"`
}

// Category is a product category; only id and name matter to the terminal.
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// ExpenseFilter narrows the expense listing.
type ExpenseFilter struct {
	Search     string
	PageNumber int
	PageSize   int
}

// ProductFilter narrows the product listing.
type ProductFilter struct {
	CategoryID *int
	Search     string
	PageNumber int
	PageSize   int
}

// Customer is a premium-client record: a standing discount percentage and a
// running balance the external system tracks.
type Customer struct {
	ID                 int     `json:"id"`
	Name               string  `json:"name"`
	PhoneNumber        string  `json:"phoneNumber"`
	Address            string  `json:"address"`
	CurrentBalance     float64 `json:"currentBalance"`
	DiscountPercentage float64 `json:"discountPercentage"`
}

// SaleLine is one sold position in the submission payload.
type SaleLine struct {
	ProductID int `json:"productId"`
	Quantity  int `json:"quantity"`
}

// SaleSubmission is the finalized sale handed to the external API. For split
// payments splitCashAmount+splitCardAmount equals amountPaid; for credit
// sales amountPaid reflects what was actually tendered, not the full total.
type SaleSubmission struct {
	SaleDetails     []SaleLine `json:"saleDetails"`
	PaymentMethod   string     `json:"paymentMethod"`
	AmountPaid      float64    `json:"amountPaid"`
	CustomerID      *int       `json:"customerId,omitempty"`
	SplitCashAmount float64    `json:"splitCashAmount"`
	SplitCardAmount float64    `json:"splitCardAmount"`
}
