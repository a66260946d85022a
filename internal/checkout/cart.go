package checkout

// Product is the subset of the catalog entry the cart needs. Prices arrive
// from the catalog as decimal amounts and are carried as cents from here on.
type Product struct {
	ID         int
	Name       string
	ImageURL   string
	PriceCents int64
}

// Line is a single cart position. Quantity is always > 0; a line whose
// quantity reaches 0 is removed from its cart.
type Line struct {
	ProductID      int    `json:"product_id"`
	Name           string `json:"name"`
	ImageURL       string `json:"image_url,omitempty"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	Quantity       int    `json:"quantity"`
}

// Cart is an ordered list of lines with at most one line per product id.
type Cart []Line

// Session holds the multi-cart state of one cashier checkout session: a list
// of independent cart slots and the index of the slot mutations apply to.
// A session always contains at least one cart.
type Session struct {
	Carts  []Cart `json:"carts"`
	Active int    `json:"active"`
}

// NewSession returns a session with a single empty cart.
func NewSession() *Session {
	return &Session{Carts: []Cart{{}}}
}

// ActiveCart returns the cart mutations currently apply to.
func (s *Session) ActiveCart() Cart {
	return s.Carts[s.Active]
}

// Clone returns a deep copy. Snapshots handed out to readers must not share
// line storage with the live session.
func (s *Session) Clone() *Session {
	carts := make([]Cart, len(s.Carts))
	for i, c := range s.Carts {
		carts[i] = append(Cart(nil), c...)
	}
	return &Session{Carts: carts, Active: s.Active}
}

// AddProduct adds one unit of the product to the active cart. An existing
// line for the same product id gets its quantity incremented; otherwise a new
// quantity-1 line is appended. Stock limits are not enforced here; the
// upstream sale submission may still reject.
func (s *Session) AddProduct(p Product) {
	cart := s.Carts[s.Active]
	for i := range cart {
		if cart[i].ProductID == p.ID {
			cart[i].Quantity++
			return
		}
	}
	s.Carts[s.Active] = append(cart, Line{
		ProductID:      p.ID,
		Name:           p.Name,
		ImageURL:       p.ImageURL,
		UnitPriceCents: p.PriceCents,
		Quantity:       1,
	})
}

// UpdateQuantity applies delta (positive or negative) to the matching line in
// the active cart. A resulting quantity <= 0 removes the line. Unknown
// product ids are a no-op.
func (s *Session) UpdateQuantity(productID, delta int) {
	cart := s.Carts[s.Active]
	out := cart[:0]
	for _, ln := range cart {
		if ln.ProductID == productID {
			ln.Quantity += delta
			if ln.Quantity <= 0 {
				continue
			}
		}
		out = append(out, ln)
	}
	s.Carts[s.Active] = out
}

// AddCart appends an empty cart slot and makes it active.
func (s *Session) AddCart() {
	s.Carts = append(s.Carts, Cart{})
	s.Active = len(s.Carts) - 1
}

// SwitchCart changes the active slot without touching cart contents.
// Out-of-range indexes are ignored.
func (s *Session) SwitchCart(index int) {
	if index < 0 || index >= len(s.Carts) {
		return
	}
	s.Active = index
}

// DeleteCart removes the cart slot at index. Deleting the only remaining
// slot replaces it with a single empty cart rather than producing an empty
// list. The active index follows the original front-end rules: if the
// deleted index was at or before the active one, the active index moves down
// (clamped at 0).
func (s *Session) DeleteCart(index int) {
	if index < 0 || index >= len(s.Carts) {
		return
	}
	if len(s.Carts) == 1 {
		s.Carts[0] = Cart{}
		s.Active = 0
		return
	}
	s.Carts = append(s.Carts[:index], s.Carts[index+1:]...)
	if s.Active >= index && s.Active > 0 {
		s.Active--
	}
}

// ClearActive empties the active cart after a successful sale.
func (s *Session) ClearActive() {
	s.Carts[s.Active] = Cart{}
}
