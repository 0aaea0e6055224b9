package cartdto

// CartLine is the wire shape of one cart line. Amounts are minor units.
type CartLine struct {
	LineID      string            `json:"line_id"`
	ProductID   string            `json:"product_id"`
	Name        string            `json:"name"`
	Unit        string            `json:"unit"`
	Variant     map[string]string `json:"variant,omitempty"`
	Quantity    int               `json:"quantity"`
	UnitPrice   int64             `json:"unit_price"`
	LineTotal   int64             `json:"line_total"`
	MinOrderQty int               `json:"min_order_qty"`
	InStock     int               `json:"in_stock"`
}

// CartAdvisory is a clamp notice raised while applying the request.
type CartAdvisory struct {
	Type    string `json:"type"`
	LineID  string `json:"line_id"`
	Message string `json:"message"`
}

// CartView is the full cart returned by every cart endpoint.
type CartView struct {
	SessionID  string         `json:"session_id"`
	Lines      []CartLine     `json:"lines"`
	Subtotal   int64          `json:"subtotal"`
	Advisories []CartAdvisory `json:"advisories,omitempty"`
}
