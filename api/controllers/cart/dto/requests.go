package cartdto

// AddItemRequest adds a product (optionally a specific variant) to the cart.
// Quantity is added to any existing line for the same combination.
type AddItemRequest struct {
	ProductID string            `json:"product_id" validate:"required"`
	Quantity  int               `json:"quantity" validate:"required,gt=0"`
	Variant   map[string]string `json:"variant,omitempty"`
}

// UpdateItemRequest replaces the quantity of an existing line. Zero removes
// the line.
type UpdateItemRequest struct {
	Quantity int `json:"quantity" validate:"min=0"`
}
