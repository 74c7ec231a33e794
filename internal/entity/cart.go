package entity

// CartItem is one line in the cart: a product plus the quantity chosen
// and, when the product was added as a specific variation, a snapshot
// of that variation. The snapshot is taken at add time, so later
// catalog changes never retroactively reprice a cart line.
type CartItem struct {
	Product
	Quantity          int               `json:"quantity"`
	SelectedVariation *ProductVariation `json:"selected_variation,omitempty"`
}

// Matches reports whether this line is identified by the given
// (product id, variation id-or-absent) pair. Two lines are the same if
// and only if the product ids match and either both carry the same
// variation id or neither carries one.
func (c CartItem) Matches(productID int64, variationID *int64) bool {
	if c.Product.ID != productID {
		return false
	}
	if variationID == nil {
		return c.SelectedVariation == nil
	}
	return c.SelectedVariation != nil && c.SelectedVariation.ID == *variationID
}
