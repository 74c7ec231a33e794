package entity

import (
	"maps"
	"time"
)

// Currency selects which of the two price tracks is displayed. Both
// amounts are always carried on every priced entity, so switching
// currency never recomputes anything.
type Currency string

const (
	USD Currency = "USD"
	CUP Currency = "CUP"
)

// ExchangeRateCUP is the informational rate (1 USD in CUP) exposed to
// the UI. Prices are never converted with it; both tracks arrive
// pre-computed from the catalog.
const ExchangeRateCUP = 350.0

// ProductVariation is a purchasable configuration of a product, e.g. a
// color/size combination, with its own stock and optional sale price
// overriding the parent product's.
type ProductVariation struct {
	ID                    int64             `json:"id"`
	Name                  string            `json:"name"`
	Attributes            map[string]string `json:"attributes,omitempty"`
	Stock                 int               `json:"stock"`
	EffectiveSalePriceUSD *float64          `json:"effective_sale_price_usd,omitempty"`
	EffectiveSalePriceCUP *float64          `json:"effective_sale_price_cup,omitempty"`
	IsAvailable           bool              `json:"is_available"`
}

// Clone returns a deep copy of the variation, detaching the price
// override pointers and the attribute map from the catalog object so
// the copy cannot be mutated through it.
func (v ProductVariation) Clone() ProductVariation {
	c := v
	if v.EffectiveSalePriceUSD != nil {
		usd := *v.EffectiveSalePriceUSD
		c.EffectiveSalePriceUSD = &usd
	}
	if v.EffectiveSalePriceCUP != nil {
		cup := *v.EffectiveSalePriceCUP
		c.EffectiveSalePriceCUP = &cup
	}
	c.Attributes = maps.Clone(v.Attributes)
	return c
}

// Product represents a product in the store catalog.
type Product struct {
	ID               int64              `json:"id"`
	Name             string             `json:"name"`
	PriceUSD         float64            `json:"price_usd"`
	PriceCUP         float64            `json:"price_cup"`
	OriginalPriceUSD *float64           `json:"original_price_usd,omitempty"`
	OriginalPriceCUP *float64           `json:"original_price_cup,omitempty"`
	Image            string             `json:"image"`
	Images           []string           `json:"images,omitempty"`
	Category         string             `json:"category"`
	Rating           float64            `json:"rating"`
	Description      string             `json:"description,omitempty"`
	IsNew            bool               `json:"is_new,omitempty"`
	IsSale           bool               `json:"is_sale,omitempty"`
	HasVariations    bool               `json:"has_variations,omitempty"`
	Variations       []ProductVariation `json:"variations,omitempty"`
	Stock            *int               `json:"stock,omitempty"`
	IsAvailable      *bool              `json:"is_available,omitempty"`
}

// OrderItem is a line item within a placed order, priced in both
// currencies at the moment of checkout.
type OrderItem struct {
	ProductID   int64   `json:"product_id"`
	VariationID *int64  `json:"variation_id,omitempty"`
	Name        string  `json:"name"`
	PriceUSD    float64 `json:"price_usd"`
	PriceCUP    float64 `json:"price_cup"`
	Quantity    int     `json:"quantity"`
}

// Order represents a customer order snapshotted from the cart at
// checkout time.
type Order struct {
	ID        string      `json:"id"`
	Items     []OrderItem `json:"items"`
	TotalUSD  float64     `json:"total_usd"`
	TotalCUP  float64     `json:"total_cup"`
	Currency  Currency    `json:"currency"`
	Status    string      `json:"status"` // "placed", "confirmed", "shipped"
	CreatedAt time.Time   `json:"created_at"`
}

// --- Events ---

// Event represents a domain event.
type Event interface {
	EventType() string
}

// OrderPlaced is emitted when a checkout successfully snapshots a cart.
type OrderPlaced struct {
	OrderID  string      `json:"order_id"`
	Items    []OrderItem `json:"items"`
	TotalUSD float64     `json:"total_usd"`
	TotalCUP float64     `json:"total_cup"`
	Currency Currency    `json:"currency"`
	PlacedAt time.Time   `json:"placed_at"`
}

func (e OrderPlaced) EventType() string { return "OrderPlaced" }
