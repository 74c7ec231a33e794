// Package pricing resolves effective prices and formats them for
// display. Every priced entity carries both currency tracks, so all
// functions here take or return (USD, CUP) pairs.
package pricing

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/eltimbiriche/cart-service/internal/entity"
)

const (
	symbolUSD = "$"
	symbolCUP = "₱"
)

// Display strings use Cuban Spanish digit grouping.
var printer = message.NewPrinter(language.MustParse("es-CU"))

// Resolve returns the effective price pair for a product bought as the
// given variation. Precedence: the variation's sale price override,
// then the product's base price. Each currency track falls back
// independently.
func Resolve(p entity.Product, v *entity.ProductVariation) (usd, cup float64) {
	usd, cup = p.PriceUSD, p.PriceCUP
	if v == nil {
		return usd, cup
	}
	if v.EffectiveSalePriceUSD != nil {
		usd = *v.EffectiveSalePriceUSD
	}
	if v.EffectiveSalePriceCUP != nil {
		cup = *v.EffectiveSalePriceCUP
	}
	return usd, cup
}

// ResolveItem returns the effective price pair for a cart line,
// honoring the variation snapshot captured at add time.
func ResolveItem(item entity.CartItem) (usd, cup float64) {
	return Resolve(item.Product, item.SelectedVariation)
}

// Format renders the price track selected by currency with two fixed
// fraction digits, locale grouping, and the currency's symbol
// prefixed. It is a pure function of its arguments.
func Format(currency entity.Currency, usd, cup float64) string {
	price := usd
	symbol := symbolUSD
	if currency == entity.CUP {
		price = cup
		symbol = symbolCUP
	}
	n := printer.Sprint(number.Decimal(price,
		number.MinFractionDigits(2),
		number.MaxFractionDigits(2),
	))
	return symbol + n
}
