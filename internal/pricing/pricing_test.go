package pricing

import (
	"testing"

	"github.com/eltimbiriche/cart-service/internal/entity"
)

func floatPtr(f float64) *float64 { return &f }

func TestResolvePrecedence(t *testing.T) {
	product := entity.Product{ID: 1, PriceUSD: 20, PriceCUP: 7000}

	tests := []struct {
		name    string
		v       *entity.ProductVariation
		wantUSD float64
		wantCUP float64
	}{
		{"no variation", nil, 20, 7000},
		{"no overrides", &entity.ProductVariation{ID: 1}, 20, 7000},
		{"usd override only", &entity.ProductVariation{ID: 2, EffectiveSalePriceUSD: floatPtr(15)}, 15, 7000},
		{"cup override only", &entity.ProductVariation{ID: 3, EffectiveSalePriceCUP: floatPtr(5250)}, 20, 5250},
		{"both overrides", &entity.ProductVariation{ID: 4, EffectiveSalePriceUSD: floatPtr(15), EffectiveSalePriceCUP: floatPtr(5250)}, 15, 5250},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			usd, cup := Resolve(product, tt.v)
			if usd != tt.wantUSD || cup != tt.wantCUP {
				t.Fatalf("got (%v, %v), want (%v, %v)", usd, cup, tt.wantUSD, tt.wantCUP)
			}
		})
	}
}

func TestResolveItemHonorsSnapshot(t *testing.T) {
	item := entity.CartItem{
		Product:  entity.Product{ID: 1, PriceUSD: 20, PriceCUP: 7000},
		Quantity: 1,
		SelectedVariation: &entity.ProductVariation{
			ID:                    9,
			EffectiveSalePriceUSD: floatPtr(12),
		},
	}
	usd, cup := ResolveItem(item)
	if usd != 12 || cup != 7000 {
		t.Fatalf("got (%v, %v), want (12, 7000)", usd, cup)
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		currency entity.Currency
		usd      float64
		cup      float64
		want     string
	}{
		{"usd symbol and decimals", entity.USD, 10, 3500, "$10.00"},
		{"cup symbol and grouping", entity.CUP, 10, 3500, "₱3,500.00"},
		{"usd grouping", entity.USD, 1234.5, 0, "$1,234.50"},
		{"large cup total", entity.CUP, 30, 10500, "₱10,500.00"},
		{"zero", entity.USD, 0, 0, "$0.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(tt.currency, tt.usd, tt.cup); got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatIsPure(t *testing.T) {
	first := Format(entity.USD, 99.9, 34965)
	Format(entity.CUP, 99.9, 34965)
	if got := Format(entity.USD, 99.9, 34965); got != first {
		t.Fatalf("format not stable: %q vs %q", got, first)
	}
}
