package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/eltimbiriche/cart-service/internal/entity"
)

// memRepo is an in-memory CartRepository recording calls.
type memRepo struct {
	mu      sync.Mutex
	items   []entity.CartItem
	saves   int
	clears  int
	loadErr error
	saveErr error
}

func (r *memRepo) Load(ctx context.Context) ([]entity.CartItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loadErr != nil {
		return nil, r.loadErr
	}
	return r.items, nil
}

func (r *memRepo) Save(ctx context.Context, items []entity.CartItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.items = items
	r.saves++
	return nil
}

func (r *memRepo) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = nil
	r.clears++
	return nil
}

func floatPtr(f float64) *float64 { return &f }
func idPtr(id int64) *int64       { return &id }

func p1() entity.Product {
	return entity.Product{ID: 1, Name: "P1", PriceUSD: 10, PriceCUP: 3500}
}

func p2() entity.Product {
	return entity.Product{ID: 2, Name: "P2", PriceUSD: 20, PriceCUP: 4000}
}

func v1() *entity.ProductVariation {
	return &entity.ProductVariation{
		ID:                    101,
		Name:                  "V1",
		Attributes:            map[string]string{"color": "Rojo"},
		Stock:                 5,
		EffectiveSalePriceUSD: floatPtr(15),
		IsAvailable:           true,
	}
}

func newHydrated(repo *memRepo) *Store {
	var s *Store
	if repo == nil {
		s = New(nil)
	} else {
		s = New(repo)
	}
	s.Hydrate(context.Background())
	return s
}

func TestAddSameProductIncrementsQuantity(t *testing.T) {
	ctx := context.Background()
	s := newHydrated(nil)

	s.AddToCart(ctx, p1(), 2, nil)
	s.AddToCart(ctx, p1(), 1, nil)

	items := s.Items()
	if len(items) != 1 {
		t.Fatalf("expected 1 line, got %d", len(items))
	}
	if items[0].Quantity != 3 {
		t.Fatalf("expected quantity 3, got %d", items[0].Quantity)
	}
	if got := s.CartTotalUSD(); got != 30 {
		t.Fatalf("expected USD total 30, got %v", got)
	}
	if got := s.CartTotalCUP(); got != 10500 {
		t.Fatalf("expected CUP total 10500, got %v", got)
	}
}

func TestVariationIsSeparateLine(t *testing.T) {
	ctx := context.Background()
	s := newHydrated(nil)

	s.AddToCart(ctx, p1(), 1, nil)
	s.AddToCart(ctx, p1(), 1, v1())
	s.AddToCart(ctx, p1(), 2, v1())

	items := s.Items()
	if len(items) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(items))
	}
	if items[0].SelectedVariation != nil {
		t.Fatalf("first line should have no variation")
	}
	if items[1].SelectedVariation == nil || items[1].SelectedVariation.ID != 101 {
		t.Fatalf("second line should snapshot variation 101")
	}
	if items[1].Quantity != 3 {
		t.Fatalf("expected variation line quantity 3, got %d", items[1].Quantity)
	}
}

func TestVariationPriceOverridesPartially(t *testing.T) {
	ctx := context.Background()
	s := newHydrated(nil)

	// V1 overrides USD only; CUP inherits the product price.
	s.AddToCart(ctx, p2(), 1, v1())

	if got := s.CartCount(); got != 1 {
		t.Fatalf("expected count 1, got %d", got)
	}
	if got := s.CartTotalUSD(); got != 15 {
		t.Fatalf("expected USD total 15, got %v", got)
	}
	if got := s.CartTotalCUP(); got != 4000 {
		t.Fatalf("expected CUP total 4000, got %v", got)
	}

	items := s.Items()
	if items[0].PriceUSD != 15 || items[0].PriceCUP != 4000 {
		t.Fatalf("expected baked prices (15, 4000), got (%v, %v)", items[0].PriceUSD, items[0].PriceCUP)
	}
}

func TestVariationSnapshotIsCopy(t *testing.T) {
	ctx := context.Background()
	s := newHydrated(nil)

	v := v1()
	s.AddToCart(ctx, p1(), 1, v)
	*v.EffectiveSalePriceUSD = 999
	v.Attributes["color"] = "Azul"

	if got := s.CartTotalUSD(); got != 15 {
		t.Fatalf("catalog change leaked into cart: total %v", got)
	}
	snap := s.Items()[0].SelectedVariation
	if snap.Attributes["color"] != "Rojo" {
		t.Fatalf("attribute change leaked into cart: %v", snap.Attributes)
	}
}

func TestRemoveFromCart(t *testing.T) {
	ctx := context.Background()
	s := newHydrated(nil)

	s.AddToCart(ctx, p1(), 1, nil)
	s.AddToCart(ctx, p1(), 1, v1())
	s.AddToCart(ctx, p2(), 1, nil)

	// Removing without a variation id targets only the bare line.
	s.RemoveFromCart(ctx, 1, nil)
	items := s.Items()
	if len(items) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(items))
	}
	if items[0].SelectedVariation == nil {
		t.Fatalf("variation line should survive")
	}

	s.RemoveFromCart(ctx, 1, idPtr(101))
	if len(s.Items()) != 1 {
		t.Fatalf("expected 1 line after variation removal")
	}

	// Idempotent: removing again is a no-op.
	s.RemoveFromCart(ctx, 1, idPtr(101))
	s.RemoveFromCart(ctx, 99, nil)
	if len(s.Items()) != 1 {
		t.Fatalf("no-op removals changed the cart")
	}
}

func TestUpdateQuantity(t *testing.T) {
	ctx := context.Background()
	s := newHydrated(nil)

	s.AddToCart(ctx, p1(), 2, nil)
	s.UpdateQuantity(ctx, 1, 7, nil)
	if got := s.Items()[0].Quantity; got != 7 {
		t.Fatalf("expected absolute set to 7, got %d", got)
	}

	// Unknown keys are silent no-ops.
	s.UpdateQuantity(ctx, 99, 3, nil)
	s.UpdateQuantity(ctx, 1, 3, idPtr(101))
	if got := s.Items()[0].Quantity; got != 7 {
		t.Fatalf("no-op update changed quantity to %d", got)
	}
}

func TestUpdateQuantityZeroRemoves(t *testing.T) {
	ctx := context.Background()
	s := newHydrated(nil)

	s.AddToCart(ctx, p1(), 2, nil)
	s.AddToCart(ctx, p2(), 1, nil)
	before := s.CartCount()

	s.UpdateQuantity(ctx, 1, 0, nil)
	if len(s.Items()) != 1 {
		t.Fatalf("expected line removed at quantity 0")
	}
	if got := s.CartCount(); got != before-2 {
		t.Fatalf("expected count to drop by 2, got %d", got)
	}

	s.UpdateQuantity(ctx, 2, -3, nil)
	if len(s.Items()) != 0 {
		t.Fatalf("expected negative quantity to remove the line")
	}
}

func TestTotalsAfterInterleavedOperations(t *testing.T) {
	ctx := context.Background()
	s := newHydrated(nil)

	s.AddToCart(ctx, p1(), 2, nil)
	s.AddToCart(ctx, p2(), 1, v1())
	s.UpdateQuantity(ctx, 2, 3, idPtr(101))
	s.AddToCart(ctx, p2(), 1, nil)
	s.RemoveFromCart(ctx, 1, nil)

	// Remaining: p2 via v1 ×3 (15 USD / 4000 CUP), p2 bare ×1 (20 / 4000).
	if got := s.CartTotalUSD(); got != 65 {
		t.Fatalf("expected USD total 65, got %v", got)
	}
	if got := s.CartTotalCUP(); got != 16000 {
		t.Fatalf("expected CUP total 16000, got %v", got)
	}
	if got := s.CartCount(); got != 4 {
		t.Fatalf("expected count 4, got %d", got)
	}
}

func TestCurrencySwitchRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newHydrated(nil)

	s.AddToCart(ctx, p1(), 3, nil)

	usdBefore := s.FormatCartTotal()
	if usdBefore != "$30.00" {
		t.Fatalf("unexpected USD format: %q", usdBefore)
	}

	s.SetCurrency(entity.CUP)
	if got := s.FormatCartTotal(); got != "₱10,500.00" {
		t.Fatalf("unexpected CUP format: %q", got)
	}
	if got := s.CartTotal(); got != 10500 {
		t.Fatalf("expected CUP total selected, got %v", got)
	}
	if got := s.ExchangeRate(); got != entity.ExchangeRateCUP {
		t.Fatalf("expected CUP exchange rate, got %v", got)
	}

	s.SetCurrency(entity.USD)
	if got := s.FormatCartTotal(); got != usdBefore {
		t.Fatalf("switching back changed the display: %q vs %q", got, usdBefore)
	}
	if got := s.CartTotalUSD(); got != 30 {
		t.Fatalf("stored totals mutated by currency switch: %v", got)
	}
}

func TestAddOpensCartPanel(t *testing.T) {
	ctx := context.Background()
	s := newHydrated(nil)

	if s.IsCartOpen() {
		t.Fatalf("cart panel should start closed")
	}
	s.AddToCart(ctx, p1(), 1, nil)
	if !s.IsCartOpen() {
		t.Fatalf("add should open the cart panel")
	}

	s.SetCartOpen(false)
	s.AddToCart(ctx, p1(), 1, nil)
	if !s.IsCartOpen() {
		t.Fatalf("every add should open the cart panel")
	}
}

func TestHydrateRestoresSavedCart(t *testing.T) {
	ctx := context.Background()
	repo := &memRepo{items: []entity.CartItem{{Product: p1(), Quantity: 4}}}

	s := New(repo)
	s.Hydrate(ctx)

	if got := s.CartCount(); got != 4 {
		t.Fatalf("expected restored count 4, got %d", got)
	}
	if repo.saves != 0 {
		t.Fatalf("hydration must not write back, saw %d saves", repo.saves)
	}

	// Hydrate runs at most once.
	repo.items = nil
	s.Hydrate(ctx)
	if got := s.CartCount(); got != 4 {
		t.Fatalf("second hydrate replaced the cart, count %d", got)
	}
}

func TestMutationsBeforeHydrateDoNotOverwriteStorage(t *testing.T) {
	ctx := context.Background()
	repo := &memRepo{items: []entity.CartItem{{Product: p2(), Quantity: 1}}}

	s := New(repo)
	s.AddToCart(ctx, p1(), 1, nil)
	if repo.saves != 0 {
		t.Fatalf("pre-hydration mutation wrote to storage")
	}
	if len(repo.items) != 1 || repo.items[0].Product.ID != 2 {
		t.Fatalf("saved cart was overwritten before hydration")
	}
}

func TestMutationsWriteThrough(t *testing.T) {
	ctx := context.Background()
	repo := &memRepo{}
	s := newHydrated(repo)

	s.AddToCart(ctx, p1(), 2, nil)
	s.UpdateQuantity(ctx, 1, 5, nil)
	s.RemoveFromCart(ctx, 1, nil)

	if repo.saves != 3 {
		t.Fatalf("expected 3 write-throughs, got %d", repo.saves)
	}
	if len(repo.items) != 0 {
		t.Fatalf("final persisted cart should be empty, got %d lines", len(repo.items))
	}
}

func TestPersistenceRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := &memRepo{}
	s := newHydrated(repo)

	s.AddToCart(ctx, p1(), 2, nil)
	s.AddToCart(ctx, p2(), 1, v1())

	restored := New(repo)
	restored.Hydrate(ctx)

	if got, want := restored.CartCount(), s.CartCount(); got != want {
		t.Fatalf("restored count %d, want %d", got, want)
	}
	if got, want := restored.CartTotalUSD(), s.CartTotalUSD(); got != want {
		t.Fatalf("restored USD total %v, want %v", got, want)
	}
	items := restored.Items()
	if items[1].SelectedVariation == nil || items[1].SelectedVariation.ID != 101 {
		t.Fatalf("variation snapshot lost in round trip")
	}
}

func TestClearCartErasesStorage(t *testing.T) {
	ctx := context.Background()
	repo := &memRepo{}
	s := newHydrated(repo)

	s.AddToCart(ctx, p1(), 1, nil)
	s.ClearCart(ctx)

	if len(s.Items()) != 0 {
		t.Fatalf("cart not emptied")
	}
	if repo.clears != 1 {
		t.Fatalf("expected persisted entry erased, clears=%d", repo.clears)
	}

	s.ClearCart(ctx)
	if repo.clears != 2 {
		t.Fatalf("clear should be idempotent and still hit storage")
	}
}

func TestStorageFailuresAreSwallowed(t *testing.T) {
	ctx := context.Background()
	repo := &memRepo{loadErr: errors.New("disk gone"), saveErr: errors.New("disk gone")}

	s := New(repo)
	s.Hydrate(ctx)
	s.AddToCart(ctx, p1(), 2, nil)

	// The store degrades to in-memory state; callers see no error.
	if got := s.CartCount(); got != 2 {
		t.Fatalf("mutation lost on storage failure, count %d", got)
	}
}

func TestFormatPriceUsesCurrentCurrency(t *testing.T) {
	s := newHydrated(nil)

	if got := s.FormatPrice(1234.5, 432000); got != "$1,234.50" {
		t.Fatalf("unexpected USD format: %q", got)
	}
	s.SetCurrency(entity.CUP)
	if got := s.FormatPrice(1234.5, 432000); got != "₱432,000.00" {
		t.Fatalf("unexpected CUP format: %q", got)
	}
}
