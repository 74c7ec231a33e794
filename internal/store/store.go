// Package store implements the cart/pricing engine: ordered cart
// lines, currency selection, derived dual-currency totals, and
// write-through persistence of the cart.
package store

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/eltimbiriche/cart-service/internal/entity"
	"github.com/eltimbiriche/cart-service/internal/pricing"
	"github.com/eltimbiriche/cart-service/internal/repository"
)

// Store holds the cart state for one session. Construct it once with
// New, call Hydrate before the first mutation, and share it by
// reference; all methods are safe for concurrent use.
//
// Mutations never return errors: persistence failures are logged and
// swallowed, and unknown line keys are silent no-ops. The store does
// not clamp quantities against stock; that is the caller's concern.
type Store struct {
	mu       sync.RWMutex
	items    []entity.CartItem
	currency entity.Currency
	repo     repository.CartRepository
	hydrated bool

	// UI coordination flags, pass-through state with no business logic.
	cartOpen    bool
	quickView   *entity.Product
	searchQuery string
	searchOpen  bool
}

// New creates an empty Store persisting through repo. A nil repo
// disables persistence. Currency starts as USD.
func New(repo repository.CartRepository) *Store {
	return &Store{currency: entity.USD, repo: repo}
}

// Hydrate loads a previously saved cart, replacing the in-memory cart
// only when the saved one is non-empty. It runs at most once and never
// writes back, so a transiently empty initial cart cannot overwrite a
// saved one. Mutations made before Hydrate stay in memory only.
func (s *Store) Hydrate(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hydrated {
		return
	}
	s.hydrated = true
	if s.repo == nil {
		return
	}
	items, err := s.repo.Load(ctx)
	if err != nil {
		slog.Error("Failed to load saved cart", "err", err)
		return
	}
	if len(items) > 0 {
		s.items = items
	}
}

// persistLocked writes the cart through to storage. Callers must hold
// the write lock. Failures are logged, never surfaced.
func (s *Store) persistLocked(ctx context.Context) {
	if s.repo == nil || !s.hydrated {
		return
	}
	if err := s.repo.Save(ctx, slices.Clone(s.items)); err != nil {
		slog.Error("Failed to persist cart", "err", err)
	}
}

// AddToCart puts quantity units of a product into the cart. When the
// line identified by (product id, variation id-or-absent) already
// exists its quantity is incremented; otherwise a new line is appended
// with the variation's sale prices resolved into it and the variation
// snapshotted by value. Every add opens the cart panel.
func (s *Store) AddToCart(ctx context.Context, p entity.Product, quantity int, variation *entity.ProductVariation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var variationID *int64
	if variation != nil {
		variationID = &variation.ID
	}
	defer func() {
		s.cartOpen = true
		s.persistLocked(ctx)
	}()

	for i := range s.items {
		if s.items[i].Matches(p.ID, variationID) {
			s.items[i].Quantity += quantity
			return
		}
	}

	item := entity.CartItem{Product: p, Quantity: quantity}
	item.PriceUSD, item.PriceCUP = pricing.Resolve(p, variation)
	if variation != nil {
		v := variation.Clone()
		item.SelectedVariation = &v
	}
	s.items = append(s.items, item)
}

// RemoveFromCart drops the line identified by (productID,
// variationID-or-absent). Removing a key that is not present is a
// no-op; the operation is idempotent.
func (s *Store) RemoveFromCart(ctx context.Context, productID int64, variationID *int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := make([]entity.CartItem, 0, len(s.items))
	for _, item := range s.items {
		if item.Matches(productID, variationID) {
			continue
		}
		kept = append(kept, item)
	}
	if len(kept) == len(s.items) {
		return
	}
	s.items = kept
	s.persistLocked(ctx)
}

// UpdateQuantity sets the matching line's quantity to exactly
// quantity. A quantity of zero or less removes the line. Unknown keys
// are silent no-ops.
func (s *Store) UpdateQuantity(ctx context.Context, productID int64, quantity int, variationID *int64) {
	if quantity <= 0 {
		s.RemoveFromCart(ctx, productID, variationID)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].Matches(productID, variationID) {
			s.items[i].Quantity = quantity
			s.persistLocked(ctx)
			return
		}
	}
}

// ClearCart empties the cart and erases the persisted entry.
func (s *Store) ClearCart(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	if s.repo == nil {
		return
	}
	if err := s.repo.Clear(ctx); err != nil {
		slog.Error("Failed to clear persisted cart", "err", err)
	}
}

// Items returns the cart lines in insertion order.
func (s *Store) Items() []entity.CartItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items)
}

// CartCount is the sum of all line quantities, not the line count.
func (s *Store) CartCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, item := range s.items {
		count += item.Quantity
	}
	return count
}

func (s *Store) totalsLocked() (usd, cup float64) {
	for _, item := range s.items {
		itemUSD, itemCUP := pricing.ResolveItem(item)
		usd += itemUSD * float64(item.Quantity)
		cup += itemCUP * float64(item.Quantity)
	}
	return usd, cup
}

// CartTotalUSD returns the cart total on the USD price track.
func (s *Store) CartTotalUSD() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	usd, _ := s.totalsLocked()
	return usd
}

// CartTotalCUP returns the cart total on the CUP price track.
func (s *Store) CartTotalCUP() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, cup := s.totalsLocked()
	return cup
}

// CartTotal returns the total for the currently selected currency.
func (s *Store) CartTotal() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	usd, cup := s.totalsLocked()
	if s.currency == entity.CUP {
		return cup
	}
	return usd
}

// Currency returns the current display currency.
func (s *Store) Currency() entity.Currency {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currency
}

// SetCurrency switches the display currency. Stored amounts are
// untouched; only which price track is read changes.
func (s *Store) SetCurrency(c entity.Currency) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currency = c
}

// ExchangeRate reports the informational USD→CUP rate for the selected
// currency (1 when USD is selected).
func (s *Store) ExchangeRate() float64 {
	if s.Currency() == entity.CUP {
		return entity.ExchangeRateCUP
	}
	return 1
}

// FormatPrice renders the given price pair in the current currency.
func (s *Store) FormatPrice(usd, cup float64) string {
	return pricing.Format(s.Currency(), usd, cup)
}

// FormatCartTotal renders the cart total in the current currency.
func (s *Store) FormatCartTotal() string {
	s.mu.RLock()
	usd, cup := s.totalsLocked()
	currency := s.currency
	s.mu.RUnlock()
	return pricing.Format(currency, usd, cup)
}

// --- UI coordination flags ---

func (s *Store) IsCartOpen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cartOpen
}

func (s *Store) SetCartOpen(open bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cartOpen = open
}

func (s *Store) QuickViewProduct() *entity.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.quickView
}

func (s *Store) SetQuickViewProduct(p *entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quickView = p
}

func (s *Store) SearchQuery() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.searchQuery
}

func (s *Store) SetSearchQuery(q string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchQuery = q
}

func (s *Store) IsSearchOpen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.searchOpen
}

func (s *Store) SetSearchOpen(open bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchOpen = open
}
