package service

import (
	"context"
	"errors"
	"testing"

	"github.com/eltimbiriche/cart-service/internal/entity"
	"github.com/eltimbiriche/cart-service/internal/store"
)

type fakePublisher struct {
	topic  string
	key    string
	events []any
	err    error
}

func (p *fakePublisher) PublishEvent(ctx context.Context, topic string, key string, event any) error {
	if p.err != nil {
		return p.err
	}
	p.topic = topic
	p.key = key
	p.events = append(p.events, event)
	return nil
}

func floatPtr(f float64) *float64 { return &f }

func cartWithItems(t *testing.T) *store.Store {
	t.Helper()
	ctx := context.Background()
	cart := store.New(nil)
	cart.Hydrate(ctx)
	cart.AddToCart(ctx, entity.Product{ID: 1, Name: "P1", PriceUSD: 10, PriceCUP: 3500}, 2, nil)
	cart.AddToCart(ctx, entity.Product{ID: 2, Name: "P2", PriceUSD: 20, PriceCUP: 4000}, 1,
		&entity.ProductVariation{ID: 101, Name: "Rojo", EffectiveSalePriceUSD: floatPtr(15)})
	return cart
}

func TestCheckoutSnapshotsCartAndPublishes(t *testing.T) {
	ctx := context.Background()
	cart := cartWithItems(t)
	pub := &fakePublisher{}
	svc := NewCheckoutService(cart, pub)

	order, err := svc.Checkout(ctx)
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	if order.ID == "" {
		t.Fatalf("order id missing")
	}
	if order.TotalUSD != 35 || order.TotalCUP != 11000 {
		t.Fatalf("unexpected totals: %v / %v", order.TotalUSD, order.TotalCUP)
	}
	if len(order.Items) != 2 {
		t.Fatalf("expected 2 order lines, got %d", len(order.Items))
	}
	if order.Items[1].VariationID == nil || *order.Items[1].VariationID != 101 {
		t.Fatalf("variation id lost in snapshot")
	}
	if order.Items[1].PriceUSD != 15 || order.Items[1].PriceCUP != 4000 {
		t.Fatalf("effective prices not captured: %+v", order.Items[1])
	}

	if pub.topic != TopicOrdersPlaced || pub.key != order.ID {
		t.Fatalf("event routed to %q/%q", pub.topic, pub.key)
	}
	event, ok := pub.events[0].(entity.OrderPlaced)
	if !ok {
		t.Fatalf("expected OrderPlaced event, got %T", pub.events[0])
	}
	if event.OrderID != order.ID || event.TotalUSD != 35 {
		t.Fatalf("event does not match order: %+v", event)
	}

	if got := cart.CartCount(); got != 0 {
		t.Fatalf("cart not cleared after checkout, count %d", got)
	}
}

func TestCheckoutEmptyCart(t *testing.T) {
	cart := store.New(nil)
	cart.Hydrate(context.Background())
	svc := NewCheckoutService(cart, &fakePublisher{})

	if _, err := svc.Checkout(context.Background()); err == nil {
		t.Fatalf("expected error for empty cart")
	}
}

func TestCheckoutPublishFailureKeepsCart(t *testing.T) {
	ctx := context.Background()
	cart := cartWithItems(t)
	svc := NewCheckoutService(cart, &fakePublisher{err: errors.New("broker down")})

	if _, err := svc.Checkout(ctx); err == nil {
		t.Fatalf("expected publish error to surface")
	}
	if got := cart.CartCount(); got != 3 {
		t.Fatalf("cart must survive a failed checkout, count %d", got)
	}
}
