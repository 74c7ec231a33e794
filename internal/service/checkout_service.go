package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/eltimbiriche/cart-service/internal/entity"
	"github.com/eltimbiriche/cart-service/internal/messaging"
	"github.com/eltimbiriche/cart-service/internal/pricing"
	"github.com/eltimbiriche/cart-service/internal/store"
)

// TopicOrdersPlaced carries OrderPlaced events.
const TopicOrdersPlaced = "orders.placed"

// CheckoutService snapshots the cart into an order and hands it off as
// an OrderPlaced event. The cart is cleared only after the event is
// published.
type CheckoutService struct {
	cart      *store.Store
	publisher messaging.Publisher
}

func NewCheckoutService(cart *store.Store, publisher messaging.Publisher) *CheckoutService {
	return &CheckoutService{
		cart:      cart,
		publisher: publisher,
	}
}

// Checkout captures the current cart lines with their effective prices
// in both currencies, publishes OrderPlaced, and empties the cart.
func (s *CheckoutService) Checkout(ctx context.Context) (*entity.Order, error) {
	items := s.cart.Items()
	if len(items) == 0 {
		return nil, fmt.Errorf("cart is empty")
	}

	order := &entity.Order{
		ID:        uuid.New().String(),
		Items:     make([]entity.OrderItem, 0, len(items)),
		Currency:  s.cart.Currency(),
		Status:    "placed",
		CreatedAt: time.Now(),
	}
	for _, item := range items {
		usd, cup := pricing.ResolveItem(item)
		line := entity.OrderItem{
			ProductID: item.Product.ID,
			Name:      item.Product.Name,
			PriceUSD:  usd,
			PriceCUP:  cup,
			Quantity:  item.Quantity,
		}
		if item.SelectedVariation != nil {
			id := item.SelectedVariation.ID
			line.VariationID = &id
		}
		order.Items = append(order.Items, line)
		order.TotalUSD += usd * float64(item.Quantity)
		order.TotalCUP += cup * float64(item.Quantity)
	}

	slog.Info("Service: Placing order", "order_id", order.ID, "items", len(order.Items))

	event := entity.OrderPlaced{
		OrderID:  order.ID,
		Items:    order.Items,
		TotalUSD: order.TotalUSD,
		TotalCUP: order.TotalCUP,
		Currency: order.Currency,
		PlacedAt: order.CreatedAt,
	}
	if err := s.publisher.PublishEvent(ctx, TopicOrdersPlaced, order.ID, event); err != nil {
		return nil, fmt.Errorf("failed to publish OrderPlaced event: %w", err)
	}

	s.cart.ClearCart(ctx)
	return order, nil
}
