package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/eltimbiriche/cart-service/internal/entity"
	"github.com/eltimbiriche/cart-service/internal/repository"
)

// OrderService maintains the order read model and adjusts catalog
// stock as OrderPlaced events arrive.
type OrderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
}

func NewOrderService(orderRepo repository.OrderRepository, productRepo repository.ProductRepository) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
	}
}

// GetRecentOrders returns the latest orders.
func (s *OrderService) GetRecentOrders(ctx context.Context, limit int) ([]entity.Order, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.orderRepo.FindRecent(ctx, limit)
}

// GetOrder returns one order by id, or nil when unknown.
func (s *OrderService) GetOrder(ctx context.Context, orderID string) (*entity.Order, error) {
	return s.orderRepo.FindByID(ctx, orderID)
}

// HandleOrderPlaced projects an OrderPlaced event into the order read
// model and decrements catalog stock for each line.
func (s *OrderService) HandleOrderPlaced(ctx context.Context, payload []byte) error {
	var event entity.OrderPlaced
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("failed to unmarshal OrderPlaced event: %w", err)
	}

	slog.Info("Service: Recording placed order", "order_id", event.OrderID, "items", len(event.Items))

	inserted, err := s.orderRepo.Record(ctx, event)
	if err != nil {
		return fmt.Errorf("failed to record order %s: %w", event.OrderID, err)
	}
	if !inserted {
		// Redelivered event: the order is already projected and its
		// stock already reduced.
		slog.Info("Order already recorded, skipping", "order_id", event.OrderID)
		return nil
	}

	for _, item := range event.Items {
		if err := s.productRepo.ReduceStock(ctx, item.ProductID, item.VariationID, item.Quantity); err != nil {
			return fmt.Errorf("failed to reduce stock for product %d: %w", item.ProductID, err)
		}
	}
	return nil
}
