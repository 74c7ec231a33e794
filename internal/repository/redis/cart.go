// Package redis persists the cart as a single JSON value in Redis,
// for deployments where the cart should survive the host.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/eltimbiriche/cart-service/internal/entity"
	"github.com/eltimbiriche/cart-service/internal/repository"
)

type cartRepository struct {
	client *redis.Client
	key    string
}

// NewCartRepository creates a CartRepository storing the cart under key.
func NewCartRepository(client *redis.Client, key string) repository.CartRepository {
	return &cartRepository{client: client, key: key}
}

func (r *cartRepository) Load(ctx context.Context) ([]entity.CartItem, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cart key %s: %w", r.key, err)
	}

	var items []entity.CartItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to decode cart key %s: %w", r.key, err)
	}
	return items, nil
}

func (r *cartRepository) Save(ctx context.Context, items []entity.CartItem) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	if err := r.client.Set(ctx, r.key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to write cart key %s: %w", r.key, err)
	}
	return nil
}

func (r *cartRepository) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("failed to delete cart key %s: %w", r.key, err)
	}
	return nil
}
