// Package file persists the cart as a single JSON document on local
// disk, mirroring the browser storage the storefront UI uses.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/eltimbiriche/cart-service/internal/entity"
	"github.com/eltimbiriche/cart-service/internal/repository"
)

type cartRepository struct {
	path string
}

// NewCartRepository creates a CartRepository storing the cart at path.
func NewCartRepository(path string) repository.CartRepository {
	return &cartRepository{path: path}
}

func (r *cartRepository) Load(ctx context.Context) ([]entity.CartItem, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cart file: %w", err)
	}

	var items []entity.CartItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to decode cart file: %w", err)
	}
	return items, nil
}

func (r *cartRepository) Save(ctx context.Context, items []entity.CartItem) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	if err := os.WriteFile(r.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write cart file: %w", err)
	}
	return nil
}

func (r *cartRepository) Clear(ctx context.Context) error {
	err := os.Remove(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to remove cart file: %w", err)
	}
	return nil
}
