package item

import (
	"context"

	"github.com/mkrupp/wtwr/internal/domain"
)

// Repository defines the interface for clothing item persistence.
// Every lookup by id returns ErrItemNotFound when the item does not exist.
type Repository interface {
	// CreateItem stores a new item owned by ownerID.
	CreateItem(ctx context.Context, ownerID string, item domain.NewClothingItem) (*domain.ClothingItem, error)

	// ListItems returns all items, newest first.
	ListItems(ctx context.Context) ([]domain.ClothingItem, error)

	// GetItem retrieves an item by id.
	GetItem(ctx context.Context, id string) (*domain.ClothingItem, error)

	// UpdateItem applies update and returns the updated item. The owner is immutable.
	UpdateItem(ctx context.Context, id string, update domain.ClothingItemUpdate) (*domain.ClothingItem, error)

	// DeleteItem removes an item and its likes.
	DeleteItem(ctx context.Context, id string) error

	// AddLike records that userID likes the item. Liking twice is a no-op.
	AddLike(ctx context.Context, id, userID string) (*domain.ClothingItem, error)

	// RemoveLike removes userID's like. Removing a missing like is a no-op.
	RemoveLike(ctx context.Context, id, userID string) (*domain.ClothingItem, error)
}
