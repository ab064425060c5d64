package itemsvc

import (
	"context"
	"fmt"

	"github.com/mkrupp/wtwr/internal/domain"
	"github.com/mkrupp/wtwr/internal/infra/logging"
	"github.com/mkrupp/wtwr/internal/repo/item"
	"github.com/mkrupp/wtwr/internal/svc/authsvc"
)

// ItemService manages clothing items. Update and delete are restricted to the
// item's owner; listing and likes are open to everyone allowed to call them.
type ItemService struct {
	ItemRepo item.Repository
	Log      logging.Logger
}

// NewItemService creates a new ItemService.
func NewItemService(itemRepo item.Repository) *ItemService {
	return &ItemService{
		ItemRepo: itemRepo,
		Log:      logging.GetLogger("svc.itemsvc.item_service"),
	}
}

// ListItems returns every item, newest first.
func (s *ItemService) ListItems(ctx context.Context) ([]domain.ClothingItem, error) {
	items, err := s.ItemRepo.ListItems(ctx)
	if err != nil {
		s.Log.ErrorContext(ctx, "list items failed", "error", err)

		return nil, fmt.Errorf("list items: %w", err)
	}

	return items, nil
}

// CreateItem stores a new item owned by principal.
func (s *ItemService) CreateItem(
	ctx context.Context,
	principal domain.Principal,
	newItem domain.NewClothingItem,
) (_ *domain.ClothingItem, err error) {
	log := s.Log.With(logging.Group("user", "id", principal.UserID))

	defer func() {
		s.logResult(ctx, log, "create item", err)
	}()

	if err := newItem.Validate(); err != nil {
		return nil, err
	}

	created, err := s.ItemRepo.CreateItem(ctx, principal.UserID, newItem)
	if err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}

	log = log.With(logging.Group("item", "id", created.ID))

	return created, nil
}

// UpdateItem changes the image of an item owned by principal.
func (s *ItemService) UpdateItem(
	ctx context.Context,
	principal domain.Principal,
	rawID string,
	update domain.ClothingItemUpdate,
) (_ *domain.ClothingItem, err error) {
	log := s.Log.With(
		logging.Group("user", "id", principal.UserID),
		logging.Group("item", "id", rawID),
	)

	defer func() {
		s.logResult(ctx, log, "update item", err)
	}()

	id, err := s.authorizeOwner(ctx, principal, rawID)
	if err != nil {
		return nil, err
	}

	if err := update.Validate(); err != nil {
		return nil, err
	}

	updated, err := s.ItemRepo.UpdateItem(ctx, id, update)
	if err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}

	return updated, nil
}

// DeleteItem removes an item owned by principal.
func (s *ItemService) DeleteItem(ctx context.Context, principal domain.Principal, rawID string) (err error) {
	log := s.Log.With(
		logging.Group("user", "id", principal.UserID),
		logging.Group("item", "id", rawID),
	)

	defer func() {
		s.logResult(ctx, log, "delete item", err)
	}()

	id, err := s.authorizeOwner(ctx, principal, rawID)
	if err != nil {
		return err
	}

	if err := s.ItemRepo.DeleteItem(ctx, id); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}

	return nil
}

// LikeItem records principal's like. Ownership is not checked.
func (s *ItemService) LikeItem(
	ctx context.Context,
	principal domain.Principal,
	rawID string,
) (*domain.ClothingItem, error) {
	return s.like(ctx, "like item", principal, rawID, s.ItemRepo.AddLike)
}

// UnlikeItem removes principal's like. Ownership is not checked.
func (s *ItemService) UnlikeItem(
	ctx context.Context,
	principal domain.Principal,
	rawID string,
) (*domain.ClothingItem, error) {
	return s.like(ctx, "unlike item", principal, rawID, s.ItemRepo.RemoveLike)
}

func (s *ItemService) like(
	ctx context.Context,
	op string,
	principal domain.Principal,
	rawID string,
	apply func(ctx context.Context, id, userID string) (*domain.ClothingItem, error),
) (_ *domain.ClothingItem, err error) {
	log := s.Log.With(
		logging.Group("user", "id", principal.UserID),
		logging.Group("item", "id", rawID),
	)

	defer func() {
		s.logResult(ctx, log, op, err)
	}()

	id, err := domain.ParseID(rawID)
	if err != nil {
		return nil, err
	}

	liked, err := apply(ctx, id, principal.UserID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return liked, nil
}

// authorizeOwner resolves rawID and checks that principal owns the item.
// A missing item is NotFound before ownership is considered.
func (s *ItemService) authorizeOwner(ctx context.Context, principal domain.Principal, rawID string) (string, error) {
	id, err := domain.ParseID(rawID)
	if err != nil {
		return "", err
	}

	existing, err := s.ItemRepo.GetItem(ctx, id)
	if err != nil {
		return "", fmt.Errorf("get item: %w", err)
	}

	if err := authsvc.AuthorizeOwner(existing.Owner, principal); err != nil {
		return "", err
	}

	return id, nil
}

func (s *ItemService) logResult(ctx context.Context, log logging.Logger, op string, err error) {
	switch {
	case err == nil:
		log.DebugContext(ctx, op+" succeeded")
	case domain.KindOf(err) == domain.KindInternal:
		log.ErrorContext(ctx, op+" failed", "error", err)
	default:
		log.InfoContext(ctx, op+" rejected", "error", err, "kind", domain.KindOf(err).String())
	}
}
