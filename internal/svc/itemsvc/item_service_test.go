package itemsvc_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrupp/wtwr/internal/domain"
	"github.com/mkrupp/wtwr/internal/repo/item"
	"github.com/mkrupp/wtwr/internal/repo/sqlite"
	"github.com/mkrupp/wtwr/internal/repo/sqlite/sqlitetest"
	"github.com/mkrupp/wtwr/internal/repo/user"
	"github.com/mkrupp/wtwr/internal/svc/itemsvc"
)

type fixture struct {
	db    *sqlite.DB
	svc   *itemsvc.ItemService
	alice domain.Principal
	bob   domain.Principal
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	ctx := context.Background()
	db := sqlitetest.Open(t)
	users := user.NewSQLiteUserRepository(db)
	profile := domain.Profile{Name: "Tester", Avatar: "https://example.com/a.png"}

	alice, err := users.CreateUser(ctx, "alice@example.com", "hash", profile)
	require.NoError(t, err)

	bob, err := users.CreateUser(ctx, "bob@example.com", "hash", profile)
	require.NoError(t, err)

	return fixture{
		db:    db,
		svc:   itemsvc.NewItemService(item.NewSQLiteItemRepository(db)),
		alice: domain.Principal{UserID: alice.ID},
		bob:   domain.Principal{UserID: bob.ID},
	}
}

func scarf() domain.NewClothingItem {
	return domain.NewClothingItem{
		Name:     "Scarf",
		Weather:  domain.WeatherCold,
		ImageURL: "https://example.com/scarf.png",
	}
}

func TestItemService_CreateItem(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)

	created, err := f.svc.CreateItem(ctx, f.alice, scarf())
	require.NoError(t, err)
	assert.Equal(t, f.alice.UserID, created.Owner)

	invalid := []domain.NewClothingItem{
		{Name: "S", Weather: domain.WeatherCold, ImageURL: "https://example.com/s.png"},
		{Name: "Scarf", Weather: "tropical", ImageURL: "https://example.com/s.png"},
		{Name: "Scarf", Weather: domain.WeatherCold, ImageURL: "scarf.png"},
	}

	for _, newItem := range invalid {
		_, err := f.svc.CreateItem(ctx, f.alice, newItem)
		assert.Equal(t, domain.KindBadRequest, domain.KindOf(err), "%+v", newItem)
	}

	items, err := f.svc.ListItems(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestItemService_OwnerOnlyMutations(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)

	created, err := f.svc.CreateItem(ctx, f.alice, scarf())
	require.NoError(t, err)

	update := domain.ClothingItemUpdate{ImageURL: "https://example.com/other.png"}

	_, err = f.svc.UpdateItem(ctx, f.bob, created.ID, update)
	require.ErrorIs(t, err, domain.ErrForbidden)
	assert.Equal(t, domain.KindForbidden, domain.KindOf(err))

	err = f.svc.DeleteItem(ctx, f.bob, created.ID)
	require.ErrorIs(t, err, domain.ErrForbidden)

	unchanged, err := item.NewSQLiteItemRepository(f.db).GetItem(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ImageURL, unchanged.ImageURL)

	updated, err := f.svc.UpdateItem(ctx, f.alice, created.ID, update)
	require.NoError(t, err)
	assert.Equal(t, update.ImageURL, updated.ImageURL)

	require.NoError(t, f.svc.DeleteItem(ctx, f.alice, created.ID))

	err = f.svc.DeleteItem(ctx, f.alice, created.ID)
	require.ErrorIs(t, err, domain.ErrItemNotFound)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestItemService_NotFoundBeforeForbidden(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.UpdateItem(ctx, f.bob, domain.NewID(), domain.ClothingItemUpdate{ImageURL: "https://example.com/x.png"})
	require.ErrorIs(t, err, domain.ErrItemNotFound)

	err = f.svc.DeleteItem(ctx, f.bob, "not-a-uuid")
	require.ErrorIs(t, err, domain.ErrInvalidID)
	assert.Equal(t, domain.KindBadRequest, domain.KindOf(err))
}

func TestItemService_LikesIgnoreOwnership(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)

	created, err := f.svc.CreateItem(ctx, f.alice, scarf())
	require.NoError(t, err)

	liked, err := f.svc.LikeItem(ctx, f.bob, created.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{f.bob.UserID}, liked.Likes)

	liked, err = f.svc.LikeItem(ctx, f.alice, created.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{f.alice.UserID, f.bob.UserID}, liked.Likes)

	unliked, err := f.svc.UnlikeItem(ctx, f.bob, created.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{f.alice.UserID}, unliked.Likes)

	_, err = f.svc.LikeItem(ctx, f.bob, "bogus")
	require.ErrorIs(t, err, domain.ErrInvalidID)

	_, err = f.svc.LikeItem(ctx, f.bob, domain.NewID())
	require.ErrorIs(t, err, domain.ErrItemNotFound)
}
