package item_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrupp/wtwr/internal/domain"
	"github.com/mkrupp/wtwr/internal/repo/item"
	"github.com/mkrupp/wtwr/internal/repo/sqlite/sqlitetest"
	"github.com/mkrupp/wtwr/internal/repo/user"
)

type fixture struct {
	repo  *item.SQLiteItemRepository
	alice string
	bob   string
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
		repo:  item.NewSQLiteItemRepository(db),
		alice: alice.ID,
		bob:   bob.ID,
	}
}

func newItem(name string) domain.NewClothingItem {
	return domain.NewClothingItem{
		Name:     name,
		Weather:  domain.WeatherCold,
		ImageURL: "https://example.com/" + name + ".png",
	}
}

func TestSQLiteItemRepository_CreateAndGet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)

	created, err := f.repo.CreateItem(ctx, f.alice, newItem("scarf"))
	require.NoError(t, err)
	assert.Equal(t, f.alice, created.Owner)
	assert.Empty(t, created.Likes)

	got, err := f.repo.GetItem(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "scarf", got.Name)
	assert.Equal(t, domain.WeatherCold, got.Weather)
	assert.Equal(t, f.alice, got.Owner)
	assert.NotNil(t, got.Likes)
	assert.True(t, created.CreatedAt.Equal(got.CreatedAt))

	_, err = f.repo.GetItem(ctx, domain.NewID())
	require.ErrorIs(t, err, domain.ErrItemNotFound)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestSQLiteItemRepository_CreateUnknownOwner(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	_, err := f.repo.CreateItem(context.Background(), domain.NewID(), newItem("hat"))
	require.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestSQLiteItemRepository_ListItems(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)

	items, err := f.repo.ListItems(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)

	first, err := f.repo.CreateItem(ctx, f.alice, newItem("boots"))
	require.NoError(t, err)

	second, err := f.repo.CreateItem(ctx, f.bob, newItem("shorts"))
	require.NoError(t, err)

	_, err = f.repo.AddLike(ctx, first.ID, f.bob)
	require.NoError(t, err)

	items, err = f.repo.ListItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)

	byID := map[string]domain.ClothingItem{}
	for _, it := range items {
		byID[it.ID] = it
	}

	assert.Equal(t, []string{f.bob}, byID[first.ID].Likes)
	assert.Empty(t, byID[second.ID].Likes)
}

func TestSQLiteItemRepository_UpdateItem(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)

	created, err := f.repo.CreateItem(ctx, f.alice, newItem("coat"))
	require.NoError(t, err)

	updated, err := f.repo.UpdateItem(ctx, created.ID, domain.ClothingItemUpdate{ImageURL: "https://example.com/new.png"})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/new.png", updated.ImageURL)
	assert.Equal(t, f.alice, updated.Owner)

	_, err = f.repo.UpdateItem(ctx, domain.NewID(), domain.ClothingItemUpdate{ImageURL: "https://example.com/x.png"})
	require.ErrorIs(t, err, domain.ErrItemNotFound)
}

func TestSQLiteItemRepository_DeleteItem(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)

	created, err := f.repo.CreateItem(ctx, f.alice, newItem("gloves"))
	require.NoError(t, err)

	_, err = f.repo.AddLike(ctx, created.ID, f.bob)
	require.NoError(t, err)

	require.NoError(t, f.repo.DeleteItem(ctx, created.ID))

	_, err = f.repo.GetItem(ctx, created.ID)
	require.ErrorIs(t, err, domain.ErrItemNotFound)

	err = f.repo.DeleteItem(ctx, created.ID)
	require.ErrorIs(t, err, domain.ErrItemNotFound)
}

func TestSQLiteItemRepository_Likes(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)

	created, err := f.repo.CreateItem(ctx, f.alice, newItem("jacket"))
	require.NoError(t, err)

	liked, err := f.repo.AddLike(ctx, created.ID, f.bob)
	require.NoError(t, err)
	assert.Equal(t, []string{f.bob}, liked.Likes)

	liked, err = f.repo.AddLike(ctx, created.ID, f.bob)
	require.NoError(t, err)
	assert.Equal(t, []string{f.bob}, liked.Likes, "liking twice is a no-op")

	liked, err = f.repo.AddLike(ctx, created.ID, f.alice)
	require.NoError(t, err)
	assert.Equal(t, []string{f.bob, f.alice}, liked.Likes)

	unliked, err := f.repo.RemoveLike(ctx, created.ID, f.bob)
	require.NoError(t, err)
	assert.Equal(t, []string{f.alice}, unliked.Likes)

	unliked, err = f.repo.RemoveLike(ctx, created.ID, f.bob)
	require.NoError(t, err)
	assert.Equal(t, []string{f.alice}, unliked.Likes)

	_, err = f.repo.AddLike(ctx, domain.NewID(), f.bob)
	require.ErrorIs(t, err, domain.ErrItemNotFound)

	_, err = f.repo.AddLike(ctx, created.ID, domain.NewID())
	require.ErrorIs(t, err, domain.ErrUserNotFound)
}
