package item

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mkrupp/wtwr/internal/domain"
	"github.com/mkrupp/wtwr/internal/infra/logging"
	"github.com/mkrupp/wtwr/internal/repo/sqlite"
)

const itemColumns = "id, name, weather, image_url, owner_id, created_at"

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLiteItemRepository implements Repository using SQLite as the storage backend.
type SQLiteItemRepository struct {
	db  *sqlite.DB
	log logging.Logger
	now func() time.Time
}

var _ Repository = (*SQLiteItemRepository)(nil)

// NewSQLiteItemRepository creates a new SQLiteItemRepository on a migrated database.
func NewSQLiteItemRepository(db *sqlite.DB) *SQLiteItemRepository {
	return &SQLiteItemRepository{
		db:  db,
		log: logging.GetLogger("repo.item.sqlite_item_repository"),
		now: time.Now,
	}
}

// CreateItem implements Repository.CreateItem using SQLite.
func (r *SQLiteItemRepository) CreateItem(
	ctx context.Context,
	ownerID string,
	newItem domain.NewClothingItem,
) (*domain.ClothingItem, error) {
	item := &domain.ClothingItem{
		ID:        domain.NewID(),
		Name:      newItem.Name,
		Weather:   newItem.Weather,
		ImageURL:  newItem.ImageURL,
		Owner:     ownerID,
		Likes:     []string{},
		CreatedAt: r.now().UTC().Truncate(time.Second),
	}

	err := r.db.WithWriteTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO clothing_items ("+itemColumns+") VALUES (?, ?, ?, ?, ?, ?)",
			item.ID,
			item.Name,
			string(item.Weather),
			item.ImageURL,
			item.Owner,
			item.CreatedAt.Unix(),
		)

		return err
	})
	if err != nil {
		if sqlite.IsForeignKeyViolation(err) {
			err = errors.Join(domain.ErrUserNotFound, err)
		}

		return nil, fmt.Errorf("insert item: %w", err)
	}

	return item, nil
}

// ListItems implements Repository.ListItems using SQLite.
func (r *SQLiteItemRepository) ListItems(ctx context.Context) ([]domain.ClothingItem, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+itemColumns+" FROM clothing_items ORDER BY created_at DESC, id",
	)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	items := []domain.ClothingItem{}
	index := map[string]int{}

	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}

		index[item.ID] = len(items)
		items = append(items, *item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}

	likes, err := r.db.QueryContext(ctx, "SELECT item_id, user_id FROM clothing_item_likes ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("query likes: %w", err)
	}
	defer likes.Close()

	for likes.Next() {
		var itemID, userID string
		if err := likes.Scan(&itemID, &userID); err != nil {
			return nil, fmt.Errorf("scan like: %w", err)
		}

		if i, ok := index[itemID]; ok {
			items[i].Likes = append(items[i].Likes, userID)
		}
	}

	if err := likes.Err(); err != nil {
		return nil, fmt.Errorf("iterate likes: %w", err)
	}

	return items, nil
}

// GetItem implements Repository.GetItem using SQLite.
func (r *SQLiteItemRepository) GetItem(ctx context.Context, id string) (*domain.ClothingItem, error) {
	item, err := getItem(ctx, r.db, id)
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}

	return item, nil
}

// UpdateItem implements Repository.UpdateItem using SQLite.
func (r *SQLiteItemRepository) UpdateItem(
	ctx context.Context,
	id string,
	update domain.ClothingItemUpdate,
) (*domain.ClothingItem, error) {
	return r.mutate(ctx, "update item", id, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, "UPDATE clothing_items SET image_url = ? WHERE id = ?", update.ImageURL, id)

		return err
	})
}

// DeleteItem implements Repository.DeleteItem using SQLite.
func (r *SQLiteItemRepository) DeleteItem(ctx context.Context, id string) error {
	err := r.db.WithWriteTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "DELETE FROM clothing_items WHERE id = ?", id)
		if err != nil {
			return err
		}

		if n, err := res.RowsAffected(); err != nil {
			return fmt.Errorf("rows affected: %w", err)
		} else if n == 0 {
			return domain.ErrItemNotFound
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}

	r.log.DebugContext(ctx, "item deleted", logging.Group("item", "id", id))

	return nil
}

// AddLike implements Repository.AddLike using SQLite.
func (r *SQLiteItemRepository) AddLike(ctx context.Context, id, userID string) (*domain.ClothingItem, error) {
	return r.mutate(ctx, "add like", id, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO clothing_item_likes (item_id, user_id) VALUES (?, ?)",
			id, userID,
		)
		if sqlite.IsForeignKeyViolation(err) {
			return errors.Join(domain.ErrUserNotFound, err)
		}

		return err
	})
}

// RemoveLike implements Repository.RemoveLike using SQLite.
func (r *SQLiteItemRepository) RemoveLike(ctx context.Context, id, userID string) (*domain.ClothingItem, error) {
	return r.mutate(ctx, "remove like", id, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			"DELETE FROM clothing_item_likes WHERE item_id = ? AND user_id = ?",
			id, userID,
		)

		return err
	})
}

// mutate checks the item exists, applies fn and reads the result back, all
// inside one write transaction.
func (r *SQLiteItemRepository) mutate(
	ctx context.Context,
	op string,
	id string,
	fn func(tx *sql.Tx) error,
) (*domain.ClothingItem, error) {
	var item *domain.ClothingItem

	err := r.db.WithWriteTx(ctx, func(tx *sql.Tx) error {
		if _, err := getItem(ctx, tx, id); err != nil {
			return err
		}

		if err := fn(tx); err != nil {
			return err
		}

		var err error
		item, err = getItem(ctx, tx, id)

		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return item, nil
}

func getItem(ctx context.Context, q queryer, id string) (*domain.ClothingItem, error) {
	item, err := scanItem(q.QueryRowContext(ctx,
		"SELECT "+itemColumns+" FROM clothing_items WHERE id = ?",
		id,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = errors.Join(domain.ErrItemNotFound, err)
		}

		return nil, err
	}

	rows, err := q.QueryContext(ctx,
		"SELECT user_id FROM clothing_item_likes WHERE item_id = ? ORDER BY rowid",
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("query likes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("scan like: %w", err)
		}

		item.Likes = append(item.Likes, userID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate likes: %w", err)
	}

	return item, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(s scanner) (*domain.ClothingItem, error) {
	var (
		item      domain.ClothingItem
		weather   string
		createdAt int64
	)

	if err := s.Scan(&item.ID, &item.Name, &weather, &item.ImageURL, &item.Owner, &createdAt); err != nil {
		return nil, err
	}

	item.Weather = domain.Weather(weather)
	item.CreatedAt = time.Unix(createdAt, 0).UTC()
	item.Likes = []string{}

	return &item, nil
}
