package user

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

const userColumns = "id, email, password_hash, name, avatar, created_at"

// SQLiteUserRepository implements Repository using SQLite as the storage backend.
type SQLiteUserRepository struct {
	db  *sqlite.DB
	log logging.Logger
	now func() time.Time
}

var _ Repository = (*SQLiteUserRepository)(nil)

// NewSQLiteUserRepository creates a new SQLiteUserRepository on a migrated database.
func NewSQLiteUserRepository(db *sqlite.DB) *SQLiteUserRepository {
	return &SQLiteUserRepository{
		db:  db,
		log: logging.GetLogger("repo.user.sqlite_user_repository"),
		now: time.Now,
	}
}

// CreateUser implements Repository.CreateUser using SQLite. Uniqueness is
// enforced by the schema, so a lost race surfaces as ErrUserAlreadyExists.
func (r *SQLiteUserRepository) CreateUser(
	ctx context.Context,
	email, passwordHash string,
	profile domain.Profile,
) (*domain.User, error) {
	user := &domain.User{
		ID:           domain.NewID(),
		Email:        domain.NormalizeEmail(email),
		PasswordHash: passwordHash,
		Name:         profile.Name,
		Avatar:       profile.Avatar,
		CreatedAt:    r.now().UTC().Truncate(time.Second),
	}

	err := r.db.WithWriteTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO users ("+userColumns+") VALUES (?, ?, ?, ?, ?, ?)",
			user.ID,
			user.Email,
			user.PasswordHash,
			user.Name,
			user.Avatar,
			user.CreatedAt.Unix(),
		)

		return err
	})
	if err != nil {
		if sqlite.IsUniqueViolation(err) {
			err = errors.Join(domain.ErrUserAlreadyExists, err)
		}

		return nil, fmt.Errorf("insert user: %w", err)
	}

	return user, nil
}

// GetUserByEmail implements Repository.GetUserByEmail using SQLite.
func (r *SQLiteUserRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getUser(ctx, "email", domain.NormalizeEmail(email))
}

// GetUserByID implements Repository.GetUserByID using SQLite.
func (r *SQLiteUserRepository) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getUser(ctx, "id", id)
}

func (r *SQLiteUserRepository) getUser(ctx context.Context, column, value string) (*domain.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE "+column+" = ?",
		value,
	))
	if err != nil {
		return nil, fmt.Errorf("query user by %s: %w", column, err)
	}

	return user, nil
}

// UpdateProfile implements Repository.UpdateProfile using SQLite.
func (r *SQLiteUserRepository) UpdateProfile(
	ctx context.Context,
	id string,
	update domain.ProfileUpdate,
) (*domain.User, error) {
	var user *domain.User

	err := r.db.WithWriteTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"UPDATE users SET name = COALESCE(?, name), avatar = COALESCE(?, avatar) WHERE id = ?",
			update.Name,
			update.Avatar,
			id,
		)
		if err != nil {
			return fmt.Errorf("update: %w", err)
		}

		if n, err := res.RowsAffected(); err != nil {
			return fmt.Errorf("rows affected: %w", err)
		} else if n == 0 {
			return domain.ErrUserNotFound
		}

		user, err = scanUser(tx.QueryRowContext(ctx,
			"SELECT "+userColumns+" FROM users WHERE id = ?",
			id,
		))

		return err
	})
	if err != nil {
		return nil, fmt.Errorf("update user profile: %w", err)
	}

	r.log.DebugContext(ctx, "profile updated", logging.Group("user", "id", id))

	return user, nil
}

func scanUser(row *sql.Row) (*domain.User, error) {
	var (
		user      domain.User
		createdAt int64
	)

	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Name, &user.Avatar, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = errors.Join(domain.ErrUserNotFound, err)
		}

		return nil, err
	}

	user.CreatedAt = time.Unix(createdAt, 0).UTC()

	return &user, nil
}
