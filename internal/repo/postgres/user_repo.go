package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrUserNotFound = errors.New("user not found")

type UserRepo struct {
	pool *pgxpool.Pool
}

type UserRecord struct {
	ID         int64
	TelegramID int64
	Username   string
	FirstName  string
	LastName   string
	IsActive   bool
	CreatedAt  time.Time
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

// Upsert is keyed by the immutable telegram_id: profile fields are refreshed
// on every call, identity never changes.
func (r *UserRepo) Upsert(ctx context.Context, telegramID int64, username, firstName, lastName string) (UserRecord, error) {
	if r.pool == nil {
		return UserRecord{}, fmt.Errorf("postgres pool is nil")
	}
	if telegramID <= 0 {
		return UserRecord{}, fmt.Errorf("invalid telegram_id")
	}

	var user UserRecord
	err := r.pool.QueryRow(ctx, `
INSERT INTO users (telegram_id, username, first_name, last_name, is_active, created_at, updated_at)
VALUES ($1, $2, $3, $4, TRUE, NOW(), NOW())
ON CONFLICT (telegram_id) DO UPDATE SET
	username = EXCLUDED.username,
	first_name = EXCLUDED.first_name,
	last_name = EXCLUDED.last_name,
	updated_at = NOW()
RETURNING id, telegram_id, username, first_name, last_name, is_active, created_at
`, telegramID, strings.TrimSpace(username), strings.TrimSpace(firstName), strings.TrimSpace(lastName)).Scan(
		&user.ID,
		&user.TelegramID,
		&user.Username,
		&user.FirstName,
		&user.LastName,
		&user.IsActive,
		&user.CreatedAt,
	)
	if err != nil {
		return UserRecord{}, fmt.Errorf("upsert user by telegram_id: %w", err)
	}

	return user, nil
}

func (r *UserRepo) FindByTelegramID(ctx context.Context, telegramID int64) (UserRecord, error) {
	if r.pool == nil {
		return UserRecord{}, fmt.Errorf("postgres pool is nil")
	}
	if telegramID <= 0 {
		return UserRecord{}, fmt.Errorf("invalid telegram_id")
	}

	var user UserRecord
	err := r.pool.QueryRow(ctx, `
SELECT id, telegram_id, username, first_name, last_name, is_active, created_at
FROM users
WHERE telegram_id = $1
`, telegramID).Scan(
		&user.ID,
		&user.TelegramID,
		&user.Username,
		&user.FirstName,
		&user.LastName,
		&user.IsActive,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return UserRecord{}, ErrUserNotFound
		}
		return UserRecord{}, fmt.Errorf("find user by telegram_id: %w", err)
	}

	return user, nil
}

// ExistsByTelegramID runs inside the caller's transaction so the swipe engine
// sees a consistent snapshot while deciding.
func (r *UserRepo) ExistsByTelegramID(ctx context.Context, tx pgx.Tx, telegramID int64) (bool, error) {
	if telegramID <= 0 {
		return false, fmt.Errorf("invalid telegram_id")
	}
	if tx == nil {
		return false, fmt.Errorf("transaction is required")
	}

	var one int
	err := tx.QueryRow(ctx, `
SELECT 1
FROM users
WHERE telegram_id = $1
LIMIT 1
`, telegramID).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("lookup user by telegram_id: %w", err)
	}

	return true, nil
}

func (r *UserRepo) ListActive(ctx context.Context, limit int) ([]UserRecord, error) {
	if limit <= 0 {
		limit = 1000
	}
	if r.pool == nil {
		return []UserRecord{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, telegram_id, username, first_name, last_name, is_active, created_at
FROM users
WHERE is_active
ORDER BY created_at, id
LIMIT $1
`, limit)
	if err != nil {
		return nil, fmt.Errorf("list active users: %w", err)
	}
	defer rows.Close()

	items := make([]UserRecord, 0, limit)
	for rows.Next() {
		var user UserRecord
		if err := rows.Scan(
			&user.ID,
			&user.TelegramID,
			&user.Username,
			&user.FirstName,
			&user.LastName,
			&user.IsActive,
			&user.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan active user: %w", err)
		}
		items = append(items, user)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate active users: %w", rows.Err())
	}

	return items, nil
}
