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

var ErrGiftNotFound = errors.New("gift not found")

type GiftRepo struct {
	pool *pgxpool.Pool
}

type GiftRecord struct {
	ID              int64
	OwnerTelegramID int64
	GiftID          string
	Name            string
	Description     string
	ImageURL        string
	IsVisible       bool
	CreatedAt       time.Time
}

// GiftInput is what the sync agent delivers for one gift.
type GiftInput struct {
	GiftID      string
	Name        string
	Description string
	ImageURL    string
	IsVisible   bool
}

func NewGiftRepo(pool *pgxpool.Pool) *GiftRepo {
	return &GiftRepo{pool: pool}
}

// ReplaceForOwner swaps the owner's gift set wholesale inside the caller's
// transaction. Swipes on the removed rows go away via ON DELETE CASCADE,
// which matches the sync semantics: a re-listed gift is a new gift.
func (r *GiftRepo) ReplaceForOwner(ctx context.Context, tx pgx.Tx, ownerTelegramID int64, gifts []GiftInput) (int, error) {
	if tx == nil {
		return 0, fmt.Errorf("transaction is required")
	}
	if ownerTelegramID <= 0 {
		return 0, fmt.Errorf("invalid owner telegram_id")
	}

	if _, err := tx.Exec(ctx, `
DELETE FROM gifts
WHERE owner_telegram_id = $1
`, ownerTelegramID); err != nil {
		return 0, fmt.Errorf("delete gifts for owner: %w", err)
	}

	inserted := 0
	for _, gift := range gifts {
		name := strings.TrimSpace(gift.Name)
		if name == "" {
			continue
		}

		if _, err := tx.Exec(ctx, `
INSERT INTO gifts (owner_telegram_id, gift_id, name, description, image_url, is_visible, created_at)
VALUES ($1, $2, $3, $4, $5, $6, NOW())
`, ownerTelegramID, strings.TrimSpace(gift.GiftID), name, gift.Description, gift.ImageURL, gift.IsVisible); err != nil {
			return 0, fmt.Errorf("insert gift for owner: %w", err)
		}
		inserted++
	}

	return inserted, nil
}

func (r *GiftRepo) ListVisibleByOwner(ctx context.Context, ownerTelegramID int64) ([]GiftRecord, error) {
	if ownerTelegramID <= 0 {
		return nil, fmt.Errorf("invalid owner telegram_id")
	}
	if r.pool == nil {
		return []GiftRecord{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, owner_telegram_id, gift_id, name, description, image_url, is_visible, created_at
FROM gifts
WHERE owner_telegram_id = $1 AND is_visible
ORDER BY created_at, id
`, ownerTelegramID)
	if err != nil {
		return nil, fmt.Errorf("list gifts for owner: %w", err)
	}
	defer rows.Close()

	items := make([]GiftRecord, 0, 16)
	for rows.Next() {
		var gift GiftRecord
		if err := rows.Scan(
			&gift.ID,
			&gift.OwnerTelegramID,
			&gift.GiftID,
			&gift.Name,
			&gift.Description,
			&gift.ImageURL,
			&gift.IsVisible,
			&gift.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan gift: %w", err)
		}
		items = append(items, gift)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate gifts: %w", rows.Err())
	}

	return items, nil
}

// GetByID resolves a gift inside the caller's transaction so the swipe engine
// validates against the same snapshot it writes into.
func (r *GiftRepo) GetByID(ctx context.Context, tx pgx.Tx, giftID int64) (GiftRecord, error) {
	if tx == nil {
		return GiftRecord{}, fmt.Errorf("transaction is required")
	}
	if giftID <= 0 {
		return GiftRecord{}, ErrGiftNotFound
	}

	var gift GiftRecord
	err := tx.QueryRow(ctx, `
SELECT id, owner_telegram_id, gift_id, name, description, image_url, is_visible, created_at
FROM gifts
WHERE id = $1
`, giftID).Scan(
		&gift.ID,
		&gift.OwnerTelegramID,
		&gift.GiftID,
		&gift.Name,
		&gift.Description,
		&gift.ImageURL,
		&gift.IsVisible,
		&gift.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return GiftRecord{}, ErrGiftNotFound
		}
		return GiftRecord{}, fmt.Errorf("find gift by id: %w", err)
	}

	return gift, nil
}
