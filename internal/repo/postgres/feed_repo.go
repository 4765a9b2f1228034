package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNoGiftsLeft = errors.New("no gifts left to swipe")

type FeedRepo struct {
	pool *pgxpool.Pool
}

func NewFeedRepo(pool *pgxpool.Pool) *FeedRepo {
	return &FeedRepo{pool: pool}
}

// NextUnswiped returns the oldest visible gift the viewer has not decided on
// yet, skipping the viewer's own gifts. Ordering by (created_at, id) keeps
// the feed deterministic when timestamps collide.
func (r *FeedRepo) NextUnswiped(ctx context.Context, viewerTelegramID int64) (GiftRecord, error) {
	if r.pool == nil {
		return GiftRecord{}, fmt.Errorf("postgres pool is nil")
	}
	if viewerTelegramID <= 0 {
		return GiftRecord{}, fmt.Errorf("invalid telegram_id")
	}

	var gift GiftRecord
	err := r.pool.QueryRow(ctx, `
SELECT g.id, g.owner_telegram_id, g.gift_id, g.name, g.description, g.image_url, g.is_visible, g.created_at
FROM gifts g
WHERE g.owner_telegram_id <> $1
  AND g.is_visible
  AND NOT EXISTS (
	SELECT 1
	FROM swipes s
	WHERE s.gift_id = g.id AND s.actor_telegram_id = $1
  )
ORDER BY g.created_at, g.id
LIMIT 1
`, viewerTelegramID).Scan(
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
			return GiftRecord{}, ErrNoGiftsLeft
		}
		return GiftRecord{}, fmt.Errorf("next unswiped gift: %w", err)
	}

	return gift, nil
}
