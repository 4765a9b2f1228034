package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrSwipeExists = errors.New("swipe already recorded")

type SwipeRepo struct {
	pool *pgxpool.Pool
}

func NewSwipeRepo(pool *pgxpool.Pool) *SwipeRepo {
	return &SwipeRepo{pool: pool}
}

// Create inserts one decision inside the caller's transaction. The unique
// constraint on (actor_telegram_id, gift_id) is the single source of truth
// for duplicates: a concurrent double-submit loses the race here and gets
// ErrSwipeExists, not a second row.
func (r *SwipeRepo) Create(ctx context.Context, tx pgx.Tx, actorTelegramID, giftID int64, isLike bool) (int64, error) {
	if tx == nil {
		return 0, fmt.Errorf("transaction is required")
	}
	if actorTelegramID <= 0 || giftID <= 0 {
		return 0, fmt.Errorf("invalid swipe identifiers")
	}

	var id int64
	err := tx.QueryRow(ctx, `
INSERT INTO swipes (actor_telegram_id, gift_id, is_like, created_at)
VALUES ($1, $2, $3, NOW())
RETURNING id
`, actorTelegramID, giftID, isLike).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, ErrSwipeExists
		}
		return 0, fmt.Errorf("insert swipe: %w", err)
	}

	return id, nil
}

// OwnerLikesBack reports whether the gift owner has liked any gift that
// belongs to the swiper. Reciprocity is between people, not between the
// particular gifts they happened to like.
func (r *SwipeRepo) OwnerLikesBack(ctx context.Context, tx pgx.Tx, ownerTelegramID, swiperTelegramID int64) (bool, error) {
	if tx == nil {
		return false, fmt.Errorf("transaction is required")
	}

	var likesBack bool
	err := tx.QueryRow(ctx, `
SELECT EXISTS (
	SELECT 1
	FROM swipes s
	JOIN gifts g ON g.id = s.gift_id
	WHERE s.actor_telegram_id = $1
	  AND g.owner_telegram_id = $2
	  AND s.is_like
)
`, ownerTelegramID, swiperTelegramID).Scan(&likesBack)
	if err != nil {
		return false, fmt.Errorf("check reciprocal like: %w", err)
	}

	return likesBack, nil
}
