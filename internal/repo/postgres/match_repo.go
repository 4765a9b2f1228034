package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MatchRepo struct {
	pool *pgxpool.Pool
}

// ActiveMatchRecord is one row of a user's match list with the counterpart's
// profile already joined in.
type ActiveMatchRecord struct {
	ID               int64
	TargetTelegramID int64
	Username         string
	FirstName        string
	LastName         string
	CreatedAt        time.Time
}

func NewMatchRepo(pool *pgxpool.Pool) *MatchRepo {
	return &MatchRepo{pool: pool}
}

// CreateActive records a match for the canonical pair inside the caller's
// transaction. Returns false when an active match for the pair already
// exists: the partial unique index absorbs the insert and RETURNING yields
// no row.
func (r *MatchRepo) CreateActive(ctx context.Context, tx pgx.Tx, userTelegramID, targetTelegramID int64) (bool, error) {
	if tx == nil {
		return false, fmt.Errorf("transaction is required")
	}
	if userTelegramID == targetTelegramID {
		return false, fmt.Errorf("cannot match user with themselves")
	}

	userA, userB := userTelegramID, targetTelegramID
	if userA > userB {
		userA, userB = userB, userA
	}

	var id int64
	err := tx.QueryRow(ctx, `
INSERT INTO matches (user_a_id, user_b_id, is_active, created_at)
VALUES ($1, $2, TRUE, NOW())
ON CONFLICT (user_a_id, user_b_id) WHERE is_active DO NOTHING
RETURNING id
`, userA, userB).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("insert match: %w", err)
	}

	return true, nil
}

func (r *MatchRepo) ListActiveForUser(ctx context.Context, userTelegramID int64, limit int) ([]ActiveMatchRecord, error) {
	if userTelegramID <= 0 {
		return nil, fmt.Errorf("invalid telegram_id")
	}
	if limit <= 0 {
		limit = 100
	}
	if r.pool == nil {
		return []ActiveMatchRecord{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT
	m.id,
	u.telegram_id,
	u.username,
	u.first_name,
	u.last_name,
	m.created_at
FROM matches m
JOIN users u ON u.telegram_id = CASE
	WHEN m.user_a_id = $1 THEN m.user_b_id
	ELSE m.user_a_id
END
WHERE m.is_active
  AND (m.user_a_id = $1 OR m.user_b_id = $1)
ORDER BY m.created_at DESC, m.id DESC
LIMIT $2
`, userTelegramID, limit)
	if err != nil {
		return nil, fmt.Errorf("list matches for user: %w", err)
	}
	defer rows.Close()

	items := make([]ActiveMatchRecord, 0, limit)
	for rows.Next() {
		var match ActiveMatchRecord
		if err := rows.Scan(
			&match.ID,
			&match.TargetTelegramID,
			&match.Username,
			&match.FirstName,
			&match.LastName,
			&match.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		items = append(items, match)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate matches: %w", rows.Err())
	}

	return items, nil
}

// Deactivate soft-removes the active match for the pair. The row stays for
// history; the partial index slot frees up so a future reciprocal like can
// match the pair again.
func (r *MatchRepo) Deactivate(ctx context.Context, tx pgx.Tx, userTelegramID, targetTelegramID int64) (bool, error) {
	if tx == nil {
		return false, fmt.Errorf("transaction is required")
	}

	userA, userB := userTelegramID, targetTelegramID
	if userA > userB {
		userA, userB = userB, userA
	}

	tag, err := tx.Exec(ctx, `
UPDATE matches
SET is_active = FALSE
WHERE user_a_id = $1 AND user_b_id = $2 AND is_active
`, userA, userB)
	if err != nil {
		return false, fmt.Errorf("deactivate match: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}
