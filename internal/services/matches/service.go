package matches

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	pgrepo "github.com/aeshtlv/GiftTinder/internal/repo/postgres"
)

var ErrValidation = errors.New("validation error")

type MatchStore interface {
	ListActiveForUser(ctx context.Context, userTelegramID int64, limit int) ([]pgrepo.ActiveMatchRecord, error)
	Deactivate(ctx context.Context, tx pgx.Tx, userTelegramID, targetTelegramID int64) (bool, error)
}

// MatchItem is one match as shown to the user: the counterpart's profile
// plus when the pair matched.
type MatchItem struct {
	ID               int64
	TargetTelegramID int64
	Username         string
	FirstName        string
	LastName         string
	CreatedAt        time.Time
}

type Service struct {
	pool       *pgxpool.Pool
	matchStore MatchStore

	runTx func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error
}

type Dependencies struct {
	Pool       *pgxpool.Pool
	MatchStore MatchStore
}

func NewService(deps Dependencies) *Service {
	s := &Service{
		pool:       deps.Pool,
		matchStore: deps.MatchStore,
	}
	s.runTx = func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
		return pgrepo.WithTx(ctx, s.pool, fn)
	}
	return s
}

func (s *Service) List(ctx context.Context, userTelegramID int64, limit int) ([]MatchItem, error) {
	if userTelegramID <= 0 {
		return nil, ErrValidation
	}
	if s.matchStore == nil {
		return nil, fmt.Errorf("match store is nil")
	}

	rows, err := s.matchStore.ListActiveForUser(ctx, userTelegramID, limit)
	if err != nil {
		return nil, err
	}

	items := make([]MatchItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, MatchItem{
			ID:               row.ID,
			TargetTelegramID: row.TargetTelegramID,
			Username:         row.Username,
			FirstName:        row.FirstName,
			LastName:         row.LastName,
			CreatedAt:        row.CreatedAt,
		})
	}
	return items, nil
}

// Unmatch deactivates the pair's active match. The history row stays; the
// pair can match again on a future reciprocal like.
func (s *Service) Unmatch(ctx context.Context, userTelegramID, targetTelegramID int64) (bool, error) {
	if userTelegramID <= 0 || targetTelegramID <= 0 || userTelegramID == targetTelegramID {
		return false, ErrValidation
	}
	if s.matchStore == nil {
		return false, fmt.Errorf("match store is nil")
	}

	var deactivated bool
	if err := s.runTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		ok, err := s.matchStore.Deactivate(txCtx, tx, userTelegramID, targetTelegramID)
		if err != nil {
			return err
		}
		deactivated = ok
		return nil
	}); err != nil {
		return false, err
	}

	return deactivated, nil
}
