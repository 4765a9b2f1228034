package gifts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aeshtlv/GiftTinder/internal/domain/model"
	pgrepo "github.com/aeshtlv/GiftTinder/internal/repo/postgres"
)

var ErrValidation = errors.New("validation error")

type GiftStore interface {
	ReplaceForOwner(ctx context.Context, tx pgx.Tx, ownerTelegramID int64, gifts []pgrepo.GiftInput) (int, error)
	ListVisibleByOwner(ctx context.Context, ownerTelegramID int64) ([]pgrepo.GiftRecord, error)
}

// Descriptor is one gift as delivered by the sync source.
type Descriptor struct {
	GiftID      string
	Name        string
	Description string
	ImageURL    string
	IsVisible   bool
}

type Config struct {
	MaxGiftsPerUser int
}

type Service struct {
	pool      *pgxpool.Pool
	giftStore GiftStore
	cfg       Config

	runTx func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error
}

type Dependencies struct {
	Pool      *pgxpool.Pool
	GiftStore GiftStore
	Config    Config
}

func NewService(deps Dependencies) *Service {
	cfg := deps.Config
	if cfg.MaxGiftsPerUser <= 0 {
		cfg.MaxGiftsPerUser = 50
	}

	s := &Service{
		pool:      deps.Pool,
		giftStore: deps.GiftStore,
		cfg:       cfg,
	}
	s.runTx = func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
		return pgrepo.WithTx(ctx, s.pool, fn)
	}
	return s
}

// ReplaceForOwner swaps the owner's collection for the synced one, capped at
// the per-user gift limit. Extra gifts past the cap are dropped, not an
// error: the source is Telegram's view of the collection, not user input.
func (s *Service) ReplaceForOwner(ctx context.Context, ownerTelegramID int64, descriptors []Descriptor) (int, error) {
	if ownerTelegramID <= 0 {
		return 0, ErrValidation
	}
	if s.giftStore == nil {
		return 0, fmt.Errorf("gift store is nil")
	}

	if len(descriptors) > s.cfg.MaxGiftsPerUser {
		descriptors = descriptors[:s.cfg.MaxGiftsPerUser]
	}

	inputs := make([]pgrepo.GiftInput, 0, len(descriptors))
	for _, d := range descriptors {
		inputs = append(inputs, pgrepo.GiftInput{
			GiftID:      strings.TrimSpace(d.GiftID),
			Name:        strings.TrimSpace(d.Name),
			Description: d.Description,
			ImageURL:    d.ImageURL,
			IsVisible:   d.IsVisible,
		})
	}

	var stored int
	if err := s.runTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		n, err := s.giftStore.ReplaceForOwner(txCtx, tx, ownerTelegramID, inputs)
		if err != nil {
			return err
		}
		stored = n
		return nil
	}); err != nil {
		return 0, err
	}

	return stored, nil
}

func (s *Service) ListVisibleForOwner(ctx context.Context, ownerTelegramID int64) ([]model.Gift, error) {
	if ownerTelegramID <= 0 {
		return nil, ErrValidation
	}
	if s.giftStore == nil {
		return nil, fmt.Errorf("gift store is nil")
	}

	records, err := s.giftStore.ListVisibleByOwner(ctx, ownerTelegramID)
	if err != nil {
		return nil, err
	}

	items := make([]model.Gift, 0, len(records))
	for _, record := range records {
		items = append(items, model.Gift{
			ID:              record.ID,
			OwnerTelegramID: record.OwnerTelegramID,
			GiftID:          record.GiftID,
			Name:            record.Name,
			Description:     record.Description,
			ImageURL:        record.ImageURL,
			IsVisible:       record.IsVisible,
			CreatedAt:       record.CreatedAt,
		})
	}
	return items, nil
}
