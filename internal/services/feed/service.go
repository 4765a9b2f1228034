package feed

import (
	"context"
	"errors"
	"fmt"

	"github.com/aeshtlv/GiftTinder/internal/domain/model"
	pgrepo "github.com/aeshtlv/GiftTinder/internal/repo/postgres"
)

var ErrValidation = errors.New("validation error")

type FeedStore interface {
	NextUnswiped(ctx context.Context, viewerTelegramID int64) (pgrepo.GiftRecord, error)
}

type Service struct {
	feedStore FeedStore
}

type Dependencies struct {
	FeedStore FeedStore
}

func NewService(deps Dependencies) *Service {
	return &Service{feedStore: deps.FeedStore}
}

// NextGift returns the viewer's next undecided gift. The second return is
// false when the feed is exhausted, which is a normal outcome, not an error.
func (s *Service) NextGift(ctx context.Context, viewerTelegramID int64) (model.Gift, bool, error) {
	if viewerTelegramID <= 0 {
		return model.Gift{}, false, ErrValidation
	}
	if s.feedStore == nil {
		return model.Gift{}, false, fmt.Errorf("feed store is nil")
	}

	record, err := s.feedStore.NextUnswiped(ctx, viewerTelegramID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrNoGiftsLeft) {
			return model.Gift{}, false, nil
		}
		return model.Gift{}, false, err
	}

	return model.Gift{
		ID:              record.ID,
		OwnerTelegramID: record.OwnerTelegramID,
		GiftID:          record.GiftID,
		Name:            record.Name,
		Description:     record.Description,
		ImageURL:        record.ImageURL,
		IsVisible:       record.IsVisible,
		CreatedAt:       record.CreatedAt,
	}, true, nil
}
