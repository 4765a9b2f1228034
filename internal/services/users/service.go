package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/aeshtlv/GiftTinder/internal/domain/model"
	pgrepo "github.com/aeshtlv/GiftTinder/internal/repo/postgres"
	"github.com/aeshtlv/GiftTinder/internal/services/auth"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("user not found")
)

type UserStore interface {
	Upsert(ctx context.Context, telegramID int64, username, firstName, lastName string) (pgrepo.UserRecord, error)
	FindByTelegramID(ctx context.Context, telegramID int64) (pgrepo.UserRecord, error)
	ListActive(ctx context.Context, limit int) ([]pgrepo.UserRecord, error)
}

type Service struct {
	userStore UserStore
}

type Dependencies struct {
	UserStore UserStore
}

func NewService(deps Dependencies) *Service {
	return &Service{userStore: deps.UserStore}
}

// Upsert registers the verified identity, refreshing profile fields on every
// Mini App open.
func (s *Service) Upsert(ctx context.Context, claim auth.UserClaim) (model.User, error) {
	if claim.TelegramID <= 0 {
		return model.User{}, ErrValidation
	}
	if s.userStore == nil {
		return model.User{}, fmt.Errorf("user store is nil")
	}

	record, err := s.userStore.Upsert(ctx, claim.TelegramID, claim.Username, claim.FirstName, claim.LastName)
	if err != nil {
		return model.User{}, err
	}

	return toModel(record), nil
}

func (s *Service) Get(ctx context.Context, telegramID int64) (model.User, error) {
	if telegramID <= 0 {
		return model.User{}, ErrValidation
	}
	if s.userStore == nil {
		return model.User{}, fmt.Errorf("user store is nil")
	}

	record, err := s.userStore.FindByTelegramID(ctx, telegramID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, err
	}

	return toModel(record), nil
}

func (s *Service) ListActive(ctx context.Context, limit int) ([]model.User, error) {
	if s.userStore == nil {
		return nil, fmt.Errorf("user store is nil")
	}

	records, err := s.userStore.ListActive(ctx, limit)
	if err != nil {
		return nil, err
	}

	items := make([]model.User, 0, len(records))
	for _, record := range records {
		items = append(items, toModel(record))
	}
	return items, nil
}

func toModel(record pgrepo.UserRecord) model.User {
	return model.User{
		ID:         record.ID,
		TelegramID: record.TelegramID,
		Username:   record.Username,
		FirstName:  record.FirstName,
		LastName:   record.LastName,
		IsActive:   record.IsActive,
		CreatedAt:  record.CreatedAt,
	}
}
