package swipes

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	pgrepo "github.com/aeshtlv/GiftTinder/internal/repo/postgres"
)

var (
	ErrValidation    = errors.New("validation error")
	ErrSelfSwipe     = errors.New("cannot swipe own gift")
	ErrAlreadySwiped = errors.New("gift already swiped")
	ErrGiftNotFound  = errors.New("gift not found")
	ErrUserNotFound  = errors.New("user not found")
)

// LimitError reports an exhausted swipe budget together with the seconds
// until the window reopens.
type LimitError struct {
	RetryAfterSec int64
}

func (e LimitError) Error() string {
	return fmt.Sprintf("swipe limit reached, retry after %d seconds", e.RetryAfterSec)
}

type GiftStore interface {
	GetByID(ctx context.Context, tx pgx.Tx, giftID int64) (pgrepo.GiftRecord, error)
}

type UserStore interface {
	ExistsByTelegramID(ctx context.Context, tx pgx.Tx, telegramID int64) (bool, error)
}

type SwipeStore interface {
	Create(ctx context.Context, tx pgx.Tx, actorTelegramID, giftID int64, isLike bool) (int64, error)
	OwnerLikesBack(ctx context.Context, tx pgx.Tx, ownerTelegramID, swiperTelegramID int64) (bool, error)
}

type MatchStore interface {
	CreateActive(ctx context.Context, tx pgx.Tx, userTelegramID, targetTelegramID int64) (bool, error)
}

type RateLimiter interface {
	AllowSwipe(ctx context.Context, telegramID int64) (bool, int64, error)
}

// Result describes the outcome of one recorded decision. Matched is true
// whenever the pair is mutually liked after this swipe; AlreadyMatched marks
// the case where an active match existed before this swipe, so no new match
// row was created.
type Result struct {
	Matched     bool
	MatchedWith int64

	AlreadyMatched bool
}

type Service struct {
	pool        *pgxpool.Pool
	giftStore   GiftStore
	userStore   UserStore
	swipeStore  SwipeStore
	matchStore  MatchStore
	rateLimiter RateLimiter

	runTx func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error
}

type Dependencies struct {
	Pool        *pgxpool.Pool
	GiftStore   GiftStore
	UserStore   UserStore
	SwipeStore  SwipeStore
	MatchStore  MatchStore
	RateLimiter RateLimiter
}

func NewService(deps Dependencies) *Service {
	s := &Service{
		pool:        deps.Pool,
		giftStore:   deps.GiftStore,
		userStore:   deps.UserStore,
		swipeStore:  deps.SwipeStore,
		matchStore:  deps.MatchStore,
		rateLimiter: deps.RateLimiter,
	}
	s.runTx = func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
		return pgrepo.WithTx(ctx, s.pool, fn)
	}
	return s
}

// Record stores one like/dislike and, on a like, checks owner-level
// reciprocity: the gift's owner must have liked any gift of the swiper. The
// whole decision runs in one transaction, so the swipe and the match it may
// create commit together or not at all.
func (s *Service) Record(ctx context.Context, userID, giftID int64, isLike bool) (Result, error) {
	if userID <= 0 || giftID <= 0 {
		return Result{}, ErrValidation
	}
	if s.giftStore == nil || s.userStore == nil || s.swipeStore == nil || s.matchStore == nil {
		return Result{}, fmt.Errorf("swipe dependencies are not configured")
	}

	if s.rateLimiter != nil {
		allowed, retryAfter, err := s.rateLimiter.AllowSwipe(ctx, userID)
		if err != nil {
			return Result{}, fmt.Errorf("apply swipe rate limiter: %w", err)
		}
		if !allowed {
			return Result{}, LimitError{RetryAfterSec: retryAfter}
		}
	}

	var result Result
	if err := s.runTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		gift, err := s.giftStore.GetByID(txCtx, tx, giftID)
		if err != nil {
			if errors.Is(err, pgrepo.ErrGiftNotFound) {
				return ErrGiftNotFound
			}
			return err
		}
		if !gift.IsVisible {
			return ErrGiftNotFound
		}

		exists, err := s.userStore.ExistsByTelegramID(txCtx, tx, userID)
		if err != nil {
			return err
		}
		if !exists {
			return ErrUserNotFound
		}

		if gift.OwnerTelegramID == userID {
			return ErrSelfSwipe
		}

		if _, err := s.swipeStore.Create(txCtx, tx, userID, giftID, isLike); err != nil {
			if errors.Is(err, pgrepo.ErrSwipeExists) {
				return ErrAlreadySwiped
			}
			return err
		}

		if !isLike {
			return nil
		}

		likesBack, err := s.swipeStore.OwnerLikesBack(txCtx, tx, gift.OwnerTelegramID, userID)
		if err != nil {
			return err
		}
		if !likesBack {
			return nil
		}

		created, err := s.matchStore.CreateActive(txCtx, tx, userID, gift.OwnerTelegramID)
		if err != nil {
			return err
		}
		result.Matched = true
		result.MatchedWith = gift.OwnerTelegramID
		result.AlreadyMatched = !created
		return nil
	}); err != nil {
		return Result{}, err
	}

	return result, nil
}
