package giftsync

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/aeshtlv/GiftTinder/internal/domain/model"
	tginfra "github.com/aeshtlv/GiftTinder/internal/infra/telegram"
	giftssvc "github.com/aeshtlv/GiftTinder/internal/services/gifts"
)

// Source is where gift collections come from, normally the Telegram bot API.
type Source interface {
	FetchGifts(ctx context.Context, userID int64) ([]tginfra.GiftPayload, error)
}

// Target receives the synced collections, normally the gifts service.
type Target interface {
	ReplaceForOwner(ctx context.Context, ownerTelegramID int64, descriptors []giftssvc.Descriptor) (int, error)
}

type UserDirectory interface {
	ListActive(ctx context.Context, limit int) ([]model.User, error)
}

type Config struct {
	Interval   time.Duration
	Jitter     time.Duration
	RetryDelay time.Duration
	UserDelay  time.Duration
}

type Job struct {
	source Source
	target Target
	users  UserDirectory
	cfg    Config
	logger *zap.Logger

	sleep func(ctx context.Context, d time.Duration) error
}

func New(source Source, target Target, users UserDirectory, cfg Config, logger *zap.Logger) *Job {
	if cfg.Interval <= 0 {
		cfg.Interval = 6 * time.Hour
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Job{
		source: source,
		target: target,
		users:  users,
		cfg:    cfg,
		logger: logger,
		sleep:  sleepCtx,
	}
}

// RunOnce syncs every active user's collection. A failure for one user is
// logged and skipped; the cycle only fails when the user list itself cannot
// be read.
func (j *Job) RunOnce(ctx context.Context) error {
	if j.source == nil || j.target == nil || j.users == nil {
		return fmt.Errorf("gift sync dependencies are not configured")
	}

	users, err := j.users.ListActive(ctx, 0)
	if err != nil {
		return fmt.Errorf("list users for gift sync: %w", err)
	}

	synced := 0
	for i, user := range users {
		if i > 0 && j.cfg.UserDelay > 0 {
			if err := j.sleep(ctx, j.cfg.UserDelay); err != nil {
				return err
			}
		}

		payloads, err := j.source.FetchGifts(ctx, user.TelegramID)
		if err != nil {
			j.logger.Warn("fetch gifts failed",
				zap.Int64("telegram_id", user.TelegramID),
				zap.Error(err),
			)
			continue
		}

		descriptors := make([]giftssvc.Descriptor, 0, len(payloads))
		for _, payload := range payloads {
			descriptors = append(descriptors, giftssvc.Descriptor{
				GiftID:      payload.GiftID,
				Name:        payload.Name,
				Description: payload.Description,
				ImageURL:    payload.ImageURL,
				IsVisible:   true,
			})
		}

		if _, err := j.target.ReplaceForOwner(ctx, user.TelegramID, descriptors); err != nil {
			j.logger.Warn("replace gifts failed",
				zap.Int64("telegram_id", user.TelegramID),
				zap.Error(err),
			)
			continue
		}
		synced++
	}

	j.logger.Info("gift sync cycle finished",
		zap.Int("users", len(users)),
		zap.Int("synced", synced),
	)
	return nil
}

// Run loops RunOnce forever: full interval (jittered) after a good cycle,
// short retry delay after a failed one.
func (j *Job) Run(ctx context.Context) error {
	for {
		delay := j.cfg.Interval + jitter(j.cfg.Jitter)
		if err := j.RunOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			j.logger.Error("gift sync cycle failed", zap.Error(err))
			delay = j.cfg.RetryDelay
		}

		if err := j.sleep(ctx, delay); err != nil {
			return nil
		}
	}
}

func jitter(max time.Duration) time.Duration {
	if max <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(int64(max)))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
