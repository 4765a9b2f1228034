package rate

import (
	"context"
	"fmt"
	"time"
)

// WindowStore is the counter backend, one fixed window per key.
type WindowStore interface {
	IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

type Config struct {
	MaxSwipesPerDay int
	SwipesPer10Sec  int
}

// Limiter enforces the per-day and per-10-second swipe budgets. Both windows
// are counted on every attempt; the day window is checked first so its
// longer retry-after wins when both are exhausted.
type Limiter struct {
	store WindowStore
	cfg   Config
}

func NewLimiter(store WindowStore, cfg Config) *Limiter {
	if cfg.MaxSwipesPerDay <= 0 {
		cfg.MaxSwipesPerDay = 100
	}
	if cfg.SwipesPer10Sec <= 0 {
		cfg.SwipesPer10Sec = 10
	}
	return &Limiter{store: store, cfg: cfg}
}

// AllowSwipe returns (false, retryAfterSeconds, nil) when a window is
// exhausted. Backend failures are returned as errors so the caller decides
// whether to fail open or closed.
func (l *Limiter) AllowSwipe(ctx context.Context, telegramID int64) (bool, int64, error) {
	if l.store == nil {
		return true, 0, nil
	}
	if telegramID <= 0 {
		return false, 0, fmt.Errorf("invalid telegram_id")
	}

	dayKey := fmt.Sprintf("rate:swipes:day:%d", telegramID)
	dayCount, dayTTL, err := l.store.IncrementWindow(ctx, dayKey, 24*time.Hour)
	if err != nil {
		return false, 0, fmt.Errorf("count daily swipes: %w", err)
	}

	burstKey := fmt.Sprintf("rate:swipes:10s:%d", telegramID)
	burstCount, burstTTL, err := l.store.IncrementWindow(ctx, burstKey, 10*time.Second)
	if err != nil {
		return false, 0, fmt.Errorf("count burst swipes: %w", err)
	}

	if dayCount > int64(l.cfg.MaxSwipesPerDay) {
		return false, ceilSeconds(dayTTL), nil
	}
	if burstCount > int64(l.cfg.SwipesPer10Sec) {
		return false, ceilSeconds(burstTTL), nil
	}

	return true, 0, nil
}

func ceilSeconds(d time.Duration) int64 {
	if d <= 0 {
		return 1
	}
	secs := int64(d / time.Second)
	if d%time.Second != 0 {
		secs++
	}
	if secs < 1 {
		secs = 1
	}
	return secs
}
