package model

import "time"

// Swipe is immutable once recorded: at most one per (actor, gift) pair.
type Swipe struct {
	ID              int64     `json:"id"`
	ActorTelegramID int64     `json:"actor_telegram_id"`
	GiftID          int64     `json:"gift_id"`
	IsLike          bool      `json:"is_like"`
	CreatedAt       time.Time `json:"created_at"`
}
