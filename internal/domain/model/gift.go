package model

import "time"

// Gift is one unit of an owner's collection. The owner reference is the
// external telegram id, not the internal row id: collections are resynced
// wholesale from Telegram and the external identity is the stable key.
type Gift struct {
	ID              int64     `json:"id"`
	OwnerTelegramID int64     `json:"owner_telegram_id"`
	GiftID          string    `json:"gift_id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	ImageURL        string    `json:"image_url"`
	IsVisible       bool      `json:"is_visible"`
	CreatedAt       time.Time `json:"created_at"`
}
