package dto

import "time"

type GiftResponse struct {
	ID              int64     `json:"id"`
	OwnerTelegramID int64     `json:"owner_telegram_id"`
	GiftID          string    `json:"gift_id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	ImageURL        string    `json:"image_url"`
	CreatedAt       time.Time `json:"created_at"`
}

type GiftsResponse struct {
	Gifts []GiftResponse `json:"gifts"`
}

type SyncGiftPayload struct {
	GiftID      string `json:"gift_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	IsVisible   bool   `json:"is_visible"`
}

type SyncGiftsRequest struct {
	Gifts []SyncGiftPayload `json:"gifts"`
}

type SyncGiftsResponse struct {
	OK     bool `json:"ok"`
	Synced int  `json:"synced"`
}
