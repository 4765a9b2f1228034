package dto

import "time"

type MatchResponse struct {
	ID               int64     `json:"id"`
	TargetTelegramID int64     `json:"target_telegram_id"`
	Username         string    `json:"username"`
	FirstName        string    `json:"first_name"`
	LastName         string    `json:"last_name"`
	CreatedAt        time.Time `json:"created_at"`
}

type MatchesResponse struct {
	Matches []MatchResponse `json:"matches"`
}

type UnmatchResponse struct {
	OK      bool `json:"ok"`
	Removed bool `json:"removed"`
}
