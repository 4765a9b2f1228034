package dto

type SwipeRequest struct {
	GiftID int64 `json:"gift_id"`
	IsLike bool  `json:"is_like"`
}

type SwipeResponse struct {
	OK          bool  `json:"ok"`
	Matched     bool  `json:"matched"`
	MatchedWith int64 `json:"matched_with,omitempty"`
}
