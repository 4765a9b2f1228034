package handlers

import (
	"errors"
	"net/http"

	authsvc "github.com/aeshtlv/GiftTinder/internal/services/auth"
	swipesvc "github.com/aeshtlv/GiftTinder/internal/services/swipes"
	"github.com/aeshtlv/GiftTinder/internal/transport/http/dto"
	httperrors "github.com/aeshtlv/GiftTinder/internal/transport/http/errors"
)

type SwipeHandler struct {
	service *swipesvc.Service
}

func NewSwipeHandler(service *swipesvc.Service) *SwipeHandler {
	return &SwipeHandler{service: service}
}

// Handle records one decision for the verified caller. The deciding user is
// always the initData identity, never a body field.
func (h *SwipeHandler) Handle(w http.ResponseWriter, r *http.Request) {
	claim, ok := authsvc.ClaimFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "SWIPE_SERVICE_UNAVAILABLE", "swipe service is unavailable")
		return
	}

	var req dto.SwipeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}
	if req.GiftID <= 0 {
		writeBadRequest(w, "VALIDATION_ERROR", "gift_id is required")
		return
	}

	result, err := h.service.Record(r.Context(), claim.TelegramID, req.GiftID, req.IsLike)
	if err != nil {
		switch {
		case errors.Is(err, swipesvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid swipe request")
		case errors.Is(err, swipesvc.ErrSelfSwipe):
			writeBadRequest(w, "SELF_SWIPE", "cannot swipe your own gift")
		case errors.Is(err, swipesvc.ErrAlreadySwiped):
			writeBadRequest(w, "ALREADY_SWIPED", "gift already swiped")
		case errors.Is(err, swipesvc.ErrGiftNotFound):
			writeNotFound(w, "GIFT_NOT_FOUND", "gift not found")
		case errors.Is(err, swipesvc.ErrUserNotFound):
			writeNotFound(w, "USER_NOT_FOUND", "user not found")
		default:
			var limitErr swipesvc.LimitError
			if errors.As(err, &limitErr) {
				httperrors.Write(w, http.StatusTooManyRequests, httperrors.RateLimitError{
					Code:          "SWIPE_LIMIT_REACHED",
					Message:       "swipe limit reached, try again later",
					RetryAfterSec: limitErr.RetryAfterSec,
				})
				return
			}
			writeInternal(w, "INTERNAL_ERROR", "failed to process swipe")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.SwipeResponse{
		OK:          true,
		Matched:     result.Matched,
		MatchedWith: result.MatchedWith,
	})
}
