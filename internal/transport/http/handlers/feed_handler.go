package handlers

import (
	"errors"
	"net/http"

	feedsvc "github.com/aeshtlv/GiftTinder/internal/services/feed"
	"github.com/aeshtlv/GiftTinder/internal/transport/http/dto"
	httperrors "github.com/aeshtlv/GiftTinder/internal/transport/http/errors"
)

type FeedHandler struct {
	service *feedsvc.Service
}

func NewFeedHandler(service *feedsvc.Service) *FeedHandler {
	return &FeedHandler{service: service}
}

func (h *FeedHandler) NextGift(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "FEED_SERVICE_UNAVAILABLE", "feed service is unavailable")
		return
	}

	viewerID, ok := telegramIDParam(r, "telegram_id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "telegram_id must be a positive integer")
		return
	}

	gift, found, err := h.service.NextGift(r.Context(), viewerID)
	if err != nil {
		if errors.Is(err, feedsvc.ErrValidation) {
			writeBadRequest(w, "VALIDATION_ERROR", "invalid telegram_id")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to load next gift")
		return
	}

	// An exhausted feed is 200 with a message, not an error: the client
	// shows "nothing left" and stops asking.
	if !found {
		httperrors.Write(w, http.StatusOK, struct {
			Message string `json:"message"`
		}{Message: "no more gifts to swipe"})
		return
	}

	httperrors.Write(w, http.StatusOK, dto.GiftResponse{
		ID:              gift.ID,
		OwnerTelegramID: gift.OwnerTelegramID,
		GiftID:          gift.GiftID,
		Name:            gift.Name,
		Description:     gift.Description,
		ImageURL:        gift.ImageURL,
		CreatedAt:       gift.CreatedAt,
	})
}
