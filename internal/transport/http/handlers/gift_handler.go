package handlers

import (
	"errors"
	"net/http"

	giftssvc "github.com/aeshtlv/GiftTinder/internal/services/gifts"
	"github.com/aeshtlv/GiftTinder/internal/transport/http/dto"
	httperrors "github.com/aeshtlv/GiftTinder/internal/transport/http/errors"
)

type GiftHandler struct {
	service *giftssvc.Service
}

func NewGiftHandler(service *giftssvc.Service) *GiftHandler {
	return &GiftHandler{service: service}
}

func (h *GiftHandler) ListByOwner(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "GIFT_SERVICE_UNAVAILABLE", "gift service is unavailable")
		return
	}

	ownerID, ok := telegramIDParam(r, "telegram_id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "telegram_id must be a positive integer")
		return
	}

	gifts, err := h.service.ListVisibleForOwner(r.Context(), ownerID)
	if err != nil {
		if errors.Is(err, giftssvc.ErrValidation) {
			writeBadRequest(w, "VALIDATION_ERROR", "invalid telegram_id")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to list gifts")
		return
	}

	payload := dto.GiftsResponse{Gifts: make([]dto.GiftResponse, 0, len(gifts))}
	for _, gift := range gifts {
		payload.Gifts = append(payload.Gifts, dto.GiftResponse{
			ID:              gift.ID,
			OwnerTelegramID: gift.OwnerTelegramID,
			GiftID:          gift.GiftID,
			Name:            gift.Name,
			Description:     gift.Description,
			ImageURL:        gift.ImageURL,
			CreatedAt:       gift.CreatedAt,
		})
	}
	httperrors.Write(w, http.StatusOK, payload)
}

// Sync replaces the owner's collection wholesale. The caller is the trusted
// sync agent on the internal network, so there is no initData check here.
func (h *GiftHandler) Sync(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "GIFT_SERVICE_UNAVAILABLE", "gift service is unavailable")
		return
	}

	ownerID, ok := telegramIDParam(r, "telegram_id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "telegram_id must be a positive integer")
		return
	}

	var req dto.SyncGiftsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	descriptors := make([]giftssvc.Descriptor, 0, len(req.Gifts))
	for _, gift := range req.Gifts {
		descriptors = append(descriptors, giftssvc.Descriptor{
			GiftID:      gift.GiftID,
			Name:        gift.Name,
			Description: gift.Description,
			ImageURL:    gift.ImageURL,
			IsVisible:   gift.IsVisible,
		})
	}

	synced, err := h.service.ReplaceForOwner(r.Context(), ownerID, descriptors)
	if err != nil {
		if errors.Is(err, giftssvc.ErrValidation) {
			writeBadRequest(w, "VALIDATION_ERROR", "invalid sync payload")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to sync gifts")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.SyncGiftsResponse{OK: true, Synced: synced})
}
