package handlers

import (
	"errors"
	"net/http"

	matchessvc "github.com/aeshtlv/GiftTinder/internal/services/matches"
	"github.com/aeshtlv/GiftTinder/internal/transport/http/dto"
	httperrors "github.com/aeshtlv/GiftTinder/internal/transport/http/errors"
)

type MatchesHandler struct {
	service      *matchessvc.Service
	defaultLimit int
}

func NewMatchesHandler(service *matchessvc.Service, defaultLimit int) *MatchesHandler {
	if defaultLimit <= 0 {
		defaultLimit = 100
	}
	return &MatchesHandler{service: service, defaultLimit: defaultLimit}
}

func (h *MatchesHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "MATCHES_SERVICE_UNAVAILABLE", "matches service is unavailable")
		return
	}

	telegramID, ok := telegramIDParam(r, "telegram_id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "telegram_id must be a positive integer")
		return
	}

	limit := parseIntOrDefault(r.URL.Query().Get("limit"), h.defaultLimit)
	items, err := h.service.List(r.Context(), telegramID, limit)
	if err != nil {
		if errors.Is(err, matchessvc.ErrValidation) {
			writeBadRequest(w, "VALIDATION_ERROR", "invalid telegram_id")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to list matches")
		return
	}

	payload := dto.MatchesResponse{Matches: make([]dto.MatchResponse, 0, len(items))}
	for _, item := range items {
		payload.Matches = append(payload.Matches, dto.MatchResponse{
			ID:               item.ID,
			TargetTelegramID: item.TargetTelegramID,
			Username:         item.Username,
			FirstName:        item.FirstName,
			LastName:         item.LastName,
			CreatedAt:        item.CreatedAt,
		})
	}
	httperrors.Write(w, http.StatusOK, payload)
}

func (h *MatchesHandler) Unmatch(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "MATCHES_SERVICE_UNAVAILABLE", "matches service is unavailable")
		return
	}

	telegramID, ok := telegramIDParam(r, "telegram_id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "telegram_id must be a positive integer")
		return
	}
	targetID, ok := telegramIDParam(r, "target_id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "target_id must be a positive integer")
		return
	}

	removed, err := h.service.Unmatch(r.Context(), telegramID, targetID)
	if err != nil {
		if errors.Is(err, matchessvc.ErrValidation) {
			writeBadRequest(w, "VALIDATION_ERROR", "invalid unmatch request")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to unmatch")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.UnmatchResponse{OK: true, Removed: removed})
}
