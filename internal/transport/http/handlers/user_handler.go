package handlers

import (
	"errors"
	"net/http"

	"github.com/aeshtlv/GiftTinder/internal/domain/model"
	authsvc "github.com/aeshtlv/GiftTinder/internal/services/auth"
	userssvc "github.com/aeshtlv/GiftTinder/internal/services/users"
	"github.com/aeshtlv/GiftTinder/internal/transport/http/dto"
	httperrors "github.com/aeshtlv/GiftTinder/internal/transport/http/errors"
)

type UserHandler struct {
	service *userssvc.Service
}

func NewUserHandler(service *userssvc.Service) *UserHandler {
	return &UserHandler{service: service}
}

// Upsert registers the caller using the identity already verified by the
// auth middleware; the body carries nothing.
func (h *UserHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	claim, ok := authsvc.ClaimFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "USER_SERVICE_UNAVAILABLE", "user service is unavailable")
		return
	}

	user, err := h.service.Upsert(r.Context(), claim)
	if err != nil {
		if errors.Is(err, userssvc.ErrValidation) {
			writeBadRequest(w, "VALIDATION_ERROR", "invalid user identity")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to register user")
		return
	}

	httperrors.Write(w, http.StatusOK, toUserResponse(user))
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "USER_SERVICE_UNAVAILABLE", "user service is unavailable")
		return
	}

	telegramID, ok := telegramIDParam(r, "telegram_id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "telegram_id must be a positive integer")
		return
	}

	user, err := h.service.Get(r.Context(), telegramID)
	if err != nil {
		switch {
		case errors.Is(err, userssvc.ErrNotFound):
			writeNotFound(w, "USER_NOT_FOUND", "user not found")
		case errors.Is(err, userssvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid telegram_id")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to load user")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, toUserResponse(user))
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "USER_SERVICE_UNAVAILABLE", "user service is unavailable")
		return
	}

	limit := parseIntOrDefault(r.URL.Query().Get("limit"), 1000)
	users, err := h.service.ListActive(r.Context(), limit)
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to list users")
		return
	}

	payload := dto.UsersResponse{Users: make([]dto.UserResponse, 0, len(users))}
	for _, user := range users {
		payload.Users = append(payload.Users, toUserResponse(user))
	}
	httperrors.Write(w, http.StatusOK, payload)
}

func toUserResponse(user model.User) dto.UserResponse {
	return dto.UserResponse{
		TelegramID: user.TelegramID,
		Username:   user.Username,
		FirstName:  user.FirstName,
		LastName:   user.LastName,
		IsActive:   user.IsActive,
		CreatedAt:  user.CreatedAt,
	}
}
