package apiapp

import (
	"errors"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	authsvc "github.com/aeshtlv/GiftTinder/internal/services/auth"
	httperrors "github.com/aeshtlv/GiftTinder/internal/transport/http/errors"
)

func ApplyMiddlewares(r chiRouter, log *zap.Logger) {
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))
	r.Use(requestLogger(log))
}

// TelegramAuth verifies the X-Telegram-Init-Data header and puts the claim
// into the request context. Signature problems are 401; a valid signature
// over a broken user payload is 400, the client sent garbage it signed.
func TelegramAuth(verifier *authsvc.Verifier, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if verifier == nil {
				httperrors.Write(w, http.StatusInternalServerError, httperrors.APIError{
					Code:    "AUTH_SERVICE_UNAVAILABLE",
					Message: "auth service is unavailable",
				})
				return
			}

			claim, err := verifier.Verify(r.Header.Get("X-Telegram-Init-Data"))
			if err != nil {
				if log != nil {
					log.Debug("init data verification failed", zap.Error(err))
				}
				switch {
				case errors.Is(err, authsvc.ErrMalformedUser), errors.Is(err, authsvc.ErrMissingUserID):
					httperrors.Write(w, http.StatusBadRequest, httperrors.APIError{
						Code:    "INVALID_USER_PAYLOAD",
						Message: "init data user payload is invalid",
					})
				default:
					httperrors.Write(w, http.StatusUnauthorized, httperrors.APIError{
						Code:    "UNAUTHORIZED",
						Message: "init data verification failed",
					})
				}
				return
			}

			next.ServeHTTP(w, r.WithContext(authsvc.WithClaim(r.Context(), claim)))
		})
	}
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			if log != nil {
				log.Info("http_request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Duration("duration", time.Since(start)),
				)
			}
		})
	}
}

type chiRouter interface {
	Use(middlewares ...func(http.Handler) http.Handler)
}
