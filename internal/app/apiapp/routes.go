package apiapp

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/aeshtlv/GiftTinder/internal/config"
	authsvc "github.com/aeshtlv/GiftTinder/internal/services/auth"
	feedsvc "github.com/aeshtlv/GiftTinder/internal/services/feed"
	giftssvc "github.com/aeshtlv/GiftTinder/internal/services/gifts"
	matchessvc "github.com/aeshtlv/GiftTinder/internal/services/matches"
	swipesvc "github.com/aeshtlv/GiftTinder/internal/services/swipes"
	userssvc "github.com/aeshtlv/GiftTinder/internal/services/users"
	"github.com/aeshtlv/GiftTinder/internal/transport/http/handlers"
)

type Dependencies struct {
	Verifier       *authsvc.Verifier
	UsersService   *userssvc.Service
	GiftsService   *giftssvc.Service
	FeedService    *feedsvc.Service
	MatchesService *matchessvc.Service
	SwipeService   *swipesvc.Service
	Logger         *zap.Logger
	Config         config.Config
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler()
	userHandler := handlers.NewUserHandler(deps.UsersService)
	giftHandler := handlers.NewGiftHandler(deps.GiftsService)
	feedHandler := handlers.NewFeedHandler(deps.FeedService)
	swipeHandler := handlers.NewSwipeHandler(deps.SwipeService)
	matchesHandler := handlers.NewMatchesHandler(deps.MatchesService, deps.Config.Limits.MatchesPageLimit)

	r.Get("/healthz", healthHandler.Handle)

	r.Route("/api", func(r chi.Router) {
		r.Get("/user/{telegram_id}", userHandler.Get)
		r.Get("/users", userHandler.List)
		r.Get("/gifts/{telegram_id}", giftHandler.ListByOwner)
		r.Post("/sync_gifts/{telegram_id}", giftHandler.Sync)
		r.Get("/next_gift/{telegram_id}", feedHandler.NextGift)
		r.Get("/matches/{telegram_id}", matchesHandler.List)
		r.Delete("/matches/{telegram_id}/{target_id}", matchesHandler.Unmatch)

		r.Group(func(r chi.Router) {
			r.Use(TelegramAuth(deps.Verifier, deps.Logger))
			r.Post("/user", userHandler.Upsert)
			r.Post("/swipe", swipeHandler.Handle)
		})
	})
}
