package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/aeshtlv/GiftTinder/internal/config"
	pgrepo "github.com/aeshtlv/GiftTinder/internal/repo/postgres"
	redrepo "github.com/aeshtlv/GiftTinder/internal/repo/redis"
	authsvc "github.com/aeshtlv/GiftTinder/internal/services/auth"
	feedsvc "github.com/aeshtlv/GiftTinder/internal/services/feed"
	giftssvc "github.com/aeshtlv/GiftTinder/internal/services/gifts"
	matchessvc "github.com/aeshtlv/GiftTinder/internal/services/matches"
	ratesvc "github.com/aeshtlv/GiftTinder/internal/services/rate"
	swipesvc "github.com/aeshtlv/GiftTinder/internal/services/swipes"
	userssvc "github.com/aeshtlv/GiftTinder/internal/services/users"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	httpRouter http.Handler
}

// New wires the whole API: storage, services, routes. Postgres and redis
// failures put the app in degraded mode instead of failing startup, so the
// health endpoint stays reachable while the infrastructure comes up.
func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)

	var pool *pgxpool.Pool
	if p, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN); err != nil {
		log.Warn("postgres init failed, continuing in degraded mode", zap.Error(err))
	} else if err := pgrepo.EnsureSchema(ctx, p); err != nil {
		p.Close()
		log.Warn("schema init failed, continuing in degraded mode", zap.Error(err))
	} else {
		pool = p
	}

	var redisClient *goredis.Client
	if c, err := redrepo.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB); err != nil {
		log.Warn("redis init failed, swipe limits disabled", zap.Error(err))
	} else {
		redisClient = c
	}

	userRepo := pgrepo.NewUserRepo(pool)
	giftRepo := pgrepo.NewGiftRepo(pool)
	swipeRepo := pgrepo.NewSwipeRepo(pool)
	matchRepo := pgrepo.NewMatchRepo(pool)
	feedRepo := pgrepo.NewFeedRepo(pool)

	var rateLimiter swipesvc.RateLimiter
	if redisClient != nil {
		rateLimiter = ratesvc.NewLimiter(redrepo.NewRateRepo(redisClient), ratesvc.Config{
			MaxSwipesPerDay: cfg.Limits.MaxSwipesPerDay,
			SwipesPer10Sec:  cfg.Limits.SwipesPer10Sec,
		})
	}

	verifier := authsvc.NewVerifier(cfg.Auth.BotToken, cfg.Auth.DevMode)
	usersService := userssvc.NewService(userssvc.Dependencies{UserStore: userRepo})
	giftsService := giftssvc.NewService(giftssvc.Dependencies{
		Pool:      pool,
		GiftStore: giftRepo,
		Config:    giftssvc.Config{MaxGiftsPerUser: cfg.Limits.MaxGiftsPerUser},
	})
	feedService := feedsvc.NewService(feedsvc.Dependencies{FeedStore: feedRepo})
	matchesService := matchessvc.NewService(matchessvc.Dependencies{
		Pool:       pool,
		MatchStore: matchRepo,
	})
	swipeService := swipesvc.NewService(swipesvc.Dependencies{
		Pool:        pool,
		GiftStore:   giftRepo,
		UserStore:   userRepo,
		SwipeStore:  swipeRepo,
		MatchStore:  matchRepo,
		RateLimiter: rateLimiter,
	})

	RegisterRoutes(r, Dependencies{
		Verifier:       verifier,
		UsersService:   usersService,
		GiftsService:   giftsService,
		FeedService:    feedService,
		MatchesService: matchesService,
		SwipeService:   swipeService,
		Logger:         log,
		Config:         cfg,
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		redis:      redisClient,
		httpRouter: r,
	}, nil
}

func (a *App) Run() error {
	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}
