package botapp

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/aeshtlv/GiftTinder/internal/config"
	tginfra "github.com/aeshtlv/GiftTinder/internal/infra/telegram"
	"github.com/aeshtlv/GiftTinder/internal/jobs/giftsync"
	pgrepo "github.com/aeshtlv/GiftTinder/internal/repo/postgres"
	giftssvc "github.com/aeshtlv/GiftTinder/internal/services/gifts"
	userssvc "github.com/aeshtlv/GiftTinder/internal/services/users"
)

type App struct {
	cfg          config.Config
	logger       *zap.Logger
	postgres     *pgxpool.Pool
	bot          *tginfra.Bot
	usersService *userssvc.Service
	matchesRepo  *pgrepo.MatchRepo
	giftsService *giftssvc.Service
	syncJob      *giftsync.Job
}

func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	pool, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN)
	if err != nil {
		return nil, fmt.Errorf("init postgres for bot app: %w", err)
	}
	if err := pgrepo.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	userRepo := pgrepo.NewUserRepo(pool)
	giftRepo := pgrepo.NewGiftRepo(pool)
	matchRepo := pgrepo.NewMatchRepo(pool)

	usersService := userssvc.NewService(userssvc.Dependencies{UserStore: userRepo})
	giftsService := giftssvc.NewService(giftssvc.Dependencies{
		Pool:      pool,
		GiftStore: giftRepo,
		Config:    giftssvc.Config{MaxGiftsPerUser: cfg.Limits.MaxGiftsPerUser},
	})

	var bot *tginfra.Bot
	if strings.TrimSpace(cfg.Bot.Token) != "" {
		bot, err = tginfra.NewBot(cfg.Bot.Token)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("init telegram bot: %w", err)
		}
	} else {
		logger.Warn("BOT_TOKEN is empty, command listener and gift sync disabled")
	}

	var syncJob *giftsync.Job
	if bot != nil {
		syncJob = giftsync.New(bot, giftsService, usersService, giftsync.Config{
			Interval:   cfg.Bot.SyncInterval,
			Jitter:     cfg.Bot.SyncJitter,
			RetryDelay: cfg.Bot.RetryDelay,
			UserDelay:  cfg.Bot.UserDelay,
		}, logger)
	}

	return &App{
		cfg:          cfg,
		logger:       logger,
		postgres:     pool,
		bot:          bot,
		usersService: usersService,
		matchesRepo:  matchRepo,
		giftsService: giftsService,
		syncJob:      syncJob,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	a.logger.Info("bot app started")

	errCh := make(chan error, 2)
	go func() {
		if a.syncJob == nil {
			errCh <- nil
			return
		}
		errCh <- a.syncJob.Run(ctx)
	}()
	go func() {
		if a.bot == nil {
			errCh <- nil
			return
		}
		errCh <- a.bot.Listen(ctx, tginfra.Handlers{OnCommand: a.handleCommand})
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

func (a *App) handleCommand(ctx context.Context, update tginfra.CommandUpdate) error {
	switch update.Command {
	case "start":
		return a.bot.SendWebAppButton(ctx, update.ChatID,
			"Welcome! Show off your gifts and find people who like them.",
			"Open the app", a.cfg.Bot.WebAppURL)
	case "help":
		return a.bot.SendText(ctx, update.ChatID,
			"/start — open the app\n/profile — your profile\n/matches — your matches\n/help — this message")
	case "profile":
		return a.sendProfile(ctx, update)
	case "matches":
		return a.sendMatches(ctx, update)
	default:
		return a.bot.SendText(ctx, update.ChatID, "Unknown command, try /help.")
	}
}

func (a *App) sendProfile(ctx context.Context, update tginfra.CommandUpdate) error {
	user, err := a.usersService.Get(ctx, update.UserID)
	if err != nil {
		a.logger.Debug("profile lookup failed", zap.Int64("telegram_id", update.UserID), zap.Error(err))
		return a.bot.SendWebAppButton(ctx, update.ChatID,
			"You are not registered yet. Open the app to get started.",
			"Open the app", a.cfg.Bot.WebAppURL)
	}

	gifts, err := a.giftsService.ListVisibleForOwner(ctx, user.TelegramID)
	if err != nil {
		return err
	}

	text := fmt.Sprintf("Your profile: @%s\nGifts on display: %d", user.Username, len(gifts))
	return a.bot.SendWebAppButton(ctx, update.ChatID, text, "Manage profile", a.cfg.Bot.WebAppURL)
}

func (a *App) sendMatches(ctx context.Context, update tginfra.CommandUpdate) error {
	rows, err := a.matchesRepo.ListActiveForUser(ctx, update.UserID, a.cfg.Limits.MatchesPageLimit)
	if err != nil {
		return err
	}

	if len(rows) == 0 {
		return a.bot.SendWebAppButton(ctx, update.ChatID,
			"No matches yet. Keep swiping!",
			"Open the app", a.cfg.Bot.WebAppURL)
	}

	var sb strings.Builder
	sb.WriteString("Your matches:\n")
	for _, row := range rows {
		name := strings.TrimSpace(row.FirstName + " " + row.LastName)
		if row.Username != "" {
			name = "@" + row.Username
		}
		sb.WriteString("• " + name + "\n")
	}
	return a.bot.SendWebAppButton(ctx, update.ChatID, sb.String(), "Open the app", a.cfg.Bot.WebAppURL)
}

func (a *App) Close() {
	if a.postgres != nil {
		a.postgres.Close()
	}
}
