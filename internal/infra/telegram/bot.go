package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type Bot struct {
	api *tgbotapi.BotAPI
}

type CommandUpdate struct {
	ChatID   int64
	UserID   int64
	Username string
	Command  string
	Args     string
}

type Handlers struct {
	OnCommand func(context.Context, CommandUpdate) error
}

// GiftPayload is one gift as returned by the Telegram gift source.
type GiftPayload struct {
	GiftID      string `json:"gift_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
}

func NewBot(token string) (*Bot, error) {
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("telegram bot token is empty")
	}

	api, err := tgbotapi.NewBotAPI(strings.TrimSpace(token))
	if err != nil {
		return nil, fmt.Errorf("create telegram bot api: %w", err)
	}

	return &Bot{api: api}, nil
}

func (b *Bot) Listen(ctx context.Context, handlers Handlers) error {
	if b == nil || b.api == nil {
		return fmt.Errorf("telegram bot is not initialized")
	}

	updateCfg := tgbotapi.NewUpdate(0)
	updateCfg.Timeout = 30
	updates := b.api.GetUpdatesChan(updateCfg)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update := <-updates:
			if update.Message == nil || update.Message.From == nil {
				continue
			}
			if !update.Message.IsCommand() || handlers.OnCommand == nil {
				continue
			}
			err := handlers.OnCommand(ctx, CommandUpdate{
				ChatID:   update.Message.Chat.ID,
				UserID:   update.Message.From.ID,
				Username: update.Message.From.UserName,
				Command:  update.Message.Command(),
				Args:     update.Message.CommandArguments(),
			})
			if err != nil {
				return err
			}
		}
	}
}

func (b *Bot) SendText(ctx context.Context, chatID int64, text string) error {
	if b == nil || b.api == nil {
		return fmt.Errorf("telegram bot is not initialized")
	}
	if chatID == 0 {
		return fmt.Errorf("chat id is required")
	}

	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}

	_ = ctx
	return nil
}

// SendWebAppButton sends text with a single inline button that opens the
// Mini App. The reply markup is built by hand: the bound client library
// predates web_app buttons, but the wire format accepts them.
func (b *Bot) SendWebAppButton(ctx context.Context, chatID int64, text, buttonText, webAppURL string) error {
	if b == nil || b.api == nil {
		return fmt.Errorf("telegram bot is not initialized")
	}
	if chatID == 0 {
		return fmt.Errorf("chat id is required")
	}
	if strings.TrimSpace(webAppURL) == "" {
		return b.SendText(ctx, chatID, text)
	}

	markup, err := json.Marshal(map[string]any{
		"inline_keyboard": [][]map[string]any{{
			{
				"text":    buttonText,
				"web_app": map[string]string{"url": webAppURL},
			},
		}},
	})
	if err != nil {
		return fmt.Errorf("marshal web app markup: %w", err)
	}

	params := tgbotapi.Params{
		"chat_id":      strconv.FormatInt(chatID, 10),
		"text":         text,
		"reply_markup": string(markup),
	}
	if _, err := b.api.MakeRequest("sendMessage", params); err != nil {
		return fmt.Errorf("send web app button: %w", err)
	}

	_ = ctx
	return nil
}

// FetchGifts pulls the user's current gift collection from Telegram.
func (b *Bot) FetchGifts(ctx context.Context, userID int64) ([]GiftPayload, error) {
	if b == nil || b.api == nil {
		return nil, fmt.Errorf("telegram bot is not initialized")
	}
	if userID <= 0 {
		return nil, fmt.Errorf("user id is required")
	}

	params := tgbotapi.Params{
		"user_id": strconv.FormatInt(userID, 10),
	}
	resp, err := b.api.MakeRequest("getUserGifts", params)
	if err != nil {
		return nil, fmt.Errorf("fetch user gifts: %w", err)
	}

	var payload struct {
		Gifts []GiftPayload `json:"gifts"`
	}
	if err := json.Unmarshal(resp.Result, &payload); err != nil {
		return nil, fmt.Errorf("decode user gifts: %w", err)
	}

	_ = ctx
	return payload.Gifts, nil
}
