// Package bot drives the knife configurator and the cart from Telegram.
package bot

import (
	"context"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"knife-atelier/internal/cart"
	"knife-atelier/internal/configurator"
)

// Sender is the part of *tgbotapi.BotAPI the bot uses.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
}

type Bot struct {
	bot      Sender
	logger   *zap.Logger
	carts    *cart.Sessions
	options  configurator.OptionSource
	pricing  configurator.PricingConfig
	adminIDs []int64
	chats    *chatStates
	mu       sync.Mutex
	pending  sync.WaitGroup
}

func New(
	api Sender,
	carts *cart.Sessions,
	options configurator.OptionSource,
	pricing configurator.PricingConfig,
	adminIDs []int64,
	logger *zap.Logger,
) *Bot {
	return &Bot{
		bot:      api,
		logger:   logger,
		carts:    carts,
		options:  options,
		pricing:  pricing,
		adminIDs: adminIDs,
		chats:    newChatStates(),
	}
}

// NewBotAPI authorizes token against Telegram.
func NewBotAPI(token string, logger *zap.Logger) (*tgbotapi.BotAPI, error) {
	botAPI, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	logger.Info("Bot authorized",
		zap.String("username", botAPI.Self.UserName),
		zap.Int64("id", botAPI.Self.ID))
	return botAPI, nil
}

func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("Starting bot")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("Shutting down bot")
			b.chats.closeAll()
			b.pending.Wait()
			return nil

		case update, ok := <-updates:
			if !ok {
				b.pending.Wait()
				return nil
			}
			b.mu.Lock()
			if update.Message != nil {
				b.processMessage(ctx, update.Message)
			} else if update.CallbackQuery != nil {
				b.processCallback(ctx, update.CallbackQuery)
			}
			b.mu.Unlock()
		}
	}
}

func (b *Bot) processMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.Chat == nil {
		return
	}
	chatID := msg.Chat.ID

	b.logger.Debug("Processing message",
		zap.Int64("chat_id", chatID),
		zap.String("text", msg.Text))

	if msg.IsCommand() {
		b.handleCommand(ctx, chatID, msg.Command())
		return
	}

	if state, ok := b.chats.get(chatID); ok {
		b.handleWizardText(ctx, chatID, state, msg.Text)
		return
	}
	b.handleDefault(chatID)
}

func (b *Bot) processCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	if callback.Message == nil || callback.Message.Chat == nil {
		return
	}
	chatID := callback.Message.Chat.ID
	data := callback.Data

	b.logger.Debug("Processing callback",
		zap.Int64("chat_id", chatID),
		zap.String("data", data))

	action, arg := splitCallback(data)
	switch action {
	case callbackModel, callbackWood, callbackEngraving, callbackNav:
		b.handleWizardCallback(ctx, callback, action, arg)
	case callbackCart:
		b.handleCartCallback(ctx, callback, arg)
	default:
		b.answerCallback(callback.ID, "")
	}
}

func (b *Bot) sendMessage(msg tgbotapi.MessageConfig) {
	if _, err := b.bot.Send(msg); err != nil {
		b.logger.Error("Failed to send message",
			zap.Int64("chat_id", msg.ChatID),
			zap.String("text", msg.Text),
			zap.Error(err))
	}
}

func (b *Bot) sendError(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, "❌ "+text)
	b.sendMessage(msg)
}

func (b *Bot) answerCallback(id, text string) {
	if _, err := b.bot.Request(tgbotapi.NewCallback(id, text)); err != nil {
		b.logger.Warn("Failed to answer callback",
			zap.String("callback_id", id),
			zap.Error(err))
	}
}

func (b *Bot) cart(ctx context.Context, chatID int64) *cart.Store {
	return b.carts.Get(ctx, sessionID(chatID))
}
