package bot

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"knife-atelier/internal/configurator"
	"knife-atelier/internal/report"
)

func (b *Bot) handleCommand(ctx context.Context, chatID int64, command string) {
	switch command {
	case "start":
		b.handleStart(chatID)
	case "configure":
		b.handleConfigure(ctx, chatID)
	case "cart":
		b.handleShowCart(ctx, chatID)
	case "clear":
		b.handleClearCart(ctx, chatID)
	case "export":
		b.handleExportCart(ctx, chatID)
	case "help":
		b.handleHelp(chatID)
	default:
		b.handleUnknownCommand(chatID)
	}
}

func (b *Bot) handleDefault(chatID int64) {
	b.sendError(chatID, "Je n'ai pas compris. Utilisez /configure ou /help.")
}

func (b *Bot) handleUnknownCommand(chatID int64) {
	b.sendError(chatID, "Commande inconnue. Utilisez /help pour la liste des commandes.")
}

func (b *Bot) handleHelp(chatID int64) {
	b.sendMessage(tgbotapi.NewMessage(chatID, helpText))
}

func (b *Bot) handleStart(chatID int64) {
	b.sendMessage(tgbotapi.NewMessage(chatID, startText))
}

// handleConfigure starts a fresh configurator run and loads its options in
// the background. The first step is shown once the options are in.
func (b *Bot) handleConfigure(ctx context.Context, chatID int64) {
	w := configurator.New(sessionCart{carts: b.carts, session: sessionID(chatID)}, b.pricing, b.logger.With(zap.Int64("chat_id", chatID)))
	state := b.chats.start(chatID, w)

	b.sendMessage(tgbotapi.NewMessage(chatID, "⏳ Chargement du configurateur..."))

	b.pending.Add(1)
	go func() {
		defer b.pending.Done()
		if err := w.Refresh(ctx, b.options); err != nil {
			b.logger.Warn("Configurator options partially loaded",
				zap.Int64("chat_id", chatID),
				zap.Error(err))
		}

		b.mu.Lock()
		defer b.mu.Unlock()
		if w.Closed() {
			return
		}
		b.renderStep(chatID, state)
	}()
}

func (b *Bot) handleExportCart(ctx context.Context, chatID int64) {
	store := b.cart(ctx, chatID)
	snap := store.Snapshot()
	if len(snap.Items) == 0 {
		b.sendMessage(tgbotapi.NewMessage(chatID, "🛒 Votre panier est vide."))
		return
	}

	now := time.Now()
	buf, err := report.CartWorkbook(snap, now)
	if err != nil {
		b.logger.Error("Failed to export cart",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.sendError(chatID, "Impossible de générer le fichier")
		return
	}

	msg := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  report.FileName(now),
		Bytes: buf.Bytes(),
	})
	msg.Caption = "📊 Votre panier"

	if _, err := b.bot.Send(msg); err != nil {
		b.logger.Error("Failed to send Excel file", zap.Error(err))
		b.sendError(chatID, "Impossible d'envoyer le fichier")
	}
}
