package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

func (b *Bot) handleShowCart(ctx context.Context, chatID int64) {
	store := b.cart(ctx, chatID)
	store.Open(ctx)

	snap := store.Snapshot()
	if len(snap.Items) == 0 {
		b.sendMessage(tgbotapi.NewMessage(chatID, "🛒 Votre panier est vide."))
		return
	}

	msg := tgbotapi.NewMessage(chatID, "🛒 "+snap.Summary())
	msg.ReplyMarkup = b.createCartKeyboard(snap.Items)
	b.sendMessage(msg)
}

func (b *Bot) handleClearCart(ctx context.Context, chatID int64) {
	b.cart(ctx, chatID).Clear(ctx)
	b.sendMessage(tgbotapi.NewMessage(chatID, "🗑 Panier vidé."))
}

// handleCartCallback applies a cart line button: "inc:<id>", "dec:<id>" or "del:<id>".
func (b *Bot) handleCartCallback(ctx context.Context, callback *tgbotapi.CallbackQuery, arg string) {
	chatID := callback.Message.Chat.ID
	op, ref, _ := strings.Cut(arg, ":")
	store := b.cart(ctx, chatID)
	items := store.Items()

	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	id, _ := resolveCallbackID(ref, ids)

	quantity := 0
	for _, item := range items {
		if item.ID == id {
			quantity = item.Quantity
		}
	}
	if quantity == 0 {
		b.answerCallback(callback.ID, "Cet article n'est plus dans le panier.")
		return
	}

	switch op {
	case cartInc:
		store.UpdateQuantity(ctx, id, quantity+1)
	case cartDec:
		store.UpdateQuantity(ctx, id, quantity-1)
	case cartDel:
		store.RemoveItem(ctx, id)
	default:
		b.answerCallback(callback.ID, "")
		return
	}

	b.logger.Debug("Cart line updated",
		zap.Int64("chat_id", chatID),
		zap.String("op", op),
		zap.String("item_id", id))
	b.answerCallback(callback.ID, "")
	b.handleShowCart(ctx, chatID)
}
