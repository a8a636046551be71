package bot

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"knife-atelier/internal/cart"
	"knife-atelier/internal/configurator"
)

// notifyConfiguredKnife tells the workshop admins about a freshly configured knife.
func (b *Bot) notifyConfiguredKnife(chatID int64, w *configurator.Wizard) {
	if len(b.adminIDs) == 0 {
		b.logger.Debug("Admin notifications disabled - no admin IDs configured")
		return
	}

	item, ok := w.Committed()
	if !ok {
		return
	}

	var text strings.Builder
	fmt.Fprintf(&text, "🔪 Nouveau couteau configuré\nChat : %d\nEmail : %s\n\n", chatID, w.State().Selection.Email)
	fmt.Fprintf(&text, "%s\nPrix : %s\n", item.Name, formatPrice(cart.NormalizePrice(item.Price)))
	for _, c := range item.Customizations {
		fmt.Fprintf(&text, "- %s : %s\n", c.Label, c.Value)
	}

	for _, adminID := range b.adminIDs {
		if _, err := b.bot.Send(tgbotapi.NewMessage(adminID, text.String())); err != nil {
			b.logger.Error("Failed to send admin notification",
				zap.Int64("admin_id", adminID),
				zap.String("item_id", item.ID),
				zap.Error(err))
		}
	}
}
