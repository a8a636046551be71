package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"knife-atelier/internal/cart"
	"knife-atelier/internal/configurator"
)

var fieldPrompts = map[configurator.Field]string{
	configurator.FieldBladeEngraving:  "Texte à graver sur la lame (ou - pour aucun) :",
	configurator.FieldHandleEngraving: "Texte à graver sur le manche (ou - pour aucun) :",
	configurator.FieldOtherDetails:    "Autres détails pour l'artisan (ou - pour aucun) :",
	configurator.FieldEmail:           "Votre adresse email (obligatoire) :",
}

var fieldLabels = map[configurator.Field]string{
	configurator.FieldBladeEngraving:  "Gravure lame",
	configurator.FieldHandleEngraving: "Gravure manche",
	configurator.FieldOtherDetails:    "Autres détails",
	configurator.FieldEmail:           "Email",
}

func stepHeader(step configurator.Step) string {
	return fmt.Sprintf("Étape %d/5", int(step))
}

// listStatus explains an option list that shows nothing, or the active filter.
func listStatus(state configurator.ListState, load configurator.LoadState, filter string) string {
	switch {
	case load.Status == configurator.LoadFailed:
		return "⚠️ Impossible de charger les options de cette étape pour le moment."
	case load.Status == configurator.LoadLoading:
		return "⏳ Chargement des options..."
	case state == configurator.ListEmptySource:
		return "Aucune option n'est disponible pour cette étape."
	case state == configurator.ListNoMatch:
		return fmt.Sprintf("Aucune option ne correspond à « %s ». Envoyez - pour effacer le filtre.", filter)
	case filter != "":
		return fmt.Sprintf("Filtre : « %s ». Envoyez - pour l'effacer.", filter)
	default:
		return "Envoyez un texte pour filtrer la liste."
	}
}

func (b *Bot) renderStep(chatID int64, state *chatState) {
	w := state.wizard
	st := w.State()
	step := st.Step
	filter := st.Filters[step]

	var (
		text    strings.Builder
		markup  tgbotapi.InlineKeyboardMarkup
		options []option
	)

	switch step {
	case configurator.StepModel:
		list := w.Models()
		fmt.Fprintf(&text, "%s : choisissez votre modèle.\n\n", stepHeader(step))
		for _, m := range list.Items {
			options = append(options, option{id: m.ID, label: m.Name})
			if m.Description != "" {
				fmt.Fprintf(&text, "• %s : %s\n", orPlaceholder(m.Name, m.ID), m.Description)
			}
		}
		text.WriteString("\n" + listStatus(list.State, st.Loads[step], filter))
		markup = b.createOptionsKeyboard(callbackModel, options, st.Selection.ModelID, step, st.CanAdvance)

	case configurator.StepWood:
		list := w.Woods()
		fmt.Fprintf(&text, "%s : choisissez le bois du manche.\n\n", stepHeader(step))
		for _, wd := range list.Items {
			options = append(options, option{id: wd.ID, label: wd.Name})
		}
		text.WriteString(listStatus(list.State, st.Loads[step], filter))
		markup = b.createOptionsKeyboard(callbackWood, options, st.Selection.WoodID, step, st.CanAdvance)

	case configurator.StepEngraving:
		list := w.Engravings()
		fmt.Fprintf(&text, "%s : choisissez le guillochage.\n\n", stepHeader(step))
		for _, e := range list.Items {
			options = append(options, option{id: e.ID, label: e.Name})
			if e.PatternText != "" {
				fmt.Fprintf(&text, "• %s : %s\n", orPlaceholder(e.Name, e.ID), e.PatternText)
			}
		}
		text.WriteString("\n" + listStatus(list.State, st.Loads[step], filter))
		markup = b.createOptionsKeyboard(callbackEngraving, options, st.Selection.EngravingID, step, st.CanAdvance)

	case configurator.StepPersonalize:
		b.promptField(chatID, state)
		return

	case configurator.StepConfirm:
		b.renderConfirmation(chatID, state)
		return
	}

	msg := tgbotapi.NewMessage(chatID, strings.TrimSpace(text.String()))
	msg.ReplyMarkup = markup
	b.sendMessage(msg)
}

// promptField asks for the next personalization field, or shows the entered
// values once all of them were answered.
func (b *Bot) promptField(chatID int64, state *chatState) {
	w := state.wizard
	fields := configurator.PersonalizeFields

	if state.field < len(fields) {
		field := fields[state.field]
		prompt := fieldPrompts[field]
		for _, f := range w.FormFields() {
			if f.ID == string(field) && f.Label != "" {
				prompt = f.Label + " :"
				if f.Placeholder != "" {
					prompt += "\n(" + f.Placeholder + ")"
				}
			}
		}

		msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("%s : personnalisation.\n\n%s", stepHeader(configurator.StepPersonalize), prompt))
		msg.ReplyMarkup = b.createNavKeyboard(configurator.StepPersonalize, w.CanAdvance())
		b.sendMessage(msg)
		return
	}

	st := w.State()
	prices := configurator.CalculatePrice(st.Selection, b.pricing)

	var text strings.Builder
	fmt.Fprintf(&text, "%s : récapitulatif de la personnalisation.\n\n", stepHeader(configurator.StepPersonalize))
	for _, field := range fields {
		fmt.Fprintf(&text, "%s : %s\n", fieldLabels[field], orPlaceholder(st.Selection.Value(field), "Aucun"))
	}
	fmt.Fprintf(&text, "\nPrix : %s\n\nEnvoyez un texte pour tout recommencer.", formatPrice(prices["final_price"]))

	msg := tgbotapi.NewMessage(chatID, text.String())
	msg.ReplyMarkup = b.createNavKeyboard(configurator.StepPersonalize, st.CanAdvance)
	b.sendMessage(msg)
}

func (b *Bot) renderConfirmation(chatID int64, state *chatState) {
	w := state.wizard
	item, ok := w.Committed()
	if !ok {
		return
	}

	var text strings.Builder
	text.WriteString("✅ Votre couteau a été ajouté au panier !\n\n")
	fmt.Fprintf(&text, "%s\nPrix : %s\n", item.Name, formatPrice(cart.NormalizePrice(item.Price)))
	for _, c := range item.Customizations {
		fmt.Fprintf(&text, "- %s : %s\n", c.Label, c.Value)
	}
	if summary := w.State().Summary; summary != "" {
		text.WriteString("\n" + summary + "\n")
	}
	text.WriteString("\nUtilisez /cart pour voir votre panier.")

	msg := tgbotapi.NewMessage(chatID, text.String())
	msg.ReplyMarkup = b.createConfirmKeyboard(w.Actions())
	b.sendMessage(msg)
}

func (b *Bot) handleWizardText(ctx context.Context, chatID int64, state *chatState, text string) {
	w := state.wizard
	value := strings.TrimSpace(text)
	if value == emptyInput {
		value = ""
	}

	switch step := w.Step(); step {
	case configurator.StepModel, configurator.StepWood, configurator.StepEngraving:
		w.SetFilter(step, value)
		b.renderStep(chatID, state)

	case configurator.StepPersonalize:
		fields := configurator.PersonalizeFields
		if state.field >= len(fields) {
			state.field = 0
		}
		field := fields[state.field]
		if field == configurator.FieldEmail && value == "" {
			b.sendError(chatID, "L'adresse email est obligatoire.")
			b.promptField(chatID, state)
			return
		}
		w.SetField(field, value)
		state.field++
		b.promptField(chatID, state)

	default:
		b.sendMessage(tgbotapi.NewMessage(chatID,
			"Votre couteau est dans le panier. Utilisez /cart pour le voir ou /configure pour en créer un autre."))
	}
}

func (b *Bot) handleWizardCallback(ctx context.Context, callback *tgbotapi.CallbackQuery, action, arg string) {
	chatID := callback.Message.Chat.ID
	state, ok := b.chats.get(chatID)
	if !ok {
		b.answerCallback(callback.ID, "Session expirée, utilisez /configure pour recommencer.")
		return
	}
	w := state.wizard

	if action == callbackNav {
		b.handleNavigation(ctx, callback, state, arg)
		return
	}

	var selected bool
	switch id, ok := resolveCallbackID(arg, optionIDs(w, action)); {
	case !ok:
	case action == callbackModel:
		selected = w.SelectModel(id)
	case action == callbackWood:
		selected = w.SelectWood(id)
	case action == callbackEngraving:
		selected = w.SelectEngraving(id)
	}

	if !selected {
		b.answerCallback(callback.ID, "Cette option n'est plus disponible.")
		return
	}
	b.answerCallback(callback.ID, "")
	b.renderStep(chatID, state)
}

func (b *Bot) handleNavigation(ctx context.Context, callback *tgbotapi.CallbackQuery, state *chatState, direction string) {
	chatID := callback.Message.Chat.ID
	w := state.wizard

	switch direction {
	case navNext:
		from := w.Step()
		if w.Next(ctx) == configurator.Stayed {
			b.answerCallback(callback.ID, "Complétez d'abord cette étape.")
			return
		}
		b.answerCallback(callback.ID, "")
		if from == configurator.StepPersonalize {
			b.notifyConfiguredKnife(chatID, w)
		}

	case navPrev:
		if w.Previous() == configurator.Exited {
			b.answerCallback(callback.ID, "")
			b.chats.end(chatID)
			b.sendMessage(tgbotapi.NewMessage(chatID, "Configurateur fermé. /configure pour recommencer."))
			return
		}
		b.answerCallback(callback.ID, "")

	default:
		b.answerCallback(callback.ID, "")
		return
	}

	if w.Step() == configurator.StepPersonalize {
		state.field = 0
	}
	b.logger.Debug("Configurator step changed",
		zap.Int64("chat_id", chatID),
		zap.Stringer("step", w.Step()))
	b.renderStep(chatID, state)
}

// optionIDs lists the ids currently shown for a selection callback.
func optionIDs(w *configurator.Wizard, action string) []string {
	var ids []string
	switch action {
	case callbackModel:
		for _, m := range w.Models().Items {
			ids = append(ids, m.ID)
		}
	case callbackWood:
		for _, wd := range w.Woods().Items {
			ids = append(ids, wd.ID)
		}
	case callbackEngraving:
		for _, e := range w.Engravings().Items {
			ids = append(ids, e.ID)
		}
	}
	return ids
}
