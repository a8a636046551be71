package bot

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"knife-atelier/internal/cart"
	"knife-atelier/internal/configurator"
)

const buttonLabelMax = 40

type option struct {
	id    string
	label string
}

func optionButton(action string, o option, selected bool) tgbotapi.InlineKeyboardButton {
	label := truncate(orPlaceholder(o.label, o.id), buttonLabelMax)
	if selected {
		label = "✅ " + label
	}
	return tgbotapi.NewInlineKeyboardButtonData(label, callbackData(action, o.id))
}

func navRow(step configurator.Step, canAdvance bool) []tgbotapi.InlineKeyboardButton {
	back := "⬅️ Retour"
	if step == configurator.StepModel {
		back = "✖️ Quitter"
	}
	row := tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(back, callbackNav+":"+navPrev),
	)
	if canAdvance {
		next := "Suivant ➡️"
		if step == configurator.StepPersonalize {
			next = "Ajouter au panier 🛒"
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(next, callbackNav+":"+navNext))
	}
	return row
}

func (b *Bot) createOptionsKeyboard(action string, options []option, selectedID string, step configurator.Step, canAdvance bool) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(options)+1)
	for _, o := range options {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(optionButton(action, o, o.id == selectedID)))
	}
	rows = append(rows, navRow(step, canAdvance))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func (b *Bot) createNavKeyboard(step configurator.Step, canAdvance bool) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(navRow(step, canAdvance))
}

func (b *Bot) createConfirmKeyboard(actions []configurator.Action) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, a := range actions {
		if !strings.HasPrefix(a.TargetURL, "http://") && !strings.HasPrefix(a.TargetURL, "https://") {
			continue
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL(truncate(orPlaceholder(a.Label, a.ID), buttonLabelMax), a.TargetURL),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("✖️ Terminer", callbackNav+":"+navPrev),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func (b *Bot) createCartKeyboard(items []cart.Item) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(items))
	for i, item := range items {
		n := i + 1
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("%d ➖", n), cartCallback(cartDec, item.ID)),
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("%d ➕", n), cartCallback(cartInc, item.ID)),
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("%d 🗑", n), cartCallback(cartDel, item.ID)),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func cartCallback(op, id string) string {
	return callbackData(callbackCart+":"+op, id)
}
