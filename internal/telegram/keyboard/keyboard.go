// Package keyboard builds inline keyboards whose buttons carry plain callback
// data, matching the underscore-delimited payloads the bot routes on.
package keyboard

import tele "gopkg.in/telebot.v4"

// InlineBtn is one inline button with raw callback data or an URL.
type InlineBtn struct {
	Text string
	Data string
	URL  string
}

// Inline builds an inline keyboard from rows of buttons.
func Inline(rows ...[]InlineBtn) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	inline := make([][]tele.InlineButton, len(rows))
	for i, row := range rows {
		r := make([]tele.InlineButton, len(row))
		for j, btn := range row {
			r[j] = tele.InlineButton{Text: btn.Text, Data: btn.Data, URL: btn.URL}
		}
		inline[i] = r
	}
	markup.InlineKeyboard = inline
	return markup
}

// InlineRow builds a single-row inline keyboard.
func InlineRow(buttons ...InlineBtn) *tele.ReplyMarkup {
	return Inline(buttons)
}
