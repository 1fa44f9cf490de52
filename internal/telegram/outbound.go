package telegram

import (
	"context"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/lojabot/internal/purchase"
	"github.com/m3rciful/lojabot/internal/telegram/keyboard"
)

// Outbound adapts a telebot bot to the purchase flow's Messenger interface.
// All texts in the flow carry Markdown formatting.
type Outbound struct {
	bot *tele.Bot
}

// NewOutbound wraps the bot for outbound purchase-flow messages.
func NewOutbound(bot *tele.Bot) *Outbound {
	return &Outbound{bot: bot}
}

// SendText delivers a Markdown text, optionally with inline button rows.
func (o *Outbound) SendText(_ context.Context, userID int64, text string, rows ...[]purchase.Button) error {
	opts := []any{tele.ModeMarkdown}
	if len(rows) > 0 {
		kb := make([][]keyboard.InlineBtn, len(rows))
		for i, row := range rows {
			btns := make([]keyboard.InlineBtn, len(row))
			for j, b := range row {
				btns[j] = keyboard.InlineBtn{Text: b.Text, Data: b.Data}
			}
			kb[i] = btns
		}
		opts = append(opts, keyboard.Inline(kb...))
	}
	_, err := o.bot.Send(&tele.User{ID: userID}, text, opts...)
	return err
}

// SendPhoto delivers a photo by Telegram file id with a Markdown caption.
func (o *Outbound) SendPhoto(_ context.Context, userID int64, fileRef, caption string) error {
	photo := &tele.Photo{File: tele.File{FileID: fileRef}, Caption: caption}
	_, err := o.bot.Send(&tele.User{ID: userID}, photo, tele.ModeMarkdown)
	return err
}

// SendDocument delivers a document by Telegram file id with a Markdown caption.
func (o *Outbound) SendDocument(_ context.Context, userID int64, fileRef, caption string) error {
	doc := &tele.Document{File: tele.File{FileID: fileRef}, Caption: caption}
	_, err := o.bot.Send(&tele.User{ID: userID}, doc, tele.ModeMarkdown)
	return err
}

var _ purchase.Messenger = (*Outbound)(nil)
