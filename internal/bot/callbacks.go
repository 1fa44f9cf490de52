package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/lojabot/internal/catalog"
	"github.com/m3rciful/lojabot/internal/purchase"
)

// onBuy starts a purchase: the tapped product card is edited into the PIX
// payment instructions and the buyer enters the awaiting-proof state.
func (b *Bot) onBuy(c tele.Context, productID string) error {
	_ = c.Respond()

	sender := c.Sender()
	handle := sender.Username
	if handle == "" {
		handle = "Sem username"
	}

	text, err := b.flow.Begin(context.Background(), sender.ID, handle, productID)
	if errors.Is(err, catalog.ErrNotFound) {
		return c.Respond(&tele.CallbackResponse{Text: alertNotFound, ShowAlert: true})
	}
	if err != nil {
		return err
	}

	if msg := c.Message(); msg != nil && msg.Photo != nil {
		return c.EditCaption(text, tele.ModeMarkdown)
	}
	return c.Edit(text, tele.ModeMarkdown)
}

func (b *Bot) onPreview(c tele.Context, productID string) error {
	products, err := b.store.LoadNormalized(context.Background())
	if err != nil {
		return err
	}
	p, ok := products[productID]
	if !ok || p.Preview == "" {
		return c.Respond(&tele.CallbackResponse{Text: alertNoPreview, ShowAlert: true})
	}

	_ = c.Respond()
	return c.Send(previewMessage(p.Preview), tele.ModeMarkdown)
}

// onApprove handles liberar_<buyer>_<product> pressed by the reviewer.
func (b *Bot) onApprove(c tele.Context, payload string) error {
	if !b.gate.IsAuthority(c.Sender().ID) {
		return c.Respond(&tele.CallbackResponse{Text: msgNoPermission, ShowAlert: true})
	}

	parts := strings.SplitN(payload, "_", 2)
	if len(parts) != 2 {
		return fmt.Errorf("bot: malformed approval payload %q", payload)
	}
	buyerID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return fmt.Errorf("bot: malformed buyer id in %q: %w", payload, err)
	}
	productID := parts[1]

	_ = c.Respond()

	report, err := b.flow.Approve(context.Background(), buyerID, productID)
	switch {
	case errors.Is(err, purchase.ErrAlreadyDecided):
		return c.Respond(&tele.CallbackResponse{Text: alertAlreadyDecided, ShowAlert: true})
	case errors.Is(err, purchase.ErrMissingLink):
		return c.Edit(reportMissingLink, tele.ModeMarkdown)
	case errors.Is(err, purchase.ErrDeliveryFailed):
		return c.Edit(reportDeliveryFailed, tele.ModeMarkdown)
	case err != nil:
		return err
	}
	return c.Edit(report, tele.ModeMarkdown)
}

// onReject handles rejeitar_<buyer> pressed by the reviewer.
func (b *Bot) onReject(c tele.Context, payload string) error {
	if !b.gate.IsAuthority(c.Sender().ID) {
		return c.Respond(&tele.CallbackResponse{Text: msgNoPermission, ShowAlert: true})
	}

	buyerID, err := strconv.ParseInt(payload, 10, 64)
	if err != nil {
		return fmt.Errorf("bot: malformed rejection payload %q: %w", payload, err)
	}

	_ = c.Respond()

	report, err := b.flow.Reject(context.Background(), buyerID)
	switch {
	case errors.Is(err, purchase.ErrAlreadyDecided):
		return c.Respond(&tele.CallbackResponse{Text: alertAlreadyDecided, ShowAlert: true})
	case errors.Is(err, purchase.ErrDeliveryFailed):
		return c.Edit(reportRejectFailed, tele.ModeMarkdown)
	case err != nil:
		return err
	}
	return c.Edit(report, tele.ModeMarkdown)
}
