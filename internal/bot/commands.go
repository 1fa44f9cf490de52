package bot

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/lojabot/internal/access"
	"github.com/m3rciful/lojabot/internal/catalog"
	"github.com/m3rciful/lojabot/internal/logger"
	"github.com/m3rciful/lojabot/internal/telegram/keyboard"
)

func (b *Bot) handleStart(c tele.Context) error {
	welcome := welcomeMessage(c.Sender().FirstName)

	if banner := strings.TrimSpace(b.cfg.Shop.BannerURL); banner != "" {
		photo := &tele.Photo{File: tele.FromURL(banner), Caption: welcome}
		if err := c.Send(photo, tele.ModeMarkdown); err == nil {
			return nil
		}
		// Banner unreachable; fall back to plain text.
	}
	return c.Send(welcome, tele.ModeMarkdown)
}

func (b *Bot) handleProducts(c tele.Context) error {
	ctx := context.Background()
	products, err := b.store.LoadNormalized(ctx)
	if err != nil {
		return err
	}
	if len(products) == 0 {
		return c.Send(msgNoProducts, tele.ModeMarkdown)
	}

	recipient := c.Chat()
	bot := b.rt.Bot

	for _, id := range sortedIDs(products) {
		id, p := id, products[id]
		card := productCard(id, p)
		markup := keyboard.Inline(
			[]keyboard.InlineBtn{{Text: btnBuyText, Data: "comprar_" + id}},
			[]keyboard.InlineBtn{{Text: btnPreviewText, Data: "previa_" + id}},
		)

		err := b.rt.Dispatcher.Enqueue(ctx, "product_card", func() error {
			if p.PhotoRef != "" {
				photo := &tele.Photo{File: tele.File{FileID: p.PhotoRef}, Caption: card}
				if _, err := bot.Send(recipient, photo, markup, tele.ModeMarkdown); err == nil {
					return nil
				}
				// Stale file id; the card still goes out as text.
			}
			_, err := bot.Send(recipient, card, markup, tele.ModeMarkdown)
			return err
		})
		if err != nil {
			logger.TG.Warn("product card not queued",
				slog.String("event", "listing.enqueue"),
				slog.String("product_id", id),
				slog.String("err", err.Error()),
			)
		}
	}
	return nil
}

// sortedIDs orders product ids numerically so the listing is stable.
func sortedIDs(products map[string]catalog.Product) []string {
	ids := make([]string, 0, len(products))
	for id := range products {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, errA := strconv.Atoi(ids[i])
		b, errB := strconv.Atoi(ids[j])
		if errA != nil || errB != nil {
			return ids[i] < ids[j]
		}
		return a < b
	})
	return ids
}

func (b *Bot) handleAdd(c tele.Context) error {
	reply, err := b.dialog.Start(context.Background(), c.Sender().ID)
	if errors.Is(err, access.ErrPermissionDenied) {
		return c.Send(msgNoPermission, tele.ModeMarkdown)
	}
	if err != nil {
		return err
	}
	return c.Send(reply, tele.ModeMarkdown)
}

func (b *Bot) handleCancel(c tele.Context) error {
	b.dialog.Cancel(context.Background(), c.Sender().ID)
	return c.Send(msgCancelled, tele.ModeMarkdown)
}

func (b *Bot) handleRemove(c tele.Context) error {
	args := c.Args()
	if len(args) < 1 {
		return c.Send(usageRemove, tele.ModeMarkdown)
	}
	id := args[0]

	var removed catalog.Product
	err := b.store.Update(context.Background(), func(products map[string]catalog.Product) error {
		p, ok := products[id]
		if !ok {
			return catalog.ErrNotFound
		}
		removed = p
		delete(products, id)
		return nil
	})
	if errors.Is(err, catalog.ErrNotFound) {
		return c.Send(notFoundMessage(id), tele.ModeMarkdown)
	}
	if err != nil {
		return err
	}
	return c.Send(removedMessage(id, removed), tele.ModeMarkdown)
}

func (b *Bot) handleAddPreview(c tele.Context) error {
	args := c.Args()
	if len(args) < 2 {
		return c.Send(usageAddPreview, tele.ModeMarkdown)
	}
	id := args[0]
	link := strings.Join(args[1:], " ")

	var updated catalog.Product
	err := b.store.Update(context.Background(), func(products map[string]catalog.Product) error {
		p, ok := products[id]
		if !ok {
			return catalog.ErrNotFound
		}
		p.Preview = link
		products[id] = p
		updated = p
		return nil
	})
	if errors.Is(err, catalog.ErrNotFound) {
		return c.Send(notFoundMessage(id), tele.ModeMarkdown)
	}
	if err != nil {
		return err
	}
	return c.Send(previewAddedMessage(id, updated, link), tele.ModeMarkdown)
}
