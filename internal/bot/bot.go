// Package bot binds the storefront to Telegram: commands, inline-button
// callbacks and message routing between the creation dialogue and the
// purchase flow.
package bot

import (
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/lojabot/internal/access"
	"github.com/m3rciful/lojabot/internal/catalog"
	"github.com/m3rciful/lojabot/internal/config"
	"github.com/m3rciful/lojabot/internal/dialog"
	"github.com/m3rciful/lojabot/internal/purchase"
	"github.com/m3rciful/lojabot/internal/telegram"
	"github.com/m3rciful/lojabot/internal/telegram/middleware"
)

// Bot owns the storefront handlers and their collaborators.
type Bot struct {
	cfg    *config.Config
	store  catalog.Store
	gate   access.Gate
	dialog *dialog.Dialog

	// Bound in Setup once the live bot exists.
	rt   telegram.Runtime
	flow *purchase.Flow
}

// New builds the storefront over the given store and configuration.
func New(cfg *config.Config, store catalog.Store) *Bot {
	gate := access.NewGate(cfg.Telegram.AdminID)
	return &Bot{
		cfg:    cfg,
		store:  store,
		gate:   gate,
		dialog: dialog.New(gate, store),
	}
}

// Setup wires handlers on the live bot instance. It satisfies
// telegram.RunOptions.Setup.
func (b *Bot) Setup(rt telegram.Runtime) error {
	b.rt = rt
	b.flow = purchase.NewFlow(b.store, b.gate, telegram.NewOutbound(rt.Bot), b.cfg.Shop.PixKey)

	b.registerCommands(rt.Registry)
	if err := b.registerCallbacks(rt.Registry); err != nil {
		return err
	}

	rt.Bot.Handle(tele.OnCallback, rt.Registry.RouteCallback)
	rt.Bot.Handle(tele.OnText, b.onText)
	rt.Bot.Handle(tele.OnPhoto, b.onPhoto)
	rt.Bot.Handle(tele.OnDocument, b.onDocument)
	return nil
}

func (b *Bot) registerCommands(reg *telegram.Registry) {
	adminOpts := middleware.AdminOptions{
		Gate: b.gate,
		OnReject: func(c tele.Context) error {
			return c.Send(msgNoPermission, tele.ModeMarkdown)
		},
	}
	admin := func(h tele.HandlerFunc) tele.HandlerFunc {
		return middleware.WithAdminCheck(adminOpts, true, h)
	}

	reg.RegisterCommand("/start", telegram.Command{
		Handler:     b.handleStart,
		Description: "Mensagem de boas-vindas",
	})
	reg.RegisterCommand("/produtos", telegram.Command{
		Handler:     b.handleProducts,
		Description: "Ver produtos disponíveis",
	})
	reg.RegisterCommand("/cancelar", telegram.Command{
		Handler:     b.handleCancel,
		Description: "Cancelar operação atual",
	})
	reg.RegisterCommand("/adicionar", telegram.Command{
		Handler:     b.handleAdd,
		Description: "Adicionar novo produto",
		AdminOnly:   true,
	})
	reg.RegisterCommand("/remover", telegram.Command{
		Handler:     admin(b.handleRemove),
		Description: "Remover produto",
		AdminOnly:   true,
	})
	reg.RegisterCommand("/addprevias", telegram.Command{
		Handler:     admin(b.handleAddPreview),
		Description: "Adicionar prévia a um produto",
		AdminOnly:   true,
	})
}

func (b *Bot) registerCallbacks(reg *telegram.Registry) error {
	for prefix, handler := range map[string]telegram.CallbackHandler{
		"comprar_":  b.onBuy,
		"previa_":   b.onPreview,
		"liberar_":  b.onApprove,
		"rejeitar_": b.onReject,
	} {
		if err := reg.RegisterCallback(prefix, handler); err != nil {
			return err
		}
	}
	return nil
}
