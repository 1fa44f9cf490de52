package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/lojabot/internal/logger"
)

// Command represents a bot command with its handler and metadata.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	AdminOnly   bool
	Hidden      bool
	Aliases     []string
}

// CallbackHandler handles one inline-button press. The payload is the callback
// data with the registered prefix stripped.
type CallbackHandler func(c tele.Context, payload string) error

// Registry holds bot commands and prefix-routed callbacks. Inline buttons in
// this bot carry plain underscore-delimited data ("comprar_3",
// "liberar_42_3"), so callbacks are matched by longest registered prefix.
type Registry struct {
	commands map[string]Command

	callbacksMu      sync.RWMutex
	callbacks        map[string]CallbackHandler
	callbackNotFound tele.HandlerFunc
}

// NewRegistry creates an empty Registry with a default unknown-callback
// fallback.
func NewRegistry() *Registry {
	return &Registry{
		commands:  make(map[string]Command),
		callbacks: make(map[string]CallbackHandler),
		callbackNotFound: func(c tele.Context) error {
			return c.Respond(&tele.CallbackResponse{Text: "Ação não suportada"})
		},
	}
}

// RegisterCommand adds a new command. The name must carry the leading slash.
func (r *Registry) RegisterCommand(name string, cmd Command) {
	if r == nil || name == "" || cmd.Handler == nil || cmd.Description == "" {
		logger.TG.LogAttrs(context.Background(), slog.LevelWarn, "register.command.skip",
			slog.String("name", name),
			slog.String("reason", "invalid"),
		)
		return
	}
	if name[0] != '/' {
		logger.TG.LogAttrs(context.Background(), slog.LevelWarn, "register.command.skip",
			slog.String("name", name),
			slog.String("reason", "no_slash_prefix"),
		)
		return
	}
	if _, exists := r.commands[name]; exists {
		logger.TG.LogAttrs(context.Background(), slog.LevelWarn, "register.command.duplicate",
			slog.String("name", name),
		)
		return
	}
	r.commands[name] = cmd
}

// Commands returns all registered commands keyed by slash-prefixed name.
func (r *Registry) Commands() map[string]Command {
	return r.commands
}

// ListCommands returns a sorted slice of tele.Command for the command menu,
// optionally filtering out hidden and admin-only entries. Names are stripped
// of the leading slash, which is how the setMyCommands API expects them.
func (r *Registry) ListCommands(visibleOnly bool) []tele.Command {
	var list []tele.Command
	for name, meta := range r.commands {
		if visibleOnly && (meta.Hidden || meta.AdminOnly) {
			continue
		}
		list = append(list, tele.Command{
			Text:        strings.TrimPrefix(name, "/"),
			Description: meta.Description,
		})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Text < list[j].Text })
	return list
}

// RegisterCallback maps a data prefix to a handler.
func (r *Registry) RegisterCallback(prefix string, handler CallbackHandler) error {
	if r == nil || prefix == "" || handler == nil {
		return errors.New("invalid callback registration")
	}
	r.callbacksMu.Lock()
	defer r.callbacksMu.Unlock()
	if _, exists := r.callbacks[prefix]; exists {
		return fmt.Errorf("callback already registered: %s", prefix)
	}
	r.callbacks[prefix] = handler
	return nil
}

// ListCallbacks returns sorted registered prefixes (for diagnostics).
func (r *Registry) ListCallbacks() []string {
	r.callbacksMu.RLock()
	defer r.callbacksMu.RUnlock()
	names := make([]string, 0, len(r.callbacks))
	for k := range r.callbacks {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// SetCallbackNotFound replaces the fallback handler for unknown callbacks.
func (r *Registry) SetCallbackNotFound(h tele.HandlerFunc) {
	if h != nil {
		r.callbackNotFound = h
	}
}

// RouteCallback resolves the callback data against registered prefixes and
// invokes the handler with the remaining payload. The longest matching prefix
// wins, so "liberar_" does not shadow a hypothetical "liberar_all_".
func (r *Registry) RouteCallback(c tele.Context) error {
	cb := c.Callback()
	if cb == nil {
		return nil
	}
	data := strings.TrimSpace(strings.TrimPrefix(cb.Data, "\f"))

	r.callbacksMu.RLock()
	var (
		best    string
		handler CallbackHandler
	)
	for prefix, h := range r.callbacks {
		if strings.HasPrefix(data, prefix) && len(prefix) > len(best) {
			best, handler = prefix, h
		}
	}
	r.callbacksMu.RUnlock()

	if handler == nil {
		logger.TG.LogAttrs(context.Background(), slog.LevelWarn, "callback.unknown",
			slog.String("data", logger.SanitizeLimit(data, 128)),
		)
		return r.callbackNotFound(c)
	}
	return handler(c, strings.TrimPrefix(data, best))
}

// SetupCommands binds the registry's commands on the bot and publishes the
// visible ones to the Telegram command menu.
func SetupCommands(bot *tele.Bot, reg *Registry) {
	for name, cmd := range reg.Commands() {
		handler := cmd.Handler
		bot.Handle(name, handler)
		for _, alias := range cmd.Aliases {
			if !strings.HasPrefix(alias, "/") {
				alias = "/" + alias
			}
			bot.Handle(alias, handler)
		}
	}

	if err := bot.SetCommands(reg.ListCommands(true)); err != nil {
		logger.TG.LogAttrs(context.Background(), slog.LevelError, "register.commands.set_failed",
			slog.String("err", err.Error()),
		)
	}
}
