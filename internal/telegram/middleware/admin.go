package middleware

import (
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/lojabot/internal/access"
)

// AdminOptions defines how admin-only checks behave.
type AdminOptions struct {
	Gate     access.Gate
	OnReject tele.HandlerFunc
}

// WithAdminCheck wraps a handler enforcing admin-only execution when required.
func WithAdminCheck(opts AdminOptions, adminOnly bool, handler tele.HandlerFunc) tele.HandlerFunc {
	if !adminOnly {
		return handler
	}
	return func(c tele.Context) error {
		sender := c.Sender()
		if sender == nil || !opts.Gate.IsAuthority(sender.ID) {
			if opts.OnReject != nil {
				return opts.OnReject(c)
			}
			return nil
		}
		return handler(c)
	}
}
