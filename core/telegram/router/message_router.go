package router

import (
	"time"

	tg "github.com/m3rciful/intakebot/core/telegram"
	"github.com/m3rciful/intakebot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// MessageOptions holds handlers for non-command messages. A nil handler
// leaves that kind of message unhandled.
type MessageOptions struct {
	Text     tele.HandlerFunc
	Document tele.HandlerFunc
	Photo    tele.HandlerFunc
}

// MessageRoutes builds handlers for text, document and photo messages.
// Text equal to a command alias is dispatched to that command.
func MessageRoutes(reg *tg.Registry, opts MessageOptions) []tg.Route {
	text := func(c tele.Context) error {
		start := time.Now()

		if reg != nil {
			if key, cmd, ok := reg.LookupAlias(c.Text()); ok && cmd.Handler != nil {
				name := normalizeHandlerName(key)
				return handleWithSummary(c, name, start, "", "", func() error {
					return cmd.Handler(c)
				})
			}
			if fb := reg.TextFallback(); fb != nil && opts.Text == nil {
				return handleWithSummary(c, "fallback", start, "", "", func() error {
					return fb(c)
				})
			}
		}

		return route(c, "text", start, opts.Text)
	}

	document := func(c tele.Context) error {
		return route(c, "document", time.Now(), opts.Document)
	}
	photo := func(c tele.Context) error {
		return route(c, "photo", time.Now(), opts.Photo)
	}

	wrap := func(h tele.HandlerFunc) tele.HandlerFunc {
		return middleware.RecoverMiddleware(middleware.LoggerMiddleware(h))
	}
	return []tg.Route{
		{Endpoint: tele.OnText, Handler: wrap(text)},
		{Endpoint: tele.OnDocument, Handler: wrap(document)},
		{Endpoint: tele.OnPhoto, Handler: wrap(photo)},
	}
}

func route(c tele.Context, name string, start time.Time, h tele.HandlerFunc) error {
	if h == nil {
		logHandlerSummary(c, "unexpected_"+name, start, "skip", "ok", nil)
		return nil
	}
	return handleWithSummary(c, name, start, "", "", func() error {
		return h(c)
	})
}
