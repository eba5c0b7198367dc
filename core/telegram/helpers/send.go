package helpers

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/m3rciful/intakebot/core/logger"
	"github.com/m3rciful/intakebot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

var active atomic.Pointer[sender.Dispatcher]

// SetDispatcher installs d for Dispatch; nil makes every call synchronous.
func SetDispatcher(d *sender.Dispatcher) {
	active.Store(d)
}

// Dispatch queues run on the installed dispatcher. Without one, or when the
// queue is full or closed, run executes inline and its error is returned.
func Dispatch(ctx context.Context, action, endpoint string, run func() error) error {
	d := active.Load()
	if d == nil {
		return run()
	}
	err := d.Enqueue(ctx, action, endpoint, run)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sender.ErrQueueFull), errors.Is(err, sender.ErrQueueClosed):
		logger.Warn(ctx, "tg.sender", "queue.fallback",
			slog.String("action", action),
			slog.String("endpoint", endpoint),
			slog.Any("err", err),
		)
		return run()
	default:
		return err
	}
}

// SendText sends plain text to the chat of c. Only the first opts entry is used.
func SendText(c tele.Context, text string, opts ...*tele.SendOptions) error {
	args := make([]any, 0, 1)
	if len(opts) > 0 && opts[0] != nil {
		args = append(args, opts[0])
	}
	return Dispatch(BuildContext(c), "send.text", "sendMessage", func() error {
		return c.Send(text, args...)
	})
}

// Responder answers callback queries; *tele.Bot implements it.
type Responder interface {
	Respond(c *tele.Callback, resp ...*tele.CallbackResponse) error
}

// Respond answers a callback query asynchronously.
func Respond(ctx context.Context, api Responder, callbackID, text string) error {
	return Dispatch(ctx, "callback.respond", "answerCallbackQuery", func() error {
		return api.Respond(&tele.Callback{ID: callbackID}, &tele.CallbackResponse{Text: text})
	})
}
