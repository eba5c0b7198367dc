package middleware

import (
	"sync/atomic"

	tele "gopkg.in/telebot.v4"
)

const countersKey = "metrics.counters"

// counters is what the handler summary line reports about an update.
type counters struct {
	messages atomic.Int32
	keyboard atomic.Bool
}

func countersFrom(c tele.Context) *counters {
	if cs, ok := c.Get(countersKey).(*counters); ok {
		return cs
	}
	cs := &counters{}
	c.Set(countersKey, cs)
	return cs
}

// CountMessage records one outgoing message of the current update. Code that
// sends through the Bot API directly calls it so the summary stays accurate.
func CountMessage(c tele.Context, hasKB bool) {
	if c == nil {
		return
	}
	cs := countersFrom(c)
	cs.messages.Add(1)
	if hasKB {
		cs.keyboard.Store(true)
	}
}

// GetCounters returns the messages sent for the update and whether any of
// them carried a keyboard.
func GetCounters(c tele.Context) (int, bool) {
	cs, ok := c.Get(countersKey).(*counters)
	if !ok {
		return 0, false
	}
	return int(cs.messages.Load()), cs.keyboard.Load()
}

// MessageMetricsMiddleware counts messages sent through the context.
func MessageMetricsMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		c.Set(countersKey, &counters{})
		return next(countingContext{Context: c})
	}
}

type countingContext struct{ tele.Context }

func (cc countingContext) Send(what any, opts ...any) error {
	return cc.count(cc.Context.Send(what, opts...), opts)
}

func (cc countingContext) Reply(what any, opts ...any) error {
	return cc.count(cc.Context.Reply(what, opts...), opts)
}

func (cc countingContext) EditOrSend(what any, opts ...any) error {
	return cc.count(cc.Context.EditOrSend(what, opts...), opts)
}

func (cc countingContext) count(err error, opts []any) error {
	if err == nil {
		CountMessage(cc.Context, hasKeyboard(opts))
	}
	return err
}

func hasKeyboard(opts []any) bool {
	for _, o := range opts {
		switch v := o.(type) {
		case *tele.ReplyMarkup:
			return v != nil
		case *tele.SendOptions:
			if v != nil && v.ReplyMarkup != nil {
				return true
			}
		}
	}
	return false
}
