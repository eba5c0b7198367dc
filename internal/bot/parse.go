// Package bot adapts telebot updates to the intake engine.
package bot

import (
	"regexp"
	"strconv"

	"github.com/m3rciful/intakebot/internal/intake"
	"github.com/m3rciful/intakebot/internal/order"

	tele "gopkg.in/telebot.v4"
)

// Registry keys for callbacks.
const (
	CallbackDone  = "done"
	CallbackScene = "scene"
)

var doneRe = regexp.MustCompile(`^(test|work|edit|stop)_done(\d+)$`)

// ParseCallback classifies raw button data. Unrecognized data yields
// PressUnknown.
func ParseCallback(id, data string) intake.Press {
	p := intake.Press{CallbackID: id, Data: data}

	switch data {
	case intake.DataCancel:
		p.Kind = intake.PressCancel
		return p
	case intake.DataSkip:
		p.Kind = intake.PressSkip
		return p
	case intake.DataBackToDomains:
		p.Kind = intake.PressBackToDomains
		return p
	case intake.DataBackToKeywords:
		p.Kind = intake.PressBackToKeywords
		return p
	}

	if a, ok := order.ParseAction(data); ok {
		p.Kind = intake.PressAction
		p.Action = a
		return p
	}

	if m := doneRe.FindStringSubmatch(data); m != nil {
		orderID, err := strconv.ParseInt(m[2], 10, 64)
		if err != nil {
			return p
		}
		p.Kind = intake.PressDone
		p.Action = order.Action(m[1])
		p.OrderID = orderID
	}
	return p
}

// CallbackKey routes admin done buttons apart from conversation buttons.
func CallbackKey(cb *tele.Callback) string {
	if cb != nil && doneRe.MatchString(cb.Data) {
		return CallbackDone
	}
	return CallbackScene
}
