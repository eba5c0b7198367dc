// Package intake runs the order intake conversation: it collects domains,
// keywords and an action from a chat, hands the finished order to the admin
// chat and relays the admin's completion back to the requester.
package intake

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/m3rciful/intakebot/core/logger"
	"github.com/m3rciful/intakebot/core/telegram/state"
	"github.com/m3rciful/intakebot/internal/ledger"
	"github.com/m3rciful/intakebot/internal/order"
)

const component = "intake"

// Engine is the per-chat conversation state machine.
type Engine struct {
	drafts      state.Store[int64, order.Draft]
	ledger      ledger.Ledger
	adminChatID int64
}

// NewEngine wires the engine to its draft store, order ledger and the admin chat.
func NewEngine(drafts state.Store[int64, order.Draft], l ledger.Ledger, adminChatID int64) *Engine {
	return &Engine{drafts: drafts, ledger: l, adminChatID: adminChatID}
}

// Handle processes one event of chatID, sending replies through out.
//
// Events of the same chat are applied one at a time. Admin completion
// presses do not touch drafts and are not serialized per chat.
// The returned error is non-nil only when an order could not be
// finalized or completed; the draft is then left in place.
func (e *Engine) Handle(ctx context.Context, out Messenger, chatID int64, ev Event) error {
	if p, ok := ev.(Press); ok && p.Kind == PressDone {
		return e.complete(ctx, out, p)
	}

	unlock := e.drafts.Lock(chatID)
	defer unlock()

	switch ev := ev.(type) {
	case Start:
		e.start(ctx, out, chatID, ev)
	case GetID:
		e.send(ctx, out, chatID, strconv.FormatInt(chatID, 10), SendOptions{})
	case Press:
		return e.press(ctx, out, chatID, ev)
	default:
		e.message(ctx, out, chatID, ev)
	}
	return nil
}

// Draft returns the current draft of chatID.
func (e *Engine) Draft(chatID int64) (order.Draft, bool) {
	return e.drafts.Get(chatID)
}

func (e *Engine) start(ctx context.Context, out Messenger, chatID int64, ev Start) {
	d := order.NewDraft(chatID, ev.MessageID)
	name, err := out.Username(ctx, chatID)
	if err != nil {
		logger.Debug(ctx, component, "username.fail",
			slog.Int64("chat_id", chatID),
			slog.String("err", err.Error()),
		)
	}
	d.Username = name
	e.drafts.Set(chatID, d)

	text, kb := domainPrompt()
	e.send(ctx, out, chatID, text, SendOptions{Keyboard: kb})
}

func (e *Engine) message(ctx context.Context, out Messenger, chatID int64, ev Event) {
	d, ok := e.drafts.Get(chatID)
	if !ok {
		return
	}

	switch d.Stage {
	case order.StageEnteringDomains:
		t, ok := ev.(Text)
		if !ok {
			e.send(ctx, out, chatID, textDomainsAsText, SendOptions{})
			return
		}
		d.Domains = SplitDomains(t.Text)
		d.Stage = order.StageEnteringKeywords
		e.drafts.Set(chatID, d)
		text, kb := keywordPrompt()
		e.send(ctx, out, chatID, text, SendOptions{Keyboard: kb})

	case order.StageEnteringKeywords:
		kw, ok := ParseKeywords(ev)
		if !ok {
			text, kb := keywordReject()
			e.send(ctx, out, chatID, text, SendOptions{Keyboard: kb})
			return
		}
		d.Keywords = kw
		e.toActionMenu(ctx, out, chatID, d)
	}
}

func (e *Engine) press(ctx context.Context, out Messenger, chatID int64, p Press) error {
	e.acknowledge(ctx, out, p.CallbackID, "")

	if p.Kind == PressCancel {
		e.drafts.Delete(chatID)
		e.send(ctx, out, chatID, textCancelled, SendOptions{})
		return nil
	}

	d, ok := e.drafts.Get(chatID)
	if !ok {
		return nil
	}

	switch {
	case d.Stage == order.StageEnteringKeywords && p.Kind == PressSkip:
		d.Keywords = order.Skipped{}
		e.toActionMenu(ctx, out, chatID, d)

	case d.Stage == order.StageEnteringKeywords && p.Kind == PressBackToDomains:
		d.Stage = order.StageEnteringDomains
		e.drafts.Set(chatID, d)
		text, kb := domainPrompt()
		e.send(ctx, out, chatID, text, SendOptions{Keyboard: kb})

	case d.Stage == order.StageChoosingAction && p.Kind == PressBackToKeywords:
		d.Stage = order.StageEnteringKeywords
		e.drafts.Set(chatID, d)
		text, kb := keywordPrompt()
		e.send(ctx, out, chatID, text, SendOptions{Keyboard: kb})

	case d.Stage == order.StageChoosingAction && p.Kind == PressAction:
		d.Action = p.Action
		return e.finalize(ctx, out, chatID, d)

	default:
		logger.Debug(ctx, component, "press.ignored",
			slog.Int64("chat_id", chatID),
			slog.String("stage", d.Stage.String()),
			slog.String("action", p.Kind.String()),
		)
	}
	return nil
}

func (e *Engine) toActionMenu(ctx context.Context, out Messenger, chatID int64, d order.Draft) {
	d.Stage = order.StageChoosingAction
	e.drafts.Set(chatID, d)
	text, kb := actionMenu(d.Plural())
	e.send(ctx, out, chatID, text, SendOptions{Keyboard: kb})
}

// SplitDomains splits input into one domain per line. Lines are trimmed and
// blank lines are kept as empty domains.
func SplitDomains(text string) []string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	return lines
}

// ParseKeywords accepts a link, a document with a known extension or a photo.
func ParseKeywords(ev Event) (order.Keywords, bool) {
	switch ev := ev.(type) {
	case Text:
		if strings.HasPrefix(ev.Text, LinkPrefix) {
			return order.Link{URL: ev.Text}, true
		}
	case Document:
		for _, ext := range KeywordFileExtensions {
			if strings.HasSuffix(ev.FileName, "."+ext) {
				return order.File{FileID: ev.FileID}, true
			}
		}
	case Photo:
		return order.Photo{FileID: ev.FileID, Caption: ev.Caption}, true
	}
	return nil, false
}

// send delivers text and logs failures; callers that need the message
// reference use out directly.
func (e *Engine) send(ctx context.Context, out Messenger, chatID int64, text string, opts SendOptions) {
	if _, err := out.SendText(ctx, chatID, text, opts); err != nil {
		logSendFail(ctx, "send.text", chatID, err)
	}
}

func (e *Engine) acknowledge(ctx context.Context, out Messenger, callbackID, text string) {
	if callbackID == "" {
		return
	}
	if err := out.Acknowledge(ctx, callbackID, text); err != nil {
		logger.Warn(ctx, component, "ack.fail", slog.String("err", err.Error()))
	}
}

func logSendFail(ctx context.Context, action string, chatID int64, err error) {
	logger.Error(ctx, component, "send.fail",
		slog.String("action", action),
		slog.Int64("chat_id", chatID),
		slog.String("err", err.Error()),
	)
}
