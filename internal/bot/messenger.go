package bot

import (
	"context"
	"strconv"

	tghelpers "github.com/m3rciful/intakebot/core/telegram/helpers"
	"github.com/m3rciful/intakebot/core/telegram/keyboard"
	"github.com/m3rciful/intakebot/core/telegram/middleware"
	"github.com/m3rciful/intakebot/internal/intake"

	tele "gopkg.in/telebot.v4"
)

// botAPI is the part of tele.API the messenger uses.
type botAPI interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
	Forward(to tele.Recipient, msg tele.Editable, opts ...interface{}) (*tele.Message, error)
	EditReplyMarkup(msg tele.Editable, markup *tele.ReplyMarkup) (*tele.Message, error)
	Respond(c *tele.Callback, resp ...*tele.CallbackResponse) error
	ChatByID(id int64) (*tele.Chat, error)
}

// Messenger implements intake.Messenger for one update. Sends are counted
// on the update context for the handler summary.
type Messenger struct {
	c   tele.Context
	api botAPI
}

var _ intake.Messenger = (*Messenger)(nil)

// NewMessenger binds a messenger to the update c.
func NewMessenger(c tele.Context) *Messenger {
	return &Messenger{c: c, api: c.Bot()}
}

func (m *Messenger) SendText(_ context.Context, chatID int64, text string, opts intake.SendOptions) (intake.MessageRef, error) {
	return m.send(chatID, text, opts)
}

func (m *Messenger) SendDocument(_ context.Context, chatID int64, fileID, caption string, opts intake.SendOptions) (intake.MessageRef, error) {
	doc := &tele.Document{File: tele.File{FileID: fileID}, Caption: caption}
	return m.send(chatID, doc, opts)
}

func (m *Messenger) SendPhoto(_ context.Context, chatID int64, fileID, caption string, opts intake.SendOptions) (intake.MessageRef, error) {
	photo := &tele.Photo{File: tele.File{FileID: fileID}, Caption: caption}
	return m.send(chatID, photo, opts)
}

func (m *Messenger) Forward(_ context.Context, to int64, msg intake.MessageRef) error {
	if _, err := m.api.Forward(tele.ChatID(to), stored(msg)); err != nil {
		return err
	}
	m.count(false)
	return nil
}

func (m *Messenger) EditKeyboard(_ context.Context, msg intake.MessageRef, kb intake.Keyboard) error {
	_, err := m.api.EditReplyMarkup(stored(msg), markup(kb))
	return err
}

// Acknowledge answers the callback through the async sender.
func (m *Messenger) Acknowledge(ctx context.Context, callbackID, text string) error {
	return tghelpers.Respond(ctx, m.api, callbackID, text)
}

func (m *Messenger) Username(_ context.Context, chatID int64) (string, error) {
	chat, err := m.api.ChatByID(chatID)
	if err != nil {
		return "", err
	}
	return chat.Username, nil
}

func (m *Messenger) send(chatID int64, what interface{}, opts intake.SendOptions) (intake.MessageRef, error) {
	sendOpts := &tele.SendOptions{ReplyMarkup: markup(opts.Keyboard)}
	if opts.HTML {
		sendOpts.ParseMode = tele.ModeHTML
	}
	msg, err := m.api.Send(tele.ChatID(chatID), what, sendOpts)
	if err != nil {
		return intake.MessageRef{}, err
	}
	m.count(len(opts.Keyboard) > 0)

	ref := intake.MessageRef{ChatID: chatID, MessageID: msg.ID}
	if msg.Chat != nil {
		ref.ChatID = msg.Chat.ID
	}
	return ref, nil
}

func (m *Messenger) count(hasKB bool) {
	if m.c != nil {
		middleware.CountMessage(m.c, hasKB)
	}
}

func stored(msg intake.MessageRef) tele.StoredMessage {
	return tele.StoredMessage{MessageID: strconv.Itoa(msg.MessageID), ChatID: msg.ChatID}
}

func markup(kb intake.Keyboard) *tele.ReplyMarkup {
	rows := make([][]keyboard.InlineBtn, len(kb))
	for i, row := range kb {
		rows[i] = make([]keyboard.InlineBtn, len(row))
		for j, b := range row {
			rows[i][j] = keyboard.InlineBtn{Text: b.Label, Data: b.Data}
		}
	}
	return keyboard.InlineRows(rows...)
}
