package intake

import "context"

// Button is an inline button with raw callback data.
type Button struct {
	Label string
	Data  string
}

// Keyboard is an inline keyboard, one slice per row.
type Keyboard [][]Button

// SendOptions controls formatting of an outgoing message.
type SendOptions struct {
	// HTML enables Telegram HTML parse mode.
	HTML     bool
	Keyboard Keyboard
}

// MessageRef identifies a sent message for later forwards and edits.
type MessageRef struct {
	ChatID    int64
	MessageID int
}

// Messenger is the outbound side of the messaging transport.
type Messenger interface {
	SendText(ctx context.Context, chatID int64, text string, opts SendOptions) (MessageRef, error)
	// SendDocument resends an already uploaded file by its id.
	SendDocument(ctx context.Context, chatID int64, fileID, caption string, opts SendOptions) (MessageRef, error)
	SendPhoto(ctx context.Context, chatID int64, fileID, caption string, opts SendOptions) (MessageRef, error)
	Forward(ctx context.Context, to int64, msg MessageRef) error
	// EditKeyboard replaces the inline keyboard of msg.
	EditKeyboard(ctx context.Context, msg MessageRef, kb Keyboard) error
	// Acknowledge answers a button press; text may be empty.
	Acknowledge(ctx context.Context, callbackID, text string) error
	// Username returns the public username of a chat, or "" if it has none.
	Username(ctx context.Context, chatID int64) (string, error)
}
