package intake

import (
	"context"
	"errors"
	"sync"
)

type sentMessage struct {
	Kind    string // text, document or photo
	ChatID  int64
	Text    string
	FileID  string
	Options SendOptions
}

type editCall struct {
	Msg MessageRef
	KB  Keyboard
}

type ackCall struct {
	CallbackID string
	Text       string
}

// recorder is a Messenger that keeps everything it is asked to do.
type recorder struct {
	mu sync.Mutex

	usernames   map[int64]string
	failOrderTo int64

	nextMessageID int
	sent          []sentMessage
	forwards      []MessageRef
	forwardedTo   []int64
	edits         []editCall
	acks          []ackCall
}

var errSendFailed = errors.New("send failed")

func newRecorder() *recorder {
	return &recorder{usernames: map[int64]string{}, nextMessageID: 100}
}

func (r *recorder) record(kind string, chatID int64, text, fileID string, opts SendOptions) (MessageRef, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failOrderTo != 0 && chatID == r.failOrderTo && len(opts.Keyboard) > 0 {
		return MessageRef{}, errSendFailed
	}
	r.nextMessageID++
	r.sent = append(r.sent, sentMessage{Kind: kind, ChatID: chatID, Text: text, FileID: fileID, Options: opts})
	return MessageRef{ChatID: chatID, MessageID: r.nextMessageID}, nil
}

func (r *recorder) SendText(_ context.Context, chatID int64, text string, opts SendOptions) (MessageRef, error) {
	return r.record("text", chatID, text, "", opts)
}

func (r *recorder) SendDocument(_ context.Context, chatID int64, fileID, caption string, opts SendOptions) (MessageRef, error) {
	return r.record("document", chatID, caption, fileID, opts)
}

func (r *recorder) SendPhoto(_ context.Context, chatID int64, fileID, caption string, opts SendOptions) (MessageRef, error) {
	return r.record("photo", chatID, caption, fileID, opts)
}

func (r *recorder) Forward(_ context.Context, to int64, msg MessageRef) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.forwards = append(r.forwards, msg)
	r.forwardedTo = append(r.forwardedTo, to)
	return nil
}

func (r *recorder) EditKeyboard(_ context.Context, msg MessageRef, kb Keyboard) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.edits = append(r.edits, editCall{Msg: msg, KB: kb})
	return nil
}

func (r *recorder) Acknowledge(_ context.Context, callbackID, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.acks = append(r.acks, ackCall{CallbackID: callbackID, Text: text})
	return nil
}

func (r *recorder) Username(_ context.Context, chatID int64) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.usernames[chatID], nil
}

func (r *recorder) sentTo(chatID int64) []sentMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []sentMessage
	for _, m := range r.sent {
		if m.ChatID == chatID {
			out = append(out, m)
		}
	}
	return out
}

func (r *recorder) last() sentMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.sent) == 0 {
		return sentMessage{}
	}
	return r.sent[len(r.sent)-1]
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent, r.forwards, r.forwardedTo, r.edits, r.acks = nil, nil, nil, nil, nil
}

func buttonData(kb Keyboard) []string {
	var out []string
	for _, row := range kb {
		for _, b := range row {
			out = append(out, b.Data)
		}
	}
	return out
}
