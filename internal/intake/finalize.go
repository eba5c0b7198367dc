package intake

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/m3rciful/intakebot/core/logger"
	"github.com/m3rciful/intakebot/internal/order"
)

// finalize turns the draft into an order: it notifies the admin chat,
// stores the order and clears the draft. The draft is deleted last, so a
// failure before that leaves it for the requester to retry.
func (e *Engine) finalize(ctx context.Context, out Messenger, chatID int64, d order.Draft) error {
	start := time.Now()

	id, err := e.ledger.NextID(ctx)
	if err != nil {
		return fmt.Errorf("finalize: allocate order id: %w", err)
	}

	plural := d.Plural()
	answer := StatusLabel(d.Action, plural)
	card := adminText(d)

	e.introduceRequester(ctx, out, d)

	opts := SendOptions{
		HTML:     true,
		Keyboard: Keyboard{{{Label: answer, Data: DoneData(d.Action, id)}}},
	}
	var ref MessageRef
	switch kw := d.Keywords.(type) {
	case order.File:
		ref, err = out.SendDocument(ctx, e.adminChatID, kw.FileID, card, opts)
	case order.Photo:
		ref, err = out.SendPhoto(ctx, e.adminChatID, kw.FileID, card, opts)
	default:
		ref, err = out.SendText(ctx, e.adminChatID, card, opts)
	}
	if err != nil {
		logSendFail(ctx, "send.order", e.adminChatID, err)
		return fmt.Errorf("finalize order %d: notify admin: %w", id, err)
	}

	o := order.Order{
		ID:      id,
		ChatID:  chatID,
		Domains: append([]string(nil), d.Domains...),
		Answer:  answer,
		AdminNotification: order.AdminNotification{
			ChatID:      ref.ChatID,
			MessageID:   ref.MessageID,
			ButtonLabel: answer,
		},
	}
	if err := e.ledger.Append(ctx, o); err != nil {
		return fmt.Errorf("finalize order %d: %w", id, err)
	}

	e.send(ctx, out, chatID, textReceived, SendOptions{})
	e.send(ctx, out, chatID, textNewOrderHint, SendOptions{HTML: true})
	e.drafts.Delete(chatID)

	logger.Info(ctx, component, "order.finalized",
		slog.Int64("order_id", id),
		slog.Int64("chat_id", chatID),
		slog.String("action", string(d.Action)),
		slog.Int("domains", len(d.Domains)),
		slog.String("keywords", keywordsKind(d.Keywords)),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	)
	return nil
}

// introduceRequester tells the admin chat who placed the order: by username
// when known, otherwise by forwarding the requester's /start message.
func (e *Engine) introduceRequester(ctx context.Context, out Messenger, d order.Draft) {
	if d.Username != "" {
		e.send(ctx, out, e.adminChatID, "Заказ от @"+d.Username, SendOptions{})
		return
	}
	origin := MessageRef{ChatID: d.OriginChatID, MessageID: d.OriginMessageID}
	if err := out.Forward(ctx, e.adminChatID, origin); err != nil {
		logSendFail(ctx, "forward", e.adminChatID, err)
	}
}

func keywordsKind(kw order.Keywords) string {
	if kw == nil {
		return ""
	}
	return kw.Kind()
}
