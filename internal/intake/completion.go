package intake

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/m3rciful/intakebot/core/logger"
)

// complete handles the admin's done button. It notifies the requester and
// relabels the admin button. Repeated presses notify the requester again.
func (e *Engine) complete(ctx context.Context, out Messenger, p Press) error {
	o, ok, err := e.ledger.Get(ctx, p.OrderID)
	if err != nil {
		e.acknowledge(ctx, out, p.CallbackID, "")
		return fmt.Errorf("complete order %d: %w", p.OrderID, err)
	}
	if !ok {
		logger.Debug(ctx, component, "order.unknown", slog.Int64("order_id", p.OrderID))
		e.acknowledge(ctx, out, p.CallbackID, "")
		return nil
	}

	if _, err := e.ledger.MarkTouched(ctx, o.ID); err != nil {
		e.acknowledge(ctx, out, p.CallbackID, "")
		return fmt.Errorf("complete order %d: %w", o.ID, err)
	}

	e.send(ctx, out, o.ChatID, completionText(o), SendOptions{HTML: true})
	e.send(ctx, out, o.ChatID, textNewOrderHint, SendOptions{HTML: true})

	admin := MessageRef{ChatID: o.AdminNotification.ChatID, MessageID: o.AdminNotification.MessageID}
	kb := Keyboard{{{Label: processedLabel(o.AdminNotification.ButtonLabel), Data: DataProcessed}}}
	if err := out.EditKeyboard(ctx, admin, kb); err != nil {
		logSendFail(ctx, "edit.keyboard", admin.ChatID, err)
	}

	e.acknowledge(ctx, out, p.CallbackID, textCompletedAck)

	logger.Info(ctx, component, "order.completed",
		slog.Int64("order_id", o.ID),
		slog.Int64("chat_id", o.ChatID),
		slog.String("action", string(p.Action)),
		slog.Bool("repeat", o.AdminNotification.Touched),
	)
	return nil
}
