package bot

import (
	"bytes"
	"fmt"
	"log/slog"
	"time"

	"github.com/m3rciful/intakebot/core/logger"
	tghelpers "github.com/m3rciful/intakebot/core/telegram/helpers"
	"github.com/m3rciful/intakebot/internal/intake"
	"github.com/m3rciful/intakebot/internal/ledger"

	tele "gopkg.in/telebot.v4"
)

// Handlers turns telebot updates into intake events.
type Handlers struct {
	engine *intake.Engine
	ledger ledger.Ledger
}

// NewHandlers builds handlers around the engine. The ledger is used by /export.
func NewHandlers(engine *intake.Engine, l ledger.Ledger) *Handlers {
	return &Handlers{engine: engine, ledger: l}
}

// Start handles /start.
func (h *Handlers) Start(c tele.Context) error {
	msgID := 0
	if m := c.Message(); m != nil {
		msgID = m.ID
	}
	return h.handle(c, intake.Start{MessageID: msgID})
}

// GetID handles /getid.
func (h *Handlers) GetID(c tele.Context) error {
	return h.handle(c, intake.GetID{})
}

// Text handles plain text messages.
func (h *Handlers) Text(c tele.Context) error {
	return h.handle(c, intake.Text{Text: c.Text()})
}

// Document handles file uploads.
func (h *Handlers) Document(c tele.Context) error {
	m := c.Message()
	if m == nil || m.Document == nil {
		return nil
	}
	return h.handle(c, intake.Document{FileID: m.Document.FileID, FileName: m.Document.FileName})
}

// Photo handles photo messages. telebot keeps the largest size in Message.Photo.
func (h *Handlers) Photo(c tele.Context) error {
	m := c.Message()
	if m == nil || m.Photo == nil {
		return nil
	}
	return h.handle(c, intake.Photo{FileID: m.Photo.FileID, Caption: m.Caption})
}

// Press handles every inline button press.
func (h *Handlers) Press(c tele.Context) error {
	cb := c.Callback()
	if cb == nil {
		return nil
	}
	return h.handle(c, ParseCallback(cb.ID, cb.Data))
}

// Export sends the whole ledger as an xlsx workbook.
func (h *Handlers) Export(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	start := time.Now()

	orders, err := h.ledger.List(ctx)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if len(orders) == 0 {
		return tghelpers.SendText(c, "Заказов пока нет")
	}

	var buf bytes.Buffer
	if err := ledger.ExportXLSX(&buf, orders); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	doc := &tele.Document{
		File:     tele.FromReader(&buf),
		FileName: "orders.xlsx",
		Caption:  fmt.Sprintf("Заказов: %d", len(orders)),
	}
	if err := c.Send(doc); err != nil {
		return fmt.Errorf("export: send: %w", err)
	}
	logger.Info(ctx, "ledger", "ledger.export",
		slog.Int("count", len(orders)),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	)
	return nil
}

func (h *Handlers) handle(c tele.Context, ev intake.Event) error {
	var chatID int64
	if chat := c.Chat(); chat != nil {
		chatID = chat.ID
	}
	ctx := tghelpers.BuildContext(c)
	out := NewMessenger(c)
	if chatID == 0 {
		// Only admin done presses make sense without a chat.
		p, ok := ev.(intake.Press)
		if !ok {
			return nil
		}
		if p.Kind != intake.PressDone {
			return out.Acknowledge(ctx, p.CallbackID, "")
		}
	}
	return h.engine.Handle(ctx, out, chatID, ev)
}
