package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/m3rciful/intakebot/core/logger"
	"github.com/m3rciful/intakebot/internal/order"
)

// SQLLedger stores orders in the migrated `orders` table. Ids come from the
// single-row `order_counter` table, bumped with one UPDATE ... RETURNING so
// concurrent reservations never collide.
type SQLLedger struct {
	db *sqlx.DB
}

type orderRow struct {
	ID             int64  `db:"order_id"`
	ChatID         int64  `db:"chat_id"`
	Domains        string `db:"domains"`
	Answer         string `db:"answer"`
	AdminChatID    int64  `db:"admin_chat_id"`
	AdminMessageID int64  `db:"admin_message_id"`
	ButtonText     string `db:"button_text"`
	ButtonTouched  bool   `db:"button_touched"`
}

const orderColumns = `order_id, chat_id, domains, answer, admin_chat_id, admin_message_id, button_text, button_touched`

// NewSQLLedger wraps a migrated database and aligns the id counter with the
// highest stored id.
func NewSQLLedger(ctx context.Context, db *sqlx.DB) (*SQLLedger, error) {
	l := &SQLLedger{db: db}
	q := `UPDATE order_counter
		SET last_id = (SELECT COALESCE(MAX(order_id), 0) FROM orders)
		WHERE name = 'orders' AND last_id < (SELECT COALESCE(MAX(order_id), 0) FROM orders)`
	if _, err := db.ExecContext(ctx, q); err != nil {
		return nil, fmt.Errorf("sync order counter: %w", err)
	}
	logger.Ledger.Info("ledger opened",
		slog.String("event", "ledger.open"),
		slog.String("driver", db.DriverName()),
	)
	return l, nil
}

// NextID bumps the counter and returns the new value.
func (l *SQLLedger) NextID(ctx context.Context) (int64, error) {
	var id int64
	q := `UPDATE order_counter SET last_id = last_id + 1 WHERE name = 'orders' RETURNING last_id`
	if err := l.db.GetContext(ctx, &id, q); err != nil {
		return 0, fmt.Errorf("allocate order id: %w", err)
	}
	return id, nil
}

// Append inserts o.
func (l *SQLLedger) Append(ctx context.Context, o order.Order) error {
	domains, err := json.Marshal(o.Domains)
	if err != nil {
		return fmt.Errorf("encode domains: %w", err)
	}
	row := orderRow{
		ID:             o.ID,
		ChatID:         o.ChatID,
		Domains:        string(domains),
		Answer:         o.Answer,
		AdminChatID:    o.AdminNotification.ChatID,
		AdminMessageID: int64(o.AdminNotification.MessageID),
		ButtonText:     o.AdminNotification.ButtonLabel,
		ButtonTouched:  o.AdminNotification.Touched,
	}
	q := `INSERT INTO orders (` + orderColumns + `) VALUES
		(:order_id, :chat_id, :domains, :answer, :admin_chat_id, :admin_message_id, :button_text, :button_touched)`
	if _, err := l.db.NamedExecContext(ctx, q, row); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %d", ErrDuplicateID, o.ID)
		}
		return fmt.Errorf("insert order %d: %w", o.ID, err)
	}
	return nil
}

// Get returns the order with the given id.
func (l *SQLLedger) Get(ctx context.Context, id int64) (order.Order, bool, error) {
	var row orderRow
	q := l.db.Rebind(`SELECT ` + orderColumns + ` FROM orders WHERE order_id = ?`)
	err := l.db.GetContext(ctx, &row, q, id)
	if errors.Is(err, sql.ErrNoRows) {
		return order.Order{}, false, nil
	}
	if err != nil {
		return order.Order{}, false, fmt.Errorf("select order %d: %w", id, err)
	}
	o, err := row.toOrder()
	if err != nil {
		return order.Order{}, false, err
	}
	return o, true, nil
}

// MarkTouched flags the admin button of order id as used.
func (l *SQLLedger) MarkTouched(ctx context.Context, id int64) (bool, error) {
	q := l.db.Rebind(`UPDATE orders SET button_touched = TRUE WHERE order_id = ?`)
	res, err := l.db.ExecContext(ctx, q, id)
	if err != nil {
		return false, fmt.Errorf("mark order %d touched: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark order %d touched: %w", id, err)
	}
	return n > 0, nil
}

// List returns every stored order ordered by id.
func (l *SQLLedger) List(ctx context.Context) ([]order.Order, error) {
	var rows []orderRow
	if err := l.db.SelectContext(ctx, &rows, `SELECT `+orderColumns+` FROM orders ORDER BY order_id`); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	out := make([]order.Order, 0, len(rows))
	for _, r := range rows {
		o, err := r.toOrder()
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

// Close closes the underlying database.
func (l *SQLLedger) Close() error {
	return l.db.Close()
}

func (r orderRow) toOrder() (order.Order, error) {
	var domains []string
	if err := json.Unmarshal([]byte(r.Domains), &domains); err != nil {
		return order.Order{}, fmt.Errorf("decode domains of order %d: %w", r.ID, err)
	}
	return order.Order{
		ID:      r.ID,
		ChatID:  r.ChatID,
		Domains: domains,
		Answer:  r.Answer,
		AdminNotification: order.AdminNotification{
			ChatID:      r.AdminChatID,
			MessageID:   int(r.AdminMessageID),
			ButtonLabel: r.ButtonText,
			Touched:     r.ButtonTouched,
		},
	}, nil
}

const pgUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pq.Error
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	// modernc.org/sqlite reports constraint errors only through the message.
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
