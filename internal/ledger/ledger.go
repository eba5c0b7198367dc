// Package ledger persists finalized orders.
//
// Every backend hands out ids as max(existing)+1 and never reuses an id,
// even when NextID is called concurrently and some reservations are never
// appended.
package ledger

import (
	"context"
	"errors"

	"github.com/m3rciful/intakebot/internal/order"
)

var (
	// ErrDuplicateID is returned by Append when the id is already stored.
	ErrDuplicateID = errors.New("ledger: order id already exists")
	// ErrUnknownDriver is returned by Open for an unsupported backend.
	ErrUnknownDriver = errors.New("ledger: unknown driver")
)

// Ledger is the durable, append-only order collection.
type Ledger interface {
	// NextID reserves the next order id.
	NextID(ctx context.Context) (int64, error)
	// Append stores a new order under its reserved id.
	Append(ctx context.Context, o order.Order) error
	// Get looks an order up; ok is false when the id is unknown.
	Get(ctx context.Context, id int64) (o order.Order, ok bool, err error)
	// MarkTouched sets the admin button flag; ok is false when the id is unknown.
	MarkTouched(ctx context.Context, id int64) (ok bool, err error)
	// List returns all orders sorted by id.
	List(ctx context.Context) ([]order.Order, error)
	Close() error
}
