package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/m3rciful/intakebot/core/logger"
	"github.com/m3rciful/intakebot/internal/order"
)

// FileLedger keeps orders as a JSON array in a single file that is read and
// atomically replaced on every operation.
type FileLedger struct {
	path string

	mu sync.Mutex
	// reserved is the highest id handed out by NextID in this process.
	reserved int64
}

// NewFileLedger opens the ledger at path, creating an empty collection if the
// file does not exist.
func NewFileLedger(path string) (*FileLedger, error) {
	l := &FileLedger{path: path}
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.ensure(); err != nil {
		return nil, err
	}
	logger.Ledger.Info("ledger opened",
		slog.String("event", "ledger.open"),
		slog.String("driver", "file"),
		slog.String("path", path),
	)
	return l, nil
}

// NextID reserves max(stored ids, previous reservations)+1.
func (l *FileLedger) NextID(_ context.Context) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	orders, err := l.read()
	if err != nil {
		return 0, err
	}
	next := l.reserved
	for _, o := range orders {
		if o.ID > next {
			next = o.ID
		}
	}
	next++
	l.reserved = next
	return next, nil
}

// Append adds o to the collection.
func (l *FileLedger) Append(_ context.Context, o order.Order) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	orders, err := l.read()
	if err != nil {
		return err
	}
	for _, existing := range orders {
		if existing.ID == o.ID {
			return fmt.Errorf("%w: %d", ErrDuplicateID, o.ID)
		}
	}
	orders = append(orders, o)
	if o.ID > l.reserved {
		l.reserved = o.ID
	}
	return l.write(orders)
}

// Get returns the order with the given id.
func (l *FileLedger) Get(_ context.Context, id int64) (order.Order, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	orders, err := l.read()
	if err != nil {
		return order.Order{}, false, err
	}
	for _, o := range orders {
		if o.ID == id {
			return o, true, nil
		}
	}
	return order.Order{}, false, nil
}

// MarkTouched flags the admin button of order id as used.
func (l *FileLedger) MarkTouched(_ context.Context, id int64) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	orders, err := l.read()
	if err != nil {
		return false, err
	}
	for i := range orders {
		if orders[i].ID != id {
			continue
		}
		if orders[i].AdminNotification.Touched {
			return true, nil
		}
		orders[i].AdminNotification.Touched = true
		return true, l.write(orders)
	}
	return false, nil
}

// List returns every stored order ordered by id.
func (l *FileLedger) List(_ context.Context) ([]order.Order, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	orders, err := l.read()
	if err != nil {
		return nil, err
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].ID < orders[j].ID })
	return orders, nil
}

// Close is a no-op; the file is not held open between operations.
func (l *FileLedger) Close() error { return nil }

func (l *FileLedger) ensure() error {
	if _, err := os.Stat(l.path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat ledger file: %w", err)
	}
	if dir := filepath.Dir(l.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create ledger directory: %w", err)
		}
	}
	return l.write([]order.Order{})
}

func (l *FileLedger) read() ([]order.Order, error) {
	data, err := os.ReadFile(l.path)
	if errors.Is(err, os.ErrNotExist) {
		if err := l.ensure(); err != nil {
			return nil, err
		}
		return []order.Order{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read ledger file: %w", err)
	}
	var orders []order.Order
	if err := json.Unmarshal(data, &orders); err != nil {
		return nil, fmt.Errorf("decode ledger file: %w", err)
	}
	return orders, nil
}

// write replaces the file through a temp file and rename so readers never see
// a partial collection.
func (l *FileLedger) write(orders []order.Order) error {
	data, err := json.MarshalIndent(orders, "", "  ")
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(l.path), filepath.Base(l.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create ledger temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write ledger temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync ledger temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close ledger temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), l.path); err != nil {
		return fmt.Errorf("replace ledger file: %w", err)
	}
	return nil
}
