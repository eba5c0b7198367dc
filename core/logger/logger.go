// Package logger is the structured slog setup shared by the bot: one line
// per event, "component" and "event" first, update metadata taken from the
// context.
package logger

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"runtime"
	"strings"
	"sync"

	"github.com/m3rciful/intakebot/core/buildinfo"
	coreconfig "github.com/m3rciful/intakebot/core/config"
)

var (
	initOnce sync.Once
	closeMu  sync.Mutex
	out      *asyncWriter
	files    []io.Closer

	levelVar     slog.LevelVar
	debugSampler = newSampler(1, 50)

	// L is the root logger. Before InitLogger it writes through slog's default.
	L *slog.Logger

	// DB logs storage connection events.
	DB *slog.Logger
	// TG logs Telegram transport events.
	TG *slog.Logger
	// MIG logs schema migrations.
	MIG *slog.Logger
	// TWire logs handler and command registration.
	TWire *slog.Logger
	// Ledger logs order ledger operations.
	Ledger *slog.Logger
)

func init() {
	L = slog.Default()
	wireComponents()
}

// InitLogger installs the structured handler. Later calls are no-ops.
func InitLogger(cfg *coreconfig.Config) error {
	var initErr error
	initOnce.Do(func() {
		s := settingsFrom(cfg)
		levelVar.Set(s.level)
		debugSampler.set(s.sampleNum, s.sampleDen)

		writers, closers, err := s.outputs()
		if err != nil {
			initErr = err
			return
		}
		files = closers
		out = newAsyncWriter(writers)

		L = slog.New(&handler{level: &levelVar, w: out, json: s.json, order: s.keyOrder})
		slog.SetDefault(L)
		wireComponents()

		Info(context.Background(), "app", "startup",
			slog.String("version", buildinfo.Version),
			slog.String("build_commit", buildinfo.Commit),
			slog.String("build_time", buildinfo.Date),
			slog.String("go_version", runtime.Version()),
			slog.String("cfg_profile", s.profile),
		)
	})
	return initErr
}

func wireComponents() {
	DB = L.With("component", "db")
	TG = L.With("component", "tg")
	MIG = L.With("component", "db.migrate")
	TWire = L.With("component", "tg.wire")
	Ledger = L.With("component", "ledger")
}

// Shutdown drains buffered output and closes log files. It is safe to call
// more than once.
func Shutdown() error {
	closeMu.Lock()
	defer closeMu.Unlock()

	var errs []error
	if out != nil {
		errs = append(errs, out.Close())
		out = nil
	}
	for _, c := range files {
		errs = append(errs, c.Close())
	}
	files = nil
	return errors.Join(errs...)
}

// Component returns a logger tagged with the component name.
func Component(name string) *slog.Logger {
	name = strings.TrimSpace(name)
	if name == "" {
		return L
	}
	return L.With("component", name)
}

// LogEvent writes a record whose "event" attribute carries the name. A nil
// logger falls back to the one stored in ctx.
func LogEvent(ctx context.Context, log *slog.Logger, level slog.Level, event string, attrs ...slog.Attr) {
	if log == nil {
		log = FromContext(ctx)
	}
	if event != "" {
		attrs = append([]slog.Attr{slog.String("event", event)}, attrs...)
	}
	log.LogAttrs(ctx, level, "", attrs...)
}

// Debug logs a debug event for component.
func Debug(ctx context.Context, component, event string, attrs ...slog.Attr) {
	LogEvent(ctx, Component(component), slog.LevelDebug, event, attrs...)
}

// Info logs an info event for component.
func Info(ctx context.Context, component, event string, attrs ...slog.Attr) {
	LogEvent(ctx, Component(component), slog.LevelInfo, event, attrs...)
}

// Warn logs a warning event for component.
func Warn(ctx context.Context, component, event string, attrs ...slog.Attr) {
	LogEvent(ctx, Component(component), slog.LevelWarn, event, attrs...)
}

// Error logs an error event for component.
func Error(ctx context.Context, component, event string, attrs ...slog.Attr) {
	LogEvent(ctx, Component(component), slog.LevelError, event, attrs...)
}

// Background returns a root context for call sites that have none.
func Background() context.Context {
	return context.Background()
}

// ShouldSampleDebug reports whether a high-volume debug line should be
// written. LOG_TRACE=1 disables sampling.
func ShouldSampleDebug() bool {
	return debugSampler.allow()
}
