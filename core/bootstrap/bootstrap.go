package bootstrap

import (
	"context"
	"fmt"
	"io"

	coreconfig "github.com/m3rciful/intakebot/core/config"
	"github.com/m3rciful/intakebot/core/logger"
)

// Options control the generic bootstrap pipeline shared between bots.
// S is the storage the application runs on.
type Options[S io.Closer] struct {
	Config *coreconfig.Config

	LoggerInit func(*coreconfig.Config) error
	// OpenStorage connects the storage and prepares its schema.
	OpenStorage func(ctx context.Context) (S, error)
}

// Result exposes infrastructure initialized by the bootstrap pipeline.
type Result[S io.Closer] struct {
	Storage S
}

// Run initializes the logger and opens the storage.
func Run[S io.Closer](ctx context.Context, opts Options[S]) (*Result[S], error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("bootstrap: nil config provided")
	}
	if opts.OpenStorage == nil {
		return nil, fmt.Errorf("bootstrap: OpenStorage is required")
	}

	loggerInit := opts.LoggerInit
	if loggerInit == nil {
		loggerInit = logger.InitLogger
	}
	if err := loggerInit(opts.Config); err != nil {
		return nil, fmt.Errorf("bootstrap: logger init failed: %w", err)
	}

	storage, err := opts.OpenStorage(ctx)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: storage initialization failed: %w", err)
	}
	return &Result[S]{Storage: storage}, nil
}
