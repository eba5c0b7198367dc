// Package app assembles the order intake bot from the core runtime and the
// intake engine.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/m3rciful/intakebot/core/bootstrap"
	corecmd "github.com/m3rciful/intakebot/core/cmd"
	coreconfig "github.com/m3rciful/intakebot/core/config"
	"github.com/m3rciful/intakebot/core/logger"
	coretelegram "github.com/m3rciful/intakebot/core/telegram"
	"github.com/m3rciful/intakebot/core/telegram/commands"
	"github.com/m3rciful/intakebot/core/telegram/router"
	"github.com/m3rciful/intakebot/core/telegram/state"
	"github.com/m3rciful/intakebot/internal/bot"
	"github.com/m3rciful/intakebot/internal/intake"
	"github.com/m3rciful/intakebot/internal/ledger"
	"github.com/m3rciful/intakebot/internal/order"
)

// App holds the wired bot.
type App struct {
	cfg      *Config
	ledger   ledger.Ledger
	handlers *bot.Handlers
}

// Bootstrap initializes logging, opens the ledger and builds the engine.
func Bootstrap(carrier corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
	cfg, ok := carrier.(*Config)
	if !ok {
		return nil, fmt.Errorf("app: unexpected config type %T", carrier)
	}
	a, err := bootstrapWith(context.Background(), cfg, nil)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func bootstrapWith(ctx context.Context, cfg *Config, loggerInit func(*coreconfig.Config) error) (*App, error) {
	res, err := bootstrap.Run(ctx, bootstrap.Options[ledger.Ledger]{
		Config:     &cfg.Config,
		LoggerInit: loggerInit,
		OpenStorage: func(ctx context.Context) (ledger.Ledger, error) {
			return ledger.Open(ctx, cfg.Ledger)
		},
	})
	if err != nil {
		return nil, err
	}

	engine := intake.NewEngine(state.NewMemoryStore[int64, order.Draft](), res.Storage, cfg.Telegram.AdminChatID)
	return &App{
		cfg:      cfg,
		ledger:   res.Storage,
		handlers: bot.NewHandlers(engine, res.Storage),
	}, nil
}

// Registry declares the bot's commands and callbacks.
func (a *App) Registry() (*coretelegram.Registry, error) {
	reg := coretelegram.NewRegistry()
	errs := []error{
		reg.RegisterCommand("/start", commands.Command{
			Handler:     a.handlers.Start,
			Description: "Создать новый заказ",
		}),
		reg.RegisterCommand("/getid", commands.Command{
			Handler:     a.handlers.GetID,
			Description: "Получить ID чата",
		}),
		reg.RegisterCallback(bot.CallbackDone, a.handlers.Press),
		reg.RegisterCallback(bot.CallbackScene, a.handlers.Press),
	}
	if a.cfg.Telegram.AdminID != 0 {
		errs = append(errs, reg.RegisterCommand("/export", commands.Command{
			Handler:     a.handlers.Export,
			Description: "Выгрузить заказы в xlsx",
			AdminOnly:   true,
			Hidden:      true,
		}))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return reg, nil
}

// TelegramRunOptions builds the routes and middlewares for the runtime.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	reg, err := a.Registry()
	if err != nil {
		return coretelegram.RunOptions{}, err
	}

	core := &a.cfg.Config
	routes := router.CommandRoutes(reg, router.CommandRouteOptions{AdminID: core.Telegram.AdminID})
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{Key: bot.CallbackKey}))
	routes = append(routes, router.MessageRoutes(reg, router.MessageOptions{
		Text:     a.handlers.Text,
		Document: a.handlers.Document,
		Photo:    a.handlers.Photo,
	})...)

	return coretelegram.RunOptions{
		Config:      core,
		Registry:    reg,
		Middlewares: coretelegram.DefaultMiddlewares(core, nil),
		Routes:      routes,
		OnStop: func(ctx context.Context, _ coretelegram.Runtime) error {
			if err := a.ledger.Close(); err != nil {
				return fmt.Errorf("app: close ledger: %w", err)
			}
			logger.Info(ctx, "app", "ledger.closed", slog.String("driver", a.driver()))
			return nil
		},
	}, nil
}

func (a *App) driver() string {
	if a.cfg.Ledger.Driver == "" {
		return ledger.DriverFile
	}
	return a.cfg.Ledger.Driver
}
