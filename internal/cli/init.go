// Package cli provides the initialization steps shared by the command-line
// entrypoint: environment, configuration, logging and backend wiring.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"moneyboard/internal/backend"
	"moneyboard/internal/config"
	"moneyboard/internal/insight"
	"moneyboard/internal/log"
	"moneyboard/internal/services"
	"moneyboard/internal/sheets"
)

// SetupLogger initializes structured logging at the configured level on w and
// sets it as the default logger.
func SetupLogger(level string, w io.Writer) *log.Logger {
	lvl, err := config.ParseLevel(level)
	cfg := log.DefaultConfig()
	cfg.Level = lvl
	cfg.Output = w
	logger := log.New(cfg)
	log.SetDefault(logger)
	if err != nil {
		logger.WarnContext(context.Background(), "Falling back to info level", log.FieldError, err)
	}
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration from the environment and validates it.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// App bundles what a command needs to run.
type App struct {
	Config  *config.Config
	Logger  *log.Logger
	Ledger  *services.LedgerService
	factory backend.Factory
	bcfg    backend.Config
	cleanup backend.CleanupFunc
}

// NewApp opens the configured store and builds the ledger service.
func NewApp(ctx context.Context, cfg *config.Config, logger *log.Logger) (*App, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	factory := backend.NewFactory(logger)
	res, err := factory.CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, err
	}

	engine := insight.NewEngine(insight.Config{
		WindowDays:            cfg.InsightWindowDays,
		SmallExpenseThreshold: cfg.SmallExpenseThreshold,
		SmallExpenseLimit:     cfg.SmallExpenseLimit,
		LowBalanceRatio:       cfg.LowBalanceRatio,
	})
	logger.DebugContext(ctx, "Insight engine configured", log.FieldWindowDays, cfg.InsightWindowDays, log.FieldBackend, bcfg.Type.String())

	return &App{
		Config:  cfg,
		Logger:  logger,
		Ledger:  services.NewLedgerService(res.Store, engine, logger),
		factory: factory,
		bcfg:    bcfg,
		cleanup: res.Cleanup,
	}, nil
}

// Publisher builds the configured publish sink.
func (a *App) Publisher(ctx context.Context) (sheets.LedgerPublisher, error) {
	return a.factory.CreatePublisher(ctx, a.bcfg)
}

// Close releases the store.
func (a *App) Close() error {
	if a.cleanup == nil {
		return nil
	}
	if err := a.cleanup(); err != nil {
		return fmt.Errorf("close store: %w", err)
	}
	return nil
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
