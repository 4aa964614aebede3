// Package cmd provides the shutterctl commands.
package cmd

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Simplici0/shutterquote/internal/config"
	"github.com/Simplici0/shutterquote/internal/db"
	"github.com/Simplici0/shutterquote/internal/logging"
	"github.com/Simplici0/shutterquote/internal/pricebook"
	"github.com/Simplici0/shutterquote/internal/pricing"
	"github.com/Simplici0/shutterquote/internal/store"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "shutterctl",
	Short: "Quote and administer shutter price tables",
	Long: `shutterctl prices sheet and garage shutters and edits the stored
price tables and coefficients.

The store is selected with the same environment variables as the server
(STORE_BACKEND, DB_PATH, DATABASE_URL, REDIS_ADDR, ...).

Examples:
  shutterctl quote garage_shutter 2400 2300 --variant wood
  shutterctl set-cell garage_shutter 1 1 600000
  shutterctl settings set --global-addition 50000
  shutterctl rebase`,
	SilenceUsage: true,
}

// Execute runs the CLI.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// env is the opened configuration, logger and price book for one command.
type env struct {
	cfg     config.Config
	logger  *zap.Logger
	backend *store.Backend
	svc     *pricebook.Service
}

func (e *env) Close() {
	_ = e.backend.Close()
	_ = e.logger.Sync()
}

func loadConfigAndLogger() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, err
	}
	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	logger, err := logging.New(logging.Config{Level: level, Format: cfg.LogFormat, Development: cfg.IsDev()})
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}

func openEnv(ctx context.Context) (*env, error) {
	cfg, logger, err := loadConfigAndLogger()
	if err != nil {
		return nil, err
	}
	backend, err := store.Open(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.StoreBackend, err)
	}
	scope, err := pricebook.ParseRebaseScope(cfg.RebaseScope)
	if err != nil {
		backend.Close()
		return nil, err
	}
	return &env{
		cfg:     cfg,
		logger:  logger,
		backend: backend,
		svc:     pricebook.New(backend, logger, pricebook.WithRebaseScope(scope)),
	}, nil
}

// openSQL connects to the configured SQL database without migrating it.
func openSQL(ctx context.Context) (*sql.DB, string, *zap.Logger, error) {
	cfg, logger, err := loadConfigAndLogger()
	if err != nil {
		return nil, "", nil, err
	}
	var driver string
	switch cfg.StoreBackend {
	case config.BackendSQLite:
		driver = db.DriverSQLite
	case config.BackendPostgres:
		driver = db.DriverPostgres
	default:
		return nil, "", nil, fmt.Errorf("%s backend has no SQL schema", cfg.StoreBackend)
	}
	database, err := db.Open(ctx, db.Options{
		Driver:         driver,
		DSN:            cfg.DSN(),
		MaxOpenConns:   cfg.DBMaxOpenConns,
		ConnectTimeout: cfg.DBConnectTimeout,
	}, logger)
	if err != nil {
		return nil, "", nil, err
	}
	return database, driver, logger, nil
}

func parseFamily(raw string) (pricing.Family, error) {
	family, err := pricing.ParseFamily(raw)
	if err != nil {
		return "", fmt.Errorf("%w (want sheet_shutter or garage_shutter)", err)
	}
	return family, nil
}

func won(v int64) string {
	return humanize.Comma(v) + "원"
}
