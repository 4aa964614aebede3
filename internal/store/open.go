package store

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/Simplici0/shutterquote/internal/config"
	"github.com/Simplici0/shutterquote/internal/db"
	"github.com/Simplici0/shutterquote/internal/migrations"
	"github.com/Simplici0/shutterquote/internal/pricing"
	"github.com/Simplici0/shutterquote/internal/seed"
)

// TableStore is the operation set shared by SQLStore and RedisStore.
type TableStore interface {
	ReadCells(ctx context.Context, family pricing.Family) ([]pricing.Cell, error)
	UpsertCell(ctx context.Context, family pricing.Family, wIdx, hIdx int, price int64) error
	ReadCoefficients(ctx context.Context) (pricing.CoefficientsPatch, error)
	WriteCoefficients(ctx context.Context, patch pricing.CoefficientsPatch) error
}

// Backend is an opened store plus the resources behind it.
type Backend struct {
	TableStore
	// DB is nil for the redis backend.
	DB     *sql.DB
	Driver string
	close  func() error
}

// Close releases the backend's connections.
func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// Open connects the backend selected by cfg. SQL backends are migrated and
// seeded when cfg.ShouldMigrate().
func Open(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Backend, error) {
	switch cfg.StoreBackend {
	case config.BackendSQLite, config.BackendPostgres:
		return openSQL(ctx, cfg, logger)
	case config.BackendRedis:
		return openRedis(ctx, cfg, logger)
	}
	return nil, fmt.Errorf("unsupported store backend %q", cfg.StoreBackend)
}

func openSQL(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Backend, error) {
	driver := db.DriverSQLite
	if cfg.StoreBackend == config.BackendPostgres {
		driver = db.DriverPostgres
	}

	database, err := db.Open(ctx, db.Options{
		Driver:         driver,
		DSN:            cfg.DSN(),
		MaxOpenConns:   cfg.DBMaxOpenConns,
		ConnectTimeout: cfg.DBConnectTimeout,
	}, logger)
	if err != nil {
		return nil, err
	}

	if cfg.ShouldMigrate() {
		if err := migrations.Up(ctx, database, db.Dialect(driver)); err != nil {
			database.Close()
			return nil, fmt.Errorf("run database migrations: %w", err)
		}
		stats, err := seed.Run(ctx, database, driver, seed.Options{DefaultCells: cfg.SeedDefaultCells})
		if err != nil {
			database.Close()
			return nil, fmt.Errorf("seed database: %w", err)
		}
		logger.Info("database ready", zap.String("driver", driver), zap.Int("seed_inserts", stats.Inserts))
	}

	return &Backend{
		TableStore: NewSQLStore(database, driver),
		DB:         database,
		Driver:     driver,
		close:      database.Close,
	}, nil
}

func openRedis(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Backend, error) {
	rs := NewRedisStore(RedisOptions{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		Prefix:   cfg.RedisKeyPrefix,
	})
	if err := rs.Ping(ctx); err != nil {
		rs.Close()
		return nil, err
	}
	logger.Info("redis store ready", zap.String("addr", cfg.RedisAddr), zap.String("prefix", cfg.RedisKeyPrefix))

	return &Backend{
		TableStore: rs,
		Driver:     config.BackendRedis,
		close:      rs.Close,
	}, nil
}
