package main

import (
	"context"

	inventoryapp "github.com/stocker/backend/internal/application/inventory"
	"github.com/stocker/backend/internal/domain/catalog"
	"github.com/stocker/backend/internal/domain/identity"
	"github.com/stocker/backend/internal/domain/inventory"
	"github.com/stocker/backend/internal/domain/partner"
	"github.com/stocker/backend/internal/infrastructure/config"
	"github.com/stocker/backend/internal/infrastructure/logger"
	"github.com/stocker/backend/internal/infrastructure/persistence"
	"github.com/stocker/backend/internal/infrastructure/persistence/memory"
	"github.com/stocker/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// store bundles the repositories of the configured backend
type store struct {
	categories catalog.CategoryRepository
	products   catalog.ProductRepository
	suppliers  partner.SupplierRepository
	ledger     inventory.StockLedgerRepository
	users      identity.UserRepository
	txScope    inventoryapp.TransactionScope
	ping       func(ctx context.Context) error
	close      func() error
}

func openStore(cfg *config.Config, log *zap.Logger) (*store, error) {
	if cfg.Database.Driver == config.DriverMemory {
		log.Warn("Using the in-memory store; data is lost on restart")
		m := memory.NewStore()
		return &store{
			categories: m.Categories(),
			products:   m.Products(),
			suppliers:  m.Suppliers(),
			ledger:     m.Ledger(),
			users:      m.Users(),
			txScope:    m,
			close:      func() error { return nil },
		}, nil
	}

	tracingCfg := telemetry.DefaultDBTracingConfig()
	tracingCfg.Enabled = cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled
	tracingCfg.SlowQueryThresh = cfg.Telemetry.DBSlowQueryThresh
	tracingCfg.DBSystem = cfg.Database.Driver

	// sqlite has no migration files; its schema always comes from the models
	dbCfg := cfg.Database
	if dbCfg.Driver == config.DriverSQLite {
		dbCfg.AutoMigrate = true
	}

	db, err := persistence.NewDatabase(&dbCfg,
		persistence.WithLogger(log, logger.MapGormLogLevel(cfg.Log.Level)),
		persistence.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh),
		persistence.WithPlugins(telemetry.NewDBTracingPlugin(tracingCfg, log)),
	)
	if err != nil {
		return nil, err
	}

	if stats, err := db.Stats(); err == nil {
		log.Info("Database connected",
			zap.String("driver", db.Driver),
			zap.Int("max_open_connections", stats.MaxOpenConnections),
			zap.Int("open_connections", stats.OpenConnections),
		)
	}

	return &store{
		categories: persistence.NewGormCategoryRepository(db.DB),
		products:   persistence.NewGormProductRepository(db.DB),
		suppliers:  persistence.NewGormSupplierRepository(db.DB),
		ledger:     persistence.NewGormStockLedgerRepository(db.DB),
		users:      persistence.NewGormUserRepository(db.DB),
		txScope:    persistence.NewGormTransactionScope(db.DB),
		ping:       db.Ping,
		close:      db.Close,
	}, nil
}
