package handlers

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	datafeed "github.com/fazecat/squeezescope/Internal/database"
	"github.com/fazecat/squeezescope/Internal/database/watchlist"
	"github.com/fazecat/squeezescope/Internal/mocks"
	"github.com/fazecat/squeezescope/Internal/utils/config"
)

// NewSource picks the fixture source or the HTTP client per cfg.Upstream.
func NewSource(cfg *config.Config, logger *zap.Logger) datafeed.Source {
	if cfg.Upstream.Mock {
		logger.Info("using embedded fixtures as upstream")
		return mocks.NewFixtureSource()
	}
	logger.Info("using upstream", zap.String("base_url", cfg.Upstream.BaseURL))
	return datafeed.NewClient(cfg.Upstream, logger)
}

// OpenStore returns the watchlist store for cfg.Watchlist.Driver. The
// returned close func is never nil.
func OpenStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (watchlist.Store, func(), error) {
	max := watchlist.Limit(cfg.Watchlist.MaxEntries)

	switch cfg.Watchlist.Driver {
	case config.DriverPostgres:
		db, err := datafeed.OpenDatabase(ctx, datafeed.DatabaseConfigFromEnv())
		if err != nil {
			return nil, func() {}, err
		}
		logger.Info("watchlist stored in postgres")
		return watchlist.NewPostgresStore(db, max), closeDB(db, logger), nil
	case config.DriverMemory:
		return watchlist.NewMemoryStore(max), func() {}, nil
	case config.DriverFile, "":
		logger.Info("watchlist stored in file", zap.String("path", cfg.Watchlist.Path))
		return watchlist.NewFileStore(cfg.Watchlist.Path, max, logger), func() {}, nil
	default:
		return nil, func() {}, fmt.Errorf("unknown watchlist driver %q", cfg.Watchlist.Driver)
	}
}

func closeDB(db *sql.DB, logger *zap.Logger) func() {
	return func() {
		if err := db.Close(); err != nil {
			logger.Warn("failed to close database", zap.Error(err))
		}
	}
}

// Bootstrap builds a Screener from configuration. Call the returned func on
// shutdown.
func Bootstrap(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Screener, func(), error) {
	store, closeStore, err := OpenStore(ctx, cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("open watchlist store: %w", err)
	}

	wl, err := watchlist.Load(ctx, store, watchlist.Limit(cfg.Watchlist.MaxEntries))
	if err != nil {
		closeStore()
		return nil, nil, fmt.Errorf("load watchlist: %w", err)
	}

	enricher, err := datafeed.NewAlpacaEnricher(cfg.Alpaca, logger)
	if err != nil {
		logger.Warn("alpaca enrichment disabled", zap.Error(err))
		enricher = nil
	}

	return NewScreener(NewSource(cfg, logger), enricher, wl, cfg.Screener.Columns, logger), closeStore, nil
}
