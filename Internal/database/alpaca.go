package datafeed

import (
	"fmt"
	"os"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"go.uber.org/zap"

	"github.com/fazecat/squeezescope/Internal/types"
	"github.com/fazecat/squeezescope/Internal/utils"
	"github.com/fazecat/squeezescope/Internal/utils/config"
)

// MarketData is the subset of the Alpaca market data client used here.
type MarketData interface {
	GetSnapshots(symbols []string, req marketdata.GetSnapshotRequest) (map[string]*marketdata.Snapshot, error)
	GetBars(symbol string, req marketdata.GetBarsRequest) ([]marketdata.Bar, error)
}

// AlpacaEnricher overlays live prices and daily history from Alpaca on top
// of the upstream snapshot. Failures leave the upstream values untouched.
type AlpacaEnricher struct {
	md     MarketData
	feed   marketdata.Feed
	days   int
	retry  utils.RetryConfig
	logger *zap.Logger
	now    func() time.Time
}

// NewAlpacaEnricher returns nil when enrichment is disabled or the API keys
// are missing; a nil enricher is a no-op.
func NewAlpacaEnricher(cfg config.AlpacaConfig, logger *zap.Logger) (*AlpacaEnricher, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	apiKey := os.Getenv("ALPACA_API_KEY")
	secretKey := os.Getenv("ALPACA_API_SECRET")
	if apiKey == "" || secretKey == "" {
		return nil, fmt.Errorf("ALPACA_API_KEY or ALPACA_API_SECRET not set")
	}

	client := marketdata.NewClient(marketdata.ClientOpts{
		APIKey:    apiKey,
		APISecret: secretKey,
	})
	return NewAlpacaEnricherWith(client, cfg, logger), nil
}

func NewAlpacaEnricherWith(md MarketData, cfg config.AlpacaConfig, logger *zap.Logger) *AlpacaEnricher {
	days := cfg.SeriesDays
	if days <= 0 {
		days = 60
	}
	return &AlpacaEnricher{
		md:     md,
		feed:   marketdata.Feed(cfg.Feed),
		days:   days,
		retry:  utils.DefaultRetryConfig(),
		logger: logger.Named("alpaca"),
		now:    time.Now,
	}
}

// EnrichRows replaces Price and PctChange in place from Alpaca snapshots:
// latest trade against the previous daily close.
func (e *AlpacaEnricher) EnrichRows(rows []types.Row) {
	if e == nil || len(rows) == 0 {
		return
	}

	symbols := make([]string, len(rows))
	for i, r := range rows {
		symbols[i] = r.Ticker
	}

	var snapshots map[string]*marketdata.Snapshot
	err := utils.RetryWithBackoff(func() error {
		var err error
		snapshots, err = e.md.GetSnapshots(symbols, marketdata.GetSnapshotRequest{Feed: e.feed})
		return err
	}, e.retry)
	if err != nil {
		e.logger.Warn("snapshot enrichment failed, keeping upstream prices", zap.Error(err))
		return
	}

	updated := 0
	for i := range rows {
		snap, ok := snapshots[rows[i].Ticker]
		if !ok || snap == nil || snap.LatestTrade == nil {
			continue
		}
		rows[i].Price = snap.LatestTrade.Price
		if snap.PrevDailyBar != nil && snap.PrevDailyBar.Close > 0 {
			prev := snap.PrevDailyBar.Close
			rows[i].PctChange = (snap.LatestTrade.Price - prev) / prev * 100
		}
		updated++
	}
	e.logger.Debug("enriched rows", zap.Int("updated", updated), zap.Int("total", len(rows)))
}

// Series returns up to days daily points for symbol, oldest first.
func (e *AlpacaEnricher) Series(symbol string, days int) ([]types.SeriesPoint, error) {
	if e == nil {
		return nil, nil
	}
	if days <= 0 {
		days = e.days
	}

	end := e.now().UTC()
	// calendar days, padded for weekends and holidays
	start := end.AddDate(0, 0, -days*7/5-7)

	var bars []marketdata.Bar
	err := utils.RetryWithBackoff(func() error {
		var err error
		bars, err = e.md.GetBars(symbol, marketdata.GetBarsRequest{
			TimeFrame: marketdata.OneDay,
			Start:     start,
			End:       end,
			Feed:      e.feed,
		})
		return err
	}, e.retry)
	if err != nil {
		return nil, fmt.Errorf("alpaca bars for %s: %w", symbol, err)
	}

	if len(bars) > days {
		bars = bars[len(bars)-days:]
	}
	series := make([]types.SeriesPoint, len(bars))
	for i, b := range bars {
		series[i] = types.SeriesPoint{
			T:     b.Timestamp.UTC().Format("2006-01-02"),
			Price: b.Close,
			Vol:   int64(b.Volume),
		}
	}
	return series, nil
}

// EnrichMetrics swaps in the Alpaca daily series when one is available.
func (e *AlpacaEnricher) EnrichMetrics(m *types.Metrics) {
	if e == nil || m == nil {
		return
	}
	series, err := e.Series(m.Ticker, len(m.Series))
	if err != nil {
		e.logger.Warn("series enrichment failed, keeping upstream series",
			zap.String("symbol", m.Ticker), zap.Error(err))
		return
	}
	if len(series) > 0 {
		m.Series = series
	}
}
