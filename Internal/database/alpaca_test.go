package datafeed

import (
	"errors"
	"testing"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fazecat/squeezescope/Internal/types"
	"github.com/fazecat/squeezescope/Internal/utils"
	"github.com/fazecat/squeezescope/Internal/utils/config"
)

type fakeMarketData struct {
	snapshots map[string]*marketdata.Snapshot
	bars      []marketdata.Bar
	err       error
	barReq    marketdata.GetBarsRequest
}

func (f *fakeMarketData) GetSnapshots(symbols []string, req marketdata.GetSnapshotRequest) (map[string]*marketdata.Snapshot, error) {
	return f.snapshots, f.err
}

func (f *fakeMarketData) GetBars(symbol string, req marketdata.GetBarsRequest) ([]marketdata.Bar, error) {
	f.barReq = req
	return f.bars, f.err
}

func newTestEnricher(md MarketData) *AlpacaEnricher {
	e := NewAlpacaEnricherWith(md, config.AlpacaConfig{Feed: "iex", SeriesDays: 3}, zap.NewNop())
	e.retry = utils.RetryConfig{MaxRetries: 0}
	e.now = func() time.Time { return time.Date(2024, 6, 3, 20, 0, 0, 0, time.UTC) }
	return e
}

func TestEnrichRows_OverwritesPriceAndChange(t *testing.T) {
	md := &fakeMarketData{snapshots: map[string]*marketdata.Snapshot{
		"GME": {
			LatestTrade:  &marketdata.Trade{Price: 22},
			PrevDailyBar: &marketdata.Bar{Close: 20},
		},
		"AMC": {LatestTrade: &marketdata.Trade{Price: 5}},
	}}
	rows := []types.Row{
		{Ticker: "GME", Price: 1, PctChange: 1},
		{Ticker: "AMC", Price: 1, PctChange: 3},
		{Ticker: "BB", Price: 4, PctChange: -2},
	}

	newTestEnricher(md).EnrichRows(rows)

	assert.Equal(t, 22.0, rows[0].Price)
	assert.InDelta(t, 10.0, rows[0].PctChange, 1e-9)
	assert.Equal(t, 5.0, rows[1].Price)
	assert.Equal(t, 3.0, rows[1].PctChange)
	assert.Equal(t, types.Row{Ticker: "BB", Price: 4, PctChange: -2}, rows[2])
}

func TestEnrichRows_FailureKeepsUpstream(t *testing.T) {
	rows := []types.Row{{Ticker: "GME", Price: 1}}

	newTestEnricher(&fakeMarketData{err: errors.New("403")}).EnrichRows(rows)

	assert.Equal(t, 1.0, rows[0].Price)
}

func TestEnricher_NilIsNoop(t *testing.T) {
	var e *AlpacaEnricher
	rows := []types.Row{{Ticker: "GME", Price: 1}}

	e.EnrichRows(rows)
	e.EnrichMetrics(&types.Metrics{Ticker: "GME"})
	series, err := e.Series("GME", 5)

	assert.Equal(t, 1.0, rows[0].Price)
	assert.NoError(t, err)
	assert.Nil(t, series)
}

func TestNewAlpacaEnricher_Disabled(t *testing.T) {
	e, err := NewAlpacaEnricher(config.AlpacaConfig{Enabled: false}, zap.NewNop())
	assert.NoError(t, err)
	assert.Nil(t, e)
}

func TestNewAlpacaEnricher_MissingKeys(t *testing.T) {
	t.Setenv("ALPACA_API_KEY", "")
	t.Setenv("ALPACA_API_SECRET", "")

	_, err := NewAlpacaEnricher(config.AlpacaConfig{Enabled: true}, zap.NewNop())
	assert.Error(t, err)
}

func TestSeries_TrimsToDaysOldestFirst(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, 5, d, 4, 0, 0, 0, time.UTC) }
	md := &fakeMarketData{bars: []marketdata.Bar{
		{Timestamp: day(28), Close: 10, Volume: 100},
		{Timestamp: day(29), Close: 11, Volume: 200},
		{Timestamp: day(30), Close: 12, Volume: 300},
		{Timestamp: day(31), Close: 13, Volume: 400},
	}}

	series, err := newTestEnricher(md).Series("GME", 0)
	require.NoError(t, err)

	assert.Equal(t, []types.SeriesPoint{
		{T: "2024-05-29", Price: 11, Vol: 200},
		{T: "2024-05-30", Price: 12, Vol: 300},
		{T: "2024-05-31", Price: 13, Vol: 400},
	}, series)
	assert.Equal(t, marketdata.OneDay, md.barReq.TimeFrame)
	assert.True(t, md.barReq.Start.Before(md.barReq.End))
}

func TestEnrichMetrics_KeepsSeriesOnError(t *testing.T) {
	m := &types.Metrics{Ticker: "GME", Series: []types.SeriesPoint{{T: "2024-01-02", Price: 1}}}

	newTestEnricher(&fakeMarketData{err: errors.New("down")}).EnrichMetrics(m)

	assert.Len(t, m.Series, 1)
}
