package handlers

import (
	"context"
	"fmt"
	"net/url"
	"slices"

	"go.uber.org/zap"

	datafeed "github.com/fazecat/squeezescope/Internal/database"
	"github.com/fazecat/squeezescope/Internal/database/watchlist"
	"github.com/fazecat/squeezescope/Internal/types"
	"github.com/fazecat/squeezescope/Internal/utils/config"
	"github.com/fazecat/squeezescope/Internal/utils/formatting"
	"github.com/fazecat/squeezescope/Internal/utils/querystate"
	"github.com/fazecat/squeezescope/Internal/utils/scanner"
	"github.com/fazecat/squeezescope/Internal/utils/scoring"
)

// ScreenRow is a row ready for display.
type ScreenRow struct {
	types.Row
	SqueezeScore float64           `json:"squeezeScore"`
	Category     string            `json:"category"`
	Watched      bool              `json:"watched"`
	Display      map[string]string `json:"display"`
}

type ScreenResult struct {
	State   querystate.ScreenerState `json:"state"`
	Query   string                   `json:"query"`
	Total   int                      `json:"total"`
	Columns []config.ColumnConfig    `json:"columns"`
	Rows    []ScreenRow              `json:"rows"`
}

type DetailView struct {
	Metrics  types.Metrics     `json:"metrics"`
	Score    float64           `json:"squeezeScore"`
	Category string            `json:"category"`
	Watched  bool              `json:"watched"`
	Display  map[string]string `json:"display"`
	// LastPrice is the close of the newest series point, 0 without a series.
	LastPrice float64 `json:"lastPrice"`
}

type WatchlistView struct {
	// Empty is true when nothing is saved, which is not an error.
	Empty bool        `json:"empty"`
	Rows  []ScreenRow `json:"rows"`
	// Missing lists saved tickers absent from the current snapshot.
	Missing []string `json:"missing"`
}

// Screener runs the fetch, filter, sort and score pipeline for the API, the
// terminal menu and the CLI.
type Screener struct {
	source    datafeed.Source
	enricher  *datafeed.AlpacaEnricher
	watchlist *watchlist.Watchlist
	columns   []config.ColumnConfig
	codec     querystate.Codec
	tracker   *datafeed.RequestTracker
	logger    *zap.Logger
}

// NewScreener wires the pipeline. enricher may be nil.
func NewScreener(source datafeed.Source, enricher *datafeed.AlpacaEnricher, wl *watchlist.Watchlist, columns []config.ColumnConfig, logger *zap.Logger) *Screener {
	if len(columns) == 0 {
		columns = config.DefaultColumns()
	}
	return &Screener{
		source:    source,
		enricher:  enricher,
		watchlist: wl,
		columns:   columns,
		codec:     querystate.Codec{AllowComputedSort: true},
		tracker:   datafeed.NewRequestTracker(),
		logger:    logger.Named("screener"),
	}
}

func (s *Screener) Codec() querystate.Codec {
	return s.codec
}

func (s *Screener) Columns() []config.ColumnConfig {
	return append([]config.ColumnConfig(nil), s.columns...)
}

func (s *Screener) Watchlist() *watchlist.Watchlist {
	return s.watchlist
}

// Health reports whether the watchlist store is reachable.
func (s *Screener) Health(ctx context.Context) error {
	if s.watchlist == nil {
		return nil
	}
	return s.watchlist.Ping(ctx)
}

// Screen fetches the snapshot and returns the rows matching state, sorted.
func (s *Screener) Screen(ctx context.Context, state querystate.ScreenerState) (ScreenResult, error) {
	rows, err := s.fetchRows(ctx)
	if err != nil {
		return ScreenResult{}, err
	}

	filtered := scanner.FilterRows(rows, state.Filter())
	sorted := scanner.SortRows(filtered, state.Sort, state.Dir)

	watched := s.watchedSet()
	out := make([]ScreenRow, len(sorted))
	for i, r := range sorted {
		out[i] = s.decorate(r, watched)
	}

	s.logger.Debug("screened",
		zap.String("query", s.codec.Canonical(state)),
		zap.Int("total", len(rows)),
		zap.Int("matched", len(out)))

	return ScreenResult{
		State:   state,
		Query:   s.codec.Canonical(state),
		Total:   len(rows),
		Columns: s.Columns(),
		Rows:    out,
	}, nil
}

// ScreenQuery decodes query values and screens with them.
func (s *Screener) ScreenQuery(ctx context.Context, values url.Values) (ScreenResult, error) {
	return s.Screen(ctx, s.codec.Decode(values))
}

// Detail loads one symbol. The score is recomputed from the metrics; any
// upstream score is ignored.
func (s *Screener) Detail(ctx context.Context, symbol string) (*DetailView, error) {
	return s.detail(ctx, "", symbol)
}

// DetailFor is Detail scoped to a view key. Of several overlapping calls
// with the same key only the newest returns a view; the others return
// ErrSuperseded.
func (s *Screener) DetailFor(ctx context.Context, viewKey, symbol string) (*DetailView, error) {
	return s.detail(ctx, viewKey, symbol)
}

func (s *Screener) detail(ctx context.Context, viewKey, symbol string) (*DetailView, error) {
	var id string
	if viewKey != "" {
		id = s.tracker.Begin(viewKey)
		defer s.tracker.Finish(viewKey, id)
	}

	m, err := s.source.FetchTickerMetrics(ctx, symbol)
	if err != nil {
		return nil, err
	}
	s.enricher.EnrichMetrics(m)
	m.Series = sortedSeries(m.Series)

	if viewKey != "" && !s.tracker.IsCurrent(viewKey, id) {
		s.logger.Debug("discarding stale detail", zap.String("symbol", m.Ticker))
		return nil, ErrSuperseded
	}

	score := scoring.ComputeSqueezeScoreFromMetrics(*m)
	view := &DetailView{
		Metrics:  *m,
		Score:    score,
		Category: scoring.ScoreCategory(score),
		Display: map[string]string{
			"siPublic":     formatting.FormatPercent1(m.SIPublic),
			"siBroad":      formatting.FormatPercent1(m.SIBroad),
			"dtc":          formatting.FormatOneDecimal(m.DTC),
			"rvol30d":      formatting.FormatOneDecimal(m.RVOL30d),
			"squeezeScore": formatting.FormatScore(score),
		},
	}
	if s.watchlist != nil {
		view.Watched = s.watchlist.Has(m.Ticker)
	}
	if n := len(m.Series); n > 0 {
		view.LastPrice = m.Series[n-1].Price
		view.Display["lastPrice"] = formatting.FormatPrice(view.LastPrice)
	}
	return view, nil
}

// WatchlistRows returns the snapshot rows whose ticker is saved, in
// watchlist order.
func (s *Screener) WatchlistRows(ctx context.Context) (WatchlistView, error) {
	var saved []string
	if s.watchlist != nil {
		saved = s.watchlist.List()
	}
	if len(saved) == 0 {
		return WatchlistView{Empty: true, Rows: []ScreenRow{}, Missing: []string{}}, nil
	}

	rows, err := s.fetchRows(ctx)
	if err != nil {
		return WatchlistView{}, err
	}

	byTicker := make(map[string]types.Row, len(rows))
	for _, r := range rows {
		byTicker[r.Ticker] = r
	}

	watched := s.watchedSet()
	view := WatchlistView{Rows: []ScreenRow{}, Missing: []string{}}
	for _, t := range saved {
		r, ok := byTicker[t]
		if !ok {
			view.Missing = append(view.Missing, t)
			continue
		}
		view.Rows = append(view.Rows, s.decorate(r, watched))
	}
	return view, nil
}

func (s *Screener) fetchRows(ctx context.Context) ([]types.Row, error) {
	rows, err := s.source.FetchTickers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load screener rows: %w", err)
	}
	s.enricher.EnrichRows(rows)
	return rows, nil
}

func (s *Screener) watchedSet() map[string]bool {
	if s.watchlist == nil {
		return map[string]bool{}
	}
	return s.watchlist.Set()
}

func (s *Screener) decorate(r types.Row, watched map[string]bool) ScreenRow {
	score := scoring.ComputeSqueezeScore(r)
	return ScreenRow{
		Row:          r,
		SqueezeScore: score,
		Category:     scoring.ScoreCategory(score),
		Watched:      watched[r.Ticker],
		Display:      s.display(r),
	}
}

// display formats each configured column. Columns with no matching field
// are left out.
func (s *Screener) display(r types.Row) map[string]string {
	out := make(map[string]string, len(s.columns))
	for _, col := range s.columns {
		switch col.Key {
		case string(scanner.SortTicker):
			out[col.Key] = r.Ticker
		case "catalyst":
			out[col.Key] = catalystLabel(r.Catalyst)
		default:
			if v, ok := scanner.FieldValue(r, scanner.SortKey(col.Key)); ok {
				out[col.Key] = formatting.Format(col.Format, v)
			}
		}
	}
	return out
}

// sortedSeries returns a copy ordered oldest first. Points whose date does
// not parse sort first and keep their relative order.
func sortedSeries(series []types.SeriesPoint) []types.SeriesPoint {
	out := slices.Clone(series)
	slices.SortStableFunc(out, func(a, b types.SeriesPoint) int {
		return formatting.ParseDate(a.T).Compare(formatting.ParseDate(b.T))
	})
	return out
}

func catalystLabel(on bool) string {
	if on {
		return "Catalyst"
	}
	return formatting.Missing
}
