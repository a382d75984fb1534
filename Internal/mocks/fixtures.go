// Package mocks serves an offline copy of the upstream ticker API from
// embedded fixtures.
package mocks

import (
	"embed"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/fazecat/squeezescope/Internal/types"
)

//go:embed data/tickers.json data/metrics.json
var dataFS embed.FS

const seriesDays = 60

type Fixtures struct {
	rows    []types.Row
	metrics map[string]types.Metrics
	known   map[string]bool
	// Now anchors the last day of synthesized series.
	Now func() time.Time
}

// Load parses the embedded fixture files.
func Load() (*Fixtures, error) {
	var rows []types.Row
	if err := readJSON("data/tickers.json", &rows); err != nil {
		return nil, err
	}
	var metrics []types.Metrics
	if err := readJSON("data/metrics.json", &metrics); err != nil {
		return nil, err
	}

	f := &Fixtures{
		rows:    rows,
		metrics: make(map[string]types.Metrics, len(metrics)),
		known:   make(map[string]bool, len(rows)),
		Now:     time.Now,
	}
	for _, r := range rows {
		f.known[normalize(r.Ticker)] = true
	}
	for _, m := range metrics {
		f.metrics[normalize(m.Ticker)] = m
	}
	return f, nil
}

// MustLoad is Load for callers that cannot continue without fixtures.
func MustLoad() *Fixtures {
	f, err := Load()
	if err != nil {
		panic(err)
	}
	return f
}

func readJSON(name string, dst any) error {
	data, err := dataFS.ReadFile(name)
	if err != nil {
		return fmt.Errorf("read fixture %s: %w", name, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("parse fixture %s: %w", name, err)
	}
	return nil
}

func normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Rows returns a copy of the ticker snapshot.
func (f *Fixtures) Rows() []types.Row {
	out := make([]types.Row, len(f.rows))
	copy(out, f.rows)
	return out
}

// Lookup returns metrics for a symbol that appears in either fixture file.
// Listed tickers without a metrics fixture get synthesized metrics.
func (f *Fixtures) Lookup(symbol string) (*types.Metrics, bool) {
	target := normalize(symbol)
	if _, ok := f.metrics[target]; !ok && !f.known[target] {
		return nil, false
	}
	return f.FindOrCreateMetrics(target), true
}

// FindOrCreateMetrics prefers the static fixture and otherwise synthesizes
// metrics. Synthesized values depend only on the symbol and f.Now.
func (f *Fixtures) FindOrCreateMetrics(symbol string) *types.Metrics {
	target := normalize(symbol)
	if m, ok := f.metrics[target]; ok {
		m.Series = append([]types.SeriesPoint(nil), m.Series...)
		return &m
	}
	return makeMetrics(target, f.Now())
}

func makeMetrics(ticker string, now time.Time) *types.Metrics {
	rng := rand.New(rand.NewSource(seedFor(ticker)))
	base := 50 + rng.Float64()*150

	score := math.Floor(rng.Float64() * 100)
	return &types.Metrics{
		Ticker:       ticker,
		SIPublic:     round(rng.Float64()*20, 1),
		SIBroad:      round(rng.Float64()*30, 1),
		DTC:          round(rng.Float64()*5, 1),
		RVOL30d:      round(0.8+rng.Float64()*2.4, 1),
		SqueezeScore: &score,
		Series:       makeSeries(rng, seriesDays, base, now),
	}
}

// makeSeries walks the price by up to one dollar a day, never below 1.
func makeSeries(rng *rand.Rand, days int, startPrice float64, now time.Time) []types.SeriesPoint {
	out := make([]types.SeriesPoint, 0, days)
	price := startPrice
	today := now.UTC().Truncate(24 * time.Hour)

	for i := days - 1; i >= 0; i-- {
		delta := (rng.Float64() - 0.5) * 2
		price = math.Max(1, price+delta)

		out = append(out, types.SeriesPoint{
			T:     today.AddDate(0, 0, -i).Format("2006-01-02"),
			Price: round(price, 2),
			Vol:   int64(5_000 + rng.Intn(25_000)),
		})
	}
	return out
}

func seedFor(ticker string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(ticker))
	return int64(h.Sum64())
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
