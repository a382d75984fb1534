package mocks

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	datafeed "github.com/fazecat/squeezescope/Internal/database"
	"github.com/fazecat/squeezescope/Internal/types"
)

func fixedFixtures(t *testing.T) *Fixtures {
	t.Helper()
	f, err := Load()
	require.NoError(t, err)
	f.Now = func() time.Time { return time.Date(2024, 6, 3, 15, 0, 0, 0, time.UTC) }
	return f
}

func TestLoad(t *testing.T) {
	f := fixedFixtures(t)

	rows := f.Rows()
	require.NotEmpty(t, rows)
	seen := map[string]bool{}
	for _, r := range rows {
		assert.False(t, seen[r.Ticker], "duplicate %s", r.Ticker)
		seen[r.Ticker] = true
	}

	rows[0].Ticker = "CHANGED"
	assert.NotEqual(t, "CHANGED", f.Rows()[0].Ticker)
}

func TestFindOrCreateMetrics_Fixture(t *testing.T) {
	m := fixedFixtures(t).FindOrCreateMetrics(" gme ")

	assert.Equal(t, "GME", m.Ticker)
	require.NotNil(t, m.SqueezeScore)
	assert.Equal(t, 61.0, *m.SqueezeScore)
	assert.Len(t, m.Series, 5)
}

func TestFindOrCreateMetrics_SynthesizedIsDeterministic(t *testing.T) {
	f := fixedFixtures(t)

	a := f.FindOrCreateMetrics("ZZZZ")
	b := f.FindOrCreateMetrics("zzzz")

	assert.Equal(t, a, b)
	assert.Equal(t, "ZZZZ", a.Ticker)
	require.Len(t, a.Series, seriesDays)
	assert.Equal(t, "2024-06-03", a.Series[len(a.Series)-1].T)
	for i, p := range a.Series {
		assert.GreaterOrEqual(t, p.Price, 1.0)
		assert.GreaterOrEqual(t, p.Vol, int64(5000))
		if i > 0 {
			assert.Less(t, a.Series[i-1].T, p.T)
		}
	}
	assert.GreaterOrEqual(t, a.SIPublic, 0.0)
	assert.LessOrEqual(t, a.SIPublic, 20.0)
	assert.GreaterOrEqual(t, a.RVOL30d, 0.8)
}

func TestLookup(t *testing.T) {
	f := fixedFixtures(t)

	_, ok := f.Lookup("GME")
	assert.True(t, ok)

	// listed but no metrics fixture
	m, ok := f.Lookup("AMC")
	assert.True(t, ok)
	assert.Len(t, m.Series, seriesDays)

	_, ok = f.Lookup("NOPE")
	assert.False(t, ok)
}

func TestRouter(t *testing.T) {
	srv := httptest.NewServer(fixedFixtures(t).Router())
	defer srv.Close()

	tests := []struct {
		name   string
		path   string
		status int
		check  func(t *testing.T, body []byte)
	}{
		{"bare list", "/tickers", http.StatusOK, func(t *testing.T, body []byte) {
			var payload types.RowsPayload
			require.NoError(t, json.Unmarshal(body, &payload))
			assert.Equal(t, types.PayloadBare, payload.Kind)
			assert.NotEmpty(t, payload.Rows)
		}},
		{"wrapped list", "/tickers?shape=wrapped", http.StatusOK, func(t *testing.T, body []byte) {
			var payload types.RowsPayload
			require.NoError(t, json.Unmarshal(body, &payload))
			assert.Equal(t, types.PayloadWrapped, payload.Kind)
		}},
		{"metrics", "/tickers/TSLA", http.StatusOK, func(t *testing.T, body []byte) {
			var m types.Metrics
			require.NoError(t, json.Unmarshal(body, &m))
			assert.Equal(t, "TSLA", m.Ticker)
		}},
		{"unknown symbol", "/tickers/NOPE", http.StatusNotFound, func(t *testing.T, body []byte) {
			assert.JSONEq(t, `{"message":"Not found"}`, string(body))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Get(srv.URL + tt.path)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.status, resp.StatusCode)
			var raw json.RawMessage
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&raw))
			tt.check(t, raw)
		})
	}
}

func TestFixtureSource(t *testing.T) {
	src := &FixtureSource{Fixtures: fixedFixtures(t)}
	ctx := context.Background()

	rows, err := src.FetchTickers(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, rows)

	m, err := src.FetchTickerMetrics(ctx, " bynd")
	require.NoError(t, err)
	assert.Equal(t, "BYND", m.Ticker)

	_, err = src.FetchTickerMetrics(ctx, "NOPE")
	assert.ErrorIs(t, err, datafeed.ErrNotFound)

	_, err = src.FetchTickerMetrics(ctx, "  ")
	assert.ErrorIs(t, err, datafeed.ErrEmptySymbol)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = src.FetchTickers(cancelled)
	assert.ErrorIs(t, err, context.Canceled)
}
