package scoring

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fazecat/squeezescope/Internal/types"
)

func makeRow(partial func(r *types.Row)) types.Row {
	row := types.Row{
		Ticker: "TEST",
		Price:  10,
		RVOL:   1,
	}
	if partial != nil {
		partial(&row)
	}
	return row
}

func TestComputeSqueezeScore_LowRiskSetup(t *testing.T) {
	row := makeRow(func(r *types.Row) { r.RVOL = 0 })
	assert.Equal(t, 0.0, ComputeSqueezeScore(row))
}

func TestComputeSqueezeScore_MidRange(t *testing.T) {
	row := makeRow(func(r *types.Row) {
		r.SIPublic = 25
		r.SIBroad = 25
		r.DTC = 5
		r.RVOL = 2.5
	})

	assert.InDelta(t, 50.0, ComputeSqueezeScore(row), 1e-5)
}

func TestComputeSqueezeScore_CatalystDelta(t *testing.T) {
	without := makeRow(func(r *types.Row) {
		r.SIPublic = 25
		r.SIBroad = 25
		r.DTC = 5
		r.RVOL = 2.5
	})
	with := without
	with.Catalyst = true

	base := ComputeSqueezeScore(without)
	boosted := ComputeSqueezeScore(with)

	assert.Greater(t, boosted, base)
	assert.InDelta(t, 5.0, boosted-base, 1e-9)
}

func TestComputeSqueezeScore_CatalystAbsorbedByClamp(t *testing.T) {
	row := makeRow(func(r *types.Row) {
		r.SIPublic = 100
		r.SIBroad = 100
		r.DTC = 50
		r.RVOL = 50
	})
	withCatalyst := row
	withCatalyst.Catalyst = true

	assert.Equal(t, 100.0, ComputeSqueezeScore(row))
	assert.Equal(t, 100.0, ComputeSqueezeScore(withCatalyst))
}

func TestComputeSqueezeScore_Saturation(t *testing.T) {
	row := makeRow(func(r *types.Row) {
		r.SIPublic = 80
		r.SIBroad = 90
		r.DTC = 20
		r.RVOL = 10
		r.Catalyst = true
	})

	assert.Equal(t, 100.0, ComputeSqueezeScore(row))
}

func TestComputeSqueezeScore_Bounds(t *testing.T) {
	values := []float64{math.NaN(), math.Inf(1), math.Inf(-1), -1000, -1, 0, 0.5, 3, 25, 49.9, 50, 51, 1e9}

	for _, si := range values {
		for _, dtc := range values {
			for _, rvol := range values {
				for _, catalyst := range []bool{false, true} {
					row := types.Row{Ticker: "X", SIPublic: si, SIBroad: si, DTC: dtc, RVOL: rvol, Catalyst: catalyst}
					score := ComputeSqueezeScore(row)
					if math.IsNaN(score) || score < 0 || score > 100 {
						t.Fatalf("score %v out of bounds for %+v", score, row)
					}
				}
			}
		}
	}
}

func TestComputeSqueezeScore_Monotonic(t *testing.T) {
	steps := []float64{math.Inf(-1), -5, 0, 1, 2.5, 5, 10, 20, 40, 50, 75, 200, 1e300, math.Inf(1)}

	fields := map[string]func(r *types.Row, v float64){
		"siPublic": func(r *types.Row, v float64) { r.SIPublic = v },
		"siBroad":  func(r *types.Row, v float64) { r.SIBroad = v },
		"dtc":      func(r *types.Row, v float64) { r.DTC = v },
		"rvol":     func(r *types.Row, v float64) { r.RVOL = v },
	}

	for name, set := range fields {
		t.Run(name, func(t *testing.T) {
			prev := -1.0
			for _, v := range steps {
				row := types.Row{Ticker: "X", SIPublic: 10, SIBroad: 10, DTC: 2, RVOL: 1.5}
				set(&row, v)
				score := ComputeSqueezeScore(row)
				assert.GreaterOrEqual(t, score, prev, "%s=%v decreased the score", name, v)
				prev = score
			}
		})
	}
}

func TestComputeSqueezeScore_InfiniteSignalsSaturate(t *testing.T) {
	huge := types.Row{Ticker: "X", SIPublic: 1e300, SIBroad: 10, DTC: 2, RVOL: 1}
	inf := huge
	inf.SIPublic = math.Inf(1)
	assert.Equal(t, ComputeSqueezeScore(huge), ComputeSqueezeScore(inf))

	all := types.Row{Ticker: "X", SIPublic: math.Inf(1), SIBroad: math.Inf(1), DTC: math.Inf(1), RVOL: math.Inf(1)}
	assert.Equal(t, 100.0, ComputeSqueezeScore(all))

	neg := types.Row{Ticker: "X", SIPublic: math.Inf(-1), SIBroad: math.Inf(-1), DTC: math.Inf(-1), RVOL: math.Inf(-1)}
	assert.Equal(t, 0.0, ComputeSqueezeScore(neg))
}

func TestComputeSqueezeScoreFromMetrics_AgreesWithRow(t *testing.T) {
	metrics := types.Metrics{Ticker: "GME", SIPublic: 22.5, SIBroad: 31, DTC: 4.2, RVOL30d: 3.3}

	row := types.Row{Ticker: "GME", SIPublic: 22.5, SIBroad: 31, DTC: 4.2, RVOL: 1}

	assert.Equal(t, ComputeSqueezeScore(row), ComputeSqueezeScoreFromMetrics(metrics))
}

func TestComputeSqueezeScoreFromMetrics_IgnoresUpstreamScore(t *testing.T) {
	upstream := 99.0
	metrics := types.Metrics{Ticker: "AMC", SqueezeScore: &upstream}

	// rvol 1 of 5 -> 0.2 * 0.2 * 100
	assert.InDelta(t, 4.0, ComputeSqueezeScoreFromMetrics(metrics), 1e-9)
}

func TestScoreCategory(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{100, "🔴 Extreme"},
		{80, "🔴 Extreme"},
		{65, "🟠 High"},
		{40, "🟡 Elevated"},
		{20, "🟢 Moderate"},
		{19.99, "⚪ Low"},
		{0, "⚪ Low"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ScoreCategory(tt.score), "score %v", tt.score)
	}
}
