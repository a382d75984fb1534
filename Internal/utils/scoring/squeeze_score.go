package scoring

import (
	"github.com/fazecat/squeezescope/Internal/types"
	"github.com/fazecat/squeezescope/Internal/utils"
)

// Saturation caps: values at or above these normalize to 1.
const (
	SICap   = 50.0 // % of float
	DTCCap  = 10.0 // days
	RVOLCap = 5.0  // x average volume
)

// Signal weights, summing to 1.
const (
	ShortInterestWeight = 0.5
	DaysToCoverWeight   = 0.3
	RelativeVolWeight   = 0.2
)

const CatalystBoost = 0.05

// ComputeSqueezeScore returns a 0-100 composite of short interest,
// days-to-cover, relative volume and the catalyst flag. NaN signals count as
// 0 and infinite ones saturate.
func ComputeSqueezeScore(row types.Row) float64 {
	siPublicNorm := utils.Clamp01(row.SIPublic / SICap)
	siBroadNorm := utils.Clamp01(row.SIBroad / SICap)
	dtcNorm := utils.Clamp01(row.DTC / DTCCap)
	rvolNorm := utils.Clamp01(row.RVOL / RVOLCap)

	siScore := (siPublicNorm + siBroadNorm) / 2

	base := siScore*ShortInterestWeight +
		dtcNorm*DaysToCoverWeight +
		rvolNorm*RelativeVolWeight

	boost := 0.0
	if row.Catalyst {
		boost = CatalystBoost
	}

	return utils.Clamp((base+boost)*100, 0, 100)
}

// ComputeSqueezeScoreFromMetrics scores the detail record, which carries no
// live rvol or catalyst: rvol is held neutral at 1 and catalyst off.
func ComputeSqueezeScoreFromMetrics(m types.Metrics) float64 {
	return ComputeSqueezeScore(RowFromMetrics(m))
}

func RowFromMetrics(m types.Metrics) types.Row {
	return types.Row{
		Ticker:    m.Ticker,
		Price:     0,
		PctChange: 0,
		SIPublic:  m.SIPublic,
		SIBroad:   m.SIBroad,
		DTC:       m.DTC,
		RVOL:      1,
		Catalyst:  false,
	}
}

func ScoreCategory(score float64) string {
	if score >= 80 {
		return "🔴 Extreme"
	}
	if score >= 60 {
		return "🟠 High"
	}
	if score >= 40 {
		return "🟡 Elevated"
	}
	if score >= 20 {
		return "🟢 Moderate"
	}
	return "⚪ Low"
}
