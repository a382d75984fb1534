package scanner

import "github.com/fazecat/squeezescope/Internal/types"

func makeTickerRow(ticker string, partial func(r *types.Row)) types.Row {
	row := types.Row{Ticker: ticker}
	if partial != nil {
		partial(&row)
	}
	return row
}

func tickers(rows []types.Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Ticker
	}
	return out
}

var sampleRows = []types.Row{
	makeTickerRow("TSLA", func(r *types.Row) {
		r.Price, r.PctChange, r.SIPublic, r.SIBroad, r.DTC, r.RVOL, r.Catalyst = 250, 2.5, 12, 15, 1.1, 1.5, true
	}),
	makeTickerRow("AAPL", func(r *types.Row) {
		r.Price, r.PctChange, r.SIPublic, r.SIBroad, r.DTC, r.RVOL = 170, -1.2, 5, 4, 0.3, 0.8
	}),
	makeTickerRow("NVDA", func(r *types.Row) {
		r.Price, r.PctChange, r.SIPublic, r.SIBroad, r.DTC, r.RVOL = 470, 5.9, 3, 3, 0.2, 2.1
	}),
}
