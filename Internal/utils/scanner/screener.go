package scanner

import (
	"strings"

	"github.com/fazecat/squeezescope/Internal/types"
)

// FilterParams are the screener predicates. Zero values are inactive.
type FilterParams struct {
	Q        string  // substring of ticker, case-insensitive
	SIMin    float64 // floor on SIPublic
	DTCMin   float64
	RVOLMin  float64
	Catalyst bool // only rows with a catalyst
}

func DefaultFilterParams() FilterParams {
	return FilterParams{}
}

// FilterRows returns a new slice holding the rows that satisfy every active
// predicate, in input order. rows is never modified.
func FilterRows(rows []types.Row, p FilterParams) []types.Row {
	q := strings.ToLower(strings.TrimSpace(p.Q))

	out := make([]types.Row, 0, len(rows))
	for _, r := range rows {
		if !matches(r, q, p) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func matches(r types.Row, q string, p FilterParams) bool {
	if q != "" && !strings.Contains(strings.ToLower(r.Ticker), q) {
		return false
	}
	if r.SIPublic < p.SIMin {
		return false
	}
	if r.DTC < p.DTCMin {
		return false
	}
	if r.RVOL < p.RVOLMin {
		return false
	}
	if p.Catalyst && !r.Catalyst {
		return false
	}
	return true
}
