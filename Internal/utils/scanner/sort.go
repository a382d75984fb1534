package scanner

import (
	"math"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/fazecat/squeezescope/Internal/types"
	"github.com/fazecat/squeezescope/Internal/utils/scoring"
)

type SortKey string

const (
	SortTicker       SortKey = "ticker"
	SortPrice        SortKey = "price"
	SortPctChange    SortKey = "pctChange"
	SortSIPublic     SortKey = "siPublic"
	SortSIBroad      SortKey = "siBroad"
	SortDTC          SortKey = "dtc"
	SortRVOL         SortKey = "rvol"
	SortSqueezeScore SortKey = "squeezeScore" // computed, not a stored field
)

type SortDir string

const (
	Asc  SortDir = "asc"
	Desc SortDir = "desc"
)

type keyKind int

const (
	textKey keyKind = iota
	fieldKey
	computedKey
)

type keySpec struct {
	kind  keyKind
	value func(types.Row) float64
}

var sortKeys = map[SortKey]keySpec{
	SortTicker:       {kind: textKey},
	SortPrice:        {kind: fieldKey, value: func(r types.Row) float64 { return r.Price }},
	SortPctChange:    {kind: fieldKey, value: func(r types.Row) float64 { return r.PctChange }},
	SortSIPublic:     {kind: fieldKey, value: func(r types.Row) float64 { return r.SIPublic }},
	SortSIBroad:      {kind: fieldKey, value: func(r types.Row) float64 { return r.SIBroad }},
	SortDTC:          {kind: fieldKey, value: func(r types.Row) float64 { return r.DTC }},
	SortRVOL:         {kind: fieldKey, value: func(r types.Row) float64 { return r.RVOL }},
	SortSqueezeScore: {kind: computedKey, value: scoring.ComputeSqueezeScore},
}

// FieldSortKeys are the keys backed by a stored Row field, in display order.
var FieldSortKeys = []SortKey{SortTicker, SortPrice, SortPctChange, SortSIPublic, SortSIBroad, SortDTC, SortRVOL}

func (k SortKey) Valid() bool {
	_, ok := sortKeys[k]
	return ok
}

func (k SortKey) Computed() bool {
	return sortKeys[k].kind == computedKey
}

func (d SortDir) Valid() bool {
	return d == Asc || d == Desc
}

func (d SortDir) factor() int {
	if d == Desc {
		return -1
	}
	return 1
}

// SortRows returns a sorted copy of rows. The sort is stable, so ties keep
// their input order. Unknown keys sort by ticker.
func SortRows(rows []types.Row, key SortKey, dir SortDir) []types.Row {
	out := make([]types.Row, len(rows))
	copy(out, rows)
	if len(out) <= 1 {
		return out
	}

	def, ok := sortKeys[key]
	if !ok {
		def = sortKeys[SortTicker]
	}
	factor := dir.factor()

	switch def.kind {
	case textKey:
		coll := collate.New(language.English)
		sort.SliceStable(out, func(i, j int) bool {
			return coll.CompareString(out[i].Ticker, out[j].Ticker)*factor < 0
		})
	case fieldKey:
		sort.SliceStable(out, func(i, j int) bool {
			return compareNumbers(def.value(out[i]), def.value(out[j]))*factor < 0
		})
	case computedKey:
		sortByComputed(out, def.value, factor)
	}

	return out
}

type scoredRow struct {
	row   types.Row
	value float64
}

// sortByComputed evaluates the key once per row rather than per comparison.
func sortByComputed(rows []types.Row, value func(types.Row) float64, factor int) {
	scored := make([]scoredRow, len(rows))
	for i, r := range rows {
		scored[i] = scoredRow{row: r, value: value(r)}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return compareNumbers(scored[i].value, scored[j].value)*factor < 0
	})

	for i := range scored {
		rows[i] = scored[i].row
	}
}

// compareNumbers orders NaN as 0 so a malformed field cannot break the sort.
func compareNumbers(a, b float64) int {
	if math.IsNaN(a) {
		a = 0
	}
	if math.IsNaN(b) {
		b = 0
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// FieldValue returns the number a key sorts by. It reports false for the
// ticker key and for unknown keys.
func FieldValue(r types.Row, key SortKey) (float64, bool) {
	def, ok := sortKeys[key]
	if !ok || def.kind == textKey {
		return 0, false
	}
	return def.value(r), true
}
