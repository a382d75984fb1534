package types

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Row is one ticker's screening snapshot as served by GET /tickers.
type Row struct {
	Ticker    string  `json:"ticker"`
	Price     float64 `json:"price"`
	PctChange float64 `json:"pctChange"`
	SIPublic  float64 `json:"siPublic"` // % of public float sold short
	SIBroad   float64 `json:"siBroad"`  // % of broad float sold short
	DTC       float64 `json:"dtc"`      // days to cover
	RVOL      float64 `json:"rvol"`     // 1.0 = average volume
	Catalyst  bool    `json:"catalyst"`
}

// SeriesPoint is one trading day of the detail chart.
type SeriesPoint struct {
	T     string  `json:"t"` // YYYY-MM-DD
	Price float64 `json:"price"`
	Vol   int64   `json:"vol"`
}

// Metrics is the single-symbol record served by GET /tickers/{symbol}.
type Metrics struct {
	Ticker   string  `json:"ticker"`
	SIPublic float64 `json:"siPublic"`
	SIBroad  float64 `json:"siBroad"`
	DTC      float64 `json:"dtc"`
	RVOL30d  float64 `json:"rvol30d"`
	// SqueezeScore is whatever upstream sent; the detail view recomputes it.
	SqueezeScore *float64      `json:"squeezeScore,omitempty"`
	Series       []SeriesPoint `json:"series"`
}

type PayloadKind int

const (
	PayloadAbsent PayloadKind = iota
	PayloadBare
	PayloadWrapped
)

func (k PayloadKind) String() string {
	switch k {
	case PayloadBare:
		return "bare"
	case PayloadWrapped:
		return "wrapped"
	default:
		return "absent"
	}
}

// RowsPayload is the list endpoint response. Upstream may answer with a bare
// array or with {"rows": [...]}; the shape is resolved here and nowhere else.
type RowsPayload struct {
	Kind PayloadKind
	Rows []Row
}

func BareRows(rows []Row) RowsPayload {
	return RowsPayload{Kind: PayloadBare, Rows: rows}
}

func WrappedRows(rows []Row) RowsPayload {
	return RowsPayload{Kind: PayloadWrapped, Rows: rows}
}

func (p *RowsPayload) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*p = RowsPayload{Kind: PayloadAbsent}
		return nil
	}

	switch trimmed[0] {
	case '[':
		var rows []Row
		if err := json.Unmarshal(trimmed, &rows); err != nil {
			return fmt.Errorf("decode bare rows: %w", err)
		}
		*p = BareRows(rows)
	case '{':
		var wrapped struct {
			Rows []Row `json:"rows"`
		}
		if err := json.Unmarshal(trimmed, &wrapped); err != nil {
			return fmt.Errorf("decode wrapped rows: %w", err)
		}
		*p = WrappedRows(wrapped.Rows)
	default:
		return fmt.Errorf("unexpected rows payload starting with %q", trimmed[0])
	}
	return nil
}

func (p RowsPayload) MarshalJSON() ([]byte, error) {
	switch p.Kind {
	case PayloadBare:
		return json.Marshal(p.Rows)
	case PayloadWrapped:
		return json.Marshal(struct {
			Rows []Row `json:"rows"`
		}{Rows: p.Rows})
	default:
		return []byte("null"), nil
	}
}
