package scanner

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fazecat/squeezescope/Internal/types"
)

func TestFilterRows(t *testing.T) {
	tests := []struct {
		name   string
		params FilterParams
		want   []string
	}{
		{"no filters", FilterParams{}, []string{"TSLA", "AAPL", "NVDA"}},
		{"case-insensitive q", FilterParams{Q: "nv"}, []string{"NVDA"}},
		{"q is trimmed", FilterParams{Q: "  aA "}, []string{"AAPL"}},
		{"numeric minimums", FilterParams{SIMin: 6, DTCMin: 0.5, RVOLMin: 1.0}, []string{"TSLA"}},
		{"catalyst only", FilterParams{Catalyst: true}, []string{"TSLA"}},
		{"floors are inclusive", FilterParams{SIMin: 5}, []string{"TSLA", "AAPL"}},
		{"nothing matches", FilterParams{Q: "zzz"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := FilterRows(sampleRows, tt.params)
			assert.Equal(t, tt.want, tickers(out))
		})
	}
}

func TestFilterRows_IdentityIsFreshCopy(t *testing.T) {
	out := FilterRows(sampleRows, DefaultFilterParams())

	assert.Equal(t, sampleRows, out)
	out[0].Ticker = "MUTATED"
	assert.Equal(t, "TSLA", sampleRows[0].Ticker)
}

func TestFilterRows_DoesNotMutateInput(t *testing.T) {
	input := append([]types.Row(nil), sampleRows...)

	FilterRows(input, FilterParams{Q: "a", Catalyst: true})

	assert.Equal(t, sampleRows, input)
}

func TestFilterRows_SubsequenceProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	letters := "ABCDEFGH"

	for iter := 0; iter < 200; iter++ {
		rows := make([]types.Row, rng.Intn(30))
		for i := range rows {
			rows[i] = types.Row{
				Ticker:   string(letters[rng.Intn(len(letters))]) + string(letters[rng.Intn(len(letters))]) + string(rune('0'+i%10)) + string(rune('A'+i/10)),
				SIPublic: rng.Float64() * 40,
				DTC:      rng.Float64() * 8,
				RVOL:     rng.Float64() * 4,
				Catalyst: rng.Intn(2) == 0,
			}
		}
		params := FilterParams{
			Q:        strings.ToLower(string(letters[rng.Intn(len(letters))])),
			SIMin:    rng.Float64() * 20,
			DTCMin:   rng.Float64() * 4,
			RVOLMin:  rng.Float64() * 2,
			Catalyst: rng.Intn(2) == 0,
		}

		out := FilterRows(rows, params)

		// survivors appear in input order, and every row is classified correctly
		next := 0
		for _, r := range rows {
			kept := next < len(out) && out[next] == r
			if kept {
				next++
			}
			assert.Equal(t, satisfies(r, params), kept, "row %+v params %+v", r, params)
		}
		assert.Equal(t, len(out), next)
	}
}

func satisfies(r types.Row, p FilterParams) bool {
	return strings.Contains(strings.ToLower(r.Ticker), strings.ToLower(strings.TrimSpace(p.Q))) &&
		r.SIPublic >= p.SIMin && r.DTC >= p.DTCMin && r.RVOL >= p.RVOLMin &&
		(!p.Catalyst || r.Catalyst)
}
