// Package querystate maps screener state to and from a URL query string.
// The query string is the only durable copy of the filter and sort state.
package querystate

import (
	"errors"
	"math"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/fazecat/squeezescope/Internal/utils"
	"github.com/fazecat/squeezescope/Internal/utils/scanner"
)

const (
	keyQ        = "q"
	keySIMin    = "siMin"
	keyDTCMin   = "dtcMin"
	keyRVOLMin  = "rvolMin"
	keyCatalyst = "catalyst"
	keySort     = "sort"
	keyDir      = "dir"

	MaxSIMin   = 100.0
	MaxDTCMin  = 10.0
	MaxRVOLMin = 10.0
)

type ScreenerState struct {
	Q        string          `json:"q"`
	SIMin    float64         `json:"siMin"`
	DTCMin   float64         `json:"dtcMin"`
	RVOLMin  float64         `json:"rvolMin"`
	Catalyst bool            `json:"catalyst"`
	Sort     scanner.SortKey `json:"sort"`
	Dir      scanner.SortDir `json:"dir"`
}

func DefaultState() ScreenerState {
	return ScreenerState{Sort: scanner.SortTicker, Dir: scanner.Asc}
}

// Filter converts the state into filter predicates.
func (s ScreenerState) Filter() scanner.FilterParams {
	return scanner.FilterParams{
		Q:        s.Q,
		SIMin:    s.SIMin,
		DTCMin:   s.DTCMin,
		RVOLMin:  s.RVOLMin,
		Catalyst: s.Catalyst,
	}
}

// Codec decodes and encodes screener state. The zero Codec accepts only the
// stored-field sort keys; AllowComputedSort also admits squeezeScore.
type Codec struct {
	AllowComputedSort bool
}

var strict = Codec{}

// Decode reads state from query values using the strict codec.
func Decode(values url.Values) ScreenerState {
	return strict.Decode(values)
}

// Encode writes state to query values using the strict codec.
func Encode(s ScreenerState) url.Values {
	return strict.Encode(s)
}

// Decode never fails: missing or malformed fields take their defaults and
// numeric floors are clamped into range.
func (c Codec) Decode(values url.Values) ScreenerState {
	s := DefaultState()

	s.Q = strings.TrimSpace(values.Get(keyQ))
	s.SIMin = parseFloor(values.Get(keySIMin), MaxSIMin)
	s.DTCMin = parseFloor(values.Get(keyDTCMin), MaxDTCMin)
	s.RVOLMin = parseFloor(values.Get(keyRVOLMin), MaxRVOLMin)
	s.Catalyst = values.Get(keyCatalyst) == "1"

	if key := scanner.SortKey(values.Get(keySort)); c.acceptsSort(key) {
		s.Sort = key
	}
	if dir := scanner.SortDir(values.Get(keyDir)); dir.Valid() {
		s.Dir = dir
	}
	return s
}

// Encode omits fields at their default, except sort and dir which are
// always written.
func (c Codec) Encode(s ScreenerState) url.Values {
	values := url.Values{}

	if q := strings.TrimSpace(s.Q); q != "" {
		values.Set(keyQ, q)
	}
	setFloor(values, keySIMin, s.SIMin)
	setFloor(values, keyDTCMin, s.DTCMin)
	setFloor(values, keyRVOLMin, s.RVOLMin)
	if s.Catalyst {
		values.Set(keyCatalyst, "1")
	}

	sortKey := s.Sort
	if !c.acceptsSort(sortKey) {
		sortKey = scanner.SortTicker
	}
	dir := s.Dir
	if !dir.Valid() {
		dir = scanner.Asc
	}
	values.Set(keySort, string(sortKey))
	values.Set(keyDir, string(dir))
	return values
}

// Canonical returns the encoded query string for s.
func (c Codec) Canonical(s ScreenerState) string {
	return c.Encode(s).Encode()
}

func (c Codec) acceptsSort(key scanner.SortKey) bool {
	if !key.Valid() {
		return false
	}
	return c.AllowComputedSort || !key.Computed()
}

func parseFloor(raw string, max float64) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0
	}
	// out-of-range input parses to ±Inf or ±0, which Clamp bounds
	return utils.Clamp(v, 0, max)
}

func setFloor(values url.Values, key string, v float64) {
	if v == 0 || math.IsNaN(v) {
		return
	}
	values.Set(key, strconv.FormatFloat(v, 'f', -1, 64))
}

// Location holds the single current query entry of a screen. Replace
// overwrites it; there is no history to push onto.
type Location struct {
	mu    sync.RWMutex
	codec Codec
	query string
}

func NewLocation(codec Codec, initial string) (*Location, error) {
	values, err := url.ParseQuery(strings.TrimPrefix(initial, "?"))
	if err != nil {
		return nil, err
	}
	loc := &Location{codec: codec}
	loc.Replace(codec.Decode(values))
	return loc, nil
}

// State decodes the current entry.
func (l *Location) State() ScreenerState {
	l.mu.RLock()
	query := l.query
	l.mu.RUnlock()

	values, err := url.ParseQuery(query)
	if err != nil {
		return DefaultState()
	}
	return l.codec.Decode(values)
}

// Replace re-encodes s and overwrites the current entry.
func (l *Location) Replace(s ScreenerState) {
	encoded := l.codec.Canonical(s)

	l.mu.Lock()
	l.query = encoded
	l.mu.Unlock()
}

// Query returns the current entry without a leading '?'.
func (l *Location) Query() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.query
}
