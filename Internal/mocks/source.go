package mocks

import (
	"context"

	datafeed "github.com/fazecat/squeezescope/Internal/database"
	"github.com/fazecat/squeezescope/Internal/types"
)

// FixtureSource answers datafeed.Source calls straight from the fixtures,
// with no HTTP in between.
type FixtureSource struct {
	Fixtures *Fixtures
}

var _ datafeed.Source = (*FixtureSource)(nil)

func NewFixtureSource() *FixtureSource {
	return &FixtureSource{Fixtures: MustLoad()}
}

func (s *FixtureSource) FetchTickers(ctx context.Context) ([]types.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.Fixtures.Rows(), nil
}

func (s *FixtureSource) FetchTickerMetrics(ctx context.Context, symbol string) (*types.Metrics, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	symbol = datafeed.NormalizeSymbol(symbol)
	if symbol == "" {
		return nil, datafeed.ErrEmptySymbol
	}
	m, ok := s.Fixtures.Lookup(symbol)
	if !ok {
		return nil, datafeed.ErrNotFound
	}
	return m, nil
}
