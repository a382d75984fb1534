package handlers

import (
	"context"
	"errors"
	"fmt"

	datafeed "github.com/fazecat/squeezescope/Internal/database"
	"github.com/fazecat/squeezescope/Internal/database/watchlist"
	"github.com/fazecat/squeezescope/Internal/utils/querystate"
	"github.com/fazecat/squeezescope/interactive"
)

// Session is the state of one terminal menu run. The current filter and
// sort live only in Location.
type Session struct {
	Screener *Screener
	Location *querystate.Location
	Prompt   *interactive.Prompter
}

const detailView = "terminal-detail"

func (s *Session) printf(format string, args ...any) {
	fmt.Fprintf(s.Prompt.Out(), format, args...)
}

// HandleScreen prints the screener table for the current query.
func HandleScreen(ctx context.Context, s *Session) {
	res, err := s.Screener.Screen(ctx, s.Location.State())
	if err != nil {
		s.printf("Failed to load tickers: %v\n", err)
		return
	}

	s.printf("\n[SCREENER] ?%s\n", res.Query)
	if len(res.Rows) == 0 {
		s.printf("No tickers match (%d in snapshot).\n", res.Total)
		return
	}
	interactive.DisplayTable(s.Prompt.Out(), res.Columns, TableRows(res.Rows))
	s.printf("%d of %d tickers (* = watched)\n", len(res.Rows), res.Total)
}

// HandleEditFilters walks through each filter and replaces the current
// query with the result.
func HandleEditFilters(s *Session) {
	state := s.Location.State()

	q, err := s.Prompt.Line(fmt.Sprintf("Search ticker [%s]: ", state.Q))
	if err == nil && q != "" {
		state.Q = q
		if q == "-" {
			state.Q = ""
		}
	}
	state.SIMin = s.Prompt.Float("SI% public min (0-100)", state.SIMin)
	state.DTCMin = s.Prompt.Float("DTC min (0-10)", state.DTCMin)
	state.RVOLMin = s.Prompt.Float("RVOL min (0-10)", state.RVOLMin)
	state.Catalyst = s.Prompt.YesNo("Catalyst only", state.Catalyst)

	s.replace(state)
}

// HandleSort changes sort column and direction.
func HandleSort(s *Session) {
	state := s.Location.State()

	key, err := s.Prompt.ShowSortMenu()
	if err != nil {
		return
	}
	dir, err := s.Prompt.ShowDirMenu()
	if err != nil {
		return
	}
	state.Sort, state.Dir = key, dir
	s.replace(state)
}

// HandleResetFilters restores the default query.
func HandleResetFilters(s *Session) {
	s.replace(querystate.DefaultState())
}

func (s *Session) replace(state querystate.ScreenerState) {
	s.Location.Replace(state)
	s.printf("✅ Query: ?%s\n", s.Location.Query())
}

// HandleDetail asks for a symbol and prints its metrics and history.
func HandleDetail(ctx context.Context, s *Session) {
	symbol, err := s.Prompt.Line("Enter symbol (e.g., GME): ")
	if err != nil || symbol == "" {
		s.printf("Invalid symbol\n")
		return
	}
	ShowDetail(ctx, s, symbol)
}

func ShowDetail(ctx context.Context, s *Session, symbol string) {
	view, err := s.Screener.DetailFor(ctx, detailView, symbol)
	switch {
	case errors.Is(err, datafeed.ErrNotFound):
		s.printf("No data found for %s.\n", datafeed.NormalizeSymbol(symbol))
		return
	case errors.Is(err, ErrSuperseded):
		return
	case err != nil:
		s.printf("Failed to load %s: %v\n", symbol, err)
		return
	}

	interactive.DisplayMetrics(s.Prompt.Out(), view.Metrics, view.Display, view.Category, view.Watched)
	interactive.DisplaySeries(s.Prompt.Out(), view.Metrics.Series, 5)
}

// HandleToggle flips a symbol in the watchlist.
func HandleToggle(ctx context.Context, s *Session) {
	symbol, err := s.Prompt.Line("Symbol to add/remove: ")
	if err != nil || symbol == "" {
		s.printf("Invalid symbol\n")
		return
	}

	on, err := s.Screener.Watchlist().Toggle(ctx, symbol)
	switch {
	case errors.Is(err, watchlist.ErrFull):
		s.printf("Watchlist is full (%d tickers). Remove one first.\n", len(s.Screener.Watchlist().List()))
	case err != nil:
		s.printf("Failed to update watchlist: %v\n", err)
	case on:
		s.printf("⭐ %s added to watchlist\n", datafeed.NormalizeSymbol(symbol))
	default:
		s.printf("%s removed from watchlist\n", datafeed.NormalizeSymbol(symbol))
	}
}

// HandleWatchlist prints saved tickers that are in the current snapshot.
func HandleWatchlist(ctx context.Context, s *Session) {
	view, err := s.Screener.WatchlistRows(ctx)
	if err != nil {
		s.printf("Failed to fetch watchlist: %v\n", err)
		return
	}
	if view.Empty {
		s.printf("Watchlist is empty\n")
		return
	}

	s.printf("\nCurrent Watchlist:\n")
	interactive.DisplayTable(s.Prompt.Out(), s.Screener.Columns(), TableRows(view.Rows))
	for _, t := range view.Missing {
		s.printf("  %s (not in current snapshot)\n", t)
	}
}

func HandleWatchlistMenu(ctx context.Context, s *Session) {
	for {
		s.printf("\n--- Watchlist Menu ---\n")
		s.printf("1. View Watchlist\n")
		s.printf("2. Add/Remove Symbol\n")
		s.printf("3. Open Detail\n")
		s.printf("4. Back\n")

		choice, err := s.Prompt.Choice("Enter choice (1-4): ", 4)
		if err != nil {
			if ctx.Err() != nil || IsEOF(err) {
				return
			}
			continue
		}

		switch choice {
		case 1:
			HandleWatchlist(ctx, s)
		case 2:
			HandleToggle(ctx, s)
		case 3:
			symbol, err := s.Prompt.PickTicker(s.Screener.Watchlist().List())
			if err != nil {
				s.printf("Watchlist is empty\n")
				continue
			}
			ShowDetail(ctx, s, symbol)
		case 4:
			return
		}
	}
}

// TableRows adapts screener rows for interactive.DisplayTable.
func TableRows(rows []ScreenRow) []interactive.TableRow {
	out := make([]interactive.TableRow, len(rows))
	for i, r := range rows {
		out[i] = interactive.TableRow{
			Ticker:   r.Ticker,
			Watched:  r.Watched,
			Category: r.Category,
			Display:  r.Display,
		}
	}
	return out
}
