package main

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	datafeed "github.com/fazecat/squeezescope/Internal/database"
	"github.com/fazecat/squeezescope/Internal/handlers"
	"github.com/fazecat/squeezescope/interactive"
)

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list [query]",
		Short: "List tickers matching a screener query",
		Example: `  squeeze list
  squeeze list 'siMin=20&catalyst=1&sort=squeezeScore&dir=desc'`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := ""
			if len(args) == 1 {
				raw = strings.TrimPrefix(args[0], "?")
			}
			values, err := url.ParseQuery(raw)
			if err != nil {
				return fmt.Errorf("invalid query %q: %w", raw, err)
			}

			res, err := a.screener.ScreenQuery(cmd.Context(), values)
			if err != nil {
				return err
			}
			if a.asJSON {
				return a.printJSON(cmd.OutOrStdout(), res)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "?%s\n", res.Query)
			if len(res.Rows) == 0 {
				fmt.Fprintf(out, "No tickers match (%d in snapshot).\n", res.Total)
				return nil
			}
			interactive.DisplayTable(out, res.Columns, handlers.TableRows(res.Rows))
			fmt.Fprintf(out, "%d of %d tickers\n", len(res.Rows), res.Total)
			return nil
		},
	}
}

func newShowCmd(a *app) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "show SYMBOL",
		Short: "Show squeeze metrics and price history for one ticker",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := a.screener.Detail(cmd.Context(), args[0])
			if errors.Is(err, datafeed.ErrNotFound) {
				return fmt.Errorf("no data found for %s", datafeed.NormalizeSymbol(args[0]))
			}
			if err != nil {
				return err
			}
			if a.asJSON {
				return a.printJSON(cmd.OutOrStdout(), view)
			}

			out := cmd.OutOrStdout()
			interactive.DisplayMetrics(out, view.Metrics, view.Display, view.Category, view.Watched)
			interactive.DisplaySeries(out, view.Metrics.Series, days)
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 5, "number of recent days to print")
	return cmd
}
