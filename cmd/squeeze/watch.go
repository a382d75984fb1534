package main

import (
	"fmt"

	"github.com/spf13/cobra"

	datafeed "github.com/fazecat/squeezescope/Internal/database"
)

func newWatchCmd(a *app) *cobra.Command {
	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Manage the watchlist",
	}

	watchCmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "Print saved tickers",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.printWatchlist(cmd)
			},
		},
		&cobra.Command{
			Use:   "add SYMBOL...",
			Short: "Add tickers to the watchlist",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				for _, s := range args {
					if err := a.screener.Watchlist().Add(cmd.Context(), s); err != nil {
						return fmt.Errorf("add %s: %w", datafeed.NormalizeSymbol(s), err)
					}
				}
				return a.printWatchlist(cmd)
			},
		},
		&cobra.Command{
			Use:   "remove SYMBOL...",
			Short: "Remove tickers from the watchlist",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				for _, s := range args {
					if err := a.screener.Watchlist().Remove(cmd.Context(), s); err != nil {
						return fmt.Errorf("remove %s: %w", datafeed.NormalizeSymbol(s), err)
					}
				}
				return a.printWatchlist(cmd)
			},
		},
		&cobra.Command{
			Use:   "toggle SYMBOL",
			Short: "Add the ticker if absent, remove it otherwise",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				on, err := a.screener.Watchlist().Toggle(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				symbol := datafeed.NormalizeSymbol(args[0])
				if a.asJSON {
					return a.printJSON(cmd.OutOrStdout(), map[string]any{"symbol": symbol, "watched": on})
				}
				if on {
					fmt.Fprintf(cmd.OutOrStdout(), "%s added\n", symbol)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "%s removed\n", symbol)
				}
				return nil
			},
		},
	)
	return watchCmd
}

func (a *app) printWatchlist(cmd *cobra.Command) error {
	list := a.screener.Watchlist().List()
	if a.asJSON {
		if list == nil {
			list = []string{}
		}
		return a.printJSON(cmd.OutOrStdout(), list)
	}
	if len(list) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Watchlist is empty")
		return nil
	}
	for i, t := range list {
		fmt.Fprintf(cmd.OutOrStdout(), "%d. %s\n", i+1, t)
	}
	return nil
}
