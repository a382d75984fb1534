package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/fazecat/squeezescope/Internal/handlers"
	"github.com/fazecat/squeezescope/Internal/utils/config"
	"github.com/fazecat/squeezescope/Internal/utils/logging"
	"github.com/fazecat/squeezescope/Internal/utils/querystate"
	"github.com/fazecat/squeezescope/interactive"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not load config, using defaults: %v\n", err)
		cfg = config.Default()
	}

	logger := logging.New(cfg.Logging).Named("terminal")
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	screener, closeStore, err := handlers.Bootstrap(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to start screener", zap.Error(err))
	}
	defer closeStore()

	initial := ""
	if len(os.Args) > 1 {
		initial = os.Args[1]
	}
	loc, err := querystate.NewLocation(screener.Codec(), initial)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ignoring query %q: %v\n", initial, err)
		loc, _ = querystate.NewLocation(screener.Codec(), "")
	}

	session := &handlers.Session{
		Screener: screener,
		Location: loc,
		Prompt:   interactive.NewPrompter(os.Stdin, os.Stdout),
	}

	for {
		fmt.Println("\n--- SqueezeScope Menu ---")
		fmt.Println("1. Screener")
		fmt.Println("2. Edit Filters")
		fmt.Println("3. Sort")
		fmt.Println("4. Reset Filters")
		fmt.Println("5. Ticker Detail")
		fmt.Println("6. Watchlist")
		fmt.Println("7. Configure Settings")
		fmt.Println("8. Exit")

		choice, err := session.Prompt.Choice("Enter choice (1-8): ", 8)
		if err != nil {
			if ctx.Err() != nil || handlers.IsEOF(err) {
				fmt.Println("\nGoodbye!")
				return
			}
			continue
		}

		switch choice {
		case 1:
			handlers.HandleScreen(ctx, session)
		case 2:
			handlers.HandleEditFilters(session)
		case 3:
			handlers.HandleSort(session)
		case 4:
			handlers.HandleResetFilters(session)
		case 5:
			handlers.HandleDetail(ctx, session)
		case 6:
			handlers.HandleWatchlistMenu(ctx, session)
		case 7:
			if err := config.ConfigureInteractive(cfg, session.Prompt.In(), session.Prompt.Out()); err != nil {
				logger.Warn("configuration aborted", zap.Error(err))
			}
		case 8:
			fmt.Println("Goodbye!")
			return
		}
	}
}
