package config

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// ConfigureInteractive lets the user edit settings from a terminal and
// saves them on exit.
func ConfigureInteractive(cfg *Config, in io.Reader, out io.Writer) error {
	reader := bufio.NewReader(in)

	for {
		fmt.Fprintln(out, "\n⚙️  Configuration Menu:")
		fmt.Fprintln(out, "1. View Current Configuration")
		fmt.Fprintln(out, "2. Configure Upstream")
		fmt.Fprintln(out, "3. Configure Columns")
		fmt.Fprintln(out, "4. Configure Features")
		fmt.Fprintln(out, "5. Save & Exit")
		fmt.Fprint(out, "Select option: ")

		choice, err := reader.ReadString('\n')
		choice = strings.TrimSpace(choice)
		if err != nil && choice == "" {
			return err
		}

		switch choice {
		case "1":
			DisplayConfiguration(cfg, out)
		case "2":
			configureUpstream(cfg, reader, out)
		case "3":
			configureColumns(cfg, reader, out)
		case "4":
			configureFeatures(cfg, reader, out)
		case "5":
			if err := SaveConfig(cfg); err != nil {
				fmt.Fprintf(out, "❌ Error saving config: %v\n", err)
				continue
			}
			fmt.Fprintln(out, "✅ Configuration saved successfully!")
			return nil
		default:
			fmt.Fprintln(out, "❌ Invalid option")
		}
	}
}

// DisplayConfiguration shows current configuration
func DisplayConfiguration(cfg *Config, out io.Writer) {
	fmt.Fprintln(out, "\n📋 Current Configuration:")

	fmt.Fprintln(out, "\n=== Upstream ===")
	fmt.Fprintf(out, "Base URL: %s\n", cfg.Upstream.BaseURL)
	fmt.Fprintf(out, "Mock Data: %s\n", enabledStr(cfg.Upstream.Mock))
	fmt.Fprintf(out, "Timeout: %s\n", cfg.Upstream.Timeout)
	fmt.Fprintf(out, "Retries: %d\n", cfg.Upstream.Retries)
	fmt.Fprintf(out, "Requests/sec: %.1f\n", cfg.Upstream.RequestsPerSecond)

	fmt.Fprintln(out, "\n=== Watchlist ===")
	fmt.Fprintf(out, "Driver: %s\n", cfg.Watchlist.Driver)
	fmt.Fprintf(out, "Path: %s\n", cfg.Watchlist.Path)
	fmt.Fprintf(out, "Max Entries: %d\n", cfg.Watchlist.MaxEntries)

	fmt.Fprintln(out, "\n=== Columns ===")
	for i, col := range cfg.Screener.Columns {
		fmt.Fprintf(out, "%d. %-14s %-10s format=%s sortable=%v\n", i+1, col.Key, col.Label, col.Format, col.Sortable)
	}

	fmt.Fprintln(out, "\n=== Features ===")
	fmt.Fprintf(out, "Alpaca Enrichment: %v\n", enabledStr(cfg.Alpaca.Enabled))
	fmt.Fprintf(out, "Log Level: %s\n", cfg.Logging.Level)
}

func prompt(reader *bufio.Reader, out io.Writer, label string) string {
	fmt.Fprint(out, label)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func configureUpstream(cfg *Config, reader *bufio.Reader, out io.Writer) {
	fmt.Fprintln(out, "\n🌐 Configure Upstream:")

	fmt.Fprintf(out, "Current base URL: %s\n", cfg.Upstream.BaseURL)
	if v := prompt(reader, out, "New base URL: "); v != "" {
		cfg.Upstream.BaseURL = v
	}

	fmt.Fprintf(out, "Current timeout: %s\n", cfg.Upstream.Timeout)
	if d, err := time.ParseDuration(prompt(reader, out, "New timeout (e.g. 5s): ")); err == nil && d > 0 {
		cfg.Upstream.Timeout = d
	}

	fmt.Fprintf(out, "Current retries: %d\n", cfg.Upstream.Retries)
	if n, err := strconv.Atoi(prompt(reader, out, "New retries: ")); err == nil && n >= 0 {
		cfg.Upstream.Retries = n
	}

	fmt.Fprintf(out, "Current requests/sec: %.1f\n", cfg.Upstream.RequestsPerSecond)
	if v, err := strconv.ParseFloat(prompt(reader, out, "New requests/sec: "), 64); err == nil && v > 0 {
		cfg.Upstream.RequestsPerSecond = v
	}

	fmt.Fprintln(out, "✅ Upstream updated")
}

func configureColumns(cfg *Config, reader *bufio.Reader, out io.Writer) {
	fmt.Fprintln(out, "\n📊 Configure Columns:")
	for i, col := range cfg.Screener.Columns {
		fmt.Fprintf(out, "%d. %s (%s)\n", i+1, col.Label, col.Key)
	}

	idx, err := strconv.Atoi(prompt(reader, out, "Select column (number): "))
	if err != nil || idx < 1 || idx > len(cfg.Screener.Columns) {
		fmt.Fprintln(out, "❌ Invalid selection")
		return
	}

	col := cfg.Screener.Columns[idx-1]
	fmt.Fprintf(out, "Current label: %s\n", col.Label)
	if v := prompt(reader, out, "New label: "); v != "" {
		col.Label = v
	}
	fmt.Fprintf(out, "Current format: %s\n", col.Format)
	if v := prompt(reader, out, "New format (price|percentChange|percent1|oneDecimal|score): "); v != "" {
		col.Format = v
	}

	cfg.Screener.Columns[idx-1] = col
	fmt.Fprintln(out, "✅ Column updated")
}

func configureFeatures(cfg *Config, reader *bufio.Reader, out io.Writer) {
	fmt.Fprintln(out, "\n🚀 Configure Features:")
	fmt.Fprintf(out, "1. Mock Upstream: %s\n", enabledStr(cfg.Upstream.Mock))
	fmt.Fprintf(out, "2. Alpaca Enrichment: %s\n", enabledStr(cfg.Alpaca.Enabled))

	switch prompt(reader, out, "Select feature to toggle (1-2) or press Enter to skip: ") {
	case "1":
		cfg.Upstream.Mock = !cfg.Upstream.Mock
		fmt.Fprintf(out, "✅ Mock Upstream: %s\n", enabledStr(cfg.Upstream.Mock))
	case "2":
		cfg.Alpaca.Enabled = !cfg.Alpaca.Enabled
		fmt.Fprintf(out, "✅ Alpaca Enrichment: %s\n", enabledStr(cfg.Alpaca.Enabled))
	default:
		fmt.Fprintln(out, "No changes made")
	}
}

func enabledStr(enabled bool) string {
	if enabled {
		return "✅ Enabled"
	}
	return "❌ Disabled"
}
