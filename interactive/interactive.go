package interactive

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/fazecat/squeezescope/Internal/types"
	"github.com/fazecat/squeezescope/Internal/utils/config"
	"github.com/fazecat/squeezescope/Internal/utils/formatting"
	"github.com/fazecat/squeezescope/Internal/utils/scanner"
)

// Prompter reads menu answers line by line.
type Prompter struct {
	reader *bufio.Reader
	out    io.Writer
}

func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{reader: bufio.NewReader(in), out: out}
}

func (p *Prompter) Out() io.Writer {
	return p.out
}

// In is the buffered input, for callers that run their own prompts on the
// same stream.
func (p *Prompter) In() io.Reader {
	return p.reader
}

// Line prints label and returns the trimmed answer. io.EOF is returned
// once input is exhausted and nothing was typed.
func (p *Prompter) Line(label string) (string, error) {
	fmt.Fprint(p.out, label)
	line, err := p.reader.ReadString('\n')
	line = strings.TrimSpace(line)
	if err != nil && line == "" {
		return "", err
	}
	return line, nil
}

// Choice asks for a number between 1 and max.
func (p *Prompter) Choice(label string, max int) (int, error) {
	answer, err := p.Line(label)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(answer)
	if err != nil || n < 1 || n > max {
		fmt.Fprintf(p.out, "Invalid input. Please enter a number between 1 and %d.\n", max)
		return 0, fmt.Errorf("invalid choice %q", answer)
	}
	return n, nil
}

// Float asks for a number, keeping current when the answer is blank or not
// a number.
func (p *Prompter) Float(label string, current float64) float64 {
	answer, err := p.Line(fmt.Sprintf("%s [%s]: ", label, strconv.FormatFloat(current, 'f', -1, 64)))
	if err != nil || answer == "" {
		return current
	}
	v, err := strconv.ParseFloat(answer, 64)
	if err != nil {
		fmt.Fprintln(p.out, "Not a number, keeping current value.")
		return current
	}
	return v
}

// YesNo accepts y/yes/1 as true and n/no/0 as false; anything else keeps
// current.
func (p *Prompter) YesNo(label string, current bool) bool {
	def := "n"
	if current {
		def = "y"
	}
	answer, err := p.Line(fmt.Sprintf("%s (y/n) [%s]: ", label, def))
	if err != nil {
		return current
	}
	switch strings.ToLower(answer) {
	case "y", "yes", "1":
		return true
	case "n", "no", "0":
		return false
	default:
		return current
	}
}

var sortChoices = []struct {
	key   scanner.SortKey
	label string
}{
	{scanner.SortTicker, "Ticker"},
	{scanner.SortPrice, "Price"},
	{scanner.SortPctChange, "% Change"},
	{scanner.SortSIPublic, "SI% Public"},
	{scanner.SortSIBroad, "SI% Broad"},
	{scanner.SortDTC, "Days to Cover"},
	{scanner.SortRVOL, "RVOL"},
	{scanner.SortSqueezeScore, "Squeeze Score"},
}

func (p *Prompter) ShowSortMenu() (scanner.SortKey, error) {
	fmt.Fprintln(p.out, "\nChoose sort column:")
	for i, c := range sortChoices {
		fmt.Fprintf(p.out, "%d. %s\n", i+1, c.label)
	}
	n, err := p.Choice("Enter choice: ", len(sortChoices))
	if err != nil {
		return "", err
	}
	return sortChoices[n-1].key, nil
}

func (p *Prompter) ShowDirMenu() (scanner.SortDir, error) {
	fmt.Fprintln(p.out, "\nChoose direction:")
	fmt.Fprintln(p.out, "1. Ascending")
	fmt.Fprintln(p.out, "2. Descending")
	n, err := p.Choice("Enter choice: ", 2)
	if err != nil {
		return "", err
	}
	if n == 2 {
		return scanner.Desc, nil
	}
	return scanner.Asc, nil
}

// TableRow is one line of the screener table.
type TableRow struct {
	Ticker   string
	Watched  bool
	Category string
	Display  map[string]string
}

// DisplayTable prints rows under the configured columns.
func DisplayTable(w io.Writer, columns []config.ColumnConfig, rows []TableRow) {
	widths := make([]int, len(columns))
	for i, col := range columns {
		widths[i] = len([]rune(col.Label))
		for _, r := range rows {
			if n := len([]rune(r.Display[col.Key])); n > widths[i] {
				widths[i] = n
			}
		}
	}

	header := make([]string, len(columns))
	rule := make([]string, len(columns))
	for i, col := range columns {
		header[i] = pad(col.Label, widths[i])
		rule[i] = formatting.RepeatString("-", widths[i])
	}
	fmt.Fprintf(w, "  %s | Risk\n", strings.Join(header, " | "))
	fmt.Fprintf(w, "--%s-|-----\n", strings.Join(rule, "-|-"))

	for _, r := range rows {
		cells := make([]string, len(columns))
		for i, col := range columns {
			cells[i] = pad(r.Display[col.Key], widths[i])
		}
		mark := " "
		if r.Watched {
			mark = "*"
		}
		fmt.Fprintf(w, "%s %s | %s\n", mark, strings.Join(cells, " | "), r.Category)
	}
}

func pad(s string, width int) string {
	n := len([]rune(s))
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}

// DisplayMetrics prints the detail header for one symbol.
func DisplayMetrics(w io.Writer, m types.Metrics, display map[string]string, category string, watched bool) {
	star := ""
	if watched {
		star = " *"
	}
	fmt.Fprintf(w, "\n[DETAIL] %s%s\n", m.Ticker, star)
	fmt.Fprintln(w, formatting.Separator(48))
	fmt.Fprintf(w, "SI%% Public:     %s\n", display["siPublic"])
	fmt.Fprintf(w, "SI%% Broad:      %s\n", display["siBroad"])
	fmt.Fprintf(w, "DTC:            %s\n", display["dtc"])
	fmt.Fprintf(w, "RVOL(30d):      %s\n", display["rvol30d"])
	fmt.Fprintf(w, "Squeeze Score:  %s  %s\n", display["squeezeScore"], category)
	if last, ok := display["lastPrice"]; ok {
		fmt.Fprintf(w, "Last Close:     $%s\n", last)
	}
	fmt.Fprintln(w, formatting.Separator(48))
}

var sparkLevels = []rune("▁▂▃▄▅▆▇█")

// Sparkline renders prices as one block character each.
func Sparkline(series []types.SeriesPoint) string {
	if len(series) == 0 {
		return ""
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, p := range series {
		lo = math.Min(lo, p.Price)
		hi = math.Max(hi, p.Price)
	}

	out := make([]rune, len(series))
	for i, p := range series {
		level := 0
		if hi > lo && !math.IsNaN(p.Price) {
			level = int((p.Price - lo) / (hi - lo) * float64(len(sparkLevels)-1))
		}
		out[i] = sparkLevels[min(max(level, 0), len(sparkLevels)-1)]
	}
	return string(out)
}

// DisplaySeries prints a sparkline and the most recent days.
func DisplaySeries(w io.Writer, series []types.SeriesPoint, recent int) {
	if len(series) == 0 {
		fmt.Fprintln(w, "No price history.")
		return
	}

	first, last := series[0], series[len(series)-1]
	fmt.Fprintf(w, "\n%s → %s  %s\n", first.T, last.T, Sparkline(series))

	if recent > len(series) {
		recent = len(series)
	}
	fmt.Fprintln(w, "Date       | Close Price | Volume")
	fmt.Fprintln(w, "-----------|-------------|--------")
	for _, p := range series[len(series)-recent:] {
		fmt.Fprintf(w, "%-10s | %11s | %6s\n", p.T, formatting.FormatPrice(p.Price), formatting.FormatVolume(p.Vol))
	}
}

// PickTicker lists tickers and returns the chosen one.
func (p *Prompter) PickTicker(tickers []string) (string, error) {
	if len(tickers) == 0 {
		return "", fmt.Errorf("nothing to choose from")
	}
	fmt.Fprintln(p.out, "\nSelect a ticker:")
	for i, t := range tickers {
		fmt.Fprintf(p.out, "%d. %s\n", i+1, t)
	}
	n, err := p.Choice("Enter choice: ", len(tickers))
	if err != nil {
		return "", err
	}
	return tickers[n-1], nil
}
