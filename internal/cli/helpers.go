package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/sadopc/mirror/internal/calendar"
	"github.com/sadopc/mirror/internal/feed"
	"github.com/sadopc/mirror/internal/logging"
	"github.com/sadopc/mirror/internal/mirror"
	"github.com/sadopc/mirror/internal/store"
)

// env is what a command needs to talk to the backend and the cache.
type env struct {
	store *store.Store
	feed  *feed.Feed
	log   *log.Logger
}

func openEnv(logger *log.Logger) (*env, error) {
	s, err := openStore()
	if err != nil {
		return nil, err
	}
	f, err := feed.New(cfg, s, logger)
	if err != nil {
		s.Close()
		return nil, err
	}
	return &env{store: s, feed: f, log: logger}, nil
}

// openCommandEnv is openEnv with a stderr logger honouring --debug.
func openCommandEnv(cmd *cobra.Command) (*env, error) {
	debug, _ := cmd.Flags().GetBool("debug")
	return openEnv(logging.Stderr(debug))
}

func (e *env) Close() error { return e.store.Close() }

// openStore opens the database named by the config, or the default one.
func openStore() (*store.Store, error) {
	path := cfg.DBPath
	if path == "" {
		p, err := store.DefaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("resolve db path: %w", err)
		}
		path = p
	}
	return store.New(path)
}

func today() calendar.Date { return calendar.Today(cfg.Location()) }

// viewFromFlags reads --week and --month into a view state. With neither,
// it is the week containing today.
func viewFromFlags(cmd *cobra.Command, today calendar.Date) (mirror.ViewState, error) {
	week, _ := cmd.Flags().GetString("week")
	month, _ := cmd.Flags().GetString("month")
	return parseView(week, month, today)
}

func parseView(week, month string, today calendar.Date) (mirror.ViewState, error) {
	week, month = strings.TrimSpace(week), strings.TrimSpace(month)
	st := mirror.NewViewState(today).WithMode(mirror.ModeWeek)
	switch {
	case week != "" && month != "":
		return st, fmt.Errorf("--week and --month are mutually exclusive")
	case month != "":
		ym, err := calendar.ParseYearMonth(month)
		if err != nil {
			return st, fmt.Errorf("invalid --month %q (want YYYY-MM)", month)
		}
		st = st.WithMode(mirror.ModeMonth)
		st.MonthCursor = ym
	case week != "":
		d, err := calendar.ParseDate(week)
		if err != nil {
			return st, fmt.Errorf("invalid --week %q (want YYYY-MM-DD)", week)
		}
		st.WeekCursor = d
	}
	if r := st.Range(today); r.Start.After(today) {
		return st, fmt.Errorf("range %s is in the future", r)
	}
	return st, nil
}

// Output styles, applied only when writing to a terminal.
var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#6C63FF"))
	labelStyle  = lipgloss.NewStyle().Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAA61A"))
)

// printer writes report text, styled when the output is a terminal.
type printer struct {
	w      io.Writer
	styled bool
}

func newPrinter(cmd *cobra.Command) printer {
	w := cmd.OutOrStdout()
	f, ok := w.(*os.File)
	return printer{w: w, styled: ok && isatty.IsTerminal(f.Fd())}
}

func (p printer) style(s lipgloss.Style, text string) string {
	if !p.styled {
		return text
	}
	return s.Render(text)
}

func (p printer) header(title string) {
	fmt.Fprintf(p.w, "\n%s\n", p.style(headerStyle, title))
	fmt.Fprintln(p.w, p.style(dimStyle, strings.Repeat("-", len([]rune(title))+2)))
}

func (p printer) field(label, value string) {
	fmt.Fprintf(p.w, "  %s %s\n", p.style(labelStyle, fmt.Sprintf("%-16s", label+":")), value)
}

func (p printer) warn(msg string) {
	fmt.Fprintln(p.w, p.style(warnStyle, msg))
}

func (p printer) line(format string, args ...any) {
	fmt.Fprintf(p.w, format+"\n", args...)
}

// bar renders v against top as a run of block characters.
func bar(v, top float64, width int) string {
	if top <= 0 || v <= 0 {
		return ""
	}
	n := int(v / top * float64(width))
	if n == 0 {
		n = 1
	}
	return strings.Repeat("█", n)
}
