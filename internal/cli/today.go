package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sadopc/mirror/internal/backend"
	"github.com/sadopc/mirror/internal/chart"
	"github.com/sadopc/mirror/internal/feed"
	"github.com/sadopc/mirror/internal/goals"
	"github.com/sadopc/mirror/internal/mirror"
)

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "Print today's points, activities and emotion",
	RunE:  runToday,
}

func init() {
	rootCmd.AddCommand(todayCmd)
}

func runToday(cmd *cobra.Command, args []string) error {
	e, err := openCommandEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	ctx := cmd.Context()
	res, err := e.feed.Today(ctx, today())
	if err != nil {
		return describeFetchError(err)
	}
	gs, gerr := e.feed.Goals(ctx)
	if gerr != nil {
		e.log.Debug("goals unavailable", "err", gerr)
	}
	writeToday(newPrinter(cmd), res, gs, gerr == nil)
	return nil
}

func writeToday(p printer, res feed.TodayResult, gs []goals.Goal, haveGoals bool) {
	sum := mirror.SummarizeToday(res.Payload)

	p.header("Today " + sum.Date.String())
	if res.Offline {
		p.warn(fmt.Sprintf("offline: showing data fetched %s", res.FetchedAt.Local().Format("2006-01-02 15:04")))
	}
	p.field("Points", fmt.Sprintf("%d", sum.Points))
	p.field("Activities", fmt.Sprintf("%d (%d day, %d night)", len(sum.Activities), len(sum.Day), len(sum.Night)))
	if sum.TopCategory != nil {
		p.field("Top category", fmt.Sprintf("%s (%s pts)", sum.TopCategory.Name, chart.FormatValue(sum.TopCategory.Weight)))
	}
	if sum.Emotion != nil {
		p.field("Emotion", describeEntry(*sum.Emotion))
	} else {
		p.field("Emotion", "not recorded")
	}

	if len(sum.Activities) > 0 {
		p.header("Activities")
		for _, a := range sum.Activities {
			at := "--:--"
			if !a.CompletedAt.IsZero() {
				at = a.CompletedAt.Local().Format("15:04")
			}
			p.line("  %s  %-5s  %-28s %-14s %3d", at, a.Session, a.Name, a.Category, a.Points)
		}
	}

	if haveGoals && len(gs) > 0 {
		s := goals.Summarize(gs)
		p.header("Goals")
		p.field("Completed", fmt.Sprintf("%d of %d", s.Completed, s.Total))
		if s.Reached > 0 {
			p.field("At target", fmt.Sprintf("%d open", s.Reached))
		}
		for _, g := range gs {
			mark := "[ ]"
			if g.Completed {
				mark = "[x]"
			}
			p.line("  %s %-30s %3d%%", mark, g.Title, g.Progress.Percent())
		}
	}
}

func describeEntry(e mirror.EmotionEntry) string {
	var b strings.Builder
	b.WriteString(e.Name)
	if e.Intensity != nil {
		fmt.Fprintf(&b, " (intensity %d/10)", *e.Intensity)
	}
	if e.Note != "" {
		fmt.Fprintf(&b, ": %s", e.Note)
	}
	return b.String()
}

// describeFetchError turns a fetch failure into something actionable.
func describeFetchError(err error) error {
	if errors.Is(err, backend.ErrNotConfigured) {
		return fmt.Errorf("no backend configured and nothing cached (run 'mirror config set backend_url URL')")
	}
	var fe *backend.FetchError
	if errors.As(err, &fe) && fe.Unauthorized() {
		return fmt.Errorf("%w (check the token with 'mirror config show')", err)
	}
	return err
}
