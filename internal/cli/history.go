package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sadopc/mirror/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent backend requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		kind, _ := cmd.Flags().GetString("kind")
		limit, _ := cmd.Flags().GetInt("limit")
		failed, _ := cmd.Flags().GetBool("failed")
		return writeHistory(newPrinter(cmd), s, kind, limit, failed, time.Now())
	},
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "List or prune cached snapshots",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		if prune, _ := cmd.Flags().GetBool("prune"); prune {
			n, err := s.PruneSnapshots(s.CacheKeep(), today())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d snapshots\n", n)
			return nil
		}
		return writeCache(newPrinter(cmd), s)
	},
}

func init() {
	historyCmd.Flags().String("kind", "", "Only show one kind (today, range, goals)")
	historyCmd.Flags().Int("limit", 20, "Maximum number of requests to show")
	historyCmd.Flags().Bool("failed", false, "Only show failed requests")
	cacheCmd.Flags().Bool("prune", false, "Drop snapshots beyond the configured cache size")
	rootCmd.AddCommand(historyCmd, cacheCmd)
}

func writeHistory(p printer, s *store.Store, kind string, limit int, failed bool, now time.Time) error {
	list, err := s.ListFetches(store.FetchFilter{Kind: kind, Limit: limit})
	if err != nil {
		return err
	}
	since := now.Add(-24 * time.Hour)
	total, bad, err := s.FetchStats(since)
	if err != nil {
		return err
	}

	p.header("Backend requests")
	p.field("Last 24h", fmt.Sprintf("%d requests, %d failed", total, bad))
	if last, err := s.LastSuccess(); err == nil && last != nil {
		p.field("Last success", last.StartedAt.Local().Format("2006-01-02 15:04:05"))
	}
	if len(list) == 0 {
		p.line("  %s", p.style(dimStyle, "no requests yet"))
		return nil
	}

	fmt.Fprintln(p.w)
	for _, f := range list {
		if failed && f.OK() {
			continue
		}
		status := p.style(labelStyle, "ok")
		if !f.OK() {
			status = p.style(warnStyle, f.Error)
		}
		target := f.RangeStart
		if f.RangeEnd != "" && f.RangeEnd != f.RangeStart {
			target += ".." + f.RangeEnd
		}
		p.line("  %s  %-5s %-22s %5dms  %s",
			f.StartedAt.Local().Format("01-02 15:04:05"), f.Kind, target, f.Duration.Milliseconds(), status)
	}
	return nil
}

func writeCache(p printer, s *store.Store) error {
	list, err := s.ListSnapshots()
	if err != nil {
		return err
	}
	p.header("Cached ranges")
	p.field("Keep", fmt.Sprintf("%d", s.CacheKeep()))
	for _, info := range list {
		p.line("  %s  fetched %s  %6d bytes", info.Range, info.FetchedAt.Local().Format("2006-01-02 15:04"), info.Bytes)
	}
	return nil
}
