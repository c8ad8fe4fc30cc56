package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sadopc/mirror/internal/export"
	"github.com/sadopc/mirror/internal/mirror"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a week or month as CSV, JSON or SVG",
	Example: `  mirror export --format csv > week.csv
  mirror export --format svg --month 2024-05 -o may.svg`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().String("format", "csv", "Output format: csv, json or svg")
	exportCmd.Flags().StringP("output", "o", "", "Write to a file instead of stdout")
	exportCmd.Flags().String("week", "", "Any date of the week to export (YYYY-MM-DD)")
	exportCmd.Flags().String("month", "", "Month to export (YYYY-MM)")
	exportCmd.Flags().String("metric", "", "Category to chart instead of total points")
	exportCmd.Flags().String("emotion", "", "Emotion to drill into")
	rootCmd.AddCommand(exportCmd)
}

// writers maps a format name to its export function.
var writers = map[string]func(io.Writer, mirror.Snapshot) error{
	"csv":  export.WriteCSV,
	"json": export.WriteJSON,
	"svg":  export.WriteSVG,
}

func runExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	write, ok := writers[strings.ToLower(format)]
	if !ok {
		return fmt.Errorf("unknown format %q (use csv, json or svg)", format)
	}

	now := today()
	st, err := viewFromFlags(cmd, now)
	if err != nil {
		return err
	}

	e, err := openCommandEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	res, err := e.feed.Range(cmd.Context(), st.Range(now))
	if err != nil {
		return describeFetchError(err)
	}
	if res.Offline {
		e.log.Warn("exporting cached data", "fetched_at", res.FetchedAt, "err", res.Err)
	}

	metric, _ := cmd.Flags().GetString("metric")
	emotion, _ := cmd.Flags().GetString("emotion")
	snap, err := snapshotFor(st, res.Payload, now, metric, emotion)
	if err != nil {
		return err
	}

	out, _ := cmd.Flags().GetString("output")
	if out == "" {
		return write(cmd.OutOrStdout(), snap)
	}
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create %s: %w", out, err)
	}
	if err := write(f, snap); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", out, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Exported %s to %s\n", snap.Range, out)
	return nil
}
