package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/jask/safeflow/internal/database/repository"
)

var (
	usageSince  time.Duration
	usageRecent int
	usagePrune  time.Duration
)

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Summarize completion calls from the usage ledger",
	Long: `Print completion counts and average latency per profile and outcome.

The ledger keeps call metadata only; no message text is stored.`,
	Args: cobra.NoArgs,
	RunE: runUsage,
}

func init() {
	usageCmd.Flags().DurationVar(&usageSince, "since", 24*time.Hour, "Window to summarize")
	usageCmd.Flags().IntVar(&usageRecent, "recent", 0, "Also list the N most recent calls")
	usageCmd.Flags().DurationVar(&usagePrune, "prune", 0, "Delete entries older than this before reporting")
}

func runUsage(cmd *cobra.Command, _ []string) error {
	e, err := loadEnv(os.Stderr)
	if err != nil {
		return err
	}
	defer e.Close()
	if e.cfg.Usage.DBPath == "" {
		return errors.New("usage ledger is disabled (usage.db_path is empty)")
	}
	if err := e.openUsage(); err != nil {
		return err
	}
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if usagePrune > 0 {
		n, err := e.usage.Prune(ctx, usagePrune)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "pruned %d entries\n", n)
	}
	sum, err := e.usage.Summary(ctx, usageSince)
	if err != nil {
		return err
	}
	writeSummary(out, sum, usageSince)

	if usageRecent > 0 {
		recent, err := e.usage.Recent(ctx, usageRecent)
		if err != nil {
			return err
		}
		fmt.Fprintln(out)
		writeRecent(out, recent)
	}
	return nil
}

func writeSummary(out io.Writer, sum []repository.UsageSummary, window time.Duration) {
	if len(sum) == 0 {
		fmt.Fprintf(out, "no completions in the last %s\n", window)
		return
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PROFILE\tOUTCOME\tCALLS\tAVG LATENCY")
	for _, s := range sum {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", s.Profile, s.Outcome, s.Calls, s.AvgLatency.Round(time.Millisecond))
	}
	_ = tw.Flush()
}

func writeRecent(out io.Writer, recent []repository.UsageRecord) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tPROFILE\tOUTCOME\tSTATUS\tTAG\tLATENCY")
	for _, r := range recent {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
			r.CreatedAt.Local().Format(time.DateTime), r.Profile, r.Outcome, r.StatusCode, r.Tag, r.Latency)
	}
	_ = tw.Flush()
}
