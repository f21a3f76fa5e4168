package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	gsync "github.com/anshulchahar/gita/internal/sync"
)

var (
	syncUnits  []int
	syncDryRun bool
	syncWatch  bool
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Upload content to the remote document store",
	Long: `Upload journeys and unit content to the remote document store.

Documents are written in dependency order: journeys, units with their
chapter projection, sections, lessons, then questions. Every write is
an upsert, so re-running a sync is safe. Placeholder questions are never
uploaded.

With --dry-run the planned writes are listed without contacting the
store. With --watch the content directory is watched and changed units
are re-synced until interrupted.`,
	Example: `  gita sync
  gita sync --unit 1 --unit 2
  gita sync --dry-run --json
  gita sync --watch`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().IntSliceVar(&syncUnits, "unit", nil, "Unit numbers to sync (default: all)")
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "List planned writes without sending them")
	syncCmd.Flags().BoolVar(&syncWatch, "watch", false, "Re-sync units when their files change")
	syncCmd.MarkFlagsMutuallyExclusive("dry-run", "watch")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	a, log, err := openApp()
	if err != nil {
		return err
	}
	defer log.Sync()
	defer a.Close()

	if syncDryRun {
		writes, err := a.Plan(syncUnits)
		if err != nil {
			return err
		}
		return outputPlan(cmd, writes)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if syncWatch {
		printInfo(cmd.OutOrStdout(), "Watching for changes, press Ctrl+C to stop")
		err := a.Watch(ctx, func(sum *gsync.Summary, err error) {
			if sum != nil {
				_ = outputSummary(cmd, sum)
			}
			if err != nil {
				outputError(cmd.ErrOrStderr(), err)
			}
		})
		if err != nil && ctx.Err() == nil {
			return err
		}
		return nil
	}

	var sum *gsync.Summary
	err = runWithSpinner(cmd.ErrOrStderr(), "Syncing content...", func() error {
		var serr error
		sum, serr = a.Sync(ctx, syncUnits)
		return serr
	})
	if sum != nil {
		if oerr := outputSummary(cmd, sum); oerr != nil {
			return oerr
		}
	}
	if err != nil {
		return err
	}
	return summaryError(sum)
}

func outputPlan(cmd *cobra.Command, writes []gsync.Write) error {
	if outputJSON {
		return outputAsJSON(cmd, writes)
	}
	out := cmd.OutOrStdout()
	counts := map[string]int{}
	var order []string
	for _, w := range writes {
		if counts[w.Collection] == 0 {
			order = append(order, w.Collection)
		}
		counts[w.Collection]++
	}
	rows := make([][]string, 0, len(order))
	for _, c := range order {
		rows = append(rows, []string{c, fmt.Sprint(counts[c])})
	}
	if len(rows) > 0 {
		fmt.Fprintln(out, renderTable([]string{"Collection", "Writes"}, rows))
	}
	printInfo(out, "%d writes planned", len(writes))
	return nil
}

// withContext is used by commands that take no signal handling of their own.
func withContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
