package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/anshulchahar/gita/internal/ledger"
)

var statusKind string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the last recorded sync or wipe",
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusKind, "kind", "", "Run kind: sync or wipe (default: any)")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	switch statusKind {
	case "", "sync", "wipe":
	default:
		return fmt.Errorf("unknown run kind %q", statusKind)
	}

	a, log, err := openApp()
	if err != nil {
		return err
	}
	defer log.Sync()
	defer a.Close()

	report, err := a.LastRun(withContext(cmd), statusKind)
	if errors.Is(err, ledger.ErrNoRuns) {
		if outputJSON {
			return outputAsJSON(cmd, map[string]any{"run": nil})
		}
		printInfo(cmd.OutOrStdout(), "No runs recorded yet")
		return nil
	}
	if err != nil {
		return err
	}
	if outputJSON {
		return outputAsJSON(cmd, report)
	}

	out := cmd.OutOrStdout()
	printLabel(out, "Run:     ", report.ID)
	printLabel(out, "Kind:    ", report.Kind)
	printLabel(out, "Started: ", report.StartedAt.Local().Format(time.RFC3339))
	printLabel(out, "Duration:", report.Duration().Round(time.Millisecond).String())
	if len(report.Units) > 0 {
		printLabel(out, "Units:   ", fmt.Sprint(report.Units))
	}
	printLabel(out, "Result:  ", fmt.Sprintf("%d succeeded, %d failed", report.Succeeded, report.Failed))
	if report.Aborted != "" {
		printWarning(out, "aborted: %s", scrubSensitiveData(report.Aborted))
	}
	for _, f := range report.Failures {
		printError(out, "%s", f.String())
	}
	return nil
}
