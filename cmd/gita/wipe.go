package main

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	gsync "github.com/anshulchahar/gita/internal/sync"
)

var (
	wipeConfirm     bool
	wipeCollections []string
)

var wipeCmd = &cobra.Command{
	Use:   "wipe",
	Short: "Delete content documents from the remote store",
	Long: `Delete every document in the content collections, children first:
questions, lessons, sections, chapters, then units. Journeys are kept
unless named with --collection.

This cannot be undone. --confirm is required.`,
	Example: `  gita wipe --confirm
  gita wipe --confirm --collection questions --collection lessons`,
	RunE: runWipe,
}

func init() {
	wipeCmd.Flags().BoolVar(&wipeConfirm, "confirm", false, "Confirm deletion")
	wipeCmd.Flags().StringSliceVar(&wipeCollections, "collection", nil, "Collections to wipe (default: all but journeys)")
	rootCmd.AddCommand(wipeCmd)
}

func runWipe(cmd *cobra.Command, args []string) error {
	if !wipeConfirm {
		return errors.New("wipe deletes remote documents; re-run with --confirm")
	}
	a, log, err := openApp()
	if err != nil {
		return err
	}
	defer log.Sync()
	defer a.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var sum *gsync.Summary
	err = runWithSpinner(cmd.ErrOrStderr(), "Wiping collections...", func() error {
		var werr error
		sum, werr = a.Wipe(ctx, wipeCollections)
		return werr
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
