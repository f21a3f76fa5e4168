package main

import (
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/cobra"

	gsync "github.com/anshulchahar/gita/internal/sync"
)

// outputAsJSON writes any value as formatted JSON to the command's stdout.
func outputAsJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError prints an error to stderr with token material removed.
func outputError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %s\n", scrubSensitiveData(err.Error()))
}

var tokenPattern = regexp.MustCompile(`\b(ya29\.|1//)[A-Za-z0-9._\-]+`)

// scrubSensitiveData redacts OAuth access and refresh tokens.
func scrubSensitiveData(msg string) string {
	return tokenPattern.ReplaceAllStringFunc(msg, func(m string) string {
		if strings.HasPrefix(m, "1//") {
			return "1//[REDACTED]"
		}
		return "ya29.[REDACTED]"
	})
}

// outputSummary prints a sync or wipe summary in the configured format.
func outputSummary(cmd *cobra.Command, sum *gsync.Summary) error {
	if outputJSON {
		return outputAsJSON(cmd, sum)
	}
	out := cmd.OutOrStdout()

	counts := sum.ByCollection()
	rows := make([][]string, 0, len(counts))
	for _, c := range counts {
		rows = append(rows, []string{c.Collection, fmt.Sprint(c.Succeeded), fmt.Sprint(c.Failed)})
	}
	if len(rows) > 0 {
		fmt.Fprintln(out, renderTable([]string{"Collection", "OK", "Failed"}, rows))
	}

	for _, r := range sum.Failures() {
		printError(out, "%s", r.String())
	}
	if len(sum.Skipped) > 0 {
		printWarning(out, "units without a content file: %v", sum.Skipped)
	}
	if sum.Aborted != "" {
		printWarning(out, "%s aborted: %s", sum.Kind, scrubSensitiveData(sum.Aborted))
	}

	elapsed := sum.FinishedAt.Sub(sum.StartedAt).Round(time.Millisecond)
	if sum.Failed == 0 && sum.Aborted == "" {
		printSuccess(out, "%s %s: %d documents in %s", sum.Kind, sum.RunID, sum.Succeeded, elapsed)
	} else {
		printMuted(out, "%s %s: %d succeeded, %d failed in %s", sum.Kind, sum.RunID, sum.Succeeded, sum.Failed, elapsed)
	}
	return nil
}

// summaryError turns a summary with failures into a non-zero exit.
func summaryError(sum *gsync.Summary) error {
	if sum == nil {
		return nil
	}
	if sum.Aborted != "" {
		return fmt.Errorf("%s aborted after %d documents: %s", sum.Kind, sum.Succeeded, sum.Aborted)
	}
	if sum.Failed > 0 {
		return fmt.Errorf("%d of %d documents failed", sum.Failed, sum.Failed+sum.Succeeded)
	}
	return nil
}
