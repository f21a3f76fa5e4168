package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/anshulchahar/gita/internal/app"
)

var outlineCmd = &cobra.Command{
	Use:     "outline <unit>",
	Aliases: []string{"chain"},
	Short:   "Show a unit's lessons and prerequisite chain",
	Args:    cobra.ExactArgs(1),
	RunE:    runOutline,
}

func init() {
	rootCmd.AddCommand(outlineCmd)
}

func runOutline(cmd *cobra.Command, args []string) error {
	unit, err := strconv.Atoi(args[0])
	if err != nil || unit < 1 {
		return fmt.Errorf("invalid unit %q", args[0])
	}

	a, log, err := openApp()
	if err != nil {
		return err
	}
	defer log.Sync()
	defer a.Close()

	chain, err := a.LessonChain(unit)
	if err != nil {
		return err
	}
	if outputJSON {
		return outputAsJSON(cmd, chain)
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderMarkdown(outlineMarkdown(unit, chain)))
	return nil
}

// outlineMarkdown renders a lesson chain as a markdown document grouped by
// section.
func outlineMarkdown(unit int, chain []app.ChainLink) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Unit %d\n", unit)
	section := ""
	for _, l := range chain {
		if l.Section != section {
			section = l.Section
			fmt.Fprintf(&b, "\n## %s\n\n", section)
		}
		fmt.Fprintf(&b, "%d. **%s** `%s`", l.Order, l.Name, l.ID)
		if l.Prerequisite != "" {
			fmt.Fprintf(&b, " after `%s`", l.Prerequisite)
		}
		fmt.Fprintf(&b, " (%d questions", l.Questions)
		if l.Placeholders > 0 {
			fmt.Fprintf(&b, ", %d placeholders", l.Placeholders)
		}
		b.WriteString(")\n")
	}
	return b.String()
}
