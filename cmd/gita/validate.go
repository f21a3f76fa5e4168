package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateUnits []int

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check unit files for structural problems",
	Long: `Check each unit document: IDs, section and lesson ordering, the
prerequisite chain, and question references. Every violation is reported,
not only the first.`,
	Example: `  gita validate
  gita validate --unit 3 --json`,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().IntSliceVar(&validateUnits, "unit", nil, "Unit numbers to check (default: all)")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	a, log, err := openApp()
	if err != nil {
		return err
	}
	defer log.Sync()
	defer a.Close()

	reports, err := a.Validate(validateUnits)
	if err != nil {
		return err
	}

	invalid := 0
	for _, r := range reports {
		if !r.Valid {
			invalid++
		}
	}

	if outputJSON {
		if err := outputAsJSON(cmd, reports); err != nil {
			return err
		}
	} else {
		out := cmd.OutOrStdout()
		if len(reports) == 0 {
			printWarning(out, "No unit files found")
			return nil
		}
		for _, r := range reports {
			if r.Valid {
				printSuccess(out, "unit %d: %d lessons, %d questions", r.Unit, r.Lessons, r.Questions)
				continue
			}
			printError(out, "unit %d: %d problems", r.Unit, len(r.Violations))
			for _, v := range r.Violations {
				printMuted(out, "    %s", v)
			}
		}
	}

	if invalid > 0 {
		return fmt.Errorf("%d of %d units failed validation", invalid, len(reports))
	}
	return nil
}
