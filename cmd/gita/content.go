package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/anshulchahar/gita/internal/app"
)

var (
	reconcileDryRun bool

	generateCatalog string
	generateUnits   []int
	generateForce   bool

	themeUnits []int
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile <plan.json>",
	Short: "Apply a structural edit plan to a unit",
	Long: `Apply a reconciliation plan to one unit: insert lessons, reorder or
remove them, rename sections and lessons, and replace question sets.

Lesson IDs, orders and the prerequisite chain are recomputed afterwards.
The unit file is only rewritten when the edited document validates.`,
	Example: `  gita reconcile plans/unit1.json
  gita reconcile plans/unit1.json --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: runReconcile,
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Create placeholder unit files from a chapter catalog",
	Long: `Create unit<N>.json files from a chapter catalog. Each unit gets its
sections, lessons and placeholder questions, ready for authoring.

Existing unit files are left alone unless --force is given.`,
	Example: `  gita generate --catalog chapters.yaml
  gita generate --catalog chapters.yaml --unit 4 --force`,
	RunE: runGenerate,
}

var themeCmd = &cobra.Command{
	Use:   "theme <themes.yaml>",
	Short: "Rename sections and lessons from a theme table",
	Args:  cobra.ExactArgs(1),
	RunE:  runTheme,
}

func init() {
	reconcileCmd.Flags().BoolVar(&reconcileDryRun, "dry-run", false, "Apply and check the plan without writing the file")

	generateCmd.Flags().StringVar(&generateCatalog, "catalog", "", "Path to the chapter catalog (YAML)")
	generateCmd.Flags().IntSliceVar(&generateUnits, "unit", nil, "Unit numbers to generate (default: whole catalog)")
	generateCmd.Flags().BoolVar(&generateForce, "force", false, "Overwrite existing unit files")
	_ = generateCmd.MarkFlagRequired("catalog")

	themeCmd.Flags().IntSliceVar(&themeUnits, "unit", nil, "Unit numbers to theme (default: all in the table)")

	rootCmd.AddCommand(reconcileCmd, generateCmd, themeCmd)
}

func runReconcile(cmd *cobra.Command, args []string) error {
	plan, err := app.ReadPlan(args[0])
	if err != nil {
		return err
	}
	a, log, err := openApp()
	if err != nil {
		return err
	}
	defer log.Sync()
	defer a.Close()

	res, err := a.Reconcile(plan, reconcileDryRun)
	if err != nil {
		return err
	}
	if outputJSON {
		return outputAsJSON(cmd, res)
	}

	out := cmd.OutOrStdout()
	if len(res.Inserted) > 0 {
		printLabel(out, "Inserted:", strings.Join(res.Inserted, ", "))
	}
	if len(res.Removed) > 0 {
		printLabel(out, "Removed:", strings.Join(res.Removed, ", "))
	}
	printLabel(out, "Renamed:", fmt.Sprint(res.Renamed))
	printLabel(out, "Questions replaced:", fmt.Sprint(res.Replaced))
	if reconcileDryRun {
		printInfo(out, "Dry run: unit %d not written", plan.Unit)
	} else {
		printSuccess(out, "Unit %d reconciled", plan.Unit)
	}
	return nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	a, log, err := openApp()
	if err != nil {
		return err
	}
	defer log.Sync()
	defer a.Close()

	gen, err := a.Generate(generateCatalog, generateUnits, generateForce)
	if outputJSON {
		if jerr := outputAsJSON(cmd, gen); jerr != nil {
			return jerr
		}
		return err
	}

	out := cmd.OutOrStdout()
	for _, g := range gen {
		if g.Skipped {
			printMuted(out, "unit %d exists, skipped (use --force to overwrite)", g.Unit)
			continue
		}
		printSuccess(out, "unit %d written to %s", g.Unit, g.Path)
	}
	return err
}

func runTheme(cmd *cobra.Command, args []string) error {
	a, log, err := openApp()
	if err != nil {
		return err
	}
	defer log.Sync()
	defer a.Close()

	themed, err := a.Theme(args[0], themeUnits)
	if err != nil {
		return err
	}
	if outputJSON {
		return outputAsJSON(cmd, themed)
	}

	out := cmd.OutOrStdout()
	if len(themed) == 0 {
		printWarning(out, "No units matched the theme table")
		return nil
	}
	for _, t := range themed {
		printSuccess(out, "unit %d: %d renamed", t.Unit, t.Renamed)
	}
	return nil
}
