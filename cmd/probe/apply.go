package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"probe/internal/inject"
	"probe/internal/journal"
	"probe/internal/observ"
	"probe/internal/plan"
	"probe/internal/report"
	"probe/internal/source"
)

const noProbeTomlMessage = "no probe.toml found\nplease run inside a directory with a plan, or pass one explicitly, e.g.:\n  probe apply path/to/plan-dir"

var applyCmd = &cobra.Command{
	Use:   "apply [dir]",
	Short: "Apply the instrumentation plan to its target files",
	Long:  "Load probe.toml, splice the planned trace statements into the target files, and report one line per request. Files already carrying a trace are left untouched.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runApply,
}

func init() {
	applyCmd.Flags().Bool("dry-run", false, "compute outcomes without writing files")
	applyCmd.Flags().Bool("strict", false, "exit non-zero when any locate key was not found")
	applyCmd.Flags().Bool("verbose", false, "also report traces that were already present")
	applyCmd.Flags().String("ui", "auto", "interactive progress (auto|on|off)")
	applyCmd.Flags().String("journal-dir", "", "override the journal location (default: user cache dir)")
	applyCmd.Flags().Bool("no-journal", false, "do not record this run in the journal")
}

func runApply(cmd *cobra.Command, args []string) error {
	startDir := "."
	if len(args) == 1 {
		startDir = args[0]
	}

	dryRun, err := cmd.Flags().GetBool("dry-run")
	if err != nil {
		return err
	}
	strict, err := cmd.Flags().GetBool("strict")
	if err != nil {
		return err
	}
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return err
	}
	uiFlag, err := cmd.Flags().GetString("ui")
	if err != nil {
		return err
	}
	mode, err := readUIMode(uiFlag)
	if err != nil {
		return err
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return err
	}
	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return err
	}
	colorOn, err := useColor(cmd)
	if err != nil {
		return err
	}

	timer := observ.NewTimer()

	planPhase := timer.Begin("plan")
	pl, ok, err := plan.FindAndLoad(startDir)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s", noProbeTomlMessage)
	}
	requests := pl.Requests()
	timer.End(planPhase, fmt.Sprintf("%d requests", len(requests)))

	printer := report.NewPrinter(os.Stdout, report.Options{
		Color:   colorOn,
		Verbose: verbose,
		Quiet:   quiet,
	})

	if len(requests) == 0 {
		fmt.Fprintf(os.Stdout, "%s: nothing to instrument\n", pl.Path)
		return nil
	}

	fs := source.NewFileSetWithBase(pl.Root)

	applyPhase := timer.Begin("apply")
	opts := inject.ApplyOptions{DryRun: dryRun}
	var res *inject.ApplyResult
	if shouldUseTUI(mode) {
		res, err = runApplyWithUI("probe apply: "+pl.Config.Package.Name, fs, requests, opts)
	} else {
		opts.Events = printer
		res, err = inject.Apply(fs, requests, opts)
	}
	if err != nil {
		return fmt.Errorf("apply: %w", err)
	}
	timer.End(applyPhase, fmt.Sprintf("%d inserted", len(res.Applied)))

	printer.Summary(res, dryRun)

	if !dryRun {
		journalPhase := timer.Begin("journal")
		if err := recordRun(cmd, pl, res, dryRun); err != nil {
			// Journaling is best effort; the instrumentation already happened.
			fmt.Fprintf(os.Stderr, "warning: failed to record run: %v\n", err)
		}
		timer.End(journalPhase, "")
	}

	if showTimings {
		fmt.Fprint(os.Stdout, timer.Summary())
	}

	if strict && res.Warnings() > 0 {
		return fmt.Errorf("%d trace(s) could not be located", res.Warnings())
	}
	return nil
}

func recordRun(cmd *cobra.Command, pl *plan.Plan, res *inject.ApplyResult, dryRun bool) error {
	noJournal, err := cmd.Flags().GetBool("no-journal")
	if err != nil || noJournal {
		return err
	}
	j, err := openJournal(cmd)
	if err != nil {
		return err
	}

	run := journal.Run{
		PlanPath: pl.Path,
		PlanName: pl.Config.Package.Name,
		When:     time.Now(),
		DryRun:   dryRun,
		Inserted: make([]journal.Entry, 0, len(res.Applied)),
		Present:  len(res.Skipped) - res.Warnings(),
		Warnings: res.Warnings(),
	}
	for _, a := range res.Applied {
		run.Inserted = append(run.Inserted, journal.Entry{
			Label: a.Label,
			Path:  a.Path,
			Mode:  a.Mode.String(),
			Line:  a.Line,
		})
	}
	return j.Append(run)
}

func openJournal(cmd *cobra.Command) (*journal.Journal, error) {
	dir, err := cmd.Flags().GetString("journal-dir")
	if err != nil {
		return nil, err
	}
	if dir != "" {
		return journal.OpenAt(dir)
	}
	return journal.Open("probe")
}
