package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"probe/internal/plan"
)

var journalCmd = &cobra.Command{
	Use:   "journal [dir]",
	Short: "List recorded instrumentation runs for the plan",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runJournal,
}

func init() {
	journalCmd.Flags().String("journal-dir", "", "override the journal location (default: user cache dir)")
	journalCmd.Flags().Bool("labels", false, "also list the labels inserted by each run")
}

func runJournal(cmd *cobra.Command, args []string) error {
	startDir := "."
	if len(args) == 1 {
		startDir = args[0]
	}

	planPath, ok, err := plan.Find(startDir)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s", noProbeTomlMessage)
	}

	showLabels, err := cmd.Flags().GetBool("labels")
	if err != nil {
		return err
	}
	j, err := openJournal(cmd)
	if err != nil {
		return err
	}
	runs, err := j.Runs(planPath)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintf(os.Stdout, "no recorded runs for %s\n", planPath)
		return nil
	}

	for _, run := range runs {
		fmt.Fprintf(os.Stdout, "%s  %s: %d inserted, %d already present, %d warnings\n",
			run.When.Format("2006-01-02 15:04:05"), run.PlanName,
			len(run.Inserted), run.Present, run.Warnings)
		if showLabels {
			for _, e := range run.Inserted {
				fmt.Fprintf(os.Stdout, "  %-24s %s:%d\n", e.Label, e.Path, e.Line)
			}
		}
	}
	return nil
}
