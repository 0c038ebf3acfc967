package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"probe/internal/plan"
	"probe/internal/report"
)

var planCmd = &cobra.Command{
	Use:   "plan [dir]",
	Short: "Show the resolved instrumentation plan",
	Long:  "Load and validate probe.toml, then print every resolved request without touching any target file.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runPlan,
}

func runPlan(cmd *cobra.Command, args []string) error {
	startDir := "."
	if len(args) == 1 {
		startDir = args[0]
	}

	pl, ok, err := plan.FindAndLoad(startDir)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s", noProbeTomlMessage)
	}

	requests := pl.Requests()
	fmt.Fprintf(os.Stdout, "%s: %s (%d requests)\n", pl.Path, pl.Config.Package.Name, len(requests))
	for _, req := range requests {
		fmt.Fprintf(os.Stdout, "  %-16s %-24s %s -> %s\n",
			req.Mode, req.Label, report.KeyPreview(req.Key), req.Path)
	}
	return nil
}
