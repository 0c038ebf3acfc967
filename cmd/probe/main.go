package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"probe/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "probe",
	Short: "Trace instrumentation for generated sources",
	Long:  `Probe splices diagnostic trace statements into generated source files. Insertions are idempotent: a trace that is already present is never inserted twice.`,
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(journalCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func useColor(cmd *cobra.Command) (bool, error) {
	mode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false, err
	}
	switch mode {
	case "on":
		return true, nil
	case "off":
		return false, nil
	default:
		return isTerminal(os.Stdout), nil
	}
}
