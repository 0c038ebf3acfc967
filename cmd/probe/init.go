package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"probe/internal/plan"
)

var initCmd = &cobra.Command{
	Use:   "init [path|name]",
	Short: "Initialize a new instrumentation plan",
	Long: `Initialize an instrumentation plan by creating probe.toml with a
commented example trace. If [path|name] is omitted, initializes the current
directory. If a non-existing name is provided, a directory will be created.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	// Resolve target directory
	var target string
	if len(args) == 0 || args[0] == "." {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		target = wd
	} else {
		arg := args[0]
		if !filepath.IsAbs(arg) {
			wd, err := os.Getwd()
			if err != nil {
				return err
			}
			target = filepath.Join(wd, arg)
		} else {
			target = arg
		}
	}

	// Ensure directory exists
	if st, err := os.Stat(target); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if err = os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("failed to create directory %q: %w", target, err)
			}
		} else {
			return err
		}
	} else if !st.IsDir() {
		return fmt.Errorf("%q is not a directory", target)
	}

	// Determine plan name from directory basename
	name := strings.TrimSpace(filepath.Base(target))
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = "probe-plan"
	}

	manifestPath := filepath.Join(target, plan.ManifestName)
	if _, err := os.Stat(manifestPath); err == nil {
		return fmt.Errorf("plan already initialized: %s exists", manifestPath)
	}

	manifest := buildDefaultManifest(name)
	if err := os.WriteFile(manifestPath, []byte(manifest), os.FileMode(0o600)); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	rel := target
	if wd, err := os.Getwd(); err == nil {
		if r, err2 := filepath.Rel(wd, target); err2 == nil {
			rel = r
		}
	}
	fmt.Fprintf(os.Stdout, "Initialized instrumentation plan in %s\n", rel)
	fmt.Fprintf(os.Stdout, "  - %s\n", plan.ManifestName)
	return nil
}

// buildDefaultManifest returns a starter probe.toml with a commented example
// for each of the two locate strategies.
func buildDefaultManifest(name string) string {
	return fmt.Sprintf(`# Probe instrumentation plan
[package]
name = "%s"
# Directory all trace file paths are relative to.
base = "output"

# Trace a function on entry: the line is spliced right after the opening
# brace that follows the signature.
#
# [[trace]]
# file = "HttpTest_methods_7.cpp"
# signature = "void System_Net_Http_HttpClient__ctor(System_Net_Http_HttpClient* __this)"
# label = "HC.ctor"

# Trace a call site: the line is spliced immediately above the line that
# contains the marker.
#
# [[trace]]
# file = "HttpTest_methods_7.cpp"
# before = "System_Threading_CancellationTokenSource__ctor(__t2)"
# label = "HC3.pre_CTS"
`, name)
}
