package main

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"probe/internal/inject"
	"probe/internal/source"
	"probe/internal/ui"
)

// uiMode is the parsed value of the --ui flag on apply.
type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

func readUIMode(value string) (uiMode, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return uiModeAuto, nil
	case "on":
		return uiModeOn, nil
	case "off":
		return uiModeOff, nil
	default:
		return "", fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
	}
}

// shouldUseTUI decides whether apply renders the progress view. Auto mode
// keeps plain printer output when stdout is redirected, so instrumentation
// logs stay grep-friendly in scripts and CI.
func shouldUseTUI(mode uiMode) bool {
	switch mode {
	case uiModeOn:
		return true
	case uiModeOff:
		return false
	default:
		return isTerminal(os.Stdout)
	}
}

type applyOutcome struct {
	result *inject.ApplyResult
	err    error
}

// runApplyWithUI runs the engine in a goroutine and renders progress through
// a Bubble Tea program until the batch finishes.
func runApplyWithUI(title string, fs *source.FileSet, requests []inject.Request, opts inject.ApplyOptions) (*inject.ApplyResult, error) {
	events := make(chan inject.Event, 256)
	outcomeCh := make(chan applyOutcome, 1)

	go func() {
		optsCopy := opts
		optsCopy.Events = inject.ChannelSink{Ch: events}
		res, err := inject.Apply(fs, requests, optsCopy)
		outcomeCh <- applyOutcome{result: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, requests, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
