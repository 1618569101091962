package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"bridgegen/internal/pipeline"
	"bridgegen/internal/ui"
)

type runOutcome struct {
	results []*pipeline.Result
	err     error
}

// runWithUI runs the pipeline in the background and renders its events
// until every unit finished.
func runWithUI(ctx context.Context, title string, units []pipeline.Unit, opts pipeline.Options) ([]*pipeline.Result, error) {
	events := make(chan pipeline.Event, 256)
	outcomeCh := make(chan runOutcome, 1)

	go func() {
		optsCopy := opts
		optsCopy.Sink = pipeline.ChannelSink{Ch: events}
		results, err := pipeline.Run(ctx, units, optsCopy)
		outcomeCh <- runOutcome{results: results, err: err}
		close(events)
	}()

	names := make([]string, 0, len(units))
	for _, u := range units {
		names = append(names, u.Name)
	}
	model := ui.NewProgressModel(title, names, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}

// uiMode is the --ui flag value.
type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

func readUIMode(value string) (uiMode, error) {
	switch mode := uiMode(strings.TrimSpace(strings.ToLower(value))); mode {
	case "":
		return uiModeAuto, nil
	case uiModeAuto, uiModeOn, uiModeOff:
		return mode, nil
	default:
		return "", fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
	}
}

// shouldUseTUI resolves auto: the progress view needs an interactive stdout
// and is pointless when output is quiet.
func shouldUseTUI(mode uiMode, quiet bool) bool {
	if mode != uiModeAuto {
		return mode == uiModeOn
	}
	if quiet || os.Getenv("TERM") == "dumb" {
		return false
	}
	return isTerminal(os.Stdout)
}
