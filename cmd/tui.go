package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/setlistx/internal/shared"
	"github.com/desertthunder/setlistx/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive setlist editor for one event.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	eventID, err := requireArg(cmd, "event")
	if err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(r.config.Log.TUIFile)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	shared.SetLogLevel(fileLogger, shared.ParseLogLevel(r.config.Log.Level))
	r.SetLogger(fileLogger)

	if err := r.open(); err != nil {
		return err
	}
	if _, err := r.events.Get(eventID); err != nil {
		return err
	}

	model := ui.NewModel(r.service, eventID, shared.WithLogger(fileLogger, "component", "tui"))
	p := tea.NewProgram(model, tea.WithContext(ctx), tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
