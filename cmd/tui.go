package main

import (
	"cmp"
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/listenx/internal/formatter"
	"github.com/desertthunder/listenx/internal/shared"
	"github.com/desertthunder/listenx/internal/ui"
)

// Browse launches the interactive catalog browser.
func (r *Runner) Browse(ctx context.Context, cmd *cli.Command) error {
	f, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	logPath := cmp.Or(cmd.String("log"), filepath.Join(os.TempDir(), "listenx-tui.log"))
	fileLogger, closer, err := shared.NewFileLogger(logPath)
	if err != nil {
		return err
	}
	defer closer.Close()
	r.SetLogger(fileLogger)

	agg, err := r.aggregator()
	if err != nil {
		return err
	}
	provider, err := agg.Resolve(r.provider(cmd))
	if err != nil {
		return err
	}

	model := ui.NewModel(ctx, agg, ui.Options{
		Provider:  provider,
		FilterID:  cmd.String("filter"),
		Format:    f,
		OutputDir: cmd.String("dir"),
	})
	p := tea.NewProgram(model, tea.WithContext(ctx), tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
