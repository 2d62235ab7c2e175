package ui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/pensum/pkg/loader"
	"github.com/vanderheijden86/pensum/pkg/model"
	"github.com/vanderheijden86/pensum/pkg/watcher"
)

// RunOptions configures Run.
type RunOptions struct {
	Options
	// Path is the curriculum file; with Watch set, edits reload the board.
	Path  string
	Watch bool
	Parse loader.ParseOptions
}

// Run shows the board until the user quits or ctx ends, and returns the
// subject that was hovered last.
func Run(ctx context.Context, c *model.Curriculum, ro RunOptions) (string, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if ro.Watch && ro.Path != "" {
		reloads := make(chan ReloadMsg)
		// Warnings would scribble over the alternate screen.
		parse := ro.Parse
		parse.WarningHandler = func(string) {}
		err := watcher.WatchCurriculum(ctx, ro.Path, parse, func(c *model.Curriculum, err error) {
			select {
			case reloads <- ReloadMsg{Curriculum: c, Err: err}:
			case <-ctx.Done():
			}
		})
		if err != nil {
			return "", fmt.Errorf("watch %s: %w", ro.Path, err)
		}
		ro.Options.Reloads = reloads
	}

	p := tea.NewProgram(NewModel(c, ro.Options), tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return "", err
	}
	if fm, ok := final.(Model); ok {
		return fm.Hovered(), nil
	}
	return "", nil
}
