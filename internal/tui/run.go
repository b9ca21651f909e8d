package tui

import (
	"context"

	"github.com/alvarorichard/anipahe/internal/appflow"
	"github.com/alvarorichard/anipahe/internal/util"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
)

var _ Services = (*appflow.App)(nil)

// Run starts the full-screen interface and blocks until the user quits.
func Run(ctx context.Context, app *appflow.App) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	bridge := NewBridge()
	defer bridge.Close()

	ctrl := app.NewController(bridge)
	ac := app.NewAutocomplete(bridge, bridge)
	defer ac.Stop()

	watcher, err := app.NewCacheWatcher(bridge.PublishCacheStatus)
	if err != nil {
		util.Warn("cache status unavailable", "error", err)
	} else {
		go watcher.Run(ctx)
	}

	p := tea.NewProgram(NewModel(ctx, ctrl, ac, app), tea.WithAltScreen(), tea.WithContext(ctx))
	bridge.Attach(p.Send)

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return errors.Wrap(err, "tui failed")
	}
	return nil
}
