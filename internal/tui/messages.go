// Package tui is the Bubble Tea front-end. It renders controller snapshots
// and forwards key presses to the controllers; it owns no application state
// beyond cursors and focus.
package tui

import (
	"github.com/alvarorichard/anipahe/internal/autocomplete"
	"github.com/alvarorichard/anipahe/internal/controller"
	"github.com/alvarorichard/anipahe/internal/models"
)

// snapshotMsg carries the controller state after a transition.
type snapshotMsg struct {
	snap controller.Snapshot
}

// suggestionsMsg carries the autocomplete state after a change.
type suggestionsMsg struct {
	state autocomplete.State
}

// cacheStatusMsg is a text received from the background cache watcher.
type cacheStatusMsg string

// openDetailMsg and fullSearchMsg are navigation requests from the
// suggestion box.
type openDetailMsg struct {
	anime models.AnimeSummary
}

type fullSearchMsg struct {
	query string
}

// thumbnailMsg delivers rendered cover art for url.
type thumbnailMsg struct {
	url string
	art string
}

// noticeMsg is a local status line set by UI-side operations.
type noticeMsg string

// settingsMsg reports the persisted settings.
type settingsMsg struct {
	choice  models.PlayerChoice
	minutes int
}
