package appflow

import (
	"context"

	"github.com/alvarorichard/anipahe/internal/models"
	"github.com/alvarorichard/anipahe/internal/playback"
)

func (a *App) PlayerChoice(ctx context.Context) (models.PlayerChoice, error) {
	return a.Prefs.PlayerChoice(ctx)
}

func (a *App) SetPlayerChoice(ctx context.Context, choice models.PlayerChoice) error {
	return a.Prefs.SetPlayerChoice(ctx, choice)
}

func (a *App) CacheIntervalMinutes(ctx context.Context) (int, error) {
	return a.Prefs.CacheIntervalMinutes(ctx)
}

// ClearCache empties the backend cache and the local response cache.
func (a *App) ClearCache(ctx context.Context) error {
	return a.API.ClearCache(ctx)
}

// Thumbnail draws the cover at url, width cells wide.
func (a *App) Thumbnail(ctx context.Context, url string, width int) string {
	return a.Thumbnails.Render(ctx, a.API.ResolveURL(url), width)
}

// QueueEpisode appends ep of anime to the playlist.
func (a *App) QueueEpisode(anime models.AnimeSummary, ep models.Episode) bool {
	return a.Playlist.Add(playback.Entry{
		AnimeTitle: anime.Title,
		Episode:    ep.Label(),
		Thumbnail:  anime.Thumbnail,
		Ref:        ep.Ref(anime.Session),
	})
}

// DequeueEpisode drops ep from the playlist, reporting whether it was queued.
func (a *App) DequeueEpisode(ep models.Episode) bool {
	return a.Playlist.Remove(ep.Session)
}

func (a *App) ClearPlaylist() {
	a.Playlist.Clear()
}

func (a *App) PlaylistLen() int {
	return a.Playlist.Len()
}
