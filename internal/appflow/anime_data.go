package appflow

import (
	"context"
	"strings"

	"github.com/alvarorichard/anipahe/internal/api"
	"github.com/alvarorichard/anipahe/internal/models"
	"github.com/alvarorichard/anipahe/internal/playback"
	"github.com/alvarorichard/anipahe/internal/util"
	"github.com/pkg/errors"
)

// SearchAnime runs a full search. No match is reported as api.ErrEmptyResult.
func SearchAnime(ctx context.Context, client *api.Client, name string) ([]models.AnimeSummary, error) {
	defer util.StartTimer("appflow.search").Stop()

	items, err := client.Search(ctx, strings.TrimSpace(name), models.DefaultFilters())
	if err != nil {
		return nil, errors.Wrap(err, "failed to search for anime")
	}
	if len(items) == 0 {
		return nil, api.ErrEmptyResult
	}
	util.Debugf("search %q returned %d results", name, len(items))
	return items, nil
}

// FetchAnimeDetails loads the details of a; failures are logged and the
// summary fields are used instead.
func FetchAnimeDetails(ctx context.Context, client *api.Client, a models.AnimeSummary) models.AnimeDetails {
	defer util.StartTimer("appflow.details").Stop()

	details, err := client.AnimeDetails(ctx, a.Session)
	if err != nil {
		util.Warn("failed to fetch anime details", "session", a.Session, "error", err)
		return models.AnimeDetails{
			Session:   a.Session,
			Title:     a.Title,
			Thumbnail: a.Thumbnail,
			Type:      a.Type,
			Genre:     a.Genre,
			Studio:    a.Studio,
			Year:      a.Year,
		}
	}
	return details
}

// GetAnimeEpisodes lists the episodes of a and fails when there are none.
func GetAnimeEpisodes(ctx context.Context, client *api.Client, a models.AnimeSummary) ([]models.Episode, error) {
	defer util.StartTimer("appflow.episodes").Stop()

	episodes, err := client.Episodes(ctx, a.Session)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch episodes")
	}
	if len(episodes) == 0 {
		return nil, errors.Errorf("%q has no episodes on the server", a.Title)
	}
	return episodes, nil
}

// PlayEpisode starts ep of a with the persisted player choice.
func (a *App) PlayEpisode(ctx context.Context, anime models.AnimeSummary, ep models.Episode) (playback.Result, error) {
	choice, err := a.Prefs.PlayerChoice(ctx)
	if err != nil {
		util.Warn("player choice unavailable, using default", "error", err)
		choice = models.PlayerMPV
	}
	return a.Player.Play(ctx, choice, playback.Request{
		Title:     anime.Title,
		Episode:   ep.Label(),
		Thumbnail: anime.Thumbnail,
		Refs:      []models.EpisodeRef{ep.Ref(anime.Session)},
	})
}

// PlayPlaylist plays every queued episode with the persisted player choice.
func (a *App) PlayPlaylist(ctx context.Context) (playback.Result, error) {
	choice, err := a.Prefs.PlayerChoice(ctx)
	if err != nil {
		choice = models.PlayerMPV
	}
	return a.Playlist.Play(ctx, a.Player, choice)
}

// SetCacheInterval sends the interval to the backend and remembers it.
func (a *App) SetCacheInterval(ctx context.Context, minutes int) error {
	if err := a.API.SetCacheInterval(ctx, minutes); err != nil {
		return err
	}
	return a.Prefs.SetCacheIntervalMinutes(ctx, minutes)
}
