// Package appflow builds the object graph shared by the TUI and the CLI
// commands and hosts the flows they have in common.
package appflow

import (
	"context"
	"time"

	"github.com/alvarorichard/anipahe/internal/api"
	"github.com/alvarorichard/anipahe/internal/autocomplete"
	"github.com/alvarorichard/anipahe/internal/cachestatus"
	"github.com/alvarorichard/anipahe/internal/config"
	"github.com/alvarorichard/anipahe/internal/controller"
	"github.com/alvarorichard/anipahe/internal/discord"
	"github.com/alvarorichard/anipahe/internal/favorites"
	"github.com/alvarorichard/anipahe/internal/playback"
	"github.com/alvarorichard/anipahe/internal/prefs"
	"github.com/alvarorichard/anipahe/internal/store"
	"github.com/alvarorichard/anipahe/internal/thumbnail"
	"github.com/alvarorichard/anipahe/internal/util"
	"github.com/pkg/errors"
)

// App holds the long-lived services of one process.
type App struct {
	Config     *config.Config
	API        *api.Client
	Store      store.KV
	Favorites  *favorites.Set
	Prefs      *prefs.Prefs
	Player     *playback.Player
	Playlist   *playback.Playlist
	Presence   *discord.Presence
	Thumbnails *thumbnail.Renderer
}

// Option adjusts App construction.
type Option func(*options)

type options struct {
	kv store.KV
}

// WithStore uses kv instead of opening the sqlite database.
func WithStore(kv store.KV) Option {
	return func(o *options) { o.kv = kv }
}

// New wires every service from cfg. When the database cannot be opened the
// app keeps running on an in-memory store and favorites are not persisted.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	client, err := api.NewClient(cfg.BaseURL,
		api.WithHTTPClient(util.NewBackendClient(cfg.RequestTimeout)),
		api.WithRateLimit(cfg.RequestsPerSecond),
		api.WithCache(util.NewResponseCache(10*time.Minute, 256)),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create api client")
	}

	kv := o.kv
	if kv == nil {
		kv = openStore(cfg.DBPath())
	}

	favs := favorites.New(kv)
	if err := favs.Load(ctx); err != nil {
		util.Warn("favorites unavailable", "error", err)
	}

	app := &App{
		Config:     cfg,
		API:        client,
		Store:      kv,
		Favorites:  favs,
		Prefs:      prefs.New(kv),
		Playlist:   playback.NewPlaylist(),
		Thumbnails: thumbnail.New(client.HTTPClient()),
	}

	var playerOpts []playback.Option
	if cfg.Discord {
		app.Presence = discord.New()
		playerOpts = append(playerOpts, playback.WithPresence(app.Presence))
	}
	app.Player = playback.New(client, playerOpts...)
	return app, nil
}

func openStore(path string) store.KV {
	db, err := store.OpenSQLite(path)
	if err != nil {
		util.Warn("falling back to in-memory store", "path", path, "error", err)
		return store.NewMemoryStore()
	}
	return db
}

// NewController creates the main view controller rendering into r.
func (a *App) NewController(r controller.Renderer) *controller.Controller {
	return controller.New(a.API, a.Favorites, r, a.Config.PageSize)
}

// NewAutocomplete creates the suggestion box for the search input.
func (a *App) NewAutocomplete(nav autocomplete.Navigator, r autocomplete.Renderer) *autocomplete.Controller {
	return autocomplete.New(a.API, nav, r,
		autocomplete.WithDebounce(a.Config.Debounce),
		autocomplete.WithTimeout(a.Config.RequestTimeout),
	)
}

// NewCacheWatcher follows the backend's cache status, publishing to publish.
func (a *App) NewCacheWatcher(publish func(string)) (*cachestatus.Watcher, error) {
	return cachestatus.New(a.API.BaseURL(), publish)
}

// Close releases the presence connection and the store.
func (a *App) Close() error {
	if a.Presence != nil {
		if err := a.Presence.Close(); err != nil {
			util.Debug("presence close failed", "error", err)
		}
	}
	return a.Store.Close()
}
