// Package playback starts episodes either through the backend's external
// player (mpv) or in the system browser.
package playback

import (
	"context"

	"github.com/alvarorichard/anipahe/internal/models"
	"github.com/alvarorichard/anipahe/internal/util"
	"github.com/pkg/browser"
	"github.com/pkg/errors"
)

// ErrNoStreams is returned when the backend resolved no stream URL.
var ErrNoStreams = errors.New("Keine Stream-URLs gefunden.")

// ErrEmptyPlaylist is returned when an empty playlist is played.
var ErrEmptyPlaylist = errors.New("Die Playlist ist leer.")

// Backend resolves and plays episodes.
type Backend interface {
	StreamURLs(ctx context.Context, refs []models.EpisodeRef) ([]models.StreamURL, error)
	PlayExternal(ctx context.Context, refs []models.EpisodeRef) error
}

// Presence is notified about what is playing. Failures are only logged.
type Presence interface {
	Watching(title, episode, imageURL string) error
}

// Request describes what to play.
type Request struct {
	Title     string
	Episode   string
	Thumbnail string
	Refs      []models.EpisodeRef
}

// Result reports what was started.
type Result struct {
	Choice models.PlayerChoice
	URLs   []models.StreamURL
	// Opened is the URL handed to the browser for the web player.
	Opened string
}

type Player struct {
	backend  Backend
	open     func(url string) error
	presence Presence
}

type Option func(*Player)

// WithPresence enables Rich Presence updates.
func WithPresence(p Presence) Option {
	return func(pl *Player) { pl.presence = p }
}

// WithOpener replaces the browser launcher.
func WithOpener(open func(url string) error) Option {
	return func(pl *Player) { pl.open = open }
}

func New(backend Backend, opts ...Option) *Player {
	p := &Player{backend: backend, open: browser.OpenURL}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Play resolves stream URLs for req and starts them with choice. For mpv
// the backend only starts its player when at least one URL was resolved.
func (p *Player) Play(ctx context.Context, choice models.PlayerChoice, req Request) (Result, error) {
	choice = models.ParsePlayerChoice(string(choice))
	res := Result{Choice: choice}

	urls, err := p.backend.StreamURLs(ctx, req.Refs)
	if err != nil {
		return res, err
	}
	if len(urls) == 0 {
		return res, ErrNoStreams
	}
	res.URLs = urls

	switch choice {
	case models.PlayerWeb:
		res.Opened = urls[0].URL
		if err := p.open(res.Opened); err != nil {
			return res, errors.Wrap(err, "failed to open browser")
		}
	default:
		if err := p.backend.PlayExternal(ctx, req.Refs); err != nil {
			return res, err
		}
	}
	util.Info("playback started", "player", choice, "title", req.Title, "episodes", len(req.Refs))

	if p.presence != nil {
		if err := p.presence.Watching(req.Title, req.Episode, req.Thumbnail); err != nil {
			util.Debug("rich presence update failed", "error", err)
		}
	}
	return res, nil
}
