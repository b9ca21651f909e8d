package playback

import (
	"context"
	"sync"

	"github.com/alvarorichard/anipahe/internal/models"
)

// Entry is one queued episode.
type Entry struct {
	AnimeTitle string
	Episode    string
	Thumbnail  string
	Ref        models.EpisodeRef
}

// Playlist is an ordered queue of episodes without duplicates.
type Playlist struct {
	mu      sync.RWMutex
	entries []Entry
}

func NewPlaylist() *Playlist {
	return &Playlist{}
}

// Add queues e. It returns false for incomplete refs and episodes already queued.
func (pl *Playlist) Add(e Entry) bool {
	if !e.Ref.Valid() {
		return false
	}
	pl.mu.Lock()
	defer pl.mu.Unlock()
	for _, x := range pl.entries {
		if x.Ref == e.Ref {
			return false
		}
	}
	pl.entries = append(pl.entries, e)
	return true
}

// Remove drops the entry with the given episode session.
func (pl *Playlist) Remove(episodeSession string) bool {
	pl.mu.Lock()
	defer pl.mu.Unlock()
	for i, x := range pl.entries {
		if x.Ref.EpisodeSession == episodeSession {
			pl.entries = append(pl.entries[:i], pl.entries[i+1:]...)
			return true
		}
	}
	return false
}

func (pl *Playlist) Clear() {
	pl.mu.Lock()
	pl.entries = nil
	pl.mu.Unlock()
}

func (pl *Playlist) Len() int {
	pl.mu.RLock()
	defer pl.mu.RUnlock()
	return len(pl.entries)
}

// Entries returns a copy of the queue.
func (pl *Playlist) Entries() []Entry {
	pl.mu.RLock()
	defer pl.mu.RUnlock()
	return append([]Entry(nil), pl.entries...)
}

// Play starts the whole queue with choice. The queue is kept.
func (pl *Playlist) Play(ctx context.Context, p *Player, choice models.PlayerChoice) (Result, error) {
	entries := pl.Entries()
	if len(entries) == 0 {
		return Result{Choice: choice}, ErrEmptyPlaylist
	}
	refs := make([]models.EpisodeRef, 0, len(entries))
	for _, e := range entries {
		refs = append(refs, e.Ref)
	}
	first := entries[0]
	return p.Play(ctx, choice, Request{
		Title:     first.AnimeTitle,
		Episode:   first.Episode,
		Thumbnail: first.Thumbnail,
		Refs:      refs,
	})
}
