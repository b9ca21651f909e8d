// Package prefs stores the small user preferences that outlive a session.
package prefs

import (
	"context"
	"strconv"

	"github.com/alvarorichard/anipahe/internal/models"
	"github.com/alvarorichard/anipahe/internal/store"
	"github.com/pkg/errors"
)

// KeyPrefix namespaces every preference in the KV store.
const KeyPrefix = "pref."

const (
	keyPlayerChoice  = KeyPrefix + "playerChoice"
	keyCacheInterval = KeyPrefix + "cacheInterval"

	// DefaultCacheIntervalMinutes matches the backend's default schedule.
	DefaultCacheIntervalMinutes = 60
)

type Prefs struct {
	kv store.KV
}

func New(kv store.KV) *Prefs {
	return &Prefs{kv: kv}
}

// PlayerChoice returns the stored player, mpv when nothing is stored.
func (p *Prefs) PlayerChoice(ctx context.Context) (models.PlayerChoice, error) {
	v, _, err := p.kv.Get(ctx, keyPlayerChoice)
	if err != nil {
		return models.PlayerMPV, errors.Wrap(err, "failed to read player choice")
	}
	return models.ParsePlayerChoice(v), nil
}

func (p *Prefs) SetPlayerChoice(ctx context.Context, choice models.PlayerChoice) error {
	choice = models.ParsePlayerChoice(string(choice))
	return errors.Wrap(p.kv.Set(ctx, keyPlayerChoice, string(choice)), "failed to save player choice")
}

// CacheIntervalMinutes returns the last interval sent to the backend.
func (p *Prefs) CacheIntervalMinutes(ctx context.Context) (int, error) {
	v, ok, err := p.kv.Get(ctx, keyCacheInterval)
	if err != nil {
		return DefaultCacheIntervalMinutes, errors.Wrap(err, "failed to read cache interval")
	}
	if !ok {
		return DefaultCacheIntervalMinutes, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return DefaultCacheIntervalMinutes, nil
	}
	return n, nil
}

func (p *Prefs) SetCacheIntervalMinutes(ctx context.Context, minutes int) error {
	if minutes < 1 {
		return errors.Errorf("cache interval must be at least 1 minute, got %d", minutes)
	}
	return errors.Wrap(p.kv.Set(ctx, keyCacheInterval, strconv.Itoa(minutes)), "failed to save cache interval")
}

// Reset deletes every stored preference so the defaults apply again. It
// returns the number of entries removed.
func (p *Prefs) Reset(ctx context.Context) (int, error) {
	keys, err := p.kv.Keys(ctx, KeyPrefix)
	if err != nil {
		return 0, errors.Wrap(err, "failed to list preferences")
	}
	for i, k := range keys {
		if err := p.kv.Delete(ctx, k); err != nil {
			return i, errors.Wrapf(err, "failed to delete %s", k)
		}
	}
	return len(keys), nil
}
