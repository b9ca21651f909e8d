// Package favorites keeps the user's favorite anime in a KV store under the
// "favorites" key, as a JSON array of reduced summaries.
package favorites

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"sync"

	"github.com/alvarorichard/anipahe/internal/models"
	"github.com/alvarorichard/anipahe/internal/store"
	"github.com/alvarorichard/anipahe/internal/util"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// StorageKey is the KV key holding the favorites list.
const StorageKey = "favorites"

// ErrNoSession is returned when toggling an entry without a session id.
var ErrNoSession = errors.New("favorite has no session id")

// Set is the ordered favorites list, unique by session.
type Set struct {
	mu    sync.RWMutex
	kv    store.KV
	items []models.AnimeSummary
}

func New(kv store.KV) *Set {
	return &Set{kv: kv}
}

// Load reads the persisted list. A corrupt value is logged and treated as empty.
func (s *Set) Load(ctx context.Context) error {
	raw, ok, err := s.kv.Get(ctx, StorageKey)
	if err != nil {
		return errors.Wrap(err, "failed to load favorites")
	}

	var items []models.AnimeSummary
	if ok && strings.TrimSpace(raw) != "" {
		if err := json.Unmarshal([]byte(raw), &items); err != nil {
			util.Warn("favorites are corrupt, starting empty", "error", err)
			items = nil
		}
	}

	s.mu.Lock()
	s.items = dedupe(items)
	s.mu.Unlock()
	return nil
}

func dedupe(items []models.AnimeSummary) []models.AnimeSummary {
	seen := make(map[string]bool, len(items))
	out := make([]models.AnimeSummary, 0, len(items))
	for _, it := range items {
		if it.Session == "" || seen[it.Session] {
			continue
		}
		seen[it.Session] = true
		out = append(out, it.Reduced())
	}
	return out
}

// List returns a copy of the favorites in insertion order.
func (s *Set) List() []models.AnimeSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.AnimeSummary, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *Set) Has(session string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexOf(session) >= 0
}

func (s *Set) indexOf(session string) int {
	for i, it := range s.items {
		if it.Session == session {
			return i
		}
	}
	return -1
}

// Toggle adds a missing entry or removes a present one and persists the
// result. added reports the direction. On a write failure the in-memory list
// is left unchanged.
func (s *Set) Toggle(ctx context.Context, a models.AnimeSummary) (added bool, err error) {
	if a.Session == "" {
		return false, ErrNoSession
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]models.AnimeSummary, 0, len(s.items)+1)
	if i := s.indexOf(a.Session); i >= 0 {
		next = append(next, s.items[:i]...)
		next = append(next, s.items[i+1:]...)
	} else {
		next = append(next, s.items...)
		next = append(next, a.Reduced())
		added = true
	}

	if err := s.persist(ctx, next); err != nil {
		return false, err
	}
	s.items = next
	return added, nil
}

func (s *Set) persist(ctx context.Context, items []models.AnimeSummary) error {
	b, err := json.Marshal(items)
	if err != nil {
		return errors.Wrap(err, "failed to encode favorites")
	}
	if err := s.kv.Set(ctx, StorageKey, string(b)); err != nil {
		return errors.Wrap(err, "failed to save favorites")
	}
	return nil
}

// Clear removes every favorite, including the persisted entry.
func (s *Set) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.kv.Delete(ctx, StorageKey); err != nil {
		return errors.Wrap(err, "failed to clear favorites")
	}
	s.items = nil
	return nil
}

type exportFile struct {
	Favorites []models.AnimeSummary `yaml:"favorites"`
}

// Export writes the favorites as YAML.
func (s *Set) Export(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(exportFile{Favorites: s.List()}); err != nil {
		return errors.Wrap(err, "failed to export favorites")
	}
	return enc.Close()
}

// Import merges favorites from a YAML export. Entries already present are
// skipped. It returns the number of entries added.
func (s *Set) Import(ctx context.Context, r io.Reader) (int, error) {
	var in exportFile
	if err := yaml.NewDecoder(r).Decode(&in); err != nil && !errors.Is(err, io.EOF) {
		return 0, errors.Wrap(err, "failed to read favorites export")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := append([]models.AnimeSummary(nil), s.items...)
	added := 0
	for _, it := range dedupe(in.Favorites) {
		if s.indexOf(it.Session) >= 0 {
			continue
		}
		next = append(next, it)
		added++
	}
	if added == 0 {
		return 0, nil
	}
	if err := s.persist(ctx, next); err != nil {
		return 0, err
	}
	s.items = next
	return added, nil
}
