package autocomplete

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alvarorichard/anipahe/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type suggesterFunc func(ctx context.Context, q string) ([]models.AnimeSummary, error)

func (f suggesterFunc) Suggestions(ctx context.Context, q string) ([]models.AnimeSummary, error) {
	return f(ctx, q)
}

type navRecorder struct {
	mu       sync.Mutex
	opened   []string
	searches []string
}

func (n *navRecorder) OpenDetail(a models.AnimeSummary) {
	n.mu.Lock()
	n.opened = append(n.opened, a.Session)
	n.mu.Unlock()
}

func (n *navRecorder) FullSearch(q string) {
	n.mu.Lock()
	n.searches = append(n.searches, q)
	n.mu.Unlock()
}

type renderLog struct {
	mu     sync.Mutex
	states []State
}

func (r *renderLog) RenderSuggestions(s State) {
	r.mu.Lock()
	r.states = append(r.states, s)
	r.mu.Unlock()
}

func (r *renderLog) all() []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]State(nil), r.states...)
}

func (r *renderLog) last() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.states) == 0 {
		return State{Cursor: -1}
	}
	return r.states[len(r.states)-1]
}

func suggestion(session string) models.AnimeSummary {
	return models.AnimeSummary{Session: session, Title: session}
}

const debounce = 20 * time.Millisecond

func waitOpen(t *testing.T, r *renderLog) State {
	t.Helper()
	require.Eventually(t, func() bool {
		s := r.last()
		return s.Open && !s.Loading
	}, time.Second, 5*time.Millisecond)
	return r.last()
}

func TestOnInput_DebounceCoalesces(t *testing.T) {
	var mu sync.Mutex
	var queries []string
	s := suggesterFunc(func(_ context.Context, q string) ([]models.AnimeSummary, error) {
		mu.Lock()
		queries = append(queries, q)
		mu.Unlock()
		return []models.AnimeSummary{suggestion(q)}, nil
	})
	r := &renderLog{}
	c := New(s, &navRecorder{}, r, WithDebounce(debounce))
	defer c.Stop()

	c.OnInput("a")
	c.OnInput("ab")
	state := waitOpen(t, r)

	require.Len(t, state.Items, 1)
	assert.Equal(t, "ab", state.Items[0].Session)
	mu.Lock()
	assert.Equal(t, []string{"ab"}, queries)
	mu.Unlock()
}

func TestOnInput_StaleResponseNeverRendered(t *testing.T) {
	releaseA := make(chan struct{})
	startedA := make(chan struct{})
	s := suggesterFunc(func(_ context.Context, q string) ([]models.AnimeSummary, error) {
		if q == "a" {
			close(startedA)
			<-releaseA
			return []models.AnimeSummary{suggestion("stale")}, nil
		}
		return []models.AnimeSummary{suggestion("fresh")}, nil
	})
	r := &renderLog{}
	c := New(s, &navRecorder{}, r, WithDebounce(debounce))

	c.OnInput("a")
	<-startedA
	c.OnInput("ab")
	state := waitOpen(t, r)
	require.Len(t, state.Items, 1)
	assert.Equal(t, "fresh", state.Items[0].Session)

	// "a" answers after "ab" has been rendered
	close(releaseA)
	c.Stop()

	for _, st := range r.all() {
		for _, it := range st.Items {
			assert.NotEqual(t, "stale", it.Session)
		}
	}
	assert.Equal(t, "fresh", r.last().Items[0].Session)
}

func TestOnInput_EmptyClosesImmediately(t *testing.T) {
	s := suggesterFunc(func(context.Context, string) ([]models.AnimeSummary, error) {
		return []models.AnimeSummary{suggestion("x")}, nil
	})
	r := &renderLog{}
	c := New(s, &navRecorder{}, r, WithDebounce(debounce))
	defer c.Stop()

	c.OnInput("na")
	waitOpen(t, r)

	c.OnInput("  ")
	st := r.last()
	assert.False(t, st.Open)
	assert.Empty(t, st.Items)
}

func TestOnInput_FailureIsEmptyList(t *testing.T) {
	s := suggesterFunc(func(context.Context, string) ([]models.AnimeSummary, error) {
		return nil, errors.New("backend down")
	})
	r := &renderLog{}
	c := New(s, &navRecorder{}, r, WithDebounce(debounce))
	defer c.Stop()

	c.OnInput("na")
	st := waitOpen(t, r)
	assert.Empty(t, st.Items)
	assert.Equal(t, "na", st.Query)
}

func TestOnKey_CursorClampsAndSelects(t *testing.T) {
	s := suggesterFunc(func(context.Context, string) ([]models.AnimeSummary, error) {
		return []models.AnimeSummary{suggestion("one"), suggestion("two"), suggestion("three")}, nil
	})
	nav := &navRecorder{}
	r := &renderLog{}
	c := New(s, nav, r, WithDebounce(debounce))
	defer c.Stop()

	c.OnInput("t")
	waitOpen(t, r)

	assert.True(t, c.OnKey(KeyUp))
	assert.Equal(t, 0, c.State().Cursor)
	for i := 0; i < 5; i++ {
		c.OnKey(KeyDown)
	}
	assert.Equal(t, 2, c.State().Cursor, "no wrap past the end")
	c.OnKey(KeyUp)
	active, ok := c.State().Active()
	require.True(t, ok)
	assert.Equal(t, "two", active.Session)

	assert.True(t, c.OnKey(KeyEnter))
	assert.False(t, c.State().Open)
	assert.Equal(t, "t", c.State().Query, "selection keeps the text")
	nav.mu.Lock()
	assert.Equal(t, []string{"two"}, nav.opened)
	nav.mu.Unlock()
}

func TestOnKey_EnterWithoutSuggestionsSearches(t *testing.T) {
	s := suggesterFunc(func(context.Context, string) ([]models.AnimeSummary, error) {
		return nil, nil
	})
	nav := &navRecorder{}
	r := &renderLog{}
	c := New(s, nav, r, WithDebounce(time.Hour))
	defer c.Stop()

	c.OnInput("naruto ")
	assert.False(t, c.OnKey(KeyDown))
	assert.True(t, c.OnKey(KeyEnter))

	nav.mu.Lock()
	assert.Equal(t, []string{"naruto"}, nav.searches)
	assert.Empty(t, nav.opened)
	nav.mu.Unlock()
}

func TestOnKey_EscapeKeepsText(t *testing.T) {
	s := suggesterFunc(func(context.Context, string) ([]models.AnimeSummary, error) {
		return []models.AnimeSummary{suggestion("one")}, nil
	})
	r := &renderLog{}
	c := New(s, &navRecorder{}, r, WithDebounce(debounce))
	defer c.Stop()

	c.OnInput("on")
	waitOpen(t, r)

	assert.True(t, c.OnKey(KeyEscape))
	st := c.State()
	assert.False(t, st.Open)
	assert.Equal(t, "on", st.Query)
	assert.False(t, c.OnKey(KeyEscape))
}
