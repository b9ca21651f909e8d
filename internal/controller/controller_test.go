package controller

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/alvarorichard/anipahe/internal/api"
	"github.com/alvarorichard/anipahe/internal/favorites"
	"github.com/alvarorichard/anipahe/internal/models"
	"github.com/alvarorichard/anipahe/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	search   func(ctx context.Context, query string, f models.SearchFilters) ([]models.AnimeSummary, error)
	browse   func(ctx context.Context, page, limit int) (models.ResultPage, error)
	details  func(ctx context.Context, session string) (models.AnimeDetails, error)
	episodes func(ctx context.Context, session string) ([]models.Episode, error)
	options  func(ctx context.Context) (models.FilterOptions, error)

	mu          sync.Mutex
	browseCalls []int
}

func (f *fakeBackend) Search(ctx context.Context, q string, fl models.SearchFilters) ([]models.AnimeSummary, error) {
	return f.search(ctx, q, fl)
}

func (f *fakeBackend) BrowseAll(ctx context.Context, page, limit int) (models.ResultPage, error) {
	f.mu.Lock()
	f.browseCalls = append(f.browseCalls, page)
	f.mu.Unlock()
	return f.browse(ctx, page, limit)
}

func (f *fakeBackend) AnimeDetails(ctx context.Context, s string) (models.AnimeDetails, error) {
	return f.details(ctx, s)
}

func (f *fakeBackend) Episodes(ctx context.Context, s string) ([]models.Episode, error) {
	return f.episodes(ctx, s)
}

func (f *fakeBackend) FilterOptions(ctx context.Context) (models.FilterOptions, error) {
	return f.options(ctx)
}

func (f *fakeBackend) lastBrowsePage() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.browseCalls) == 0 {
		return 0
	}
	return f.browseCalls[len(f.browseCalls)-1]
}

type recorder struct {
	mu    sync.Mutex
	snaps []Snapshot
}

func (r *recorder) Render(s Snapshot) {
	r.mu.Lock()
	r.snaps = append(r.snaps, s)
	r.mu.Unlock()
}

func (r *recorder) last() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snaps[len(r.snaps)-1]
}

// statusesSince lists the status of every snapshot rendered after the first n.
func (r *recorder) statusesSince(n int) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, s := range r.snaps[n:] {
		out = append(out, s.Status)
	}
	return out
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.snaps)
}

func items(n int) []models.AnimeSummary {
	out := make([]models.AnimeSummary, n)
	for i := range out {
		out[i] = models.AnimeSummary{Session: fmt.Sprintf("s%d", i), Title: fmt.Sprintf("Anime %d", i), Type: "TV", Year: "2002"}
	}
	return out
}

// catalog serves a browse listing of total items split into pages.
func catalog(total int) func(context.Context, int, int) (models.ResultPage, error) {
	all := items(total)
	return func(_ context.Context, page, limit int) (models.ResultPage, error) {
		start := (page - 1) * limit
		if start > len(all) {
			start = len(all)
		}
		end := start + limit
		if end > len(all) {
			end = len(all)
		}
		return models.ResultPage{Items: all[start:end], Total: total, Page: page, PageSize: limit}, nil
	}
}

func newController(t *testing.T, b *fakeBackend) (*Controller, *recorder, *favorites.Set) {
	t.Helper()
	fav := favorites.New(store.NewMemoryStore())
	require.NoError(t, fav.Load(context.Background()))
	rec := &recorder{}
	return New(b, fav, rec, 20), rec, fav
}

func TestSearch_LargeResultKeepsPageSizeInRange(t *testing.T) {
	b := &fakeBackend{search: func(context.Context, string, models.SearchFilters) ([]models.AnimeSummary, error) {
		return items(150), nil
	}}
	c, rec, _ := newController(t, b)

	page, err := c.Search(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, 100, page.PageSize)
	assert.Equal(t, 150, page.Total)
	assert.Len(t, page.Items, 150)

	snap := rec.last()
	assert.Len(t, snap.Displayed, 150)
	assert.Equal(t, 100, snap.Results.PageSize)
	assert.False(t, snap.Pagination().Visible)
}

func TestSearch_ThreeResults(t *testing.T) {
	var gotFilters models.SearchFilters
	b := &fakeBackend{search: func(_ context.Context, q string, f models.SearchFilters) ([]models.AnimeSummary, error) {
		assert.Equal(t, "naruto", q)
		gotFilters = f
		return items(3), nil
	}}
	c, rec, _ := newController(t, b)

	page, err := c.Search(context.Background(), "naruto")
	require.NoError(t, err)
	assert.Len(t, page.Items, 3)
	assert.True(t, gotFilters.IsAll())

	snap := rec.last()
	assert.Len(t, snap.Displayed, 3)
	assert.Contains(t, snap.Status, "3 Ergebnisse gefunden.")
	assert.Equal(t, ModeSearch, snap.Mode)
	assert.False(t, snap.Pagination().Visible, "search results are not paginated")
	assert.False(t, snap.Loading)
}

func TestSearch_EmptyQueryAllFiltersBrowses(t *testing.T) {
	b := &fakeBackend{browse: catalog(45)}
	c, rec, _ := newController(t, b)

	_, err := c.Search(context.Background(), "   ")
	require.NoError(t, err)
	assert.Equal(t, 1, b.lastBrowsePage())

	snap := rec.last()
	assert.Equal(t, ModeBrowse, snap.Mode)
	assert.Len(t, snap.Displayed, 20)
	assert.Equal(t, "Seite 1 von 3 (45 Animes im Cache).", snap.Status)
}

func TestSearch_EmptyQueryWithFilterSearches(t *testing.T) {
	searched := false
	b := &fakeBackend{search: func(_ context.Context, q string, f models.SearchFilters) ([]models.AnimeSummary, error) {
		searched = true
		assert.Equal(t, "Movie", f.Type)
		return nil, nil
	}}
	c, rec, _ := newController(t, b)
	c.SetFacet(models.FacetType, "Movie")

	_, err := c.Search(context.Background(), "")
	require.NoError(t, err)
	assert.True(t, searched)
	snap := rec.last()
	assert.True(t, snap.Empty())
	assert.Equal(t, "Keine Animes gefunden.", snap.Status)
}

func TestBrowse_SinglePageDisablesPager(t *testing.T) {
	b := &fakeBackend{browse: catalog(12)}
	c, rec, _ := newController(t, b)

	_, err := c.Browse(context.Background(), 1)
	require.NoError(t, err)

	p := rec.last().Pagination()
	assert.True(t, p.Visible)
	assert.Equal(t, 1, p.LastPage)
	assert.False(t, p.PrevEnabled)
	assert.False(t, p.NextEnabled)
}

func TestGoToPage_Clamps(t *testing.T) {
	b := &fakeBackend{browse: catalog(45)}
	c, rec, _ := newController(t, b)
	ctx := context.Background()

	_, err := c.Browse(ctx, 1)
	require.NoError(t, err)

	_, err = c.GoToPage(ctx, 8)
	require.NoError(t, err)
	assert.Equal(t, 3, b.lastBrowsePage())
	p := rec.last().Pagination()
	assert.Equal(t, 3, p.Page)
	assert.True(t, p.PrevEnabled)
	assert.False(t, p.NextEnabled)

	_, err = c.GoToPage(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, b.lastBrowsePage())

	_, err = c.NextPage(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, b.lastBrowsePage())
}

func TestGoToPage_NotPaginatedAfterSearch(t *testing.T) {
	b := &fakeBackend{search: func(context.Context, string, models.SearchFilters) ([]models.AnimeSummary, error) {
		return items(30), nil
	}, browse: catalog(45)}
	c, _, _ := newController(t, b)

	_, err := c.Search(context.Background(), "x")
	require.NoError(t, err)
	_, err = c.GoToPage(context.Background(), 2)
	assert.ErrorIs(t, err, ErrNotPaginated)
	assert.Equal(t, 0, b.lastBrowsePage())
}

func TestSearch_ErrorPreservesResults(t *testing.T) {
	fail := false
	b := &fakeBackend{search: func(context.Context, string, models.SearchFilters) ([]models.AnimeSummary, error) {
		if fail {
			return nil, &api.NetworkError{Op: "search", Status: http.StatusBadGateway, Message: "Backend nicht erreichbar"}
		}
		return items(3), nil
	}}
	c, rec, _ := newController(t, b)
	ctx := context.Background()

	_, err := c.Search(ctx, "naruto")
	require.NoError(t, err)

	fail = true
	_, err = c.Search(ctx, "bleach")
	require.Error(t, err)
	assert.True(t, api.IsNetworkError(err))

	snap := rec.last()
	require.NotNil(t, snap.Results)
	assert.Len(t, snap.Results.Items, 3)
	assert.Error(t, snap.Err)
	assert.Equal(t, "Fehler bei der Suche: Backend nicht erreichbar", snap.Status)
	assert.False(t, snap.Empty())
}

func TestApplyFilters_LocalRefinement(t *testing.T) {
	calls := 0
	b := &fakeBackend{search: func(context.Context, string, models.SearchFilters) ([]models.AnimeSummary, error) {
		calls++
		return []models.AnimeSummary{
			{Session: "a", Type: "TV", Genre: "Action, Drama"},
			{Session: "b", Type: "Movie", Genre: "Action"},
			{Session: "c", Type: "TV", Genre: "Comedy"},
		}, nil
	}}
	c, rec, _ := newController(t, b)
	ctx := context.Background()

	_, err := c.Search(ctx, "x")
	require.NoError(t, err)

	c.SetFacet(models.FacetGenre, "Action")
	n := rec.count()
	c.ApplyFilters()
	snap := rec.last()
	assert.Equal(t, []string{"a", "b"}, sessions(snap.Displayed))
	assert.Equal(t, []string{
		"Filter angewendet: Typ=All, Genre=Action, Studio=All, Jahr=All",
		"2 Anime(s) gefunden.",
	}, rec.statusesSince(n))

	c.SetFacet(models.FacetType, "Movie")
	c.SetFacet(models.FacetGenre, "Comedy")
	c.ApplyFilters()
	assert.Empty(t, rec.last().Displayed)
	assert.Equal(t, "Keine Animes gefunden.", rec.last().Status)

	n = rec.count()
	c.ResetFilters()
	snap = rec.last()
	assert.Equal(t, []string{"a", "b", "c"}, sessions(snap.Displayed))
	assert.Equal(t, []string{
		"Filter zurückgesetzt",
		"Filter angewendet: Typ=All, Genre=All, Studio=All, Jahr=All",
		"3 Anime(s) gefunden.",
	}, rec.statusesSince(n))
	assert.Equal(t, 1, calls, "filters must not re-query the backend")
}

func TestResetFilters_NothingLoadedKeepsResetStatus(t *testing.T) {
	c, rec, _ := newController(t, &fakeBackend{})
	c.SetFacet(models.FacetType, "TV")
	c.ResetFilters()
	snap := rec.last()
	assert.Equal(t, "Filter zurückgesetzt", snap.Status)
	assert.True(t, snap.Filters.IsAll())
}

func sessions(list []models.AnimeSummary) []string {
	out := make([]string, 0, len(list))
	for _, a := range list {
		out = append(out, a.Session)
	}
	return out
}

func TestSearch_StaleResponseDropped(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	b := &fakeBackend{search: func(_ context.Context, q string, _ models.SearchFilters) ([]models.AnimeSummary, error) {
		if q == "slow" {
			close(started)
			<-release
			return items(7), nil
		}
		return items(2), nil
	}}
	c, rec, _ := newController(t, b)
	ctx := context.Background()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = c.Search(ctx, "slow")
	}()
	<-started

	_, err := c.Search(ctx, "fast")
	require.NoError(t, err)

	// the filter changes while the slow request is still in flight
	c.SetFacet(models.FacetType, "Movie")

	close(release)
	<-done

	snap := rec.last()
	require.NotNil(t, snap.Results)
	assert.Len(t, snap.Results.Items, 2, "older response must not replace a newer one")
	assert.Equal(t, "fast", snap.Query)
}

func TestFetch_LandingUsesCurrentFilters(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	b := &fakeBackend{search: func(context.Context, string, models.SearchFilters) ([]models.AnimeSummary, error) {
		close(started)
		<-release
		return []models.AnimeSummary{{Session: "a", Type: "TV"}, {Session: "b", Type: "Movie"}}, nil
	}}
	c, rec, _ := newController(t, b)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = c.Search(context.Background(), "x")
	}()
	<-started
	c.SetFacet(models.FacetType, "Movie")
	close(release)
	<-done

	assert.Equal(t, []string{"b"}, sessions(rec.last().Displayed))
}

func TestOpenDetail(t *testing.T) {
	b := &fakeBackend{
		details: func(_ context.Context, s string) (models.AnimeDetails, error) {
			return models.AnimeDetails{Session: s, Title: "Naruto", Type: "TV"}, nil
		},
		episodes: func(context.Context, string) ([]models.Episode, error) {
			return []models.Episode{{Session: "e1", Episode: "1"}, {Session: "e2", Episode: "2"}}, nil
		},
	}
	c, rec, _ := newController(t, b)

	require.NoError(t, c.OpenDetail(context.Background(), models.AnimeSummary{Session: "n1", Title: "Naruto", Thumbnail: "/cached_images/n.jpg"}))
	snap := rec.last()
	assert.Equal(t, models.ViewDetail, snap.View)
	require.NotNil(t, snap.Detail)
	assert.False(t, snap.Detail.Loading)
	assert.Equal(t, "Naruto", snap.Detail.Details.Title)
	assert.Equal(t, "/cached_images/n.jpg", snap.Detail.Details.Thumbnail)
	assert.Len(t, snap.Detail.Episodes, 2)
}

func TestOpenDetail_ServerErrorShowsPlaceholders(t *testing.T) {
	b := &fakeBackend{
		details: func(context.Context, string) (models.AnimeDetails, error) {
			return models.AnimeDetails{}, &api.NetworkError{Op: "details", Status: 500, Message: "Interner Serverfehler"}
		},
		episodes: func(ctx context.Context, _ string) ([]models.Episode, error) {
			return nil, nil
		},
	}
	c, rec, _ := newController(t, b)

	err := c.OpenDetail(context.Background(), models.AnimeSummary{Session: "n1", Title: "Naruto"})
	require.Error(t, err)

	d := rec.last().Detail
	require.NotNil(t, d)
	assert.Equal(t, "Fehler", d.Details.Title)
	assert.Contains(t, d.Details.Synopsis, "Interner Serverfehler")
	for _, v := range []string{d.Details.Type, d.Details.Genre, d.Details.Studio, d.Details.Year} {
		assert.Equal(t, "N/A", v)
	}
}

func TestOpenDetail_MissingSession(t *testing.T) {
	c, rec, _ := newController(t, &fakeBackend{})
	err := c.OpenDetail(context.Background(), models.AnimeSummary{Title: "Ghost"})
	assert.True(t, api.IsValidationError(err))
	snap := rec.last()
	assert.Equal(t, models.ViewHome, snap.View)
	assert.Equal(t, "Fehler: Keine Session-ID für diesen Anime gefunden.", snap.Status)
}

func TestSwitchView(t *testing.T) {
	b := &fakeBackend{browse: catalog(5)}
	c, rec, fav := newController(t, b)
	ctx := context.Background()

	require.NoError(t, c.SwitchView(ctx, models.ViewFavorites))
	assert.Equal(t, "Keine Favoriten vorhanden.", rec.last().Status)

	// home without held results starts a browse
	require.NoError(t, c.SwitchView(ctx, models.ViewHome))
	assert.Equal(t, 1, b.lastBrowsePage())
	assert.Len(t, rec.last().Displayed, 5)

	// home with held results only re-renders
	require.NoError(t, c.SwitchView(ctx, models.ViewSettings))
	require.NoError(t, c.SwitchView(ctx, models.ViewHome))
	b.mu.Lock()
	assert.Len(t, b.browseCalls, 1)
	b.mu.Unlock()

	err := c.SwitchView(ctx, models.View("nowhere"))
	require.Error(t, err)
	assert.Equal(t, "Fehler: Ansicht 'nowhere' nicht gefunden.", rec.last().Status)

	_, err = fav.Toggle(ctx, models.AnimeSummary{Session: "s1", Title: "One"})
	require.NoError(t, err)
	require.NoError(t, c.SwitchView(ctx, models.ViewFavorites))
	assert.Equal(t, "1 Favoriten gefunden.", rec.last().Status)
}

func TestToggleFavorite(t *testing.T) {
	c, rec, fav := newController(t, &fakeBackend{})
	ctx := context.Background()
	require.NoError(t, c.SwitchView(ctx, models.ViewFavorites))

	a := models.AnimeSummary{Session: "s1", Title: "One"}
	require.NoError(t, c.ToggleFavorite(ctx, a))
	snap := rec.last()
	assert.Equal(t, "\"One\" zu Favoriten hinzugefügt.", snap.Status)
	assert.True(t, snap.IsFavorite("s1"))
	assert.Len(t, snap.Favorites, 1, "favorites view re-renders")

	require.NoError(t, c.ToggleFavorite(ctx, a))
	snap = rec.last()
	assert.Equal(t, "\"One\" aus Favoriten entfernt.", snap.Status)
	assert.False(t, fav.Has("s1"))
	assert.Empty(t, snap.Favorites)

	err := c.ToggleFavorite(ctx, models.AnimeSummary{Title: "no id"})
	assert.True(t, api.IsValidationError(err))
}

func TestInit(t *testing.T) {
	b := &fakeBackend{options: func(context.Context) (models.FilterOptions, error) {
		return models.FilterOptions{Types: []string{"All", "TV"}}, nil
	}}
	c, rec, _ := newController(t, b)
	require.NoError(t, c.Init(context.Background()))
	snap := rec.last()
	assert.Equal(t, "Anwendung bereit", snap.Status)
	assert.Equal(t, []string{"All", "TV"}, snap.FilterOptions.Types)

	b.options = func(context.Context) (models.FilterOptions, error) {
		return models.FilterOptions{}, &api.NetworkError{Message: "offline"}
	}
	require.Error(t, c.Init(context.Background()))
	assert.Equal(t, "Fehler bei der Initialisierung: offline", rec.last().Status)
}

func TestToggleFilterPanelAndPageSize(t *testing.T) {
	c, rec, _ := newController(t, &fakeBackend{})
	c.ToggleFilterPanel()
	assert.True(t, rec.last().FilterPanelOpen)
	assert.Equal(t, "Filter-Panel geöffnet", rec.last().Status)
	c.ToggleFilterPanel()
	assert.Equal(t, "Filter-Panel geschlossen", rec.last().Status)

	assert.Equal(t, 100, c.SetPageSize(500))
	assert.Equal(t, 1, c.SetPageSize(-3))
}
