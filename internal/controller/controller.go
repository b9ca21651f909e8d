// Package controller owns the view state of the main content area: the
// current view, active filters, the held result set and pagination. It calls
// the backend, folds responses into the state and hands a Snapshot to the
// renderer after every transition.
package controller

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/alvarorichard/anipahe/internal/api"
	"github.com/alvarorichard/anipahe/internal/models"
	"github.com/alvarorichard/anipahe/internal/util"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// ErrNotPaginated is returned by GoToPage when the held results are not a
// browse listing.
var ErrNotPaginated = errors.New("results are not paginated")

// Backend is the subset of the API client the controller uses.
type Backend interface {
	Search(ctx context.Context, query string, filters models.SearchFilters) ([]models.AnimeSummary, error)
	BrowseAll(ctx context.Context, page, limit int) (models.ResultPage, error)
	AnimeDetails(ctx context.Context, session string) (models.AnimeDetails, error)
	Episodes(ctx context.Context, session string) ([]models.Episode, error)
	FilterOptions(ctx context.Context) (models.FilterOptions, error)
}

// Favorites is the persisted favorites set.
type Favorites interface {
	List() []models.AnimeSummary
	Has(session string) bool
	Toggle(ctx context.Context, a models.AnimeSummary) (added bool, err error)
}

// Renderer receives the state after every transition. Render is called with
// the controller's lock held and must not call back into the Controller.
type Renderer interface {
	Render(Snapshot)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(Snapshot)

func (f RendererFunc) Render(s Snapshot) { f(s) }

// Controller is safe for concurrent use; the TUI calls it from command goroutines.
type Controller struct {
	backend   Backend
	favorites Favorites
	renderer  Renderer

	mu    sync.Mutex
	state State

	// fetchGen numbers result-set fetches; appliedGen is the newest one that
	// has landed. Older responses arriving later are dropped.
	fetchGen   uint64
	appliedGen uint64
	detailGen  uint64
}

// New creates a controller in the initial state: home view, every filter
// "All", page 1.
func New(backend Backend, favorites Favorites, renderer Renderer, pageSize int) *Controller {
	if renderer == nil {
		renderer = RendererFunc(func(Snapshot) {})
	}
	return &Controller{
		backend:   backend,
		favorites: favorites,
		renderer:  renderer,
		state:     newState(pageSize),
	}
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	return c.state.snapshot(c.favorites.List())
}

func (c *Controller) renderLocked() {
	c.state.Loading = c.fetchGen > c.appliedGen || (c.state.Detail != nil && c.state.Detail.Loading)
	c.renderer.Render(c.snapshotLocked())
}

func (c *Controller) setStatus(format string, args ...interface{}) {
	c.state.Status = fmt.Sprintf(format, args...)
	util.Debug("status", "text", c.state.Status)
}

// Init loads the facet options. A failure leaves the "All"-only defaults in place.
func (c *Controller) Init(ctx context.Context) error {
	opts, err := c.backend.FilterOptions(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.setStatus("Fehler bei der Initialisierung: %s", err)
		c.renderLocked()
		return err
	}
	c.state.FilterOptions = opts
	c.setStatus("Anwendung bereit")
	c.renderLocked()
	return nil
}

// Search runs a query with the active filters. An empty query with every
// facet at "All" falls back to the paginated browse listing from page 1.
// Search results are the complete matching set and are not paginated.
func (c *Controller) Search(ctx context.Context, query string) (models.ResultPage, error) {
	query = strings.TrimSpace(query)

	c.mu.Lock()
	c.state.Query = query
	c.state.View = models.ViewHome
	filters := c.state.Filters
	if query == "" && filters.IsAll() {
		c.mu.Unlock()
		return c.browse(ctx, 1)
	}
	c.fetchGen++
	gen := c.fetchGen
	c.setStatus("Suche läuft für '%s'...", query)
	c.renderLocked()
	c.mu.Unlock()

	items, err := c.backend.Search(ctx, query, filters)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen <= c.appliedGen {
		util.Debug("dropping stale search response", "gen", gen, "applied", c.appliedGen)
		return models.ResultPage{}, err
	}
	c.appliedGen = gen
	if err != nil {
		c.state.Err = err
		c.setStatus("Fehler bei der Suche: %s", err)
		c.renderLocked()
		return models.ResultPage{}, err
	}

	// one unpaginated page; PageSize stays inside the [1,100] range
	page := models.ResultPage{Items: items, Total: len(items), Page: 1, PageSize: models.ClampPageSize(len(items))}
	c.landLocked(page, ModeSearch)
	if len(c.state.Displayed) == 0 {
		c.setStatus("Keine Animes gefunden.")
	} else {
		c.setStatus("Suche abgeschlossen. %d Ergebnisse gefunden.", len(c.state.Displayed))
	}
	c.renderLocked()
	return page, nil
}

// landLocked replaces the held result set and applies the filters that are
// current now, not the ones active when the fetch started.
func (c *Controller) landLocked(page models.ResultPage, mode Mode) {
	c.state.Results = &page
	c.state.Mode = mode
	c.state.Page = page.Page
	c.state.Err = nil
	c.state.Displayed = c.state.Filters.Apply(page.Items)
}

// Browse lists the backend's cached anime starting at page.
func (c *Controller) Browse(ctx context.Context, page int) (models.ResultPage, error) {
	c.mu.Lock()
	c.state.Query = ""
	c.mu.Unlock()
	return c.browse(ctx, page)
}

func (c *Controller) browse(ctx context.Context, page int) (models.ResultPage, error) {
	if page < 1 {
		page = 1
	}

	c.mu.Lock()
	c.fetchGen++
	gen := c.fetchGen
	limit := c.state.PageSize
	c.setStatus("Lade Seite %d...", page)
	c.renderLocked()
	c.mu.Unlock()

	result, err := c.backend.BrowseAll(ctx, page, limit)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen <= c.appliedGen {
		util.Debug("dropping stale browse response", "gen", gen, "applied", c.appliedGen)
		return result, err
	}
	c.appliedGen = gen
	if err != nil {
		c.state.Err = err
		c.setStatus("Fehler beim Laden der Animes: %s", err)
		c.renderLocked()
		return models.ResultPage{}, err
	}

	c.landLocked(result, ModeBrowse)
	if len(c.state.Displayed) == 0 {
		c.setStatus("Keine Animes gefunden.")
	} else {
		c.setStatus("Seite %d von %d (%d Animes im Cache).", result.Page, result.LastPage(), result.Total)
	}
	c.renderLocked()
	return result, nil
}

// GoToPage fetches another page of the browse listing. page is clamped into
// [1, last page]. It fails with ErrNotPaginated after a free-text search.
func (c *Controller) GoToPage(ctx context.Context, page int) (models.ResultPage, error) {
	c.mu.Lock()
	if c.state.Mode != ModeBrowse || c.state.Results == nil {
		c.setStatus("Seitenwechsel ist nur im Katalog möglich.")
		c.renderLocked()
		c.mu.Unlock()
		return models.ResultPage{}, ErrNotPaginated
	}
	target := c.state.Results.ClampPage(page)
	c.mu.Unlock()
	return c.browse(ctx, target)
}

// NextPage and PrevPage move one page; they do nothing when the pager
// control would be disabled.
func (c *Controller) NextPage(ctx context.Context) (models.ResultPage, error) {
	p := c.Snapshot().Pagination()
	if !p.NextEnabled {
		return models.ResultPage{}, nil
	}
	return c.GoToPage(ctx, p.Page+1)
}

func (c *Controller) PrevPage(ctx context.Context) (models.ResultPage, error) {
	p := c.Snapshot().Pagination()
	if !p.PrevEnabled {
		return models.ResultPage{}, nil
	}
	return c.GoToPage(ctx, p.Page-1)
}

// SetFacet changes one filter value without re-deriving the displayed set.
func (c *Controller) SetFacet(facet models.Facet, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Filters = c.state.Filters.With(facet, value)
	c.renderLocked()
}

// ApplyFilters re-derives the displayed subset of the held result set. It
// never queries the backend. The filter summary is rendered first, then the
// number of matches.
func (c *Controller) ApplyFilters() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.applyAndReportLocked()
}

func (c *Controller) applyAndReportLocked() {
	f := c.state.Filters
	c.setStatus("Filter angewendet: Typ=%s, Genre=%s, Studio=%s, Jahr=%s", f.Type, f.Genre, f.Studio, f.Year)
	c.renderLocked()

	c.applyFiltersLocked()
	if n := len(c.state.Displayed); n > 0 {
		c.setStatus("%d Anime(s) gefunden.", n)
	} else {
		c.setStatus("Keine Animes gefunden.")
	}
	c.renderLocked()
}

func (c *Controller) applyFiltersLocked() {
	c.state.Err = nil
	if c.state.Results == nil {
		c.state.Displayed = nil
		return
	}
	c.state.Displayed = c.state.Filters.Apply(c.state.Results.Items)
}

// ResetFilters sets every facet to "All". When there are results or a query
// the filters are re-applied, which ends with the match count as status.
func (c *Controller) ResetFilters() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Filters = models.DefaultFilters()
	c.setStatus("Filter zurückgesetzt")
	c.renderLocked()
	if c.state.Query != "" || (c.state.Results != nil && len(c.state.Results.Items) > 0) {
		c.applyAndReportLocked()
	}
}

func (c *Controller) ToggleFilterPanel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.FilterPanelOpen = !c.state.FilterPanelOpen
	if c.state.FilterPanelOpen {
		c.setStatus("Filter-Panel geöffnet")
	} else {
		c.setStatus("Filter-Panel geschlossen")
	}
	c.renderLocked()
}

// SetPageSize changes the browse page size, clamped into [1,100]. It takes
// effect with the next fetch.
func (c *Controller) SetPageSize(n int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.PageSize = models.ClampPageSize(n)
	return c.state.PageSize
}

// SwitchView changes the current view. Home re-renders the held results or
// starts a browse when there are none; favorites re-reads the favorites set.
func (c *Controller) SwitchView(ctx context.Context, view models.View) error {
	c.mu.Lock()
	if !view.Valid() {
		c.setStatus("Fehler: Ansicht '%s' nicht gefunden.", view)
		c.renderLocked()
		c.mu.Unlock()
		return errors.Errorf("unknown view %q", view)
	}

	switch view {
	case models.ViewHome:
		c.state.View = view
		if c.state.Results == nil {
			c.mu.Unlock()
			_, err := c.browse(ctx, 1)
			return err
		}
		c.applyFiltersLocked()
	case models.ViewFavorites:
		c.state.View = view
		c.refreshFavoritesLocked()
		if n := len(c.state.Favorites); n > 0 {
			c.setStatus("%d Favoriten gefunden.", n)
		} else {
			c.setStatus("Keine Favoriten vorhanden.")
		}
		c.renderLocked()
		c.mu.Unlock()
		return nil
	case models.ViewDetail:
		if c.state.Detail == nil {
			c.setStatus("Kein Anime ausgewählt.")
			c.renderLocked()
			c.mu.Unlock()
			return &api.ValidationError{Field: "session", Message: "Kein Anime ausgewählt."}
		}
		c.state.View = view
	default:
		c.state.View = view
	}
	c.setStatus("Ansicht gewechselt zu: %s", view)
	c.renderLocked()
	c.mu.Unlock()
	return nil
}

func (c *Controller) refreshFavoritesLocked() {
	c.state.Favorites = c.favorites.List()
}

// ToggleFavorite flips the favorite membership of a and persists it. An item
// without a session cannot be favorited.
func (c *Controller) ToggleFavorite(ctx context.Context, a models.AnimeSummary) error {
	if a.Session == "" {
		c.mu.Lock()
		c.setStatus("Fehler: Keine Session-ID für diesen Anime gefunden.")
		c.renderLocked()
		c.mu.Unlock()
		return &api.ValidationError{Field: "session", Message: "Keine Session-ID für diesen Anime gefunden."}
	}

	added, err := c.favorites.Toggle(ctx, a)

	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case err != nil:
		c.setStatus("Fehler beim Speichern der Favoriten: %s", err)
	case added:
		c.setStatus("\"%s\" zu Favoriten hinzugefügt.", a.Title)
	default:
		c.setStatus("\"%s\" aus Favoriten entfernt.", a.Title)
	}
	if c.state.View == models.ViewFavorites {
		c.refreshFavoritesLocked()
	}
	c.renderLocked()
	return err
}

// OpenDetail switches to the detail view for a and loads its details and
// episodes concurrently. When either request fails the view shows an error
// record with placeholder fields.
func (c *Controller) OpenDetail(ctx context.Context, a models.AnimeSummary) error {
	c.mu.Lock()
	if a.Session == "" {
		c.setStatus("Fehler: Keine Session-ID für diesen Anime gefunden.")
		c.renderLocked()
		c.mu.Unlock()
		return &api.ValidationError{Field: "session", Message: "Keine Session-ID für diesen Anime gefunden."}
	}
	c.detailGen++
	gen := c.detailGen
	c.state.View = models.ViewDetail
	c.state.Detail = &DetailState{
		Session: a.Session,
		Loading: true,
		Details: models.AnimeDetails{Session: a.Session, Title: a.Title, Thumbnail: a.Thumbnail},
	}
	c.setStatus("Lade Details für \"%s\"...", util.OrNA(a.Title))
	c.renderLocked()
	c.mu.Unlock()

	var (
		details  models.AnimeDetails
		episodes []models.Episode
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		details, err = c.backend.AnimeDetails(gctx, a.Session)
		return err
	})
	g.Go(func() error {
		var err error
		episodes, err = c.backend.Episodes(gctx, a.Session)
		return err
	})
	err := g.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.detailGen {
		return err
	}
	if err != nil {
		c.state.Detail = failedDetail(a, err)
		c.setStatus("Fehler beim Laden der Details: %s", err)
		c.renderLocked()
		return err
	}
	if details.Thumbnail == "" {
		details.Thumbnail = a.Thumbnail
	}
	if details.Title == "" {
		details.Title = a.Title
	}
	c.state.Detail = &DetailState{Session: a.Session, Details: details, Episodes: episodes}
	c.setStatus("%s: %d Episoden.", util.OrNA(details.Title), len(episodes))
	c.renderLocked()
	return nil
}

func failedDetail(a models.AnimeSummary, err error) *DetailState {
	return &DetailState{
		Session: a.Session,
		Err:     err,
		Details: models.AnimeDetails{
			Session:  a.Session,
			Title:    "Fehler",
			Synopsis: "Fehler beim Laden der Details: " + err.Error(),
			Info:     "N/A",
			Type:     "N/A",
			Genre:    "N/A",
			Studio:   "N/A",
			Year:     "N/A",
		},
	}
}

// CloseDetail leaves the detail view for home.
func (c *Controller) CloseDetail(ctx context.Context) error {
	c.mu.Lock()
	c.detailGen++
	if c.state.Detail != nil && c.state.Detail.Loading {
		c.state.Detail = nil
	}
	c.mu.Unlock()
	return c.SwitchView(ctx, models.ViewHome)
}
