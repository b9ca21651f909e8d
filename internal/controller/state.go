package controller

import (
	"github.com/alvarorichard/anipahe/internal/models"
)

// Mode tells how the held result set was obtained.
type Mode int

const (
	ModeNone Mode = iota
	// ModeBrowse is the paginated listing of backend-cached items.
	ModeBrowse
	// ModeSearch holds a complete, unpaginated search result.
	ModeSearch
)

func (m Mode) String() string {
	switch m {
	case ModeBrowse:
		return "browse"
	case ModeSearch:
		return "search"
	}
	return "none"
}

// DetailState is the content of the detail view.
type DetailState struct {
	Session  string
	Loading  bool
	Details  models.AnimeDetails
	Episodes []models.Episode
	Err      error
}

// State is the view state owned by the Controller. It is only mutated by
// Controller methods; renderers receive a Snapshot.
type State struct {
	View            models.View
	Filters         models.SearchFilters
	FilterOptions   models.FilterOptions
	FilterPanelOpen bool

	Query    string
	Page     int
	PageSize int
	Mode     Mode
	Results  *models.ResultPage
	// Displayed is Results.Items refined by Filters.
	Displayed []models.AnimeSummary

	Favorites []models.AnimeSummary
	Detail    *DetailState

	Loading bool
	Status  string
	Err     error
}

func newState(pageSize int) State {
	return State{
		View:          models.ViewHome,
		Filters:       models.DefaultFilters(),
		FilterOptions: models.DefaultFilterOptions(),
		Page:          1,
		PageSize:      models.ClampPageSize(pageSize),
	}
}

// Snapshot is an immutable copy of State handed to the render layer.
type Snapshot struct {
	State
	favorites map[string]bool
}

func (s State) snapshot(favSessions []models.AnimeSummary) Snapshot {
	out := s
	if s.Results != nil {
		r := *s.Results
		r.Items = append([]models.AnimeSummary(nil), s.Results.Items...)
		out.Results = &r
	}
	out.Displayed = append([]models.AnimeSummary(nil), s.Displayed...)
	out.Favorites = append([]models.AnimeSummary(nil), s.Favorites...)
	if s.Detail != nil {
		d := *s.Detail
		d.Episodes = append([]models.Episode(nil), s.Detail.Episodes...)
		out.Detail = &d
	}
	fav := make(map[string]bool, len(favSessions))
	for _, f := range favSessions {
		fav[f.Session] = true
	}
	return Snapshot{State: out, favorites: fav}
}

// IsFavorite reports whether session was a favorite when the snapshot was taken.
func (s Snapshot) IsFavorite(session string) bool {
	return s.favorites[session]
}

// Empty reports a completed fetch that displays nothing. It is a distinct
// rendered state, not an error.
func (s Snapshot) Empty() bool {
	return s.Results != nil && len(s.Displayed) == 0 && s.Err == nil
}

// Pagination describes the pager controls.
type Pagination struct {
	Visible     bool
	Page        int
	LastPage    int
	PrevEnabled bool
	NextEnabled bool
}

// Pagination is only visible in browse mode; navigation past either end is
// disabled rather than left to the backend.
func (s Snapshot) Pagination() Pagination {
	if s.Mode != ModeBrowse || s.Results == nil {
		return Pagination{Page: 1, LastPage: 1}
	}
	last := s.Results.LastPage()
	page := s.Results.ClampPage(s.Page)
	return Pagination{
		Visible:     true,
		Page:        page,
		LastPage:    last,
		PrevEnabled: page > 1,
		NextEnabled: page < last,
	}
}
