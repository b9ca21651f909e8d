package models

// Page size bounds enforced by the backend.
const (
	MinPageSize     = 1
	MaxPageSize     = 100
	DefaultPageSize = 20
)

// ClampPageSize forces n into [MinPageSize, MaxPageSize].
func ClampPageSize(n int) int {
	if n < MinPageSize {
		return MinPageSize
	}
	if n > MaxPageSize {
		return MaxPageSize
	}
	return n
}

// ResultPage is one batch of results. Page is 1-indexed.
type ResultPage struct {
	Items    []AnimeSummary
	Total    int
	Page     int
	PageSize int
}

// LastPage returns ceil(Total/PageSize), never less than 1.
func (p ResultPage) LastPage() int {
	size := p.PageSize
	if size < 1 {
		size = 1
	}
	last := (p.Total + size - 1) / size
	if last < 1 {
		return 1
	}
	return last
}

// ClampPage forces page into [1, LastPage()].
func (p ResultPage) ClampPage(page int) int {
	if page < 1 {
		return 1
	}
	if last := p.LastPage(); page > last {
		return last
	}
	return page
}

// View is one of the main content areas.
type View string

const (
	ViewHome      View = "home"
	ViewFavorites View = "favorites"
	ViewSettings  View = "settings"
	ViewDetail    View = "detail"
)

// Valid reports whether v names a known view.
func (v View) Valid() bool {
	switch v {
	case ViewHome, ViewFavorites, ViewSettings, ViewDetail:
		return true
	}
	return false
}

// PlayerChoice selects how episodes are played.
type PlayerChoice string

const (
	PlayerMPV PlayerChoice = "mpv"
	PlayerWeb PlayerChoice = "web"
)

// ParsePlayerChoice maps unknown values to PlayerMPV.
func ParsePlayerChoice(s string) PlayerChoice {
	if PlayerChoice(s) == PlayerWeb {
		return PlayerWeb
	}
	return PlayerMPV
}
