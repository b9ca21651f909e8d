package models

import "strings"

// Facet is one filterable dimension.
type Facet string

const (
	FacetType   Facet = "type"
	FacetGenre  Facet = "genre"
	FacetStudio Facet = "studio"
	FacetYear   Facet = "year"
)

// Facets lists all facets in display order.
var Facets = []Facet{FacetType, FacetGenre, FacetStudio, FacetYear}

// Label returns the German UI label of the facet.
func (f Facet) Label() string {
	switch f {
	case FacetType:
		return "Typ"
	case FacetGenre:
		return "Genre"
	case FacetStudio:
		return "Studio"
	case FacetYear:
		return "Jahr"
	}
	return string(f)
}

// SearchFilters holds one value per facet. AllFacet means no constraint.
type SearchFilters struct {
	Type   string
	Genre  string
	Studio string
	Year   string
}

// DefaultFilters returns filters with every facet set to AllFacet.
func DefaultFilters() SearchFilters {
	return SearchFilters{Type: AllFacet, Genre: AllFacet, Studio: AllFacet, Year: AllFacet}
}

func normalizeFacet(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return AllFacet
	}
	return v
}

// Normalize replaces empty facet values with AllFacet.
func (f SearchFilters) Normalize() SearchFilters {
	return SearchFilters{
		Type:   normalizeFacet(f.Type),
		Genre:  normalizeFacet(f.Genre),
		Studio: normalizeFacet(f.Studio),
		Year:   normalizeFacet(f.Year),
	}
}

// IsAll reports whether no facet constrains the result.
func (f SearchFilters) IsAll() bool {
	n := f.Normalize()
	return n.Type == AllFacet && n.Genre == AllFacet && n.Studio == AllFacet && n.Year == AllFacet
}

// Get returns the value of one facet.
func (f SearchFilters) Get(facet Facet) string {
	switch facet {
	case FacetType:
		return normalizeFacet(f.Type)
	case FacetGenre:
		return normalizeFacet(f.Genre)
	case FacetStudio:
		return normalizeFacet(f.Studio)
	case FacetYear:
		return normalizeFacet(f.Year)
	}
	return AllFacet
}

// With returns a copy with one facet replaced.
func (f SearchFilters) With(facet Facet, value string) SearchFilters {
	value = normalizeFacet(value)
	switch facet {
	case FacetType:
		f.Type = value
	case FacetGenre:
		f.Genre = value
	case FacetStudio:
		f.Studio = value
	case FacetYear:
		f.Year = value
	}
	return f.Normalize()
}

// Matches reports whether a summary satisfies every non-All facet.
// Genre is matched by membership in the comma-separated list, the rest exactly.
func (f SearchFilters) Matches(a AnimeSummary) bool {
	n := f.Normalize()
	if n.Type != AllFacet && a.Type != n.Type {
		return false
	}
	if n.Genre != AllFacet && !a.HasGenre(n.Genre) {
		return false
	}
	if n.Studio != AllFacet && a.Studio != n.Studio {
		return false
	}
	if n.Year != AllFacet && a.Year != n.Year {
		return false
	}
	return true
}

// Apply returns the items matching the filters, preserving order.
// With every facet at AllFacet the input is returned as a copy.
func (f SearchFilters) Apply(items []AnimeSummary) []AnimeSummary {
	out := make([]AnimeSummary, 0, len(items))
	for _, it := range items {
		if f.Matches(it) {
			out = append(out, it)
		}
	}
	return out
}
