// Package models contains the canonical data structures shared between the
// API client, the controllers and the render layer.
package models

import (
	"strings"
)

// AllFacet is the facet value meaning "no constraint".
const AllFacet = "All"

// AnimeSummary is one entry of a search or browse result.
// Session is the identity key; the other fields may be empty.
type AnimeSummary struct {
	Session   string `json:"session" yaml:"session"`
	Title     string `json:"title" yaml:"title"`
	Thumbnail string `json:"thumbnail,omitempty" yaml:"thumbnail,omitempty"`
	Type      string `json:"type,omitempty" yaml:"type,omitempty"`
	Genre     string `json:"genre,omitempty" yaml:"genre,omitempty"`
	Studio    string `json:"studio,omitempty" yaml:"studio,omitempty"`
	Year      string `json:"year,omitempty" yaml:"year,omitempty"`
}

// Genres splits the comma-separated genre field into trimmed, non-empty values.
func (a AnimeSummary) Genres() []string {
	if a.Genre == "" {
		return nil
	}
	parts := strings.Split(a.Genre, ",")
	genres := make([]string, 0, len(parts))
	for _, p := range parts {
		if g := strings.TrimSpace(p); g != "" {
			genres = append(genres, g)
		}
	}
	return genres
}

// HasGenre reports whether genre is one of the summary's genres.
func (a AnimeSummary) HasGenre(genre string) bool {
	for _, g := range a.Genres() {
		if g == genre {
			return true
		}
	}
	return false
}

// Reduced returns the subset of fields kept in the favorites list.
func (a AnimeSummary) Reduced() AnimeSummary {
	return AnimeSummary{
		Session:   a.Session,
		Title:     a.Title,
		Thumbnail: a.Thumbnail,
		Type:      a.Type,
		Year:      a.Year,
		Studio:    a.Studio,
	}
}

// AnimeDetails is the detail payload of a single anime.
// Synopsis and Info hold plain text; the API client strips the backend's HTML.
type AnimeDetails struct {
	Session   string
	Title     string
	Thumbnail string
	Synopsis  string
	Info      string
	Type      string
	Genre     string
	Studio    string
	Year      string
}

// Episode is one entry of an anime's episode list.
type Episode struct {
	Session   string `json:"session"`
	Episode   string `json:"episode"`
	Title     string `json:"title,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// Label is the display name, e.g. "Episode 3: The Storm".
func (e Episode) Label() string {
	label := "Episode " + e.Episode
	if strings.TrimSpace(e.Episode) == "" {
		label = "Episode ?"
	}
	if t := strings.TrimSpace(e.Title); t != "" {
		label += ": " + t
	}
	return label
}

// Ref identifies e within the anime animeSession.
func (e Episode) Ref(animeSession string) EpisodeRef {
	return EpisodeRef{AnimeSession: animeSession, EpisodeSession: e.Session}
}

// EpisodeRef identifies an episode for stream resolution and playback.
type EpisodeRef struct {
	AnimeSession   string `json:"anime_session"`
	EpisodeSession string `json:"episode_session"`
}

// Valid reports whether both identifiers are present.
func (r EpisodeRef) Valid() bool {
	return r.AnimeSession != "" && r.EpisodeSession != ""
}

// StreamURL is a resolved stream for one episode.
type StreamURL struct {
	Title string `json:"title"`
	URL   string `json:"m3u8_url"`
}

// FilterOptions lists the selectable values per facet. Every list starts with AllFacet.
type FilterOptions struct {
	Types   []string `json:"types"`
	Genres  []string `json:"genres"`
	Studios []string `json:"studios"`
	Years   []string `json:"years"`
}

// Values returns the options for one facet.
func (o FilterOptions) Values(f Facet) []string {
	switch f {
	case FacetType:
		return o.Types
	case FacetGenre:
		return o.Genres
	case FacetStudio:
		return o.Studios
	case FacetYear:
		return o.Years
	}
	return nil
}

// DefaultFilterOptions is used before the backend has answered.
func DefaultFilterOptions() FilterOptions {
	return FilterOptions{
		Types:   []string{AllFacet},
		Genres:  []string{AllFacet},
		Studios: []string{AllFacet},
		Years:   []string{AllFacet},
	}
}
