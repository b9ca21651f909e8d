package api

import (
	"bytes"
	"encoding/json"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/alvarorichard/anipahe/internal/models"
	"github.com/pkg/errors"
)

const cachedImagesPrefix = "/cached_images/"

var absoluteURL = regexp.MustCompile(`(?i)^https?://`)

// NormalizeThumbnailURL maps the backend's thumbnail values onto something the
// client can load. Data URIs are kept; cached paths and absolute URLs lose
// their query string; other relative paths map onto /cached_images/<basename>.
func NormalizeThumbnailURL(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if strings.HasPrefix(value, "data:") {
		return value
	}
	withoutQuery := strings.SplitN(value, "?", 2)[0]
	if strings.HasPrefix(withoutQuery, cachedImagesPrefix) || absoluteURL.MatchString(withoutQuery) {
		return withoutQuery
	}
	base := path.Base(strings.TrimRight(withoutQuery, "/"))
	if base == "" || base == "." || base == "/" {
		return ""
	}
	return cachedImagesPrefix + base
}

// flexString accepts JSON strings, numbers, booleans and null.
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}
	if b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	if b[0] == '[' {
		// genre lists arrive as arrays from some crawler paths
		var parts []string
		if err := json.Unmarshal(b, &parts); err != nil {
			return err
		}
		*s = flexString(strings.Join(parts, ", "))
		return nil
	}
	*s = flexString(strings.Trim(string(b), `"`))
	return nil
}

func firstOf(values ...flexString) string {
	for _, v := range values {
		if s := strings.TrimSpace(string(v)); s != "" {
			return s
		}
	}
	return ""
}

type rawSummary struct {
	Session      flexString `json:"session"`
	Identifier   flexString `json:"identifier"`
	ID           flexString `json:"id"`
	AnimeSession flexString `json:"anime_session"`
	Title        flexString `json:"title"`
	Name         flexString `json:"name"`
	Thumbnail    flexString `json:"thumbnail"`
	Image        flexString `json:"image"`
	Type         flexString `json:"type"`
	Genre        flexString `json:"genre"`
	Studio       flexString `json:"studio"`
	Year         flexString `json:"year"`
}

func (r rawSummary) toModel() models.AnimeSummary {
	return models.AnimeSummary{
		Session:   firstOf(r.Session, r.Identifier, r.ID, r.AnimeSession),
		Title:     firstOf(r.Title, r.Name),
		Thumbnail: NormalizeThumbnailURL(firstOf(r.Thumbnail, r.Image)),
		Type:      firstOf(r.Type),
		Genre:     firstOf(r.Genre),
		Studio:    firstOf(r.Studio),
		Year:      firstOf(r.Year),
	}
}

// listEnvelope covers every object shape the backend uses for lists.
type listEnvelope struct {
	Results []rawSummary     `json:"results"`
	Items   []rawSummary     `json:"items"`
	Data    []rawSummary     `json:"data"`
	Total   *json.RawMessage `json:"total"`
}

// parseSummaries decodes a bare array or an envelope object into summaries.
// total is -1 when the payload carried no usable total.
func parseSummaries(body []byte) (items []models.AnimeSummary, total int, err error) {
	body = bytes.TrimSpace(body)
	total = -1
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return nil, total, nil
	}

	var raws []rawSummary
	switch body[0] {
	case '[':
		if err := json.Unmarshal(body, &raws); err != nil {
			return nil, total, errors.Wrap(err, "failed to decode result list")
		}
	case '{':
		var env listEnvelope
		if err := json.Unmarshal(body, &env); err != nil {
			return nil, total, errors.Wrap(err, "failed to decode result envelope")
		}
		switch {
		case env.Results != nil:
			raws = env.Results
		case env.Items != nil:
			raws = env.Items
		default:
			raws = env.Data
		}
		if env.Total != nil {
			if n, convErr := strconv.Atoi(strings.Trim(string(*env.Total), `"`)); convErr == nil && n >= 0 {
				total = n
			}
		}
	default:
		return nil, total, errors.Errorf("unexpected response body: %.40q", body)
	}

	items = make([]models.AnimeSummary, 0, len(raws))
	for _, r := range raws {
		items = append(items, r.toModel())
	}
	return items, total, nil
}

type rawDetails struct {
	Session    flexString `json:"session"`
	Identifier flexString `json:"identifier"`
	Title      flexString `json:"title"`
	Thumbnail  flexString `json:"thumbnail"`
	Synopsis   flexString `json:"synopsis"`
	Info       flexString `json:"info"`
	Type       flexString `json:"type"`
	Genre      flexString `json:"genre"`
	Studio     flexString `json:"studio"`
	Year       flexString `json:"year"`
}

func parseDetails(body []byte, session string) (models.AnimeDetails, error) {
	var r rawDetails
	if err := json.Unmarshal(body, &r); err != nil {
		return models.AnimeDetails{}, errors.Wrap(err, "failed to decode anime details")
	}
	d := models.AnimeDetails{
		Session:   firstOf(r.Session, r.Identifier),
		Title:     firstOf(r.Title),
		Thumbnail: NormalizeThumbnailURL(firstOf(r.Thumbnail)),
		Synopsis:  HTMLToText(string(r.Synopsis)),
		Info:      HTMLToText(string(r.Info)),
		Type:      firstOf(r.Type),
		Genre:     firstOf(r.Genre),
		Studio:    firstOf(r.Studio),
		Year:      firstOf(r.Year),
	}
	if d.Session == "" {
		d.Session = session
	}
	return d, nil
}

type rawEpisode struct {
	Session   flexString `json:"session"`
	Episode   flexString `json:"episode"`
	Title     flexString `json:"title"`
	CreatedAt flexString `json:"created_at"`
}

func parseEpisodes(body []byte) ([]models.Episode, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return nil, nil
	}
	var raws []rawEpisode
	if body[0] == '{' {
		var env struct {
			Episodes []rawEpisode `json:"episodes"`
			Results  []rawEpisode `json:"results"`
		}
		if err := json.Unmarshal(body, &env); err != nil {
			return nil, errors.Wrap(err, "failed to decode episode envelope")
		}
		raws = env.Episodes
		if raws == nil {
			raws = env.Results
		}
	} else if err := json.Unmarshal(body, &raws); err != nil {
		return nil, errors.Wrap(err, "failed to decode episode list")
	}

	episodes := make([]models.Episode, 0, len(raws))
	for _, r := range raws {
		episodes = append(episodes, models.Episode{
			Session:   firstOf(r.Session),
			Episode:   firstOf(r.Episode),
			Title:     firstOf(r.Title),
			CreatedAt: firstOf(r.CreatedAt),
		})
	}
	return episodes, nil
}

func parseFilterOptions(body []byte) (models.FilterOptions, error) {
	var raw struct {
		Types   []flexString `json:"types"`
		Genres  []flexString `json:"genres"`
		Studios []flexString `json:"studios"`
		Years   []flexString `json:"years"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return models.FilterOptions{}, errors.Wrap(err, "failed to decode filter options")
	}
	return models.FilterOptions{
		Types:   facetValues(raw.Types),
		Genres:  facetValues(raw.Genres),
		Studios: facetValues(raw.Studios),
		Years:   facetValues(raw.Years),
	}, nil
}

// facetValues defaults absent lists to ["All"] and keeps "All" first, once.
func facetValues(raw []flexString) []string {
	out := []string{models.AllFacet}
	seen := map[string]bool{models.AllFacet: true}
	for _, v := range raw {
		s := strings.TrimSpace(string(v))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

func parseStreamURLs(body []byte) ([]models.StreamURL, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return nil, nil
	}
	var raws []json.RawMessage
	if err := json.Unmarshal(body, &raws); err != nil {
		return nil, errors.Wrap(err, "failed to decode stream urls")
	}
	urls := make([]models.StreamURL, 0, len(raws))
	for _, r := range raws {
		var plain string
		if err := json.Unmarshal(r, &plain); err == nil {
			if plain != "" {
				urls = append(urls, models.StreamURL{URL: plain})
			}
			continue
		}
		var obj struct {
			Title   flexString `json:"title"`
			M3U8URL flexString `json:"m3u8_url"`
			URL     flexString `json:"url"`
		}
		if err := json.Unmarshal(r, &obj); err != nil {
			return nil, errors.Wrap(err, "failed to decode stream url entry")
		}
		if u := firstOf(obj.M3U8URL, obj.URL); u != "" {
			urls = append(urls, models.StreamURL{Title: firstOf(obj.Title), URL: u})
		}
	}
	return urls, nil
}
