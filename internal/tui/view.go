package tui

import (
	"fmt"
	"strings"

	"github.com/alvarorichard/anipahe/internal/models"
	"github.com/alvarorichard/anipahe/internal/thumbnail"
	"github.com/alvarorichard/anipahe/internal/util"
	"github.com/charmbracelet/lipgloss"
)

const (
	cardWidth      = 30
	cardHeight     = 5
	maxEpisodeRows = 10
)

var tabs = []struct {
	view  models.View
	label string
}{
	{models.ViewHome, "1 Start"},
	{models.ViewFavorites, "2 Favoriten"},
	{models.ViewSettings, "3 Einstellungen"},
}

func (m Model) View() string {
	if m.width == 0 {
		return "Lade..."
	}

	header := m.headerView()
	footer := lipgloss.JoinVertical(lipgloss.Left, m.statusView(), m.help.View(m.keys))
	bodyHeight := max(cardHeight, m.height-lipgloss.Height(header)-lipgloss.Height(footer))

	var body string
	switch m.snap.View {
	case models.ViewFavorites:
		body = m.favoritesView(bodyHeight)
	case models.ViewSettings:
		body = m.settingsView()
	case models.ViewDetail:
		body = m.detailView()
	default:
		body = m.homeView(bodyHeight)
	}

	body = lipgloss.NewStyle().Height(bodyHeight).MaxHeight(bodyHeight).Render(body)
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (m Model) headerView() string {
	parts := []string{appTitleStyle.Render("anipahe")}
	for _, t := range tabs {
		style := tabStyle
		if m.snap.View == t.view {
			style = activeTabStyle
		}
		parts = append(parts, style.Render(t.label))
	}
	if n := m.svc.PlaylistLen(); n > 0 {
		parts = append(parts, mutedStyle.Render(fmt.Sprintf("Playlist: %d", n)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, parts...)
}

func (m Model) statusView() string {
	left := m.status
	if m.snap.Loading || (m.snap.Detail != nil && m.snap.Detail.Loading) {
		left = m.spinner.View() + " " + left
	}
	right := ""
	if m.cacheStatus != "" {
		right = "Hintergrund-Cache: " + m.cacheStatus
	}
	gap := max(1, m.width-lipgloss.Width(left)-lipgloss.Width(right)-2)
	return statusBarStyle.Width(m.width).Render(left + strings.Repeat(" ", gap) + statusMutedStyle.Render(right))
}

func (m Model) homeView(height int) string {
	var sections []string

	style := inputStyle
	if m.focus == focusSearch {
		style = focusedInputStyle
	}
	sections = append(sections, style.Render(m.input.View()))
	if m.focus == focusSearch && (m.sugg.Open || m.sugg.Loading) {
		sections = append(sections, m.suggestionsView())
	}
	if m.snap.FilterPanelOpen {
		sections = append(sections, m.filterPanelView())
	}

	used := 0
	for _, s := range sections {
		used += lipgloss.Height(s)
	}
	pager := m.pagerView()
	gridHeight := max(cardHeight, height-used-lipgloss.Height(pager))

	switch {
	case m.snap.Err != nil:
		sections = append(sections, errorBoxStyle.Render("Fehler: "+m.snap.Err.Error()))
	case m.snap.Results == nil:
		sections = append(sections, mutedStyle.Render("Lade..."))
	case m.snap.Empty():
		sections = append(sections, mutedStyle.Render("Keine Animes gefunden."))
	default:
		sections = append(sections, m.gridView(m.snap.Displayed, gridHeight))
	}
	if pager != "" {
		sections = append(sections, pager)
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) suggestionsView() string {
	if m.sugg.Loading && !m.sugg.Open {
		return dropdownStyle.Render(mutedStyle.Render("Suche..."))
	}
	if len(m.sugg.Items) == 0 {
		return dropdownStyle.Render(mutedStyle.Render("Keine Ergebnisse"))
	}
	width := max(20, m.input.Width)
	lines := make([]string, 0, len(m.sugg.Items))
	for i, it := range m.sugg.Items {
		line := truncate(it.Title, width)
		if meta := joinNonEmpty(" · ", it.Type, it.Year); meta != "" {
			line += " " + mutedStyle.Render(meta)
		}
		if i == m.sugg.Cursor {
			line = selectedRowStyle.Render(truncate(it.Title, width))
		}
		lines = append(lines, line)
	}
	return dropdownStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) filterPanelView() string {
	lines := []string{headingStyle.Render("Filter")}
	for i, f := range models.Facets {
		value := m.snap.Filters.Get(f)
		line := labelStyle.Render(f.Label()+":") + " ‹ " + value + " ›"
		if m.focus == focusFilters && i == m.facet {
			line = selectedRowStyle.Render(line)
		}
		lines = append(lines, line)
	}
	lines = append(lines, mutedStyle.Render("←/→ Wert · enter anwenden · x zurücksetzen · esc schließen"))
	return panelStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) pagerView() string {
	p := m.snap.Pagination()
	if !p.Visible {
		return ""
	}
	prev, next := disabledStyle.Render("‹ Zurück"), disabledStyle.Render("Weiter ›")
	if p.PrevEnabled {
		prev = enabledStyle.Render("‹ Zurück")
	}
	if p.NextEnabled {
		next = enabledStyle.Render("Weiter ›")
	}
	info := fmt.Sprintf("Seite %d von %d", p.Page, p.LastPage)
	if m.snap.Results != nil {
		info += mutedStyle.Render(fmt.Sprintf(" (%d Animes, %d pro Seite)", m.snap.Results.Total, m.snap.PageSize))
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, prev, "  ", info, "  ", next)
}

func (m Model) favoritesView(height int) string {
	if len(m.snap.Favorites) == 0 {
		return mutedStyle.Render("Keine Favoriten vorhanden.")
	}
	return m.gridView(m.snap.Favorites, height)
}

// gridView lays items out in rows of cards, scrolled so the cursor is visible.
func (m Model) gridView(items []models.AnimeSummary, height int) string {
	cols := m.columns()
	visibleRows := max(1, height/(cardHeight+1))
	cursorRow := m.cursor / cols
	firstRow := max(0, cursorRow-visibleRows+1)

	var rows []string
	for r := firstRow; r < firstRow+visibleRows; r++ {
		start := r * cols
		if start >= len(items) {
			break
		}
		end := min(start+cols, len(items))
		cards := make([]string, 0, end-start)
		for i := start; i < end; i++ {
			cards = append(cards, m.cardView(items[i], i == m.cursor))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m Model) cardView(a models.AnimeSummary, selected bool) string {
	inner := cardWidth - 4
	title := a.Title
	if m.snap.IsFavorite(a.Session) {
		title = favoriteStyle.Render("★ ") + cardTitleStyle.Render(truncate(title, inner-2))
	} else {
		title = cardTitleStyle.Render(truncate(title, inner))
	}
	meta := truncate(joinNonEmpty(" · ", util.OrNA(a.Type), util.OrNA(a.Year)), inner)
	studio := truncate(util.OrNA(a.Studio), inner)

	style := cardStyle
	if selected {
		style = selectedCardStyle
	}
	return style.Width(cardWidth - 2).Render(strings.Join([]string{title, mutedStyle.Render(meta), mutedStyle.Render(studio)}, "\n"))
}

func (m Model) detailView() string {
	d := m.snap.Detail
	if d == nil {
		return ""
	}
	if d.Loading {
		return headingStyle.Render("Lade...")
	}

	title := d.Details.Title
	if m.snap.IsFavorite(d.Session) {
		title = favoriteStyle.Render("★ ") + title
	}

	art := thumbnail.Placeholder(thumbWidth, thumbWidth/2)
	if url := d.Details.Thumbnail; url != "" {
		if rendered := m.thumbs[url]; rendered != "" {
			art = rendered
		}
	}

	info := strings.Join([]string{
		labelStyle.Render("Typ:") + " " + util.OrNA(d.Details.Type),
		labelStyle.Render("Genre:") + " " + util.OrNA(d.Details.Genre),
		labelStyle.Render("Studio:") + " " + util.OrNA(d.Details.Studio),
		labelStyle.Render("Jahr:") + " " + util.OrNA(d.Details.Year),
	}, "\n")
	if extra := strings.TrimSpace(d.Details.Info); extra != "" {
		info += "\n" + mutedStyle.Render(truncate(extra, m.body.Width))
	}
	right := lipgloss.JoinVertical(lipgloss.Left, info, "", m.body.View())
	top := lipgloss.JoinHorizontal(lipgloss.Top, art, "  ", right)

	return lipgloss.JoinVertical(lipgloss.Left,
		headingStyle.Render(title),
		top,
		"",
		m.episodesView(),
	)
}

func (m Model) episodesView() string {
	d := m.snap.Detail
	if len(d.Episodes) == 0 {
		return mutedStyle.Render("Keine Episoden verfügbar.")
	}
	first := max(0, m.epCursor-maxEpisodeRows+1)
	last := min(len(d.Episodes), first+maxEpisodeRows)

	lines := []string{headingStyle.Render(fmt.Sprintf("Episoden (%d)", len(d.Episodes)))}
	for i := first; i < last; i++ {
		line := "  " + d.Episodes[i].Label()
		if i == m.epCursor {
			line = selectedRowStyle.Render("▶ " + d.Episodes[i].Label())
		}
		lines = append(lines, line)
	}
	lines = append(lines, mutedStyle.Render("enter abspielen · a zur Playlist · d entfernen · P Playlist abspielen · c Playlist leeren · esc zurück"))
	return strings.Join(lines, "\n")
}

func (m Model) settingsView() string {
	s := m.settings
	player := "‹ mpv › Webplayer"
	if s.choice == models.PlayerWeb {
		player = "mpv ‹ Webplayer ›"
	}
	rows := []string{
		labelStyle.Width(16).Render("Standard-Player") + " " + player,
		labelStyle.Width(16).Render("Cache-Intervall") + fmt.Sprintf(" ‹ %d › Minuten (enter speichern)", s.minutes),
		labelStyle.Width(16).Render("Cache") + " Cache löschen (enter)",
	}
	for i := range rows {
		if i == s.row {
			rows[i] = selectedRowStyle.Render(rows[i])
		}
	}
	return panelStyle.Render(headingStyle.Render("Einstellungen") + "\n" + strings.Join(rows, "\n"))
}

func truncate(s string, width int) string {
	if width <= 0 || lipgloss.Width(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r))+1 > width {
		r = r[:len(r)-1]
	}
	return string(r) + "…"
}

func joinNonEmpty(sep string, parts ...string) string {
	out := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}
