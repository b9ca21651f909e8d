package tui

import (
	"context"
	"fmt"

	"github.com/alvarorichard/anipahe/internal/autocomplete"
	"github.com/alvarorichard/anipahe/internal/controller"
	"github.com/alvarorichard/anipahe/internal/models"
	"github.com/alvarorichard/anipahe/internal/playback"
	"github.com/alvarorichard/anipahe/internal/util"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Services are the non-controller operations the UI triggers.
type Services interface {
	PlayEpisode(ctx context.Context, anime models.AnimeSummary, ep models.Episode) (playback.Result, error)
	PlayPlaylist(ctx context.Context) (playback.Result, error)
	QueueEpisode(anime models.AnimeSummary, ep models.Episode) bool
	DequeueEpisode(ep models.Episode) bool
	ClearPlaylist()
	PlaylistLen() int

	PlayerChoice(ctx context.Context) (models.PlayerChoice, error)
	SetPlayerChoice(ctx context.Context, choice models.PlayerChoice) error
	CacheIntervalMinutes(ctx context.Context) (int, error)
	SetCacheInterval(ctx context.Context, minutes int) error
	ClearCache(ctx context.Context) error

	Thumbnail(ctx context.Context, url string, width int) string
}

type focus int

const (
	focusGrid focus = iota
	focusSearch
	focusFilters
)

const (
	thumbWidth       = 24
	intervalStep     = 5
	pageSizeStep     = 5
	settingsRowCount = 3
)

type settingsState struct {
	choice       models.PlayerChoice
	minutes      int
	row          int
	confirmClear bool
}

// Model is the root Bubble Tea model.
type Model struct {
	ctx  context.Context
	ctrl *controller.Controller
	ac   *autocomplete.Controller
	svc  Services

	keys    keyMap
	help    help.Model
	input   textinput.Model
	spinner spinner.Model
	body    viewport.Model

	snap          controller.Snapshot
	sugg          autocomplete.State
	focus         focus
	cursor        int
	epCursor      int
	facet         int
	detailSession string

	status      string
	snapStatus  string
	cacheStatus string
	// thumbs maps a thumbnail URL to its art; "" marks a pending fetch.
	thumbs   map[string]string
	settings settingsState

	width  int
	height int
}

func NewModel(ctx context.Context, ctrl *controller.Controller, ac *autocomplete.Controller, svc Services) Model {
	in := textinput.New()
	in.Placeholder = "Anime suchen..."
	in.Prompt = "🔍 "
	in.CharLimit = 120

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = enabledStyle

	snap := ctrl.Snapshot()
	return Model{
		ctx:     ctx,
		ctrl:    ctrl,
		ac:      ac,
		svc:     svc,
		keys:    defaultKeyMap(),
		help:    help.New(),
		input:   in,
		spinner: sp,
		body:    viewport.New(0, 0),
		snap:    snap,
		sugg:    ac.State(),
		status:  "Anwendung wird initialisiert...",
		thumbs:  make(map[string]string),
		settings: settingsState{
			choice:  models.PlayerMPV,
			minutes: 60,
		},
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, m.startCmd(), m.loadSettingsCmd())
}

func (m Model) startCmd() tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		if err := ctrl.Init(ctx); err != nil {
			util.Warn("init failed", "error", err)
		}
		if _, err := ctrl.Browse(ctx, 1); err != nil {
			util.Debug("initial browse failed", "error", err)
		}
		return nil
	}
}

func (m Model) loadSettingsCmd() tea.Cmd {
	svc, ctx := m.svc, m.ctx
	return func() tea.Msg {
		choice, err := svc.PlayerChoice(ctx)
		if err != nil {
			choice = models.PlayerMPV
		}
		minutes, err := svc.CacheIntervalMinutes(ctx)
		if err != nil || minutes < 1 {
			minutes = 60
		}
		return settingsMsg{choice: choice, minutes: minutes}
	}
}

// run wraps a controller call as a Cmd; state arrives as a snapshotMsg.
func (m Model) run(op string, fn func(ctx context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		if err := fn(ctx); err != nil {
			util.Debug("operation failed", "op", op, "error", err)
		}
		return nil
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.input.Width = max(10, min(60, msg.Width-10))
		m.layoutBody()
		return m, nil

	case snapshotMsg:
		return m, m.applySnapshot(msg.snap)

	case suggestionsMsg:
		m.sugg = msg.state
		return m, nil

	case cacheStatusMsg:
		m.cacheStatus = string(msg)
		return m, nil

	case openDetailMsg:
		m.leaveSearch()
		return m, m.openDetail(msg.anime)

	case fullSearchMsg:
		m.leaveSearch()
		m.cursor = 0
		query := msg.query
		m.status = fmt.Sprintf("Suche läuft für '%s'...", query)
		return m, m.run("search", func(ctx context.Context) error {
			_, err := m.ctrl.Search(ctx, query)
			return err
		})

	case thumbnailMsg:
		m.thumbs[msg.url] = msg.art
		return m, nil

	case noticeMsg:
		m.status = string(msg)
		return m, nil

	case settingsMsg:
		m.settings.choice = msg.choice
		m.settings.minutes = msg.minutes
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) applySnapshot(s controller.Snapshot) tea.Cmd {
	m.snap = s
	if s.Status != m.snapStatus {
		m.snapStatus = s.Status
		m.status = s.Status
	}
	if n := len(m.items()); m.cursor >= n {
		m.cursor = max(0, n-1)
	}

	if s.View != models.ViewDetail || s.Detail == nil {
		m.detailSession = ""
		return nil
	}
	if s.Detail.Session != m.detailSession {
		m.detailSession = s.Detail.Session
		m.epCursor = 0
		m.body.GotoTop()
	}
	if n := len(s.Detail.Episodes); m.epCursor >= n {
		m.epCursor = max(0, n-1)
	}
	m.layoutBody()
	if s.Detail.Loading {
		return nil
	}
	url := s.Detail.Details.Thumbnail
	if url == "" {
		return nil
	}
	if _, ok := m.thumbs[url]; ok {
		return nil
	}
	m.thumbs[url] = ""
	svc, ctx := m.svc, m.ctx
	return func() tea.Msg {
		return thumbnailMsg{url: url, art: svc.Thumbnail(ctx, url, thumbWidth)}
	}
}

// layoutBody sizes the synopsis viewport next to the cover and fills it.
func (m *Model) layoutBody() {
	m.body.Width = max(20, m.width-thumbWidth-6)
	m.body.Height = max(3, m.height/4)
	if d := m.snap.Detail; d != nil {
		m.body.SetContent(lipgloss.NewStyle().Width(m.body.Width).Render(util.OrNA(d.Details.Synopsis)))
	}
}

// items is what the grid of the current view shows.
func (m Model) items() []models.AnimeSummary {
	switch m.snap.View {
	case models.ViewHome:
		return m.snap.Displayed
	case models.ViewFavorites:
		return m.snap.Favorites
	}
	return nil
}

func (m Model) selected() (models.AnimeSummary, bool) {
	items := m.items()
	if m.cursor < 0 || m.cursor >= len(items) {
		return models.AnimeSummary{}, false
	}
	return items[m.cursor], true
}

func (m *Model) leaveSearch() {
	m.focus = focusGrid
	m.input.Blur()
}

func (m Model) openDetail(a models.AnimeSummary) tea.Cmd {
	return m.run("detail", func(ctx context.Context) error {
		return m.ctrl.OpenDetail(ctx, a)
	})
}

func (m Model) switchView(v models.View) (tea.Model, tea.Cmd) {
	m.cursor = 0
	m.leaveSearch()
	m.settings.confirmClear = false
	return m, m.run("switch", func(ctx context.Context) error {
		return m.ctrl.SwitchView(ctx, v)
	})
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.ForceQ) {
		return m, tea.Quit
	}
	if m.focus == focusSearch {
		return m.handleSearchKey(msg)
	}
	if m.snap.View == models.ViewSettings && m.settings.confirmClear {
		return m.handleConfirmKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.Home):
		return m.switchView(models.ViewHome)
	case key.Matches(msg, m.keys.Favs):
		return m.switchView(models.ViewFavorites)
	case key.Matches(msg, m.keys.Settings):
		return m.switchView(models.ViewSettings)
	}

	switch m.snap.View {
	case models.ViewSettings:
		return m.handleSettingsKey(msg)
	case models.ViewDetail:
		return m.handleDetailKey(msg)
	}
	if m.focus == focusFilters && m.snap.FilterPanelOpen {
		return m.handleFilterKey(msg)
	}
	return m.handleGridKey(msg)
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyDown, tea.KeyUp:
		k := autocomplete.KeyDown
		if msg.Type == tea.KeyUp {
			k = autocomplete.KeyUp
		}
		m.ac.OnKey(k)
		return m, nil
	case tea.KeyEnter:
		// navigation arrives as openDetailMsg or fullSearchMsg
		m.ac.OnKey(autocomplete.KeyEnter)
		return m, nil
	case tea.KeyEsc:
		if !m.ac.OnKey(autocomplete.KeyEscape) {
			m.leaveSearch()
		}
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if v := m.input.Value(); v != before {
		m.ac.OnInput(v)
	}
	return m, cmd
}

func (m Model) columns() int {
	return max(1, m.width/(cardWidth+1))
}

func (m Model) handleGridKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := len(m.items())
	cols := m.columns()
	home := m.snap.View == models.ViewHome

	switch {
	case key.Matches(msg, m.keys.Search) && home:
		m.focus = focusSearch
		m.ac.Close()
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.Left):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Right):
		if m.cursor < n-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Up):
		if m.cursor-cols >= 0 {
			m.cursor -= cols
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor+cols < n {
			m.cursor += cols
		}
	case key.Matches(msg, m.keys.Enter):
		if a, ok := m.selected(); ok {
			return m, m.openDetail(a)
		}
	case key.Matches(msg, m.keys.Favorite):
		if a, ok := m.selected(); ok {
			return m, m.run("favorite", func(ctx context.Context) error {
				return m.ctrl.ToggleFavorite(ctx, a)
			})
		}
	case key.Matches(msg, m.keys.Filters) && home:
		if !m.snap.FilterPanelOpen {
			m.focus = focusFilters
		}
		m.ctrl.ToggleFilterPanel()
	case key.Matches(msg, m.keys.NextPage) && home:
		m.cursor = 0
		return m, m.pageCmd(m.ctrl.NextPage)
	case key.Matches(msg, m.keys.PrevPage) && home:
		m.cursor = 0
		return m, m.pageCmd(m.ctrl.PrevPage)
	case key.Matches(msg, m.keys.Bigger, m.keys.Smaller) && home:
		size := m.snap.PageSize + pageSizeStep
		if key.Matches(msg, m.keys.Smaller) {
			size = m.snap.PageSize - pageSizeStep
		}
		m.cursor = 0
		return m, m.run("page_size", func(ctx context.Context) error {
			m.ctrl.SetPageSize(size)
			if m.snap.Mode != controller.ModeBrowse {
				return nil
			}
			_, err := m.ctrl.Browse(ctx, 1)
			return err
		})
	}
	return m, nil
}

func (m Model) pageCmd(fn func(context.Context) (models.ResultPage, error)) tea.Cmd {
	return m.run("page", func(ctx context.Context) error {
		_, err := fn(ctx)
		return err
	})
}

func (m Model) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	facet := models.Facets[m.facet]
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.facet > 0 {
			m.facet--
		}
	case key.Matches(msg, m.keys.Down):
		if m.facet < len(models.Facets)-1 {
			m.facet++
		}
	case key.Matches(msg, m.keys.Left, m.keys.Right):
		step := 1
		if key.Matches(msg, m.keys.Left) {
			step = -1
		}
		values := m.snap.FilterOptions.Values(facet)
		if len(values) > 0 {
			i := indexOf(values, m.snap.Filters.Get(facet))
			i = (i + step + len(values)) % len(values)
			m.ctrl.SetFacet(facet, values[i])
		}
	case key.Matches(msg, m.keys.Enter):
		m.cursor = 0
		m.ctrl.ApplyFilters()
	case key.Matches(msg, m.keys.Reset):
		m.cursor = 0
		m.ctrl.ResetFilters()
	case key.Matches(msg, m.keys.Back, m.keys.Filters):
		m.focus = focusGrid
		m.ctrl.ToggleFilterPanel()
	}
	return m, nil
}

func indexOf(values []string, v string) int {
	for i, x := range values {
		if x == v {
			return i
		}
	}
	return 0
}

// detailAnime rebuilds a summary from the open detail view.
func (m Model) detailAnime() (models.AnimeSummary, bool) {
	d := m.snap.Detail
	if d == nil || d.Session == "" {
		return models.AnimeSummary{}, false
	}
	return models.AnimeSummary{
		Session:   d.Session,
		Title:     d.Details.Title,
		Thumbnail: d.Details.Thumbnail,
		Type:      d.Details.Type,
		Genre:     d.Details.Genre,
		Studio:    d.Details.Studio,
		Year:      d.Details.Year,
	}, true
}

func (m Model) selectedEpisode() (models.Episode, bool) {
	d := m.snap.Detail
	if d == nil || m.epCursor < 0 || m.epCursor >= len(d.Episodes) {
		return models.Episode{}, false
	}
	return d.Episodes[m.epCursor], true
}

func (m Model) playingNotice() string {
	if m.settings.choice == models.PlayerWeb {
		return "Abspielen im Webplayer..."
	}
	return "Abspielen in externem Player..."
}

func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	anime, ok := m.detailAnime()
	switch {
	case key.Matches(msg, m.keys.Back):
		m.cursor = 0
		return m, m.run("close_detail", m.ctrl.CloseDetail)
	case key.Matches(msg, m.keys.Up):
		if m.epCursor > 0 {
			m.epCursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.snap.Detail != nil && m.epCursor < len(m.snap.Detail.Episodes)-1 {
			m.epCursor++
		}
	case key.Matches(msg, m.keys.PrevPage):
		m.body.SetYOffset(m.body.YOffset - max(1, m.body.Height/2))
	case key.Matches(msg, m.keys.NextPage):
		m.body.SetYOffset(m.body.YOffset + max(1, m.body.Height/2))
	case key.Matches(msg, m.keys.Favorite) && ok:
		return m, m.run("favorite", func(ctx context.Context) error {
			return m.ctrl.ToggleFavorite(ctx, anime)
		})
	case key.Matches(msg, m.keys.Enter) && ok:
		ep, found := m.selectedEpisode()
		if !found {
			return m, nil
		}
		m.status = m.playingNotice()
		svc, ctx := m.svc, m.ctx
		return m, func() tea.Msg {
			if _, err := svc.PlayEpisode(ctx, anime, ep); err != nil {
				return noticeMsg(fmt.Sprintf("Fehler beim Abspielen der Episode: %s", err))
			}
			return noticeMsg(fmt.Sprintf("%s: %s wird abgespielt.", anime.Title, ep.Label()))
		}
	case key.Matches(msg, m.keys.Queue) && ok:
		ep, found := m.selectedEpisode()
		if !found {
			return m, nil
		}
		if m.svc.QueueEpisode(anime, ep) {
			m.status = fmt.Sprintf("%s zur Playlist hinzugefügt (%d).", ep.Label(), m.svc.PlaylistLen())
		} else {
			m.status = fmt.Sprintf("%s ist bereits in der Playlist.", ep.Label())
		}
	case key.Matches(msg, m.keys.Dequeue) && ok:
		ep, found := m.selectedEpisode()
		if !found {
			return m, nil
		}
		if m.svc.DequeueEpisode(ep) {
			m.status = fmt.Sprintf("%s aus der Playlist entfernt (%d).", ep.Label(), m.svc.PlaylistLen())
		} else {
			m.status = fmt.Sprintf("%s ist nicht in der Playlist.", ep.Label())
		}
	case key.Matches(msg, m.keys.PlayAll):
		if m.svc.PlaylistLen() == 0 {
			m.status = playback.ErrEmptyPlaylist.Error()
			return m, nil
		}
		m.status = m.playingNotice()
		svc, ctx := m.svc, m.ctx
		return m, func() tea.Msg {
			res, err := svc.PlayPlaylist(ctx)
			if err != nil {
				return noticeMsg(fmt.Sprintf("Fehler beim Abspielen der Playlist: %s", err))
			}
			return noticeMsg(fmt.Sprintf("Playlist gestartet (%d Streams).", len(res.URLs)))
		}
	case key.Matches(msg, m.keys.ClearQ):
		m.svc.ClearPlaylist()
		m.status = "Playlist geleert"
	}
	return m, nil
}

func (m Model) handleSettingsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := &m.settings
	switch {
	case key.Matches(msg, m.keys.Up):
		if s.row > 0 {
			s.row--
		}
	case key.Matches(msg, m.keys.Down):
		if s.row < settingsRowCount-1 {
			s.row++
		}
	case key.Matches(msg, m.keys.Left, m.keys.Right):
		switch s.row {
		case 0:
			if s.choice == models.PlayerWeb {
				s.choice = models.PlayerMPV
			} else {
				s.choice = models.PlayerWeb
			}
			choice, svc, ctx := s.choice, m.svc, m.ctx
			return m, func() tea.Msg {
				if err := svc.SetPlayerChoice(ctx, choice); err != nil {
					return noticeMsg(fmt.Sprintf("Fehler beim Speichern des Players: %s", err))
				}
				return noticeMsg(fmt.Sprintf("Standard-Player geändert zu: %s", choice))
			}
		case 1:
			if key.Matches(msg, m.keys.Left) {
				s.minutes = max(1, s.minutes-intervalStep)
			} else {
				s.minutes += intervalStep
			}
		}
	case key.Matches(msg, m.keys.Enter):
		switch s.row {
		case 1:
			minutes, svc, ctx := s.minutes, m.svc, m.ctx
			return m, func() tea.Msg {
				if err := svc.SetCacheInterval(ctx, minutes); err != nil {
					return noticeMsg(fmt.Sprintf("Fehler beim Ändern des Cache-Intervalls: %s", err))
				}
				return noticeMsg(fmt.Sprintf("Cache-Intervall geändert zu: %d Minuten", minutes))
			}
		case 2:
			s.confirmClear = true
			m.status = "Möchten Sie den Cache wirklich löschen? (j/n)"
		}
	case key.Matches(msg, m.keys.Back):
		return m.switchView(models.ViewHome)
	}
	return m, nil
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.settings.confirmClear = false
	switch msg.String() {
	case "j", "y", "J", "Y":
		svc, ctx := m.svc, m.ctx
		return m, func() tea.Msg {
			if err := svc.ClearCache(ctx); err != nil {
				return noticeMsg(fmt.Sprintf("Fehler beim Löschen des Caches: %s", err))
			}
			return noticeMsg("Cache gelöscht.")
		}
	}
	m.status = "Abgebrochen."
	return m, nil
}
