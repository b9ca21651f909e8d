// Package autocomplete turns keystrokes into debounced suggestion queries and
// a navigable suggestion list.
package autocomplete

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/alvarorichard/anipahe/internal/models"
	"github.com/alvarorichard/anipahe/internal/util"
)

const (
	DefaultDebounce = 250 * time.Millisecond
	defaultTimeout  = 5 * time.Second
)

// Key is a navigation key understood by OnKey.
type Key int

const (
	KeyNone Key = iota
	KeyDown
	KeyUp
	KeyEnter
	KeyEscape
)

// Suggester fetches suggestions for a query.
type Suggester interface {
	Suggestions(ctx context.Context, query string) ([]models.AnimeSummary, error)
}

// Navigator is told where to go when a suggestion or a full search is chosen.
type Navigator interface {
	OpenDetail(a models.AnimeSummary)
	FullSearch(query string)
}

// Renderer receives the suggestion state after every change. It is called
// with the controller's lock held and must not call back into the Controller.
type Renderer interface {
	RenderSuggestions(State)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(State)

func (f RendererFunc) RenderSuggestions(s State) { f(s) }

// State is the suggestion box as rendered.
type State struct {
	Query   string
	Open    bool
	Loading bool
	Items   []models.AnimeSummary
	// Cursor is the active item, -1 for none.
	Cursor int
}

// Active returns the highlighted suggestion.
func (s State) Active() (models.AnimeSummary, bool) {
	if s.Cursor < 0 || s.Cursor >= len(s.Items) {
		return models.AnimeSummary{}, false
	}
	return s.Items[s.Cursor], true
}

type Option func(*Controller)

// WithDebounce sets the debounce window. Non-positive values keep the default.
func WithDebounce(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.debounce = d
		}
	}
}

// WithTimeout bounds each suggestion request.
func WithTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// Controller is the autocomplete box. Every scheduled query carries a
// generation token; a response is rendered only when its token is still the
// latest, whatever order responses arrive in.
type Controller struct {
	suggester Suggester
	nav       Navigator
	renderer  Renderer
	debounce  time.Duration
	timeout   time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	gen     uint64
	timer   *time.Timer
	state   State
	stopped bool
}

func New(s Suggester, nav Navigator, r Renderer, opts ...Option) *Controller {
	if r == nil {
		r = RendererFunc(func(State) {})
	}
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		suggester: s,
		nav:       nav,
		renderer:  r,
		debounce:  DefaultDebounce,
		timeout:   defaultTimeout,
		ctx:       ctx,
		cancel:    cancel,
		state:     State{Cursor: -1},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns a copy of the current suggestion state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.copyState()
}

func (c *Controller) copyState() State {
	s := c.state
	s.Items = append([]models.AnimeSummary(nil), c.state.Items...)
	return s
}

func (c *Controller) renderLocked() {
	c.renderer.RenderSuggestions(c.copyState())
}

// supersedeLocked invalidates the pending timer and any in-flight response.
func (c *Controller) supersedeLocked() uint64 {
	c.gen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	return c.gen
}

func (c *Controller) closeLocked() {
	c.state.Open = false
	c.state.Loading = false
	c.state.Items = nil
	c.state.Cursor = -1
}

// OnInput records the new input text. Empty text closes the list at once;
// anything else replaces the pending query and schedules it after the
// debounce window.
func (c *Controller) OnInput(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return
	}
	c.state.Query = text
	gen := c.supersedeLocked()

	if strings.TrimSpace(text) == "" {
		c.closeLocked()
		c.renderLocked()
		return
	}
	c.timer = time.AfterFunc(c.debounce, func() { c.fetch(gen, text) })
}

func (c *Controller) fetch(gen uint64, query string) {
	c.mu.Lock()
	if c.stopped || gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.wg.Add(1)
	c.state.Loading = true
	c.renderLocked()
	c.mu.Unlock()
	defer c.wg.Done()

	ctx, cancel := context.WithTimeout(c.ctx, c.timeout)
	items, err := c.suggester.Suggestions(ctx, query)
	cancel()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped || gen != c.gen {
		util.Debug("dropping stale suggestions", "query", query)
		return
	}
	if err != nil {
		// suggestions are best-effort; a failure shows an empty list
		util.Debug("suggestions failed", "query", query, "error", err)
		items = nil
	}
	c.state.Loading = false
	c.state.Open = true
	c.state.Items = items
	c.state.Cursor = -1
	c.renderLocked()
}

// OnKey handles navigation keys and reports whether the key was consumed.
// ArrowUp/ArrowDown move a clamped cursor; Enter selects the active
// suggestion (the first when none is active) or runs a full search when
// the list is closed or empty; Escape closes the list and keeps the text.
func (c *Controller) OnKey(k Key) bool {
	c.mu.Lock()
	n := len(c.state.Items)
	switch k {
	case KeyDown, KeyUp:
		if !c.state.Open || n == 0 {
			c.mu.Unlock()
			return false
		}
		if k == KeyDown {
			c.state.Cursor++
		} else {
			c.state.Cursor--
		}
		if c.state.Cursor < 0 {
			c.state.Cursor = 0
		}
		if c.state.Cursor > n-1 {
			c.state.Cursor = n - 1
		}
		c.renderLocked()
		c.mu.Unlock()
		return true

	case KeyEnter:
		if c.state.Open && n > 0 {
			idx := c.state.Cursor
			if idx < 0 {
				idx = 0
			}
			item := c.state.Items[idx]
			c.mu.Unlock()
			c.Select(item)
			return true
		}
		query := strings.TrimSpace(c.state.Query)
		c.supersedeLocked()
		c.closeLocked()
		c.renderLocked()
		c.mu.Unlock()
		if c.nav != nil {
			c.nav.FullSearch(query)
		}
		return true

	case KeyEscape:
		if !c.state.Open && c.timer == nil {
			c.mu.Unlock()
			return false
		}
		c.supersedeLocked()
		c.closeLocked()
		c.renderLocked()
		c.mu.Unlock()
		return true
	}
	c.mu.Unlock()
	return false
}

// Select closes the list and navigates to the suggestion's detail view.
func (c *Controller) Select(a models.AnimeSummary) {
	c.mu.Lock()
	c.supersedeLocked()
	c.closeLocked()
	c.renderLocked()
	c.mu.Unlock()
	if c.nav != nil {
		c.nav.OpenDetail(a)
	}
}

// Close hides the list without touching the input text.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.supersedeLocked()
	c.closeLocked()
	c.renderLocked()
}

// Stop cancels pending work and waits for in-flight requests to return.
func (c *Controller) Stop() {
	c.mu.Lock()
	c.stopped = true
	c.supersedeLocked()
	c.cancel()
	c.mu.Unlock()
	c.wg.Wait()
}
