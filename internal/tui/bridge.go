package tui

import (
	"sync"

	"github.com/alvarorichard/anipahe/internal/autocomplete"
	"github.com/alvarorichard/anipahe/internal/controller"
	"github.com/alvarorichard/anipahe/internal/models"
	tea "github.com/charmbracelet/bubbletea"
)

// Bridge turns controller callbacks into Bubble Tea messages. Callbacks
// only enqueue, so controllers may be called from Update and from Cmd
// goroutines alike; a single pump delivers messages in order.
type Bridge struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []tea.Msg
	closed bool
	done   chan struct{}
}

func NewBridge() *Bridge {
	b := &Bridge{done: make(chan struct{})}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Attach starts delivering queued and future messages to send.
func (b *Bridge) Attach(send func(tea.Msg)) {
	go b.pump(send)
}

func (b *Bridge) pump(send func(tea.Msg)) {
	defer close(b.done)
	for {
		b.mu.Lock()
		for len(b.queue) == 0 && !b.closed {
			b.cond.Wait()
		}
		if len(b.queue) == 0 {
			b.mu.Unlock()
			return
		}
		msg := b.queue[0]
		b.queue[0] = nil
		b.queue = b.queue[1:]
		b.mu.Unlock()
		send(msg)
	}
}

// Close stops the pump after the queue has drained. Later callbacks are dropped.
func (b *Bridge) Close() {
	b.mu.Lock()
	b.closed = true
	b.cond.Broadcast()
	b.mu.Unlock()
}

// Done is closed when the pump has exited.
func (b *Bridge) Done() <-chan struct{} {
	return b.done
}

func (b *Bridge) post(msg tea.Msg) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.queue = append(b.queue, msg)
	b.cond.Signal()
}

func (b *Bridge) Render(s controller.Snapshot) {
	b.post(snapshotMsg{snap: s})
}

func (b *Bridge) RenderSuggestions(s autocomplete.State) {
	b.post(suggestionsMsg{state: s})
}

func (b *Bridge) OpenDetail(a models.AnimeSummary) {
	b.post(openDetailMsg{anime: a})
}

func (b *Bridge) FullSearch(query string) {
	b.post(fullSearchMsg{query: query})
}

// PublishCacheStatus is the cache watcher's sink.
func (b *Bridge) PublishCacheStatus(status string) {
	b.post(cacheStatusMsg(status))
}
