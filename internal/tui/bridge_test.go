package tui

import (
	"testing"
	"time"

	"github.com/alvarorichard/anipahe/internal/controller"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBridge_DeliversInOrderAfterAttach(t *testing.T) {
	b := NewBridge()
	for i := 0; i < 50; i++ {
		b.PublishCacheStatus(string(rune('a' + i%26)))
	}
	b.Render(controller.Snapshot{})

	got := make(chan tea.Msg, 100)
	b.Attach(func(msg tea.Msg) { got <- msg })
	b.Close()

	select {
	case <-b.Done():
	case <-time.After(time.Second):
		t.Fatal("pump did not drain")
	}
	require.Len(t, got, 51)
	for i := 0; i < 50; i++ {
		assert.Equal(t, cacheStatusMsg(string(rune('a'+i%26))), <-got)
	}
	_, ok := (<-got).(snapshotMsg)
	assert.True(t, ok)
}

func TestBridge_DropsAfterClose(t *testing.T) {
	b := NewBridge()
	b.Close()
	b.FullSearch("late")

	got := make(chan tea.Msg, 1)
	b.Attach(func(msg tea.Msg) { got <- msg })
	<-b.Done()
	assert.Empty(t, got)
}
