package cachestatus

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusURL(t *testing.T) {
	u, err := StatusURL("http://127.0.0.1:8000/")
	require.NoError(t, err)
	assert.Equal(t, "ws://127.0.0.1:8000/ws/cache_status", u)

	u, err = StatusURL("https://example.com/app")
	require.NoError(t, err)
	assert.Equal(t, "wss://example.com/app/ws/cache_status", u)

	_, err = StatusURL("ftp://example.com")
	assert.Error(t, err)
}

type collector struct {
	mu   sync.Mutex
	msgs []string
}

func (c *collector) publish(s string) {
	c.mu.Lock()
	c.msgs = append(c.msgs, s)
	c.mu.Unlock()
}

func (c *collector) snapshot() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.msgs...)
}

func TestRun_ForwardsMessagesAndReconnects(t *testing.T) {
	var conns atomic.Int32
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, Path, r.URL.Path)
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		n := conns.Add(1)
		_ = conn.WriteMessage(websocket.TextMessage, []byte("Cache update started"))
		if n == 1 {
			// first connection drops abruptly
			return
		}
		_ = conn.WriteMessage(websocket.TextMessage, []byte("Cache update finished"))
		<-r.Context().Done()
	}))
	defer srv.Close()

	col := &collector{}
	w, err := New(srv.URL, col.publish, WithReconnectDelay(10*time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run(ctx)
	}()

	require.Eventually(t, func() bool {
		msgs := col.snapshot()
		return len(msgs) > 0 && msgs[len(msgs)-1] == "Cache update finished"
	}, 2*time.Second, 5*time.Millisecond)
	cancel()
	<-done

	msgs := col.snapshot()
	assert.Equal(t, StatusConnected, msgs[0])
	assert.Equal(t, "Cache update started", msgs[1])
	assert.Contains(t, msgs, StatusDisconnected)
	assert.GreaterOrEqual(t, conns.Load(), int32(2))
}

func TestRun_DialFailureRetriesUntilCancelled(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	col := &collector{}
	w, err := New(url, col.publish, WithReconnectDelay(5*time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()
	w.Run(ctx)

	msgs := col.snapshot()
	require.NotEmpty(t, msgs)
	assert.NotContains(t, msgs, StatusConnected)
	assert.Contains(t, msgs, StatusError)
}
