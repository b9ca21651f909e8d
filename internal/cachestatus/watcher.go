// Package cachestatus follows the backend's background cache job over the
// /ws/cache_status WebSocket.
package cachestatus

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/alvarorichard/anipahe/internal/util"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
)

const (
	Path = "/ws/cache_status"

	StatusConnected    = "Connected"
	StatusDisconnected = "Disconnected"
	StatusError        = "Error"

	DefaultReconnectDelay = 5 * time.Second
)

// Watcher publishes every status text it receives. It reconnects after a
// fixed delay, without limit, until its context is cancelled.
type Watcher struct {
	url     string
	dialer  *websocket.Dialer
	delay   time.Duration
	publish func(string)
}

type Option func(*Watcher)

// WithReconnectDelay overrides the fixed reconnect delay.
func WithReconnectDelay(d time.Duration) Option {
	return func(w *Watcher) { w.delay = d }
}

// New creates a watcher for the backend at baseURL (http or https).
func New(baseURL string, publish func(string), opts ...Option) (*Watcher, error) {
	wsURL, err := StatusURL(baseURL)
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		url:     wsURL,
		dialer:  &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		delay:   DefaultReconnectDelay,
		publish: publish,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// StatusURL maps http://host to ws://host/ws/cache_status and https to wss.
func StatusURL(baseURL string) (string, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return "", errors.Wrap(err, "invalid backend url")
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", errors.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + Path
	u.RawQuery = ""
	return u.String(), nil
}

// Run blocks until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) {
	for {
		err := w.session(ctx)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			util.Debug("cache status connection failed", "url", w.url, "error", err)
			w.publish(StatusError)
		}
		w.publish(StatusDisconnected)

		t := time.NewTimer(w.delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return
		case <-t.C:
		}
	}
}

// session runs one connection. A clean close returns nil.
func (w *Watcher) session(ctx context.Context) error {
	conn, _, err := w.dialer.DialContext(ctx, w.url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	// unblock ReadMessage on cancellation
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	w.publish(StatusConnected)
	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return err
		}
		if kind == websocket.TextMessage {
			w.publish(string(data))
		}
	}
}
