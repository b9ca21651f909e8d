// Package discord shows what is playing as Discord Rich Presence. Presence
// is best-effort: when Discord is not running every call is a logged no-op.
package discord

import (
	"net/url"
	"sync"
	"time"

	"github.com/alvarorichard/anipahe/internal/util"
	"github.com/pkg/errors"
	"github.com/tr1xem/go-discordrpc/client"
)

// ClientID is the Discord application client ID
const ClientID = "1302721937717334128"

const (
	// fallbackImage is the asset key uploaded to the Discord application.
	fallbackImage = "anipahe"
	// refreshAfter forces an identical activity to be resent to keep it alive.
	refreshAfter = 2 * time.Minute
)

// RPC is the part of the go-discordrpc client used here.
type RPC interface {
	Login() error
	Logout() error
	SetActivity(activity client.Activity) error
}

// Presence manages a single Rich Presence session.
type Presence struct {
	newClient func() RPC
	now       func() time.Time

	mu       sync.Mutex
	rpc      RPC
	loggedIn bool
	last     activityKey
	lastSent time.Time
}

type activityKey struct {
	title   string
	episode string
}

// New creates a Presence for ClientID. Nothing connects until the first update.
func New() *Presence {
	return NewWithClient(func() RPC { return client.NewClient(ClientID) })
}

// NewWithClient uses newClient to create the RPC connection.
func NewWithClient(newClient func() RPC) *Presence {
	return &Presence{newClient: newClient, now: time.Now}
}

func (p *Presence) loginLocked() error {
	if p.loggedIn {
		return nil
	}
	p.rpc = p.newClient()
	if err := p.rpc.Login(); err != nil {
		p.rpc = nil
		return errors.Wrap(err, "discord login failed")
	}
	p.loggedIn = true
	util.Debug("Discord RPC logged in")
	return nil
}

// Watching shows title and episode. Unchanged activities are only resent
// after refreshAfter.
func (p *Presence) Watching(title, episode, imageURL string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	key := activityKey{title: title, episode: episode}
	now := p.now()
	if p.loggedIn && key == p.last && now.Sub(p.lastSent) < refreshAfter {
		return nil
	}
	if err := p.loginLocked(); err != nil {
		return err
	}

	if imageURL == "" {
		imageURL = fallbackImage
	}
	state := "Episode " + episode
	if episode == "" {
		state = "Watching"
	}
	activity := client.Activity{
		Type:       3, // Watching
		Name:       title,
		Details:    title,
		State:      state,
		LargeImage: imageURL,
		LargeText:  title,
		Timestamps: &client.Timestamps{Start: &now},
		Buttons: []*client.Button{{
			Label: "Search on AnimePahe",
			Url:   "https://animepahe.ru/anime?q=" + url.QueryEscape(title),
		}},
	}
	if err := p.rpc.SetActivity(activity); err != nil {
		return errors.Wrap(err, "discord activity update failed")
	}
	p.last = key
	p.lastSent = now
	return nil
}

// Close logs out when a session is open.
func (p *Presence) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.loggedIn {
		return nil
	}
	p.loggedIn = false
	p.last = activityKey{}
	if err := p.rpc.Logout(); err != nil {
		return errors.Wrap(err, "discord logout failed")
	}
	util.Debug("Discord RPC logged out")
	return nil
}
