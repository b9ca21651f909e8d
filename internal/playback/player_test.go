package playback

import (
	"context"
	"errors"
	"testing"

	"github.com/alvarorichard/anipahe/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockBackend struct {
	mock.Mock
}

func (m *mockBackend) StreamURLs(ctx context.Context, refs []models.EpisodeRef) ([]models.StreamURL, error) {
	args := m.Called(ctx, refs)
	urls, _ := args.Get(0).([]models.StreamURL)
	return urls, args.Error(1)
}

func (m *mockBackend) PlayExternal(ctx context.Context, refs []models.EpisodeRef) error {
	return m.Called(ctx, refs).Error(0)
}

type mockPresence struct {
	mock.Mock
}

func (m *mockPresence) Watching(title, episode, imageURL string) error {
	return m.Called(title, episode, imageURL).Error(0)
}

var ref = models.EpisodeRef{AnimeSession: "anime", EpisodeSession: "ep1"}

func TestPlay_MPVResolvesThenPlaysExternal(t *testing.T) {
	ctx := context.Background()
	b := &mockBackend{}
	b.On("StreamURLs", ctx, []models.EpisodeRef{ref}).Return([]models.StreamURL{{URL: "https://x/1.m3u8"}}, nil).Once()
	b.On("PlayExternal", ctx, []models.EpisodeRef{ref}).Return(nil).Once()
	pres := &mockPresence{}
	pres.On("Watching", "Naruto", "1", "").Return(errors.New("discord not running")).Once()

	p := New(b, WithPresence(pres), WithOpener(func(string) error {
		t.Fatal("browser must not open for mpv")
		return nil
	}))
	res, err := p.Play(ctx, models.PlayerMPV, Request{Title: "Naruto", Episode: "1", Refs: []models.EpisodeRef{ref}})
	require.NoError(t, err, "presence failures are not playback failures")
	assert.Equal(t, models.PlayerMPV, res.Choice)
	assert.Len(t, res.URLs, 1)
	b.AssertExpectations(t)
	pres.AssertExpectations(t)
}

func TestPlay_MPVNoStreamsSkipsExternal(t *testing.T) {
	ctx := context.Background()
	b := &mockBackend{}
	b.On("StreamURLs", ctx, mock.Anything).Return([]models.StreamURL{}, nil).Once()

	_, err := New(b).Play(ctx, models.PlayerMPV, Request{Refs: []models.EpisodeRef{ref}})
	assert.ErrorIs(t, err, ErrNoStreams)
	b.AssertNotCalled(t, "PlayExternal", mock.Anything, mock.Anything)
}

func TestPlay_WebOpensFirstURL(t *testing.T) {
	ctx := context.Background()
	b := &mockBackend{}
	b.On("StreamURLs", ctx, mock.Anything).Return([]models.StreamURL{{URL: "https://x/1.m3u8"}, {URL: "https://x/2.m3u8"}}, nil)

	var opened string
	p := New(b, WithOpener(func(u string) error { opened = u; return nil }))
	res, err := p.Play(ctx, models.PlayerWeb, Request{Refs: []models.EpisodeRef{ref}})
	require.NoError(t, err)
	assert.Equal(t, "https://x/1.m3u8", opened)
	assert.Equal(t, opened, res.Opened)
	b.AssertNotCalled(t, "PlayExternal", mock.Anything, mock.Anything)
}

func TestPlay_ResolveErrorPropagates(t *testing.T) {
	ctx := context.Background()
	b := &mockBackend{}
	b.On("StreamURLs", ctx, mock.Anything).Return(nil, errors.New("boom"))
	_, err := New(b).Play(ctx, models.PlayerMPV, Request{Refs: []models.EpisodeRef{ref}})
	assert.EqualError(t, err, "boom")
}

func TestPlaylist(t *testing.T) {
	pl := NewPlaylist()
	assert.True(t, pl.Add(Entry{AnimeTitle: "Naruto", Episode: "1", Ref: ref}))
	assert.False(t, pl.Add(Entry{Ref: ref}), "duplicates are rejected")
	assert.False(t, pl.Add(Entry{Ref: models.EpisodeRef{AnimeSession: "anime"}}), "incomplete refs are rejected")
	ref2 := models.EpisodeRef{AnimeSession: "anime", EpisodeSession: "ep2"}
	assert.True(t, pl.Add(Entry{AnimeTitle: "Naruto", Episode: "2", Ref: ref2}))
	assert.Equal(t, 2, pl.Len())

	ctx := context.Background()
	b := &mockBackend{}
	b.On("StreamURLs", ctx, []models.EpisodeRef{ref, ref2}).Return([]models.StreamURL{{URL: "u1"}, {URL: "u2"}}, nil)
	b.On("PlayExternal", ctx, []models.EpisodeRef{ref, ref2}).Return(nil)
	_, err := pl.Play(ctx, New(b), models.PlayerMPV)
	require.NoError(t, err)
	b.AssertExpectations(t)

	assert.True(t, pl.Remove("ep1"))
	assert.False(t, pl.Remove("ep1"))
	assert.Equal(t, "ep2", pl.Entries()[0].Ref.EpisodeSession)

	pl.Clear()
	_, err = pl.Play(ctx, New(b), models.PlayerMPV)
	assert.ErrorIs(t, err, ErrEmptyPlaylist)
}
