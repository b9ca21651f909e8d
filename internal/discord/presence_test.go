package discord

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tr1xem/go-discordrpc/client"
)

type mockRPC struct {
	mock.Mock
}

func (m *mockRPC) Login() error  { return m.Called().Error(0) }
func (m *mockRPC) Logout() error { return m.Called().Error(0) }
func (m *mockRPC) SetActivity(a client.Activity) error {
	return m.Called(a).Error(0)
}

func TestWatching_LogsInOnceAndDeduplicates(t *testing.T) {
	rpc := &mockRPC{}
	rpc.On("Login").Return(nil).Once()
	rpc.On("SetActivity", mock.MatchedBy(func(a client.Activity) bool {
		return a.Details == "Naruto" && a.State == "Episode 3" && a.LargeImage == fallbackImage
	})).Return(nil).Once()
	rpc.On("Logout").Return(nil).Once()

	clock := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	p := NewWithClient(func() RPC { return rpc })
	p.now = func() time.Time { return clock }

	require.NoError(t, p.Watching("Naruto", "3", ""))
	clock = clock.Add(30 * time.Second)
	require.NoError(t, p.Watching("Naruto", "3", ""))

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	rpc.AssertExpectations(t)
}

func TestWatching_ChangedEpisodeUpdates(t *testing.T) {
	rpc := &mockRPC{}
	rpc.On("Login").Return(nil).Once()
	rpc.On("SetActivity", mock.Anything).Return(nil).Twice()

	p := NewWithClient(func() RPC { return rpc })
	require.NoError(t, p.Watching("Naruto", "3", "https://img/x.jpg"))
	require.NoError(t, p.Watching("Naruto", "4", "https://img/x.jpg"))
	rpc.AssertExpectations(t)
}

func TestWatching_LoginFailure(t *testing.T) {
	rpc := &mockRPC{}
	rpc.On("Login").Return(errors.New("discord not running"))

	p := NewWithClient(func() RPC { return rpc })
	err := p.Watching("Naruto", "1", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "discord not running")
	rpc.AssertNotCalled(t, "SetActivity", mock.Anything)
	assert.NoError(t, p.Close())
}
