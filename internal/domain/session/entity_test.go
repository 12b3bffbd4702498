package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Anonymous(t *testing.T) {
	s := New()

	assert.NotEmpty(t, s.ID)
	assert.False(t, s.LoggedIn)
	assert.Empty(t, s.AccessToken)
	assert.Empty(t, s.RefreshToken)
	assert.Nil(t, s.Flash)
}

func TestSetTokens_WritesPairTogether(t *testing.T) {
	s := New()

	s.SetTokens("access", "refresh")

	assert.True(t, s.LoggedIn)
	assert.Equal(t, "access", s.AccessToken)
	assert.Equal(t, "refresh", s.RefreshToken)
}

func TestClear_KeepsID(t *testing.T) {
	s := New()
	id := s.ID
	s.SetTokens("access", "refresh")
	s.OAuthState = "nonce"
	s.SetFlash("danger", "something happened")

	s.Clear()

	assert.Equal(t, id, s.ID)
	assert.False(t, s.LoggedIn)
	assert.Empty(t, s.AccessToken)
	assert.Empty(t, s.RefreshToken)
	assert.Empty(t, s.OAuthState)
	assert.Nil(t, s.Flash)
}

func TestTakeFlash_OneShot(t *testing.T) {
	s := New()
	s.SetFlash("danger", "You need to be logged in to access that page.")

	f := s.TakeFlash()
	require.NotNil(t, f)
	assert.Equal(t, "danger", f.Type)

	assert.Nil(t, s.TakeFlash())
}

func TestJSON_RoundTrip(t *testing.T) {
	s := New()
	s.SetTokens("access", "refresh")
	s.OAuthState = "nonce"

	data, err := s.ToJSON()
	require.NoError(t, err)

	restored, err := FromJSON(data)
	require.NoError(t, err)

	assert.Equal(t, s.ID, restored.ID)
	assert.True(t, restored.LoggedIn)
	assert.Equal(t, "access", restored.AccessToken)
	assert.Equal(t, "nonce", restored.OAuthState)
}
