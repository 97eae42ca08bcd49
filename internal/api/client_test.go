package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadUserClient_NotFoundMapping(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"User client not found"}`, http.StatusNotFound)
	}))
	t.Cleanup(ts.Close)

	_, err := New(ts.URL).ReadUserClient(context.Background(), "whoever")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.Contains(t, err.Error(), "User client not found")
}

func TestReadUserClient_ServerErrorIsNotNotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"boom"}`, http.StatusInternalServerError)
	}))
	t.Cleanup(ts.Close)

	_, err := New(ts.URL).ReadUserClient(context.Background(), "whoever")
	require.Error(t, err)
	assert.False(t, IsNotFound(err))
}

func TestTransportErrorIsNotNotFound(t *testing.T) {
	// Point at a closed server.
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close()

	_, err := New(ts.URL).ReadUserClient(context.Background(), "whoever")
	require.Error(t, err)
	assert.False(t, IsNotFound(err))
}

func TestReadCurrentGame_NullMeansNoGame(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("null"))
	}))
	t.Cleanup(ts.Close)

	game, err := New(ts.URL).ReadCurrentGame(context.Background(), "tok")
	require.NoError(t, err)
	assert.Nil(t, game)
}

func TestGameStatus_Terminal(t *testing.T) {
	assert.False(t, GameInProgress.Terminal())
	assert.True(t, GameWon.Terminal())
	assert.True(t, GameLost.Terminal())
	assert.True(t, GameAbandoned.Terminal())
}

func TestGame_HasGuessed(t *testing.T) {
	g := &Game{Guesses: []Guess{{GuessedCountryID: 4}, {GuessedCountryID: 9}}}
	assert.True(t, g.HasGuessed(9))
	assert.False(t, g.HasGuessed(5))
}
