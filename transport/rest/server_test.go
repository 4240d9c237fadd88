package rest

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playrooms/tictactoe-rooms/internal/repository"
)

type fakeLister struct {
	summaries []repository.RoomSummary
}

func (that *fakeLister) ListRooms(_ context.Context) ([]repository.RoomSummary, error) {
	return that.summaries, nil
}

func newTestServer(summaries []repository.RoomSummary) *httptest.Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	server := New(logger, &fakeLister{summaries: summaries})

	return httptest.NewServer(server.Handler())
}

func TestPingHandler(t *testing.T) {
	srv := newTestServer(nil)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/ping")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "pong", string(body))
}

func TestRoomsHandler(t *testing.T) {
	t.Run("Lists live rooms with player counts", func(t *testing.T) {
		// Given: two live rooms
		srv := newTestServer([]repository.RoomSummary{
			{Code: "AB12CD", Players: 1},
			{Code: "EF34GH", Players: 2},
		})
		defer srv.Close()

		// When: fetching the room list
		resp, err := http.Get(srv.URL + "/api/rooms")
		require.NoError(t, err)
		defer resp.Body.Close()

		// Then: both rooms are reported as JSON
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var summaries []repository.RoomSummary
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&summaries))
		assert.Equal(t, []repository.RoomSummary{
			{Code: "AB12CD", Players: 1},
			{Code: "EF34GH", Players: 2},
		}, summaries)
	})

	t.Run("Rejects non-GET methods", func(t *testing.T) {
		srv := newTestServer(nil)
		defer srv.Close()

		resp, err := http.Post(srv.URL+"/api/rooms", "application/json", nil)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	})
}
