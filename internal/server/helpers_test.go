package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/require"

	"github.com/lox/pokerstate/internal/game"
)

// testLogger creates a logger that discards output for tests
func testLogger() *log.Logger {
	return log.New(io.Discard)
}

func newTestServer(t *testing.T) (*Server, *quartz.Mock) {
	t.Helper()
	clock := quartz.NewMock(t)
	return NewServer(DefaultConfig(), testLogger(), WithClock(clock)), clock
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), "body: %s", rec.Body.String())
	return v
}

func createGame(t *testing.T, h http.Handler, body any) string {
	t.Helper()
	rec := doJSON(t, h, http.MethodPost, "/api/games", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeBody[createGameResponse](t, rec).GameID
}

func seatPlayers(t *testing.T, h http.Handler, id string, seats ...seatRequest) {
	t.Helper()
	rec := doJSON(t, h, http.MethodPost, "/api/games/"+id+"/players", seats)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

// passive picks the action that keeps everyone in without raising.
func passive(actions []game.ActionType) game.ActionType {
	for _, preferred := range []game.ActionType{
		game.PutSmallBlind, game.PutBigBlind, game.CheckBigBlind,
		game.Check, game.Call, game.MustAllIn,
	} {
		if slices.Contains(actions, preferred) {
			return preferred
		}
	}
	return actions[0]
}
