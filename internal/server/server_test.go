package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/pokerstate/internal/game"
	"github.com/lox/pokerstate/internal/gameid"
)

func TestServerHealth(t *testing.T) {
	t.Parallel()
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv.Handler(), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestCreateGame(t *testing.T) {
	t.Parallel()
	srv, _ := newTestServer(t)
	h := srv.Handler()

	seed := int64(7)
	rec := doJSON(t, h, http.MethodPost, "/api/games", createGameRequest{BigBlind: 20, Seed: &seed})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	resp := decodeBody[createGameResponse](t, rec)
	assert.Len(t, resp.GameID, gameid.Length)
	assert.NoError(t, gameid.Validate(resp.GameID))
	assert.Equal(t, seed, resp.Seed)

	rec = doJSON(t, h, http.MethodGet, "/api/games/"+resp.GameID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	snapshot := decodeBody[game.Snapshot](t, rec)
	assert.Equal(t, game.PhaseHandStageValidator, snapshot.Phase)
	assert.Equal(t, 20, snapshot.HandStage.BigBlind)
	assert.Equal(t, 10, snapshot.HandStage.SmallBlind)

	// An empty body falls back to the configured default.
	rec = doJSON(t, h, http.MethodPost, "/api/games", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decodeBody[createGameResponse](t, rec).GameID
	rec = doJSON(t, h, http.MethodGet, "/api/games/"+id, nil)
	assert.Equal(t, srv.config.Defaults.BigBlind, decodeBody[game.Snapshot](t, rec).HandStage.BigBlind)
}

func TestRequestErrors(t *testing.T) {
	t.Parallel()
	srv, _ := newTestServer(t)
	h := srv.Handler()
	id := createGame(t, h, createGameRequest{BigBlind: 10})

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   string
	}{
		{"big blind too small", http.MethodPost, "/api/games", createGameRequest{BigBlind: 1}, http.StatusBadRequest, "invalid_request"},
		{"small blind not below big blind", http.MethodPost, "/api/games", createGameRequest{BigBlind: 10, SmallBlind: 10}, http.StatusBadRequest, "invalid_request"},
		{"unknown field", http.MethodPost, "/api/games", map[string]int{"ante": 1}, http.StatusBadRequest, "invalid_request"},
		{"unknown game", http.MethodGet, "/api/games/nope", nil, http.StatusNotFound, "not_found"},
		{"delete unknown game", http.MethodDelete, "/api/games/nope", nil, http.StatusNotFound, "not_found"},
		{"single player roster", http.MethodPost, "/api/games/" + id + "/players", []seatRequest{{ID: "a", Chips: 10}}, http.StatusBadRequest, "invalid_request"},
		{"negative chips", http.MethodPost, "/api/games/" + id + "/players", []seatRequest{{ID: "a", Chips: 10}, {ID: "b", Chips: -1}}, http.StatusBadRequest, "invalid_request"},
		{"duplicate ids", http.MethodPost, "/api/games/" + id + "/players", []seatRequest{{ID: "a", Chips: 10}, {ID: "a", Chips: 10}}, http.StatusConflict, "illegal_action"},
		{"step without roster", http.MethodPost, "/api/games/" + id + "/step", nil, http.StatusConflict, "illegal_action"},
		{"actions outside action phase", http.MethodGet, "/api/games/" + id + "/actions", nil, http.StatusConflict, "illegal_action"},
		{"unknown action", http.MethodPost, "/api/games/" + id + "/actions", actionRequest{Action: "dance"}, http.StatusBadRequest, "invalid_request"},
		{"result outside winner phase", http.MethodPost, "/api/games/" + id + "/result", resultRequest{WinnersPerPot: [][]string{{"a"}}}, http.StatusConflict, "illegal_action"},
		{"empty result", http.MethodPost, "/api/games/" + id + "/result", resultRequest{}, http.StatusBadRequest, "invalid_request"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, h, tt.method, tt.path, tt.body)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			resp := decodeBody[errorResponse](t, rec)
			assert.Equal(t, tt.code, resp.Code)
			assert.NotEmpty(t, resp.Message)
		})
	}
}

func TestRosterLimit(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	cfg.Defaults.MaxPlayers = 2
	srv := NewServer(cfg, testLogger())
	h := srv.Handler()
	id := createGame(t, h, nil)

	rec := doJSON(t, h, http.MethodPost, "/api/games/"+id+"/players",
		[]seatRequest{{ID: "a", Chips: 10}, {ID: "b", Chips: 10}, {ID: "c", Chips: 10}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIllegalActionRejected(t *testing.T) {
	t.Parallel()
	srv, _ := newTestServer(t)
	h := srv.Handler()
	id := createGame(t, h, createGameRequest{BigBlind: 10})
	seatPlayers(t, h, id, seatRequest{ID: "alice", Chips: 500}, seatRequest{ID: "bob", Chips: 500})

	rec := doJSON(t, h, http.MethodPost, "/api/games/"+id+"/advance", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, game.PhaseActionSelector, decodeBody[phaseResponse](t, rec).Phase)

	rec = doJSON(t, h, http.MethodGet, "/api/games/"+id+"/actions", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	actions := decodeBody[actionsResponse](t, rec)
	assert.Equal(t, []game.ActionType{game.PutSmallBlind}, actions.Actions)
	assert.NotEmpty(t, actions.PlayerID)

	rec = doJSON(t, h, http.MethodPost, "/api/games/"+id+"/actions", actionRequest{Action: "fold"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/games/"+id+"/step", nil)
	assert.Equal(t, http.StatusConflict, rec.Code, "step is refused while waiting on a player")

	rec = doJSON(t, h, http.MethodPost, "/api/games/"+id+"/players",
		[]seatRequest{{ID: "carol", Chips: 10}, {ID: "dave", Chips: 10}})
	assert.Equal(t, http.StatusConflict, rec.Code, "roster is fixed once play started")
}

// playHand drives one hand through the API with passive play and awards
// every pot to its first contender.
func playHand(t *testing.T, h http.Handler, id string) {
	t.Helper()
	for range 200 {
		rec := doJSON(t, h, http.MethodPost, "/api/games/"+id+"/advance", nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		switch decodeBody[phaseResponse](t, rec).Phase {
		case game.PhaseActionSelector:
			rec = doJSON(t, h, http.MethodGet, "/api/games/"+id+"/actions", nil)
			require.Equal(t, http.StatusOK, rec.Code)
			options := decodeBody[actionsResponse](t, rec)

			rec = doJSON(t, h, http.MethodPost, "/api/games/"+id+"/actions",
				actionRequest{Action: passive(options.Actions).String()})
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		case game.PhaseWinnerSelector:
			rec = doJSON(t, h, http.MethodGet, "/api/games/"+id, nil)
			snapshot := decodeBody[game.Snapshot](t, rec)
			winners := make([][]string, len(snapshot.Pots))
			for i, pot := range snapshot.Pots {
				if len(pot.ActivePlayerIDs) > 0 {
					winners[i] = pot.ActivePlayerIDs[:1]
				}
			}
			rec = doJSON(t, h, http.MethodPost, "/api/games/"+id+"/result", resultRequest{WinnersPerPot: winners})
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			return

		default:
			t.Fatalf("unexpected phase %s", decodeBody[phaseResponse](t, rec).Phase)
		}
	}
	t.Fatal("hand did not finish")
}

func TestPlayHandOverAPI(t *testing.T) {
	t.Parallel()
	srv, _ := newTestServer(t)
	h := srv.Handler()

	seed := int64(3)
	id := createGame(t, h, createGameRequest{BigBlind: 10, Seed: &seed})
	seatPlayers(t, h, id,
		seatRequest{ID: "alice", Chips: 500},
		seatRequest{ID: "bob", Chips: 500},
		seatRequest{ID: "carol", Chips: 500})

	playHand(t, h, id)
	playHand(t, h, id)

	rec := doJSON(t, h, http.MethodGet, "/api/games/"+id, nil)
	snapshot := decodeBody[game.Snapshot](t, rec)
	assert.Equal(t, 2, snapshot.Hands)
	assert.Equal(t, 1500, snapshot.TotalChips)
	assert.Equal(t, game.PhaseHandStageValidator, snapshot.Phase)

	rec = doJSON(t, h, http.MethodGet, "/api/games", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	summaries := decodeBody[[]GameSummary](t, rec)
	require.Len(t, summaries, 1)
	assert.Equal(t, id, summaries[0].ID)
	assert.Equal(t, 2, summaries[0].Hands)
	assert.Equal(t, 3, summaries[0].Players)
	assert.Equal(t, 1500, summaries[0].TotalChips)

	rec = doJSON(t, h, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "pokerstate_games_created_total 1")
	assert.Contains(t, body, "pokerstate_hands_started_total 2")
	assert.Contains(t, body, "pokerstate_active_games 1")
	assert.Contains(t, body, `pokerstate_actions_applied_total{action="putBigBlind"} 2`)

	rec = doJSON(t, h, http.MethodDelete, "/api/games/"+id, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = doJSON(t, h, http.MethodGet, "/api/games/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStepReturnsPhase(t *testing.T) {
	t.Parallel()
	srv, _ := newTestServer(t)
	h := srv.Handler()
	id := createGame(t, h, nil)
	seatPlayers(t, h, id, seatRequest{ID: "a", Chips: 100}, seatRequest{ID: "b", Chips: 100})

	rec := doJSON(t, h, http.MethodPost, "/api/games/"+id+"/step", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, game.PhaseBettingStageValidator, decodeBody[phaseResponse](t, rec).Phase)
}

func TestWebSocketStream(t *testing.T) {
	t.Parallel()
	srv, _ := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	id := createGame(t, srv.Handler(), createGameRequest{BigBlind: 10})

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/games/" + id + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	read := func() StreamMessage {
		t.Helper()
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		var msg StreamMessage
		require.NoError(t, conn.ReadJSON(&msg))
		return msg
	}

	first := read()
	assert.Equal(t, "snapshot", first.Type)
	assert.Equal(t, id, first.GameID)
	assert.Empty(t, first.Snapshot.Players)

	require.Eventually(t, func() bool { return srv.Hub().Watchers(id) == 1 }, time.Second, 10*time.Millisecond)

	seatPlayers(t, srv.Handler(), id, seatRequest{ID: "a", Chips: 100}, seatRequest{ID: "b", Chips: 100})
	second := read()
	assert.Len(t, second.Snapshot.Players, 2)

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/games/"+id+"/advance", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	third := read()
	assert.Equal(t, game.PhaseActionSelector, third.Snapshot.Phase)

	// Deleting the game disconnects its watchers.
	rec = doJSON(t, srv.Handler(), http.MethodDelete, "/api/games/"+id, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err)
}

func TestWebSocketUnknownGame(t *testing.T) {
	t.Parallel()
	srv, _ := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/games/missing/ws"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRunStopsOnCancel(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	cfg.Server.Address = "127.0.0.1:0"
	srv := NewServer(cfg, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop")
	}
}
