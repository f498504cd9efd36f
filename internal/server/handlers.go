package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/lox/pokerstate/internal/game"
)

var errBadRequest = errors.New("bad request")

type createGameRequest struct {
	BigBlind   int    `json:"bigBlind" validate:"omitempty,min=2"`
	SmallBlind int    `json:"smallBlind" validate:"omitempty,min=1"`
	Seed       *int64 `json:"seed"`
}

type createGameResponse struct {
	GameID string `json:"gameId"`
	Seed   int64  `json:"seed"`
}

type seatRequest struct {
	ID    string `json:"id" validate:"required,max=64"`
	Chips int    `json:"chips" validate:"min=0"`
}

type rosterRequest struct {
	Players []seatRequest `validate:"required,min=2,dive"`
}

type actionRequest struct {
	Action string `json:"action" validate:"required"`
	Amount int    `json:"amount" validate:"min=0"`
}

type resultRequest struct {
	WinnersPerPot [][]string `json:"winnersPerPot" validate:"required,min=1,dive,dive,required"`
}

type phaseResponse struct {
	Phase game.Phase `json:"phase"`
}

type actionsResponse struct {
	PlayerID     string            `json:"playerId"`
	Seat         game.Seat         `json:"seat"`
	Actions      []game.ActionType `json:"actions"`
	ActualBet    int               `json:"actualBet"`
	MinimumRaise int               `json:"minimumRaise"`
	PendingChips int               `json:"pendingChips"`
	Chips        int               `json:"chips"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK") // Ignore write errors for health check
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req createGameRequest
	if r.ContentLength != 0 {
		if err := s.decode(r, &req); err != nil {
			s.writeError(w, err)
			return
		}
	}
	if req.BigBlind == 0 {
		req.BigBlind = s.config.Defaults.BigBlind
	}
	if req.SmallBlind >= req.BigBlind {
		s.writeError(w, fmt.Errorf("%w: small blind %d must be below big blind %d", errBadRequest, req.SmallBlind, req.BigBlind))
		return
	}

	instance, err := s.registry.Create(CreateOptions{
		BigBlind:   req.BigBlind,
		SmallBlind: req.SmallBlind,
		Seed:       req.Seed,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, createGameResponse{GameID: instance.ID, Seed: instance.Seed})
}

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.registry.List())
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	var snapshot game.Snapshot
	err := s.registry.View(r.PathValue("id"), func(g *game.Game) error {
		snapshot = g.Snapshot()
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, snapshot)
}

func (s *Server) handleDeleteGame(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !s.registry.Delete(id) {
		s.writeError(w, fmt.Errorf("%w: %s", ErrGameNotFound, id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetRoster(w http.ResponseWriter, r *http.Request) {
	var req rosterRequest
	if err := s.decode(r, &req.Players); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.writeError(w, err)
		return
	}
	if limit := s.config.Defaults.MaxPlayers; len(req.Players) > limit {
		s.writeError(w, fmt.Errorf("%w: at most %d players, got %d", errBadRequest, limit, len(req.Players)))
		return
	}

	seats := make([]game.Seating, len(req.Players))
	for i, p := range req.Players {
		seats[i] = game.Seating{ID: p.ID, Chips: p.Chips}
	}

	var snapshot game.Snapshot
	err := s.registry.Update(r.PathValue("id"), func(g *game.Game) error {
		if err := g.SetRoster(seats); err != nil {
			return err
		}
		snapshot = g.Snapshot()
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, snapshot)
}

func (s *Server) handleStep(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, (*game.Game).Step)
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, (*game.Game).Advance)
}

func (s *Server) transition(w http.ResponseWriter, r *http.Request, run func(*game.Game) (game.Phase, error)) {
	var phase game.Phase
	err := s.registry.Update(r.PathValue("id"), func(g *game.Game) error {
		var err error
		phase, err = run(g)
		return err
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, phaseResponse{Phase: phase})
}

func (s *Server) handleLegalActions(w http.ResponseWriter, r *http.Request) {
	var resp actionsResponse
	err := s.registry.View(r.PathValue("id"), func(g *game.Game) error {
		actions, err := g.LegalActions()
		if err != nil {
			return err
		}
		player := g.CurrentPlayer()
		snapshot := g.Snapshot()
		resp = actionsResponse{
			PlayerID:     player.ID(),
			Seat:         snapshot.Positions.Turn,
			Actions:      actions,
			ActualBet:    snapshot.BettingStage.ActualBet,
			MinimumRaise: snapshot.BettingStage.MinimumRaise,
			PendingChips: player.PendingChips(),
			Chips:        player.Chips(),
		}
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAct(w http.ResponseWriter, r *http.Request) {
	var req actionRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	action, err := game.ParseActionType(req.Action)
	if err != nil {
		s.writeError(w, fmt.Errorf("%w: %w", errBadRequest, err))
		return
	}

	var phase game.Phase
	err = s.registry.Update(r.PathValue("id"), func(g *game.Game) error {
		if err := g.Act(action, req.Amount); err != nil {
			return err
		}
		phase = g.Phase()
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, phaseResponse{Phase: phase})
}

func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	var req resultRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	winners := make(map[game.PotIndex][]string, len(req.WinnersPerPot))
	for i, ids := range req.WinnersPerPot {
		if len(ids) > 0 {
			winners[game.PotIndex(i)] = ids
		}
	}

	var snapshot game.Snapshot
	err := s.registry.Update(r.PathValue("id"), func(g *game.Game) error {
		if err := g.SubmitResult(winners); err != nil {
			return err
		}
		snapshot = g.Snapshot()
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, snapshot)
}

func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var snapshot game.Snapshot
	err := s.registry.View(id, func(g *game.Game) error {
		snapshot = g.Snapshot()
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("WebSocket upgrade failed", "error", err)
		return
	}
	if err := s.hub.Watch(conn, id, snapshot); err != nil {
		s.logger.Error("Failed to start watcher", "game_id", id, "error", err)
		_ = conn.Close()
	}
}

// decode reads a JSON body into v and runs struct validation when v is a
// struct pointer.
func (s *Server) decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	switch v.(type) {
	case *createGameRequest, *actionRequest, *resultRequest:
		return s.validate.Struct(v)
	}
	return nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("Request failed", "code", code, "error", err)
	} else {
		s.logger.Debug("Request rejected", "code", code, "error", err)
	}
	s.metrics.requestFailed(code)
	s.writeJSON(w, status, errorResponse{Code: code, Message: err.Error()})
}

// classify maps an error to its HTTP status and wire code.
func classify(err error) (int, string) {
	var invalid validator.ValidationErrors
	switch {
	case errors.Is(err, errBadRequest), errors.As(err, &invalid):
		return http.StatusBadRequest, "invalid_request"
	case errors.Is(err, game.ErrInvalidAmount):
		return http.StatusBadRequest, "invalid_amount"
	case errors.Is(err, game.ErrInsufficientFunds):
		return http.StatusBadRequest, "insufficient_funds"
	case errors.Is(err, ErrGameNotFound), errors.Is(err, game.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, game.ErrIllegalAction):
		return http.StatusConflict, "illegal_action"
	case errors.Is(err, game.ErrInvariantViolation):
		return http.StatusInternalServerError, "invariant_violation"
	}
	return http.StatusInternalServerError, "internal"
}
