// Package api provides the HTTP/JSON and WebSocket API for playing games
// against the engine's AI opponents.
package api

import (
	"github.com/yourusername/fuzzygammon/pkg/board"
)

// ============================================================================
// Request Types
// ============================================================================

// NewGameRequest is the request body for creating a game session.
type NewGameRequest struct {
	Seed   int64 `json:"seed,omitempty"`   // Dice seed (0 = random)
	Strict bool  `json:"strict,omitempty"` // Reject routes with stale dice
}

// MoveRequest is the request body for applying a route.
type MoveRequest struct {
	Route []MoveDTO `json:"route"`
}

// AIMoveRequest is the request body for letting an AI play the turn.
type AIMoveRequest struct {
	AI    string `json:"ai"`              // "minimax" or "fuzzy"
	Depth int    `json:"depth,omitempty"` // Search depth (minimax only, default 2)
	Seed  int64  `json:"seed,omitempty"`  // Search RNG seed (0 = random)
}

// ============================================================================
// Response Types
// ============================================================================

// ErrorResponse is the standard error body.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// HealthResponse is the health check body.
type HealthResponse struct {
	Status   string     `json:"status"`
	Version  string     `json:"version"`
	Sessions int        `json:"sessions"`
	Pool     *PoolStats `json:"pool,omitempty"`
}

// PocketDTO is one of the 28 board pockets.
type PocketDTO struct {
	Owner    string `json:"owner"` // "white", "black" or "none"
	Checkers int    `json:"checkers"`
}

// MoveDTO is a single checker move on the wire.
type MoveDTO struct {
	Start int `json:"start"`
	End   int `json:"end"`
	Die   int `json:"die"`
}

// DieTargetDTO is a legal (die, destination) pair.
type DieTargetDTO struct {
	Die int `json:"die"`
	End int `json:"end"`
}

// GameStateResponse is the full renderable game state.
type GameStateResponse struct {
	ID      string        `json:"id"`
	Turn    string        `json:"turn"`
	Dice    []int         `json:"dice"`
	Pockets [28]PocketDTO `json:"pockets"`
	Winner  string        `json:"winner,omitempty"`
}

// RollResponse reports the dice drawn for the turn.
type RollResponse struct {
	Dice []int `json:"dice"`
}

// TargetsResponse lists the legal single-die targets from one origin.
type TargetsResponse struct {
	Start   int            `json:"start"`
	Targets []DieTargetDTO `json:"targets"`
}

// RoutesResponse lists every legal full turn.
type RoutesResponse struct {
	Routes [][]MoveDTO `json:"routes"`
}

// AIMoveResponse reports the route an AI chose and its bookkeeping.
type AIMoveResponse struct {
	Route     []MoveDTO         `json:"route"`
	Score     float64           `json:"score"`
	Nodes     int               `json:"nodes,omitempty"`      // minimax only
	LeafEvals int               `json:"leaf_evals,omitempty"` // minimax only
	Scored    int               `json:"scored,omitempty"`     // fuzzy only
	State     GameStateResponse `json:"state"`
}

// ============================================================================
// Conversions
// ============================================================================

func movesToDTO(r board.TurnRoute) []MoveDTO {
	out := make([]MoveDTO, len(r))
	for i, m := range r {
		out[i] = MoveDTO{Start: m.Start, End: m.End, Die: m.Die}
	}
	return out
}

func movesFromDTO(dto []MoveDTO) board.TurnRoute {
	r := make(board.TurnRoute, len(dto))
	for i, m := range dto {
		r[i] = board.Move{Start: m.Start, End: m.End, Die: m.Die}
	}
	return r
}

func pocketsToDTO(b board.Board) [28]PocketDTO {
	var out [28]PocketDTO
	for i := range b {
		out[i] = PocketDTO{Owner: b[i].Owner.String(), Checkers: b[i].Checkers}
	}
	return out
}
