package api

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/yourusername/fuzzygammon/pkg/ai"
	"github.com/yourusername/fuzzygammon/pkg/board"
	"github.com/yourusername/fuzzygammon/pkg/game"
)

// Handlers holds the HTTP handlers and the session table.
type Handlers struct {
	version string
	pool    *WorkerPool
	depth   int // default minimax depth

	mu       sync.Mutex
	sessions map[string]*game.Engine
}

// NewHandlers creates a Handlers instance. depth is the default minimax
// search depth for AI moves; pool may be nil to disable admission control.
func NewHandlers(version string, depth int, pool *WorkerPool) *Handlers {
	if depth <= 0 {
		depth = 2
	}
	return &Handlers{
		version:  version,
		pool:     pool,
		depth:    depth,
		sessions: make(map[string]*game.Engine),
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, msg string, code string) {
	writeJSON(w, status, ErrorResponse{
		Error: msg,
		Code:  code,
	})
}

// newSessionID draws a random 16-hex-char session identifier.
func newSessionID() string {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		panic(fmt.Sprintf("api: session id entropy unavailable: %v", err))
	}
	return hex.EncodeToString(buf[:])
}

// session looks up a game by id.
func (h *Handlers) session(id string) (*game.Engine, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	e, ok := h.sessions[id]
	return e, ok
}

// stateResponse snapshots a session for the wire.
func stateResponse(id string, e *game.Engine) GameStateResponse {
	resp := GameStateResponse{
		ID:      id,
		Turn:    e.Turn().String(),
		Dice:    e.Dice(),
		Pockets: pocketsToDTO(e.Board()),
	}
	for _, p := range []board.Player{board.White, board.Black} {
		if e.HasWon(p) {
			resp.Winner = p.String()
		}
	}
	return resp
}

// Health handles GET /api/health.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	sessions := len(h.sessions)
	h.mu.Unlock()

	resp := HealthResponse{
		Status:   "ok",
		Version:  h.version,
		Sessions: sessions,
	}
	if h.pool != nil {
		stats := h.pool.Stats()
		resp.Pool = &stats
	}
	writeJSON(w, http.StatusOK, resp)
}

// NewGame handles POST /api/game.
func (h *Handlers) NewGame(w http.ResponseWriter, r *http.Request) {
	var req NewGameRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body", "bad_request")
			return
		}
	}

	strictness := game.DiceLenient
	if req.Strict {
		strictness = game.DiceStrict
	}
	e := game.New(game.Options{Seed: req.Seed, Strictness: strictness})

	id := newSessionID()
	h.mu.Lock()
	h.sessions[id] = e
	h.mu.Unlock()

	writeJSON(w, http.StatusCreated, stateResponse(id, e))
}

// GetGame handles GET /api/game/{id}.
func (h *Handlers) GetGame(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	e, ok := h.session(id)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown game", "not_found")
		return
	}

	h.mu.Lock()
	resp := stateResponse(id, e)
	h.mu.Unlock()
	writeJSON(w, http.StatusOK, resp)
}

// Roll handles POST /api/game/{id}/roll.
func (h *Handlers) Roll(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	e, ok := h.session(id)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown game", "not_found")
		return
	}

	h.mu.Lock()
	dice := e.Roll()
	h.mu.Unlock()
	writeJSON(w, http.StatusOK, RollResponse{Dice: dice})
}

// Targets handles GET /api/game/{id}/targets?start=N.
func (h *Handlers) Targets(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	e, ok := h.session(id)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown game", "not_found")
		return
	}

	start, err := strconv.Atoi(r.URL.Query().Get("start"))
	if err != nil || start < 0 || start >= board.NumPockets {
		writeError(w, http.StatusBadRequest, "invalid start pocket", "bad_request")
		return
	}

	h.mu.Lock()
	targets := e.LegalTargetsFrom(start)
	h.mu.Unlock()

	resp := TargetsResponse{Start: start, Targets: make([]DieTargetDTO, len(targets))}
	for i, dt := range targets {
		resp.Targets[i] = DieTargetDTO{Die: dt.Die, End: dt.End}
	}
	writeJSON(w, http.StatusOK, resp)
}

// Routes handles GET /api/game/{id}/routes.
func (h *Handlers) Routes(w http.ResponseWriter, r *http.Request) {
	if h.pool != nil {
		if err := h.pool.AcquireFast(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "server busy", "busy")
			return
		}
		defer h.pool.ReleaseFast()
	}

	id := r.PathValue("id")
	e, ok := h.session(id)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown game", "not_found")
		return
	}

	h.mu.Lock()
	routes := e.GenerateRoutes()
	h.mu.Unlock()

	resp := RoutesResponse{Routes: make([][]MoveDTO, len(routes))}
	for i, route := range routes {
		resp.Routes[i] = movesToDTO(route)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Move handles POST /api/game/{id}/move.
func (h *Handlers) Move(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	e, ok := h.session(id)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown game", "not_found")
		return
	}

	var req MoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "bad_request")
		return
	}
	route := movesFromDTO(req.Route)

	h.mu.Lock()
	legal := routeIsLegal(e, route)
	var applyErr error
	if legal {
		applyErr = e.ApplyRoute(route)
	}
	resp := stateResponse(id, e)
	h.mu.Unlock()

	if !legal {
		writeError(w, http.StatusBadRequest, "route is not legal for the current dice", "illegal_route")
		return
	}
	if applyErr != nil {
		writeError(w, http.StatusBadRequest, applyErr.Error(), "illegal_route")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// routeIsLegal reports whether the route matches one of the generated legal
// turns. The mutation primitives trust their callers, so the boundary
// validates before applying.
func routeIsLegal(e *game.Engine, route board.TurnRoute) bool {
	for _, legal := range e.GenerateRoutes() {
		if len(legal) != len(route) {
			continue
		}
		match := true
		for i := range legal {
			if legal[i] != route[i] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// EndTurn handles POST /api/game/{id}/end-turn.
func (h *Handlers) EndTurn(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	e, ok := h.session(id)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown game", "not_found")
		return
	}

	h.mu.Lock()
	e.EndTurn()
	resp := stateResponse(id, e)
	h.mu.Unlock()
	writeJSON(w, http.StatusOK, resp)
}

// AIMove handles POST /api/game/{id}/ai-move.
func (h *Handlers) AIMove(w http.ResponseWriter, r *http.Request) {
	if h.pool != nil {
		if err := h.pool.AcquireSlow(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "server busy", "busy")
			return
		}
		defer h.pool.ReleaseSlow()
	}

	id := r.PathValue("id")
	e, ok := h.session(id)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown game", "not_found")
		return
	}

	var req AIMoveRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body", "bad_request")
			return
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if len(e.Dice()) == 0 {
		writeError(w, http.StatusConflict, "no dice are active; roll first", "no_dice")
		return
	}

	resp := AIMoveResponse{}
	switch req.AI {
	case "fuzzy":
		picker := ai.NewFuzzyAI(ai.DefaultFuzzyConfig())
		route, score, rep := picker.PickBestRoute(e)
		resp.Score = score
		resp.Scored = len(rep.Scored)
		if route != nil {
			e.ApplyRoute(*route)
			resp.Route = movesToDTO(*route)
		}
	case "minimax", "":
		depth := req.Depth
		if depth <= 0 {
			depth = h.depth
		}
		picker := ai.NewMinimaxAI(depth, ai.DefaultWeights(), req.Seed)
		route, score, rep := picker.PickBestRoute(e)
		resp.Score = score
		resp.Nodes = rep.Nodes
		resp.LeafEvals = rep.LeafEvals
		if route != nil {
			e.ApplyRoute(*route)
			resp.Route = movesToDTO(*route)
		}
	default:
		writeError(w, http.StatusBadRequest, "unknown ai: "+req.AI, "bad_request")
		return
	}

	resp.State = stateResponse(id, e)
	writeJSON(w, http.StatusOK, resp)
}
