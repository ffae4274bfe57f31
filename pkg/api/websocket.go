package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/yourusername/fuzzygammon/pkg/ai"
	"github.com/yourusername/fuzzygammon/pkg/board"
	"github.com/yourusername/fuzzygammon/pkg/game"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins - configure properly in production
	},
}

// WSMessage is a generic WebSocket message.
type WSMessage struct {
	Type    string          `json:"type"`    // "new", "state", "roll", "targets", "routes", "move", "end_turn", "ai_move", "ping"
	ID      string          `json:"id"`      // Request ID for correlating responses
	Payload json.RawMessage `json:"payload"` // Type-specific payload
}

// WSResponse is a generic WebSocket response.
type WSResponse struct {
	Type    string      `json:"type"`              // "result", "error", "pong"
	ID      string      `json:"id,omitempty"`      // Request ID
	Payload interface{} `json:"payload,omitempty"` // Response data
	Error   string      `json:"error,omitempty"`   // Error message if any
}

// wsGameRef addresses an existing session in a payload.
type wsGameRef struct {
	Game string `json:"game"`
}

// wsTargetsRequest asks for legal targets from one origin.
type wsTargetsRequest struct {
	Game  string `json:"game"`
	Start int    `json:"start"`
}

// wsMoveRequest applies a route to a session.
type wsMoveRequest struct {
	Game  string    `json:"game"`
	Route []MoveDTO `json:"route"`
}

// wsAIMoveRequest lets an AI play the session's active dice.
type wsAIMoveRequest struct {
	Game  string `json:"game"`
	AI    string `json:"ai"`
	Depth int    `json:"depth,omitempty"`
	Seed  int64  `json:"seed,omitempty"`
}

// WSClient represents a connected WebSocket client.
type WSClient struct {
	conn     *websocket.Conn
	handlers *Handlers
	sendChan chan WSResponse
}

// WebSocket handles WebSocket connections for real-time play.
func (h *Handlers) WebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}
	client := &WSClient{conn: conn, handlers: h, sendChan: make(chan WSResponse, 256)}
	go client.writePump()
	client.readPump()
}

func (c *WSClient) writePump() {
	defer c.conn.Close()
	for msg := range c.sendChan {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

func (c *WSClient) readPump() {
	defer func() { close(c.sendChan); c.conn.Close() }()
	for {
		var msg WSMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}
		c.handleMessage(msg)
	}
}

func (c *WSClient) handleMessage(msg WSMessage) {
	switch msg.Type {
	case "ping":
		c.sendChan <- WSResponse{Type: "pong", ID: msg.ID}
	case "new":
		c.handleNew(msg)
	case "state":
		c.handleState(msg)
	case "roll":
		c.handleRoll(msg)
	case "targets":
		c.handleTargets(msg)
	case "routes":
		c.handleRoutes(msg)
	case "move":
		c.handleMove(msg)
	case "end_turn":
		c.handleEndTurn(msg)
	case "ai_move":
		c.handleAIMove(msg)
	default:
		c.sendChan <- WSResponse{Type: "error", ID: msg.ID, Error: "unknown message type"}
	}
}

func (c *WSClient) fail(msg WSMessage, why string) {
	c.sendChan <- WSResponse{Type: "error", ID: msg.ID, Error: why}
}

// lookup resolves a session id inside a locked handler table.
func (c *WSClient) lookup(msg WSMessage, id string) (*game.Engine, bool) {
	e, ok := c.handlers.session(id)
	if !ok {
		c.fail(msg, "unknown game")
	}
	return e, ok
}

func (c *WSClient) gameRef(msg WSMessage) (wsGameRef, bool) {
	var ref wsGameRef
	if err := json.Unmarshal(msg.Payload, &ref); err != nil || ref.Game == "" {
		c.fail(msg, "invalid payload")
		return ref, false
	}
	return ref, true
}

func (c *WSClient) handleNew(msg WSMessage) {
	var req NewGameRequest
	if len(msg.Payload) > 0 {
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			c.fail(msg, "invalid payload")
			return
		}
	}

	strictness := game.DiceLenient
	if req.Strict {
		strictness = game.DiceStrict
	}
	e := game.New(game.Options{Seed: req.Seed, Strictness: strictness})

	h := c.handlers
	id := newSessionID()
	h.mu.Lock()
	h.sessions[id] = e
	resp := stateResponse(id, e)
	h.mu.Unlock()

	c.sendChan <- WSResponse{Type: "result", ID: msg.ID, Payload: resp}
}

func (c *WSClient) handleState(msg WSMessage) {
	ref, ok := c.gameRef(msg)
	if !ok {
		return
	}
	e, ok := c.lookup(msg, ref.Game)
	if !ok {
		return
	}

	h := c.handlers
	h.mu.Lock()
	resp := stateResponse(ref.Game, e)
	h.mu.Unlock()
	c.sendChan <- WSResponse{Type: "result", ID: msg.ID, Payload: resp}
}

func (c *WSClient) handleRoll(msg WSMessage) {
	ref, ok := c.gameRef(msg)
	if !ok {
		return
	}
	e, ok := c.lookup(msg, ref.Game)
	if !ok {
		return
	}

	h := c.handlers
	h.mu.Lock()
	dice := e.Roll()
	h.mu.Unlock()
	c.sendChan <- WSResponse{Type: "result", ID: msg.ID, Payload: RollResponse{Dice: dice}}
}

func (c *WSClient) handleTargets(msg WSMessage) {
	var req wsTargetsRequest
	if err := json.Unmarshal(msg.Payload, &req); err != nil || req.Game == "" {
		c.fail(msg, "invalid payload")
		return
	}
	if req.Start < 0 || req.Start >= board.NumPockets {
		c.fail(msg, "invalid start pocket")
		return
	}
	e, ok := c.lookup(msg, req.Game)
	if !ok {
		return
	}

	h := c.handlers
	h.mu.Lock()
	targets := e.LegalTargetsFrom(req.Start)
	h.mu.Unlock()

	resp := TargetsResponse{Start: req.Start, Targets: make([]DieTargetDTO, len(targets))}
	for i, dt := range targets {
		resp.Targets[i] = DieTargetDTO{Die: dt.Die, End: dt.End}
	}
	c.sendChan <- WSResponse{Type: "result", ID: msg.ID, Payload: resp}
}

func (c *WSClient) handleRoutes(msg WSMessage) {
	ref, ok := c.gameRef(msg)
	if !ok {
		return
	}
	e, ok := c.lookup(msg, ref.Game)
	if !ok {
		return
	}

	h := c.handlers
	h.mu.Lock()
	routes := e.GenerateRoutes()
	h.mu.Unlock()

	resp := RoutesResponse{Routes: make([][]MoveDTO, len(routes))}
	for i, route := range routes {
		resp.Routes[i] = movesToDTO(route)
	}
	c.sendChan <- WSResponse{Type: "result", ID: msg.ID, Payload: resp}
}

func (c *WSClient) handleMove(msg WSMessage) {
	var req wsMoveRequest
	if err := json.Unmarshal(msg.Payload, &req); err != nil || req.Game == "" {
		c.fail(msg, "invalid payload")
		return
	}
	e, ok := c.lookup(msg, req.Game)
	if !ok {
		return
	}
	route := movesFromDTO(req.Route)

	h := c.handlers
	h.mu.Lock()
	legal := routeIsLegal(e, route)
	var applyErr error
	if legal {
		applyErr = e.ApplyRoute(route)
	}
	resp := stateResponse(req.Game, e)
	h.mu.Unlock()

	if !legal {
		c.fail(msg, "route is not legal for the current dice")
		return
	}
	if applyErr != nil {
		c.fail(msg, applyErr.Error())
		return
	}
	c.sendChan <- WSResponse{Type: "result", ID: msg.ID, Payload: resp}
}

func (c *WSClient) handleEndTurn(msg WSMessage) {
	ref, ok := c.gameRef(msg)
	if !ok {
		return
	}
	e, ok := c.lookup(msg, ref.Game)
	if !ok {
		return
	}

	h := c.handlers
	h.mu.Lock()
	e.EndTurn()
	resp := stateResponse(ref.Game, e)
	h.mu.Unlock()
	c.sendChan <- WSResponse{Type: "result", ID: msg.ID, Payload: resp}
}

func (c *WSClient) handleAIMove(msg WSMessage) {
	var req wsAIMoveRequest
	if err := json.Unmarshal(msg.Payload, &req); err != nil || req.Game == "" {
		c.fail(msg, "invalid payload")
		return
	}
	e, ok := c.lookup(msg, req.Game)
	if !ok {
		return
	}

	h := c.handlers
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(e.Dice()) == 0 {
		c.fail(msg, "no dice are active; roll first")
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
		c.fail(msg, "unknown ai: "+req.AI)
		return
	}

	resp.State = stateResponse(req.Game, e)
	c.sendChan <- WSResponse{Type: "result", ID: msg.ID, Payload: resp}
}
