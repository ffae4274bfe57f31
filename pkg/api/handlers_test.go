package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/yourusername/fuzzygammon/pkg/game"
)

func newTestHandlers() *Handlers {
	return NewHandlers("test-version", 2, NewWorkerPool(PoolConfig{MaxFastWorkers: 4, MaxSlowWorkers: 2}))
}

// createGame spins up a seeded session through the public handler and
// returns its id.
func createGame(t *testing.T, h *Handlers, seed int64) string {
	t.Helper()
	body, _ := json.Marshal(NewGameRequest{Seed: seed})
	req := httptest.NewRequest("POST", "/api/game", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	h.NewGame(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("NewGame status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}
	var state GameStateResponse
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if state.ID == "" {
		t.Fatal("NewGame returned empty game id")
	}
	return state.ID
}

func gameRequest(method, path, id string, body []byte) *http.Request {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.SetPathValue("id", id)
	return req
}

// TestHealthHandler tests the health endpoint.
func TestHealthHandler(t *testing.T) {
	h := newTestHandlers()

	req := httptest.NewRequest("GET", "/api/health", nil)
	w := httptest.NewRecorder()

	h.Health(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Health status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var health HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatalf("Decode error: %v", err)
	}

	if health.Status != "ok" {
		t.Errorf("Status = %q, want %q", health.Status, "ok")
	}
	if health.Version != "test-version" {
		t.Errorf("Version = %q, want %q", health.Version, "test-version")
	}
	if health.Sessions != 0 {
		t.Errorf("Sessions = %d, want 0", health.Sessions)
	}
}

func TestHealthCountsSessions(t *testing.T) {
	h := newTestHandlers()
	createGame(t, h, 1)
	createGame(t, h, 2)

	req := httptest.NewRequest("GET", "/api/health", nil)
	w := httptest.NewRecorder()
	h.Health(w, req)

	var health HealthResponse
	json.NewDecoder(w.Result().Body).Decode(&health)
	if health.Sessions != 2 {
		t.Errorf("Sessions = %d, want 2", health.Sessions)
	}
}

func TestNewGameHandler(t *testing.T) {
	h := newTestHandlers()

	tests := []struct {
		name       string
		body       interface{}
		wantStatus int
	}{
		{
			name:       "defaults",
			body:       NewGameRequest{},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "seeded strict",
			body:       NewGameRequest{Seed: 42, Strict: true},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "invalid json",
			body:       "not json",
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var body []byte
			if s, ok := tc.body.(string); ok {
				body = []byte(s)
			} else {
				body, _ = json.Marshal(tc.body)
			}
			req := httptest.NewRequest("POST", "/api/game", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			h.NewGame(w, req)

			resp := w.Result()
			if resp.StatusCode != tc.wantStatus {
				t.Errorf("Status = %d, want %d", resp.StatusCode, tc.wantStatus)
			}

			if tc.wantStatus == http.StatusCreated {
				var state GameStateResponse
				if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
					t.Fatalf("Decode error: %v", err)
				}
				if state.Turn != "white" {
					t.Errorf("Turn = %q, want %q", state.Turn, "white")
				}
				if len(state.Dice) != 0 {
					t.Errorf("Dice = %v, want none before rolling", state.Dice)
				}
				if len(state.Pockets) != 28 {
					t.Errorf("Pockets = %d entries, want 28", len(state.Pockets))
				}
			}
		})
	}
}

func TestStateResponseTurnStrings(t *testing.T) {
	e := game.New(game.Options{Seed: 1})
	if got := stateResponse("x", e).Turn; got != "white" {
		t.Errorf("Turn = %q at game start, want %q", got, "white")
	}
	e.EndTurn()
	if got := stateResponse("x", e).Turn; got != "black" {
		t.Errorf("Turn = %q after end of turn, want %q", got, "black")
	}
}

func TestGetGameHandler(t *testing.T) {
	h := newTestHandlers()
	id := createGame(t, h, 7)

	w := httptest.NewRecorder()
	h.GetGame(w, gameRequest("GET", "/api/game/"+id, id, nil))

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GetGame status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	var state GameStateResponse
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if state.ID != id {
		t.Errorf("ID = %q, want %q", state.ID, id)
	}

	// Unknown id
	w = httptest.NewRecorder()
	h.GetGame(w, gameRequest("GET", "/api/game/nope", "nope", nil))
	if w.Result().StatusCode != http.StatusNotFound {
		t.Errorf("Unknown id status = %d, want %d", w.Result().StatusCode, http.StatusNotFound)
	}
}

func TestRollHandler(t *testing.T) {
	h := newTestHandlers()
	id := createGame(t, h, 99)

	w := httptest.NewRecorder()
	h.Roll(w, gameRequest("POST", "/api/game/"+id+"/roll", id, nil))

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Roll status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	var roll RollResponse
	if err := json.NewDecoder(resp.Body).Decode(&roll); err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if len(roll.Dice) != 2 && len(roll.Dice) != 4 {
		t.Fatalf("Dice = %v, want 2 or 4 dice", roll.Dice)
	}
	for _, d := range roll.Dice {
		if d < 1 || d > 6 {
			t.Errorf("Die = %d, want 1-6", d)
		}
	}
}

func TestTargetsHandler(t *testing.T) {
	h := newTestHandlers()
	id := createGame(t, h, 5)

	w := httptest.NewRecorder()
	h.Roll(w, gameRequest("POST", "/api/game/"+id+"/roll", id, nil))

	tests := []struct {
		name       string
		query      string
		wantStatus int
	}{
		{"white back checkers", "?start=24", http.StatusOK},
		{"missing start", "", http.StatusBadRequest},
		{"non-numeric start", "?start=abc", http.StatusBadRequest},
		{"out of range start", "?start=99", http.StatusBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.Targets(w, gameRequest("GET", "/api/game/"+id+"/targets"+tc.query, id, nil))

			resp := w.Result()
			if resp.StatusCode != tc.wantStatus {
				t.Errorf("Status = %d, want %d", resp.StatusCode, tc.wantStatus)
			}
			if tc.wantStatus == http.StatusOK {
				var targets TargetsResponse
				if err := json.NewDecoder(resp.Body).Decode(&targets); err != nil {
					t.Fatalf("Decode error: %v", err)
				}
				if targets.Start != 24 {
					t.Errorf("Start = %d, want 24", targets.Start)
				}
			}
		})
	}
}

func TestRoutesHandler(t *testing.T) {
	h := newTestHandlers()
	id := createGame(t, h, 12)

	w := httptest.NewRecorder()
	h.Roll(w, gameRequest("POST", "/api/game/"+id+"/roll", id, nil))

	w = httptest.NewRecorder()
	h.Routes(w, gameRequest("GET", "/api/game/"+id+"/routes", id, nil))

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Routes status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	var routes RoutesResponse
	if err := json.NewDecoder(resp.Body).Decode(&routes); err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if len(routes.Routes) == 0 {
		t.Fatal("Expected at least one route from the opening position")
	}
}

func TestMoveHandlerFullTurn(t *testing.T) {
	h := newTestHandlers()
	id := createGame(t, h, 3)

	w := httptest.NewRecorder()
	h.Roll(w, gameRequest("POST", "/api/game/"+id+"/roll", id, nil))

	w = httptest.NewRecorder()
	h.Routes(w, gameRequest("GET", "/api/game/"+id+"/routes", id, nil))
	var routes RoutesResponse
	if err := json.NewDecoder(w.Result().Body).Decode(&routes); err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if len(routes.Routes) == 0 {
		t.Fatal("No legal routes to play")
	}

	body, _ := json.Marshal(MoveRequest{Route: routes.Routes[0]})
	w = httptest.NewRecorder()
	h.Move(w, gameRequest("POST", "/api/game/"+id+"/move", id, body))

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Move status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	var state GameStateResponse
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if len(state.Dice) != 0 {
		t.Errorf("Dice after full route = %v, want none", state.Dice)
	}

	// Hand the turn over.
	w = httptest.NewRecorder()
	h.EndTurn(w, gameRequest("POST", "/api/game/"+id+"/end-turn", id, nil))
	if err := json.NewDecoder(w.Result().Body).Decode(&state); err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if state.Turn != "black" {
		t.Errorf("Turn = %q after end-turn, want %q", state.Turn, "black")
	}
}

func TestMoveHandlerRejectsIllegalRoute(t *testing.T) {
	h := newTestHandlers()
	id := createGame(t, h, 3)

	w := httptest.NewRecorder()
	h.Roll(w, gameRequest("POST", "/api/game/"+id+"/roll", id, nil))

	// A route that no roll permits from the opening position.
	body, _ := json.Marshal(MoveRequest{Route: []MoveDTO{{Start: 1, End: 2, Die: 1}}})
	w = httptest.NewRecorder()
	h.Move(w, gameRequest("POST", "/api/game/"+id+"/move", id, body))

	if w.Result().StatusCode != http.StatusBadRequest {
		t.Errorf("Status = %d, want %d", w.Result().StatusCode, http.StatusBadRequest)
	}
}

func TestAIMoveHandler(t *testing.T) {
	tests := []struct {
		name string
		ai   string
	}{
		{"default minimax", ""},
		{"minimax", "minimax"},
		{"fuzzy", "fuzzy"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := newTestHandlers()
			id := createGame(t, h, 21)

			w := httptest.NewRecorder()
			h.Roll(w, gameRequest("POST", "/api/game/"+id+"/roll", id, nil))

			body, _ := json.Marshal(AIMoveRequest{AI: tc.ai, Depth: 1, Seed: 99})
			w = httptest.NewRecorder()
			h.AIMove(w, gameRequest("POST", "/api/game/"+id+"/ai-move", id, body))

			resp := w.Result()
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("AIMove status = %d, want %d", resp.StatusCode, http.StatusOK)
			}
			var aiResp AIMoveResponse
			if err := json.NewDecoder(resp.Body).Decode(&aiResp); err != nil {
				t.Fatalf("Decode error: %v", err)
			}
			if len(aiResp.Route) == 0 {
				t.Error("Expected the AI to play at least one checker from the opening")
			}
			if len(aiResp.State.Dice) != 0 {
				t.Errorf("Dice after AI move = %v, want none", aiResp.State.Dice)
			}
		})
	}
}

func TestAIMoveHandlerErrors(t *testing.T) {
	h := newTestHandlers()
	id := createGame(t, h, 21)

	// No dice rolled yet.
	body, _ := json.Marshal(AIMoveRequest{AI: "minimax"})
	w := httptest.NewRecorder()
	h.AIMove(w, gameRequest("POST", "/api/game/"+id+"/ai-move", id, body))
	if w.Result().StatusCode != http.StatusConflict {
		t.Errorf("No-dice status = %d, want %d", w.Result().StatusCode, http.StatusConflict)
	}

	// Unknown AI name.
	w = httptest.NewRecorder()
	h.Roll(w, gameRequest("POST", "/api/game/"+id+"/roll", id, nil))
	body, _ = json.Marshal(AIMoveRequest{AI: "psychic"})
	w = httptest.NewRecorder()
	h.AIMove(w, gameRequest("POST", "/api/game/"+id+"/ai-move", id, body))
	if w.Result().StatusCode != http.StatusBadRequest {
		t.Errorf("Unknown-ai status = %d, want %d", w.Result().StatusCode, http.StatusBadRequest)
	}
}

func TestSelfPlaySSE(t *testing.T) {
	h := newTestHandlers()

	req := httptest.NewRequest("GET", "/api/selfplay/stream?games=2&seed=9&white=first&black=first", nil)
	w := httptest.NewRecorder()

	h.SelfPlaySSE(w, req)

	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q, want %q", ct, "text/event-stream")
	}
	body := w.Body.String()
	if !strings.Contains(body, "event: progress") {
		t.Error("Expected at least one progress event in the stream")
	}
	if !strings.Contains(body, "event: result") {
		t.Error("Expected a result event in the stream")
	}
	if !strings.Contains(body, "event: done") {
		t.Error("Expected a done event closing the stream")
	}
}

func TestSelfPlaySSEUnknownPlayer(t *testing.T) {
	h := newTestHandlers()

	req := httptest.NewRequest("GET", "/api/selfplay/stream?white=psychic", nil)
	w := httptest.NewRecorder()

	h.SelfPlaySSE(w, req)

	if !strings.Contains(w.Body.String(), "event: error") {
		t.Error("Expected an error event for an unknown player name")
	}
}

// ============================================================================
// WebSocket Tests
// ============================================================================

func dialWS(t *testing.T, h *Handlers) *websocket.Conn {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(h.WebSocket))
	t.Cleanup(server.Close)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	ws, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("WebSocket dial failed: %v", err)
	}
	t.Cleanup(func() { ws.Close() })
	return ws
}

func wsRoundTrip(t *testing.T, ws *websocket.Conn, msg WSMessage) WSResponse {
	t.Helper()
	if err := ws.WriteJSON(msg); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	var resp WSResponse
	if err := ws.ReadJSON(&resp); err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if resp.ID != msg.ID {
		t.Fatalf("Response ID = %q, want %q", resp.ID, msg.ID)
	}
	return resp
}

func TestWebSocketPing(t *testing.T) {
	ws := dialWS(t, newTestHandlers())

	resp := wsRoundTrip(t, ws, WSMessage{Type: "ping", ID: "test-ping-1"})
	if resp.Type != "pong" {
		t.Errorf("Response type = %q, want %q", resp.Type, "pong")
	}
}

func TestWebSocketPlaysATurn(t *testing.T) {
	ws := dialWS(t, newTestHandlers())

	// New game
	payload, _ := json.Marshal(NewGameRequest{Seed: 17})
	resp := wsRoundTrip(t, ws, WSMessage{Type: "new", ID: "new-1", Payload: payload})
	if resp.Type != "result" {
		t.Fatalf("new response type = %q, want result (error: %s)", resp.Type, resp.Error)
	}
	raw, _ := json.Marshal(resp.Payload)
	var state GameStateResponse
	if err := json.Unmarshal(raw, &state); err != nil {
		t.Fatalf("Unmarshal state: %v", err)
	}
	id := state.ID

	// Roll
	payload, _ = json.Marshal(wsGameRef{Game: id})
	resp = wsRoundTrip(t, ws, WSMessage{Type: "roll", ID: "roll-1", Payload: payload})
	if resp.Type != "result" {
		t.Fatalf("roll response type = %q (error: %s)", resp.Type, resp.Error)
	}

	// Routes
	resp = wsRoundTrip(t, ws, WSMessage{Type: "routes", ID: "routes-1", Payload: payload})
	if resp.Type != "result" {
		t.Fatalf("routes response type = %q (error: %s)", resp.Type, resp.Error)
	}
	raw, _ = json.Marshal(resp.Payload)
	var routes RoutesResponse
	if err := json.Unmarshal(raw, &routes); err != nil {
		t.Fatalf("Unmarshal routes: %v", err)
	}
	if len(routes.Routes) == 0 {
		t.Fatal("Expected legal routes from the opening position")
	}

	// Move
	payload, _ = json.Marshal(wsMoveRequest{Game: id, Route: routes.Routes[0]})
	resp = wsRoundTrip(t, ws, WSMessage{Type: "move", ID: "move-1", Payload: payload})
	if resp.Type != "result" {
		t.Fatalf("move response type = %q (error: %s)", resp.Type, resp.Error)
	}

	// End turn
	payload, _ = json.Marshal(wsGameRef{Game: id})
	resp = wsRoundTrip(t, ws, WSMessage{Type: "end_turn", ID: "end-1", Payload: payload})
	raw, _ = json.Marshal(resp.Payload)
	if err := json.Unmarshal(raw, &state); err != nil {
		t.Fatalf("Unmarshal state: %v", err)
	}
	if state.Turn != "black" {
		t.Errorf("Turn = %q after end_turn, want %q", state.Turn, "black")
	}
}

func TestWebSocketAIMove(t *testing.T) {
	h := newTestHandlers()
	ws := dialWS(t, h)
	id := createGame(t, h, 31)

	payload, _ := json.Marshal(wsGameRef{Game: id})
	resp := wsRoundTrip(t, ws, WSMessage{Type: "roll", ID: "roll-1", Payload: payload})
	if resp.Type != "result" {
		t.Fatalf("roll response type = %q (error: %s)", resp.Type, resp.Error)
	}

	payload, _ = json.Marshal(wsAIMoveRequest{Game: id, AI: "fuzzy"})
	resp = wsRoundTrip(t, ws, WSMessage{Type: "ai_move", ID: "ai-1", Payload: payload})
	if resp.Type != "result" {
		t.Fatalf("ai_move response type = %q (error: %s)", resp.Type, resp.Error)
	}
}

func TestWebSocketErrors(t *testing.T) {
	ws := dialWS(t, newTestHandlers())

	tests := []struct {
		name    string
		msgType string
		payload interface{}
		wantErr string
	}{
		{"unknown type", "mystery", nil, "unknown message type"},
		{"unknown game", "roll", wsGameRef{Game: "nope"}, "unknown game"},
		{"missing game", "state", wsGameRef{}, "invalid payload"},
	}

	for i, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var payload json.RawMessage
			if tc.payload != nil {
				payload, _ = json.Marshal(tc.payload)
			}
			resp := wsRoundTrip(t, ws, WSMessage{Type: tc.msgType, ID: fmt.Sprintf("err-%d", i), Payload: payload})
			if resp.Type != "error" {
				t.Errorf("Response type = %q, want %q", resp.Type, "error")
			}
			if !strings.Contains(resp.Error, tc.wantErr) {
				t.Errorf("Error = %q, want containing %q", resp.Error, tc.wantErr)
			}
		})
	}
}
