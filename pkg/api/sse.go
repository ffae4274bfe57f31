package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/yourusername/fuzzygammon/pkg/ai"
	"github.com/yourusername/fuzzygammon/pkg/board"
	"github.com/yourusername/fuzzygammon/pkg/game"
)

// SSESelfPlayProgress is the per-game progress event payload.
type SSESelfPlayProgress struct {
	GamesCompleted int     `json:"games_completed"`
	GamesTotal     int     `json:"games_total"`
	Percent        float64 `json:"percent"`
	WhiteWins      int     `json:"white_wins"`
	BlackWins      int     `json:"black_wins"`
}

// SSESelfPlayResult is the final result event payload.
type SSESelfPlayResult struct {
	Games      int     `json:"games"`
	WhiteWins  int     `json:"white_wins"`
	BlackWins  int     `json:"black_wins"`
	Unfinished int     `json:"unfinished"`
	AvgTurns   float64 `json:"avg_turns"`
}

// SelfPlaySSE handles Server-Sent Events for streaming self-play progress.
// GET /api/selfplay/stream?games=...&white=...&black=...&depth=...&seed=...
func (h *Handlers) SelfPlaySSE(w http.ResponseWriter, r *http.Request) {
	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeSSEError(w, "streaming not supported")
		return
	}

	query := r.URL.Query()
	depth := parseIntParam(query.Get("depth"), h.depth)

	white, err := selfPlayFactory(query.Get("white"), depth)
	if err != nil {
		writeSSEError(w, err.Error())
		return
	}
	black, err := selfPlayFactory(query.Get("black"), depth)
	if err != nil {
		writeSSEError(w, err.Error())
		return
	}

	opts := game.SelfPlayOptions{
		Games:    parseIntParam(query.Get("games"), 100),
		Seed:     int64(parseIntParam(query.Get("seed"), 0)),
		Workers:  parseIntParam(query.Get("workers"), 0),
		MaxTurns: parseIntParam(query.Get("max_turns"), 0),
	}

	if h.pool != nil {
		if err := h.pool.AcquireSlow(r.Context()); err != nil {
			writeSSEError(w, "server busy")
			return
		}
		defer h.pool.ReleaseSlow()
	}

	callback := func(p game.SelfPlayProgress) {
		writeSSEEvent(w, "progress", SSESelfPlayProgress{
			GamesCompleted: p.GamesCompleted,
			GamesTotal:     p.GamesTotal,
			Percent:        p.Percent,
			WhiteWins:      p.WhiteWins,
			BlackWins:      p.BlackWins,
		})
		flusher.Flush()
	}

	result := game.SelfPlayWithProgress(white, black, opts, callback)

	// Send final result
	writeSSEEvent(w, "result", SSESelfPlayResult{
		Games:      result.Games,
		WhiteWins:  result.WhiteWins,
		BlackWins:  result.BlackWins,
		Unfinished: result.Unfinished,
		AvgTurns:   result.AvgTurns,
	})
	flusher.Flush()

	// Send done event to signal completion
	writeSSEEvent(w, "done", nil)
	flusher.Flush()
}

// selfPlayFactory maps a player name to a seeded picker factory. An empty
// name plays the fuzzy opponent.
func selfPlayFactory(name string, depth int) (game.PlayerFactory, error) {
	switch name {
	case "", "fuzzy":
		return func(seed int64) game.PickFunc {
			picker := ai.NewFuzzyAI(ai.DefaultFuzzyConfig())
			return func(e *game.Engine) *board.TurnRoute {
				route, _, _ := picker.PickBestRoute(e)
				return route
			}
		}, nil
	case "minimax":
		return func(seed int64) game.PickFunc {
			picker := ai.NewMinimaxAI(depth, ai.DefaultWeights(), seed)
			return func(e *game.Engine) *board.TurnRoute {
				route, _, _ := picker.PickBestRoute(e)
				return route
			}
		}, nil
	case "first":
		return func(seed int64) game.PickFunc { return game.FirstRoute }, nil
	default:
		return nil, fmt.Errorf("unknown player %q (want minimax, fuzzy, or first)", name)
	}
}

// writeSSEEvent writes a Server-Sent Event to the response.
func writeSSEEvent(w http.ResponseWriter, event string, data interface{}) {
	fmt.Fprintf(w, "event: %s\n", event)
	if data != nil {
		jsonData, _ := json.Marshal(data)
		fmt.Fprintf(w, "data: %s\n", jsonData)
	}
	fmt.Fprintf(w, "\n")
}

// writeSSEError writes an error event and closes the stream.
func writeSSEError(w http.ResponseWriter, message string) {
	writeSSEEvent(w, "error", map[string]string{"error": message})
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
}

// parseIntParam parses an integer from a string with a default value.
func parseIntParam(s string, defaultVal int) int {
	if s == "" {
		return defaultVal
	}
	var val int
	if _, err := fmt.Sscanf(s, "%d", &val); err != nil {
		return defaultVal
	}
	return val
}
