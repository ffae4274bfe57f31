package ai

import (
	"math"
	"math/rand"

	"github.com/yourusername/fuzzygammon/pkg/board"
	"github.com/yourusername/fuzzygammon/pkg/game"
)

// EvalFunc scores a board for the given side to move.
type EvalFunc func(board.Board, board.Player) float64

// SearchReport carries search statistics alongside the chosen line.
type SearchReport struct {
	Nodes     int               // Positions entered by the search
	LeafEvals int               // Static evaluations performed
	BestLine  []board.TurnRoute // Principal variation from the root
}

// MinimaxAI picks routes with a depth-limited alpha-beta search. Depth is
// counted in full turns per side: depth 2 means my turn plus the
// opponent's reply. The opponent's dice are sampled once per branch rather
// than averaged over the 21-roll distribution; that single-sample shortcut
// is part of the opponent's documented behavior, as is the 50% coin flip
// that breaks ties between equally scored root routes. Both draw from the
// injected RNG so games can be replayed from a seed.
type MinimaxAI struct {
	Depth   int
	Weights EvalWeights
	rng     *rand.Rand
}

// NewMinimaxAI creates a minimax opponent with the given search depth,
// evaluator weights and RNG seed (0 = random).
func NewMinimaxAI(depth int, w EvalWeights, seed int64) *MinimaxAI {
	if seed == 0 {
		seed = rand.Int63()
	}
	return &MinimaxAI{
		Depth:   depth,
		Weights: w,
		rng:     rand.New(rand.NewSource(seed)),
	}
}

// PickBestRoute searches from the engine's current state (dice must be
// active) and returns the chosen route, its score and the search report.
// The route is nil when no move is playable.
func (a *MinimaxAI) PickBestRoute(e *game.Engine) (*board.TurnRoute, float64, *SearchReport) {
	rep := &SearchReport{}
	score, line := a.search(e, a.Depth, math.Inf(-1), math.Inf(1), rep)
	rep.BestLine = line
	if len(line) == 0 {
		return nil, score, rep
	}
	route := line[0]
	return &route, score, rep
}

// search is the negamax recursion. It maximizes for the side to move at e;
// each candidate route is answered by one sampled opponent roll, whose
// replies are minimized over with the alpha-beta window, recursing two
// half-plies deeper per my-turn/reply pair.
func (a *MinimaxAI) search(e *game.Engine, depth int, alpha, beta float64, rep *SearchReport) (float64, []board.TurnRoute) {
	rep.Nodes++

	routes := e.GenerateRoutes()
	if depth == 0 || len(routes) == 0 {
		rep.LeafEvals++
		return Evaluate(e.Board(), e.Turn(), a.Weights), nil
	}

	bestScore := math.Inf(-1)
	var bestLine []board.TurnRoute

	for _, r := range routes {
		afterMy := e.Clone()
		afterMy.ApplyRoute(r)
		afterMy.EndTurn()

		afterRoll := afterMy.Clone()
		afterRoll.RollFrom(a.rng)
		oppRoutes := afterRoll.GenerateRoutes()

		var score float64
		var line []board.TurnRoute

		if len(oppRoutes) == 0 || depth-1 == 0 {
			rep.LeafEvals++
			score = Evaluate(afterRoll.Board(), afterRoll.Turn(), a.Weights)
			line = []board.TurnRoute{r}
		} else {
			worstForMe := math.Inf(1)
			var worstLine []board.TurnRoute

			for _, oppRoute := range oppRoutes {
				afterOpp := afterRoll.Clone()
				afterOpp.ApplyRoute(oppRoute)
				afterOpp.EndTurn()
				if depth-2 > 0 {
					afterOpp.RollFrom(a.rng)
				}

				sc, subline := a.search(afterOpp, depth-2, -beta, -alpha, rep)
				sc = -sc

				if sc < worstForMe {
					worstForMe = sc
					worstLine = append([]board.TurnRoute{r, oppRoute}, subline...)
				}
				if -worstForMe < beta {
					beta = -worstForMe
				}
				if alpha >= beta {
					break
				}
			}
			score = worstForMe
			line = worstLine
		}

		if score > bestScore || (nearlyEqual(score, bestScore) && a.rng.Float64() < 0.5) {
			bestScore = score
			bestLine = line
		}

		if bestScore > alpha {
			alpha = bestScore
		}
		if alpha >= beta {
			break
		}
	}

	return bestScore, bestLine
}

// nearlyEqual is a relative float comparison for tie detection.
func nearlyEqual(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9*math.Max(math.Abs(a), math.Abs(b))
}
