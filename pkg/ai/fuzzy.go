package ai

import (
	"gonum.org/v1/gonum/floats"

	"github.com/yourusername/fuzzygammon/pkg/board"
	"github.com/yourusername/fuzzygammon/pkg/game"
)

// rampEpsilon keeps membership ramps finite when breakpoints coincide and
// the defuzzifier safe when no rule activates.
const rampEpsilon = 1e-9

// Tri is the triangular membership function: 0 outside [a, c], peak 1 at b,
// linear ramps between.
func Tri(x, a, b, c float64) float64 {
	if x <= a || x >= c {
		return 0
	}
	if x == b {
		return 1
	}
	if x < b {
		return (x - a) / (b - a + rampEpsilon)
	}
	return (c - x) / (c - b + rampEpsilon)
}

// Trap is the trapezoidal membership function: 0 outside [a, d], plateau 1
// across [b, c], linear ramps between.
func Trap(x, a, b, c, d float64) float64 {
	if x <= a || x >= d {
		return 0
	}
	if x >= b && x <= c {
		return 1
	}
	if x < b {
		return (x - a) / (b - a + rampEpsilon)
	}
	return (d - x) / (d - c + rampEpsilon)
}

// RouteFeatures is the feature vector the fuzzy rules consume, extracted
// from simulating one candidate route.
type RouteFeatures struct {
	PipGain           float64 // pips gained by playing the route
	Hits              int     // opposing checkers sent to the bar
	BlotsAfter        int     // own blots in the resulting position
	AnchorsAfter      int     // own anchors in the resulting position
	MyBarAfter        int     // own checkers on the bar afterwards
	OppBarAfter       int     // opposing checkers on the bar afterwards
	HomeProgressAfter float64 // own home-progress ratio afterwards
	BorneOffAfter     int     // own borne-off count afterwards
}

// ExtractRouteFeatures simulates the route on a clone and measures the
// resulting position for the side to move.
func ExtractRouteFeatures(e *game.Engine, r board.TurnRoute) RouteFeatures {
	me := e.Turn()
	before := e.Board()
	pipBefore := PipCount(&before, me)

	sim := e.Clone()
	sim.ApplyRoute(r)
	after := sim.Board()

	opp := board.Opponent(me)
	hits := after.OnBar(opp) - before.OnBar(opp)
	if hits < 0 {
		hits = 0
	}

	return RouteFeatures{
		PipGain:           float64(pipBefore - PipCount(&after, me)),
		Hits:              hits,
		BlotsAfter:        BlotCount(&after, me),
		AnchorsAfter:      AnchorCount(&after, me),
		MyBarAfter:        after.OnBar(me),
		OppBarAfter:       after.OnBar(opp),
		HomeProgressAfter: HomeProgress(&after, me),
		BorneOffAfter:     after.Off(me),
	}
}

// FuzzyConfig holds the output-category centers used for defuzzification,
// in Poor / Okay / Good order.
type FuzzyConfig struct {
	OutCenters [3]float64
}

// DefaultFuzzyConfig returns the standard output centers.
func DefaultFuzzyConfig() FuzzyConfig {
	return FuzzyConfig{OutCenters: [3]float64{0.2, 0.5, 0.85}}
}

// ruleAnd is the fuzzy AND: the minimum membership across a rule's inputs.
func ruleAnd(memberships ...float64) float64 {
	return floats.Min(memberships)
}

// Score fuzzifies the feature vector, fires the rule bank and defuzzifies
// to a scalar in the convex hull of the output centers. When no rule
// activates the score collapses to 0 instead of dividing by zero.
func Score(f RouteFeatures, cfg FuzzyConfig) float64 {
	pipGain := f.PipGain
	hits := float64(f.Hits)
	blots := float64(f.BlotsAfter)
	anchors := float64(f.AnchorsAfter)
	myBar := float64(f.MyBarAfter)
	oppBar := float64(f.OppBarAfter)
	home := f.HomeProgressAfter
	off := float64(f.BorneOffAfter)

	// Linguistic buckets per input.
	pipS := Tri(pipGain, -2, 0, 4)
	pipM := Tri(pipGain, 2, 6, 10)
	pipL := Tri(pipGain, 8, 14, 22)
	hitZ := Trap(hits, -0.5, 0, 0, 0.5)
	hit1 := Tri(hits, 0.5, 1, 1.5)
	hitMany := Tri(hits, 1.5, 2, 3.5)
	blotL := Tri(blots, -0.5, 0, 2)
	blotM := Tri(blots, 1, 3, 5)
	blotH := Tri(blots, 4, 7, 12)
	anchorM := Tri(anchors, 1, 2, 3.5)
	anchorH := Tri(anchors, 3, 4, 6)
	myBarS := Tri(myBar, 0.5, 1, 2.5)
	myBarMany := Tri(myBar, 2, 3, 6)
	oppBarMany := Tri(oppBar, 2, 3, 6)
	homeM := Tri(home, 0.30, 0.50, 0.70)
	homeH := Tri(home, 0.65, 0.85, 1.01)
	offM := Tri(off, 2, 5, 9)
	offH := Tri(off, 8, 11, 15.5)

	// Rule bank: each category takes the strongest of its rules.
	good := floats.Max([]float64{
		ruleAnd(pipL, blotL, anchorH),
		ruleAnd(hit1, blotL, pipM),
		ruleAnd(hitMany, blotL),
		ruleAnd(homeH, blotL),
		ruleAnd(offH, blotL),
		ruleAnd(oppBarMany, blotL),
	})

	okay := floats.Max([]float64{
		ruleAnd(pipM, blotM),
		ruleAnd(hit1, blotM),
		ruleAnd(anchorM, pipS),
		ruleAnd(homeM, blotM),
		ruleAnd(offM, blotM),
	})

	poor := floats.Max([]float64{
		ruleAnd(blotH, pipS),
		ruleAnd(myBarS, pipS),
		ruleAnd(myBarMany, 1.0),
		ruleAnd(hitZ, blotH),
	})

	cPoor, cOkay, cGood := cfg.OutCenters[0], cfg.OutCenters[1], cfg.OutCenters[2]
	num := poor*cPoor + okay*cOkay + good*cGood
	den := poor + okay + good + rampEpsilon
	return num / den
}

// ScoredRoute pairs a candidate route with its score and features.
type ScoredRoute struct {
	Route    board.TurnRoute
	Score    float64
	Features RouteFeatures
}

// FuzzyReport lists every candidate the fuzzy opponent considered.
type FuzzyReport struct {
	Scored []ScoredRoute
}

// FuzzyAI picks the route with the highest fuzzy score. Ties go to the
// first-encountered route; unlike the minimax opponent there is no
// randomness here.
type FuzzyAI struct {
	Config FuzzyConfig
}

// NewFuzzyAI creates a fuzzy opponent with the given output centers.
func NewFuzzyAI(cfg FuzzyConfig) *FuzzyAI {
	return &FuzzyAI{Config: cfg}
}

// PickBestRoute scores every candidate route and returns the best, its
// score and the full scored list. The route is nil when no move is
// playable.
func (a *FuzzyAI) PickBestRoute(e *game.Engine) (*board.TurnRoute, float64, *FuzzyReport) {
	routes := e.GenerateRoutes()
	if len(routes) == 0 {
		return nil, 0, &FuzzyReport{}
	}

	rep := &FuzzyReport{Scored: make([]ScoredRoute, 0, len(routes))}
	var best *board.TurnRoute
	bestScore := -1.0

	for i := range routes {
		f := ExtractRouteFeatures(e, routes[i])
		s := Score(f, a.Config)
		rep.Scored = append(rep.Scored, ScoredRoute{Route: routes[i], Score: s, Features: f})
		if s > bestScore {
			bestScore = s
			best = &routes[i]
		}
	}
	return best, bestScore, rep
}
