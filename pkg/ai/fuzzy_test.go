package ai

import (
	"math"
	"reflect"
	"testing"

	"github.com/yourusername/fuzzygammon/pkg/board"
	"github.com/yourusername/fuzzygammon/pkg/game"
)

func TestTri(t *testing.T) {
	cases := []struct {
		x, want float64
	}{
		{-3, 0},  // left of support
		{0, 0},   // at a: open interval
		{2, 1},   // peak
		{1, 0.5}, // rising ramp
		{3, 0.5}, // falling ramp
		{4, 0},   // at c
		{9, 0},   // right of support
	}
	for _, c := range cases {
		if got := Tri(c.x, 0, 2, 4); math.Abs(got-c.want) > 1e-6 {
			t.Errorf("Tri(%v, 0, 2, 4) = %v, want %v", c.x, got, c.want)
		}
	}
}

func TestTrap(t *testing.T) {
	cases := []struct {
		x, want float64
	}{
		{0, 0},
		{1.5, 0.5},
		{2, 1},
		{3, 1}, // plateau
		{4, 1},
		{5, 0.5},
		{6, 0},
	}
	for _, c := range cases {
		if got := Trap(c.x, 1, 2, 4, 6); math.Abs(got-c.want) > 1e-6 {
			t.Errorf("Trap(%v, 1, 2, 4, 6) = %v, want %v", c.x, got, c.want)
		}
	}
}

func TestTrapDegeneratePlateau(t *testing.T) {
	// The zero-hits bucket has b == c == 0 and must still peak at 0.
	if got := Trap(0, -0.5, 0, 0, 0.5); got != 1 {
		t.Errorf("Trap(0, -0.5, 0, 0, 0.5) = %v, want 1", got)
	}
}

func TestScoreFullyGoodFeatures(t *testing.T) {
	// pip gain at the "large" peak, no blots, four anchors: the strongest
	// Good rule fires at 1 and nothing else activates, so the score lands
	// on the Good center.
	f := RouteFeatures{
		PipGain:           14,
		Hits:              0,
		BlotsAfter:        0,
		AnchorsAfter:      4,
		MyBarAfter:        0,
		OppBarAfter:       0,
		HomeProgressAfter: 0.5,
		BorneOffAfter:     0,
	}
	got := Score(f, DefaultFuzzyConfig())
	if math.Abs(got-0.85) > 1e-6 {
		t.Errorf("score = %v, want the Good center 0.85", got)
	}
}

func TestScoreZeroActivation(t *testing.T) {
	// Every feature outside all rule supports: no rule fires and the
	// defuzzifier must collapse to 0 instead of dividing by zero.
	f := RouteFeatures{
		PipGain:           30,
		Hits:              5,
		BlotsAfter:        15,
		AnchorsAfter:      7,
		MyBarAfter:        7,
		OppBarAfter:       7,
		HomeProgressAfter: 0.05,
		BorneOffAfter:     16,
	}
	if got := Score(f, DefaultFuzzyConfig()); got != 0 {
		t.Errorf("score with no active rule = %v, want 0", got)
	}
}

func TestScoreWithinOutputHull(t *testing.T) {
	cfg := DefaultFuzzyConfig()
	lo, hi := cfg.OutCenters[0], cfg.OutCenters[2]

	feats := []RouteFeatures{
		{PipGain: 6, BlotsAfter: 3, AnchorsAfter: 2, HomeProgressAfter: 0.5},
		{PipGain: 0, Hits: 1, BlotsAfter: 7, HomeProgressAfter: 0.3},
		{PipGain: 2, MyBarAfter: 3, HomeProgressAfter: 0.2},
		{PipGain: 10, Hits: 2, BlotsAfter: 1, AnchorsAfter: 4, HomeProgressAfter: 0.85, BorneOffAfter: 11},
	}
	for i, f := range feats {
		got := Score(f, cfg)
		if got == 0 {
			continue // no rule fired; collapse to 0 is the defined behavior
		}
		if got < lo-1e-6 || got > hi+1e-6 {
			t.Errorf("feature set %d: score %v outside [%v, %v]", i, got, lo, hi)
		}
	}
}

func TestExtractRouteFeaturesHit(t *testing.T) {
	var b board.Board
	b[24] = board.Point{Owner: board.White, Checkers: 2}
	b[6] = board.Point{Owner: board.White, Checkers: 13}
	b[21] = board.Point{Owner: board.Black, Checkers: 1}
	b[1] = board.Point{Owner: board.Black, Checkers: 14}

	e := game.New(game.Options{Seed: 71})
	e.LoadPosition(b, board.White)
	e.Roll()

	route := board.TurnRoute{{Start: 24, End: 21, Die: 3}}
	f := ExtractRouteFeatures(e, route)

	if f.Hits != 1 {
		t.Errorf("hits = %d, want 1", f.Hits)
	}
	if f.PipGain != 3 {
		t.Errorf("pip gain = %v, want 3", f.PipGain)
	}
	if f.OppBarAfter != 1 {
		t.Errorf("opponent bar after = %d, want 1", f.OppBarAfter)
	}

	// The live engine must be untouched by feature extraction.
	if e.Board() != b {
		t.Error("feature extraction mutated the live board")
	}
}

func TestFuzzyPickBestRoute(t *testing.T) {
	e := game.New(game.Options{Seed: 73})
	e.Roll()

	a := NewFuzzyAI(DefaultFuzzyConfig())
	route, score, rep := a.PickBestRoute(e)
	if route == nil {
		t.Fatal("expected a route from the opening")
	}

	routes := e.GenerateRoutes()
	if len(rep.Scored) != len(routes) {
		t.Errorf("scored %d routes, want %d", len(rep.Scored), len(routes))
	}

	// The chosen route carries the maximum score, and ties resolve to the
	// first-encountered candidate.
	for i, sr := range rep.Scored {
		if sr.Score > score {
			t.Errorf("route %d scored %v above the chosen %v", i, sr.Score, score)
		}
	}
	for _, sr := range rep.Scored {
		if sr.Score == score {
			if !reflect.DeepEqual(sr.Route, *route) {
				t.Error("tie should resolve to the first-encountered route")
			}
			break
		}
	}
}

func TestFuzzyPickNoRoutes(t *testing.T) {
	// Black dancing against a closed home board: the only route is empty,
	// and the picker must still return it without faulting.
	var b board.Board
	for i := 1; i <= 6; i++ {
		b[i] = board.Point{Owner: board.White, Checkers: 2}
	}
	b[8] = board.Point{Owner: board.White, Checkers: 3}
	b[13] = board.Point{Owner: board.Black, Checkers: 14}
	b[board.BlackBar] = board.Point{Owner: board.Black, Checkers: 1}

	e := game.New(game.Options{Seed: 79})
	e.LoadPosition(b, board.Black)
	e.Roll()

	a := NewFuzzyAI(DefaultFuzzyConfig())
	route, _, _ := a.PickBestRoute(e)
	if route != nil && len(*route) != 0 {
		t.Errorf("expected no playable moves, got %v", *route)
	}
}
