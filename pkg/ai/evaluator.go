// Package ai implements the two computer opponents: a depth-limited
// minimax searcher over a linear feature evaluator, and a fuzzy-inference
// route scorer.
package ai

import (
	"gonum.org/v1/gonum/floats"

	"github.com/yourusername/fuzzygammon/pkg/board"
)

// EvalWeights are the coefficients of the linear static evaluator. Each
// field weighs one named feature; callers tune playing style by passing
// their own set.
type EvalWeights struct {
	Pip            float64 // own pip count (negative: fewer pips is better)
	Blot           float64 // own exposed blots
	Anchor         float64 // own anchored points
	BarPenalty     float64 // own checkers on the bar
	OppBarPressure float64 // opponent checkers on the bar
	HomeProgress   float64 // share of own checkers home or off
	BorneOff       float64 // borne-off difference
	Blockade       float64 // consecutive anchored runs
}

// DefaultWeights returns the hand-tuned default coefficients.
func DefaultWeights() EvalWeights {
	return EvalWeights{
		Pip:            -0.9,
		Blot:           -0.8,
		Anchor:         +0.6,
		BarPenalty:     -1.2,
		OppBarPressure: +0.7,
		HomeProgress:   +0.6,
		BorneOff:       +1.1,
		Blockade:       +0.4,
	}
}

// PipCount is the player's total remaining travel distance: for each owned
// point, its distance from the player's edge times the checkers on it.
func PipCount(b *board.Board, p board.Player) int {
	pip := 0
	for i := 1; i <= 24; i++ {
		if b[i].Owner != p {
			continue
		}
		dist := i
		if p == board.Black {
			dist = 25 - i
		}
		pip += dist * b[i].Checkers
	}
	return pip
}

// BlotCount is the number of points holding exactly one of the player's
// checkers.
func BlotCount(b *board.Board, p board.Player) int {
	n := 0
	for i := 1; i <= 24; i++ {
		if b[i].Owner == p && b[i].Checkers == 1 {
			n++
		}
	}
	return n
}

// AnchorCount is the number of points the player holds with two or more
// checkers.
func AnchorCount(b *board.Board, p board.Player) int {
	n := 0
	for i := 1; i <= 24; i++ {
		if b[i].Owner == p && b[i].Checkers >= 2 {
			n++
		}
	}
	return n
}

// HomeProgress is the share of the player's checkers already in their home
// quadrant or borne off. A player with no checkers in play counts as 1.0.
func HomeProgress(b *board.Board, p board.Player) float64 {
	off := board.OffIndex(p)
	total, inside := 0, 0
	for i := range b {
		if b[i].Owner != p {
			continue
		}
		total += b[i].Checkers
		if board.InHome(p, i) || i == off {
			inside += b[i].Checkers
		}
	}
	if total == 0 {
		return 1.0
	}
	return float64(inside) / float64(total)
}

// BlockadeScore rewards consecutive runs of anchored points: each point in
// a run adds 0.5 times the run length so far, and a gap resets the run.
func BlockadeScore(b *board.Board, p board.Player) float64 {
	score, run := 0.0, 0
	for i := 1; i <= 24; i++ {
		if b[i].Owner == p && b[i].Checkers >= 2 {
			run++
			score += 0.5 * float64(run)
		} else {
			run = 0
		}
	}
	return score
}

// Evaluate scores the position for the side to move as a weighted sum of
// feature differences. Pip, blot, anchor, home-progress, borne-off and
// blockade contribute as me-minus-opponent differences under one weight
// each; the two bar features are weighted separately per side.
func Evaluate(b board.Board, side board.Player, w EvalWeights) float64 {
	me, opp := side, board.Opponent(side)

	weights := []float64{
		w.Pip, w.Blot, w.Anchor,
		w.BarPenalty, w.OppBarPressure,
		w.HomeProgress, w.BorneOff, w.Blockade,
	}
	features := []float64{
		float64(PipCount(&b, me) - PipCount(&b, opp)),
		float64(BlotCount(&b, me) - BlotCount(&b, opp)),
		float64(AnchorCount(&b, me) - AnchorCount(&b, opp)),
		float64(b.OnBar(me)),
		float64(b.OnBar(opp)),
		HomeProgress(&b, me) - HomeProgress(&b, opp),
		float64(b.Off(me) - b.Off(opp)),
		BlockadeScore(&b, me) - BlockadeScore(&b, opp),
	}

	return floats.Dot(weights, features)
}
