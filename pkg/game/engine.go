// Package game owns the turn state machine: the live board, the side to
// move and the dice remaining for the active turn.
package game

import (
	"fmt"
	"math/rand"

	"github.com/yourusername/fuzzygammon/pkg/board"
)

// DiceStrictness decides what happens when a route consumes a die value
// that is no longer in the remaining multiset.
type DiceStrictness int

const (
	// DiceLenient silently skips the removal, matching the permissive
	// historical behavior.
	DiceLenient DiceStrictness = iota
	// DiceStrict rejects the route with an error.
	DiceStrict
)

// Options configures a game engine.
type Options struct {
	Seed       int64          // RNG seed for dice (0 = random)
	Strictness DiceStrictness // Die-consumption policy for ApplyRoute
}

// Engine holds one game in progress. It is single-threaded: callers are
// trusted to sequence Roll / ApplyRoute / EndTurn via the state queries.
// Search and evaluation never touch a live Engine; they work on clones.
type Engine struct {
	board      board.Board
	turn       board.Player
	dice       []int
	rng        *rand.Rand
	strictness DiceStrictness
}

// New creates an engine set up for a fresh game with White to move.
func New(opts Options) *Engine {
	if opts.Seed == 0 {
		opts.Seed = rand.Int63()
	}
	return &Engine{
		board:      board.StandardSetup(),
		turn:       board.White,
		rng:        rand.New(rand.NewSource(opts.Seed)),
		strictness: opts.Strictness,
	}
}

// LoadPosition replaces the current position wholesale: board, side to
// move, and cleared dice. Drivers use it to restore saved or constructed
// positions.
func (e *Engine) LoadPosition(b board.Board, turn board.Player) {
	e.board = b
	e.turn = turn
	e.dice = nil
}

// NewGame resets the board to the opening position with White to move.
// The dice source and strictness policy carry over.
func (e *Engine) NewGame() {
	e.board = board.StandardSetup()
	e.turn = board.White
	e.dice = nil
}

// Board returns a copy of the current position for rendering and evaluation.
func (e *Engine) Board() board.Board {
	return e.board
}

// Turn returns the side to move.
func (e *Engine) Turn() board.Player {
	return e.turn
}

// Dice returns a copy of the dice remaining for the active turn.
func (e *Engine) Dice() []int {
	return append([]int(nil), e.dice...)
}

// Roll draws the turn's dice from the engine's own source: two values, or
// four copies when the draws match. Only meaningful between EndTurn and the
// first move of a turn.
func (e *Engine) Roll() []int {
	return e.RollFrom(e.rng)
}

// RollFrom draws the turn's dice from an external source. Search uses this
// to sample opponent rolls without disturbing the live game's dice stream.
func (e *Engine) RollFrom(rng *rand.Rand) []int {
	a, b := rng.Intn(6)+1, rng.Intn(6)+1
	if a == b {
		e.dice = []int{a, b, a, b}
	} else {
		e.dice = []int{a, b}
	}
	return e.Dice()
}

// SetDice installs an explicit roll, for drivers that analyze a known
// roll rather than drawing one. Two distinct values or one doubled value
// are accepted; a doubled pair is expanded to four dice.
func (e *Engine) SetDice(a, b int) error {
	if a < 1 || a > 6 || b < 1 || b > 6 {
		return fmt.Errorf("game: dice %d-%d out of range 1-6", a, b)
	}
	if a == b {
		e.dice = []int{a, b, a, b}
	} else {
		e.dice = []int{a, b}
	}
	return nil
}

// LegalTargetsFrom returns the legal (die, destination) pairs from one
// origin given the remaining dice.
func (e *Engine) LegalTargetsFrom(start int) []board.DieTarget {
	return board.LegalSingleTargets(&e.board, e.turn, start, e.dice)
}

// GenerateRoutes returns every distinct legal full turn for the side to
// move with the remaining dice.
func (e *Engine) GenerateRoutes() []board.TurnRoute {
	return board.GenerateRoutes(e.board, e.turn, e.dice)
}

// ApplyRoute plays each move of the route and consumes its die. Under
// DiceStrict a die value missing from the remaining multiset aborts with an
// error before that move is played; under DiceLenient the removal is
// skipped and the move is played anyway.
func (e *Engine) ApplyRoute(r board.TurnRoute) error {
	for _, m := range r {
		if !e.consumeDie(m.Die) && e.strictness == DiceStrict {
			return fmt.Errorf("game: die %d not in remaining dice %v", m.Die, e.dice)
		}
		board.ApplySingleMove(&e.board, e.turn, m.Start, m.End)
	}
	return nil
}

// consumeDie removes one occurrence of d from the remaining dice.
func (e *Engine) consumeDie(d int) bool {
	for i, v := range e.dice {
		if v == d {
			e.dice = append(e.dice[:i], e.dice[i+1:]...)
			return true
		}
	}
	return false
}

// EndTurn hands the turn to the other player and clears the dice.
func (e *Engine) EndTurn() {
	e.turn = board.Opponent(e.turn)
	e.dice = nil
}

// HasWon reports whether the player has borne off all fifteen checkers.
func (e *Engine) HasWon(p board.Player) bool {
	return e.board.Off(p) >= board.CheckersPerSide
}

// Clone returns an independent deep copy for what-if simulation. The clone
// shares the parent's dice source; simulation code that needs isolated
// randomness rolls through RollFrom instead.
func (e *Engine) Clone() *Engine {
	return &Engine{
		board:      e.board,
		turn:       e.turn,
		dice:       append([]int(nil), e.dice...),
		rng:        e.rng,
		strictness: e.strictness,
	}
}
