// Package board implements the backgammon board model and move generation.
package board

// Player identifies one of the two sides.
type Player int8

const (
	NoPlayer Player = iota // empty point
	White                  // moves 24 -> 1
	Black                  // moves 1 -> 24
)

// String returns the player name.
func (p Player) String() string {
	switch p {
	case White:
		return "white"
	case Black:
		return "black"
	}
	return "none"
}

// Opponent returns the other player.
func Opponent(p Player) Player {
	if p == White {
		return Black
	}
	return White
}

// Pocket index space. Points 1-24 are the board triangles; each side has its
// own bar and off-tray pocket. Bar and off pockets are never blocked and take
// no part in direction or adjacency logic.
const (
	WhiteBar   = 0
	WhiteOff   = 25
	BlackBar   = 26
	BlackOff   = 27
	NumPockets = 28
)

// CheckersPerSide is the number of checkers each player starts with.
const CheckersPerSide = 15

// BarIndex returns the bar pocket for a player.
func BarIndex(p Player) int {
	if p == White {
		return WhiteBar
	}
	return BlackBar
}

// OffIndex returns the off-tray pocket for a player.
func OffIndex(p Player) int {
	if p == White {
		return WhiteOff
	}
	return BlackOff
}

// Direction returns the movement direction along points 1-24:
// -1 for White (24 -> 1), +1 for Black (1 -> 24).
func Direction(p Player) int {
	if p == White {
		return -1
	}
	return +1
}

// InHome reports whether a point index lies in the player's home quadrant.
func InHome(p Player, idx int) bool {
	if p == White {
		return idx >= 1 && idx <= 6
	}
	return idx >= 19 && idx <= 24
}

// Point holds the checkers on a single pocket. A point is owned by at most
// one player at a time: Checkers == 0 exactly when Owner == NoPlayer.
type Point struct {
	Owner    Player
	Checkers int
}

// add places n checkers for owner. Adding to an opponent-owned point is a
// bug in the caller's legality filtering, never a game state.
func (pt *Point) add(owner Player, n int) {
	if pt.Owner == NoPlayer {
		pt.Owner = owner
		pt.Checkers = n
		return
	}
	if pt.Owner != owner {
		panic("board: add to opponent-owned point without capture")
	}
	pt.Checkers += n
}

// remove takes n checkers off the point, clearing ownership when it empties.
func (pt *Point) remove(n int) {
	if pt.Checkers < n {
		panic("board: not enough checkers to remove")
	}
	pt.Checkers -= n
	if pt.Checkers == 0 {
		pt.Owner = NoPlayer
	}
}

// Board is the full 28-pocket position. It is a value type: assignment makes
// an independent deep copy, which is what route generation and search rely
// on for cheap simulate-then-discard snapshots.
type Board [NumPockets]Point

// StandardSetup returns the standard backgammon opening position.
func StandardSetup() Board {
	var b Board

	// White
	b[24].add(White, 2)
	b[13].add(White, 5)
	b[8].add(White, 3)
	b[6].add(White, 5)

	// Black
	b[1].add(Black, 2)
	b[12].add(Black, 5)
	b[17].add(Black, 3)
	b[19].add(Black, 5)

	// bars and off-trays start empty
	return b
}

// IsBlockedFor reports whether the player cannot land on idx because the
// opponent holds it with two or more checkers. Bar and off pockets are
// never blocked.
func (b *Board) IsBlockedFor(idx int, p Player) bool {
	if idx < 1 || idx > 24 {
		return false
	}
	pt := b[idx]
	return pt.Owner == Opponent(p) && pt.Checkers >= 2
}

// CanHit reports whether idx holds exactly one opposing checker (a blot).
func (b *Board) CanHit(idx int, p Player) bool {
	if idx < 1 || idx > 24 {
		return false
	}
	pt := b[idx]
	return pt.Owner == Opponent(p) && pt.Checkers == 1
}

// AllInHome reports whether every checker the player still has on the board
// sits in their home quadrant or off-tray. This is the bearing-off
// precondition.
func (b *Board) AllInHome(p Player) bool {
	off := OffIndex(p)
	for i := range b {
		if b[i].Owner != p {
			continue
		}
		if !InHome(p, i) && i != off {
			return false
		}
	}
	return true
}

// OnBar returns the number of the player's checkers on their bar.
func (b *Board) OnBar(p Player) int {
	return b[BarIndex(p)].Checkers
}

// Off returns the number of the player's checkers borne off.
func (b *Board) Off(p Player) int {
	return b[OffIndex(p)].Checkers
}

// CheckerCount returns the player's total checker count across all pockets.
// It is always CheckersPerSide for any reachable position.
func (b *Board) CheckerCount(p Player) int {
	total := 0
	for i := range b {
		if b[i].Owner == p {
			total += b[i].Checkers
		}
	}
	return total
}
