package board

// Move is a single checker relocation with the die that paid for it.
// Start may be the mover's bar pocket; End may be their off-tray.
type Move struct {
	Start int
	End   int
	Die   int
}

// TurnRoute is one full turn: an ordered sequence of single-die moves
// consuming some or all of the rolled dice.
type TurnRoute []Move

// DieTarget pairs a die value with the destination it reaches.
type DieTarget struct {
	Die int
	End int
}

// LegalSingleTargets returns every (die, destination) pair the player may
// play from start given the remaining dice. Rules apply in this order:
// bar entry is mandatory while any checker sits on the bar; entry targets
// are 25-d for White and d for Black; a move past the last point bears off
// only once all checkers are home; a destination held by the opponent with
// two or more checkers is blocked.
func LegalSingleTargets(b *Board, p Player, start int, dice []int) []DieTarget {
	var res []DieTarget

	if b.OnBar(p) > 0 && start != BarIndex(p) {
		return res
	}

	if start == BarIndex(p) {
		for _, d := range dice {
			end := d
			if p == White {
				end = 25 - d
			}
			if end >= 1 && end <= 24 && !b.IsBlockedFor(end, p) {
				res = append(res, DieTarget{Die: d, End: end})
			}
		}
		return res
	}

	if start < 1 || start > 24 {
		return res
	}
	if b[start].Owner != p || b[start].Checkers <= 0 {
		return res
	}

	dir := Direction(p)
	for _, d := range dice {
		end := start + dir*d
		if end < 1 || end > 24 {
			// Past the edge in the forward direction: bearing off.
			if b.AllInHome(p) {
				res = append(res, DieTarget{Die: d, End: OffIndex(p)})
			}
			continue
		}
		if !b.IsBlockedFor(end, p) {
			res = append(res, DieTarget{Die: d, End: end})
		}
	}

	return res
}

// ApplySingleMove relocates one checker from start to end for the player,
// capturing an opposing blot on the destination. The move must already have
// passed legality filtering: landing on a blocked point panics.
func ApplySingleMove(b *Board, p Player, start, end int) {
	b[start].remove(1)

	if end == OffIndex(p) {
		b[end].add(p, 1)
		return
	}

	if b.CanHit(end, p) {
		opp := Opponent(p)
		b[end].remove(1)
		b[BarIndex(opp)].add(opp, 1)
	}

	if b[end].Owner == NoPlayer || b[end].Owner == p {
		b[end].add(p, 1)
		return
	}
	panic("board: move onto a blocked point escaped legality filtering")
}
