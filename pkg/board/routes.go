package board

// GenerateRoutes returns every distinct legal full turn for the dice roll.
// The search is an exhaustive backtrack: each step queries legality against
// the current partially-played board, because hits and vacated points change
// what is legal mid-turn. A branch ends either when the dice run out or when
// no further move exists from any origin, so maximal dice usage falls out of
// the exploration rather than being checked separately.
func GenerateRoutes(b Board, p Player, dice []int) []TurnRoute {
	var routes []TurnRoute
	remaining := append([]int(nil), dice...)
	routeBacktrack(b, p, remaining, nil, &routes)
	return dedupRoutes(routes)
}

func routeBacktrack(b Board, p Player, remaining []int, acc TurnRoute, routes *[]TurnRoute) {
	if len(remaining) == 0 {
		*routes = append(*routes, append(TurnRoute(nil), acc...))
		return
	}

	usedAny := false

	// While on the bar, the bar is the only origin.
	starts := pointStarts
	if b.OnBar(p) > 0 {
		starts = []int{BarIndex(p)}
	}

	for _, start := range starts {
		var seen [7]bool // duplicate die values yield identical candidates
		for _, d := range remaining {
			if seen[d] {
				continue
			}
			seen[d] = true
			for _, t := range LegalSingleTargets(&b, p, start, []int{d}) {
				next := b
				ApplySingleMove(&next, p, start, t.End)
				usedAny = true
				// Full-capacity slice keeps sibling branches from
				// sharing the accumulator's backing array.
				path := append(acc[:len(acc):len(acc)], Move{Start: start, End: t.End, Die: t.Die})
				routeBacktrack(next, p, removeDie(remaining, t.Die), path, routes)
			}
		}
	}

	if !usedAny {
		*routes = append(*routes, append(TurnRoute(nil), acc...))
	}
}

// pointStarts is the origin scan order when no checker is on the bar.
var pointStarts = func() []int {
	s := make([]int, 24)
	for i := range s {
		s[i] = i + 1
	}
	return s
}()

// removeDie returns remaining with one occurrence of d removed.
func removeDie(remaining []int, d int) []int {
	out := make([]int, 0, len(remaining)-1)
	removed := false
	for _, v := range remaining {
		if !removed && v == d {
			removed = true
			continue
		}
		out = append(out, v)
	}
	return out
}

// dedupRoutes collapses search paths that applied the identical ordered
// sequence of (start, end, die) moves.
func dedupRoutes(routes []TurnRoute) []TurnRoute {
	seen := make(map[string]struct{}, len(routes))
	out := routes[:0]
	for _, r := range routes {
		key := make([]byte, 0, len(r)*3)
		for _, m := range r {
			key = append(key, byte(m.Start), byte(m.End), byte(m.Die))
		}
		if _, dup := seen[string(key)]; dup {
			continue
		}
		seen[string(key)] = struct{}{}
		out = append(out, r)
	}
	return out
}
