package game

import (
	"math/rand"
	"runtime"
	"sync"

	"github.com/yourusername/fuzzygammon/pkg/board"
)

// PickFunc selects a full-turn route for the side to move, or nil to pass
// when no route is playable.
type PickFunc func(*Engine) *board.TurnRoute

// PlayerFactory builds a route picker seeded for one worker, so parallel
// games never share a random stream.
type PlayerFactory func(seed int64) PickFunc

// SelfPlayOptions controls an AI-versus-AI series.
type SelfPlayOptions struct {
	Games    int   // Number of games to play (default 100)
	Seed     int64 // RNG seed (0 = random)
	Workers  int   // Parallel workers (0 = GOMAXPROCS)
	MaxTurns int   // Per-game turn cap before calling it unfinished (default 500)
}

// SelfPlayResult aggregates a completed series.
type SelfPlayResult struct {
	Games      int
	WhiteWins  int
	BlackWins  int
	Unfinished int
	AvgTurns   float64
}

// SelfPlayProgress is a running tally during a series.
type SelfPlayProgress struct {
	GamesCompleted int
	GamesTotal     int
	Percent        float64
	WhiteWins      int
	BlackWins      int
}

// ProgressCallback is called after each finished game. It runs on the
// aggregating goroutine, never concurrently with itself.
type ProgressCallback func(progress SelfPlayProgress)

type selfPlayPartial struct {
	winner board.Player
	turns  int
}

// SelfPlay runs a series of games between the White and Black factories'
// players, fanned out across workers with per-worker seeds.
func SelfPlay(white, black PlayerFactory, opts SelfPlayOptions) *SelfPlayResult {
	return SelfPlayWithProgress(white, black, opts, nil)
}

// SelfPlayWithProgress runs the series and reports a tally after each
// finished game.
func SelfPlayWithProgress(white, black PlayerFactory, opts SelfPlayOptions, callback ProgressCallback) *SelfPlayResult {
	if opts.Games <= 0 {
		opts.Games = 100
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.Workers > opts.Games {
		opts.Workers = opts.Games
	}
	if opts.Seed == 0 {
		opts.Seed = rand.Int63()
	}
	if opts.MaxTurns <= 0 {
		opts.MaxTurns = 500
	}

	gamesPerWorker := opts.Games / opts.Workers
	extra := opts.Games % opts.Workers

	results := make(chan selfPlayPartial, opts.Workers)
	var wg sync.WaitGroup

	for i := 0; i < opts.Workers; i++ {
		games := gamesPerWorker
		if i < extra {
			games++
		}
		seed := opts.Seed + int64(i)*1000000

		wg.Add(1)
		go func(games int, seed int64) {
			defer wg.Done()
			selfPlayWorker(white(seed+1), black(seed+2), games, seed, opts.MaxTurns, results)
		}(games, seed)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	total := &SelfPlayResult{}
	turns := 0
	for pr := range results {
		total.Games++
		turns += pr.turns
		switch pr.winner {
		case board.White:
			total.WhiteWins++
		case board.Black:
			total.BlackWins++
		default:
			total.Unfinished++
		}

		if callback != nil {
			callback(SelfPlayProgress{
				GamesCompleted: total.Games,
				GamesTotal:     opts.Games,
				Percent:        100.0 * float64(total.Games) / float64(opts.Games),
				WhiteWins:      total.WhiteWins,
				BlackWins:      total.BlackWins,
			})
		}
	}
	if total.Games > 0 {
		total.AvgTurns = float64(turns) / float64(total.Games)
	}
	return total
}

func selfPlayWorker(white, black PickFunc, games int, seed int64, maxTurns int, results chan<- selfPlayPartial) {
	rng := rand.New(rand.NewSource(seed))

	for i := 0; i < games; i++ {
		winner, turns := playOneGame(white, black, rng.Int63(), maxTurns)
		results <- selfPlayPartial{winner: winner, turns: turns}
	}
}

// playOneGame plays a single game to completion or the turn cap and returns
// the winner (NoPlayer if capped) and the number of turns played.
func playOneGame(white, black PickFunc, seed int64, maxTurns int) (board.Player, int) {
	e := New(Options{Seed: seed})

	for turn := 0; turn < maxTurns; turn++ {
		e.Roll()

		pick := white
		if e.Turn() == board.Black {
			pick = black
		}
		if route := pick(e); route != nil {
			e.ApplyRoute(*route)
		}

		if e.HasWon(e.Turn()) {
			return e.Turn(), turn + 1
		}
		e.EndTurn()
	}
	return board.NoPlayer, maxTurns
}

// FirstRoute is the baseline picker: it plays the first generated route.
func FirstRoute(e *Engine) *board.TurnRoute {
	routes := e.GenerateRoutes()
	if len(routes) == 0 {
		return nil
	}
	return &routes[0]
}
