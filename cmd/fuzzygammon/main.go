// fuzzygammon - backgammon rules engine and AI analysis tool
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/yourusername/fuzzygammon/pkg/ai"
	"github.com/yourusername/fuzzygammon/pkg/board"
	"github.com/yourusername/fuzzygammon/pkg/game"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "routes":
		cmdRoutes(args)
	case "bestmove":
		cmdBestMove(args)
	case "selfplay":
		cmdSelfPlay(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`fuzzygammon - Backgammon Rules Engine and AI

Usage: fuzzygammon <command> [options]

Commands:
  routes    List every legal way to play a roll
  bestmove  Pick the best play with an AI opponent
  selfplay  Play AI opponents against each other

Use "fuzzygammon <command> -h" for command-specific help.

Dice are given as "3,1" or "3-1". Doubles expand to four dice.
Without -dice the engine rolls from its seeded source.`)
}

func parseDice(diceStr string) (int, int, error) {
	parts := strings.Split(diceStr, ",")
	if len(parts) != 2 {
		parts = strings.Split(diceStr, "-")
	}
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("dice should be in format '3,1' or '3-1'")
	}

	d1, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	d2, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil || d1 < 1 || d1 > 6 || d2 < 1 || d2 > 6 {
		return 0, 0, fmt.Errorf("dice values must be 1-6")
	}

	return d1, d2, nil
}

// setupTurn builds a fresh game, sets the side to move, and arms the dice
// either from the -dice flag or the seeded roller.
func setupTurn(seed int64, side, dice string) (*game.Engine, error) {
	e := game.New(game.Options{Seed: seed})

	switch strings.ToLower(side) {
	case "", "white", "w":
	case "black", "b":
		e.EndTurn()
	default:
		return nil, fmt.Errorf("side must be white or black, got %q", side)
	}

	if dice == "" {
		e.Roll()
		return e, nil
	}
	d1, d2, err := parseDice(dice)
	if err != nil {
		return nil, err
	}
	if err := e.SetDice(d1, d2); err != nil {
		return nil, err
	}
	return e, nil
}

func formatRoute(p board.Player, r board.TurnRoute) string {
	if len(r) == 0 {
		return "(no play)"
	}
	parts := make([]string, len(r))
	for i, m := range r {
		from := strconv.Itoa(m.Start)
		if m.Start == board.BarIndex(p) {
			from = "bar"
		}
		to := strconv.Itoa(m.End)
		if m.End == board.OffIndex(p) {
			to = "off"
		}
		parts[i] = fmt.Sprintf("%s/%s", from, to)
	}
	return strings.Join(parts, " ")
}

func cmdRoutes(args []string) {
	fs := flag.NewFlagSet("routes", flag.ExitOnError)
	seed := fs.Int64("seed", 1, "Random seed for the game")
	side := fs.String("side", "white", "Side to move (white or black)")
	dice := fs.String("dice", "", "Dice roll (e.g., 3,1); empty rolls from the seed")
	fs.Parse(args)

	e, err := setupTurn(*seed, *side, *dice)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	routes := e.GenerateRoutes()
	fmt.Printf("%s to play %v: %d route(s)\n", e.Turn(), e.Dice(), len(routes))
	for i, r := range routes {
		fmt.Printf("  %d. %s\n", i+1, formatRoute(e.Turn(), r))
	}
}

func cmdBestMove(args []string) {
	fs := flag.NewFlagSet("bestmove", flag.ExitOnError)
	seed := fs.Int64("seed", 1, "Random seed for the game")
	side := fs.String("side", "white", "Side to move (white or black)")
	dice := fs.String("dice", "", "Dice roll (e.g., 3,1); empty rolls from the seed")
	aiName := fs.String("ai", "minimax", "AI to use (minimax or fuzzy)")
	depth := fs.Int("depth", 2, "Search depth (minimax only)")
	aiSeed := fs.Int64("ai-seed", 0, "Random seed for the AI's tie breaks and samples")
	fs.Parse(args)

	e, err := setupTurn(*seed, *side, *dice)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%s to play %v\n", e.Turn(), e.Dice())
	start := time.Now()

	switch strings.ToLower(*aiName) {
	case "minimax":
		picker := ai.NewMinimaxAI(*depth, ai.DefaultWeights(), *aiSeed)
		route, score, rep := picker.PickBestRoute(e)
		elapsed := time.Since(start)
		if route == nil {
			fmt.Println("No legal moves (forced to pass)")
			return
		}
		fmt.Printf("Best: %-24s  score %+.3f\n", formatRoute(e.Turn(), *route), score)
		fmt.Printf("  depth %d, %d nodes, %d leaf evals, %.0fms\n",
			*depth, rep.Nodes, rep.LeafEvals, elapsed.Seconds()*1000)
	case "fuzzy":
		picker := ai.NewFuzzyAI(ai.DefaultFuzzyConfig())
		route, score, rep := picker.PickBestRoute(e)
		elapsed := time.Since(start)
		if route == nil {
			fmt.Println("No legal moves (forced to pass)")
			return
		}
		fmt.Printf("Best: %-24s  score %.3f\n", formatRoute(e.Turn(), *route), score)
		fmt.Printf("  %d route(s) scored, %.0fms\n", len(rep.Scored), elapsed.Seconds()*1000)
		for i, sr := range rep.Scored {
			fmt.Printf("  %d. %-24s  %.3f\n", i+1, formatRoute(e.Turn(), sr.Route), sr.Score)
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown AI: %s (want minimax or fuzzy)\n", *aiName)
		os.Exit(1)
	}
}

func playerFactory(name string, depth int) (game.PlayerFactory, error) {
	switch strings.ToLower(name) {
	case "minimax":
		return func(seed int64) game.PickFunc {
			picker := ai.NewMinimaxAI(depth, ai.DefaultWeights(), seed)
			return func(e *game.Engine) *board.TurnRoute {
				route, _, _ := picker.PickBestRoute(e)
				return route
			}
		}, nil
	case "fuzzy":
		return func(seed int64) game.PickFunc {
			picker := ai.NewFuzzyAI(ai.DefaultFuzzyConfig())
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

func cmdSelfPlay(args []string) {
	fs := flag.NewFlagSet("selfplay", flag.ExitOnError)
	games := fs.Int("games", 100, "Number of games to play")
	seed := fs.Int64("seed", 0, "Random seed (0 = random)")
	workers := fs.Int("workers", 0, "Number of worker goroutines (0 = auto)")
	maxTurns := fs.Int("max-turns", 500, "Abandon a game after this many turns")
	whiteName := fs.String("white", "fuzzy", "White player (minimax, fuzzy, or first)")
	blackName := fs.String("black", "minimax", "Black player (minimax, fuzzy, or first)")
	depth := fs.Int("depth", 2, "Minimax search depth")
	fs.Parse(args)

	white, err := playerFactory(*whiteName, *depth)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	black, err := playerFactory(*blackName, *depth)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	opts := game.SelfPlayOptions{
		Games:    *games,
		Seed:     *seed,
		Workers:  *workers,
		MaxTurns: *maxTurns,
	}

	start := time.Now()
	result := game.SelfPlay(white, black, opts)
	elapsed := time.Since(start)

	fmt.Printf("Self-play: %s (White) vs %s (Black), %d games, %.1fs\n",
		*whiteName, *blackName, result.Games, elapsed.Seconds())
	fmt.Printf("  White wins: %d (%.1f%%)\n", result.WhiteWins,
		100*float64(result.WhiteWins)/float64(result.Games))
	fmt.Printf("  Black wins: %d (%.1f%%)\n", result.BlackWins,
		100*float64(result.BlackWins)/float64(result.Games))
	if result.Unfinished > 0 {
		fmt.Printf("  Unfinished: %d\n", result.Unfinished)
	}
	fmt.Printf("  Avg turns:  %.1f\n", result.AvgTurns)
}
