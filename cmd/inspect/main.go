package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/doorpolicy/doorman/internal/state"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to doorman.db")
	gameID := flag.String("game", "", "show one game with its decision log")
	last := flag.Int("last", 20, "show N most recent games")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/doorman.db [--game id] [--last N] [--json]")
		os.Exit(2)
	}

	store, err := state.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if *gameID != "" {
		err = runDetailMode(store, *gameID, *jsonOut)
	} else {
		err = runListMode(store, *last, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region list-mode

func runListMode(store *state.Store, last int, jsonOut bool) error {
	games, err := store.ListGames(last)
	if err != nil {
		return err
	}
	if len(games) == 0 {
		fmt.Fprintln(os.Stderr, "no games found")
		return nil
	}

	if jsonOut {
		return printJSON(games)
	}

	fmt.Printf("%-14s  %-8s  %-9s  %8s  %8s  %s\n",
		"Game", "Scenario", "Status", "Accepted", "Rejected", "Started")
	for _, g := range games {
		fmt.Printf("%-14s  %-8d  %-9s  %8d  %8d  %s\n",
			shortID(g.GameID), g.Scenario, g.Status, g.AcceptedTotal, g.RejectCount,
			g.CreatedAt.Format("2006-01-02T15:04:05Z"))
	}
	return nil
}

// #endregion list-mode

// #region detail-mode

type detailOutput struct {
	Game      state.GameRecord       `json:"game"`
	Decisions []state.DecisionRecord `json:"decisions"`
}

func runDetailMode(store *state.Store, gameID string, jsonOut bool) error {
	game, err := store.GetGame(gameID)
	if err != nil {
		return err
	}
	decisions, err := store.Decisions(gameID)
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(detailOutput{Game: game, Decisions: decisions})
	}

	fmt.Printf("Game:     %s\n", game.GameID)
	fmt.Printf("Scenario: %d\n", game.Scenario)
	fmt.Printf("Status:   %s\n", game.Status)
	if game.Reason != "" {
		fmt.Printf("Reason:   %s\n", game.Reason)
	}
	fmt.Printf("Accepted: %d / %d capacity\n", game.AcceptedTotal, game.Capacity)
	fmt.Printf("Rejected: %d\n", game.RejectCount)

	fmt.Printf("\n%-8s  %-8s  %-7s  %8s  %10s\n", "Person", "Decision", "Forced", "Score", "Remaining")
	for _, d := range decisions {
		fmt.Printf("%-8d  %-8s  %-7v  %8.4f  %10d\n",
			d.PersonIndex, d.Decision, d.Forced, d.Score, d.CapacityRemaining)
	}
	return nil
}

// #endregion detail-mode

// #region output

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

// #endregion output
