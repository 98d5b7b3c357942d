package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/doorpolicy/doorman/internal/replay"
	"github.com/doorpolicy/doorman/internal/state"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to doorman.db")
	gameID := flag.String("game", "", "game id to export")
	outPath := flag.String("out", "", "output fixture path (default <game-id>.json)")
	flag.Parse()

	if *dbPath == "" || *gameID == "" {
		fmt.Fprintln(os.Stderr, "usage: fixture-export --db path/to/doorman.db --game <game-id> [--out fixture.json]")
		os.Exit(2)
	}

	store, err := state.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	fixture, err := replay.FromStore(store, *gameID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "extract game: %v\n", err)
		os.Exit(1)
	}
	if len(fixture.Candidates) == 0 {
		fmt.Fprintf(os.Stderr, "game %s has no recorded decisions\n", *gameID)
		os.Exit(1)
	}

	path := *outPath
	if path == "" {
		path = *gameID + ".json"
	}
	if err := fixture.Save(path); err != nil {
		fmt.Fprintf(os.Stderr, "save fixture: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("exported %d candidates from game %s to %s\n", len(fixture.Candidates), *gameID, path)
}

// #endregion main
