package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/doorpolicy/doorman/internal/replay"
	"github.com/doorpolicy/doorman/internal/simulate"
	"github.com/doorpolicy/doorman/internal/state"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to doorman.db (DB mode, requires --game)")
	gameID := flag.String("game", "", "game id to replay from the DB")
	fixturePath := flag.String("fixture", "", "path to fixture JSON (fixture mode)")
	simCount := flag.Int("simulate", 0, "replace the captured stream with N candidates drawn from the statistics")
	simSeed := flag.Int64("seed", 1, "seed for --simulate")
	flag.Parse()

	dbMode := *dbPath != "" && *gameID != ""
	fixtureMode := *fixturePath != ""
	if dbMode == fixtureMode {
		fmt.Fprintln(os.Stderr, "usage: replay --db path/to/doorman.db --game <game-id>")
		fmt.Fprintln(os.Stderr, "       replay --fixture path/to/fixture.json")
		os.Exit(2)
	}

	var (
		fixture *replay.Fixture
		err     error
	)
	if fixtureMode {
		fixture, err = replay.LoadFixture(*fixturePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "load fixture: %v\n", err)
			os.Exit(2)
		}
	} else {
		store, openErr := state.NewStore(*dbPath)
		if openErr != nil {
			fmt.Fprintf(os.Stderr, "open db: %v\n", openErr)
			os.Exit(2)
		}
		fixture, err = replay.FromStore(store, *gameID)
		store.Close()
		if err != nil {
			fmt.Fprintf(os.Stderr, "extract game: %v\n", err)
			os.Exit(2)
		}
	}

	os.Exit(runReplay(fixture, *simCount, *simSeed))
}

// #endregion main

// #region replay

func runReplay(f *replay.Fixture, simCount int, simSeed int64) int {
	model, err := f.Model()
	if err != nil {
		fmt.Fprintf(os.Stderr, "build model: %v\n", err)
		return 2
	}
	if err := model.ValidateRequired(f.Required()); err != nil {
		fmt.Fprintf(os.Stderr, "validate constraints: %v\n", err)
		return 2
	}

	candidates := f.CandidateStream()
	compare := len(f.ExpectedDecisions) > 0
	if simCount > 0 {
		candidates = simulate.Stream(model, simCount, simSeed)
		compare = false
	}

	config := replay.DefaultConfig(f.Capacity)
	results, summary := replay.Replay(model, f.Required(), candidates, config)

	exitCode := 0
	if compare {
		exitCode = printComparison(results, f.ExpectedDecisions)
	} else {
		printResults(results)
	}

	fmt.Printf("\nSummary: %d processed, %d accepted (%d forced), %d rejected, capacity left %d, constraints met: %v\n",
		summary.Processed, summary.Accepted, summary.ForcedAccepts, summary.Rejected,
		summary.CapacityRemaining, summary.ConstraintsMet)
	return exitCode
}

// #endregion replay

// #region output

func printComparison(results []replay.Result, expected []replay.FixtureDecision) int {
	fmt.Printf("%-8s| %-10s| %-10s| %s\n", "Person", "Recorded", "Replayed", "Match")
	fmt.Printf("%-8s+%-11s+%-11s+%s\n", "--------", "-----------", "-----------", "------")

	byIndex := make(map[int]bool, len(expected))
	for _, e := range expected {
		byIndex[e.PersonIndex] = e.Accept
	}

	diverge := 0
	for _, r := range results {
		recorded, ok := byIndex[r.PersonIndex]
		if !ok {
			continue
		}
		match := "OK"
		if recorded != r.Accept {
			match = "DIFF"
			diverge++
		}
		fmt.Printf("%-8d| %-10s| %-10s| %s\n",
			r.PersonIndex, decisionWord(recorded), decisionWord(r.Accept), match)
	}

	fmt.Printf("\n%d compared, %d diverge\n", len(results), diverge)
	if diverge > 0 {
		return 1
	}
	return 0
}

func printResults(results []replay.Result) {
	fmt.Printf("%-8s| %-10s| %-7s| %s\n", "Person", "Decision", "Forced", "Score")
	for _, r := range results {
		fmt.Printf("%-8d| %-10s| %-7v| %.4f\n", r.PersonIndex, decisionWord(r.Accept), r.Forced, r.Score)
	}
}

func decisionWord(accept bool) string {
	if accept {
		return "accept"
	}
	return "reject"
}

// #endregion output
