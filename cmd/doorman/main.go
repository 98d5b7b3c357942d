package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"

	"go.uber.org/zap"

	"github.com/doorpolicy/doorman/internal/client"
	"github.com/doorpolicy/doorman/internal/config"
	"github.com/doorpolicy/doorman/internal/gate"
	"github.com/doorpolicy/doorman/internal/logging"
	"github.com/doorpolicy/doorman/internal/session"
	"github.com/doorpolicy/doorman/internal/state"
	"github.com/doorpolicy/doorman/internal/stats"
)

// #region main

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to config.yaml")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "doorman: %v\n", err)
		os.Exit(2)
	}

	logger, err := logging.New(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "doorman: %v\n", err)
		os.Exit(2)
	}
	defer logger.Sync()

	outcome, err := run(context.Background(), cfg, logger)
	if cfg.UI.Enabled {
		printSummary(outcome)
	}
	if err != nil {
		logger.Error("session ended on transport failure", zap.Error(err))
		os.Exit(1)
	}
	if outcome.Status != session.OutcomeFilled {
		os.Exit(1)
	}
}

// #endregion main

// #region run

func run(ctx context.Context, cfg config.AppConfig, logger *zap.Logger) (session.Outcome, error) {
	store, err := state.NewStore(cfg.DBPath)
	if err != nil {
		logger.Fatal("open store", zap.Error(err))
	}
	defer store.Close()

	c := client.NewClient(cfg.Game.URL, cfg.Game.RequestsPerSecond)

	game, err := c.NewGame(ctx, cfg.Game.Scenario, cfg.Game.PlayerID)
	if err != nil {
		logger.Fatal("start game", zap.Error(err))
	}
	logger.Info("game started",
		zap.String("game_id", game.GameID),
		zap.Int("scenario", cfg.Game.Scenario),
		zap.Int("capacity", cfg.Game.Capacity),
		zap.Int("constraints", len(game.Constraints)),
	)

	model, err := stats.NewModel(
		game.AttributeStatistics.RelativeFrequencies,
		game.AttributeStatistics.Correlations,
	)
	if err != nil {
		logger.Fatal("build probability model", zap.Error(err))
	}

	required := make(map[string]int, len(game.Constraints))
	for _, con := range game.Constraints {
		required[con.Attribute] = con.MinCount
	}
	if err := model.ValidateRequired(required); err != nil {
		logger.Fatal("validate constraints", zap.Error(err))
	}

	statsJSON, _ := json.Marshal(game.AttributeStatistics)
	constraintsJSON, _ := json.Marshal(game.Constraints)
	err = store.CreateGame(state.GameRecord{
		GameID:          game.GameID,
		Scenario:        cfg.Game.Scenario,
		PlayerID:        cfg.Game.PlayerID,
		Capacity:        cfg.Game.Capacity,
		StatisticsJSON:  string(statsJSON),
		ConstraintsJSON: string(constraintsJSON),
	})
	if err != nil {
		logger.Fatal("record game", zap.Error(err))
	}

	st := state.NewAdmissionState(cfg.Game.Capacity, model.Attributes(), required)
	g := gate.NewGate(model, gate.DefaultGateConfig())
	runner := session.NewRunner(game.GameID, c, g, st, store, logger, session.Config{
		MaxRejects:    cfg.Game.MaxRejects,
		ProgressEvery: 100,
	})

	return runner.Run(ctx)
}

// #endregion run

// #region summary

func printSummary(out session.Outcome) {
	fmt.Printf("\nStatus:   %s\n", out.Status)
	if out.Reason != "" {
		fmt.Printf("Reason:   %s\n", out.Reason)
	}
	fmt.Printf("Accepted: %d\n", out.AcceptedTotal)
	fmt.Printf("Rejected: %d\n", out.RejectCount)

	attrs := make([]string, 0, len(out.AcceptedByAttribute))
	for a := range out.AcceptedByAttribute {
		attrs = append(attrs, a)
	}
	sort.Strings(attrs)
	for _, a := range attrs {
		fmt.Printf("  %-20s %d\n", a, out.AcceptedByAttribute[a])
	}
}

// #endregion summary
