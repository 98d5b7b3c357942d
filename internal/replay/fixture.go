package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/doorpolicy/doorman/internal/client"
	"github.com/doorpolicy/doorman/internal/state"
	"github.com/doorpolicy/doorman/internal/stats"
)

// #region fixture-types

// Fixture is the standalone JSON form of one captured game: the exact
// statistics and constraints the game started with plus the observed
// candidate stream, optionally with the recorded decisions for
// comparison.
type Fixture struct {
	Description       string                     `json:"description,omitempty"`
	GameID            string                     `json:"gameId,omitempty"`
	Scenario          int                        `json:"scenario"`
	Capacity          int                        `json:"capacity"`
	Statistics        client.AttributeStatistics `json:"attributeStatistics"`
	Constraints       []client.Constraint        `json:"constraints"`
	Candidates        []FixtureCandidate         `json:"candidates"`
	ExpectedDecisions []FixtureDecision          `json:"expectedDecisions,omitempty"`
}

// FixtureCandidate mirrors one arrival with JSON tags.
type FixtureCandidate struct {
	PersonIndex int             `json:"personIndex"`
	Attributes  map[string]bool `json:"attributes"`
}

// FixtureDecision is a recorded decision for divergence checks.
type FixtureDecision struct {
	PersonIndex int  `json:"personIndex"`
	Accept      bool `json:"accept"`
}

// #endregion fixture-types

// #region fixture-io

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// Save writes the fixture as indented JSON.
func (f *Fixture) Save(path string) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write fixture %s: %w", path, err)
	}
	return nil
}

// #endregion fixture-io

// #region fixture-conversions

// Model builds the probability model from the fixture statistics.
func (f *Fixture) Model() (*stats.Model, error) {
	return stats.NewModel(f.Statistics.RelativeFrequencies, f.Statistics.Correlations)
}

// Required converts the constraint list to per-attribute minimum counts.
func (f *Fixture) Required() map[string]int {
	req := make(map[string]int, len(f.Constraints))
	for _, c := range f.Constraints {
		req[c.Attribute] = c.MinCount
	}
	return req
}

// CandidateStream converts the fixture candidates to the harness form.
func (f *Fixture) CandidateStream() []Candidate {
	out := make([]Candidate, len(f.Candidates))
	for i, c := range f.Candidates {
		out[i] = Candidate{PersonIndex: c.PersonIndex, Attributes: c.Attributes}
	}
	return out
}

// #endregion fixture-conversions

// #region from-store

// FromStore rebuilds a fixture from a recorded game in the decision log,
// including the decisions that were actually taken.
func FromStore(store *state.Store, gameID string) (*Fixture, error) {
	game, err := store.GetGame(gameID)
	if err != nil {
		return nil, err
	}

	var statistics client.AttributeStatistics
	if err := json.Unmarshal([]byte(game.StatisticsJSON), &statistics); err != nil {
		return nil, fmt.Errorf("unmarshal statistics: %w", err)
	}
	var constraints []client.Constraint
	if err := json.Unmarshal([]byte(game.ConstraintsJSON), &constraints); err != nil {
		return nil, fmt.Errorf("unmarshal constraints: %w", err)
	}

	decisions, err := store.Decisions(gameID)
	if err != nil {
		return nil, err
	}

	f := &Fixture{
		Description: fmt.Sprintf("captured game %s (scenario %d)", gameID, game.Scenario),
		GameID:      gameID,
		Scenario:    game.Scenario,
		Capacity:    game.Capacity,
		Statistics:  statistics,
		Constraints: constraints,
	}
	for _, d := range decisions {
		f.Candidates = append(f.Candidates, FixtureCandidate{
			PersonIndex: d.PersonIndex,
			Attributes:  d.Attributes,
		})
		f.ExpectedDecisions = append(f.ExpectedDecisions, FixtureDecision{
			PersonIndex: d.PersonIndex,
			Accept:      d.Decision == "accept",
		})
	}
	return f, nil
}

// #endregion from-store
