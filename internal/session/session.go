package session

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/doorpolicy/doorman/internal/client"
	"github.com/doorpolicy/doorman/internal/gate"
	"github.com/doorpolicy/doorman/internal/state"
)

// #region types

// Terminal outcomes of a session.
const (
	OutcomeFilled    = "filled"
	OutcomeFailed    = "failed"
	OutcomeIOFailure = "io_failure"
)

// Source fetches the next candidate while reporting the decision for the
// current one. The live implementation is client.Client; tests inject a
// scripted stream.
type Source interface {
	DecideAndNext(ctx context.Context, gameID string, personIndex int, accept *bool) (client.DecideResponse, error)
}

// Recorder persists per-candidate decisions and the terminal result.
// *state.Store satisfies it; nil disables recording.
type Recorder interface {
	LogDecision(rec state.DecisionRecord) error
	FinishGame(gameID, status, reason string, acceptedTotal, rejectCount int) error
}

// Config holds driver tunables.
type Config struct {
	MaxRejects    int // reject budget before the session is abandoned
	ProgressEvery int // progress log interval in processed candidates
}

// DefaultConfig returns the standard driver tuning.
func DefaultConfig() Config {
	return Config{
		MaxRejects:    20000,
		ProgressEvery: 100,
	}
}

// Outcome is the final report of a session, produced even on abnormal
// termination.
type Outcome struct {
	Status              string
	Reason              string
	AcceptedTotal       int
	RejectCount         int
	AcceptedByAttribute map[string]int
}

// #endregion types

// #region runner

// Runner drives one session: it sequentially pulls candidates from the
// source, asks the gate for a decision, applies the state transition,
// and reports the decision while fetching the next candidate. Strictly
// sequential, one request in flight at a time.
type Runner struct {
	gameID string
	source Source
	gate   *gate.Gate
	st     *state.AdmissionState
	store  Recorder
	log    *zap.Logger
	config Config
}

// NewRunner wires a session runner. store may be nil.
func NewRunner(gameID string, source Source, g *gate.Gate, st *state.AdmissionState, store Recorder, logger *zap.Logger, config Config) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		gameID: gameID,
		source: source,
		gate:   g,
		st:     st,
		store:  store,
		log:    logger,
		config: config,
	}
}

// #endregion runner

// #region run

// Run processes the candidate stream to a terminal state. The returned
// Outcome always carries the final counts; err is non-nil only for I/O
// failures, which end the session without retry.
func (r *Runner) Run(ctx context.Context) (Outcome, error) {
	// First request carries no prior decision.
	resp, err := r.source.DecideAndNext(ctx, r.gameID, 0, nil)
	if err != nil {
		return r.finish(OutcomeIOFailure, err.Error()), err
	}

	processed := 0
	for resp.Status == client.StatusRunning &&
		r.st.CapacityRemaining > 0 &&
		r.st.RejectCount < r.config.MaxRejects {

		person := resp.NextPerson
		if person == nil {
			err = fmt.Errorf("running response without nextPerson")
			return r.finish(OutcomeIOFailure, err.Error()), err
		}

		d := r.gate.Decide(r.st, person.Attributes)
		r.st.Apply(d.Accept, person.Attributes)
		processed++

		r.record(person, d)
		r.log.Debug("decision",
			zap.Int("person", person.PersonIndex),
			zap.Bool("accept", d.Accept),
			zap.Bool("forced", d.Forced),
			zap.Float64("score", d.Score),
		)
		if r.config.ProgressEvery > 0 && processed%r.config.ProgressEvery == 0 {
			r.log.Info("progress",
				zap.Int("processed", processed),
				zap.Int("accepted", r.st.AcceptedTotal()),
				zap.Int("rejected", r.st.RejectCount),
				zap.Int("capacity_remaining", r.st.CapacityRemaining),
			)
		}

		// Report the decision and fetch the next candidate in one trip.
		resp, err = r.source.DecideAndNext(ctx, r.gameID, person.PersonIndex, &d.Accept)
		if err != nil {
			return r.finish(OutcomeIOFailure, err.Error()), err
		}
	}

	switch {
	case resp.Status == client.StatusCompleted:
		return r.finish(OutcomeFilled, ""), nil
	case resp.Status == client.StatusFailed:
		return r.finish(OutcomeFailed, resp.Reason), nil
	case r.st.RejectCount >= r.config.MaxRejects:
		return r.finish(OutcomeFailed, fmt.Sprintf("reject budget of %d exhausted", r.config.MaxRejects)), nil
	case r.st.CapacityRemaining == 0:
		// Locally full; the service has not confirmed completion yet.
		return r.finish(OutcomeFilled, "capacity exhausted"), nil
	default:
		return r.finish(OutcomeFailed, fmt.Sprintf("unexpected status %q", resp.Status)), nil
	}
}

// #endregion run

// #region finish

func (r *Runner) record(person *client.Person, d gate.Decision) {
	if r.store == nil {
		return
	}
	decision := "reject"
	if d.Accept {
		decision = "accept"
	}
	err := r.store.LogDecision(state.DecisionRecord{
		GameID:            r.gameID,
		PersonIndex:       person.PersonIndex,
		Attributes:        person.Attributes,
		Decision:          decision,
		Forced:            d.Forced,
		Score:             d.Score,
		Reason:            d.Reason,
		CapacityRemaining: r.st.CapacityRemaining,
	})
	if err != nil {
		r.log.Warn("log decision", zap.Error(err))
	}
}

// finish assembles the terminal outcome and persists it. Called on every
// exit path so final counts are always reported.
func (r *Runner) finish(status, reason string) Outcome {
	out := Outcome{
		Status:              status,
		Reason:              reason,
		AcceptedTotal:       r.st.AcceptedTotal(),
		RejectCount:         r.st.RejectCount,
		AcceptedByAttribute: r.st.AcceptedCounts(),
	}

	if r.store != nil {
		if err := r.store.FinishGame(r.gameID, status, reason, out.AcceptedTotal, out.RejectCount); err != nil {
			r.log.Warn("finish game", zap.Error(err))
		}
	}

	r.log.Info("session finished",
		zap.String("status", status),
		zap.String("reason", reason),
		zap.Int("accepted", out.AcceptedTotal),
		zap.Int("rejected", out.RejectCount),
		zap.Any("accepted_by_attribute", out.AcceptedByAttribute),
	)
	return out
}

// #endregion finish
