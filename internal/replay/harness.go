package replay

import (
	"github.com/doorpolicy/doorman/internal/gate"
	"github.com/doorpolicy/doorman/internal/state"
	"github.com/doorpolicy/doorman/internal/stats"
)

// #region types

// Candidate is one arrival in a captured or synthetic stream.
type Candidate struct {
	PersonIndex int
	Attributes  map[string]bool
}

// Config bundles the knobs for a replay run.
type Config struct {
	Capacity   int
	MaxRejects int // 0 disables the reject budget
	Gate       gate.GateConfig
}

// DefaultConfig mirrors the live driver defaults.
func DefaultConfig(capacity int) Config {
	return Config{
		Capacity:   capacity,
		MaxRejects: 20000,
		Gate:       gate.DefaultGateConfig(),
	}
}

// Result captures the decision for one replayed candidate.
type Result struct {
	PersonIndex int
	Accept      bool
	Forced      bool
	Score       float64
	Reason      string
}

// Summary provides aggregate stats from a replay run.
type Summary struct {
	Processed           int
	Accepted            int
	Rejected            int
	ForcedAccepts       int
	CapacityRemaining   int
	AcceptedByAttribute map[string]int
	ConstraintsMet      bool
}

// #endregion types

// #region replay

// Replay runs the decision pipeline over a candidate stream entirely
// in-memory: decide, apply, next. It stops early when capacity or the
// reject budget runs out, exactly like the live driver.
func Replay(model *stats.Model, required map[string]int, candidates []Candidate, config Config) ([]Result, Summary) {
	st := state.NewAdmissionState(config.Capacity, model.Attributes(), required)
	g := gate.NewGate(model, config.Gate)

	results := make([]Result, 0, len(candidates))
	for _, cand := range candidates {
		if st.CapacityRemaining == 0 {
			break
		}
		if config.MaxRejects > 0 && st.RejectCount >= config.MaxRejects {
			break
		}

		d := g.Decide(st, cand.Attributes)
		st.Apply(d.Accept, cand.Attributes)

		results = append(results, Result{
			PersonIndex: cand.PersonIndex,
			Accept:      d.Accept,
			Forced:      d.Forced,
			Score:       d.Score,
			Reason:      d.Reason,
		})
	}

	return results, summarize(results, st)
}

func summarize(results []Result, st *state.AdmissionState) Summary {
	s := Summary{
		Processed:           len(results),
		CapacityRemaining:   st.CapacityRemaining,
		AcceptedByAttribute: st.AcceptedCounts(),
		ConstraintsMet:      st.ConstraintsMet(),
	}
	for _, r := range results {
		if r.Accept {
			s.Accepted++
			if r.Forced {
				s.ForcedAccepts++
			}
		} else {
			s.Rejected++
		}
	}
	return s
}

// #endregion replay
