package gate

import (
	"fmt"

	"github.com/doorpolicy/doorman/internal/state"
	"github.com/doorpolicy/doorman/internal/stats"
)

// #region gate

// Gate decides whether an arriving candidate is admitted. It is a pure
// function of the probability model, the current admission counters, and
// the candidate's attributes; the caller applies the state transition.
type Gate struct {
	model  *stats.Model
	config GateConfig
}

// NewGate creates a gate over the given probability model.
func NewGate(model *stats.Model, config GateConfig) *Gate {
	return &Gate{model: model, config: config}
}

// Decide runs the forced-accept pass first, then the scarcity score.
// Attributes the model does not know are ignored in both passes.
func (g *Gate) Decide(st *state.AdmissionState, attrs map[string]bool) Decision {
	remaining := float64(st.CapacityRemaining)

	// --- Forced-accept pass ---
	// A carried attribute whose expected future supply falls short of its
	// unmet requirement mandates acceptance. First hit wins.
	for _, a := range g.model.Attributes() {
		if !attrs[a] {
			continue
		}
		need := st.Need(a)
		if need == 0 {
			continue
		}
		p, _ := g.model.Marginal(a)
		expected := remaining * p
		if expected < float64(need) {
			return Decision{
				Accept: true,
				Forced: true,
				ForceSignal: &ForceSignal{
					Attribute: a,
					Need:      need,
					Expected:  expected,
				},
				Reason: fmt.Sprintf("forced: %s expects %.2f future arrivals for need %d", a, expected, need),
			}
		}
	}

	// --- Scarcity score ---
	// Weight each carried attribute by how much of the remaining capacity
	// its unmet requirement would consume. Pressure signal, not a probability.
	var score float64
	for a, has := range attrs {
		if !has || !g.model.Known(a) {
			continue
		}
		score += float64(st.Need(a)) / (remaining + g.config.Epsilon)
	}

	if score > 0 && st.CapacityRemaining > 0 {
		return Decision{
			Accept: true,
			Score:  score,
			Reason: fmt.Sprintf("scarcity score %.4f", score),
		}
	}
	return Decision{
		Accept: false,
		Score:  score,
		Reason: fmt.Sprintf("score %.4f contributes nothing to open constraints", score),
	}
}

// #endregion gate
