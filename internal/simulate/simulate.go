package simulate

import (
	"math/rand"

	"github.com/doorpolicy/doorman/internal/replay"
	"github.com/doorpolicy/doorman/internal/stats"
)

// #region stream

// Stream draws a synthetic candidate stream from the probability model
// for offline backtesting. Attributes are sampled as a chain: the first
// by its marginal, each following one conditioned on the previous via
// the pairwise joint table, so pairwise correlations survive in the
// generated stream.
func Stream(model *stats.Model, count int, seed int64) []replay.Candidate {
	rng := rand.New(rand.NewSource(seed))
	attrs := model.Attributes()

	out := make([]replay.Candidate, count)
	for i := 0; i < count; i++ {
		out[i] = replay.Candidate{
			PersonIndex: i,
			Attributes:  samplePerson(model, attrs, rng),
		}
	}
	return out
}

func samplePerson(model *stats.Model, attrs []string, rng *rand.Rand) map[string]bool {
	person := make(map[string]bool, len(attrs))

	prev := ""
	for _, a := range attrs {
		p, _ := model.Marginal(a)
		if prev != "" {
			p = conditional(model, a, prev, person[prev])
		}
		person[a] = rng.Float64() < p
		prev = a
	}
	return person
}

// conditional returns P(attr=1 | prev=prevVal) from the joint table.
func conditional(model *stats.Model, attr, prev string, prevVal bool) float64 {
	pAttr, _ := model.Marginal(attr)
	pPrev, _ := model.Marginal(prev)
	joint, _ := model.Joint(prev, attr)

	var p float64
	if prevVal {
		p = joint / pPrev
	} else {
		p = (pAttr - joint) / (1 - pPrev)
	}
	// An inconsistent correlation matrix can push the joint outside the
	// feasible range; clamp so sampling stays well-defined.
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// #endregion stream
