package replay

import (
	"testing"

	"github.com/doorpolicy/doorman/internal/stats"
)

func testModel(t *testing.T) *stats.Model {
	t.Helper()
	m, err := stats.NewModel(
		map[string]float64{"A": 0.5},
		map[string]map[string]float64{"A": {"A": 1}},
	)
	if err != nil {
		t.Fatalf("build model: %v", err)
	}
	return m
}

func has(v bool) map[string]bool { return map[string]bool{"A": v} }

func TestReplayWorkedScenario(t *testing.T) {
	// capacity 3, marginal 0.5, required 2, stream A,!A,!A,A:
	// forced accept, reject, reject, scored accept.
	m := testModel(t)
	candidates := []Candidate{
		{PersonIndex: 0, Attributes: has(true)},
		{PersonIndex: 1, Attributes: has(false)},
		{PersonIndex: 2, Attributes: has(false)},
		{PersonIndex: 3, Attributes: has(true)},
	}

	results, summary := Replay(m, map[string]int{"A": 2}, candidates, DefaultConfig(3))

	if len(results) != 4 {
		t.Fatalf("processed %d candidates, want 4", len(results))
	}
	wantAccept := []bool{true, false, false, true}
	wantForced := []bool{true, false, false, false}
	for i, r := range results {
		if r.Accept != wantAccept[i] || r.Forced != wantForced[i] {
			t.Errorf("candidate %d: accept=%v forced=%v, want %v/%v", i, r.Accept, r.Forced, wantAccept[i], wantForced[i])
		}
	}
	if summary.Accepted != 2 || summary.Rejected != 2 {
		t.Errorf("summary = %d/%d accepted/rejected, want 2/2", summary.Accepted, summary.Rejected)
	}
	if summary.ForcedAccepts != 1 {
		t.Errorf("forced accepts = %d, want 1", summary.ForcedAccepts)
	}
	if summary.CapacityRemaining != 1 {
		t.Errorf("capacity remaining = %d, want 1", summary.CapacityRemaining)
	}
	if !summary.ConstraintsMet {
		t.Error("constraints should be met")
	}
	if summary.AcceptedByAttribute["A"] != 2 {
		t.Errorf("accepted[A] = %d, want 2", summary.AcceptedByAttribute["A"])
	}
}

func TestReplayStopsAtCapacity(t *testing.T) {
	m := testModel(t)
	candidates := make([]Candidate, 10)
	for i := range candidates {
		candidates[i] = Candidate{PersonIndex: i, Attributes: has(true)}
	}

	// required 10 over capacity 2 keeps every candidate forced.
	results, summary := Replay(m, map[string]int{"A": 10}, candidates, DefaultConfig(2))

	if len(results) != 2 {
		t.Fatalf("processed %d candidates, want 2 (capacity bound)", len(results))
	}
	if summary.CapacityRemaining != 0 {
		t.Errorf("capacity remaining = %d, want 0", summary.CapacityRemaining)
	}
	if summary.ConstraintsMet {
		t.Error("constraints cannot be met with capacity 2")
	}
}

func TestReplayStopsAtRejectBudget(t *testing.T) {
	m := testModel(t)
	candidates := make([]Candidate, 10)
	for i := range candidates {
		candidates[i] = Candidate{PersonIndex: i, Attributes: has(false)}
	}

	config := DefaultConfig(5)
	config.MaxRejects = 4
	results, summary := Replay(m, map[string]int{"A": 1}, candidates, config)

	if len(results) != 4 {
		t.Fatalf("processed %d candidates, want 4 (reject budget)", len(results))
	}
	if summary.Rejected != 4 || summary.Accepted != 0 {
		t.Errorf("summary = %d/%d accepted/rejected, want 0/4", summary.Accepted, summary.Rejected)
	}
}

func TestReplayDeterministic(t *testing.T) {
	m := testModel(t)
	candidates := []Candidate{
		{PersonIndex: 0, Attributes: has(true)},
		{PersonIndex: 1, Attributes: has(false)},
		{PersonIndex: 2, Attributes: has(true)},
	}
	required := map[string]int{"A": 2}

	r1, s1 := Replay(m, required, candidates, DefaultConfig(3))
	r2, s2 := Replay(m, required, candidates, DefaultConfig(3))

	if len(r1) != len(r2) {
		t.Fatalf("result lengths differ: %d vs %d", len(r1), len(r2))
	}
	for i := range r1 {
		if r1[i] != r2[i] {
			t.Errorf("result %d differs across runs: %+v vs %+v", i, r1[i], r2[i])
		}
	}
	if s1.Accepted != s2.Accepted || s1.Rejected != s2.Rejected {
		t.Error("summaries differ across runs")
	}
}
