package simulate

import (
	"math"
	"testing"

	"github.com/doorpolicy/doorman/internal/stats"
)

func correlatedModel(t *testing.T) *stats.Model {
	t.Helper()
	m, err := stats.NewModel(
		map[string]float64{"local": 0.4, "wears_black": 0.8},
		map[string]map[string]float64{
			"local":       {"wears_black": 0.2},
			"wears_black": {"local": 0.2},
		},
	)
	if err != nil {
		t.Fatalf("build model: %v", err)
	}
	return m
}

func TestStreamSizeAndIndices(t *testing.T) {
	m := correlatedModel(t)
	stream := Stream(m, 100, 1)

	if len(stream) != 100 {
		t.Fatalf("stream length = %d, want 100", len(stream))
	}
	for i, c := range stream {
		if c.PersonIndex != i {
			t.Fatalf("candidate %d has index %d", i, c.PersonIndex)
		}
		if len(c.Attributes) != 2 {
			t.Fatalf("candidate %d has %d attributes, want 2", i, len(c.Attributes))
		}
	}
}

func TestStreamDeterministicPerSeed(t *testing.T) {
	m := correlatedModel(t)

	s1 := Stream(m, 50, 42)
	s2 := Stream(m, 50, 42)
	for i := range s1 {
		for a, v := range s1[i].Attributes {
			if s2[i].Attributes[a] != v {
				t.Fatalf("candidate %d differs across identical seeds", i)
			}
		}
	}
}

func TestStreamMatchesMarginals(t *testing.T) {
	m := correlatedModel(t)
	const n = 20000
	stream := Stream(m, n, 7)

	counts := map[string]int{}
	both := 0
	for _, c := range stream {
		for a, v := range c.Attributes {
			if v {
				counts[a]++
			}
		}
		if c.Attributes["local"] && c.Attributes["wears_black"] {
			both++
		}
	}

	if got := float64(counts["local"]) / n; math.Abs(got-0.4) > 0.02 {
		t.Errorf("empirical marginal(local) = %.3f, want ~0.40", got)
	}
	if got := float64(counts["wears_black"]) / n; math.Abs(got-0.8) > 0.02 {
		t.Errorf("empirical marginal(wears_black) = %.3f, want ~0.80", got)
	}

	joint, _ := m.Joint("local", "wears_black")
	if got := float64(both) / n; math.Abs(got-joint) > 0.02 {
		t.Errorf("empirical joint = %.3f, want ~%.3f", got, joint)
	}
}
