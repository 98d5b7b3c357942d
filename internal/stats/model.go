package stats

import (
	"fmt"
	"math"
	"sort"
)

// #region config-error

// ConfigError reports inconsistent statistics or constraint input.
// The model must never be built from inputs that fail validation.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: %s: %s", e.Field, e.Reason)
}

// #endregion config-error

// #region model-struct

// Model holds the probabilistic view of the arrival stream: marginal
// frequencies per attribute and precomputed pairwise joint probabilities.
// Read-only after construction.
type Model struct {
	attrs    []string
	marginal map[string]float64
	joint    map[string]map[string]float64
}

// #endregion model-struct

// #region constructor

// NewModel validates the statistics payload and precomputes the joint
// probability table for all ordered attribute pairs.
// P(A=1,B=1) = rho * sqrt(pa(1-pa)pb(1-pb)) + pa*pb, with the diagonal
// equal to the marginal.
func NewModel(marginals map[string]float64, correlations map[string]map[string]float64) (*Model, error) {
	if len(marginals) == 0 {
		return nil, &ConfigError{Field: "relativeFrequencies", Reason: "empty"}
	}

	attrs := make([]string, 0, len(marginals))
	for a := range marginals {
		attrs = append(attrs, a)
	}
	sort.Strings(attrs)

	for _, a := range attrs {
		p := marginals[a]
		if p <= 0 || p >= 1 {
			return nil, &ConfigError{
				Field:  "relativeFrequencies." + a,
				Reason: fmt.Sprintf("marginal %.6f outside (0,1)", p),
			}
		}
	}

	joint := make(map[string]map[string]float64, len(attrs))
	for _, a := range attrs {
		joint[a] = make(map[string]float64, len(attrs))
		for _, b := range attrs {
			if a == b {
				joint[a][b] = marginals[a]
				continue
			}
			row, ok := correlations[a]
			if !ok {
				return nil, &ConfigError{
					Field:  "correlations." + a,
					Reason: "missing correlation row",
				}
			}
			rho, ok := row[b]
			if !ok {
				return nil, &ConfigError{
					Field:  fmt.Sprintf("correlations.%s.%s", a, b),
					Reason: "missing correlation entry",
				}
			}
			if rho < -1 || rho > 1 {
				return nil, &ConfigError{
					Field:  fmt.Sprintf("correlations.%s.%s", a, b),
					Reason: fmt.Sprintf("correlation %.6f outside [-1,1]", rho),
				}
			}
			pa := marginals[a]
			pb := marginals[b]
			joint[a][b] = rho*math.Sqrt(pa*(1-pa)*pb*(1-pb)) + pa*pb
		}
	}

	m := &Model{
		attrs:    attrs,
		marginal: make(map[string]float64, len(attrs)),
		joint:    joint,
	}
	for _, a := range attrs {
		m.marginal[a] = marginals[a]
	}
	return m, nil
}

// #endregion constructor

// #region accessors

// Attributes returns the closed attribute universe in sorted order.
func (m *Model) Attributes() []string {
	out := make([]string, len(m.attrs))
	copy(out, m.attrs)
	return out
}

// Known reports whether attr is part of the tracked universe.
func (m *Model) Known(attr string) bool {
	_, ok := m.marginal[attr]
	return ok
}

// Marginal returns the supplied marginal probability for attr.
func (m *Model) Marginal(attr string) (float64, error) {
	p, ok := m.marginal[attr]
	if !ok {
		return 0, &ConfigError{Field: attr, Reason: "unknown attribute"}
	}
	return p, nil
}

// ValidateRequired rejects constraints that reference attributes outside
// the tracked universe. Called before any state is built from them.
func (m *Model) ValidateRequired(required map[string]int) error {
	for a, n := range required {
		if !m.Known(a) {
			return &ConfigError{Field: "constraints." + a, Reason: "unknown attribute"}
		}
		if n < 0 {
			return &ConfigError{Field: "constraints." + a, Reason: fmt.Sprintf("negative minimum count %d", n)}
		}
	}
	return nil
}

// Joint returns the precomputed P(a=1, b=1). No runtime recomputation.
func (m *Model) Joint(a, b string) (float64, error) {
	row, ok := m.joint[a]
	if !ok {
		return 0, &ConfigError{Field: a, Reason: "unknown attribute"}
	}
	p, ok := row[b]
	if !ok {
		return 0, &ConfigError{Field: b, Reason: "unknown attribute"}
	}
	return p, nil
}

// #endregion accessors
