package state

// #region admission-state

// AdmissionState tracks the mutable counters for one session: remaining
// capacity, accepted counts per attribute, and the reject tally. It is
// owned by the session driver and mutated exactly once per candidate.
type AdmissionState struct {
	CapacityTotal     int
	CapacityRemaining int
	RejectCount       int

	required map[string]int
	accepted map[string]int
}

// NewAdmissionState creates counters for the given capacity, tracked
// attribute universe, and per-attribute minimum counts. Attributes
// outside the universe are never counted.
func NewAdmissionState(capacity int, attrs []string, required map[string]int) *AdmissionState {
	accepted := make(map[string]int, len(attrs))
	for _, a := range attrs {
		accepted[a] = 0
	}
	req := make(map[string]int, len(required))
	for a, n := range required {
		req[a] = n
	}
	return &AdmissionState{
		CapacityTotal:     capacity,
		CapacityRemaining: capacity,
		required:          req,
		accepted:          accepted,
	}
}

// #endregion admission-state

// #region accessors

// Required returns the minimum count constraint for attr (0 if none).
func (s *AdmissionState) Required(attr string) int {
	return s.required[attr]
}

// Accepted returns how many accepted entities carried attr.
func (s *AdmissionState) Accepted(attr string) int {
	return s.accepted[attr]
}

// Need returns max(0, required - accepted), recomputed on demand.
func (s *AdmissionState) Need(attr string) int {
	n := s.required[attr] - s.accepted[attr]
	if n < 0 {
		return 0
	}
	return n
}

// AcceptedCounts returns a copy of the per-attribute accepted tallies.
func (s *AdmissionState) AcceptedCounts() map[string]int {
	out := make(map[string]int, len(s.accepted))
	for a, n := range s.accepted {
		out[a] = n
	}
	return out
}

// AcceptedTotal returns how many slots have been filled so far.
func (s *AdmissionState) AcceptedTotal() int {
	return s.CapacityTotal - s.CapacityRemaining
}

// ConstraintsMet reports whether every minimum count has been reached.
func (s *AdmissionState) ConstraintsMet() bool {
	for a := range s.required {
		if s.Need(a) > 0 {
			return false
		}
	}
	return true
}

// #endregion accessors

// #region transition

// Apply records the finalized decision for one candidate: on accept the
// remaining capacity drops by one and every carried tracked attribute is
// counted; on reject the reject tally grows by one. Accepting past zero
// remaining capacity is a programming error in the caller.
func (s *AdmissionState) Apply(accepted bool, attrs map[string]bool) {
	if !accepted {
		s.RejectCount++
		return
	}
	if s.CapacityRemaining <= 0 {
		panic("state: accept with no remaining capacity")
	}
	s.CapacityRemaining--
	for a, has := range attrs {
		if !has {
			continue
		}
		if _, tracked := s.accepted[a]; tracked {
			s.accepted[a]++
		}
	}
}

// #endregion transition
