package gate

// #region force-signal

// ForceSignal records why a candidate had to be accepted: the carried
// attribute whose expected future supply no longer covers its unmet
// requirement.
type ForceSignal struct {
	Attribute string
	Need      int
	Expected  float64
}

// #endregion force-signal

// #region gate-config

// GateConfig holds tunables for the admission decision.
type GateConfig struct {
	Epsilon float64 // guards the scarcity weight against division by zero
}

// DefaultGateConfig returns the standard tuning.
func DefaultGateConfig() GateConfig {
	return GateConfig{
		Epsilon: 1e-9,
	}
}

// #endregion gate-config

// #region decision

// Decision is the output of evaluating one candidate.
type Decision struct {
	Accept      bool
	Forced      bool
	ForceSignal *ForceSignal // set when Forced
	Score       float64      // scarcity score, 0 when forced
	Reason      string
}

// #endregion decision
