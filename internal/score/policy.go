package score

import "github.com/rohilkanwar-aai/sdlc-inject/internal/extract"

// Policy is the versioned scoring table. Exact point values are a policy
// choice, not a derived law, so the table travels with every breakdown and
// concurrent runs can grade under different versions without interference.
type Policy struct {
	Version string `json:"version" yaml:"version"`

	ExplicitMultiplier float64 `json:"explicit_multiplier" yaml:"explicit_multiplier"`
	ImpliedMultiplier  float64 `json:"implied_multiplier" yaml:"implied_multiplier"`
	HedgedMultiplier   float64 `json:"hedged_multiplier" yaml:"hedged_multiplier"`

	// CompletenessCeiling caps the outcome when no required node is
	// matched at implied confidence or better.
	CompletenessCeiling float64 `json:"completeness_ceiling" yaml:"completeness_ceiling"`

	// RuledOutBonus rewards discussing a red herring or decoy without
	// being fooled into asserting it as the cause.
	RuledOutBonus float64 `json:"ruled_out_bonus" yaml:"ruled_out_bonus"`

	// NoVerificationDeduction is a flat point deduction when the agent
	// changed something and never read anything afterward.
	NoVerificationDeduction float64 `json:"no_verification_deduction" yaml:"no_verification_deduction"`
}

// DefaultPolicy returns scoring table v1.
func DefaultPolicy() Policy {
	return Policy{
		Version:                 "v1",
		ExplicitMultiplier:      1.0,
		ImpliedMultiplier:       0.6,
		HedgedMultiplier:        0.3,
		CompletenessCeiling:     60,
		RuledOutBonus:           3,
		NoVerificationDeduction: 5,
	}
}

func (p Policy) confidenceMultiplier(c extract.Confidence) float64 {
	switch c {
	case extract.Explicit:
		return p.ExplicitMultiplier
	case extract.Implied:
		return p.ImpliedMultiplier
	case extract.Hedged:
		return p.HedgedMultiplier
	}
	return 0
}
