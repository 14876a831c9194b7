package matching

import dErrors "careflow/pkg/domain-errors"

// WeightsVersion tags results with the parameter set that produced them.
// Bump when the defaults change so stored caseworker decisions stay
// traceable to the weights in force at the time.
const WeightsVersion = "2025-08"

// Weights are the relative shares of each sub-score in the composite.
// They need not sum to 1; normalize() scales them before use.
type Weights struct {
	Proximity    float64 `json:"proximity"`
	Continuity   float64 `json:"continuity"`
	Culture      float64 `json:"culture"`
	Availability float64 `json:"availability"`
}

// DefaultWeights is the standard-urgency parameter set. The original system
// documents only illustrative outputs, so these defaults keep proximity and
// availability as the strongest pull with continuity close behind.
func DefaultWeights() Weights {
	return Weights{
		Proximity:    0.30,
		Continuity:   0.25,
		Culture:      0.20,
		Availability: 0.25,
	}
}

// ImmediateWeights is the urgency=immediate parameter set: availability-first
// ordering with the soft proximity/continuity pull mostly disabled.
func ImmediateWeights() Weights {
	return Weights{
		Proximity:    0.15,
		Continuity:   0.05,
		Culture:      0.15,
		Availability: 0.65,
	}
}

// validate rejects negative components. A negative weight inverts that
// sub-score's ordering, so "closer is better" silently becomes "closer is
// worse"; normalize alone would let a mixed set like {-1, 0, 0, 2} through.
func (w Weights) validate() error {
	components := []struct {
		name  string
		value float64
	}{
		{"proximity", w.Proximity},
		{"continuity", w.Continuity},
		{"culture", w.Culture},
		{"availability", w.Availability},
	}
	for _, c := range components {
		if c.value < 0 {
			return dErrors.Newf(dErrors.CodeValidation, "%s weight cannot be negative, got %v", c.name, c.value)
		}
	}
	return nil
}

// normalize scales the weights to sum to 1. A degenerate all-zero set falls
// back to the defaults rather than producing all-zero composites.
func (w Weights) normalize() Weights {
	sum := w.Proximity + w.Continuity + w.Culture + w.Availability
	if sum <= 0 {
		return DefaultWeights()
	}
	return Weights{
		Proximity:    w.Proximity / sum,
		Continuity:   w.Continuity / sum,
		Culture:      w.Culture / sum,
		Availability: w.Availability / sum,
	}
}

// forRequest resolves the effective weight set for one request: explicit
// overrides win, then the urgency profile, then the defaults.
func forRequest(prefs Preferences) (Weights, error) {
	if prefs.Weights != nil {
		if err := prefs.Weights.validate(); err != nil {
			return Weights{}, err
		}
		return prefs.Weights.normalize(), nil
	}
	if prefs.Urgency == UrgencyImmediate {
		return ImmediateWeights().normalize(), nil
	}
	return DefaultWeights().normalize(), nil
}
