package axis

import (
	"fmt"
	"math"
)

// DefaultTolerance is the rounding slack, in samples, allowed when
// checking that observations agree on one scale factor. One sample
// absorbs the integer rounding of non-integer ratios.
const DefaultTolerance = 1.0

// Observation pairs a unit dimension as currently observed against the
// size tagged at forward time. Name labels the axis in error text.
type Observation struct {
	Name     string
	Observed int
	Tagged   int
}

// Detect computes the scale factor implied by one observation.
func Detect(observed, tagged int) (float64, error) {
	if tagged <= 0 {
		return 0, fmt.Errorf("axis: %w: tagged size %d", ErrShapeMismatch, tagged)
	}
	if observed <= 0 {
		return 0, fmt.Errorf("axis: %w: observed size %d", ErrShapeMismatch, observed)
	}
	return float64(observed) / float64(tagged), nil
}

// Consistent reports whether an observation agrees with factor within
// tol samples.
func Consistent(factor float64, observed, tagged int, tol float64) bool {
	return math.Abs(float64(observed)-factor*float64(tagged)) <= tol+1e-9
}

// ResolveScale derives the single factor all observations must share.
// The first observation defines the candidate; any other observation
// deviating by more than tol samples fails with ErrInconsistentScale.
func ResolveScale(obs []Observation, tol float64) (float64, error) {
	if len(obs) == 0 {
		return 0, fmt.Errorf("axis: %w: no scale observations", ErrMissingParameter)
	}
	factor, err := Detect(obs[0].Observed, obs[0].Tagged)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", obs[0].Name, err)
	}
	for _, o := range obs[1:] {
		other, err := Detect(o.Observed, o.Tagged)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", o.Name, err)
		}
		if !Consistent(factor, o.Observed, o.Tagged, tol) {
			return 0, fmt.Errorf("axis: %w: %s implies %.4f (%d/%d), %s implies %.4f (%d/%d)",
				ErrInconsistentScale,
				obs[0].Name, factor, obs[0].Observed, obs[0].Tagged,
				o.Name, other, o.Observed, o.Tagged)
		}
	}
	return factor, nil
}

// ScaleRound multiplies v by factor and rounds half up, the rounding
// every scaled planning quantity uses.
func ScaleRound(v int, factor float64) int {
	return int(math.Floor(float64(v)*factor + 0.5))
}
