package algo

import "math"

// z90 is the two-sided 90% z-score.
const z90 = 1.645

// StDevToConf90 converts a per-iteration stdev into the half-width of a 90%
// confidence interval over iterations runs. Fewer than one iteration counts as one.
func StDevToConf90(stdev float64, iterations int) float64 {
	if iterations < 1 {
		iterations = 1
	}
	return z90 * stdev / math.Sqrt(float64(iterations))
}
