package domain

import "math"

// wilsonZ is the z-value for a 95% confidence interval.
const wilsonZ = 1.9600

// WilsonScore returns the lower bound of the Wilson score interval for the
// proportion of helpful votes. With no votes the score is 0, so unvoted
// reviews never outrank reviews with positive evidence.
func WilsonScore(helpful, notHelpful int) float64 {
	n := float64(helpful + notHelpful)
	if n == 0 {
		return 0
	}

	z := wilsonZ
	phat := float64(helpful) / n

	numerator := phat + z*z/(2*n) - z*math.Sqrt((phat*(1-phat)+z*z/(4*n))/n)
	return numerator / (1 + z*z/n)
}
