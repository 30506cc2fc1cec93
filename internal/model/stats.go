package model

import "math"

// difference applies first-order differencing d times.
func difference(values []float64, d int) []float64 {
	result := values
	for i := 0; i < d && len(result) > 1; i++ {
		diffed := make([]float64, len(result)-1)
		for j := 1; j < len(result); j++ {
			diffed[j-1] = result[j] - result[j-1]
		}
		result = diffed
	}
	return result
}

// seasonalDifference applies D-order differencing at lag s.
func seasonalDifference(values []float64, D, s int) []float64 {
	result := values
	for i := 0; i < D && len(result) > s; i++ {
		diffed := make([]float64, len(result)-s)
		for j := s; j < len(result); j++ {
			diffed[j-s] = result[j] - result[j-s]
		}
		result = diffed
	}
	return result
}

// mean returns the arithmetic mean, 0 for empty input.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// autocorr computes the lag-k autocorrelation of values around their mean.
// Returns 0 when the lag exceeds the sample or the variance is zero.
func autocorr(values []float64, k int) float64 {
	n := len(values)
	if k <= 0 || k >= n {
		return 0
	}

	mu := mean(values)
	variance := 0.0
	for _, v := range values {
		d := v - mu
		variance += d * d
	}
	if variance == 0 {
		return 0
	}

	cov := 0.0
	for t := k; t < n; t++ {
		cov += (values[t] - mu) * (values[t-k] - mu)
	}
	return cov / variance
}

// levinsonDurbin solves the Yule-Walker equations for AR(p) coefficients
// from autocorrelations acf[0..p-1] (lags 1..p).
func levinsonDurbin(acf []float64, p int) []float64 {
	if p <= 0 || len(acf) == 0 {
		return []float64{}
	}
	if len(acf) < p {
		p = len(acf)
	}

	phi := make([][]float64, p+1)
	for i := range phi {
		phi[i] = make([]float64, p+1)
	}

	phi[1][1] = acf[0]
	v := 1 - acf[0]*acf[0]

	for k := 2; k <= p; k++ {
		num := acf[k-1]
		for j := 1; j < k; j++ {
			num -= phi[k-1][j] * acf[k-1-j]
		}
		if v == 0 {
			break
		}
		phi[k][k] = num / v
		for j := 1; j < k; j++ {
			phi[k][j] = phi[k-1][j] - phi[k][k]*phi[k-1][k-j]
		}
		v = v * (1 - phi[k][k]*phi[k][k])
	}

	result := make([]float64, p)
	for i := 1; i <= p; i++ {
		result[i-1] = phi[p][i]
	}
	return result
}

// clampCoeff keeps an estimated coefficient inside the stationary region.
func clampCoeff(c float64) float64 {
	const limit = 0.95
	if c > limit {
		return limit
	}
	if c < -limit {
		return -limit
	}
	return c
}

// stddev returns the sample standard deviation, 0 for fewer than 2 values.
func stddev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mu := mean(values)
	sumSq := 0.0
	for _, v := range values {
		d := v - mu
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values)-1))
}

// tail returns the last n elements of values (all of them when shorter).
func tail(values []float64, n int) []float64 {
	if n >= len(values) {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, n)
	copy(out, values[len(values)-n:])
	return out
}
