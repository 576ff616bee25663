package technicals

import "math"

// FiniteValues returns the series values that are present and finite, in order.
func FiniteValues(values []float64, valid []bool) []float64 {
	out := make([]float64, 0, len(values))
	for i, v := range values {
		if valid != nil && !valid[i] {
			continue
		}
		if isFinite(v) {
			out = append(out, v)
		}
	}
	return out
}

// SimpleReturns computes r_t = (v_t - v_{t-1}) / v_{t-1}. A zero predecessor
// yields a zero return; non-finite returns are dropped.
func SimpleReturns(values []float64) []float64 {
	if len(values) < 2 {
		return nil
	}
	out := make([]float64, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		prev := values[i-1]
		r := 0.0
		if prev != 0 {
			r = (values[i] - prev) / prev
		}
		if isFinite(r) {
			out = append(out, r)
		}
	}
	return out
}

// RMSVolatility is sqrt(mean(r^2)) over the trailing window, in percent.
// It does not subtract the mean return, so it runs slightly above the sample
// standard deviation when returns drift.
func RMSVolatility(returns []float64, window int) (float64, bool) {
	if len(returns) == 0 || window <= 0 {
		return 0, false
	}
	start := len(returns) - window
	if start < 0 {
		start = 0
	}
	tail := returns[start:]
	sum2 := 0.0
	for _, r := range tail {
		sum2 += r * r
	}
	vol := math.Sqrt(sum2/float64(len(tail))) * 100
	return vol, isFinite(vol)
}

// SMA is the mean of the trailing window values.
func SMA(values []float64, window int) (float64, bool) {
	if window <= 0 || len(values) < window {
		return 0, false
	}
	sum := 0.0
	for _, v := range values[len(values)-window:] {
		sum += v
	}
	avg := sum / float64(window)
	return avg, isFinite(avg)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
