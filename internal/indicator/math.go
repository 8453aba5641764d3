package indicator

import "math"

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// SMA computes a simple moving average. Rows before the warm-up window are NaN.
func SMA(values []float64, window int) []float64 {
	out := nanSlice(len(values))
	if window <= 0 || len(values) < window {
		return out
	}

	var sum float64
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		if i >= window-1 {
			out[i] = sum / float64(window)
		}
	}
	return out
}

// EMA computes an exponential moving average seeded with the SMA of the
// first window values.
func EMA(values []float64, window int) []float64 {
	out := nanSlice(len(values))
	if window <= 0 || len(values) < window {
		return out
	}

	var seed float64
	for i := 0; i < window; i++ {
		seed += values[i]
	}
	seed /= float64(window)
	out[window-1] = seed

	alpha := 2.0 / (float64(window) + 1.0)
	prev := seed
	for i := window; i < len(values); i++ {
		prev = alpha*values[i] + (1-alpha)*prev
		out[i] = prev
	}
	return out
}

// RSI computes the relative strength index with Wilder smoothing. The first
// defined row is at index window (one window of deltas is required).
func RSI(closes []float64, window int) []float64 {
	out := nanSlice(len(closes))
	if window <= 0 || len(closes) <= window {
		return out
	}

	var avgGain, avgLoss float64
	for i := 1; i <= window; i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			avgGain += delta
		} else {
			avgLoss -= delta
		}
	}
	avgGain /= float64(window)
	avgLoss /= float64(window)
	out[window] = rsiValue(avgGain, avgLoss)

	for i := window + 1; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if delta > 0 {
			gain = delta
		} else {
			loss = -delta
		}
		avgGain = (avgGain*float64(window-1) + gain) / float64(window)
		avgLoss = (avgLoss*float64(window-1) + loss) / float64(window)
		out[i] = rsiValue(avgGain, avgLoss)
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		if avgGain == 0 {
			return 50.0
		}
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs)
}

// MACD computes the MACD line, signal line, and histogram. The warm-up is
// governed by the slow window plus the signal window.
func MACD(closes []float64, fast, slow, signal int) (line, sig, hist []float64) {
	n := len(closes)
	line = nanSlice(n)
	sig = nanSlice(n)
	hist = nanSlice(n)
	if fast <= 0 || slow <= fast || signal <= 0 || n < slow {
		return line, sig, hist
	}

	fastEMA := EMA(closes, fast)
	slowEMA := EMA(closes, slow)
	for i := slow - 1; i < n; i++ {
		line[i] = fastEMA[i] - slowEMA[i]
	}

	// Signal is an EMA over the defined portion of the MACD line.
	defined := line[slow-1:]
	sigTail := EMA(defined, signal)
	for i, v := range sigTail {
		idx := slow - 1 + i
		sig[idx] = v
		if !math.IsNaN(v) {
			hist[idx] = line[idx] - v
		}
	}
	return line, sig, hist
}

// Stochastic computes %K over window bars and %D as an SMA of %K.
func Stochastic(highs, lows, closes []float64, window, smooth int) (k, d []float64) {
	n := len(closes)
	k = nanSlice(n)
	d = nanSlice(n)
	if window <= 0 || smooth <= 0 || n < window {
		return k, d
	}

	for i := window - 1; i < n; i++ {
		hh := math.Inf(-1)
		ll := math.Inf(1)
		for j := i - window + 1; j <= i; j++ {
			if highs[j] > hh {
				hh = highs[j]
			}
			if lows[j] < ll {
				ll = lows[j]
			}
		}
		spread := hh - ll
		if spread == 0 {
			// Flat window: the oscillator is conventionally pinned mid-range.
			k[i] = 50.0
			continue
		}
		k[i] = (closes[i] - ll) / spread * 100.0
	}

	d = SMA(k[window-1:], smooth)
	padded := nanSlice(n)
	copy(padded[window-1:], d)
	return k, padded
}

// Bollinger computes channel bands from a moving average plus a multiple of
// the rolling population standard deviation.
func Bollinger(closes []float64, window int, stdDevs float64) (upper, middle, lower []float64) {
	n := len(closes)
	upper = nanSlice(n)
	lower = nanSlice(n)
	middle = SMA(closes, window)
	if window <= 0 || n < window {
		return upper, middle, lower
	}

	for i := window - 1; i < n; i++ {
		mean := middle[i]
		var variance float64
		for j := i - window + 1; j <= i; j++ {
			diff := closes[j] - mean
			variance += diff * diff
		}
		sd := math.Sqrt(variance / float64(window))
		upper[i] = mean + stdDevs*sd
		lower[i] = mean - stdDevs*sd
	}
	return upper, middle, lower
}

// ATR computes the Wilder-smoothed average true range.
func ATR(highs, lows, closes []float64, window int) []float64 {
	n := len(closes)
	out := nanSlice(n)
	if window <= 0 || n < window {
		return out
	}

	tr := make([]float64, n)
	tr[0] = highs[0] - lows[0]
	for i := 1; i < n; i++ {
		hl := highs[i] - lows[i]
		hc := math.Abs(highs[i] - closes[i-1])
		lc := math.Abs(lows[i] - closes[i-1])
		tr[i] = math.Max(hl, math.Max(hc, lc))
	}

	var seed float64
	for i := 0; i < window; i++ {
		seed += tr[i]
	}
	seed /= float64(window)
	out[window-1] = seed

	prev := seed
	for i := window; i < n; i++ {
		prev = (prev*float64(window-1) + tr[i]) / float64(window)
		out[i] = prev
	}
	return out
}

// VWAP computes the cumulative volume-weighted average price using the
// typical price (H+L+C)/3. Rows before any volume has accumulated are NaN.
func VWAP(highs, lows, closes, volumes []float64) []float64 {
	n := len(closes)
	out := nanSlice(n)

	var cumPV, cumVol float64
	for i := 0; i < n; i++ {
		v := volumes[i]
		if math.IsNaN(v) || v < 0 {
			v = 0
		}
		typical := (highs[i] + lows[i] + closes[i]) / 3.0
		cumPV += typical * v
		cumVol += v
		if cumVol > 0 {
			out[i] = cumPV / cumVol
		}
	}
	return out
}

// IchimokuLines holds the five lines of the cloud construct, aligned to the
// input timestamps (no forward displacement is applied).
type IchimokuLines struct {
	Tenkan  []float64
	Kijun   []float64
	SenkouA []float64
	SenkouB []float64
	Chikou  []float64
}

// Ichimoku computes the five-line cloud construct. All five lines are
// undefined until the longest span (senkouB) of history exists; chikou is
// additionally undefined for the trailing kijun rows because it is the close
// shifted backwards.
func Ichimoku(highs, lows, closes []float64, tenkan, kijun, senkouB int) IchimokuLines {
	n := len(closes)
	lines := IchimokuLines{
		Tenkan:  nanSlice(n),
		Kijun:   nanSlice(n),
		SenkouA: nanSlice(n),
		SenkouB: nanSlice(n),
		Chikou:  nanSlice(n),
	}
	if tenkan <= 0 || kijun <= tenkan || senkouB <= kijun || n < senkouB {
		return lines
	}

	midpoint := func(i, span int) float64 {
		hh := math.Inf(-1)
		ll := math.Inf(1)
		for j := i - span + 1; j <= i; j++ {
			if highs[j] > hh {
				hh = highs[j]
			}
			if lows[j] < ll {
				ll = lows[j]
			}
		}
		return (hh + ll) / 2.0
	}

	for i := senkouB - 1; i < n; i++ {
		lines.Tenkan[i] = midpoint(i, tenkan)
		lines.Kijun[i] = midpoint(i, kijun)
		lines.SenkouA[i] = (lines.Tenkan[i] + lines.Kijun[i]) / 2.0
		lines.SenkouB[i] = midpoint(i, senkouB)
		if i+kijun < n {
			lines.Chikou[i] = closes[i+kijun]
		}
	}
	return lines
}
