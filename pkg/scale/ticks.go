package scale

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// linearSteps are the candidate spacings (MHz) for linear grid marks.
var linearSteps = []float64{100, 500, 1000}

// logMantissas are the marks placed inside each decade in log mode.
var logMantissas = []float64{1, 2, 5}

// GridTicks returns at most max tick positions (plot space) inside b.
func GridTicks(b Bounds, mode Mode, max int) []float64 {
	if max <= 0 || !(b.Width() > 0) {
		return nil
	}
	if mode == Log10 {
		return logTicks(b, max)
	}
	return linearTicks(b, max)
}

func linearTicks(b Bounds, max int) []float64 {
	step := linearSteps[len(linearSteps)-1]
	for _, s := range linearSteps {
		if b.Width()/s <= float64(max) {
			step = s
			break
		}
	}
	// Wider than max*1000 MHz: widen the step by powers of ten.
	for b.Width()/step > float64(max) {
		step *= 10
	}

	first := math.Ceil(b.Min/step) * step
	if first > b.Max {
		return nil
	}
	count := int(math.Floor((b.Max-first)/step)) + 1
	return span(count, first, first+float64(count-1)*step)
}

func logTicks(b Bounds, max int) []float64 {
	lo := math.Floor(b.Min)
	hi := math.Ceil(b.Max)
	decades := span(int(hi-lo)+1, lo, hi)

	collect := func(mantissas []float64) []float64 {
		var out []float64
		for _, d := range decades {
			for _, m := range mantissas {
				x := d + math.Log10(m)
				if b.Contains(x) {
					out = append(out, x)
				}
			}
		}
		return out
	}

	ticks := collect(logMantissas)
	if len(ticks) > max {
		ticks = collect(logMantissas[:1])
	}
	if len(ticks) > max {
		ticks = ticks[:max]
	}
	return ticks
}

// span wraps floats.Span, which requires at least two points.
func span(n int, lo, hi float64) []float64 {
	switch {
	case n <= 0:
		return nil
	case n == 1:
		return []float64{lo}
	}
	return floats.Span(make([]float64, n), lo, hi)
}
