// Package scale maps frequencies onto the plotted X axis under a linear or
// log10 scale, and provides the axis bounds and formatters that go with it.
package scale

import (
	"fmt"
	"math"

	"github.com/vanderheijden86/jamgantt/pkg/model"
)

// Mode is the frequency axis scale.
type Mode int

const (
	Linear Mode = iota
	Log10
)

// String returns a short label for the mode.
func (m Mode) String() string {
	switch m {
	case Log10:
		return "log10"
	default:
		return "linear"
	}
}

// Toggle returns the other mode.
func (m Mode) Toggle() Mode {
	if m == Log10 {
		return Linear
	}
	return Log10
}

// Bounds is a closed interval on one plot axis.
type Bounds struct {
	Min float64
	Max float64
}

// Width returns Max-Min.
func (b Bounds) Width() float64 {
	return b.Max - b.Min
}

// Contains reports whether v lies in [Min, Max].
func (b Bounds) Contains(v float64) bool {
	return v >= b.Min && v <= b.Max
}

// Center returns the midpoint of the interval.
func (b Bounds) Center() float64 {
	return (b.Min + b.Max) / 2
}

func (b Bounds) String() string {
	return fmt.Sprintf("[%.3f, %.3f]", b.Min, b.Max)
}

// ToPlotX converts a frequency in MHz to a plot X coordinate.
func ToPlotX(freq float64, mode Mode) float64 {
	if mode == Log10 {
		return math.Log10(freq)
	}
	return freq
}

// FromPlotX converts a plot X coordinate back to a frequency in MHz. It is
// only used to resolve pointer positions.
func FromPlotX(x float64, mode Mode) float64 {
	if mode == Log10 {
		return math.Pow(10, x)
	}
	return x
}

// DomainBounds returns the full frequency range in plot space.
func DomainBounds(mode Mode) Bounds {
	return Bounds{
		Min: ToPlotX(model.FreqMin, mode),
		Max: ToPlotX(model.FreqMax, mode),
	}
}

// TimeBounds returns the time axis range, which does not depend on the mode.
func TimeBounds() Bounds {
	return Bounds{Min: 0, Max: model.TimeMax}
}

// BandBounds returns the plot-space interval covered by a band.
func BandBounds(b model.Band, mode Mode) Bounds {
	low, high := b.Range()
	return Bounds{Min: ToPlotX(low, mode), Max: ToPlotX(high, mode)}
}

// FormatFreq labels a frequency-axis position.
func FormatFreq(x float64, mode Mode) string {
	if mode == Log10 {
		return fmt.Sprintf("%.1f MHz", math.Pow(10, x))
	}
	return fmt.Sprintf("%.0f MHz", x)
}

// FormatTime labels a time-axis position.
func FormatTime(y float64) string {
	return fmt.Sprintf("%.0f ms", y)
}

// Formatter returns FormatFreq bound to mode.
func Formatter(mode Mode) func(float64) string {
	return func(x float64) string {
		return FormatFreq(x, mode)
	}
}
