// Package model defines the domain types of the jamming plan: the amplifier
// band catalogue and the tasks scheduled on the frequency/time plane.
package model

import (
	"errors"
	"fmt"
	"image/color"
	"strings"
)

// Frequency and time limits of the plan.
const (
	FreqMin = 20.0   // MHz
	FreqMax = 6000.0 // MHz
	TimeMax = 1000.0 // ms
)

// ErrUnknownBand is returned by ParseBand for keys outside the catalogue.
var ErrUnknownBand = errors.New("unknown band")

// Band identifies one of the five amplifier bands.
type Band int

const (
	BandA20To500 Band = iota
	BandA500To1000
	BandA960To1215
	BandA1000To2500
	BandA2400To6000
	numBands // Keep this last - used for iteration
)

type bandInfo struct {
	key   string
	label string
	low   float64
	high  float64
	color color.RGBA
}

var bandTable = [numBands]bandInfo{
	BandA20To500:    {"A20_500", "Amplifier 20-500MHz", 20, 500, color.RGBA{0, 187, 221, 0xff}},
	BandA500To1000:  {"A500_1000", "Amplifier 500-1000MHz", 500, 1000, color.RGBA{255, 163, 0, 0xff}},
	BandA960To1215:  {"A960_1215", "Amplifier 960-1215MHz", 960, 1215, color.RGBA{124, 127, 171, 0xff}},
	BandA1000To2500: {"A1000_2500", "Amplifier 1000-2500MHz", 1000, 2500, color.RGBA{0, 171, 142, 0xff}},
	BandA2400To6000: {"A2400_6000", "Amplifier 2400-6000MHz", 2400, 6000, color.RGBA{174, 37, 115, 0xff}},
}

// Bands returns the catalogue in display order.
func Bands() []Band {
	out := make([]Band, 0, numBands)
	for b := Band(0); b < numBands; b++ {
		out = append(out, b)
	}
	return out
}

// BandCount is the number of bands in the catalogue.
func BandCount() int {
	return int(numBands)
}

// Valid reports whether b is part of the catalogue.
func (b Band) Valid() bool {
	return b >= 0 && b < numBands
}

// String returns the catalogue key (e.g. "A20_500").
func (b Band) String() string {
	if !b.Valid() {
		return fmt.Sprintf("Band(%d)", int(b))
	}
	return bandTable[b].key
}

// Label returns the human-readable band name used for zones and tooltips.
func (b Band) Label() string {
	if !b.Valid() {
		return b.String()
	}
	return bandTable[b].label
}

// Range returns the band's frequency interval in MHz.
func (b Band) Range() (low, high float64) {
	if !b.Valid() {
		return 0, 0
	}
	info := bandTable[b]
	return info.low, info.high
}

// Color returns the display color of the band.
func (b Band) Color() color.RGBA {
	if !b.Valid() {
		return color.RGBA{0x88, 0x88, 0x88, 0xff}
	}
	return bandTable[b].color
}

// ParseBand resolves a catalogue key. Matching is case-insensitive.
func ParseBand(s string) (Band, error) {
	key := strings.TrimSpace(s)
	for b := Band(0); b < numBands; b++ {
		if strings.EqualFold(bandTable[b].key, key) {
			return b, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownBand, s)
}

// MarshalText encodes the band as its catalogue key.
func (b Band) MarshalText() ([]byte, error) {
	if !b.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownBand, int(b))
	}
	return []byte(b.String()), nil
}

// UnmarshalText decodes a catalogue key.
func (b *Band) UnmarshalText(text []byte) error {
	parsed, err := ParseBand(string(text))
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}
