package model

import (
	"errors"
	"strings"
	"testing"
)

func TestBandsCatalogueOrder(t *testing.T) {
	bands := Bands()
	if len(bands) != 5 || BandCount() != 5 {
		t.Fatalf("expected 5 bands, got %d", len(bands))
	}
	want := []string{"A20_500", "A500_1000", "A960_1215", "A1000_2500", "A2400_6000"}
	for i, b := range bands {
		if b.String() != want[i] {
			t.Errorf("band %d: expected %s, got %s", i, want[i], b)
		}
	}
}

func TestBandRangesAndColors(t *testing.T) {
	low, high := BandA960To1215.Range()
	if low != 960 || high != 1215 {
		t.Errorf("A960_1215 range = (%v, %v)", low, high)
	}
	if c := BandA20To500.Color(); c.R != 0 || c.G != 187 || c.B != 221 {
		t.Errorf("A20_500 color = %+v", c)
	}
	if BandA2400To6000.Label() != "Amplifier 2400-6000MHz" {
		t.Errorf("unexpected label %q", BandA2400To6000.Label())
	}
	seen := make(map[[3]uint8]Band)
	for _, b := range Bands() {
		c := b.Color()
		key := [3]uint8{c.R, c.G, c.B}
		if other, ok := seen[key]; ok {
			t.Errorf("bands %s and %s share a color", b, other)
		}
		seen[key] = b
	}
}

func TestParseBand(t *testing.T) {
	tests := []struct {
		in      string
		want    Band
		wantErr bool
	}{
		{"A20_500", BandA20To500, false},
		{"a1000_2500", BandA1000To2500, false},
		{" A2400_6000 ", BandA2400To6000, false},
		{"A1_2", 0, true},
		{"", 0, true},
	}
	for _, tc := range tests {
		got, err := ParseBand(tc.in)
		if tc.wantErr {
			if !errors.Is(err, ErrUnknownBand) {
				t.Errorf("ParseBand(%q): expected ErrUnknownBand, got %v", tc.in, err)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Errorf("ParseBand(%q) = %v, %v; want %v", tc.in, got, err, tc.want)
		}
	}
}

func TestBandTextRoundTrip(t *testing.T) {
	var b Band
	if err := b.UnmarshalText([]byte("A500_1000")); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}
	text, err := b.MarshalText()
	if err != nil || string(text) != "A500_1000" {
		t.Errorf("MarshalText = %q, %v", text, err)
	}
	if _, err := Band(42).MarshalText(); err == nil {
		t.Error("expected error for out-of-catalogue band")
	}
}

func TestTaskValidate(t *testing.T) {
	valid := Task{Name: "ok", FreqStart: 100, FreqEnd: 300, TimeStart: 0, TimeEnd: 300, Band: BandA20To500}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid task, got %v", err)
	}

	cases := map[string]Task{
		"empty name":     {FreqStart: 100, FreqEnd: 300, TimeEnd: 10},
		"freq reversed":  {Name: "x", FreqStart: 300, FreqEnd: 100, TimeEnd: 10},
		"time reversed":  {Name: "x", FreqStart: 100, FreqEnd: 300, TimeStart: 20, TimeEnd: 10},
		"freq too low":   {Name: "x", FreqStart: 10, FreqEnd: 300, TimeEnd: 10},
		"freq too high":  {Name: "x", FreqStart: 100, FreqEnd: 7000, TimeEnd: 10},
		"time too long":  {Name: "x", FreqStart: 100, FreqEnd: 300, TimeEnd: 1500},
		"negative time":  {Name: "x", FreqStart: 100, FreqEnd: 300, TimeStart: -1, TimeEnd: 10},
		"band not known": {Name: "x", FreqStart: 100, FreqEnd: 300, TimeEnd: 10, Band: Band(9)},
	}
	for name, task := range cases {
		if err := task.Validate(); !errors.Is(err, ErrInvalidTask) {
			t.Errorf("%s: expected ErrInvalidTask, got %v", name, err)
		}
	}
}

func TestTaskContainsIsClosed(t *testing.T) {
	task := Task{Name: "t", FreqStart: 1000, FreqEnd: 2500, TimeStart: 300, TimeEnd: 600, Band: BandA1000To2500}
	if !task.Contains(1000, 300) || !task.Contains(2500, 600) {
		t.Error("expected corners to be inside")
	}
	if task.Contains(999.9, 400) || task.Contains(1500, 600.1) {
		t.Error("expected points outside the rectangle to be rejected")
	}
}

func TestTaskDescribe(t *testing.T) {
	task := Task{Name: "Transmission", FreqStart: 1000, FreqEnd: 2500, TimeStart: 300, TimeEnd: 600, Band: BandA1000To2500}
	desc := task.Describe()
	for _, want := range []string{"Amplifier: A1000_2500", "Δf: 1500MHz", "Δt: 300ms", "fmax: 2500MHz"} {
		if !strings.Contains(desc, want) {
			t.Errorf("Describe() missing %q:\n%s", want, desc)
		}
	}
}
