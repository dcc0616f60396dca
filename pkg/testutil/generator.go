// Package testutil provides deterministic task fixtures and feed files for
// tests across packages.
package testutil

import (
	"fmt"
	"math"
	"math/rand"
	"strings"

	"github.com/goccy/go-json"
	"pgregory.net/rapid"

	"github.com/vanderheijden86/jamgantt/pkg/model"
)

// GeneratorConfig controls task generation.
type GeneratorConfig struct {
	Seed       int64        // Random seed for determinism (0 = 42)
	NamePrefix string       // Prefix for task names (default: "Task")
	Bands      []model.Band // Bands to draw from (nil = whole catalogue)
	MinWidth   float64      // Minimum frequency span in MHz (default: 1)
	MinLength  float64      // Minimum duration in ms (default: 1)
}

// DefaultConfig returns a config suitable for most tests.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Seed:       42,
		NamePrefix: "Task",
		MinWidth:   1,
		MinLength:  1,
	}
}

// Generator creates valid tasks inside their bands.
type Generator struct {
	cfg GeneratorConfig
	rng *rand.Rand
	n   int
}

// New creates a Generator with the given config.
func New(cfg GeneratorConfig) *Generator {
	if cfg.Seed == 0 {
		cfg.Seed = 42
	}
	if cfg.NamePrefix == "" {
		cfg.NamePrefix = "Task"
	}
	if len(cfg.Bands) == 0 {
		cfg.Bands = model.Bands()
	}
	if cfg.MinWidth <= 0 {
		cfg.MinWidth = 1
	}
	if cfg.MinLength <= 0 {
		cfg.MinLength = 1
	}
	return &Generator{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Seed)),
	}
}

// NewDefault creates a Generator with default config.
func NewDefault() *Generator {
	return New(DefaultConfig())
}

// Task returns the next task. Its frequency range lies inside its band and
// its time range inside [0, TimeMax].
func (g *Generator) Task() model.Task {
	b := g.cfg.Bands[g.rng.Intn(len(g.cfg.Bands))]
	return g.InBand(b)
}

// InBand returns the next task in band b.
func (g *Generator) InBand(b model.Band) model.Task {
	lo, hi := b.Range()
	f0, f1 := g.span(lo, hi, g.cfg.MinWidth)
	t0, t1 := g.span(0, model.TimeMax, g.cfg.MinLength)
	g.n++
	return model.Task{
		Name:      fmt.Sprintf("%s %d", g.cfg.NamePrefix, g.n),
		FreqStart: f0,
		FreqEnd:   f1,
		TimeStart: t0,
		TimeEnd:   t1,
		Band:      b,
	}
}

// Tasks returns n tasks.
func (g *Generator) Tasks(n int) []model.Task {
	tasks := make([]model.Task, n)
	for i := range tasks {
		tasks[i] = g.Task()
	}
	return tasks
}

// span picks [a, b] within [lo, hi] with b-a >= min, rounded to whole units.
func (g *Generator) span(lo, hi, min float64) (float64, float64) {
	width := hi - lo
	if min > width {
		min = width
	}
	a := lo + math.Floor(g.rng.Float64()*(width-min))
	b := a + min + math.Floor(g.rng.Float64()*(hi-a-min))
	return a, math.Min(b, hi)
}

// ToFeedLines renders tasks as structured feed lines, one JSON object each.
func ToFeedLines(tasks []model.Task) string {
	var sb strings.Builder
	for _, t := range tasks {
		data, err := json.Marshal(t)
		if err != nil {
			continue
		}
		sb.Write(data)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// StepLines renders n step-mode trigger lines. Their content is ignored by
// the decoder; each one advances the recipe by a step.
func StepLines(n int) string {
	var sb strings.Builder
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&sb, "tick %d\n", i)
	}
	return sb.String()
}

// ============================================================================
// Property-test generators
// ============================================================================

// BandGen draws a catalogue band.
func BandGen() *rapid.Generator[model.Band] {
	return rapid.Custom(func(t *rapid.T) model.Band {
		return model.Band(rapid.IntRange(0, model.BandCount()-1).Draw(t, "band"))
	})
}

// TaskGen draws a valid task inside its band.
func TaskGen() *rapid.Generator[model.Task] {
	return rapid.Custom(func(t *rapid.T) model.Task {
		b := BandGen().Draw(t, "band")
		lo, hi := b.Range()
		f0 := rapid.Float64Range(lo, hi).Draw(t, "freq_start")
		f1 := rapid.Float64Range(f0, hi).Draw(t, "freq_end")
		t0 := rapid.Float64Range(0, model.TimeMax).Draw(t, "time_start")
		t1 := rapid.Float64Range(t0, model.TimeMax).Draw(t, "time_end")
		return model.Task{
			Name:      rapid.StringMatching(`[A-Za-z][A-Za-z0-9 ]{0,15}`).Draw(t, "name"),
			FreqStart: f0,
			FreqEnd:   f1,
			TimeStart: t0,
			TimeEnd:   t1,
			Band:      b,
		}
	})
}
