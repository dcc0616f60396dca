// Package metrics times the stages of the frame loop for the side panel.
//
// Each Stage keeps a rolling window of its most recent samples, so the
// figures follow what the loop is doing now rather than averaging over the
// whole session. Collection is on unless JG_METRICS=0.
//
//	func (s *Session) Frame(in FrameInput) Frame {
//	    defer metrics.Timer(metrics.FrameBuild)()
//	    // ...
//	}
package metrics

import (
	"fmt"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"gonum.org/v1/gonum/stat"
)

// WindowSize is the number of samples a Stage keeps: four seconds at the
// default 30 fps.
const WindowSize = 120

var enabled atomic.Bool

func init() {
	enabled.Store(os.Getenv("JG_METRICS") != "0")
}

// Enabled reports whether samples are recorded.
func Enabled() bool {
	return enabled.Load()
}

// SetEnabled turns recording on or off.
func SetEnabled(e bool) {
	enabled.Store(e)
}

// Stage is one timed step of the frame loop. Snapshot saves run off the
// render goroutine, so a Stage is safe for concurrent use.
type Stage struct {
	name string

	mu    sync.Mutex
	ring  [WindowSize]time.Duration
	held  int
	next  int
	count uint64
	last  time.Duration
}

func newStage(name string) *Stage {
	return &Stage{name: name}
}

// Name returns the stage name.
func (s *Stage) Name() string {
	return s.name
}

// Record adds one sample, evicting the oldest once the window is full.
func (s *Stage) Record(d time.Duration) {
	if !Enabled() {
		return
	}
	s.mu.Lock()
	s.ring[s.next] = d
	s.next = (s.next + 1) % WindowSize
	if s.held < WindowSize {
		s.held++
	}
	s.count++
	s.last = d
	s.mu.Unlock()
}

// Reset drops every sample.
func (s *Stage) Reset() {
	s.mu.Lock()
	s.held, s.next, s.count, s.last = 0, 0, 0, 0
	s.mu.Unlock()
}

// Window summarises the samples currently held.
type Window struct {
	Name    string
	Samples int    // samples in the window
	Count   uint64 // samples recorded since start or Reset
	Last    time.Duration
	Avg     time.Duration
	P95     time.Duration
	Max     time.Duration
}

// Window returns the current window. A stage with no samples yields zero
// durations.
func (s *Stage) Window() Window {
	s.mu.Lock()
	w := Window{Name: s.name, Samples: s.held, Count: s.count, Last: s.last}
	ns := make([]float64, s.held)
	for i := 0; i < s.held; i++ {
		ns[i] = float64(s.ring[i])
	}
	s.mu.Unlock()

	if len(ns) == 0 {
		return w
	}
	sort.Float64s(ns)
	w.Avg = time.Duration(stat.Mean(ns, nil))
	w.P95 = time.Duration(stat.Quantile(0.95, stat.Empirical, ns, nil))
	w.Max = time.Duration(ns[len(ns)-1])
	return w
}

// Summary is the side-panel line, e.g. "frame_build 0.21/1.40ms" (average
// and max over the window).
func (w Window) Summary() string {
	return fmt.Sprintf("%s %.2f/%.2fms", w.Name, ms(w.Avg), ms(w.Max))
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// Timer starts timing s; call the result to record the elapsed time.
func Timer(s *Stage) func() {
	if !Enabled() || s == nil {
		return func() {}
	}
	start := time.Now()
	return func() {
		s.Record(time.Since(start))
	}
}

// Frame loop stages.
var (
	FrameBuild   = newStage("frame_build")
	TokenApply   = newStage("token_apply")
	HoverResolve = newStage("hover_resolve")
	CanvasRender = newStage("canvas_render")
	SnapshotSave = newStage("snapshot_save")
)

// PanelStages are the stages the side panel lists, in display order.
func PanelStages() []*Stage {
	return []*Stage{FrameBuild, TokenApply, HoverResolve, CanvasRender, SnapshotSave}
}
