// Package viewport holds the chart's scale mode, band zoom and the one-shot
// bounds request handed to the plotting widget.
//
// Mode changes are two-phase: SetMode records the request and Sync, called
// once at the start of every frame, applies it. Applying a mode change drops
// the band zoom and requests the full domain under the new mode.
package viewport

import (
	"errors"
	"fmt"

	"github.com/vanderheijden86/jamgantt/pkg/model"
	"github.com/vanderheijden86/jamgantt/pkg/scale"
)

// ErrBandIndex is returned by SelectBand for an index outside the catalogue.
var ErrBandIndex = errors.New("band index out of range")

// State is the viewport state machine. It is not safe for concurrent use;
// the render loop owns it.
type State struct {
	mode         scale.Mode
	appliedMode  scale.Mode
	zoomBand     *int
	forcedBounds *scale.Bounds
	lastObserved *scale.Bounds
}

// New returns the initial state: linear scale, no zoom, the full linear
// domain requested, and (0, 1) as the last observed bounds.
func New() *State {
	forced := scale.DomainBounds(scale.Linear)
	return &State{
		mode:         scale.Linear,
		appliedMode:  scale.Linear,
		forcedBounds: &forced,
		lastObserved: &scale.Bounds{Min: 0, Max: 1},
	}
}

// Mode returns the requested scale mode.
func (s *State) Mode() scale.Mode {
	return s.mode
}

// AppliedMode returns the mode the last Sync applied.
func (s *State) AppliedMode() scale.Mode {
	return s.appliedMode
}

// SetMode requests a scale mode; it takes effect at the next Sync.
func (s *State) SetMode(m scale.Mode) {
	s.mode = m
}

// ToggleScale requests the other scale mode and applies it.
func (s *State) ToggleScale() {
	s.SetMode(s.mode.Toggle())
	s.Sync()
}

// Sync applies a pending mode change. It reports whether a transition fired;
// repeated calls without a new SetMode are no-ops.
func (s *State) Sync() bool {
	if s.mode == s.appliedMode {
		return false
	}
	s.zoomBand = nil
	forced := scale.DomainBounds(s.mode)
	s.forcedBounds = &forced
	s.appliedMode = s.mode
	return true
}

// SelectBand zooms to band i of the catalogue under the current mode.
func (s *State) SelectBand(i int) error {
	if i < 0 || i >= model.BandCount() {
		return fmt.Errorf("%w: %d (have %d bands)", ErrBandIndex, i, model.BandCount())
	}
	idx := i
	s.zoomBand = &idx
	forced := scale.BandBounds(model.Bands()[i], s.mode)
	s.forcedBounds = &forced
	return nil
}

// ShowAll drops the band zoom and requests the full domain.
func (s *State) ShowAll() {
	s.zoomBand = nil
	forced := scale.DomainBounds(s.mode)
	s.forcedBounds = &forced
}

// ZoomBand returns the zoomed band index, if any.
func (s *State) ZoomBand() (int, bool) {
	if s.zoomBand == nil {
		return 0, false
	}
	return *s.zoomBand, true
}

// TakeForcedBounds returns the pending bounds request and clears it, so the
// widget is overridden on exactly one frame.
func (s *State) TakeForcedBounds() (scale.Bounds, bool) {
	if s.forcedBounds == nil {
		return scale.Bounds{}, false
	}
	b := *s.forcedBounds
	s.forcedBounds = nil
	return b, true
}

// PeekForcedBounds returns the pending bounds request without clearing it.
func (s *State) PeekForcedBounds() (scale.Bounds, bool) {
	if s.forcedBounds == nil {
		return scale.Bounds{}, false
	}
	return *s.forcedBounds, true
}

// Observe records the bounds the widget displayed this frame and reports
// whether they differ from the previous observation.
func (s *State) Observe(b scale.Bounds) bool {
	if s.lastObserved != nil && *s.lastObserved == b {
		return false
	}
	s.lastObserved = &b
	return true
}

// LastObserved returns the most recently observed bounds.
func (s *State) LastObserved() scale.Bounds {
	if s.lastObserved == nil {
		return scale.Bounds{}
	}
	return *s.lastObserved
}
