// Package chart owns the jamming plan state and turns it into one
// renderable Frame per tick.
//
// A Session is driven by a single goroutine (the render loop). Each frame it
// polls the ingest queue at most once, applies pending viewport transitions
// and builds the plot-space shapes a renderer needs. Nothing in a Frame
// depends on how it is drawn; the TUI and the snapshot exporter both consume
// it.
package chart

import (
	"errors"
	"log/slog"

	"github.com/vanderheijden86/jamgantt/pkg/geometry"
	"github.com/vanderheijden86/jamgantt/pkg/ingest"
	"github.com/vanderheijden86/jamgantt/pkg/logging"
	"github.com/vanderheijden86/jamgantt/pkg/metrics"
	"github.com/vanderheijden86/jamgantt/pkg/model"
	"github.com/vanderheijden86/jamgantt/pkg/scale"
	"github.com/vanderheijden86/jamgantt/pkg/viewport"
)

// Receiver is the consumer end of the ingest queue.
type Receiver interface {
	TryRecv() (ingest.Token, error)
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logging.OrNop(l)
	}
}

// WithRecipe replaces the demo recipe used to resolve step tokens.
func WithRecipe(r ingest.Recipe) Option {
	return func(s *Session) {
		s.recipe = r
	}
}

// WithMode sets the initial scale mode. It is applied by the first Frame.
func WithMode(m scale.Mode) Option {
	return func(s *Session) {
		s.view.SetMode(m)
	}
}

// Session is the explicit owner of the task list, the viewport state and
// the queue endpoint.
type Session struct {
	tasks  []model.Task
	view   *viewport.State
	feed   Receiver
	recipe ingest.Recipe
	logger *slog.Logger

	domainZones  []geometry.Zone
	zoneCache    map[scale.Mode][]geometry.Zone
	disconnected bool
	applied      uint64
	lastApplied  string
}

// NewSession returns a session reading tokens from feed. A nil feed means no
// producer is attached; the task list then only changes through Apply.
func NewSession(feed Receiver, opts ...Option) *Session {
	s := &Session{
		view:        viewport.New(),
		feed:        feed,
		recipe:      ingest.DemoRecipe(),
		logger:      logging.Nop(),
		domainZones: geometry.BackgroundZones(),
		zoneCache:   make(map[scale.Mode][]geometry.Zone, 2),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FrameInput carries what the renderer observed since the last frame.
type FrameInput struct {
	// Pointer is the pointer position in plot space, nil when the pointer
	// is outside the plot.
	Pointer *geometry.Point
}

// Frame builds the next frame. See the package documentation for the order
// of operations.
func (s *Session) Frame(in FrameInput) Frame {
	defer metrics.Timer(metrics.FrameBuild)()

	s.poll()
	s.view.Sync()

	mode := s.view.Mode()
	f := Frame{
		Mode:             mode,
		Zones:            s.zones(mode),
		Tasks:            s.taskShapes(mode),
		TaskCount:        len(s.tasks),
		Applied:          s.applied,
		LastApplied:      s.lastApplied,
		FeedDisconnected: s.disconnected,
	}
	if b, ok := s.view.TakeForcedBounds(); ok {
		f.ForcedBounds = &b
	}
	if i, ok := s.view.ZoomBand(); ok {
		f.ZoomBand = &i
	}

	xb := s.view.LastObserved()
	if f.ForcedBounds != nil {
		xb = *f.ForcedBounds
	}
	f.XAxis = Axis{
		Name:   "Frequency",
		Bounds: xb,
		Format: scale.Formatter(mode),
		Ticks:  scale.GridTicks(xb, mode, maxXTicks),
	}
	yb := TimeAxisBounds()
	f.YAxis = Axis{
		Name:   "Time",
		Bounds: yb,
		Format: scale.FormatTime,
		Ticks:  scale.GridTicks(yb, scale.Linear, maxYTicks),
	}

	if in.Pointer != nil {
		stop := metrics.Timer(metrics.HoverResolve)
		h := geometry.ResolveHover(in.Pointer.X, in.Pointer.Y, mode, s.tasks, s.domainZones)
		stop()
		f.Hover = &h
	}
	return f
}

// poll drains at most one token from the feed.
func (s *Session) poll() {
	if s.feed == nil || s.disconnected {
		return
	}
	tok, err := s.feed.TryRecv()
	switch {
	case err == nil:
		s.Apply(tok)
	case errors.Is(err, ingest.ErrDisconnected):
		s.disconnected = true
		s.logger.Info("feed disconnected, keeping last task list", "tasks", len(s.tasks))
	case errors.Is(err, ingest.ErrEmpty):
	default:
		s.logger.Warn("feed poll failed", "error", err.Error())
	}
}

// Apply applies one token to the task list: a structured token pushes its
// task, any other token runs the recipe step it selects.
func (s *Session) Apply(tok ingest.Token) {
	defer metrics.Timer(metrics.TokenApply)()

	if tok.Task != nil {
		s.tasks = append(s.tasks, *tok.Task)
		s.lastApplied = "push " + tok.Task.Name
	} else {
		s.tasks = s.recipe.Apply(tok.Step, s.tasks)
		s.lastApplied = s.recipe.StepName(tok.Step)
	}
	s.applied++
	s.logger.Debug("applied token",
		"source", tok.Source,
		"step", tok.Step,
		"op", s.lastApplied,
		"tasks", len(s.tasks),
	)
}

func (s *Session) zones(mode scale.Mode) []geometry.Zone {
	if z, ok := s.zoneCache[mode]; ok {
		return z
	}
	z := geometry.ZoneSet(mode)
	s.zoneCache[mode] = z
	return z
}

func (s *Session) taskShapes(mode scale.Mode) []TaskShape {
	shapes := make([]TaskShape, len(s.tasks))
	for i, t := range s.tasks {
		shapes[i] = TaskShape{
			Task: t,
			Area: geometry.TaskPolygon(t, mode),
			Fill: t.Color(),
		}
	}
	return shapes
}

// ObserveBounds records the X range the renderer displayed this frame. It
// reports whether the range changed.
func (s *Session) ObserveBounds(b scale.Bounds) bool {
	return s.view.Observe(b)
}

// ToggleScale switches between linear and log10 and resets the zoom.
func (s *Session) ToggleScale() {
	s.view.ToggleScale()
	s.logger.Info("scale toggled", "mode", s.view.Mode().String())
}

// SelectBand zooms to band i.
func (s *Session) SelectBand(i int) error {
	if err := s.view.SelectBand(i); err != nil {
		return err
	}
	s.logger.Info("band selected", "band", model.Bands()[i].String())
	return nil
}

// ShowAll resets the zoom to the full domain.
func (s *Session) ShowAll() {
	s.view.ShowAll()
}

// Mode returns the current scale mode.
func (s *Session) Mode() scale.Mode {
	return s.view.Mode()
}

// ZoomBand returns the zoomed band index, if any.
func (s *Session) ZoomBand() (int, bool) {
	return s.view.ZoomBand()
}

// Tasks returns a copy of the current task list.
func (s *Session) Tasks() []model.Task {
	return append([]model.Task(nil), s.tasks...)
}

// FeedDisconnected reports whether every producer has gone away.
func (s *Session) FeedDisconnected() bool {
	return s.disconnected
}
