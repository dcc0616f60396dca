package chart

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/vanderheijden86/jamgantt/pkg/geometry"
	"github.com/vanderheijden86/jamgantt/pkg/ingest"
	"github.com/vanderheijden86/jamgantt/pkg/logging"
	"github.com/vanderheijden86/jamgantt/pkg/model"
	"github.com/vanderheijden86/jamgantt/pkg/scale"
)

// scriptedFeed returns tokens then a final error forever.
type scriptedFeed struct {
	tokens []ingest.Token
	final  error
	polls  int
}

func (f *scriptedFeed) TryRecv() (ingest.Token, error) {
	f.polls++
	if len(f.tokens) > 0 {
		tok := f.tokens[0]
		f.tokens = f.tokens[1:]
		return tok, nil
	}
	return ingest.Token{}, f.final
}

func steps(n ...uint) []ingest.Token {
	out := make([]ingest.Token, len(n))
	for i, s := range n {
		out[i] = ingest.Token{Step: s}
	}
	return out
}

func TestFrame_AppliesAtMostOneTokenPerFrame(t *testing.T) {
	feed := &scriptedFeed{tokens: steps(0, 1, 3), final: ingest.ErrEmpty}
	s := NewSession(feed)

	for i, want := range []int{1, 2, 3, 3} {
		f := s.Frame(FrameInput{})
		if f.TaskCount != want {
			t.Fatalf("frame %d: %d tasks, want %d", i, f.TaskCount, want)
		}
	}
	if feed.polls != 4 {
		t.Errorf("polls = %d, want one per frame", feed.polls)
	}
	names := []string{}
	for _, task := range s.Tasks() {
		names = append(names, task.Name)
	}
	if strings.Join(names, ",") != "Init capteurs,Transmission,Sleep mode" {
		t.Errorf("tasks = %v", names)
	}
}

func TestFrame_DisconnectKeepsLastTasks(t *testing.T) {
	var logs bytes.Buffer
	feed := &scriptedFeed{tokens: steps(0), final: ingest.ErrDisconnected}
	s := NewSession(feed, WithLogger(logging.NewWriter(&logs, "info")))

	s.Frame(FrameInput{})
	f := s.Frame(FrameInput{})
	if !f.FeedDisconnected || !s.FeedDisconnected() {
		t.Fatal("expected disconnected frame")
	}
	if f.TaskCount != 1 {
		t.Errorf("TaskCount = %d, want last list kept", f.TaskCount)
	}

	polls := feed.polls
	for i := 0; i < 5; i++ {
		s.Frame(FrameInput{})
	}
	if feed.polls != polls {
		t.Errorf("disconnected session kept polling: %d -> %d", polls, feed.polls)
	}
	if strings.Count(logs.String(), "feed disconnected") != 1 {
		t.Errorf("disconnect should be logged once:\n%s", logs.String())
	}
}

func TestFrame_UnknownFeedErrorIsAbsorbed(t *testing.T) {
	s := NewSession(&scriptedFeed{final: errors.New("boom")})
	f := s.Frame(FrameInput{})
	if f.FeedDisconnected || f.TaskCount != 0 {
		t.Errorf("unexpected frame %+v", f)
	}
}

func TestFrame_NilFeed(t *testing.T) {
	s := NewSession(nil)
	s.Apply(ingest.Token{Step: 0})
	f := s.Frame(FrameInput{})
	if f.TaskCount != 1 || f.FeedDisconnected {
		t.Errorf("frame = %+v", f)
	}
	if f.Applied != 1 || f.LastApplied != `push "Init capteurs"` {
		t.Errorf("applied = %d %q", f.Applied, f.LastApplied)
	}
}

func TestFrame_StructuredToken(t *testing.T) {
	task := model.Task{Name: "Burst", FreqStart: 960, FreqEnd: 1215, TimeStart: 10, TimeEnd: 20, Band: model.BandA960To1215}
	s := NewSession(&scriptedFeed{tokens: []ingest.Token{{Task: &task}}, final: ingest.ErrEmpty})
	f := s.Frame(FrameInput{})
	if len(f.Tasks) != 1 || f.Tasks[0].Task != task || f.LastApplied != "push Burst" {
		t.Fatalf("frame tasks = %+v, %q", f.Tasks, f.LastApplied)
	}
	if f.Tasks[0].Fill != model.BandA960To1215.Color() {
		t.Errorf("fill = %v", f.Tasks[0].Fill)
	}
}

func TestFrame_ForcedBoundsOneShot(t *testing.T) {
	s := NewSession(nil)

	f := s.Frame(FrameInput{})
	if f.ForcedBounds == nil || *f.ForcedBounds != scale.DomainBounds(scale.Linear) {
		t.Fatalf("first frame forced = %v", f.ForcedBounds)
	}
	if f.XAxis.Bounds != scale.DomainBounds(scale.Linear) {
		t.Errorf("XAxis = %v", f.XAxis.Bounds)
	}
	if f2 := s.Frame(FrameInput{}); f2.ForcedBounds != nil {
		t.Fatalf("second frame forced = %v", f2.ForcedBounds)
	}

	s.ObserveBounds(scale.Bounds{Min: 100, Max: 900})
	if f3 := s.Frame(FrameInput{}); f3.XAxis.Bounds != (scale.Bounds{Min: 100, Max: 900}) {
		t.Errorf("axis should follow observed bounds, got %v", f3.XAxis.Bounds)
	}
}

func TestFrame_ToggleAndSelectBand(t *testing.T) {
	s := NewSession(nil)
	s.Frame(FrameInput{})

	s.ToggleScale()
	f := s.Frame(FrameInput{})
	if f.Mode != scale.Log10 || f.ForcedBounds == nil || *f.ForcedBounds != scale.DomainBounds(scale.Log10) {
		t.Fatalf("after toggle: mode %v forced %v", f.Mode, f.ForcedBounds)
	}
	if got := f.XAxis.Format(3); got != "1000.0 MHz" {
		t.Errorf("log formatter = %q", got)
	}

	if err := s.SelectBand(1); err != nil {
		t.Fatal(err)
	}
	f = s.Frame(FrameInput{})
	if f.ZoomBand == nil || *f.ZoomBand != 1 {
		t.Fatalf("ZoomBand = %v", f.ZoomBand)
	}
	want := scale.BandBounds(model.BandA500To1000, scale.Log10)
	if *f.ForcedBounds != want {
		t.Errorf("band bounds = %v, want %v", *f.ForcedBounds, want)
	}

	if err := s.SelectBand(9); err == nil {
		t.Error("out-of-range band should fail")
	}

	s.ShowAll()
	f = s.Frame(FrameInput{})
	if f.ZoomBand != nil || *f.ForcedBounds != scale.DomainBounds(scale.Log10) {
		t.Errorf("ShowAll frame = %v %v", f.ZoomBand, f.ForcedBounds)
	}
}

func TestFrame_WithModeAppliesOnFirstFrame(t *testing.T) {
	s := NewSession(nil, WithMode(scale.Log10))
	f := s.Frame(FrameInput{})
	if f.Mode != scale.Log10 || *f.ForcedBounds != scale.DomainBounds(scale.Log10) {
		t.Errorf("first frame = %v %v", f.Mode, f.ForcedBounds)
	}
}

func TestFrame_ZonesCachedPerMode(t *testing.T) {
	s := NewSession(nil)
	a := s.Frame(FrameInput{}).Zones
	b := s.Frame(FrameInput{}).Zones
	if &a[0] != &b[0] {
		t.Error("zones should be reused within a mode")
	}
	if len(a) != 1+model.BandCount() {
		t.Errorf("zones = %d", len(a))
	}

	s.ToggleScale()
	logZones := s.Frame(FrameInput{}).Zones
	if math.Abs(logZones[0].Area[0].X-math.Log10(model.FreqMin)) > 1e-12 {
		t.Errorf("log zone x = %v", logZones[0].Area[0].X)
	}
}

func TestFrame_TaskPolygonsFollowMode(t *testing.T) {
	s := NewSession(nil)
	s.Apply(ingest.Token{Step: 0})
	lin := s.Frame(FrameInput{}).Tasks[0].Area
	if lin[0] != (geometry.Point{X: 100, Y: 0}) || lin[2] != (geometry.Point{X: 300, Y: 300}) {
		t.Errorf("linear polygon = %v", lin)
	}
	s.ToggleScale()
	logp := s.Frame(FrameInput{}).Tasks[0].Area
	if math.Abs(logp[1].X-math.Log10(300)) > 1e-12 {
		t.Errorf("log polygon = %v", logp)
	}
}

func TestFrame_Hover(t *testing.T) {
	s := NewSession(nil)
	s.Apply(ingest.Token{Step: 0}) // Init capteurs, 100-300 MHz, 0-300 ms

	f := s.Frame(FrameInput{Pointer: &geometry.Point{X: 200, Y: 50}})
	if f.Hover == nil || f.Hover.Task == nil || f.Hover.Task.Name != "Init capteurs" {
		t.Fatalf("hover = %+v", f.Hover)
	}
	if len(f.Hover.Zones) != 0 {
		t.Error("task hover must not list zones")
	}

	f = s.Frame(FrameInput{Pointer: &geometry.Point{X: 3000, Y: 50}})
	if f.Hover.Task != nil {
		t.Fatal("no task at 3000 MHz")
	}
	if strings.Join(f.Hover.Zones, "|") != "Receiver zone|Amplifier 2400-6000MHz" {
		t.Errorf("zones = %v", f.Hover.Zones)
	}

	if f := s.Frame(FrameInput{}); f.Hover != nil {
		t.Error("no pointer, no hover")
	}
}

func TestFrame_Axes(t *testing.T) {
	f := NewSession(nil).Frame(FrameInput{})
	if f.YAxis.Bounds != TimeAxisBounds() {
		t.Errorf("YAxis = %v", f.YAxis.Bounds)
	}
	labels := f.YAxis.Labels()
	if len(labels) == 0 || labels[0] != "0 ms" {
		t.Errorf("time labels = %v", labels)
	}
	if len(f.XAxis.Ticks) == 0 || len(f.XAxis.Ticks) > maxXTicks {
		t.Errorf("x ticks = %v", f.XAxis.Ticks)
	}
	from, to := f.TimeLimit()
	if from.Y != model.TimeMax || from.X != model.FreqMin || to.X != model.FreqMax {
		t.Errorf("time limit = %v %v", from, to)
	}
}
