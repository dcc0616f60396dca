package ingest

import (
	"context"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/jamgantt/pkg/logging"
	"github.com/vanderheijden86/jamgantt/pkg/watcher"
)

// Producer source names.
const (
	SourceDemo  = "demo"
	SourceStdin = "stdin"
	SourceFile  = "file"
)

// PipelineConfig selects which producers run.
type PipelineConfig struct {
	// Demo enables the ticker producer.
	Demo bool
	// DemoInterval is the ticker period; zero means DefaultDemoInterval.
	DemoInterval time.Duration
	// Input, when set, is read line by line.
	Input io.Reader
	// TailPath, when set, is followed for appended lines.
	TailPath string
	// FeedMode applies to Input and TailPath.
	FeedMode FeedMode
	// RecipeLen is the step cycle length; zero means the demo recipe's.
	RecipeLen uint
	Logger    *slog.Logger

	// WatchOptions are passed to the file tail's watcher.
	WatchOptions []watcher.WatcherOption
}

// Pipeline runs the configured producers against one queue.
type Pipeline struct {
	queue  *Queue
	cancel context.CancelFunc
	group  *errgroup.Group
	names  []string
}

// StartPipeline registers a sender per configured producer and starts them.
// Senders are registered before any producer runs, so the queue cannot
// report ErrDisconnected before every producer has finished. With no
// producers configured the queue stays empty and never disconnects.
func StartPipeline(ctx context.Context, cfg PipelineConfig) *Pipeline {
	logger := logging.OrNop(cfg.Logger)
	recipeLen := cfg.RecipeLen
	if recipeLen == 0 {
		recipeLen = DemoRecipe().Len()
	}

	ctx, cancel := context.WithCancel(ctx)
	g, ctx := errgroup.WithContext(ctx)
	p := &Pipeline{queue: NewQueue(), cancel: cancel, group: g}

	if cfg.Demo {
		s := p.queue.NewSender(SourceDemo)
		p.names = append(p.names, SourceDemo)
		g.Go(func() error {
			return RunTicker(ctx, s, cfg.DemoInterval, recipeLen, logger)
		})
	}
	if cfg.Input != nil {
		s := p.queue.NewSender(SourceStdin)
		dec := NewLineDecoder(cfg.FeedMode, recipeLen)
		p.names = append(p.names, SourceStdin)
		g.Go(func() error {
			return RunLineReader(ctx, s, cfg.Input, dec, logger)
		})
	}
	if cfg.TailPath != "" {
		s := p.queue.NewSender(SourceFile)
		dec := NewLineDecoder(cfg.FeedMode, recipeLen)
		p.names = append(p.names, SourceFile)
		g.Go(func() error {
			return RunFileTail(ctx, s, cfg.TailPath, dec, logger, cfg.WatchOptions...)
		})
	}

	logger.Info("ingest pipeline started", "producers", p.names)
	return p
}

// Queue returns the consumer end.
func (p *Pipeline) Queue() *Queue {
	return p.queue
}

// Producers returns the names of the started producers.
func (p *Pipeline) Producers() []string {
	return append([]string(nil), p.names...)
}

// Stop cancels every producer.
func (p *Pipeline) Stop() {
	p.cancel()
}

// Wait blocks until every producer has returned.
func (p *Pipeline) Wait() error {
	return p.group.Wait()
}
