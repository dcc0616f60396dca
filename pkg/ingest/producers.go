package ingest

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/vanderheijden86/jamgantt/pkg/logging"
)

// DefaultDemoInterval is how often the demo ticker advances.
const DefaultDemoInterval = 2 * time.Second

// maxLineSize bounds a single feed line.
const maxLineSize = 1 << 20

// RunTicker emits step 0, 1, ... (mod recipeLen) every interval until ctx is
// done. The sender is closed on return.
func RunTicker(ctx context.Context, s *Sender, interval time.Duration, recipeLen uint, logger *slog.Logger) error {
	defer s.Close()
	logger = logging.OrNop(logger).With("producer", s.Source())

	if interval <= 0 {
		interval = DefaultDemoInterval
	}
	if recipeLen == 0 {
		recipeLen = 1
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info("ticker started", "interval", interval.String())
	var step uint
	for {
		select {
		case <-ctx.Done():
			logger.Info("ticker stopped")
			return nil
		case <-ticker.C:
			if err := s.Send(Token{Step: step}); err != nil {
				return nil
			}
			logger.Debug("tick", "step", step)
			step = (step + 1) % recipeLen
		}
	}
}

// RunLineReader emits one token per newline-delimited line of r. It stops
// itself on EOF or a read error (logged, never returned) and closes the
// sender. Undecodable lines are logged and skipped.
//
// A blocking read is interrupted on cancellation only when r is an
// io.Closer, which is then closed; otherwise ctx is checked between lines.
func RunLineReader(ctx context.Context, s *Sender, r io.Reader, dec *LineDecoder, logger *slog.Logger) error {
	defer s.Close()
	logger = logging.OrNop(logger).With("producer", s.Source())

	if c, ok := r.(io.Closer); ok {
		stop := context.AfterFunc(ctx, func() { c.Close() })
		defer stop()
	}

	sc := NewLineScanner(r)

	logger.Info("line reader started")
	lines := 0
	for sc.Scan() {
		if ctx.Err() != nil {
			logger.Info("line reader stopped", "lines", lines)
			return nil
		}
		lines++
		if !emitLine(s, dec, sc.Text(), logger) {
			return nil
		}
	}
	if ctx.Err() != nil {
		logger.Info("line reader stopped", "lines", lines)
		return nil
	}
	if err := sc.Err(); err != nil {
		logger.Warn("feed read failed", "error", err.Error(), "lines", lines)
		return nil
	}
	logger.Info("feed ended", "lines", lines)
	return nil
}

// NewLineScanner splits r into feed lines of up to maxLineSize bytes.
func NewLineScanner(r io.Reader) *bufio.Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return sc
}

// ReplayLines decodes every line of r as RunLineReader does and passes each
// result to fn with its 1-based line number. It returns the read error, if
// any.
func ReplayLines(r io.Reader, dec *LineDecoder, fn func(lineNo int, tok Token, err error)) error {
	sc := NewLineScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		tok, err := dec.Decode(sc.Text())
		fn(lineNo, tok, err)
	}
	return sc.Err()
}

// emitLine decodes and sends one line. It returns false once the sender is
// closed.
func emitLine(s *Sender, dec *LineDecoder, line string, logger *slog.Logger) bool {
	tok, err := dec.Decode(line)
	if err != nil {
		logger.Warn("skipping feed line", "line", line, "error", err.Error())
		return true
	}
	if err := s.Send(tok); err != nil {
		return false
	}
	logger.Debug("feed line", "step", tok.Step, "structured", tok.Task != nil)
	return true
}
